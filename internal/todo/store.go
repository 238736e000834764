package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "modernc.org/sqlite"
)

const table = "todos"

var columns = []string{"id", "content"}

type dialect struct {
	placeholder squirrel.PlaceholderFormat
	schema      []string
}

var dialects = map[string]dialect{
	"sqlite": {
		placeholder: squirrel.Question,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS todos (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				content TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS ix_todos_content ON todos (content)`,
		},
	},
	"postgres": {
		placeholder: squirrel.Dollar,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS todos (
				id SERIAL PRIMARY KEY,
				content TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS ix_todos_content ON todos (content)`,
		},
	},
}

// Drivers lists the database drivers the store can talk to.
func Drivers() []string {
	return []string{"sqlite", "postgres"}
}

// Store owns the connection pool. It is created once per process and hands
// out a Session per request.
type Store struct {
	db      *sqlx.DB
	dialect dialect

	// pin keeps a shared in-memory database alive while the pool recycles
	// its other connections.
	pin *sqlx.Conn
}

// Open connects to the database and creates the todos table if missing.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open store: empty dsn")
	}

	memory := false
	if driver == "sqlite" {
		var err error
		if dsn, memory, err = sharedMemory(dsn); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}

		if !strings.Contains(dsn, "_pragma=") {
			dsn = withParam(dsn, "_pragma=busy_timeout(5000)")
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open store: ping: %w", err)
	}

	store, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if memory {
		if store.pin, err = db.Connx(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	return store, nil
}

// sharedMemory rewrites an in-memory sqlite DSN into a named shared-cache
// URI so every pooled connection sees the same database. Each ":memory:"
// store gets its own name.
func sharedMemory(dsn string) (string, bool, error) {
	path, query, _ := strings.Cut(dsn, "?")

	anonymous := path == ":memory:" || path == "file::memory:"
	if !anonymous && !hasParam(query, "mode=memory") {
		return dsn, false, nil
	}

	if anonymous {
		id, err := gonanoid.New()
		if err != nil {
			return "", false, err
		}

		dsn = withParam("file:todos-"+id+"?"+query, "mode=memory")
	}

	if !hasParam(query, "cache=shared") {
		dsn = withParam(dsn, "cache=shared")
	}

	return dsn, true, nil
}

func hasParam(query, param string) bool {
	return strings.Contains("&"+query+"&", "&"+param+"&")
}

func withParam(dsn, param string) string {
	switch {
	case strings.HasSuffix(dsn, "?"):
		return dsn + param
	case strings.Contains(dsn, "?"):
		return dsn + "&" + param
	default:
		return dsn + "?" + param
	}
}

// NewStore wraps an existing pool. The driver name selects the SQL dialect.
func NewStore(db *sqlx.DB) (*Store, error) {
	d, ok := dialects[db.DriverName()]
	if !ok {
		return nil, fmt.Errorf("open store: unsupported driver %q", db.DriverName())
	}

	return &Store{db: db, dialect: d}, nil
}

// EnsureSchema is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	if s.pin != nil {
		_ = s.pin.Close()
	}

	return s.db.Close()
}

// Acquire takes a dedicated connection from the pool. The caller must Close
// the returned session.
func (s *Store) Acquire(ctx context.Context) (*Session, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	return &Session{
		conn: conn,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(s.dialect.placeholder),
	}, nil
}

// Session is a Repository bound to a single connection.
type Session struct {
	conn *sqlx.Conn
	sb   squirrel.StatementBuilderType
}

var _ Repository = (*Session)(nil)

func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) Get(ctx context.Context, id int64) (*Todo, error) {
	query, args, err := s.sb.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}

	return s.one(ctx, "get", query, args)
}

func (s *Session) List(ctx context.Context, skip, limit int) ([]Todo, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("list todos: negative window skip=%d limit=%d", skip, limit)
	}

	query, args, err := s.sb.Select(columns...).
		From(table).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(skip)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	todos := []Todo{}
	if err := s.conn.SelectContext(ctx, &todos, query, args...); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return todos, nil
}

func (s *Session) Create(ctx context.Context, content string) (*Todo, error) {
	query, args, err := s.sb.Insert(table).
		Columns("content").
		Values(content).
		Suffix("RETURNING id, content").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	return s.one(ctx, "create", query, args)
}

func (s *Session) Update(ctx context.Context, id int64, in UpdateInput) (*Todo, error) {
	if in.Empty() {
		return s.Get(ctx, id)
	}

	builder := s.sb.Update(table).Where(squirrel.Eq{"id": id})

	if in.Content != nil {
		builder = builder.Set("content", *in.Content)
	}

	query, args, err := builder.Suffix("RETURNING id, content").ToSql()
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	return s.one(ctx, "update", query, args)
}

func (s *Session) Delete(ctx context.Context, id int64) (*Todo, error) {
	query, args, err := s.sb.Delete(table).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, content").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("delete todo: %w", err)
	}

	return s.one(ctx, "delete", query, args)
}

func (s *Session) one(ctx context.Context, op, query string, args []any) (*Todo, error) {
	var todo Todo
	if err := s.conn.GetContext(ctx, &todo, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s todo: %w", op, err)
	}

	return &todo, nil
}
