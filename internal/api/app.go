package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/timada-org/todos/internal/events"
	"github.com/timada-org/todos/internal/sse"
	"github.com/timada-org/todos/internal/todo"
)

type Options struct {
	Addr      string
	Origins   []string
	Store     *todo.Store
	Publisher events.Publisher
	Logger    *log.Logger
}

type App struct {
	addr      string
	origins   []string
	store     *todo.Store
	stream    *sse.Server
	publisher events.Publisher
	logger    *log.Logger
}

// New builds the API. Change events go to the event stream served on
// /events and, when set, to options.Publisher.
func New(options Options) *App {
	stream := sse.New()

	publisher := events.Fanout{stream}
	if options.Publisher != nil {
		publisher = append(publisher, options.Publisher)
	}

	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &App{
		addr:      options.Addr,
		origins:   options.Origins,
		store:     options.Store,
		stream:    stream,
		publisher: publisher,
		logger:    logger,
	}
}

func (app *App) Handler() http.Handler {
	router := httprouter.New()
	router.POST("/todos/", app.create())
	router.GET("/todos/", app.list())
	router.GET("/todos/:id", app.read())
	router.PUT("/todos/:id", app.update())
	router.DELETE("/todos/:id", app.delete())
	router.GET("/events", app.stream.HandleFunc())

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.respond(w, r, http.StatusNotFound, ErrorResponse{Detail: "Not Found"})
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.respond(w, r, http.StatusMethodNotAllowed, ErrorResponse{Detail: "Method Not Allowed"})
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		app.logger.Error("panic", "request_id", requestID(r.Context()), "panic", v)
		app.respond(w, r, http.StatusInternalServerError, ErrorResponse{Detail: "Internal Server Error"})
	}

	policy := cors.New(cors.Options{
		AllowedOrigins: app.origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return app.withRequestLog(policy.Handler(router))
}

// Listen serves until ctx is cancelled, then drains in-flight requests.
func (app *App) Listen(ctx context.Context) error {
	server := &http.Server{
		Addr:    app.addr,
		Handler: app.Handler(),
	}
	server.RegisterOnShutdown(app.stream.Shutdown)

	errc := make(chan error, 1)
	go func() {
		app.logger.Info("listening", "addr", app.addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (app *App) Close() {
	app.publisher.Close()

	if err := app.store.Close(); err != nil {
		app.logger.Error("close store", "err", err)
	}
}

func (app *App) create() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		var input todo.CreateInput
		if err := decodeBody(w, r, &input); err != nil {
			app.fail(w, r, err)
			return
		}

		if err := todo.ValidateCreate(&input); err != nil {
			app.fail(w, r, err)
			return
		}

		app.withSession(w, r, events.Created, func(ctx context.Context, repo todo.Repository) (any, error) {
			return repo.Create(ctx, *input.Content)
		})
	}
}

func (app *App) list() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		skip, limit, err := window(r.URL.Query())
		if err != nil {
			app.fail(w, r, err)
			return
		}

		app.withSession(w, r, "", func(ctx context.Context, repo todo.Repository) (any, error) {
			return repo.List(ctx, skip, limit)
		})
	}
}

func (app *App) read() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id, err := todoID(p)
		if err != nil {
			app.fail(w, r, err)
			return
		}

		app.withSession(w, r, "", func(ctx context.Context, repo todo.Repository) (any, error) {
			return repo.Get(ctx, id)
		})
	}
}

func (app *App) update() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		verr := &todo.ValidationError{}

		id, err := todoID(p)
		if err := collect(verr, err); err != nil {
			app.fail(w, r, err)
			return
		}

		var input todo.UpdateInput
		err = decodeBody(w, r, &input)
		if err == nil {
			err = todo.ValidateUpdate(&input)
		}
		if err := collect(verr, err); err != nil {
			app.fail(w, r, err)
			return
		}

		if err := verr.Err(); err != nil {
			app.fail(w, r, err)
			return
		}

		app.withSession(w, r, events.Updated, func(ctx context.Context, repo todo.Repository) (any, error) {
			return repo.Update(ctx, id, input)
		})
	}
}

func (app *App) delete() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		id, err := todoID(p)
		if err != nil {
			app.fail(w, r, err)
			return
		}

		app.withSession(w, r, events.Deleted, func(ctx context.Context, repo todo.Repository) (any, error) {
			return repo.Delete(ctx, id)
		})
	}
}

// withSession runs fn on a connection held only while fn runs and writes
// its result. When event is set and fn returned a todo, the change is
// published after the connection is released.
func (app *App) withSession(w http.ResponseWriter, r *http.Request, event string, fn func(context.Context, todo.Repository) (any, error)) {
	ctx := r.Context()

	result, err := app.run(ctx, fn)
	if err != nil {
		app.fail(w, r, err)
		return
	}

	if t, ok := result.(*todo.Todo); ok && event != "" {
		app.publish(ctx, events.NewTodoEvent(event, t))
	}

	app.respond(w, r, http.StatusOK, result)
}

func (app *App) run(ctx context.Context, fn func(context.Context, todo.Repository) (any, error)) (any, error) {
	sess, err := app.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			app.logger.Warn("release connection", "request_id", requestID(ctx), "err", err)
		}
	}()

	return fn(ctx, sess)
}

func (app *App) publish(ctx context.Context, event *events.Event) {
	if err := app.publisher.Publish(ctx, event); err != nil {
		app.logger.Error("publish event",
			"request_id", requestID(ctx),
			"topic", event.Topic.Value,
			"name", event.Name,
			"err", err,
		)
	}
}
