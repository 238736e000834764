package events

import (
	"context"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/charmbracelet/log"
	"github.com/timada-org/todos/pkg/topic"
)

type WatcherOptions struct {
	URL          string
	Topic        string
	Subscription string
	Filter       *topic.Filter
	Logger       *log.Logger
}

// Watcher consumes change events from the broker and logs the ones whose
// topic matches its filter.
type Watcher struct {
	client   pulsar.Client
	consumer pulsar.Consumer
	filter   *topic.Filter
	logger   *log.Logger
}

func NewWatcher(options WatcherOptions) (*Watcher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: options.URL,
	})
	if err != nil {
		return nil, err
	}

	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            options.Topic,
		SubscriptionName: options.Subscription,
		Type:             pulsar.Exclusive,
	})
	if err != nil {
		client.Close()
		return nil, err
	}

	return &Watcher{
		client:   client,
		consumer: consumer,
		filter:   options.Filter,
		logger:   options.Logger,
	}, nil
}

// Run blocks until ctx is cancelled or the consumer fails.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		msg, err := w.consumer.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		w.handle(msg.Payload())
		w.consumer.Ack(msg)
	}
}

func (w *Watcher) handle(payload []byte) bool {
	event, err := Decode(payload)
	if err != nil {
		w.logger.Warn("skipping event", "err", err)
		return false
	}

	if w.filter != nil && !w.filter.Match(event.Topic) {
		return false
	}

	t, err := event.Todo()
	if err != nil {
		w.logger.Warn("skipping event", "topic", event.Topic.Value, "err", err)
		return false
	}

	w.logger.Info(event.Name, "topic", event.Topic.Value, "id", t.ID, "content", t.Content)

	return true
}

func (w *Watcher) Close() {
	w.consumer.Close()
	w.client.Close()
}
