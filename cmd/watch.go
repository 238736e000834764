package cmd

import (
	"errors"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/cobra"
	"github.com/timada-org/todos/internal/core"
	"github.com/timada-org/todos/internal/events"
	"github.com/timada-org/todos/internal/logging"
	"github.com/timada-org/todos/pkg/topic"
)

var watchCmd = &cobra.Command{
	Use:   "watch [filter]",
	Short: "Log todo change events matching a topic filter",
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.NewConfig(cfgFile)
		if err != nil {
			return err
		}

		if config.Broker.URL == "" {
			return errors.New("watch: broker.url is not configured")
		}

		value := "todos/#"
		if len(args) == 1 {
			value = args[0]
		}

		filter, err := topic.NewFilter(value)
		if err != nil {
			return err
		}

		logger, closer, err := logging.New(config.LogOptions())
		if err != nil {
			return err
		}
		defer closer.Close()

		id, err := gonanoid.New()
		if err != nil {
			return err
		}

		w, err := events.NewWatcher(events.WatcherOptions{
			URL:          config.Broker.URL,
			Topic:        config.Broker.Topic,
			Subscription: "todos-watch-" + id,
			Filter:       filter,
			Logger:       logger,
		})
		if err != nil {
			return err
		}
		defer w.Close()

		logger.Info("watching", "topic", config.Broker.Topic, "filter", filter.Value)

		return w.Run(cmd.Context())
	},
}
