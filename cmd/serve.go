package cmd

import (
	"github.com/spf13/cobra"
	"github.com/timada-org/todos/internal/api"
	"github.com/timada-org/todos/internal/core"
	"github.com/timada-org/todos/internal/events"
	"github.com/timada-org/todos/internal/logging"
	"github.com/timada-org/todos/internal/todo"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the todos HTTP API",

	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.NewConfig(cfgFile)
		if err != nil {
			return err
		}

		logger, closer, err := logging.New(config.LogOptions())
		if err != nil {
			return err
		}
		defer closer.Close()

		store, err := todo.Open(cmd.Context(), config.Database.Driver, config.Database.DSN)
		if err != nil {
			return err
		}

		logger.Info("database ready", "driver", config.Database.Driver)

		var publisher events.Publisher
		if config.Broker.URL != "" {
			p, err := events.NewPulsarPublisher(events.PulsarOptions{
				URL:   config.Broker.URL,
				Topic: config.Broker.Topic,
			})
			if err != nil {
				_ = store.Close()
				return err
			}

			publisher = p
			logger.Info("publishing events", "broker", config.Broker.URL, "topic", config.Broker.Topic)
		}

		app := api.New(api.Options{
			Addr:      config.Addr,
			Origins:   config.Cors.Origins,
			Store:     store,
			Publisher: publisher,
			Logger:    logger,
		})
		defer app.Close()

		return app.Listen(cmd.Context())
	},
}
