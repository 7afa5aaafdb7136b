package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/flowbridge/pkg/cmd"
	"github.com/dukex/flowbridge/pkg/config"
	"github.com/dukex/flowbridge/pkg/conversation"
	"github.com/dukex/flowbridge/pkg/engine"
	"github.com/dukex/flowbridge/pkg/executor"
	"github.com/dukex/flowbridge/pkg/log"
	"github.com/dukex/flowbridge/pkg/monitoring"
	"github.com/dukex/flowbridge/pkg/persistence"
	"github.com/dukex/flowbridge/pkg/webhook"
)

const defaultPort = 9092

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowbridge-api",
		Usage:                 "Execute, analyze and observe engine workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "engine-url",
				Usage:    "REST API base URL of the automation engine",
				Required: true,
				Sources:  cli.EnvVars("ENGINE_URL"),
			},
			&cli.StringFlag{
				Name:     "api-key",
				Usage:    "API key for the automation engine",
				Required: true,
				Sources:  cli.EnvVars("ENGINE_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "webhook-base-url",
				Usage:   "Base URL the live and test webhook roots are derived from",
				Sources: cli.EnvVars("WEBHOOK_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "live-webhook-url",
				Usage:   "Explicit webhook root for active workflows",
				Sources: cli.EnvVars("LIVE_WEBHOOK_URL"),
			},
			&cli.StringFlag{
				Name:    "test-webhook-url",
				Usage:   "Explicit webhook root for draft workflows",
				Sources: cli.EnvVars("TEST_WEBHOOK_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Audit store URL (file:// or postgres://); empty disables auditing",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for monitoring snapshot caching; empty disables the cache",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "payload-schemas-path",
				Usage:   "Directory with per-workflow payload JSON schemas; empty disables validation",
				Sources: cli.EnvVars("PAYLOAD_SCHEMAS_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Flowbridge API")

			cfg, err := config.New(command.String("engine-url"), command.String("api-key"))
			if err != nil {
				return err
			}

			cfg.WebhookBaseURL = command.String("webhook-base-url")
			cfg.LiveWebhookURL = command.String("live-webhook-url")
			cfg.TestWebhookURL = command.String("test-webhook-url")

			client := engine.NewClient(cfg, logger)

			resolver, err := webhook.NewResolver(cfg, client, logger)
			if err != nil {
				return err
			}

			eventBus := cmd.NewEventBus(command.String("event-bus"), "flowbridge-api", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var audit persistence.Persistence
			if databaseURL := command.String("database-url"); databaseURL != "" {
				audit = cmd.NewPersistence(ctx, logger, databaseURL)

				defer func() {
					err := audit.Close(ctx)
					if err != nil {
						logger.ErrorContext(ctx, "Failed to close audit store", "error", err)
					}
				}()
			}

			var guard *executor.SchemaGuard
			if schemasPath := command.String("payload-schemas-path"); schemasPath != "" {
				guard = executor.NewSchemaGuard(schemasPath)
			}

			var cache *monitoring.SnapshotCache
			if redisURL := command.String("redis-url"); redisURL != "" {
				cache, err = monitoring.NewSnapshotCache(redisURL, monitoring.DefaultSnapshotTTL, logger)
				if err != nil {
					return err
				}

				defer func() {
					if err := cache.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close snapshot cache", "error", err)
					}
				}()
			}

			runner := executor.NewExecutor(client, resolver, guard, eventBus, audit, logger)
			monitor := monitoring.NewService(client, cache, logger)
			conversations := conversation.NewReconstructor(client, logger)

			api := NewAPI(logger, runner, client, monitor, conversations)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
