package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/dukex/flowbridge/pkg/cmd"
	"github.com/dukex/flowbridge/pkg/config"
	"github.com/dukex/flowbridge/pkg/engine"
	"github.com/dukex/flowbridge/pkg/log"
	"github.com/dukex/flowbridge/pkg/monitoring"
)

func main() {
	command := &cli.Command{
		Name:                  "flowbridge-monitor",
		Usage:                 "Poll workflow executions and publish live monitoring snapshots",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "monitor-id",
				Aliases: []string{"id"},
				Usage:   "Custom monitor ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("MONITOR_ID"),
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
			&cli.StringSliceFlag{
				Name:     "workflow-ids",
				Usage:    "Workflow ids to monitor",
				Required: true,
				Sources:  cli.EnvVars("WORKFLOW_IDS"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Polling schedule in cron syntax",
				Value:   "@every 5s",
				Sources: cli.EnvVars("MONITOR_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for monitoring snapshot caching; empty disables the cache",
				Sources: cli.EnvVars("REDIS_URL"),
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

			monitorID := command.String("monitor-id")
			if monitorID == "" {
				monitorID = fmt.Sprintf("monitor-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("monitor").With("monitor_id", monitorID)

			logger.InfoContext(ctx, "Initializing Flowbridge Monitor")

			cfg, err := config.New(command.String("engine-url"), command.String("api-key"))
			if err != nil {
				return err
			}

			client := engine.NewClient(cfg, logger)

			eventBus := cmd.NewEventBus(command.String("event-bus"), "flowbridge-monitor", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

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

			monitor := monitoring.NewService(client, cache, logger)

			poller := NewPoller(
				monitor,
				eventBus,
				command.StringSlice("workflow-ids"),
				command.String("schedule"),
				logger,
			)

			err = poller.Start(ctx)
			if err != nil {
				return err
			}

			defer poller.Stop()

			stop, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			<-stop.Done()

			logger.InfoContext(ctx, "Shutting down Flowbridge Monitor")

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
