package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"nodeguard-platform/internal/config"
	"nodeguard-platform/internal/container"
	"nodeguard-platform/internal/events"
	"nodeguard-platform/internal/server"
	"nodeguard-platform/internal/services"
)

func main() {
	app := fx.New(
		container.Module,
		fx.Invoke(func(
			lc fx.Lifecycle,
			cfg *config.Config,
			srv *server.Server,
			poller *services.EventPoller,
			stream *events.StreamConsumer,
		) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.Printf("Starting NodeGuard platform on port %s", cfg.Server.Port)

					if cfg.Poller.Enabled {
						poller.Start()
					}

					if cfg.Kafka.Enabled {
						if err := stream.Start(); err != nil {
							return err
						}
					}

					// Start server in background
					go func() {
						if err := srv.Start(context.Background()); err != nil {
							log.Printf("Server error: %v", err)
						}
					}()

					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.Println("Shutting down NodeGuard platform")

					if cfg.Poller.Enabled {
						poller.Stop()
					}
					if cfg.Kafka.Enabled {
						if err := stream.Stop(ctx); err != nil {
							log.Printf("Stream consumer shutdown error: %v", err)
						}
					}
					return srv.Stop()
				},
			})
		}),
	)

	app.Run()
}
