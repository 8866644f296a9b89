package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/quickbites/dispatch/internal/config"
)

// Module wires the notification hub implementation selected by config: the
// AMQP hub when a RabbitMQ URL is set, the in-memory hub otherwise.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Invoke(registerLifecycle),
)

type hubParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPublisher(p hubParams) (Publisher, error) {
	if p.Config.RabbitURL == "" {
		p.Logger.Info("notification hub running in-memory, no broker configured")
		return NewMemoryHub(), nil
	}
	return DialAMQP(p.Config.RabbitURL, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, pub Publisher) {
	hub, ok := pub.(*AMQPHub)
	if !ok {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return hub.Close()
		},
	})
}
