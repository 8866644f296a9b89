package orders

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/quickbites/dispatch/internal/config"
)

// Module exposes the Order service gateway to the fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (Gateway, error) {
	return NewHTTPGateway(p.Config.OrderServiceAddress, p.Logger)
}
