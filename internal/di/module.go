package di

import (
	"github.com/quickbites/dispatch/internal/adapter/orders"
	"github.com/quickbites/dispatch/internal/app"
	"github.com/quickbites/dispatch/internal/config"
	"github.com/quickbites/dispatch/internal/dispatch"
	"github.com/quickbites/dispatch/internal/logger"
	"github.com/quickbites/dispatch/internal/notify"
	"github.com/quickbites/dispatch/internal/server/http/handlers"
	"github.com/quickbites/dispatch/internal/server/http/router"
	"github.com/quickbites/dispatch/internal/storage/postgres"
	"github.com/quickbites/dispatch/internal/storage/rediscache"
	"github.com/quickbites/dispatch/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		rediscache.Module,
		notify.Module,
		orders.Module,
		usecase.Module,
		fx.Provide(func(g orders.Gateway) usecase.OrderSync { return g }),
		fx.Provide(func(f *app.DispatchFacade) handlers.DispatchFacade { return f }),
		fx.Provide(func(f *app.DispatchFacade) dispatch.Facade { return f }),
		fx.Provide(func(e *dispatch.Engine) handlers.AssignmentControl { return e }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
