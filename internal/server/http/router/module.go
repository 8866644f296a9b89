package router

import "go.uber.org/fx"

// Module provides the gin engine with all dispatch routes mounted.
var Module = fx.Provide(Setup)
