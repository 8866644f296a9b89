package config

import "go.uber.org/fx"

// Module provides the resolved dispatch configuration to the fx graph.
var Module = fx.Provide(Load)
