package action

import "go.uber.org/fx"

// Module provides the action repository to Fx.
var Module = fx.Provide(NewRepository)
