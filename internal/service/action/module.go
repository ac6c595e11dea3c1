package action

import "go.uber.org/fx"

// Module provides the SEP action service to Fx.
var Module = fx.Provide(NewService)
