package request

import "go.uber.org/fx"

// Module provides the request repository to Fx.
var Module = fx.Provide(NewRepository)
