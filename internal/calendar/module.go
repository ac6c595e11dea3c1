package calendar

import "go.uber.org/fx"

// Module provides the calculator and holiday client to Fx.
var Module = fx.Provide(NewCalculator, NewHolidayClient)
