package main

import (
	"go.uber.org/fx"

	"github.com/edusupply/compras/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
