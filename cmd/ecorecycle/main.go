// cmd/ecorecycle/main.go
package main

import (
	"context"
	"os"

	"github.com/dalemusser/ecorecycle/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	// app.Run logs its own failures before returning.
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		os.Exit(1)
	}
}
