// Command server runs the rental-contract tracker HTTP API.
//
// Configuration is read from CONFIG_PATH (YAML) or environment variables;
// a .env file in the working directory is loaded if present.
// Requires DATABASE_DSN to be set.
package main

import (
	"context"
	"log"

	"github.com/marcosklein04/alquileres-ai/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
