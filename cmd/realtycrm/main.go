// Command realtycrm serves the role-scoped CRM dashboard API.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/realtycrm/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
