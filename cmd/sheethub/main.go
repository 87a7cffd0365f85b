package main

import (
	"log"

	"github.com/adisetya/sheethub/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ sheethub failed to start: %v", err)
	}
}
