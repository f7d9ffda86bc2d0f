package main

import (
	"log"

	"github.com/MrSnakeDoc/smartnote/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ smartnote failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ smartnote stopped with error: %v", err)
	}
}
