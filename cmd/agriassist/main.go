package main

import (
	"flag"
	"log"

	"github.com/agriassist/agriassist/internal/builder"
)

func main() {
	envFile := flag.String("env", ".env", "path to env file (missing file is ignored)")
	flag.Parse()

	app, err := builder.Build(*envFile)
	if err != nil {
		log.Fatal("Failed to build application: ", err)
	}

	if err := app.Run(); err != nil {
		log.Fatal("Application error: ", err)
	}
}
