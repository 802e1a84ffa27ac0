package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	"itinera/internal/cli"
)

func main() {
	// A .env file is optional; the environment alone is enough.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cli.Execute()
}
