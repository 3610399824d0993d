package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the shell environment still applies.
	_ = godotenv.Load()
	Execute()
}
