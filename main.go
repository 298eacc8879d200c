package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/camden-git/photosync/cli"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cli.Execute()
}
