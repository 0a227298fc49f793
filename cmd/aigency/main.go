package main

import (
	"aigency/cmd/handlers"
	"aigency/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
