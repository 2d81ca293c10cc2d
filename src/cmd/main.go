package main

import (
	"log"

	cfg "profileserv/src/configuration"
	"profileserv/src/logger"
	server "profileserv/src/server"
)

func main() {
	config := cfg.ReadProperties()
	if err := logger.Init(config.LogLevel); err != nil {
		log.Fatalf("can not init logger: %v", err)
	}
	server.RunServer(config)
}
