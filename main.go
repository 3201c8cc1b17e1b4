package main

import (
	"flag"
	"log"

	"haspd/config"
	"haspd/server"
)

func main() {
	configFile := flag.String("config", "", "Path of the configuration file to use (optional, env vars also work).")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := &server.App{}
	app.Initialize(cfg)
	if err := app.Run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
