package main

import (
	"fmt"
	"log"
	"os"

	"profilingpoll/internal/api"
	"profilingpoll/internal/config"
	"profilingpoll/internal/db"
	"profilingpoll/internal/session"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Poll.SeedFile != "" {
		if err := db.LoadSeed(db.DB, cfg.Poll.SeedFile); err != nil {
			fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
			os.Exit(1)
		}
	} else {
		log.Printf("[Main] No seed file configured")
	}

	rdb := session.NewClient(cfg)

	r := api.SetupRouter(cfg, rdb)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
