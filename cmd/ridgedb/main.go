package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"ridgedb/internal/config"
	"ridgedb/internal/engine"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	eng, err := engine.Open(cfg.DBPath, log)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer eng.Close()
	eng.SetCacheCapacity(cfg.CacheCapacity)

	if cfg.ServerAddr != "" {
		if err := runServer(eng, cfg.ServerAddr, log); err != nil {
			log.Fatal("server", zap.Error(err))
		}
		return
	}

	if err := runREPL(eng); err != nil {
		log.Fatal("repl", zap.Error(err))
	}
}
