package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"SoberTrack/internal/cli/commands"
	"SoberTrack/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// конфиг собирается из env и флагов
	cfg := config.NewConfig()

	if cfg.Version {
		fmt.Printf("SoberTrack CLI\nVersion: %s\nBuild date: %s\n", version, buildDate)
		return
	}

	// Ctrl+C и SIGTERM гасят долгие команды (watch, sync) через контекст
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(commands.Dispatch(ctx, cfg, flag.Args()))
}
