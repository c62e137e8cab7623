package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/storageorder/internal/buildinfo"
	"github.com/dmitrijs2005/storageorder/internal/cli"
	"github.com/dmitrijs2005/storageorder/internal/config"
	"github.com/dmitrijs2005/storageorder/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]

	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, os.Stdout, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, args)
	_ = app.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
