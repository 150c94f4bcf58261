package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/shopmetrics/logpipeline/internal/config"
	"github.com/shopmetrics/logpipeline/pkg/generator"
	"go.uber.org/zap"
)

func main() {
	days := flag.Int("days", 0, "number of simulated days of traffic to generate")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	numDays := cfg.Generator.Days
	if *days > 0 {
		numDays = *days
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emitter := generator.NewFileEmitter(cfg.Generator.LogFilePath)
	defer emitter.Sync()

	simulator := generator.NewSimulator(emitter, logger)
	logger.Info(
		"Starting traffic simulation",
		zap.String("file", cfg.Generator.LogFilePath),
		zap.Int("days", numDays),
	)
	if err := simulator.RunSimulation(ctx, numDays); err != nil {
		logger.Info("Simulation stopped", zap.Error(err))
	}
}
