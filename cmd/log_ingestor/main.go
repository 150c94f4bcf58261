package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopmetrics/logpipeline/internal/config"
	"github.com/shopmetrics/logpipeline/pkg/elasticsearch/bootstrapper"
	"github.com/shopmetrics/logpipeline/pkg/elasticsearch/client"
	"github.com/shopmetrics/logpipeline/pkg/log/aggregation"
	"github.com/shopmetrics/logpipeline/pkg/log/enrichment"
	"github.com/shopmetrics/logpipeline/pkg/log/model"
	"github.com/shopmetrics/logpipeline/pkg/log/parser"
	"github.com/shopmetrics/logpipeline/pkg/pipeline"
	"github.com/shopmetrics/logpipeline/pkg/write_buffer"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	es, err := cfg.EsClient()
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bs := bootstrapper.NewBootstrapper(es, bootstrapper.Config{
		PolicyName:    cfg.Elasticsearch.PolicyName,
		TemplateName:  cfg.Elasticsearch.TemplateName,
		RetentionDays: cfg.Elasticsearch.RetentionDays,
	}, logger)
	if err := bs.BootstrapElasticsearch(ctx); err != nil {
		logger.Fatal("Failed to bootstrap elasticsearch", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	metrics := pipeline.NewMetrics(registry)

	lc := client.NewLogClientImpl(es, client.Async)
	buffer := write_buffer.NewDatabaseWriteBufferImpl[model.LogEntry](
		lc,
		func(entry model.LogEntry) string {
			return bootstrapper.DailyIndexName(entry.Timestamp)
		},
		func(count int) {
			metrics.EntriesIndexed.Add(float64(count))
		},
		logger,
	)

	logParser := parser.NewParser(logger)
	uaParser, err := enrichment.NewUserAgentParser()
	if err != nil {
		logger.Fatal("Failed to create user agent parser", zap.Error(err))
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		logger.Info("Starting metrics server", zap.String("addr", cfg.Ingestor.MetricsAddr))
		if err := http.ListenAndServe(cfg.Ingestor.MetricsAddr, mux); err != nil {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	tailer := pipeline.NewTailer(cfg.Ingestor.LogFilePath, cfg.Ingestor.FromStart, logger)
	p := pipeline.NewPipeline(
		tailer,
		logParser,
		uaParser,
		aggregation.NewAggregator(),
		buffer,
		metrics,
		logger,
		pipeline.WithFlushInterval(cfg.Ingestor.FlushInterval),
	)

	logger.Info("Starting log ingestor", zap.String("file", cfg.Ingestor.LogFilePath))
	if err := p.Run(ctx); err != nil {
		logger.Fatal("Pipeline stopped with error", zap.Error(err))
	}
}
