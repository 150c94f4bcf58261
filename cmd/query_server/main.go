package main

import (
	"context"
	"net/http"

	"github.com/shopmetrics/logpipeline/internal/config"
	"github.com/shopmetrics/logpipeline/internal/query_server/router"
	"github.com/shopmetrics/logpipeline/internal/query_server/service/logquery"
	"github.com/shopmetrics/logpipeline/pkg/elasticsearch/bootstrapper"
	"github.com/shopmetrics/logpipeline/pkg/elasticsearch/client"
	"go.uber.org/zap"
)

// @title Log Pipeline API
// @version 1.0
// @description Query API over enriched e-commerce log events stored in Elasticsearch.

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

	bs := bootstrapper.NewBootstrapper(es, bootstrapper.Config{
		PolicyName:    cfg.Elasticsearch.PolicyName,
		TemplateName:  cfg.Elasticsearch.TemplateName,
		RetentionDays: cfg.Elasticsearch.RetentionDays,
	}, logger)
	if err := bs.BootstrapElasticsearch(context.Background()); err != nil {
		logger.Fatal("Failed to bootstrap elasticsearch", zap.Error(err))
	}

	lc := client.NewLogClientImpl(es, client.Wait)
	logQueryService := logquery.NewLogQueryService(lc, logger)

	r := router.CreateRouter(context.Background(), logQueryService, logger)
	logger.Info("Starting query server", zap.String("addr", cfg.QueryServer.ListenAddr))
	if err := http.ListenAndServe(cfg.QueryServer.ListenAddr, r); err != nil {
		logger.Fatal("Failed to serve", zap.Error(err))
	}
}
