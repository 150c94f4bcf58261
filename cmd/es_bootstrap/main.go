package main

import (
	"context"
	"flag"

	"github.com/shopmetrics/logpipeline/internal/config"
	"github.com/shopmetrics/logpipeline/pkg/elasticsearch/bootstrapper"
	"go.uber.org/zap"
)

func main() {
	policyFile := flag.String("policy-file", "", "path to a JSON file with the lifecycle policy body")
	templateFile := flag.String("template-file", "", "path to a JSON file with the index template body")
	policyName := flag.String("policy-name", "", "name of the lifecycle policy")
	templateName := flag.String("template-name", "", "name of the index template")
	retentionDays := flag.Int("retention-days", 0, "days to keep daily log indices")
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

	es, err := cfg.EsClient()
	if err != nil {
		logger.Fatal("Failed to create elasticsearch client", zap.Error(err))
	}

	bsConfig := bootstrapper.Config{
		PolicyName:    cfg.Elasticsearch.PolicyName,
		TemplateName:  cfg.Elasticsearch.TemplateName,
		RetentionDays: cfg.Elasticsearch.RetentionDays,
		PolicyFile:    *policyFile,
		TemplateFile:  *templateFile,
	}
	if *policyName != "" {
		bsConfig.PolicyName = *policyName
	}
	if *templateName != "" {
		bsConfig.TemplateName = *templateName
	}
	if *retentionDays > 0 {
		bsConfig.RetentionDays = *retentionDays
	}

	bs := bootstrapper.NewBootstrapper(es, bsConfig, logger)
	if err := bs.BootstrapElasticsearch(context.Background()); err != nil {
		logger.Fatal("Failed to bootstrap elasticsearch", zap.Error(err))
	}
	logger.Info(
		"Elasticsearch bootstrap complete",
		zap.String("policy", bsConfig.PolicyName),
		zap.String("template", bsConfig.TemplateName),
	)
}
