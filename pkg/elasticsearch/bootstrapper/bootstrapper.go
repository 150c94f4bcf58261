package bootstrapper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

const retries = 30
const waitTime = 5

// Config names the lifecycle policy and index template to register. PolicyFile
// and TemplateFile, when set, point at external JSON payloads that replace the
// built-in bodies. Elasticsearch remains the authority on validating either.
type Config struct {
	PolicyName    string
	TemplateName  string
	RetentionDays int
	PolicyFile    string
	TemplateFile  string
}

func (c Config) withDefaults() Config {
	if c.PolicyName == "" {
		c.PolicyName = DefaultPolicyName
	}
	if c.TemplateName == "" {
		c.TemplateName = DefaultTemplateName
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = DefaultRetentionDays
	}
	return c
}

type Bootstrapper struct {
	esClient *elasticsearch.Client
	config   Config
	logger   *zap.Logger
}

func NewBootstrapper(esClient *elasticsearch.Client, config Config, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{
		esClient: esClient,
		config:   config.withDefaults(),
		logger:   logger,
	}
}

// BootstrapElasticsearch waits for the cluster and registers the lifecycle
// policy and the index template. Both registrations are idempotent PUTs, and
// their relative order does not matter.
func (bs *Bootstrapper) BootstrapElasticsearch(ctx context.Context) error {
	if err := bs.waitForElasticsearch(retries, waitTime*time.Second); err != nil {
		return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}

	if err := bs.PutLifecyclePolicy(ctx); err != nil {
		return fmt.Errorf("error registering lifecycle policy: %w", err)
	}

	if err := bs.PutIndexTemplate(ctx); err != nil {
		return fmt.Errorf("error registering index template: %w", err)
	}

	return nil
}

func (bs *Bootstrapper) waitForElasticsearch(maxRetries int, delay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		res, err := bs.esClient.Info()
		if err == nil && res.StatusCode == 200 {
			res.Body.Close()
			bs.logger.Info("Elasticsearch is available")
			return nil
		}
		if res != nil {
			res.Body.Close()
		}
		bs.logger.Warn(fmt.Sprintf("Elasticsearch not available (attempt %d/%d), retrying...", i+1, maxRetries))

		time.Sleep(delay)
	}

	return fmt.Errorf("Elasticsearch is not available after %d attempts", maxRetries)
}

// PutLifecyclePolicy registers or replaces the lifecycle policy under the
// configured name.
func (bs *Bootstrapper) PutLifecyclePolicy(ctx context.Context) error {
	body, err := bs.policyBody()
	if err != nil {
		return err
	}

	res, err := bs.esClient.ILM.PutLifecycle(
		bs.config.PolicyName,
		bs.esClient.ILM.PutLifecycle.WithBody(bytes.NewReader(body)),
		bs.esClient.ILM.PutLifecycle.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("error putting lifecycle policy %s: %w", bs.config.PolicyName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error response for lifecycle policy %s: %s", bs.config.PolicyName, res.String())
	}

	bs.logger.Info("Successfully registered lifecycle policy", zap.String("policy_name", bs.config.PolicyName))
	return nil
}

// PutIndexTemplate registers or replaces the composable index template binding
// the daily log index pattern to its mappings, settings and lifecycle policy.
func (bs *Bootstrapper) PutIndexTemplate(ctx context.Context) error {
	body, err := bs.templateBody()
	if err != nil {
		return err
	}

	res, err := bs.esClient.Indices.PutIndexTemplate(
		bs.config.TemplateName,
		bytes.NewReader(body),
		bs.esClient.Indices.PutIndexTemplate.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("error putting index template %s: %w", bs.config.TemplateName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error response for index template %s: %s", bs.config.TemplateName, res.String())
	}

	bs.logger.Info("Successfully registered index template", zap.String("template_name", bs.config.TemplateName))
	return nil
}

func (bs *Bootstrapper) policyBody() ([]byte, error) {
	if bs.config.PolicyFile != "" {
		return LoadBody(bs.config.PolicyFile)
	}
	body, err := json.Marshal(lifecyclePolicy(bs.config.RetentionDays))
	if err != nil {
		return nil, fmt.Errorf("error marshaling lifecycle policy: %w", err)
	}
	return body, nil
}

func (bs *Bootstrapper) templateBody() ([]byte, error) {
	if bs.config.TemplateFile != "" {
		return LoadBody(bs.config.TemplateFile)
	}
	body, err := json.Marshal(logsIndexTemplate(bs.config.PolicyName))
	if err != nil {
		return nil, fmt.Errorf("error marshaling index template: %w", err)
	}
	return body, nil
}

// LoadBody reads an external JSON payload file. The payload is checked for
// well-formed JSON only; semantic validation is the cluster's job.
func LoadBody(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading payload file %s: %w", path, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("payload file %s is not valid JSON", path)
	}
	return body, nil
}
