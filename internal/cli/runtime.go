package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dialectiq/dialectiq/internal/aggregator"
	"github.com/dialectiq/dialectiq/internal/config"
	"github.com/dialectiq/dialectiq/internal/dialogue"
	"github.com/dialectiq/dialectiq/internal/events"
	"github.com/dialectiq/dialectiq/internal/gateway"
	"github.com/dialectiq/dialectiq/internal/knowledge"
	"github.com/dialectiq/dialectiq/internal/metrics"
	"github.com/dialectiq/dialectiq/internal/registry"
	"github.com/dialectiq/dialectiq/internal/store"
	"github.com/dialectiq/dialectiq/internal/training"
)

// runtime wires the pipeline services for one command invocation.
type runtime struct {
	cfg        *config.Config
	store      *store.Store
	gateway    gateway.Gateway
	knowledge  *knowledge.Service
	registry   *registry.Registry
	metrics    *metrics.Tracker
	engine     *dialogue.Engine
	aggregator *aggregator.Aggregator
	trainer    *training.Trainer
	publisher  events.Publisher
}

// openRuntime loads config and constructs all services against the shared
// store.
func openRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	st, err := store.New(cfg.Paths.DBPath)
	if err != nil {
		return nil, err
	}

	gw := gateway.NewOpenAIGateway(cfg.Provider.APIKey, cfg.Provider.APIBase,
		cfg.Model.Name, cfg.Model.EmbeddingModel, cfg.Model.MaxTokens, cfg.Model.Temperature)

	ks := knowledge.NewService(st)
	reg := registry.New(st)
	mt := metrics.New(st)

	var pub events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled && cfg.Events.Brokers != "" {
		pub = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
	}

	return &runtime{
		cfg:        cfg,
		store:      st,
		gateway:    gw,
		knowledge:  ks,
		registry:   reg,
		metrics:    mt,
		engine:     dialogue.NewEngine(st, gw, ks, mt),
		aggregator: aggregator.New(ks, gw, pub),
		trainer:    training.New(st, reg, ks, gw),
		publisher:  pub,
	}, nil
}

// close releases the runtime's resources.
func (r *runtime) close() {
	_ = r.publisher.Close()
	_ = r.store.Close()
}
