package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/ai"
	"github.com/spigell/jobstir/internal/ai/gemini"
	"github.com/spigell/jobstir/internal/cache"
	"github.com/spigell/jobstir/internal/dictionary"
	"github.com/spigell/jobstir/internal/evaluator"
	"github.com/spigell/jobstir/internal/filtering"
	"github.com/spigell/jobstir/internal/headhunter"
	"github.com/spigell/jobstir/internal/jobs"
	"github.com/spigell/jobstir/internal/logger"
	"github.com/spigell/jobstir/internal/requirements"
	"github.com/spigell/jobstir/internal/secrets"
	"github.com/spigell/jobstir/internal/storage"
)

// application holds everything a command needs. close releases the evaluator
// and the remote cache.
type application struct {
	config    *Config
	logger    *zap.Logger
	corpus    jobs.Provider
	filters   *filtering.Filtering
	evaluator *evaluator.Evaluator

	closers []func() error
}

// setup builds the logger and reads the configuration. Failures are fatal.
func setup() (*Config, *zap.Logger) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobstir", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return config, logger
}

func newApplication(ctx context.Context, config *Config, logger *zap.Logger) (*application, error) {
	a := &application{config: config, logger: logger}

	dict, err := loadDictionary(config.Dictionary)
	if err != nil {
		return nil, err
	}

	results, err := a.newCache(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	a.corpus, err = newCorpus(config.Corpus, dict, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	a.filters = filtering.Default(config.Filters, logger.Named("filtering"))

	sink, err := newSink(ctx, config.Storage, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	var reviewer ai.Reviewer
	if config.AI != nil && config.AI.Enabled {
		reviewer, err = newReviewer(ctx, config.AI, logger)
		if err != nil {
			// the review is advisory, evaluations work without it
			logger.Warn("skipping AI review", zap.Error(err))
			reviewer = nil
		}
	}

	a.evaluator = evaluator.New(config.Evaluator, evaluator.Deps{
		Dictionary: dict,
		Cache:      results,
		Corpus:     a.corpus,
		Filters:    a.filters,
		Sink:       sink,
		Reviewer:   reviewer,
		Logger:     logger,
	})
	a.closers = append([]func() error{a.evaluator.Close}, a.closers...)

	return a, nil
}

func (a *application) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("closing resources", zap.Error(err))
		}
	}
	a.closers = nil
}

func loadDictionary(path string) (*dictionary.Dictionary, error) {
	if strings.TrimSpace(path) == "" {
		return dictionary.Default(), nil
	}
	return dictionary.Load(path)
}

func (a *application) newCache(ctx context.Context) (*cache.Cache[*evaluator.Result], error) {
	cfg := a.config.Cache
	opts := []cache.Option[*evaluator.Result]{cache.WithLogger[*evaluator.Result](a.logger.Named("cache"))}

	if cfg.Redis != nil && cfg.Redis.Address != "" {
		store, err := cache.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis cache: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		opts = append(opts, cache.WithRemote[*evaluator.Result](store))
	}

	return cache.New(cfg.MaxEntries, opts...), nil
}

func newCorpus(cfg CorpusConfig, dict *dictionary.Dictionary, logger *zap.Logger) (jobs.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "":
		return nil, nil
	case corpusSourceFile:
		if cfg.File == "" {
			return nil, errors.New("corpus.file is required for the file corpus")
		}
		return jobs.NewFileProvider(cfg.File), nil
	case corpusSourceHeadhunter:
		hh, err := newHeadhunter(cfg.Headhunter, dict, logger)
		if err != nil {
			return nil, err
		}
		return hh, nil
	default:
		return nil, fmt.Errorf("unsupported corpus source: %s", cfg.Source)
	}
}

func newHeadhunter(cfg *headhunter.Config, dict *dictionary.Dictionary, logger *zap.Logger) (*headhunter.Client, error) {
	if cfg == nil || cfg.Search == nil {
		return nil, errors.New("corpus.headhunter.search is required for the headhunter corpus")
	}

	var token string
	if strings.TrimSpace(cfg.TokenFile) != "" {
		var err error
		token, err = secrets.Load(secrets.Source{Name: "headhunter token", File: cfg.TokenFile})
		if err != nil {
			return nil, err
		}
	}

	hh := headhunter.New(logger.Named("headhunter"), token)
	if cfg.UserAgent != "" {
		hh.UserAgent = cfg.UserAgent
	}
	hh.Search = cfg.Search
	hh.Details = cfg.Details

	extractor := requirements.NewExtractor(dict)
	hh.Requirements = func(description string) []string {
		return extractor.Extract(description).RequiredSkills
	}

	return hh, nil
}

func newSink(ctx context.Context, cfg storage.Config, logger *zap.Logger) (storage.Sink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", storage.DriverNone:
		return storage.NopSink{}, nil
	case storage.DriverFile:
		sink, err := storage.NewFileSink(cfg.File)
		if err != nil {
			return nil, err
		}
		logger.Info("persisting evaluations to file", zap.String("filename", sink.Path()))
		return sink, nil
	case storage.DriverPostgres:
		db, err := connectDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &storage.PostgresSink{DB: db}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func newReviewer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Reviewer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai review is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	reviewer := gemini.NewReviewer(generator, cfg.Gemini.MaxLogLength, logger.Named("ai"))
	reviewer.SetPromptOverrides(gemini.PromptOverrides{
		Tone:             cfg.Gemini.Tone,
		UserInstructions: cfg.Gemini.Instructions,
	})

	return reviewer, nil
}
