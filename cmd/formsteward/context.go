package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	formsteward "github.com/Dun-Njuguna/form-steward-sub000"
	"github.com/Dun-Njuguna/form-steward-sub000/internal/config"
	"github.com/Dun-Njuguna/form-steward-sub000/internal/logging"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/definition"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/options"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/parser"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/renderers/tui"
)

type commandContext struct {
	configFlag   string
	envFileFlag  string
	logLevelFlag string
	exampleFlag  string

	driver tui.PromptDriver

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger
	loggerErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(config.Sources{
			EnvFile:  strings.TrimSpace(c.envFileFlag),
			YAMLFile: strings.TrimSpace(c.configFlag),
		})
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.logLevelFlag); level != "" {
			cfg.Log.Level = level
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level: cfg.Log.Level,
			File:  cfg.Log.File,
			Tee:   cfg.Log.Tee,
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger.Named("formsteward")
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) close() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// loadDefinition reads the definition named by --example or by the single
// positional argument.
func (c *commandContext) loadDefinition(ctx context.Context, args []string) (model.FormDefinition, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return model.FormDefinition{}, "", err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return model.FormDefinition{}, "", err
	}

	var (
		src        definition.Source
		loaderOpts []definition.LoaderOption
	)
	switch example := strings.TrimSpace(c.exampleFlag); {
	case example != "":
		if len(args) > 0 {
			return model.FormDefinition{}, "", fmt.Errorf("--example cannot be combined with a source argument")
		}
		file, ok := formsteward.ExampleFile(example)
		if !ok {
			return model.FormDefinition{}, "", fmt.Errorf("unknown example %q (available: %s)",
				example, strings.Join(formsteward.ExampleNames(), ", "))
		}
		src = definition.FromFS(file)
		loaderOpts = append(loaderOpts, definition.WithFileSystem(formsteward.ExampleForms()))
	case len(args) == 1:
		src, err = definition.Parse(args[0])
		if err != nil {
			return model.FormDefinition{}, "", err
		}
		if cfg.HTTP.AllowRemote {
			loaderOpts = append(loaderOpts, definition.WithHTTPFallback(cfg.HTTP.Timeout))
		}
	default:
		return model.FormDefinition{}, "", fmt.Errorf("a definition source or --example is required")
	}

	def, err := formsteward.Load(ctx, formsteward.NewLoader(loaderOpts...), src, c.parserOptions(cfg, logger)...)
	if err != nil {
		return model.FormDefinition{}, src.Location(), err
	}
	logger.Debug("definition loaded",
		zap.String("source", src.Location()),
		zap.String("form", def.FormName),
		zap.Int("steps", len(def.Steps)),
	)
	return def, src.Location(), nil
}

func (c *commandContext) parserOptions(cfg *config.Config, logger *zap.Logger) []parser.Option {
	opts := []parser.Option{parser.WithLogger(logger)}
	if cfg.SanitizeLabels {
		opts = append(opts, parser.WithLabelPolicy(bluemonday.StrictPolicy()))
	}
	return opts
}

// fetcher builds the remote option fetcher from configuration.
func (c *commandContext) fetcher(cfg *config.Config, logger *zap.Logger) *options.HTTPFetcher {
	return options.NewHTTPFetcher(
		options.WithHTTPClient(newHTTPClient(cfg)),
		options.WithResultsPath(cfg.Options.ResultsPath),
		options.WithFields(cfg.Options.IDField, cfg.Options.ValueField),
		options.WithCacheSize(cfg.Options.CacheSize),
		options.WithLogger(logger),
	)
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTP.Timeout}
}
