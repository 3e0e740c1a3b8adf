package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var validate = validator.New()

// Sources names the optional files merged by Load. Empty paths are skipped;
// a missing .env file is ignored, a missing YAML file is an error.
type Sources struct {
	EnvFile  string
	YAMLFile string
	Logger   *zap.Logger
}

// Load merges defaults, the files in src and the environment, then validates
// the result.
func Load(src Sources) (*Config, error) {
	logger := src.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("config: default %s: %w", key, err)
		}
	}

	if src.EnvFile != "" {
		vars, err := godotenv.Read(src.EnvFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("no .env file", zap.String("file", src.EnvFile))
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", src.EnvFile, err)
		default:
			for name, value := range vars {
				if !strings.HasPrefix(name, EnvPrefix) {
					continue
				}
				if err := k.Set(envKey(name), value); err != nil {
					return nil, fmt.Errorf("config: %s: %w", name, err)
				}
			}
			logger.Debug("config .env loaded", zap.String("file", src.EnvFile))
		}
	}

	if src.YAMLFile != "" {
		if _, err := os.Stat(src.YAMLFile); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := k.Load(file.Provider(src.YAMLFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", src.YAMLFile, err)
		}
		logger.Debug("config yaml loaded", zap.String("file", src.YAMLFile))
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger.Debug("config loaded",
		zap.String("log_level", cfg.Log.Level),
		zap.Duration("http_timeout", cfg.HTTP.Timeout),
		zap.Int("option_cache", cfg.Options.CacheSize),
	)
	return &cfg, nil
}

// envKey maps FORMSTEWARD_OPTIONS__CACHE_SIZE to options.cache_size.
func envKey(name string) string {
	name = strings.TrimPrefix(name, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(name, "__", "."))
}
