// Package config loads the formsteward CLI configuration.
//
// Layers, lowest precedence first: built-in defaults, an optional .env file,
// an optional YAML file and FORMSTEWARD_ prefixed environment variables where
// "__" separates sections (FORMSTEWARD_LOG__LEVEL sets log.level).
package config

import "time"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMSTEWARD_"

// Log configures the CLI logger.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	File  string `koanf:"file"`
	Tee   bool   `koanf:"tee"`
}

// HTTP configures definition downloads and option fetches.
type HTTP struct {
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	AllowRemote bool          `koanf:"allow_remote"`
}

// Options configures how remote option lists are decoded and cached.
type Options struct {
	CacheSize   int    `koanf:"cache_size" validate:"gte=0"`
	ResultsPath string `koanf:"results_path"`
	IDField     string `koanf:"id_field" validate:"required"`
	ValueField  string `koanf:"value_field" validate:"required"`
}

// Trigger configures validation dispatch.
type Trigger struct {
	// Concurrency caps parallel field validations; zero means unbounded.
	Concurrency int `koanf:"concurrency" validate:"gte=0"`
}

// Config is the merged configuration tree.
type Config struct {
	Log            Log     `koanf:"log"`
	HTTP           HTTP    `koanf:"http"`
	Options        Options `koanf:"options"`
	Trigger        Trigger `koanf:"trigger"`
	SanitizeLabels bool    `koanf:"sanitize_labels"`
}

var defaults = map[string]any{
	"log.level":           "info",
	"log.file":            "",
	"log.tee":             false,
	"http.timeout":        "10s",
	"http.allow_remote":   true,
	"options.cache_size":  128,
	"options.id_field":    "id",
	"options.value_field": "value",
	"trigger.concurrency": 0,
	"sanitize_labels":     true,
}
