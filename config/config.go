// Package config loads sigann run configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/sigann"
	"github.com/hupe1980/sigann/internal/resource"
	"gopkg.in/yaml.v3"
)

// Config is the root of a run configuration file.
type Config struct {
	Engine    EngineConfig   `yaml:"engine"`
	Dataset   DatasetConfig  `yaml:"dataset"`
	Storage   StorageConfig  `yaml:"storage"`
	Resources ResourceConfig `yaml:"resources"`
	Log       LogConfig      `yaml:"log"`
}

type EngineConfig struct {
	K                int    `yaml:"k"`
	PartitionLength  int    `yaml:"partition_length"`
	LeafSize         int    `yaml:"leaf_size"`
	HyperplaneSplit  string `yaml:"hyperplane_split"`  // origin | bisector
	NeighborCapacity int    `yaml:"neighbor_capacity"` // 0 = k
	Budget           int    `yaml:"budget"`
	GraphHops        int    `yaml:"graph_hops"`
	FilterMode       string `yaml:"filter_mode"` // uniform | ignore
	Method           string `yaml:"method"`      // graph | tree | exhaustive
	Seed             uint64 `yaml:"seed"`
	Workers          int    `yaml:"workers"` // 0 = GOMAXPROCS
}

type DatasetConfig struct {
	Dimension  int    `yaml:"dimension"`
	Records    string `yaml:"records"`
	Queries    string `yaml:"queries"`
	BatchSize  int    `yaml:"batch_size"`
	Categories int    `yaml:"categories"` // generate only
	NumRecords int    `yaml:"num_records"`
	NumQueries int    `yaml:"num_queries"`
	Seed       uint64 `yaml:"seed"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend"` // local | s3 | minio
	Path      string `yaml:"path"`    // local root
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// ResourceConfig sizes are human-readable ("4 GiB", "64MB"); empty means unlimited.
type ResourceConfig struct {
	MemoryLimit string `yaml:"memory_limit"`
	MaxWorkers  int    `yaml:"max_workers"`
	IOLimit     string `yaml:"io_limit"` // per second
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			K:               sigann.DefaultK,
			PartitionLength: sigann.DefaultPartitionLength,
			LeafSize:        sigann.DefaultLeafSize,
			GraphHops:       sigann.DefaultGraphHops,
			FilterMode:      "uniform",
			Method:          "graph",
			Seed:            sigann.DefaultSeed,
		},
		Dataset: DatasetConfig{
			Dimension:  100,
			Records:    "records.bin",
			Queries:    "queries.bin",
			Categories: 1000,
			NumRecords: 1_000_000,
			NumQueries: 10_000,
			Seed:       1,
		},
		Storage: StorageConfig{
			Backend: "local",
			Path:    ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over Default. An empty path looks for sigann.yaml and
// configs/sigann.yaml and falls back to the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, p := range []string{"sigann.yaml", "configs/sigann.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				return cfg, cfg.decode(data)
			}
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.decode(data)
}

func (c *Config) decode(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.applyDefaults()
	return c.Validate()
}

func (c *Config) applyDefaults() {
	if c.Engine.K <= 0 {
		c.Engine.K = sigann.DefaultK
	}
	if c.Engine.FilterMode == "" {
		c.Engine.FilterMode = "uniform"
	}
	if c.Engine.Method == "" {
		c.Engine.Method = "graph"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error
	if c.Dataset.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("dataset.dimension must be positive, got %d", c.Dataset.Dimension))
	}
	if _, err := sigann.ParseFilterMode(c.Engine.FilterMode); err != nil {
		errs = append(errs, fmt.Errorf("engine.filter_mode: %w", err))
	}
	if _, err := sigann.ParseHyperplaneSplit(c.Engine.HyperplaneSplit); err != nil {
		errs = append(errs, fmt.Errorf("engine.hyperplane_split: %w", err))
	}
	if _, err := sigann.ParseMethod(c.Engine.Method); err != nil {
		errs = append(errs, fmt.Errorf("engine.method: %w", err))
	}
	switch c.Storage.Backend {
	case "local", "s3", "minio":
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if (c.Storage.Backend == "s3" || c.Storage.Backend == "minio") && c.Storage.Bucket == "" {
		errs = append(errs, fmt.Errorf("storage.bucket is required for backend %q", c.Storage.Backend))
	}
	if _, err := parseBytes(c.Resources.MemoryLimit); err != nil {
		errs = append(errs, fmt.Errorf("resources.memory_limit: %w", err))
	}
	if _, err := parseBytes(c.Resources.IOLimit); err != nil {
		errs = append(errs, fmt.Errorf("resources.io_limit: %w", err))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// EngineOptions maps the engine section to engine options.
func (c *Config) EngineOptions() ([]sigann.Option, error) {
	mode, err := sigann.ParseFilterMode(c.Engine.FilterMode)
	if err != nil {
		return nil, err
	}
	split, err := sigann.ParseHyperplaneSplit(c.Engine.HyperplaneSplit)
	if err != nil {
		return nil, err
	}
	opts := []sigann.Option{
		sigann.WithK(c.Engine.K),
		sigann.WithBudget(c.Engine.Budget),
		sigann.WithFilterMode(mode),
		sigann.WithHyperplaneSplit(split),
		sigann.WithSeed(c.Engine.Seed),
	}
	if c.Engine.PartitionLength > 0 {
		opts = append(opts, sigann.WithPartitionLength(c.Engine.PartitionLength))
	}
	if c.Engine.LeafSize > 0 {
		opts = append(opts, sigann.WithLeafSize(c.Engine.LeafSize))
	}
	if c.Engine.NeighborCapacity > 0 {
		opts = append(opts, sigann.WithNeighborCapacity(c.Engine.NeighborCapacity))
	}
	if c.Engine.GraphHops > 0 {
		opts = append(opts, sigann.WithGraphHops(c.Engine.GraphHops))
	}
	if c.Engine.Workers > 0 {
		opts = append(opts, sigann.WithWorkers(c.Engine.Workers))
	}
	return opts, nil
}

// ResourceController builds the controller described by the resources section.
func (c *Config) ResourceController() (*resource.Controller, error) {
	mem, err := parseBytes(c.Resources.MemoryLimit)
	if err != nil {
		return nil, err
	}
	ioLimit, err := parseBytes(c.Resources.IOLimit)
	if err != nil {
		return nil, err
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   mem,
		MaxWorkers:         int64(c.Resources.MaxWorkers),
		IOLimitBytesPerSec: ioLimit,
	}), nil
}

// SlogLevel parses the log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}

// Logger builds the logger described by the log section.
func (l LogConfig) Logger() (*sigann.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(l.Format) {
	case "json":
		return sigann.NewJSONLogger(level), nil
	case "", "text":
		return sigann.NewTextLogger(level), nil
	default:
		return nil, fmt.Errorf("config: unknown log format %q", l.Format)
	}
}

func parseBytes(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
