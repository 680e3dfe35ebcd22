package main

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/poiesic/transmem/ai"
	"github.com/poiesic/transmem/search"
)

// fileConfig is the TOML configuration surface. Every field is optional;
// zero values fall back to the library defaults.
type fileConfig struct {
	Embedding struct {
		Host              string  `toml:"host"`
		Model             string  `toml:"model"`
		RequestsPerSecond float64 `toml:"requests_per_second"`
		MaxRetries        int     `toml:"max_retries"`
		RetryDelay        string  `toml:"retry_delay"`
	} `toml:"embedding"`

	Search struct {
		HighThreshold   float64 `toml:"high_threshold"`
		LowThreshold    float64 `toml:"low_threshold"`
		MaxResults      int     `toml:"max_results"`
		TierBudget      string  `toml:"tier_budget"`
		BoostProject    float64 `toml:"boost_project"`
		BoostFileType   float64 `toml:"boost_file_type"`
		CacheSize       int     `toml:"cache_size"`
		EditRadius      int     `toml:"edit_radius"`
		BucketTolerance float64 `toml:"bucket_tolerance"`
	} `toml:"search"`
}

func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *fileConfig) aiConfig() *ai.Config {
	opts := []ai.ConfigOption{}
	if c.Embedding.Host != "" {
		opts = append(opts, ai.WithEmbeddingHost(c.Embedding.Host))
	}
	if c.Embedding.Model != "" {
		opts = append(opts, ai.WithEmbeddingModel(c.Embedding.Model))
	}
	if c.Embedding.RequestsPerSecond > 0 {
		opts = append(opts, ai.WithRequestsPerSecond(c.Embedding.RequestsPerSecond))
	}
	if c.Embedding.MaxRetries > 0 {
		delay, err := time.ParseDuration(c.Embedding.RetryDelay)
		if err != nil || delay <= 0 {
			delay = time.Second
		}
		opts = append(opts, ai.WithRetries(c.Embedding.MaxRetries, delay))
	}
	return ai.NewConfig(opts...)
}

func (c *fileConfig) searchConfig() *search.Config {
	cfg := search.DefaultConfig()
	if c.Search.HighThreshold > 0 {
		cfg.HighThreshold = c.Search.HighThreshold
	}
	if c.Search.LowThreshold > 0 {
		cfg.LowThreshold = c.Search.LowThreshold
	}
	if c.Search.MaxResults > 0 {
		cfg.MaxResults = c.Search.MaxResults
	}
	if d, err := time.ParseDuration(c.Search.TierBudget); err == nil && d > 0 {
		cfg.TierBudget = d
	}
	if c.Search.BoostProject > 0 {
		cfg.BoostProject = c.Search.BoostProject
	}
	if c.Search.BoostFileType > 0 {
		cfg.BoostFileType = c.Search.BoostFileType
	}
	if c.Search.CacheSize > 0 {
		cfg.CacheSize = c.Search.CacheSize
	}
	if c.Search.EditRadius > 0 {
		cfg.EditRadius = c.Search.EditRadius
	}
	if c.Search.BucketTolerance > 0 {
		cfg.BucketTolerance = c.Search.BucketTolerance
	}
	return cfg
}
