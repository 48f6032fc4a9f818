// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

// Package config loads and validates application configuration from
// layered sources: built-in defaults, an optional YAML config file, and
// environment variables (highest priority). Configuration is read once
// at startup and is immutable for the process lifetime.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Data     DataConfig     `koanf:"data"`
	RFM      RFMConfig      `koanf:"rfm"`
	LLM      LLMConfig      `koanf:"llm"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// DataConfig controls synthetic data generation and CSV locations.
type DataConfig struct {
	Dir           string   `koanf:"dir"`
	Orders        int      `koanf:"orders"`
	Users         int      `koanf:"users"`
	Products      int      `koanf:"products"`
	DateRangeDays int      `koanf:"date_range_days"`
	RefundRate    float64  `koanf:"refund_rate"`
	Categories    []string `koanf:"categories"`
	Channels      []string `koanf:"channels"`
	Cities        []string `koanf:"cities"`
}

// RFMConfig controls the RFM customer segmentation.
type RFMConfig struct {
	Clusters int `koanf:"clusters"`

	// Labels are assigned to clusters by descending value score.
	// Must contain at least Clusters entries.
	Labels []string `koanf:"labels"`

	// Strategies maps a label to its recommended operations playbook.
	Strategies map[string]string `koanf:"strategies"`
}

// LLMConfig selects and configures the language-model provider for the
// Jarvis agent. Provider "none" disables remote calls entirely and
// routes every question through the rule-based fallback.
type LLMConfig struct {
	Provider string         `koanf:"provider"` // deepseek, openai, ollama, none
	Timeout  time.Duration  `koanf:"timeout"`
	DeepSeek ProviderConfig `koanf:"deepseek"`
	OpenAI   ProviderConfig `koanf:"openai"`
	Ollama   ProviderConfig `koanf:"ollama"`
}

// ProviderConfig holds per-provider credentials and endpoint.
type ProviderConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Active returns the provider configuration selected by Provider, or
// false when no usable provider is configured. Ollama needs no API key;
// the hosted providers do.
func (c *LLMConfig) Active() (ProviderConfig, bool) {
	switch c.Provider {
	case "deepseek":
		return c.DeepSeek, c.DeepSeek.APIKey != ""
	case "openai":
		return c.OpenAI, c.OpenAI.APIKey != ""
	case "ollama":
		return c.Ollama, c.Ollama.BaseURL != ""
	default:
		return ProviderConfig{}, false
	}
}

// Validate checks configuration consistency. Called once after loading;
// a validation failure here is fatal at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Data.Orders <= 0 || c.Data.Users <= 0 || c.Data.Products <= 0 {
		return fmt.Errorf("data volumes must be positive (orders=%d users=%d products=%d)",
			c.Data.Orders, c.Data.Users, c.Data.Products)
	}
	if c.Data.DateRangeDays < 1 {
		return fmt.Errorf("data.date_range_days must be at least 1, got %d", c.Data.DateRangeDays)
	}
	if c.Data.RefundRate < 0 || c.Data.RefundRate > 1 {
		return fmt.Errorf("data.refund_rate must be in [0, 1], got %f", c.Data.RefundRate)
	}
	if len(c.Data.Categories) == 0 || len(c.Data.Channels) == 0 || len(c.Data.Cities) == 0 {
		return fmt.Errorf("data.categories, data.channels and data.cities must be non-empty")
	}
	if c.RFM.Clusters < 2 || c.RFM.Clusters > 8 {
		return fmt.Errorf("rfm.clusters must be in [2, 8], got %d", c.RFM.Clusters)
	}
	if len(c.RFM.Labels) < c.RFM.Clusters {
		return fmt.Errorf("rfm.labels must provide at least %d labels, got %d",
			c.RFM.Clusters, len(c.RFM.Labels))
	}
	switch c.LLM.Provider {
	case "deepseek", "openai", "ollama", "none":
	default:
		return fmt.Errorf("llm.provider must be one of deepseek, openai, ollama, none; got %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	return nil
}
