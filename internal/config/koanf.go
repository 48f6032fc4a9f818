// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/jarvis/config.yaml",
	"/etc/jarvis/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix is the prefix for structured environment overrides,
// e.g. JARVIS_SERVER_PORT=9000 sets server.port.
const envPrefix = "JARVIS_"

// defaultConfig returns a Config with all defaults applied. These are
// overridden by the config file and then by environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "database/analytics.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Data: DataConfig{
			Dir:           "data",
			Orders:        10000,
			Users:         500,
			Products:      200,
			DateRangeDays: 180,
			RefundRate:    0.15,
			Categories:    []string{"电子产品", "服装", "家居", "美妆", "食品", "运动"},
			Channels:      []string{"直播", "搜索", "推荐", "活动", "复购"},
			Cities:        []string{"北京", "上海", "广州", "深圳", "杭州", "成都", "武汉", "西安"},
		},
		RFM: RFMConfig{
			Clusters: 4,
			Labels: []string{
				"重要价值客户",
				"潜力发展客户",
				"一般维护客户",
				"流失风险客户",
			},
			Strategies: map[string]string{
				"重要价值客户": "VIP专属服务，优先体验新品，专属客服",
				"潜力发展客户": "个性化推荐，限时优惠，提升复购",
				"一般维护客户": "定期触达，节日营销，唤醒活动",
				"流失风险客户": "大额优惠券，召回短信，限时折扣",
			},
		},
		LLM: LLMConfig{
			Provider: "none",
			Timeout:  30 * time.Second,
			DeepSeek: ProviderConfig{
				BaseURL: "https://api.deepseek.com/v1",
				Model:   "deepseek-chat",
			},
			OpenAI: ProviderConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
			},
			Ollama: ProviderConfig{
				BaseURL: "http://localhost:11434/v1",
				Model:   "llama3",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Defaults (built in)
//  2. Config file (optional YAML)
//  3. JARVIS_* environment variables
//  4. Legacy environment aliases (LLM_PROVIDER, DEEPSEEK_API_KEY, ...)
//
// The result is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyLegacyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envTransform maps an environment variable name to its koanf path.
// Only the section boundary becomes a dot; underscores inside a key
// survive, so multi-word keys resolve correctly. LLM provider keys
// nest one level deeper.
//
// Examples:
//   - JARVIS_SERVER_PORT -> server.port
//   - JARVIS_DATABASE_MAX_MEMORY -> database.max_memory
//   - JARVIS_DATA_DATE_RANGE_DAYS -> data.date_range_days
//   - JARVIS_SERVER_RATE_LIMIT_REQS -> server.rate_limit_reqs
//   - JARVIS_LLM_DEEPSEEK_API_KEY -> llm.deepseek.api_key
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}

	if section == "llm" {
		if provider, field, ok := strings.Cut(rest, "_"); ok {
			switch provider {
			case "deepseek", "openai", "ollama":
				return "llm." + provider + "." + field
			}
		}
	}

	return section + "." + rest
}

// applyLegacyEnv honors the flat environment variables the project has
// always documented, for parity with existing deployments. These take
// precedence over everything else.
func applyLegacyEnv(cfg *Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		cfg.LLM.DeepSeek.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAI.APIKey = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.LLM.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.LLM.Ollama.Model = v
	}
}

// findConfigFile returns the config file path to use, or "" when none
// exists. CONFIG_PATH overrides the default search paths.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
