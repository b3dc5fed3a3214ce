package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/export"
	"github.com/abhisek/fluentz/internal/llm"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if _, err := difficulty.ParsePolicy(c.Session.DefaultPolicy); err != nil {
		return fmt.Errorf("session.default_policy: %w", err)
	}
	for name, d := range map[string]time.Duration{
		"session.fetch_timeout":   c.Session.FetchTimeout,
		"session.emotion_timeout": c.Session.EmotionTimeout,
		"session.advice_timeout":  c.Session.AdviceTimeout,
		"catalog.timeout":         c.Catalog.Timeout,
		"speech.timeout":          c.Speech.Timeout,
		"llm.timeout":             c.LLM.Timeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0 (got %v)", name, d)
		}
	}
	if !oneOf(c.Session.EmotionService, "auto", "speech", "llm", "none") {
		return fmt.Errorf("session.emotion_service must be auto, speech, llm or none (got %q)", c.Session.EmotionService)
	}
	if !oneOf(c.Session.Advisor, "none", "rules", "llm", "catalog") {
		return fmt.Errorf("session.advisor must be none, rules, llm or catalog (got %q)", c.Session.Advisor)
	}

	switch c.Catalog.Source {
	case "local", "builtin":
	case "http":
		if c.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog.base_url is required for the http catalog")
		}
	default:
		return fmt.Errorf("catalog.source must be local, builtin or http (got %q)", c.Catalog.Source)
	}
	if c.Session.Advisor == "catalog" && c.Catalog.Source != "http" {
		return fmt.Errorf("session.advisor catalog requires catalog.source http")
	}
	if c.Session.EmotionService == "speech" && c.Speech.BaseURL == "" {
		return fmt.Errorf("speech.base_url is required when session.emotion_service is speech")
	}

	if !oneOf(strings.ToLower(c.Log.Level), "debug", "info", "warn", "error") {
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	if !oneOf(strings.ToLower(c.Log.Format), "text", "json") {
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}

	llmCfg, err := c.ToLLM()
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := llmCfg.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if (c.Session.EmotionService == "llm" || c.Session.Advisor == "llm") && !llmCfg.Enabled() {
		return fmt.Errorf("an LLM provider is required for the llm emotion service or advisor")
	}
	return nil
}

// Policy returns the parsed default policy.
func (c *Config) Policy() difficulty.Policy {
	p, err := difficulty.ParsePolicy(c.Session.DefaultPolicy)
	if err != nil {
		return difficulty.Adaptive
	}
	return p
}

// ToLLM builds the llm package configuration. Provider "auto" uses the
// first vendor API key found in the environment, or disables the LLM.
func (c *Config) ToLLM() (llm.Config, error) {
	cfg := llm.DefaultConfig()
	cfg.Timeout = c.LLM.Timeout

	provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch provider {
	case "", llm.ProviderNone:
		return cfg, nil
	case "auto":
		found, ok := llm.DiscoverConfig()
		if !ok {
			return cfg, nil
		}
		found.Timeout = c.LLM.Timeout
		cfg = found
	default:
		cfg.Provider = provider
	}

	if c.LLM.AnthropicAPIKey != "" {
		cfg.Anthropic.APIKey = c.LLM.AnthropicAPIKey
	}
	if c.LLM.OpenAIAPIKey != "" {
		cfg.OpenAI.APIKey = c.LLM.OpenAIAPIKey
	}
	if c.LLM.OpenAIBaseURL != "" {
		cfg.OpenAI.BaseURL = c.LLM.OpenAIBaseURL
	}
	if c.LLM.GeminiAPIKey != "" {
		cfg.Gemini.APIKey = c.LLM.GeminiAPIKey
	}
	if c.LLM.OpenRouterAPIKey != "" {
		cfg.OpenRouter.APIKey = c.LLM.OpenRouterAPIKey
	}

	if m := c.LLM.Model; m != "" {
		switch cfg.Provider {
		case llm.ProviderAnthropic:
			cfg.Anthropic.Model = m
		case llm.ProviderOpenAI:
			cfg.OpenAI.Model = m
		case llm.ProviderGemini:
			cfg.Gemini.Model = m
		case llm.ProviderOpenRouter:
			cfg.OpenRouter.Model = m
		}
	}
	return cfg, nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
