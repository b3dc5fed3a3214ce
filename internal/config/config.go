// Package config loads fluentz settings from an optional YAML file, a
// .env file and FLUENTZ_* environment variables.
package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	DB      DBConfig      `yaml:"db"`
	Session SessionConfig `yaml:"session"`
	Catalog CatalogConfig `yaml:"catalog"`
	Speech  SpeechConfig  `yaml:"speech"`
	LLM     LLMConfig     `yaml:"llm"`
	Log     LogConfig     `yaml:"log"`
	Export  ExportConfig  `yaml:"export"`
	Server  ServerConfig  `yaml:"server"`
}

// DBConfig holds the SQLite location. An empty path uses the XDG data dir.
type DBConfig struct {
	Path string `yaml:"path" env:"FLUENTZ_DB"`
}

// SessionConfig controls the practice session.
type SessionConfig struct {
	Participant    string        `yaml:"participant"     env:"FLUENTZ_PARTICIPANT"`
	DefaultPolicy  string        `yaml:"default_policy"  env:"FLUENTZ_POLICY"          env-default:"adaptive"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"   env:"FLUENTZ_FETCH_TIMEOUT"   env-default:"8s"`
	EmotionTimeout time.Duration `yaml:"emotion_timeout" env:"FLUENTZ_EMOTION_TIMEOUT" env-default:"8s"`
	AdviceTimeout  time.Duration `yaml:"advice_timeout"  env:"FLUENTZ_ADVICE_TIMEOUT"  env-default:"8s"`

	// EmotionService picks the external labeler: auto, speech, llm or none.
	// auto prefers the speech service, then the LLM, when configured.
	EmotionService string `yaml:"emotion_service" env:"FLUENTZ_EMOTION_SERVICE" env-default:"auto"`

	// Advisor picks the next-practice advisor: none, rules, llm or catalog.
	Advisor string `yaml:"advisor" env:"FLUENTZ_ADVISOR" env-default:"none"`
}

// CatalogConfig selects where practice items come from: the local
// database, the built-in deck held in memory, or a remote catalog API.
type CatalogConfig struct {
	Source  string        `yaml:"source"   env:"FLUENTZ_CATALOG"         env-default:"local"`
	BaseURL string        `yaml:"base_url" env:"FLUENTZ_CATALOG_URL"     env-default:"http://localhost:8000"`
	Timeout time.Duration `yaml:"timeout"  env:"FLUENTZ_CATALOG_TIMEOUT" env-default:"8s"`
}

// SpeechConfig points at the speech service. An empty URL disables it.
type SpeechConfig struct {
	BaseURL string        `yaml:"base_url" env:"FLUENTZ_SPEECH_URL"`
	Timeout time.Duration `yaml:"timeout"  env:"FLUENTZ_SPEECH_TIMEOUT" env-default:"8s"`
}

// LLMConfig selects and configures the LLM provider. Provider "auto"
// probes the vendors' standard API key variables.
type LLMConfig struct {
	Provider         string        `yaml:"provider"           env:"FLUENTZ_LLM_PROVIDER"`
	Model            string        `yaml:"model"              env:"FLUENTZ_LLM_MODEL"`
	Timeout          time.Duration `yaml:"timeout"            env:"FLUENTZ_LLM_TIMEOUT"         env-default:"8s"`
	AnthropicAPIKey  string        `yaml:"anthropic_api_key"  env:"FLUENTZ_ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string        `yaml:"openai_api_key"     env:"FLUENTZ_OPENAI_API_KEY"`
	OpenAIBaseURL    string        `yaml:"openai_base_url"    env:"FLUENTZ_OPENAI_BASE_URL"`
	GeminiAPIKey     string        `yaml:"gemini_api_key"     env:"FLUENTZ_GEMINI_API_KEY"`
	OpenRouterAPIKey string        `yaml:"openrouter_api_key" env:"FLUENTZ_OPENROUTER_API_KEY"`
}

// LogConfig holds logging settings. While the TUI owns the terminal, logs
// go to File (default: fluentz.log next to the database).
type LogConfig struct {
	Level  string `yaml:"level"  env:"FLUENTZ_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"FLUENTZ_LOG_FORMAT" env-default:"text"`
	File   string `yaml:"file"   env:"FLUENTZ_LOG_FILE"`
}

// ExportConfig controls session exports.
type ExportConfig struct {
	Dir      string `yaml:"dir"       env:"FLUENTZ_EXPORT_DIR"`
	Format   string `yaml:"format"    env:"FLUENTZ_EXPORT_FORMAT"    env-default:"csv"`
	OnFinish bool   `yaml:"on_finish" env:"FLUENTZ_EXPORT_ON_FINISH" env-default:"false"`
}

// ServerConfig holds the catalog API server settings.
type ServerConfig struct {
	Addr           string `yaml:"addr"            env:"FLUENTZ_ADDR"            env-default:":8000"`
	AllowedOrigins string `yaml:"allowed_origins" env:"FLUENTZ_ALLOWED_ORIGINS" env-default:"*"`
}
