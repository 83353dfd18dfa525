package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the workspace service.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	// CORSOrigins is a comma separated origin list passed to the CORS middleware.
	CORSOrigins string

	PlatformBaseURL       string
	PlatformTimeout       time.Duration
	PlatformSessionCookie string

	RedisURL        string
	ProblemCacheTTL time.Duration
	CatalogCacheTTL time.Duration

	NATSURL     string
	NATSSubject string

	JWTSecret           string
	EvaluationRateLimit int

	WorkspaceIdleTTL        time.Duration
	WorkspaceLanguagePolicy string
	WorkspaceDefaultLang    string
	WorkspaceChatHistory    string

	AssistantProvider string
	AssistantModel    string
	OpenAIAPIKey      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CODECRAFT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CodeCraft Workspace")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.cors_origins", "*")
	v.SetDefault("platform.timeout", "30s")
	v.SetDefault("platform.session_cookie", "token")
	v.SetDefault("problem.cache_ttl", "10m")
	v.SetDefault("catalog.cache_ttl", "1m")
	v.SetDefault("nats.subject", "codecraft.workspace")
	v.SetDefault("workspace.idle_ttl", "30m")
	v.SetDefault("workspace.language_policy", "reset")
	v.SetDefault("workspace.default_language", "javascript")
	v.SetDefault("workspace.chat_history", "before_turn")
	v.SetDefault("assistant.provider", "platform")
	v.SetDefault("assistant.model", "gpt-4o-mini")
	v.SetDefault("ratelimit.evaluations", 10)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	durations := map[string]time.Duration{}
	for _, key := range []string{"platform.timeout", "problem.cache_ttl", "catalog.cache_ttl", "workspace.idle_ttl"} {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("invalid %s: must be positive", key)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:                 v.GetString("app.name"),
		AppEnv:                  v.GetString("app.env"),
		AppPort:                 v.GetString("app.port"),
		CORSOrigins:             v.GetString("app.cors_origins"),
		PlatformBaseURL:         strings.TrimSpace(v.GetString("platform.base_url")),
		PlatformTimeout:         durations["platform.timeout"],
		PlatformSessionCookie:   v.GetString("platform.session_cookie"),
		RedisURL:                v.GetString("redis.url"),
		ProblemCacheTTL:         durations["problem.cache_ttl"],
		CatalogCacheTTL:         durations["catalog.cache_ttl"],
		NATSURL:                 v.GetString("nats.url"),
		NATSSubject:             v.GetString("nats.subject"),
		JWTSecret:               v.GetString("jwt.secret"),
		EvaluationRateLimit:     v.GetInt("ratelimit.evaluations"),
		WorkspaceIdleTTL:        durations["workspace.idle_ttl"],
		WorkspaceLanguagePolicy: strings.ToLower(v.GetString("workspace.language_policy")),
		WorkspaceDefaultLang:    strings.ToLower(v.GetString("workspace.default_language")),
		WorkspaceChatHistory:    strings.ToLower(v.GetString("workspace.chat_history")),
		AssistantProvider:       strings.ToLower(v.GetString("assistant.provider")),
		AssistantModel:          v.GetString("assistant.model"),
		OpenAIAPIKey:            v.GetString("openai_api_key"),
	}

	if cfg.PlatformBaseURL == "" {
		return Config{}, fmt.Errorf("platform base url must be provided")
	}

	if cfg.JWTSecret == "" && strings.EqualFold(cfg.AppEnv, "production") {
		return Config{}, fmt.Errorf("jwt secret must be provided in production")
	}

	if cfg.EvaluationRateLimit <= 0 {
		return Config{}, fmt.Errorf("invalid ratelimit.evaluations %d: must be positive", cfg.EvaluationRateLimit)
	}

	switch cfg.WorkspaceLanguagePolicy {
	case "reset", "preserve":
	default:
		return Config{}, fmt.Errorf("invalid workspace.language_policy %q", cfg.WorkspaceLanguagePolicy)
	}

	switch cfg.WorkspaceChatHistory {
	case "before_turn", "with_question":
	default:
		return Config{}, fmt.Errorf("invalid workspace.chat_history %q", cfg.WorkspaceChatHistory)
	}

	switch cfg.AssistantProvider {
	case "platform":
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return Config{}, fmt.Errorf("openai api key must be provided when assistant.provider is openai")
		}
	default:
		return Config{}, fmt.Errorf("invalid assistant.provider %q", cfg.AssistantProvider)
	}

	return cfg, nil
}
