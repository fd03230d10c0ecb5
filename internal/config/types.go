package config

// ProviderType identifies a text-completion provider.
type ProviderType string

const (
	ProviderGoogle    ProviderType = "google"
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level saarathi configuration, corresponding to .saarathi.yml.
type Config struct {
	Provider             ProviderType          `yaml:"provider" koanf:"provider"`
	Model                string                `yaml:"model" koanf:"model"`
	Temperature          float64               `yaml:"temperature" koanf:"temperature"`
	MaxTokens            int                   `yaml:"max_tokens" koanf:"max_tokens"`
	RateLimitRPM         int                   `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	OracleTimeoutSeconds int                   `yaml:"oracle_timeout_seconds" koanf:"oracle_timeout_seconds"`
	DataDir              string                `yaml:"data_dir" koanf:"data_dir"`
	OperatingState       string                `yaml:"operating_state" koanf:"operating_state"`
	Server               ServerConfig          `yaml:"server" koanf:"server"`
	Log                  LogConfig             `yaml:"log" koanf:"log"`
	Speech               SpeechConfig          `yaml:"speech" koanf:"speech"`
	Weather              WeatherConfig         `yaml:"weather" koanf:"weather"`
	Market               MarketConfig          `yaml:"market" koanf:"market"`
	Recommendations      RecommendationsConfig `yaml:"recommendations" koanf:"recommendations"`
	ProfileCache         ProfileCacheConfig    `yaml:"profile_cache" koanf:"profile_cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                  int  `yaml:"port" koanf:"port"`
	AllowAllOrigins       bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RequestTimeoutSeconds int  `yaml:"request_timeout_seconds" koanf:"request_timeout_seconds"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"` // json or console
}

// SpeechConfig controls transcription and synthesis.
type SpeechConfig struct {
	Enabled       bool   `yaml:"enabled" koanf:"enabled"`
	Language      string `yaml:"language" koanf:"language"`
	VoiceGender   string `yaml:"voice_gender" koanf:"voice_gender"`
	AudioDir      string `yaml:"audio_dir" koanf:"audio_dir"`
	PublicBaseURL string `yaml:"public_base_url" koanf:"public_base_url"`
}

// WeatherConfig selects the weather provider. "synthetic" never calls out.
type WeatherConfig struct {
	Provider string `yaml:"provider" koanf:"provider"`
	APIKey   string `yaml:"api_key" koanf:"api_key"`
}

// MarketConfig selects the mandi price source.
type MarketConfig struct {
	Provider   string `yaml:"provider" koanf:"provider"`
	APIKey     string `yaml:"api_key" koanf:"api_key"`
	ResourceID string `yaml:"resource_id" koanf:"resource_id"`
}

// RecommendationsConfig controls cross-agent aggregation on the query path.
type RecommendationsConfig struct {
	Contextual bool `yaml:"contextual" koanf:"contextual"`
}

// ProfileCacheConfig sizes the in-process profile cache. Size 0 disables it.
type ProfileCacheConfig struct {
	Size       int `yaml:"size" koanf:"size"`
	TTLSeconds int `yaml:"ttl_seconds" koanf:"ttl_seconds"`
}
