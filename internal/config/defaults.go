package config

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderGoogle:    "gemini-2.5-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-haiku-4-5-20251001",
	ProviderOllama:    "llama3",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:             ProviderGoogle,
		Model:                defaultModels[ProviderGoogle],
		Temperature:          0.7,
		MaxTokens:            2048,
		RateLimitRPM:         60,
		OracleTimeoutSeconds: 60,
		DataDir:              "data",
		OperatingState:       "Karnataka",
		Server: ServerConfig{
			Port:                  8080,
			AllowAllOrigins:       true,
			RequestTimeoutSeconds: 300,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Speech: SpeechConfig{
			Enabled:     false,
			Language:    "en-IN",
			VoiceGender: "FEMALE",
			AudioDir:    "data/audio",
		},
		Weather: WeatherConfig{
			Provider: "synthetic",
		},
		Market: MarketConfig{
			Provider:   "synthetic",
			ResourceID: "9ef84268-d588-465a-a308-a864a43d0070",
		},
		Recommendations: RecommendationsConfig{
			Contextual: true,
		},
		ProfileCache: ProfileCacheConfig{
			Size:       1024,
			TTLSeconds: 300,
		},
	}
}

// DefaultModel returns the default model for a provider, or "" if unknown.
func DefaultModel(p ProviderType) string {
	return defaultModels[p]
}
