package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/agents"
	"github.com/ziadkadry99/krishisaarathi/internal/config"
	"github.com/ziadkadry99/krishisaarathi/internal/db"
	"github.com/ziadkadry99/krishisaarathi/internal/dispatch"
	"github.com/ziadkadry99/krishisaarathi/internal/intent"
	"github.com/ziadkadry99/krishisaarathi/internal/interactions"
	"github.com/ziadkadry99/krishisaarathi/internal/llm"
	"github.com/ziadkadry99/krishisaarathi/internal/logging"
	"github.com/ziadkadry99/krishisaarathi/internal/market"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
	"github.com/ziadkadry99/krishisaarathi/internal/speech"
	"github.com/ziadkadry99/krishisaarathi/internal/summary"
	"github.com/ziadkadry99/krishisaarathi/internal/weather"
)

// Environment variables read alongside the config file.
const (
	weatherKeyEnv = "GOOGLE_WEATHER_API_KEY"
	marketKeyEnv  = "DATA_GOV_API_KEY"
	speechKeyEnv  = "GOOGLE_API_KEY"
)

// app is the fully wired backend shared by every command.
type app struct {
	cfg          *config.Config
	logger       *zap.Logger
	db           *db.DB
	dbPath       string
	profiles     *profile.Service
	classifier   *intent.Classifier
	agents       *agents.Set
	dispatcher   *dispatch.Dispatcher
	interactions *interactions.Store
	summaries    *summary.Service
}

func (a *app) Close() {
	a.db.Close()
	_ = a.logger.Sync()
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `saarathi init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newApp builds every service from config. Callers must Close it.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	dbPath := filepath.Join(cfg.DataDir, "saarathi.db")
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	oracle, err := createOracleFromConfig(cfg, logger)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating oracle: %w", err)
	}

	timeout := time.Duration(cfg.OracleTimeoutSeconds) * time.Second
	weatherKey := cfg.Weather.APIKey
	if weatherKey == "" {
		weatherKey = os.Getenv(weatherKeyEnv)
	}
	marketKey := cfg.Market.APIKey
	if marketKey == "" {
		marketKey = os.Getenv(marketKeyEnv)
	}
	weatherProvider := weather.New(cfg.Weather.Provider, weatherKey, timeout, logger.Named("weather"))
	marketSource := market.New(cfg.Market.Provider, marketKey, cfg.Market.ResourceID, timeout, logger.Named("market"))
	transcriber, synthesizer := createSpeechFromConfig(cfg, timeout, logger)

	profiles := profile.NewService(profile.NewStore(database), cfg.OperatingState, profile.CacheOptions{
		Size: cfg.ProfileCache.Size,
		TTL:  time.Duration(cfg.ProfileCache.TTLSeconds) * time.Second,
	}, logger.Named("profile"))

	set := agents.New(agents.Deps{
		Profiles:    profiles,
		Oracle:      oracle,
		Weather:     weatherProvider,
		Market:      marketSource,
		Synthesizer: synthesizer,
		Logger:      logger.Named("agents"),
	})
	classifier := intent.NewClassifier(oracle, logger.Named("intent"))
	interactionStore := interactions.NewStore(database)

	dispatcher := dispatch.New(dispatch.Deps{
		Profiles:     profiles,
		Classifier:   classifier,
		Agents:       set,
		Transcriber:  transcriber,
		Synthesizer:  synthesizer,
		Interactions: interactionStore,
		Snapshots:    dispatch.NewSnapshotStore(database),
		Logger:       logger.Named("dispatch"),
	}, dispatch.Options{
		Contextual: cfg.Recommendations.Contextual,
		Voice:      speech.ParseGender(cfg.Speech.VoiceGender),
		Language:   cfg.Speech.Language,
	})

	summaries := summary.NewService(set.DailySummary, profiles, synthesizer, summary.NewStore(database), logger.Named("summary")).
		WithVoice(speech.ParseGender(cfg.Speech.VoiceGender))

	return &app{
		cfg:          cfg,
		logger:       logger,
		db:           database,
		dbPath:       dbPath,
		profiles:     profiles,
		classifier:   classifier,
		agents:       set,
		dispatcher:   dispatcher,
		interactions: interactionStore,
		summaries:    summaries,
	}, nil
}

// createOracleFromConfig creates the rate-limited oracle the classifier and
// agents share.
func createOracleFromConfig(cfg *config.Config, logger *zap.Logger) (*llm.Oracle, error) {
	timeout := time.Duration(cfg.OracleTimeoutSeconds) * time.Second
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model, timeout)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	}
	return llm.NewOracle(provider, llm.OracleOptions{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, logger.Named("oracle")), nil
}

// createSpeechFromConfig returns Google speech when enabled and keyed, and
// the disabled stubs otherwise.
func createSpeechFromConfig(cfg *config.Config, timeout time.Duration, logger *zap.Logger) (speech.Transcriber, speech.Synthesizer) {
	if !cfg.Speech.Enabled {
		return speech.Disabled{}, speech.Disabled{}
	}
	key := os.Getenv(speechKeyEnv)
	if key == "" {
		logger.Warn("speech enabled but no API key set; voice is disabled", zap.String("env", speechKeyEnv))
		return speech.Disabled{}, speech.Disabled{}
	}
	store := speech.NewAudioStore(cfg.Speech.AudioDir, cfg.Speech.PublicBaseURL)
	g := speech.NewGoogle(key, cfg.Speech.Language, store, timeout)
	return g, g
}
