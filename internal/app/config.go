package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/memequiz-backend/internal/data/db"
	"github.com/yungbote/memequiz-backend/internal/http/middleware"
	"github.com/yungbote/memequiz-backend/internal/observability"
	"github.com/yungbote/memequiz-backend/internal/platform/completion"
	"github.com/yungbote/memequiz-backend/internal/platform/envutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/media"
	"github.com/yungbote/memequiz-backend/internal/platform/storage"
)

type Config struct {
	Env     string
	Addr    string
	LogMode string

	JWTSecret string
	JWTIssuer string

	AllowedOrigins []string
	DB             db.Config

	GroqAPIKey       string
	GroqBaseURL      string
	Models           []string
	AttemptsPerModel int
	CallTimeout      time.Duration
	CompletionBudget time.Duration
	Temperature      float32

	CustomVideoEndpoint string
	CustomVideoTimeout  time.Duration
	ReplicateToken      string
	HFSpaces            []media.Space
	TenorAPIKey         string
	PexelsAPIKey        string
	SourceTimeout       time.Duration
	GenerateTimeout     time.Duration
	ChainBudget         time.Duration

	Storage      storage.Config
	MemeFontPath string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	MetricsEnabled bool
	Otel           observability.OtelConfig

	ProvidersConfigFile string
}

// providersFile is the optional YAML override for provider lists.
type providersFile struct {
	Models           []string      `yaml:"models"`
	AttemptsPerModel int           `yaml:"attempts_per_model"`
	Spaces           []media.Space `yaml:"spaces"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	port := envutil.String("PORT", "8080")
	cfg := Config{
		Env:     envutil.String("APP_ENV", "development"),
		Addr:    ":" + strings.TrimPrefix(port, ":"),
		LogMode: envutil.String("LOG_MODE", "development"),

		JWTSecret: envutil.String("JWT_SECRET_KEY", ""),
		JWTIssuer: envutil.String("JWT_ISSUER", ""),

		AllowedOrigins: envutil.CSV("CORS_ALLOWED_ORIGINS", middleware.DefaultAllowedOrigins),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", "postgres"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "memequiz"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "memequiz.db"),
		},

		GroqAPIKey:       envutil.String("GROQ_API_KEY", ""),
		GroqBaseURL:      envutil.String("GROQ_BASE_URL", completion.DefaultBaseURL),
		Models:           envutil.CSV("COMPLETION_MODELS", completion.DefaultModels),
		AttemptsPerModel: envutil.Int("COMPLETION_ATTEMPTS_PER_MODEL", completion.DefaultAttemptsPerModel),
		CallTimeout:      envutil.Duration("COMPLETION_CALL_TIMEOUT", completion.DefaultCallTimeout),
		CompletionBudget: envutil.Duration("COMPLETION_BUDGET", completion.DefaultBudget),
		Temperature:      0.7,

		CustomVideoEndpoint: envutil.String("CUSTOM_VIDEO_ENDPOINT", ""),
		CustomVideoTimeout:  envutil.Duration("CUSTOM_VIDEO_TIMEOUT", media.DefaultSourceTimeout),
		ReplicateToken:      envutil.String("REPLICATE_API_TOKEN", ""),
		HFSpaces:            media.DefaultSpaces,
		TenorAPIKey:         envutil.String("TENOR_API_KEY", ""),
		PexelsAPIKey:        envutil.String("PEXELS_API_KEY", ""),
		SourceTimeout:       envutil.Duration("MEDIA_SOURCE_TIMEOUT", media.DefaultSourceTimeout),
		GenerateTimeout:     envutil.Duration("MEDIA_GENERATE_TIMEOUT", media.DefaultSourceTimeout),
		ChainBudget:         envutil.Duration("MEDIA_CHAIN_BUDGET", media.DefaultChainBudget),

		Storage: storage.Config{
			LocalDir:         envutil.String("UPLOAD_DIR", "uploads"),
			LocalPrefix:      envutil.String("UPLOAD_URL_PREFIX", "/uploads"),
			GCSBucket:        envutil.String("UPLOAD_GCS_BUCKET", ""),
			GCSPublicBaseURL: envutil.String("UPLOAD_GCS_PUBLIC_BASE_URL", ""),
			GCSEmulatorHost:  envutil.String("STORAGE_EMULATOR_HOST", ""),
			GCSCredentials:   envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "")),
		},
		MemeFontPath: envutil.String("MEME_FONT_PATH", ""),

		RedisAddr:          envutil.String("REDIS_ADDR", ""),
		RedisPassword:      envutil.String("REDIS_PASSWORD", ""),
		RedisDB:            envutil.Int("REDIS_DB", 0),
		RateLimitPerMinute: envutil.Int("RATE_LIMIT_PER_MINUTE", 30),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "memequiz-backend"),
			Version:     envutil.String("APP_VERSION", ""),
			SampleRatio: float64(envutil.Int("OTEL_SAMPLE_PERCENT", 100)) / 100,
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},

		ProvidersConfigFile: envutil.String("PROVIDERS_CONFIG_FILE", ""),
	}
	cfg.Otel.Environment = cfg.Env

	mode, err := storage.ParseMode(envutil.String("UPLOAD_STORAGE_MODE", string(storage.ModeLocal)))
	if err != nil {
		return Config{}, err
	}
	cfg.Storage.Mode = mode

	if cfg.ProvidersConfigFile != "" {
		pf, err := readProvidersFile(cfg.ProvidersConfigFile)
		if err != nil {
			return Config{}, err
		}
		cfg.applyProviders(pf)
		log.Info("Loaded provider overrides", "path", cfg.ProvidersConfigFile, "models", len(cfg.Models), "spaces", len(cfg.HFSpaces))
	}
	return cfg, nil
}

func readProvidersFile(path string) (providersFile, error) {
	var pf providersFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return pf, fmt.Errorf("read providers config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return pf, fmt.Errorf("parse providers config %s: %w", path, err)
	}
	return pf, nil
}

// applyProviders lets the file win for every list it actually sets.
func (c *Config) applyProviders(pf providersFile) {
	var models []string
	for _, m := range pf.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) > 0 {
		c.Models = models
	}
	if pf.AttemptsPerModel > 0 {
		c.AttemptsPerModel = pf.AttemptsPerModel
	}
	var spaces []media.Space
	for _, sp := range pf.Spaces {
		if strings.TrimSpace(sp.ID) == "" && strings.TrimSpace(sp.BaseURL) == "" {
			continue
		}
		spaces = append(spaces, sp)
	}
	if len(spaces) > 0 {
		c.HFSpaces = spaces
	}
}

func envLogMode() string { return envutil.String("LOG_MODE", "development") }
