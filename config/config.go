package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type JWTConfig struct {
	SecretKey string `mapstructure:"secretKey"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Password          string `mapstructure:"password"`
	Port              string `mapstructure:"port"`
	Username          string `mapstructure:"username"`
	DB                string `mapstructure:"db"`
	SSLMODE           string `mapstructure:"SSLMODE"`
	MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
}

type OverpassConfig struct {
	BaseURL    string        `mapstructure:"baseURL"`
	QueryDelay time.Duration `mapstructure:"queryDelay"`
}

type MapboxConfig struct {
	AccessToken     string `mapstructure:"accessToken"`
	GeocodeURL      string `mapstructure:"geocodeURL"`
	IsochroneURL    string `mapstructure:"isochroneURL"`
	OptimizationURL string `mapstructure:"optimizationURL"`
	Profile         string `mapstructure:"profile"`
	RequestsPerSec  int    `mapstructure:"requestsPerSecond"`
}

type WikidataConfig struct {
	BaseURL string `mapstructure:"baseURL"`
}

type WikipediaConfig struct {
	// BaseURL is a format string taking the language subdomain.
	BaseURL string `mapstructure:"baseURL"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}

type TTSConfig struct {
	BaseURL string `mapstructure:"baseURL"`
	APIKey  string `mapstructure:"apiKey"`
}

type IngestionConfig struct {
	Categories     []string      `mapstructure:"categories"`
	Concurrency    int           `mapstructure:"concurrency"`
	MaxAttractions int           `mapstructure:"maxAttractions"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
	CacheTTL       time.Duration `mapstructure:"cacheTTL"`
	UserAgent      string        `mapstructure:"userAgent"`
}

type Config struct {
	Mode         string `mapstructure:"mode"`
	Dotenv       string `mapstructure:"dotenv"`
	Repositories struct {
		Postgres PostgresConfig `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort          string        `mapstructure:"HTTPPort"`
		Timeout           time.Duration `mapstructure:"HTTPTimeout"`
		RequestsPerMinute int           `mapstructure:"requestsPerMinute"`
	} `mapstructure:"server"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	JWT       JWTConfig `mapstructure:"jwt"`
	Providers struct {
		Overpass  OverpassConfig  `mapstructure:"overpass"`
		Mapbox    MapboxConfig    `mapstructure:"mapbox"`
		Wikidata  WikidataConfig  `mapstructure:"wikidata"`
		Wikipedia WikipediaConfig `mapstructure:"wikipedia"`
		Gemini    GeminiConfig    `mapstructure:"gemini"`
		TTS       TTSConfig       `mapstructure:"tts"`
	} `mapstructure:"providers"`
	Ingestion IngestionConfig `mapstructure:"ingestion"`
}

// secretEnv maps config keys to the environment variables that override them.
var secretEnv = map[string]string{
	"repositories.postgres.password": "POSTGRES_PASSWORD",
	"repositories.postgres.host":     "POSTGRES_HOST",
	"jwt.secretKey":                  "JWT_SECRET_KEY",
	"providers.mapbox.accessToken":   "MAPBOX_ACCESS_TOKEN",
	"providers.gemini.apiKey":        "GOOGLE_GEMINI_API_KEY",
	"providers.tts.apiKey":           "GOOGLE_TTS_API_KEY",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range secretEnv {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
