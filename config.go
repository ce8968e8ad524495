package mindful

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ──────────────────────────────────────────────
// Configuration
// ──────────────────────────────────────────────

// DefaultModel is the hosted model used when none is configured.
const DefaultModel = "gemini-2.0-flash-exp"

// Config holds runtime configuration for the support system.
type Config struct {
	// GoogleAPIKey authenticates the Gemini client. Loaded from the
	// GOOGLE_API_KEY environment variable (a .env file is honored).
	GoogleAPIKey string `yaml:"google_api_key"`

	// Model is the hosted model name.
	Model string `yaml:"model"`

	// RedisAddr, when set, backs sessions and the mood ledger with
	// Redis instead of process memory.
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// MaxTurns bounds each agent loop run. Zero means the default.
	MaxTurns int `yaml:"max_turns"`

	// TracingEnabled turns on span export to the log.
	TracingEnabled bool `yaml:"tracing_enabled"`

	// Overrides replace the built-in keyword lists and catalogs for a
	// deployment. Empty sections keep the defaults.
	Overrides CatalogOverrides `yaml:"overrides"`
}

// CatalogOverrides customizes the safety content per deployment.
type CatalogOverrides struct {
	CrisisKeywords []string                     `yaml:"crisis_keywords"`
	SevereKeywords []string                     `yaml:"severe_keywords"`
	Resources      map[string]map[string]string `yaml:"resources"`
	Strategies     map[string][]string          `yaml:"strategies"`
}

// LoadConfig loads configuration from the environment. A .env file in
// the working directory is loaded first; real environment variables win.
func LoadConfig() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[Config] Loaded .env")
	}

	cfg := &Config{
		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		Model:         os.Getenv("MINDFUL_MODEL"),
		RedisAddr:     os.Getenv("MINDFUL_REDIS_ADDR"),
		RedisPassword: os.Getenv("MINDFUL_REDIS_PASSWORD"),
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return cfg
}

// LoadConfigFile loads configuration from a YAML file, then fills
// unset fields from the environment.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	env := LoadConfig()
	if cfg.GoogleAPIKey == "" {
		cfg.GoogleAPIKey = env.GoogleAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = env.Model
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = env.RedisAddr
	}
	return cfg, nil
}

// Validate checks that the config can drive a live system.
func (c *Config) Validate() error {
	if c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// BuildToolkit assembles a Toolkit over the store, applying any
// configured overrides to the detector and catalogs.
func (c *Config) BuildToolkit(store Store) *Toolkit {
	kit := NewToolkit(store)

	o := c.Overrides
	if len(o.CrisisKeywords) > 0 || len(o.SevereKeywords) > 0 {
		crisis := o.CrisisKeywords
		if len(crisis) == 0 {
			crisis = DefaultCrisisKeywords
		}
		severe := o.SevereKeywords
		if len(severe) == 0 {
			severe = DefaultSevereKeywords
		}
		kit.Detector = NewCrisisDetectorWithKeywords(crisis, severe)
		log.Printf("[Config] Crisis keyword overrides applied")
	}
	if len(o.Resources) > 0 {
		kit.Resources = NewResourceCatalogFrom(o.Resources)
		log.Printf("[Config] Resource catalog override applied")
	}
	if len(o.Strategies) > 0 {
		kit.Strategies = NewStrategyCatalogFrom(o.Strategies)
		log.Printf("[Config] Strategy catalog override applied")
	}
	return kit
}
