package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort         = 8080
	DefaultProvider     = "gemini"
	DefaultGeminiModel  = "gemini-1.5-flash"
	DefaultOpenAIModel  = "gpt-4o-mini"
	DefaultTimeout      = 60 * time.Second
	DefaultMaxBodyBytes = 1 << 20
	DefaultRateBurst    = 30
	DefaultRatePerSec   = 1.0
	DefaultPresign      = 24 * time.Hour
)

type Config struct {
	Server struct {
		Port         int      `yaml:"port"`
		APIKeys      []string `yaml:"api_keys"`
		MaxBodyBytes int64    `yaml:"max_body_bytes"`
		CORSOrigins  []string `yaml:"cors_origins"`
		RateLimit    struct {
			Burst      int     `yaml:"burst"`
			RefillRate float64 `yaml:"refill_per_second"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`

	Provider struct {
		Name    string        `yaml:"name"`
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"provider"`

	Analysis struct {
		StrictLanguages   bool `yaml:"strict_languages"`
		RecountAggregates bool `yaml:"recount_aggregates"`
	} `yaml:"analysis"`

	Minio struct {
		Endpoint      string        `yaml:"endpoint"`
		AccessKey     string        `yaml:"accessKey"`
		SecretKey     string        `yaml:"secretKey"`
		BucketName    string        `yaml:"bucketName"`
		Region        string        `yaml:"region"`
		UseSSL        bool          `yaml:"useSSL"`
		PresignExpiry time.Duration `yaml:"presignExpiry"`
	} `yaml:"minio"`
}

// Load baca .env, file config.yaml, lalu override dari environment.
// File yang tidak ada dianggap kosong, jadi semua nilai pakai default.
func Load(path string) (*Config, error) {
	// .env opsional
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("API_KEYS"); v != "" {
		c.Server.APIKeys = splitList(v)
	}

	if v := os.Getenv("CODELENS_PROVIDER"); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv("CODELENS_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if c.Provider.APIKey == "" {
		c.Provider.APIKey = c.providerKeyFromEnv()
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" && c.providerName() == "openai" {
		c.Provider.BaseURL = v
	}

	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		c.Minio.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		c.Minio.BucketName = v
	}
	if v := os.Getenv("MINIO_REGION"); v != "" {
		c.Minio.Region = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Minio.UseSSL = b
		}
	}
}

func (c *Config) providerKeyFromEnv() string {
	if c.providerName() == "openai" {
		return os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("GOOGLE_API_KEY")
}

func (c *Config) providerName() string {
	n := strings.ToLower(strings.TrimSpace(c.Provider.Name))
	if n == "" {
		return DefaultProvider
	}
	return n
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Server.RateLimit.Burst <= 0 {
		c.Server.RateLimit.Burst = DefaultRateBurst
	}
	if c.Server.RateLimit.RefillRate <= 0 {
		c.Server.RateLimit.RefillRate = DefaultRatePerSec
	}

	c.Provider.Name = c.providerName()
	if c.Provider.Model == "" {
		c.Provider.Model = DefaultGeminiModel
		if c.Provider.Name == "openai" {
			c.Provider.Model = DefaultOpenAIModel
		}
	}
	if c.Provider.Timeout <= 0 {
		c.Provider.Timeout = DefaultTimeout
	}

	if c.Minio.PresignExpiry <= 0 {
		c.Minio.PresignExpiry = DefaultPresign
	}
}

// StorageEnabled true kalau MinIO dikonfigurasi untuk export report.
func (c *Config) StorageEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.BucketName != ""
}

// Path returns $CONFIG_PATH or config.yaml.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
