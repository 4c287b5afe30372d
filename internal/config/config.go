package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Values load in three layers:
// built-in defaults, then the optional YAML file, then environment
// variables. Environment always wins so container deployments can
// override a baked-in file.
type Config struct {
	Addr string `yaml:"addr"`

	DatabaseURL string `yaml:"databaseUrl"`
	RedisURL    string `yaml:"redisUrl"`

	Auth struct {
		Mode       string `yaml:"mode"` // dev | hmac
		HMACSecret string `yaml:"hmacSecret"`
	} `yaml:"auth"`

	Rate struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate"`

	Engine struct {
		RouteCacheTTL   time.Duration `yaml:"routeCacheTtl"`
		RebuildInterval time.Duration `yaml:"rebuildInterval"`
		JobWorkers      int           `yaml:"jobWorkers"`
		JobQueueSize    int           `yaml:"jobQueueSize"`
	} `yaml:"engine"`

	Webhooks struct {
		MaxAttempts int `yaml:"maxAttempts"`
	} `yaml:"webhooks"`
}

func defaults() *Config {
	cfg := &Config{Addr: ":8080"}
	cfg.Auth.Mode = "dev"
	cfg.Rate.RPS = 50
	cfg.Rate.Burst = 100
	cfg.Engine.RouteCacheTTL = 5 * time.Minute
	cfg.Engine.JobWorkers = 4
	cfg.Engine.JobQueueSize = 64
	cfg.Webhooks.MaxAttempts = 10
	return cfg
}

// Load reads the config file named by CONFIG_FILE (or path, if given)
// and applies environment overrides. A missing file is not an error;
// defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("AUTH_MODE"); v != "" {
		c.Auth.Mode = v
	}
	if v := os.Getenv("AUTH_HMAC_SECRET"); v != "" {
		c.Auth.HMACSecret = v
	}
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Rate.RPS = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Rate.Burst = n
		}
	}
	if v := os.Getenv("ROUTE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Engine.RouteCacheTTL = d
		}
	}
	if v := os.Getenv("GRAPH_REBUILD_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Engine.RebuildInterval = d
		}
	}
	if v := os.Getenv("JOB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Engine.JobWorkers = n
		}
	}
	if v := os.Getenv("JOB_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Engine.JobQueueSize = n
		}
	}
	if v := os.Getenv("WEBHOOK_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Webhooks.MaxAttempts = n
		}
	}
}
