package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
	} `yaml:"server"`

	BackgroundTasks struct {
		MaxConcurrentTasks int           `yaml:"max_concurrent_tasks" default:"4"`
		QueueSize          int           `yaml:"queue_size" default:"16"`
		TaskTimeout        time.Duration `yaml:"task_timeout" default:"15m"`
		CleanupInterval    time.Duration `yaml:"cleanup_interval" default:"1h"`
		MaxTaskAge         time.Duration `yaml:"max_task_age" default:"24h"`
	} `yaml:"background_tasks"`

	Apify struct {
		Token           string        `yaml:"token"`
		BaseURL         string        `yaml:"base_url" default:"https://api.apify.com/v2"`
		PollInterval    time.Duration `yaml:"poll_interval" default:"5s"`
		MaxPollAttempts int           `yaml:"max_poll_attempts" default:"120"`
		RequestTimeout  time.Duration `yaml:"request_timeout" default:"30s"`
		RateLimit       int           `yaml:"rate_limit" default:"30"` // actor submissions per minute
		Actors          struct {
			LinkedIn  string `yaml:"linkedin" default:"hKByXkMQaC5Qt9UMN"`
			Indeed    string `yaml:"indeed" default:"hMvNSpz3JnHgl5jkh"`
			Wellfound string `yaml:"wellfound" default:"0n8u4hOC5wGqjnpLa"`
			Naukri    string `yaml:"naukri" default:"EYXvM0o2lS7rYzgey"`
		} `yaml:"actors"`
	} `yaml:"apify"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Discovery struct {
		MaxJobs           int      `yaml:"max_jobs" default:"40"`
		Locations         []string `yaml:"locations"`
		TargetRoles       []string `yaml:"target_roles"`
		TimePeriodDays    int      `yaml:"time_period_days" default:"7"`
		ItemsPerSearch    int      `yaml:"items_per_search" default:"15"`
		ItemsPerBatchTask int      `yaml:"items_per_batch_task" default:"100"`
	} `yaml:"discovery"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
		StatsTTL time.Duration `yaml:"stats_ttl" default:"30s"`
		Enabled  bool          `yaml:"enabled" default:"false"`
	} `yaml:"redis"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.BackgroundTasks.MaxConcurrentTasks = 4
	config.BackgroundTasks.QueueSize = 16
	config.BackgroundTasks.TaskTimeout = 15 * time.Minute
	config.BackgroundTasks.CleanupInterval = 1 * time.Hour
	config.BackgroundTasks.MaxTaskAge = 24 * time.Hour

	config.Apify.BaseURL = "https://api.apify.com/v2"
	config.Apify.PollInterval = 5 * time.Second
	config.Apify.MaxPollAttempts = 120
	config.Apify.RequestTimeout = 30 * time.Second
	config.Apify.RateLimit = 30
	config.Apify.Actors.LinkedIn = "hKByXkMQaC5Qt9UMN"
	config.Apify.Actors.Indeed = "hMvNSpz3JnHgl5jkh"
	config.Apify.Actors.Wellfound = "0n8u4hOC5wGqjnpLa"
	config.Apify.Actors.Naukri = "EYXvM0o2lS7rYzgey"

	config.Discovery.MaxJobs = 40
	config.Discovery.Locations = []string{"India", "Remote"}
	config.Discovery.TargetRoles = []string{"APM", "Junior PM", "Assistant PM", "Entry-Level PM"}
	config.Discovery.TimePeriodDays = 7
	config.Discovery.ItemsPerSearch = 15
	config.Discovery.ItemsPerBatchTask = 100

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second
	config.Redis.StatsTTL = 30 * time.Second

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			// Expand environment variables in the YAML content
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if token := os.Getenv("APIFY_TOKEN"); token != "" {
		c.Apify.Token = token
	}

	if baseURL := os.Getenv("APIFY_BASE_URL"); baseURL != "" {
		c.Apify.BaseURL = baseURL
	}

	if interval := os.Getenv("APIFY_POLL_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			c.Apify.PollInterval = d
		}
	}

	if attempts := os.Getenv("APIFY_MAX_POLL_ATTEMPTS"); attempts != "" {
		if n, err := strconv.Atoi(attempts); err == nil {
			c.Apify.MaxPollAttempts = n
		}
	}

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		c.Database.URL = databaseURL
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
		c.Redis.Enabled = true
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}
}

// ActorID returns the configured actor ID for a source name, or "".
func (c *Config) ActorID(source string) string {
	switch source {
	case "linkedin":
		return c.Apify.Actors.LinkedIn
	case "indeed":
		return c.Apify.Actors.Indeed
	case "wellfound":
		return c.Apify.Actors.Wellfound
	case "naukri":
		return c.Apify.Actors.Naukri
	}
	return ""
}
