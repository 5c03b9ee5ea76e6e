package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SeriesConfig describes one dashboard series and where it is fetched from.
type SeriesConfig struct {
	Key          string        `yaml:"key"`
	DisplayName  string        `yaml:"display_name"`
	Color        string        `yaml:"color"`
	Kind         string        `yaml:"kind"`        // point or category
	Granularity  string        `yaml:"granularity"` // daily or weekly
	Source       string        `yaml:"source"`      // netinfo, tag or graphql
	TTL          string        `yaml:"ttl"`         // volatile, short, medium, long, stable
	PollInterval time.Duration `yaml:"poll_interval"`

	// tag source
	Process string `yaml:"process"`
	Action  string `yaml:"action"`
	DataTag string `yaml:"data_tag"`

	// graphql source
	Entity       string `yaml:"entity"`
	LookbackDays int    `yaml:"lookback_days"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Sources struct {
		NetworkInfoURL string        `yaml:"network_info_url"`
		TagEndpointURL string        `yaml:"tag_endpoint_url"`
		GraphQLURL     string        `yaml:"graphql_url"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"sources"`
	Series  []SeriesConfig `yaml:"series"`
	Backend struct {
		Type string `yaml:"type"` // none, kafka or clickhouse
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		Mirror       bool     `yaml:"mirror"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host"`
		Port     int           `yaml:"port"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		ChartTTL time.Duration `yaml:"chart_ttl"`
	} `yaml:"redis"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"queue"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("NETWORK_INFO_URL"); v != "" {
		c.Sources.NetworkInfoURL = v
	}
	if v := os.Getenv("TAG_ENDPOINT_URL"); v != "" {
		c.Sources.TagEndpointURL = v
	}
	if v := os.Getenv("GRAPHQL_URL"); v != "" {
		c.Sources.GraphQLURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		c.Backend.Type = "none"
	}
	switch c.Backend.Type {
	case "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("backend.type must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if len(c.Series) == 0 {
		return fmt.Errorf("series cannot be empty")
	}

	seen := make(map[string]bool, len(c.Series))
	for i := range c.Series {
		s := &c.Series[i]
		if s.Key == "" {
			return fmt.Errorf("series[%d].key is required", i)
		}
		if seen[s.Key] {
			return fmt.Errorf("duplicate series key '%s'", s.Key)
		}
		seen[s.Key] = true

		switch s.Kind {
		case "", "point", "category":
		default:
			return fmt.Errorf("series %s: kind must be 'point' or 'category', got '%s'", s.Key, s.Kind)
		}
		switch s.Granularity {
		case "", "daily", "weekly":
		default:
			return fmt.Errorf("series %s: granularity must be 'daily' or 'weekly', got '%s'", s.Key, s.Granularity)
		}
		switch s.TTL {
		case "", "volatile", "short", "medium", "long", "stable":
		default:
			return fmt.Errorf("series %s: unknown ttl class '%s'", s.Key, s.TTL)
		}

		switch s.Source {
		case "netinfo":
			if c.Sources.NetworkInfoURL == "" {
				return fmt.Errorf("series %s: sources.network_info_url is required", s.Key)
			}
		case "tag":
			if c.Sources.TagEndpointURL == "" {
				return fmt.Errorf("series %s: sources.tag_endpoint_url is required", s.Key)
			}
			if s.Action == "" || s.DataTag == "" {
				return fmt.Errorf("series %s: action and data_tag are required for tag source", s.Key)
			}
		case "graphql":
			if c.Sources.GraphQLURL == "" {
				return fmt.Errorf("series %s: sources.graphql_url is required", s.Key)
			}
			if s.Entity == "" {
				return fmt.Errorf("series %s: entity is required for graphql source", s.Key)
			}
			if s.Kind == "category" {
				return fmt.Errorf("series %s: graphql source only supports point series", s.Key)
			}
		default:
			return fmt.Errorf("series %s: source must be 'netinfo', 'tag' or 'graphql', got '%s'", s.Key, s.Source)
		}
	}

	if c.Backend.Type == "kafka" || c.Kafka.Mirror {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required")
		}
	}
	if (c.Backend.Type == "clickhouse" || c.Kafka.Mirror) && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	return nil
}
