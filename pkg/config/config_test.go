package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	c := &Config{}
	c.Environment = "test"
	c.Sources.NetworkInfoURL = "http://localhost:9000/network"
	c.Sources.TagEndpointURL = "http://localhost:9000/tags"
	c.Sources.GraphQLURL = "http://localhost:9000/graphql"
	c.Series = []SeriesConfig{
		{Key: "transactions", Source: "netinfo", Kind: "point", Granularity: "daily", TTL: "short"},
		{Key: "supply", Source: "tag", Kind: "category", Action: "distribution", DataTag: "supply"},
		{Key: "messages", Source: "graphql", Entity: "message", LookbackDays: 30},
	}
	return c
}

func TestValidateAcceptsFullConfig(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if c.Backend.Type != "none" {
		t.Fatalf("expected backend to default to none, got %q", c.Backend.Type)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing environment", func(c *Config) { c.Environment = "" }},
		{"unknown backend", func(c *Config) { c.Backend.Type = "postgres" }},
		{"no series", func(c *Config) { c.Series = nil }},
		{"duplicate key", func(c *Config) { c.Series[1].Key = c.Series[0].Key }},
		{"bad kind", func(c *Config) { c.Series[0].Kind = "gauge" }},
		{"bad granularity", func(c *Config) { c.Series[0].Granularity = "hourly" }},
		{"bad ttl class", func(c *Config) { c.Series[0].TTL = "forever" }},
		{"unknown source", func(c *Config) { c.Series[0].Source = "csv" }},
		{"netinfo without url", func(c *Config) { c.Sources.NetworkInfoURL = "" }},
		{"tag without action", func(c *Config) { c.Series[1].Action = "" }},
		{"graphql without entity", func(c *Config) { c.Series[2].Entity = "" }},
		{"graphql category", func(c *Config) { c.Series[2].Kind = "category" }},
		{"kafka backend without brokers", func(c *Config) { c.Backend.Type = "kafka" }},
		{"mirror without clickhouse host", func(c *Config) {
			c.Kafka.Mirror = true
			c.Kafka.Brokers = []string{"localhost:9092"}
			c.Kafka.Topic = "points"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	yml := `
environment: test
server:
  port: 9090
  read_timeout: 15s
sources:
  network_info_url: http://localhost:9000/network
  request_timeout: 20s
series:
  - key: transactions
    display_name: Transactions
    color: "#1f77b4"
    source: netinfo
    ttl: short
    poll_interval: 2m
redis:
  enabled: true
  host: localhost
  port: 6379
  chart_ttl: 5m
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("expected 15s read timeout, got %v", c.Server.ReadTimeout)
	}
	if c.Sources.RequestTimeout != 20*time.Second {
		t.Fatalf("expected 20s request timeout, got %v", c.Sources.RequestTimeout)
	}
	if len(c.Series) != 1 || c.Series[0].PollInterval != 2*time.Minute {
		t.Fatalf("unexpected series config: %+v", c.Series)
	}
	if !c.Redis.Enabled || c.Redis.ChartTTL != 5*time.Minute {
		t.Fatalf("unexpected redis config: %+v", c.Redis)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	yml := `
environment: test
sources:
  network_info_url: http://localhost:9000/network
series:
  - key: transactions
    source: netinfo
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("NETWORK_INFO_URL", "http://upstream:8080/network")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Sources.NetworkInfoURL != "http://upstream:8080/network" {
		t.Fatalf("expected env override for network url, got %q", c.Sources.NetworkInfoURL)
	}
	if c.Logging.Level != "debug" {
		t.Fatalf("expected env override for log level, got %q", c.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
