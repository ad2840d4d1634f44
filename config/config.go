package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Surety   SuretyConfig   `yaml:"surety"`
	Oracles  OraclesConfig  `yaml:"oracles"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// Enabled reports whether the status history store is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig with an empty Addr disables Redis; the flight list is then
// served uncached and delivery de-duplication stays in memory.
type RedisConfig struct {
	Addr             string `yaml:"addr"`
	Password         string `yaml:"password"`
	DB               int    `yaml:"db"`
	FlightsCacheTTL  int    `yaml:"flights_cache_ttl_seconds"`
	DedupeTTLMinutes int    `yaml:"dedupe_ttl_minutes"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

func (r RedisConfig) FlightsTTL() time.Duration {
	return time.Duration(r.FlightsCacheTTL) * time.Second
}

func (r RedisConfig) DedupeTTL() time.Duration {
	return time.Duration(r.DedupeTTLMinutes) * time.Minute
}

// KafkaConfig with no brokers keeps events in process.
type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	GroupID      string   `yaml:"group_id"`
	MaxRetries   int      `yaml:"max_retries"`
	BridgeTopics []string `yaml:"bridge_topics"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type SuretyConfig struct {
	BootstrapAirline     string `yaml:"bootstrap_airline"`
	BootstrapAirlineName string `yaml:"bootstrap_airline_name"`
	Admin                string `yaml:"admin"`
	MinFunding           int64  `yaml:"min_funding"`
	RegistrationFee      int64  `yaml:"registration_fee"`
	IndexSpace           int    `yaml:"index_space"`
	MinResponses         int    `yaml:"min_responses"`
	QuorumBootstrapSize  int    `yaml:"quorum_bootstrap_size"`
}

type OraclesConfig struct {
	Count int   `yaml:"count"`
	Fee   int64 `yaml:"fee"`
}

type WorkerConfig struct {
	HistoryTopic string `yaml:"history_topic"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Redis.FlightsCacheTTL == 0 {
		c.Redis.FlightsCacheTTL = 30
	}
	if c.Redis.DedupeTTLMinutes == 0 {
		c.Redis.DedupeTTLMinutes = 60
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "flightsurety"
	}
	if c.Kafka.MaxRetries == 0 {
		c.Kafka.MaxRetries = 3
	}
	if len(c.Kafka.BridgeTopics) == 0 {
		c.Kafka.BridgeTopics = []string{"oracle.requests", "flight.status"}
	}
	if c.Surety.BootstrapAirlineName == "" {
		c.Surety.BootstrapAirlineName = "Bootstrap Airline"
	}
	if c.Surety.MinFunding == 0 {
		c.Surety.MinFunding = 10
	}
	if c.Surety.RegistrationFee == 0 {
		c.Surety.RegistrationFee = 1
	}
	if c.Surety.IndexSpace == 0 {
		c.Surety.IndexSpace = 10
	}
	if c.Surety.MinResponses == 0 {
		c.Surety.MinResponses = 3
	}
	if c.Surety.QuorumBootstrapSize == 0 {
		c.Surety.QuorumBootstrapSize = 5
	}
	if c.Oracles.Fee == 0 {
		c.Oracles.Fee = c.Surety.RegistrationFee
	}
	if c.Worker.HistoryTopic == "" {
		c.Worker.HistoryTopic = "flight.status"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Surety.BootstrapAirline == "" {
		errs = append(errs, errors.New("surety.bootstrap_airline is required"))
	}
	if c.Surety.Admin == "" {
		errs = append(errs, errors.New("surety.admin is required"))
	}
	if c.Surety.MinFunding <= 0 {
		errs = append(errs, errors.New("surety.min_funding must be positive"))
	}
	if c.Surety.RegistrationFee < 0 {
		errs = append(errs, errors.New("surety.registration_fee must not be negative"))
	}
	if c.Surety.IndexSpace < 3 || c.Surety.IndexSpace > 256 {
		errs = append(errs, fmt.Errorf("surety.index_space must be within [3, 256], got %d", c.Surety.IndexSpace))
	}
	if c.Surety.MinResponses < 1 {
		errs = append(errs, errors.New("surety.min_responses must be at least 1"))
	}
	if c.Surety.QuorumBootstrapSize < 1 {
		errs = append(errs, errors.New("surety.quorum_bootstrap_size must be at least 1"))
	}
	if c.Oracles.Count < 0 {
		errs = append(errs, errors.New("oracles.count must not be negative"))
	}
	if c.Oracles.Count > 0 && c.Oracles.Fee < c.Surety.RegistrationFee {
		errs = append(errs, errors.New("oracles.fee is below surety.registration_fee"))
	}
	return errors.Join(errs...)
}
