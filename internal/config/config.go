package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Hardware backends.
const (
	BackendFake = "fake"
	BackendMQTT = "mqtt"
)

// Config is the root configuration of vhal-broker.
type Config struct {
	Broker   BrokerConfig   `yaml:"broker"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Hardware HardwareConfig `yaml:"hardware"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Logging  LoggingConfig  `yaml:"logging"`
	Trace    TraceConfig    `yaml:"trace"`
}

// BrokerConfig contains pending request settings.
type BrokerConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// SweepInterval of zero derives the interval from RequestTimeout.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// CatalogConfig locates the property catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// HardwareConfig selects the hardware backend.
type HardwareConfig struct {
	Backend string `yaml:"backend"`
	// FakeDelay delays every fake hardware callback.
	FakeDelay time.Duration `yaml:"fake_delay"`
}

// MQTTConfig contains the hardware bridge connection settings.
type MQTTConfig struct {
	Broker          MQTTBrokerConfig    `yaml:"broker"`
	Auth            MQTTAuthConfig      `yaml:"auth"`
	QoS             int                 `yaml:"qos"`
	Reconnect       MQTTReconnectConfig `yaml:"reconnect"`
	TopicPrefix     string              `yaml:"topic_prefix"`
	ResponseTimeout time.Duration       `yaml:"response_timeout"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig bounds the reconnect backoff.
type MQTTReconnectConfig struct {
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// LoggingConfig contains process logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TraceConfig enables the broker trace file when Path is set.
type TraceConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides. Variables follow the pattern VHAL_SECTION_KEY, for
// example VHAL_MQTT_HOST or VHAL_BROKER_REQUEST_TIMEOUT.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied, for
// running without a config file.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			RequestTimeout: 30 * time.Second,
		},
		Hardware: HardwareConfig{
			Backend: BackendFake,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "vhal-broker",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: time.Second,
				MaxDelay:     time.Minute,
			},
			TopicPrefix:     "vhal",
			ResponseTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

func applyEnvOverrides(cfg *Config) error {
	var errs []error
	duration := func(name string, dst *time.Duration) {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = d
		}
	}
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	duration("VHAL_BROKER_REQUEST_TIMEOUT", &cfg.Broker.RequestTimeout)
	str("VHAL_CATALOG_PATH", &cfg.Catalog.Path)
	str("VHAL_HARDWARE_BACKEND", &cfg.Hardware.Backend)

	str("VHAL_MQTT_HOST", &cfg.MQTT.Broker.Host)
	if v := os.Getenv("VHAL_MQTT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("VHAL_MQTT_PORT: %w", err))
		} else {
			cfg.MQTT.Broker.Port = port
		}
	}
	str("VHAL_MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	str("VHAL_MQTT_PASSWORD", &cfg.MQTT.Auth.Password)
	str("VHAL_MQTT_TOPIC_PREFIX", &cfg.MQTT.TopicPrefix)

	str("VHAL_LOGGING_LEVEL", &cfg.Logging.Level)
	str("VHAL_TRACE_PATH", &cfg.Trace.Path)

	return errors.Join(errs...)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Broker.RequestTimeout <= 0 {
		errs = append(errs, errors.New("broker.request_timeout must be positive"))
	}
	if c.Broker.SweepInterval < 0 {
		errs = append(errs, errors.New("broker.sweep_interval cannot be negative"))
	}
	if c.Hardware.FakeDelay < 0 {
		errs = append(errs, errors.New("hardware.fake_delay cannot be negative"))
	}

	switch strings.ToLower(c.Hardware.Backend) {
	case BackendFake:
	case BackendMQTT:
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, errors.New("mqtt.broker.host is required"))
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, fmt.Errorf("mqtt.broker.port %d out of range", c.MQTT.Broker.Port))
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("mqtt.qos %d must be 0, 1 or 2", c.MQTT.QoS))
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, errors.New("mqtt.topic_prefix is required"))
		}
		if c.MQTT.ResponseTimeout <= 0 {
			errs = append(errs, errors.New("mqtt.response_timeout must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("hardware.backend %q must be %q or %q", c.Hardware.Backend, BackendFake, BackendMQTT))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or text", c.Logging.Format))
	}

	return errors.Join(errs...)
}
