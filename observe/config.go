package observe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns a Config with metrics enabled on the Prometheus
// exporter and JSON logging at info level.
func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName: serviceName,
		Metrics: MetricsConfig{
			Enabled:  true,
			Exporter: "prometheus",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Backend: "json",
		},
	}
}

// LoadConfig decodes a YAML document into a Config and validates it.
// Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("observe: decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes the YAML config at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("observe: open config: %w", err)
	}
	defer f.Close()

	return LoadConfig(f)
}
