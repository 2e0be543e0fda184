// Package config loads and validates the analysis configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rustanlys/goptr/internal/context"
)

// Policy selects the context-sensitivity policy.
type Policy int

const (
	_ Policy = iota
	PolicyInsensitive
	PolicyCallSite
	PolicyObject
	PolicyType
	PolicyHybrid
)

func (p Policy) String() string {
	v, err := p.MarshalText()
	if err != nil {
		return fmt.Sprintf("policy-invalid(%d)", int(p))
	}
	return string(v)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	switch p {
	case PolicyInsensitive:
		return []byte("insensitive"), nil
	case PolicyCallSite:
		return []byte("callsite"), nil
	case PolicyObject:
		return []byte("object"), nil
	case PolicyType:
		return []byte("type"), nil
	case PolicyHybrid:
		return []byte("hybrid"), nil
	default:
		return nil, fmt.Errorf("unknown policy %d", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	switch string(b) {
	case "insensitive":
		*p = PolicyInsensitive
	case "callsite":
		*p = PolicyCallSite
	case "object":
		*p = PolicyObject
	case "type":
		*p = PolicyType
	case "hybrid":
		*p = PolicyHybrid
	default:
		return fmt.Errorf("unknown context policy %q", b)
	}
	return nil
}

// Config is the analysis configuration.
type Config struct {
	// Policy is the context-sensitivity policy.
	Policy Policy `yaml:"policy"`
	// K bounds context depth. Zero collapses every context to empty.
	K int `yaml:"k"`
	// Packages are the go/packages load patterns to analyze.
	Packages []string `yaml:"packages"`
	// Entry names the entry functions for context materialization,
	// e.g. "main". Empty means every source function is an entry.
	Entry []string `yaml:"entry"`
	// Dir is the working directory for package loading.
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when no file is given:
// 2-call-site sensitivity over the current directory.
func Default() Config {
	return Config{
		Policy:   PolicyCallSite,
		K:        2,
		Packages: []string{"./..."},
	}
}

var errNegativeK = errors.New("k must not be negative")

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	if _, err := c.Policy.MarshalText(); err != nil {
		return err
	}
	if c.K < 0 {
		return errNegativeK
	}
	if len(c.Packages) == 0 {
		return errors.New("no packages to analyze")
	}
	return nil
}

// Strategy builds the context strategy for the configured policy.
func (c *Config) Strategy() (context.Strategy, error) {
	switch c.Policy {
	case PolicyInsensitive:
		return context.Insensitive{}, nil
	case PolicyCallSite:
		return context.CallString{K: c.K}, nil
	case PolicyObject:
		return context.ObjectSensitive{K: c.K}, nil
	case PolicyType:
		return context.TypeSensitive{K: c.K}, nil
	case PolicyHybrid:
		return context.HybridSensitive{K: c.K}, nil
	default:
		return nil, fmt.Errorf("unknown context policy %d", int(c.Policy))
	}
}

// Load reads a YAML configuration file. Fields missing from the file
// keep their Default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
