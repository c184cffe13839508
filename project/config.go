package project

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/lpc/lpc/parser"
)

// Config is the contents of lpc.yaml.
type Config struct {
	// Driver selects the dialect: "ldmud" or "fluffos".
	Driver string `yaml:"driver"`

	// IncludeDirs are searched for #include targets, relative to the
	// project root unless absolute.
	IncludeDirs []string `yaml:"include_dirs,omitempty"`

	// Defines are macros the driver predefines for every file.
	Defines map[string]string `yaml:"defines,omitempty"`

	// Extensions lists the file extensions treated as LPC source.
	Extensions []string `yaml:"extensions,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultConfig returns the configuration used when no lpc.yaml exists.
func DefaultConfig() *Config {
	return &Config{
		Driver:     "ldmud",
		Extensions: []string{".c", ".h"},
		LogLevel:   "info",
	}
}

// ReadConfig reads and validates a configuration file.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FromYAML parses a configuration. Fields missing from data keep their
// default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	cfg.Driver = strings.ToLower(cfg.Driver)
	for i, ext := range cfg.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToYAML serializes the configuration.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "ldmud", "fluffos":
	default:
		return fmt.Errorf("unknown driver %q (want ldmud or fluffos)", c.Driver)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("no source extensions configured")
	}
	for name := range c.Defines {
		if name == "" || strings.ContainsAny(name, " \t\n(") {
			return fmt.Errorf("invalid macro name %q in defines", name)
		}
	}
	return nil
}

// LanguageVersion maps Driver onto the parser's dialect selector.
func (c *Config) LanguageVersion() parser.LanguageVersion {
	if c.Driver == "fluffos" {
		return parser.LanguageFluffOS
	}
	return parser.LanguageLDMud
}
