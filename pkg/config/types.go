package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to unset fields.
const (
	DefaultPort            = 3000
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultMaxBodySize     = 10 * 1024 * 1024
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Config is the top-level proxy configuration.
type Config struct {
	// Port is the single listener port for proxy and admin routes.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// UpstreamTimeout bounds each upstream call.
	UpstreamTimeout Duration `json:"upstreamTimeout,omitempty" yaml:"upstreamTimeout,omitempty"`

	// MaxBodySize caps how many body bytes are kept per logged request or response.
	MaxBodySize int64 `json:"maxBodySize,omitempty" yaml:"maxBodySize,omitempty"`

	// RequestIDHeader, when set, is added with a UUID to upstream requests lacking it.
	RequestIDHeader string `json:"requestIdHeader,omitempty" yaml:"requestIdHeader,omitempty"`

	LogLevel  string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFormat string `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`

	// Mocks are glob patterns of seed mock files, relative to the config file.
	Mocks []string `json:"mocks,omitempty" yaml:"mocks,omitempty"`

	// Proxies are matched in order; the first route prefix that matches wins.
	Proxies []ProxyConfig `json:"proxies" yaml:"proxies"`
}

// ProxyConfig binds a route prefix to an upstream base URL.
type ProxyConfig struct {
	Name  string `json:"name" yaml:"name"`
	Route string `json:"route" yaml:"route"`
	Base  string `json:"base" yaml:"base"`
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.UpstreamTimeout == 0 {
		c.UpstreamTimeout = Duration(DefaultUpstreamTimeout)
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

// Duration is a time.Duration written as a Go duration string ("30s", "1m30s").
// Bare numbers are read as seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d *Duration) set(raw any) error {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(v * float64(time.Second))
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %v", raw)
	}
	return nil
}
