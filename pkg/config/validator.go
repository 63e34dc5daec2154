package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fautty/fautty/pkg/logging"
	"github.com/fautty/fautty/pkg/mock"
)

// ValidationError is an alias for mock.ValidationError so config and mock
// validation share one error type.
type ValidationError = mock.ValidationError

// Validate checks the configuration. Route prefixes are normalized in place
// by trimming trailing slashes.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &ValidationError{Field: "port", Message: fmt.Sprintf("must be between 1 and 65535, got %d", c.Port)}
	}
	if c.UpstreamTimeout < 0 {
		return &ValidationError{Field: "upstreamTimeout", Message: "cannot be negative"}
	}
	if c.MaxBodySize < 0 {
		return &ValidationError{Field: "maxBodySize", Message: "cannot be negative"}
	}
	if c.LogLevel != "" && !logging.IsValidLevel(c.LogLevel) {
		return &ValidationError{Field: "logLevel", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	if c.LogFormat != "" && !logging.IsValidFormat(c.LogFormat) {
		return &ValidationError{Field: "logFormat", Message: fmt.Sprintf("unknown format %q", c.LogFormat)}
	}
	if len(c.Proxies) == 0 {
		return &ValidationError{Field: "proxies", Message: "at least one proxy is required"}
	}

	names := make(map[string]int, len(c.Proxies))
	for i := range c.Proxies {
		p := &c.Proxies[i]
		if err := p.Validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("proxies[%d].%s", i, ve.Field)
			}
			return err
		}
		if j, dup := names[p.Name]; dup {
			return &ValidationError{
				Field:   fmt.Sprintf("proxies[%d].name", i),
				Message: fmt.Sprintf("duplicate name %q (also proxies[%d])", p.Name, j),
			}
		}
		names[p.Name] = i
	}
	return nil
}

// Validate checks a single proxy definition and normalizes its route.
func (p *ProxyConfig) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if !strings.HasPrefix(p.Route, "/") {
		return &ValidationError{Field: "route", Message: fmt.Sprintf("must start with /, got %q", p.Route)}
	}
	if trimmed := strings.TrimRight(p.Route, "/"); trimmed != "" {
		p.Route = trimmed
	} else {
		p.Route = "/"
	}

	u, err := url.Parse(p.Base)
	if err != nil {
		return &ValidationError{Field: "base", Message: err.Error(), Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "base", Message: fmt.Sprintf("scheme must be http or https, got %q", p.Base)}
	}
	if u.Host == "" {
		return &ValidationError{Field: "base", Message: fmt.Sprintf("host is required, got %q", p.Base)}
	}
	return nil
}
