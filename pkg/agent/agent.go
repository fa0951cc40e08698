// Package agent defines the immutable configuration handed to an agent
// runtime: a model, an instruction payload, and the tool-provider
// connections the runtime may dial.
package agent

import (
	"errors"

	"github.com/vapagentmedia/vap-agent/pkg/bridge"
)

// Config is built once at startup and never mutated afterwards. Accessors
// copy mutable fields so the handed-off value stays immutable.
type Config struct {
	name         string
	model        string
	instructions string
	toolsets     []bridge.ConnectionDescriptor
}

// Option configures a Config instance.
type Option func(*Config) error

// New creates an agent Config with a required name and options.
func New(name string, opts ...Option) (*Config, error) {
	c := &Config{name: name}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.name == "" {
		return nil, errors.New("agent name is required")
	}
	if c.model == "" {
		return nil, errors.New("agent model is required")
	}
	return c, nil
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *Config) error {
		c.model = model
		return nil
	}
}

// WithInstructions sets the instruction payload.
func WithInstructions(instructions string) Option {
	return func(c *Config) error {
		c.instructions = instructions
		return nil
	}
}

// WithToolset adds a tool-provider connection. The descriptor is validated
// here so a malformed config fails at construction, not at dial time.
func WithToolset(desc bridge.ConnectionDescriptor) Option {
	return func(c *Config) error {
		if err := desc.Validate(); err != nil {
			return err
		}
		c.toolsets = append(c.toolsets, desc.Clone())
		return nil
	}
}

// Name returns the agent name.
func (c *Config) Name() string { return c.name }

// Model returns the model identifier.
func (c *Config) Model() string { return c.model }

// Instructions returns the instruction payload.
func (c *Config) Instructions() string { return c.instructions }

// Toolsets returns copies of the tool-provider connection descriptors.
func (c *Config) Toolsets() []bridge.ConnectionDescriptor {
	out := make([]bridge.ConnectionDescriptor, 0, len(c.toolsets))
	for _, d := range c.toolsets {
		out = append(out, d.Clone())
	}
	return out
}

// Equal reports structural equality with other. Two configs built from the
// same environment state compare equal.
func (c *Config) Equal(other *Config) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.name != other.name || c.model != other.model || c.instructions != other.instructions {
		return false
	}
	if len(c.toolsets) != len(other.toolsets) {
		return false
	}
	for i, d := range c.toolsets {
		if !d.Equal(other.toolsets[i]) {
			return false
		}
	}
	return true
}
