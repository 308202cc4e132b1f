package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// Choice is a string flag restricted to a fixed set of values.
type Choice struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*Choice)(nil)

// NewChoice returns a Choice preset to def.
func NewChoice(def string, allowed ...string) *Choice {
	return &Choice{value: def, allowed: allowed}
}

func (c *Choice) String() string { return c.value }

func (c *Choice) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(c.allowed, s) {
		return fmt.Errorf("must be one of [%s]", strings.Join(c.allowed, ", "))
	}
	c.value = s
	return nil
}

// Type reports "string" so viper binds the flag as a plain string.
func (c *Choice) Type() string { return "string" }

// Usage appends the allowed values to description.
func (c *Choice) Usage(description string) string {
	return fmt.Sprintf("%s (%s)", description, strings.Join(c.allowed, "|"))
}
