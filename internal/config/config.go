package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// DefaultVariant is used when a display type does not pin a variant.
const DefaultVariant = "auto"

var (
	ErrInvalidButtons = errors.New("invalid button configuration")
	ErrInvalidOptions = errors.New("invalid option configuration")
)

// Config is the resolved display configuration. It is built once by Resolve
// and only changes afterwards through SetOption.
type Config struct {
	displayType    string
	displayVariant string
	buttons        map[string]string
	options        map[string]string
}

// Resolve merges the defaults for displayType with the parsed button and
// option strings. Explicit values always win over type defaults.
func Resolve(displayType, buttons, options string) (*Config, error) {
	parsedButtons, err := parseButtons(buttons)
	if err != nil {
		return nil, err
	}
	parsedOptions, err := parseOptions(options)
	if err != nil {
		return nil, err
	}

	displayType = strings.TrimSpace(displayType)
	if alias, ok := typeAliases[displayType]; ok {
		displayType = alias
	}
	cfg := &Config{
		displayType:    displayType,
		displayVariant: DefaultVariant,
		buttons:        map[string]string{},
		options:        map[string]string{},
	}

	if def, ok := typeDefaults[displayType]; ok {
		cfg.displayType = def.displayType
		if def.displayVariant != "" {
			cfg.displayVariant = def.displayVariant
		}
		maps.Copy(cfg.buttons, def.buttons)
		maps.Copy(cfg.options, def.options)
	}

	maps.Copy(cfg.buttons, parsedButtons)
	maps.Copy(cfg.options, parsedOptions)
	return cfg, nil
}

// DisplayType returns the normalised display type.
func (c *Config) DisplayType() string { return c.displayType }

// DisplayVariant returns the display variant, "auto" unless a type default pins one.
func (c *Config) DisplayVariant() string { return c.displayVariant }

// Buttons returns a copy of the label to spec mapping.
func (c *Config) Buttons() map[string]string { return maps.Clone(c.buttons) }

// Labels returns the button labels in sorted order.
func (c *Config) Labels() []string { return slices.Sorted(maps.Keys(c.buttons)) }

// Options returns a copy of the option mapping.
func (c *Config) Options() map[string]string { return maps.Clone(c.options) }

// Has reports whether key was set by a default or explicitly.
func (c *Config) Has(key string) bool {
	_, ok := c.options[key]
	return ok
}

// String returns the raw option value or def.
func (c *Config) String(key, def string) string {
	if v, ok := c.options[key]; ok {
		return v
	}
	return def
}

// Int returns the option parsed as an integer or def when unset.
func (c *Config) Int(key string, def int) (int, error) {
	v, ok := c.options[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("option %s: %w", key, err)
	}
	return n, nil
}

// Float returns the option parsed as a float or def when unset.
func (c *Config) Float(key string, def float64) (float64, error) {
	v, ok := c.options[key]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("option %s: %w", key, err)
	}
	return f, nil
}

// Bool returns true iff the option is one of true, yes, y or 1 (any case).
// An unset key returns def.
func (c *Config) Bool(key string, def bool) bool {
	v, ok := c.options[key]
	if !ok {
		return def
	}
	return isTruthy(v)
}

// SetOption overrides a single option. Backends use it to record defaults
// they resolve at construction time, such as the panel resolution.
func (c *Config) SetOption(key, value string) {
	c.options[key] = value
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}
