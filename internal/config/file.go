package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML overlay. Only keys present in the file override the
// environment.
type fileConfig struct {
	Chat struct {
		Endpoint string `yaml:"endpoint"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"chat"`
	Contact struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"contact"`
	Widget struct {
		AutoOpenDelay    string `yaml:"auto_open_delay"`
		WelcomeDelay     string `yaml:"welcome_delay"`
		MobileFocusDelay string `yaml:"mobile_focus_delay"`
		ScrollSettle     string `yaml:"scroll_settle"`
		NarrowBreakpoint *int   `yaml:"narrow_breakpoint"`
		KeyboardShrink   *int   `yaml:"keyboard_shrink"`
		InputMaxHeight   *int   `yaml:"input_max_height"`
		WelcomeMessage   string `yaml:"welcome_message"`
	} `yaml:"widget"`
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read widget config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse widget config %s: %w", path, err)
	}

	if fc.Chat.Endpoint != "" {
		c.Chat.Endpoint = fc.Chat.Endpoint
	}
	if fc.Contact.WebhookURL != "" {
		c.Contact.WebhookURL = fc.Contact.WebhookURL
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"chat.timeout", fc.Chat.Timeout, &c.Chat.Timeout},
		{"widget.auto_open_delay", fc.Widget.AutoOpenDelay, &c.Widget.AutoOpenDelay},
		{"widget.welcome_delay", fc.Widget.WelcomeDelay, &c.Widget.WelcomeDelay},
		{"widget.mobile_focus_delay", fc.Widget.MobileFocusDelay, &c.Widget.MobileFocusDelay},
		{"widget.scroll_settle", fc.Widget.ScrollSettle, &c.Widget.ScrollSettle},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		val, err := parseDuration(d.key, d.raw)
		if err != nil {
			return err
		}
		*d.dst = val
	}

	if fc.Widget.NarrowBreakpoint != nil {
		c.Widget.NarrowBreakpoint = *fc.Widget.NarrowBreakpoint
	}
	if fc.Widget.KeyboardShrink != nil {
		c.Widget.KeyboardShrink = *fc.Widget.KeyboardShrink
	}
	if fc.Widget.InputMaxHeight != nil {
		c.Widget.InputMaxHeight = *fc.Widget.InputMaxHeight
	}
	if fc.Widget.WelcomeMessage != "" {
		c.Widget.WelcomeMessage = fc.Widget.WelcomeMessage
	}

	return nil
}
