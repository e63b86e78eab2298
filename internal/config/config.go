package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smartbotics/automate-web/internal/widget"
)

const (
	defaultChatEndpoint = "https://apilater-etb3crf5abffg2h2.westeurope-01.azurewebsites.net/api/automate-chatbot/message"
	defaultWebhookURL   = "https://nochon.smartbotics.eu/webhook/d51255e2-b1f5-43f2-8870-9969f1a37863"
)

// Config aggregates every setting of the widget runtime.
type Config struct {
	Server  ServerConfig
	Chat    ChatConfig
	Contact ContactConfig
	Widget  widget.Options
	Log     LogConfig
}

// Load reads configuration from the environment, then applies the optional
// YAML overlay named by WIDGET_CONFIG.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	contact, err := loadContactConfig()
	if err != nil {
		return nil, err
	}

	widgetOpts, err := loadWidgetOptions()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:  server,
		Chat:    chat,
		Contact: contact,
		Widget:  widgetOpts,
		Log:     logCfg,
	}

	if path := strings.TrimSpace(os.Getenv("WIDGET_CONFIG")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origins := splitList(os.Getenv("ALLOWED_ORIGINS"))

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// ChatConfig points at the remote chat service.
type ChatConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	timeout, err := parseDurationEnv("CHAT_TIMEOUT", 30*time.Second)
	if err != nil {
		return ChatConfig{}, err
	}
	return ChatConfig{
		Endpoint: getEnvOrDefault("CHAT_ENDPOINT", defaultChatEndpoint),
		Timeout:  timeout,
	}, nil
}

// ContactConfig points at the lead webhook.
type ContactConfig struct {
	WebhookURL     string
	Timeout        time.Duration
	SuccessDisplay time.Duration
}

func loadContactConfig() (ContactConfig, error) {
	timeout, err := parseDurationEnv("CONTACT_TIMEOUT", 30*time.Second)
	if err != nil {
		return ContactConfig{}, err
	}
	display, err := parseDurationEnv("CONTACT_SUCCESS_DISPLAY", 10*time.Second)
	if err != nil {
		return ContactConfig{}, err
	}
	return ContactConfig{
		WebhookURL:     getEnvOrDefault("CONTACT_WEBHOOK_URL", defaultWebhookURL),
		Timeout:        timeout,
		SuccessDisplay: display,
	}, nil
}

func loadWidgetOptions() (widget.Options, error) {
	opts := widget.DefaultOptions()

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"WIDGET_AUTO_OPEN_DELAY", &opts.AutoOpenDelay},
		{"WIDGET_WELCOME_DELAY", &opts.WelcomeDelay},
		{"WIDGET_MOBILE_FOCUS_DELAY", &opts.MobileFocusDelay},
		{"WIDGET_SCROLL_SETTLE", &opts.ScrollSettle},
	}
	for _, d := range durations {
		val, err := parseDurationEnv(d.key, *d.dst)
		if err != nil {
			return widget.Options{}, err
		}
		*d.dst = val
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"WIDGET_NARROW_BREAKPOINT", &opts.NarrowBreakpoint},
		{"WIDGET_KEYBOARD_SHRINK", &opts.KeyboardShrink},
		{"WIDGET_INPUT_MAX_HEIGHT", &opts.InputMaxHeight},
	}
	for _, i := range ints {
		val, err := parseOptionalIntEnv(i.key)
		if err != nil {
			return widget.Options{}, err
		}
		if val != nil {
			*i.dst = *val
		}
	}

	opts.WelcomeMessage = getEnvOrDefault("WIDGET_WELCOME_MESSAGE", opts.WelcomeMessage)
	return opts, nil
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string
	Format string
	Caller bool
}

func loadLogConfig() (LogConfig, error) {
	caller, err := parseBoolEnv("LOG_CALLER", false)
	if err != nil {
		return LogConfig{}, err
	}
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "auto"),
		Caller: caller,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

// parseDurationEnv accepts Go durations ("5s") or bare milliseconds ("5000").
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	return parseDuration(key, value)
}

func parseDuration(key, value string) (time.Duration, error) {
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return d, nil
}
