package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend Backend `yaml:"backend"`
	Session Session `yaml:"session"`
	Server  Server  `yaml:"server"`
	Log     Log     `yaml:"log"`
	UI      UI      `yaml:"ui"`
}

type Backend struct {
	// Origin of the chat backend
	URL string `yaml:"url" validate:"required,url"`
	// Path of the chat endpoint
	ChatPath string `yaml:"chat_path" validate:"required,startswith=/"`
	// Per-request timeout, 0 disables it
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"`
}

type Session struct {
	// Session token format: short (sess_ + 8 base-36 chars) or uuid
	Format string `yaml:"format" validate:"oneof=short uuid"`
}

type Server struct {
	Port          string        `yaml:"port" validate:"required,numeric"`
	AllowedOrigin string        `yaml:"allowed_origin" validate:"required"`
	WidgetTTL     time.Duration `yaml:"widget_ttl" validate:"gt=0"`
}

type UI struct {
	// Title of the terminal chat overlay
	Title string `yaml:"title"`
}

type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	// Optional JSON log file
	File string `yaml:"file"`
}

func defaults() Config {
	return Config{
		Backend: Backend{
			URL:            "http://127.0.0.1:8000",
			ChatPath:       "/chat",
			RequestTimeout: 30 * time.Second,
		},
		Session: Session{Format: "short"},
		Server: Server{
			Port:          "8080",
			AllowedOrigin: "*",
			WidgetTTL:     time.Hour,
		},
		Log: Log{Level: "info"},
		UI:  UI{Title: "Chat Assistant"},
	}
}

// Load builds the config from defaults, an optional YAML file named by
// CHATBUBBLE_CONFIG, then environment variables.
func Load() (*Config, error) {
	// .env is optional, the environment may already be populated
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CHATBUBBLE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, oops.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, oops.Errorf("failed to parse YAML config: %w", err)
		}
	}

	setStr(&cfg.Backend.URL, "CHATBUBBLE_BACKEND_URL")
	setStr(&cfg.Backend.ChatPath, "CHATBUBBLE_CHAT_PATH")
	setStr(&cfg.Session.Format, "CHATBUBBLE_SESSION_FORMAT")
	setStr(&cfg.Server.Port, "PORT")
	setStr(&cfg.Server.AllowedOrigin, "CHATBUBBLE_ALLOWED_ORIGIN")
	setStr(&cfg.Log.Level, "LOG_LEVEL")
	setStr(&cfg.Log.File, "LOG_FILE")
	setStr(&cfg.UI.Title, "CHATBUBBLE_TITLE")

	for _, d := range []struct {
		name string
		dst  *time.Duration
	}{
		{"CHATBUBBLE_REQUEST_TIMEOUT", &cfg.Backend.RequestTimeout},
		{"CHATBUBBLE_WIDGET_TTL", &cfg.Server.WidgetTTL},
	} {
		if err := setDuration(d.dst, d.name); err != nil {
			return nil, err
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &cfg, nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDuration accepts Go durations ("45s") or plain seconds ("45").
func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return oops.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
