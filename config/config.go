package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shinosaki/sparkup-push-go/autopush"
)

type Config struct {
	PushServiceURL string `yaml:"push_service_url" env:"PUSH_SERVICE_URL"`
	// VAPIDKey is the application server key, base64 encoded, used to
	// register a channel when the state has none.
	VAPIDKey  string `yaml:"vapid_key" env:"VAPID_KEY"`
	StatePath string `yaml:"state_path" env:"STATE_PATH" env-default:"state.json"`

	AppOrigin    string `yaml:"app_origin" env:"APP_ORIGIN" env-default:"http://localhost:3000"`
	WebhookURL   string `yaml:"webhook_url" env:"WEBHOOK_URL"`
	ListenAddr   string `yaml:"listen_addr" env:"LISTEN_ADDR" env-default:":8089"`
	CallbackBase string `yaml:"callback_base" env:"CALLBACK_BASE"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"console"`
	OutputPath string `yaml:"output_path" env:"LOG_OUTPUT_PATH"`
}

// Load reads path, falling back to environment variables alone when the
// file does not exist.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
	}

	if cfg.PushServiceURL == "" {
		cfg.PushServiceURL = autopush.MozillaPushService
	}

	return &cfg, nil
}
