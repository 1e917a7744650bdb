package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"duty-notifier/internal/roster"
)

// ErrConfig wraps every configuration problem that stops the run.
var ErrConfig = errors.New("configuration error")

const (
	DefaultAPIURL  = "https://chat-api.bft.ru/public/v1/chat.message.send"
	DefaultTimeout = 10 * time.Second
	DefaultLogFile = "duty_notifier.log"
)

// Environment variables that override values from the YAML file.
const (
	EnvConfigPath  = "DUTY_NOTIFIER_CONFIG"
	EnvToken       = "DUTY_NOTIFIER_YUCHAT_TOKEN"
	EnvWorkspaceID = "DUTY_NOTIFIER_WORKSPACE_ID"
	EnvChatID      = "DUTY_NOTIFIER_CHAT_ID"
)

type Config struct {
	HTMLFile        string         `yaml:"html_file"`
	SearchDir       string         `yaml:"search_dir"`
	LogFile         string         `yaml:"log_file"`
	LogLevel        string         `yaml:"log_level"`
	TableClass      string         `yaml:"table_class"`
	MessageTemplate string         `yaml:"message_template"`
	Markers         roster.Markers `yaml:"markers"`
	ShoutrrrURL     string         `yaml:"shoutrrr_url"`
	ShoutrrrURLFile string         `yaml:"shoutrrr_url_file"`
	YuChat          *YuChatConfig  `yaml:"yuchat"`

	// BaseDir is the directory of the loaded config file. Relative paths
	// in the config resolve against it.
	BaseDir string `yaml:"-"`
}

type YuChatConfig struct {
	Token       string        `yaml:"token"`
	TokenFile   string        `yaml:"token_file"`
	WorkspaceID string        `yaml:"workspace_id"`
	ChatID      string        `yaml:"chat_id"`
	APIURL      string        `yaml:"api_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// GetAPIURL returns the configured endpoint or the public YuChat one.
func (y YuChatConfig) GetAPIURL() string {
	if y.APIURL == "" {
		return DefaultAPIURL
	}
	return y.APIURL
}

func (y YuChatConfig) GetTimeout() time.Duration {
	if y.Timeout <= 0 {
		return DefaultTimeout
	}
	return y.Timeout
}

func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	defer f.Close()
	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrConfig, path, err)
	}
	if cfg.YuChat == nil {
		return nil, fmt.Errorf("%w: section 'yuchat' not found in %s", ErrConfig, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	cfg.BaseDir = filepath.Dir(abs)
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if c.TableClass == "" {
		c.TableClass = roster.DefaultTableClass
	}
	c.Markers = c.Markers.WithDefaults()
}

// ApplyEnv overrides YuChat credentials with non-empty environment values.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.YuChat == nil {
		c.YuChat = &YuChatConfig{}
	}
	if v := getenv(EnvToken); v != "" {
		c.YuChat.Token = v
	}
	if v := getenv(EnvWorkspaceID); v != "" {
		c.YuChat.WorkspaceID = v
	}
	if v := getenv(EnvChatID); v != "" {
		c.YuChat.ChatID = v
	}
}

// Resolve makes p absolute relative to BaseDir.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// LogPath returns the absolute path of the log file.
func (c *Config) LogPath() string {
	return c.Resolve(c.LogFile)
}

// GetShoutrrrURL returns the mirror URL, reading it from shoutrrr_url_file
// when set. An empty result with nil error means no mirror is configured.
func (c *Config) GetShoutrrrURL() (string, error) {
	if c.ShoutrrrURLFile != "" {
		path := c.Resolve(c.ShoutrrrURLFile)
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read shoutrrr_url_file %s: %w", path, err)
		}
		url := strings.TrimSpace(string(data))
		if url == "" {
			return "", fmt.Errorf("shoutrrr_url_file %s is empty", path)
		}
		return url, nil
	}
	return c.ShoutrrrURL, nil
}

// FindConfig picks the config path: explicit override, then the
// DUTY_NOTIFIER_CONFIG variable, then ./config.yaml, then config.yaml next
// to the executable.
func FindConfig(override string, getenv func(string) string) string {
	if override != "" {
		return override
	}
	if p := getenv(EnvConfigPath); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	exe, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(filepath.Dir(exe), "config.yaml")
}
