package app

import (
	"os"
	"strings"

	"duty-notifier/internal/config"
)

// resolveToken returns the YuChat bearer token. An inline token (from YAML
// or the environment) is returned unchanged; otherwise token_file is read
// and trimmed. An empty result is left for the notifier to report.
func resolveToken(cfg *config.Config) (string, error) {
	if cfg == nil || cfg.YuChat == nil {
		return "", nil
	}
	if cfg.YuChat.Token != "" {
		return cfg.YuChat.Token, nil
	}
	if cfg.YuChat.TokenFile == "" {
		return "", nil
	}
	b, err := os.ReadFile(cfg.Resolve(cfg.YuChat.TokenFile))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
