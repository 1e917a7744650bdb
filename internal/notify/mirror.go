package notify

import (
	"fmt"

	"github.com/containrrr/shoutrrr"
	"go.uber.org/zap"
)

var shoutrrrSend = shoutrrr.Send

// Mirror forwards a copy of the duty message to any service shoutrrr
// supports (telegram, slack, ntfy, ...).
type Mirror struct {
	url    string
	logger *zap.Logger
}

func NewMirror(url string, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{url: url, logger: logger}
}

func (m *Mirror) Send(message string) error {
	if m.url == "" {
		return nil
	}
	if err := shoutrrrSend(m.url, message); err != nil {
		m.logger.Warn("failed to mirror message", zap.Error(err))
		return fmt.Errorf("shoutrrr send: %w", err)
	}
	m.logger.Info("message mirrored via shoutrrr")
	return nil
}
