package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"duty-notifier/internal/config"
)

// ErrDeliveryFailed matches every *DeliveryError.
var ErrDeliveryFailed = errors.New("delivery failed")

// maxErrorBody caps how much of an error response is kept, in runes.
const maxErrorBody = 500

// MissingConfigError lists required YuChat settings that are empty.
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return "missing required yuchat settings: " + strings.Join(e.Keys, ", ")
}

// DeliveryError describes a failed POST. StatusCode is zero when no
// response was received.
type DeliveryError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("yuchat returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("yuchat request failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDeliveryFailed }

type sendRequest struct {
	WorkspaceID string `json:"workspaceId"`
	ChatID      string `json:"chatId"`
	Markdown    string `json:"markdown"`
}

type sendResponse struct {
	MessageID json.RawMessage `json:"messageId"`
}

// Notifier posts messages to a YuChat chat through the public API.
type Notifier struct {
	cfg    config.YuChatConfig
	client *http.Client
	logger *zap.Logger
}

func NewNotifier(cfg config.YuChatConfig, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.GetTimeout()},
		logger: logger,
	}
}

// Validate reports the required settings that are empty, in the order
// token, workspace_id, chat_id.
func (n *Notifier) Validate() error {
	var missing []string
	if n.cfg.Token == "" {
		missing = append(missing, "token")
	}
	if n.cfg.WorkspaceID == "" {
		missing = append(missing, "workspace_id")
	}
	if n.cfg.ChatID == "" {
		missing = append(missing, "chat_id")
	}
	if len(missing) > 0 {
		return &MissingConfigError{Keys: missing}
	}
	return nil
}

// Send posts message and returns the message id reported by YuChat, or
// "N/A" when the response carries none. No retries are made.
func (n *Notifier) Send(ctx context.Context, message string) (string, error) {
	if err := n.Validate(); err != nil {
		n.logger.Error("yuchat settings incomplete", zap.Error(err))
		return "", err
	}

	body, err := json.Marshal(sendRequest{
		WorkspaceID: n.cfg.WorkspaceID,
		ChatID:      n.cfg.ChatID,
		Markdown:    message,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	url := n.cfg.GetAPIURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("failed to create request", zap.String("url", url), zap.Error(err))
		return "", &DeliveryError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	n.logger.Info("sending message to yuchat", zap.String("url", url))
	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("yuchat request failed", zap.String("url", url), zap.Error(err))
		return "", &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		n.logger.Error("failed to read yuchat response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return "", &DeliveryError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		derr := &DeliveryError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), maxErrorBody),
			Err:        fmt.Errorf("unexpected status: %s", resp.Status),
		}
		n.logger.Error("yuchat returned an error",
			zap.Int("status", derr.StatusCode),
			zap.String("body", derr.Body))
		return "", derr
	}

	id := messageID(data)
	n.logger.Info("message delivered to yuchat", zap.String("messageId", id))
	return id, nil
}

func messageID(data []byte) string {
	var r sendResponse
	if err := json.Unmarshal(data, &r); err != nil || len(r.MessageID) == 0 || string(r.MessageID) == "null" {
		return "N/A"
	}
	var s string
	if err := json.Unmarshal(r.MessageID, &s); err == nil {
		return s
	}
	return string(r.MessageID)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
