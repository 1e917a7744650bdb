package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"duty-notifier/internal/config"
	"duty-notifier/internal/notify"
	"duty-notifier/internal/roster"
	"duty-notifier/internal/source"
	"duty-notifier/internal/util"
)

// Options are the command line settings for a single run.
type Options struct {
	ConfigPath string
	Date       string
	LogLevel   string
	DryRun     bool
}

// sender delivers the message to the chat of record.
type sender interface {
	Send(ctx context.Context, message string) (string, error)
}

// mirrorSender copies a delivered message to a secondary service.
type mirrorSender interface {
	Send(message string) error
}

// Test seams.
var (
	loadConfigFunc  = config.LoadConfig
	newLoggerFunc   = config.NewLogger
	newNotifierFunc = func(cfg config.YuChatConfig, logger *zap.Logger) sender {
		return notify.NewNotifier(cfg, logger)
	}
	newMirrorFunc = func(url string, logger *zap.Logger) mirrorSender {
		return notify.NewMirror(url, logger)
	}
	nowFunc = time.Now
)

// Run reads today's duty roster from the schedule export and posts it to
// YuChat. Any returned error means the process should exit non-zero.
func Run(ctx context.Context, opts Options) (err error) {
	var logger *zap.Logger
	closeLog := func() error { return nil }
	defer func() {
		if r := recover(); r != nil {
			if logger == nil {
				logger, closeLog = bootstrapLogger(opts)
			}
			logger.Error("unexpected failure", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("unexpected failure: %v", r)
		}
		_ = closeLog()
	}()

	_ = godotenv.Load()

	cfgPath := config.FindConfig(opts.ConfigPath, os.Getenv)
	cfg, err := loadConfigFunc(cfgPath)
	if err != nil {
		logger, closeLog = bootstrapLogger(opts)
		logger.Error("failed to load config", zap.String("path", cfgPath), zap.Error(err))
		return fmt.Errorf("failed to load config: %w", err)
	}
	_ = godotenv.Load(filepath.Join(cfg.BaseDir, ".env"))
	cfg.ApplyEnv(os.Getenv)

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	l, c, err := newLoggerFunc(config.ParseLogLevel(level), cfg.LogPath())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger, closeLog = l, c

	if err := run(ctx, cfg, opts, logger); err != nil {
		if ctx.Err() != nil {
			logger.Info("interrupted")
		}
		logger.Error("run failed", zap.Error(err))
		return err
	}
	logger.Info("run completed")
	return nil
}

// bootstrapLogger writes to stdout only. It serves failures that happen
// before the configured logger exists.
func bootstrapLogger(opts Options) (logger *zap.Logger, closeFn func() error) {
	noop := func() error { return nil }
	defer func() {
		if recover() != nil {
			logger, closeFn = zap.NewExample(), noop
		}
	}()
	l, c, err := newLoggerFunc(config.ParseLogLevel(opts.LogLevel), "")
	if err != nil {
		return zap.NewExample(), noop
	}
	return l, c
}

func run(ctx context.Context, cfg *config.Config, opts Options, logger *zap.Logger) error {
	today := nowFunc()
	if opts.Date != "" {
		d, err := util.ParseTargetDate(opts.Date, time.Local)
		if err != nil {
			return err
		}
		today = d
	}

	token, err := resolveToken(cfg)
	if err != nil {
		return fmt.Errorf("%w: read token_file: %w", config.ErrConfig, err)
	}
	cfg.YuChat.Token = token

	htmlPath, err := resolveHTMLPath(cfg, today, logger)
	if err != nil {
		return err
	}
	logger.Info("looking up duty roster",
		zap.String("date", today.Format("02.01.2006")),
		zap.String("file", htmlPath))

	data, err := source.Read(htmlPath)
	if err != nil {
		return err
	}
	logger.Info("html file read", zap.Int("bytes", len(data)))

	r := parseRoster(data, today, cfg, logger)
	logger.Info("duty roster extracted",
		zap.Int("primary", len(r.Primary)),
		zap.Int("backup", len(r.Backup)))
	if len(r.Primary) > 0 {
		logger.Info("primary duty", zap.String("employees", strings.Join(r.Primary, ", ")))
	}
	if len(r.Backup) > 0 {
		logger.Info("backup duty", zap.String("employees", strings.Join(r.Backup, ", ")))
	}

	message := buildMessage(cfg, today, r, logger)
	logger.Info("message prepared", zap.String("message", message))

	if opts.DryRun {
		logger.Info("dry run, message not sent")
		return nil
	}

	notifier := newNotifierFunc(*cfg.YuChat, logger)
	if _, err := notifier.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	mirrorURL, err := cfg.GetShoutrrrURL()
	if err != nil {
		logger.Warn("mirror disabled", zap.Error(err))
		return nil
	}
	if mirrorURL != "" {
		// Mirror failures are logged by the mirror and do not fail the run.
		_ = newMirrorFunc(mirrorURL, logger).Send(message)
	}
	return nil
}

func resolveHTMLPath(cfg *config.Config, today time.Time, logger *zap.Logger) (string, error) {
	if cfg.HTMLFile != "" {
		return cfg.Resolve(cfg.HTMLFile), nil
	}
	dir := cfg.BaseDir
	if cfg.SearchDir != "" {
		dir = cfg.Resolve(cfg.SearchDir)
	}
	logger.Info("searching for schedule file",
		zap.String("month", today.Format("01.2006")),
		zap.String("dir", dir))
	path, err := source.Discover(dir, today)
	if err != nil {
		logger.Error("put the schedule html into the directory or set html_file in config.yaml",
			zap.String("dir", dir))
		return "", err
	}
	logger.Info("schedule file found", zap.String("file", filepath.Base(path)))
	return path, nil
}

// parseRoster never fails: layout problems are logged and give an empty
// roster so that a "no duty" message still goes out.
func parseRoster(data []byte, today time.Time, cfg *config.Config, logger *zap.Logger) roster.Roster {
	p := roster.NewParser(cfg.TableClass, cfg.Markers, logger)
	r, err := p.Parse(bytes.NewReader(data), today)
	if err == nil {
		return r
	}
	var dce *roster.DateColumnError
	if errors.As(err, &dce) {
		logger.Warn("date column not found",
			zap.Int("day", dce.Day),
			zap.Strings("headers", dce.Headers))
	} else {
		logger.Error("failed to parse duty table", zap.Error(err))
	}
	return roster.Roster{}
}

func buildMessage(cfg *config.Config, today time.Time, r roster.Roster, logger *zap.Logger) string {
	if cfg.MessageTemplate == "" {
		return notify.FormatMessage(today, r)
	}
	msg, err := notify.RenderMessage(notify.NewMessageData(today, r), cfg.MessageTemplate)
	if err != nil {
		logger.Warn("message_template failed, using default", zap.Error(err))
		return notify.FormatMessage(today, r)
	}
	return msg
}
