package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"voice-relay/config"
	"voice-relay/internal/application"
	"voice-relay/internal/infra"
	"voice-relay/internal/infra/keychain"
	"voice-relay/internal/infra/openai"
	"voice-relay/internal/infra/telegram"
	"voice-relay/internal/infra/webhook"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional; env vars override it)")
	webhookURL := flag.String("set-webhook", "", "register this public URL with Telegram before serving")
	storeAccount := flag.String("store-secret", "", "read a secret from stdin and save it in the OS keychain under this account (bot_token or openai_api_key), then exit")
	keychainService := flag.String("keychain-service", keychain.DefaultService, "keychain service used by -store-secret")
	flag.Parse()

	if *storeAccount != "" {
		if err := storeSecret(*keychainService, *storeAccount, os.Stdin); err != nil {
			slog.Error("storing secret", "account", *storeAccount, "error", err)
			os.Exit(1)
		}
		slog.Info("secret stored", "service", *keychainService, "account", *storeAccount)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tgClient := telegram.NewClient(
		cfg.Telegram.BotToken,
		cfg.Telegram.ParseMode,
		parseDuration(logger, "telegram.timeout", cfg.Telegram.Timeout, 30*time.Second),
	).WithBaseURL(cfg.Telegram.BaseURL)

	if *webhookURL != "" {
		if err := tgClient.SetWebhook(ctx, infra.DefaultRetryConfig(), *webhookURL, cfg.Server.SecretToken); err != nil {
			logger.Error("registering webhook", "url", *webhookURL, "error", err)
			os.Exit(1)
		}
		logger.Info("webhook registered", "url", *webhookURL)
	}

	var transcriber application.Transcriber
	if cfg.OpenAI.APIKey != "" {
		transcriber = openai.NewWhisperClientWithURL(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.Language,
			parseDuration(logger, "openai.timeout", cfg.OpenAI.Timeout, 60*time.Second),
			cfg.OpenAI.BaseURL,
		)
	} else {
		logger.Warn("openai.api_key not set, voice messages will fail")
		transcriber = &application.NoopTranscriber{}
	}

	relay := application.NewRelay(
		application.NewChatAllowList(cfg.AllowedChat()),
		tgClient,
		transcriber,
		tgClient,
		logger,
	)

	server := webhook.NewServer(webhook.Options{
		Addr:         cfg.Server.HTTPAddr,
		Path:         cfg.Server.WebhookPath,
		SecretToken:  cfg.Server.SecretToken,
		RateLimit:    cfg.Server.RateLimit,
		WriteTimeout: parseDuration(logger, "server.write_timeout", cfg.Server.WriteTimeout, 2*time.Minute),
	}, relay, logger)

	logger.Info("starting voice relay",
		"addr", cfg.Server.HTTPAddr,
		"path", cfg.Server.WebhookPath,
		"model", cfg.OpenAI.Model,
	)

	if err := server.Start(ctx); err != nil {
		logger.Error("starting server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("stopping server", "error", err)
		os.Exit(1)
	}
}

// storeSecret saves the first line of in under account.
func storeSecret(service, account string, in io.Reader) error {
	if account != config.AccountBotToken && account != config.AccountOpenAIKey {
		return fmt.Errorf("unknown account %q (want %s or %s)", account, config.AccountBotToken, config.AccountOpenAIKey)
	}

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading secret: %w", err)
		}
		return errors.New("no secret on stdin")
	}

	secret := strings.TrimSpace(scanner.Text())
	if secret == "" {
		return errors.New("empty secret")
	}

	return keychain.Set(service, account, secret)
}

func parseDuration(logger *slog.Logger, name, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("invalid duration, using default", "setting", name, "value", value, "default", fallback)
		return fallback
	}
	return d
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
