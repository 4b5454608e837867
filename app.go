package main

import (
	"errors"
	"fmt"
	"time"

	"glowdesk/internal/chat"
	"glowdesk/internal/completion"
	"glowdesk/internal/config"
	"glowdesk/internal/conversation"
	"glowdesk/internal/db"
	"glowdesk/internal/logging"
	"glowdesk/internal/models"
	"glowdesk/internal/topic"
	"glowdesk/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *db.Store
	client  *completion.Client
	gate    *topic.Gate
	timeout time.Duration
}

// newApp loads config and opens the logger and archive. The completion client
// is only built when withModel is set, so commands that never call the model
// do not need an API key.
func newApp(withModel bool) (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, gate: topic.NewGate(cfg.Chat.Keywords)}

	if withModel {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
		a.timeout, _ = cfg.RequestTimeout()
		a.client = completion.New(completion.Config{
			BaseURL:    cfg.LLM.BaseURL,
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.LLM.Model,
			MaxTokens:  cfg.LLM.MaxTokens,
			Timeout:    a.timeout,
			MaxRetries: cfg.LLM.MaxRetries,
			Headers:    cfg.LLM.Headers,
		})
	}

	if cfg.Storage.Enabled {
		store, err := db.Open(cfg.Storage.Path)
		if err != nil {
			// the chat still works without an archive
			logger.Warn("transcript archive disabled", zap.String("path", cfg.Storage.Path), zap.Error(err))
		} else {
			a.store = store
		}
	}

	logger.Debug("config loaded",
		zap.String("path", path),
		zap.String("model", cfg.LLM.Model),
		zap.Int("keywords", a.gate.Len()),
		zap.Bool("archive", a.store != nil),
	)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close archive", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// newSession builds a session rendering into r. history and chatID resume an
// archived chat when set.
func (a *app) newSession(r view.Renderer, history []models.Message, chatID int64) *chat.Session {
	id := uuid.NewString()
	opts := chat.Options{
		ID: id,
		Settings: conversation.Settings{
			SystemPrompt:    a.cfg.Chat.SystemPrompt,
			ContextTracking: a.cfg.Chat.ContextTracking,
			ShowHistory:     a.cfg.Chat.ShowHistory,
		},
		Texts: chat.Texts{
			OffTopic: a.cfg.Chat.OffTopicMessage,
			Failure:  a.cfg.Chat.FailureMessage,
			Pending:  a.cfg.Chat.PendingText,
		},
		Gate:      a.gate,
		Completer: a.client,
		Renderer:  r,
		Logger:    a.logger,
		History:   history,
	}
	if a.store != nil {
		if chatID != 0 {
			opts.Archive = a.store.ResumeArchive(id, a.cfg.LLM.Model, chatID)
		} else {
			opts.Archive = a.store.NewArchive(id, a.cfg.LLM.Model)
		}
	}
	return chat.New(opts)
}

// loadChat returns the messages of an archived chat.
func (a *app) loadChat(chatID int64) ([]models.Message, error) {
	if a.store == nil {
		return nil, errors.New("transcript archive is disabled")
	}
	msgs, err := a.store.ChatMessages(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat %d: %w", chatID, err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("chat %d not found", chatID)
	}
	return msgs, nil
}
