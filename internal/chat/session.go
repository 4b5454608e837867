// Package chat drives one conversation: it gates and records user turns, asks
// the model for replies and keeps the renderer in sync with the state.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"glowdesk/internal/completion"
	"glowdesk/internal/conversation"
	"glowdesk/internal/models"
	"glowdesk/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyInput    = errors.New("empty input")
	ErrOffTopic      = errors.New("question is off topic")
	ErrRequestFailed = completion.ErrRequestFailed
	ErrBusy          = conversation.ErrBusy
)

// Completer produces the assistant reply for a conversation window.
type Completer interface {
	Complete(ctx context.Context, msgs []models.Message) (completion.Reply, error)
}

// Gate decides whether a question is on topic.
type Gate interface {
	Allows(text string) bool
}

// Archive records accepted turns. It may be nil.
type Archive interface {
	Record(msg models.Message) error
}

// Texts are the fixed strings a session shows besides the conversation itself.
type Texts struct {
	OffTopic string
	Failure  string
	Pending  string
}

type Options struct {
	// ID identifies the session in logs and the archive; a uuid is generated
	// when empty.
	ID        string
	Settings  conversation.Settings
	Texts     Texts
	Gate      Gate
	Completer Completer
	Renderer  view.Renderer
	Archive   Archive
	Logger    *zap.Logger
	// History restores a previous conversation when non-empty.
	History []models.Message
}

// Request is an accepted turn waiting for its reply.
type Request struct {
	Text     string
	Messages []models.Message
}

// Session is not safe for concurrent use; callers serialise access.
type Session struct {
	id        string
	state     *conversation.State
	texts     Texts
	gate      Gate
	completer Completer
	renderer  view.Renderer
	archive   Archive
	logger    *zap.Logger
	usage     models.Usage
}

func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	var state *conversation.State
	if len(opts.History) > 0 {
		state = conversation.Restore(opts.Settings, opts.History)
	} else {
		state = conversation.New(opts.Settings)
	}

	s := &Session{
		id:        id,
		state:     state,
		texts:     opts.Texts,
		gate:      opts.Gate,
		completer: opts.Completer,
		renderer:  opts.Renderer,
		archive:   opts.Archive,
		logger:    logger.With(zap.String("session", id)),
	}
	s.Refresh()
	return s
}

func (s *Session) ID() string                 { return s.id }
func (s *Session) State() *conversation.State { return s.state }
func (s *Session) Usage() models.Usage        { return s.usage }

// Submit runs a whole turn: Begin, Send and Finish.
func (s *Session) Submit(ctx context.Context, text string) (completion.Reply, error) {
	req, err := s.Begin(text)
	if err != nil {
		return completion.Reply{}, err
	}
	reply, err := s.Send(ctx, req)
	return reply, s.Finish(reply, err)
}

// Begin validates text, appends it as a user turn and marks the session
// pending. Rejected input never touches the history.
func (s *Session) Begin(text string) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, ErrEmptyInput
	}
	if s.state.Pending() {
		s.logger.Debug("submission rejected while pending")
		return Request{}, ErrBusy
	}
	if !s.gate.Allows(text) {
		s.logger.Info("off-topic question rejected", zap.Int("chars", len(text)))
		s.render([]view.Instruction{view.User(text), view.AI(s.texts.OffTopic)})
		return Request{}, ErrOffTopic
	}

	if err := s.state.BeginRequest(); err != nil {
		return Request{}, err
	}
	s.state.AppendUser(text)
	s.record(models.RoleUser, text)

	req := Request{Text: text, Messages: s.state.SelectForTransmission()}
	s.render(s.pendingView())

	s.logger.Info("turn submitted",
		zap.Int("history", s.state.Len()),
		zap.Int("transmitted", len(req.Messages)),
		zap.Bool("context_tracking", s.state.ContextTrackingEnabled()),
	)
	return req, nil
}

// Send asks the completer for a reply. It does not touch session state, so it
// may run outside whatever lock or event loop guards the session.
func (s *Session) Send(ctx context.Context, req Request) (completion.Reply, error) {
	return s.completer.Complete(ctx, req.Messages)
}

// Finish clears the pending flag and applies the outcome of Send. A failed
// request leaves the user turn in place and appends nothing.
func (s *Session) Finish(reply completion.Reply, err error) error {
	s.state.EndRequest()

	if err != nil {
		s.logger.Warn("completion failed", zap.Error(err))
		s.render(s.turnView(s.texts.Failure))
		if !errors.Is(err, ErrRequestFailed) {
			err = fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		return err
	}

	s.state.AppendAssistant(reply.Content)
	s.record(models.RoleAssistant, reply.Content)
	s.usage.PromptTokens += reply.PromptTokens
	s.usage.CompletionTokens += reply.CompletionTokens
	s.Refresh()

	s.logger.Info("reply received",
		zap.Int64("prompt_tokens", reply.PromptTokens),
		zap.Int64("completion_tokens", reply.CompletionTokens),
	)
	return nil
}

// ToggleContext flips context tracking and re-renders.
func (s *Session) ToggleContext() bool {
	on := s.state.ToggleContextTracking()
	s.logger.Debug("context tracking toggled", zap.Bool("on", on))
	s.Refresh()
	return on
}

// ToggleHistory flips full-conversation display and re-renders.
func (s *Session) ToggleHistory() bool {
	on := s.state.ToggleShowHistory()
	s.logger.Debug("history display toggled", zap.Bool("on", on))
	s.Refresh()
	return on
}

// View returns what should be rendered for the current state.
func (s *Session) View() []view.Instruction {
	if s.state.Pending() {
		return s.pendingView()
	}
	return view.Project(s.state.SelectForDisplay())
}

// Refresh re-renders the current view.
func (s *Session) Refresh() {
	s.render(s.View())
}

// Labels returns the toggle labels for the current flag values.
func (s *Session) Labels() (contextLabel, historyLabel string) {
	return "Context Tracking: " + onOff(s.state.ContextTrackingEnabled()),
		"Show Full Conversation: " + onOff(s.state.ShowHistoryEnabled())
}

func (s *Session) pendingView() []view.Instruction {
	return s.turnView(s.texts.Pending)
}

// turnView shows the outstanding turn closed by an AI line: the full display
// when history display is on, otherwise only the latest user turn.
func (s *Session) turnView(tail string) []view.Instruction {
	var out []view.Instruction
	if s.state.ShowHistoryEnabled() {
		out = view.Project(s.state.SelectForDisplay())
	} else if last, ok := s.state.LatestUser(); ok {
		out = []view.Instruction{view.User(last.Content)}
	}
	return append(out, view.AI(tail))
}

func (s *Session) render(instrs []view.Instruction) {
	if s.renderer == nil {
		return
	}
	view.Render(s.renderer, instrs)
}

func (s *Session) record(role models.Role, content string) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Record(models.Message{Role: role, Content: content}); err != nil {
		s.logger.Warn("failed to archive message", zap.String("role", string(role)), zap.Error(err))
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
