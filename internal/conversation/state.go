// Package conversation owns the message history of a chat session and the two
// flags that decide how much of it is sent to the model and how much is shown.
package conversation

import (
	"errors"

	"glowdesk/internal/models"
)

// ErrBusy is returned by BeginRequest while a completion is outstanding.
var ErrBusy = errors.New("a request is already pending")

// Settings configures a new State.
type Settings struct {
	SystemPrompt    string
	ContextTracking bool
	ShowHistory     bool
}

// State is the single source of truth for a conversation. The first history
// entry is always the system message; everything after it is append-only.
type State struct {
	history                []models.Message
	contextTrackingEnabled bool
	showHistoryEnabled     bool
	pending                bool
}

func New(s Settings) *State {
	return &State{
		history:                []models.Message{{Role: models.RoleSystem, Content: s.SystemPrompt}},
		contextTrackingEnabled: s.ContextTracking,
		showHistoryEnabled:     s.ShowHistory,
	}
}

// Restore rebuilds a State from archived messages. Archived system rows are
// skipped so the configured system prompt stays the only one at position 0.
func Restore(s Settings, msgs []models.Message) *State {
	st := New(s)
	for _, m := range msgs {
		switch m.Role {
		case models.RoleUser:
			st.AppendUser(m.Content)
		case models.RoleAssistant:
			st.AppendAssistant(m.Content)
		}
	}
	return st
}

func (s *State) AppendUser(text string) {
	s.history = append(s.history, models.Message{Role: models.RoleUser, Content: text})
}

func (s *State) AppendAssistant(text string) {
	s.history = append(s.history, models.Message{Role: models.RoleAssistant, Content: text})
}

// ToggleContextTracking flips the flag and returns its new value.
func (s *State) ToggleContextTracking() bool {
	s.contextTrackingEnabled = !s.contextTrackingEnabled
	return s.contextTrackingEnabled
}

// ToggleShowHistory flips the flag and returns its new value.
func (s *State) ToggleShowHistory() bool {
	s.showHistoryEnabled = !s.showHistoryEnabled
	return s.showHistoryEnabled
}

func (s *State) ContextTrackingEnabled() bool { return s.contextTrackingEnabled }
func (s *State) ShowHistoryEnabled() bool     { return s.showHistoryEnabled }
func (s *State) Pending() bool                { return s.pending }
func (s *State) Len() int                     { return len(s.history) }

// History returns a copy of every stored message, system message included.
func (s *State) History() []models.Message {
	return append([]models.Message(nil), s.history...)
}

// BeginRequest marks a completion as outstanding.
func (s *State) BeginRequest() error {
	if s.pending {
		return ErrBusy
	}
	s.pending = true
	return nil
}

func (s *State) EndRequest() {
	s.pending = false
}

// SelectForTransmission returns the messages to send to the model.
func (s *State) SelectForTransmission() []models.Message {
	return TransmissionWindow(s.history, s.contextTrackingEnabled)
}

// SelectForDisplay returns the messages to render.
func (s *State) SelectForDisplay() []models.Message {
	return DisplayWindow(s.history, s.showHistoryEnabled)
}

// LatestUser returns the most recent user message, if any.
func (s *State) LatestUser() (models.Message, bool) {
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Role == models.RoleUser {
			return s.history[i], true
		}
	}
	return models.Message{}, false
}
