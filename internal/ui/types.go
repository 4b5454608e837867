package ui

import (
	"glowdesk/internal/chat"
	"glowdesk/internal/completion"
	"glowdesk/internal/view"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

const (
	MaxChatWidth = 100
	ModalWidth   = 60
)

const ShortcutsMarkdown = `
| Key | Action |
|-----|--------|
| **Enter** | Send question |
| **Ctrl+T** | Toggle context tracking |
| **Ctrl+F** | Toggle full conversation |
| **Ctrl+N** | New chat session |
| **Ctrl+S** | Show this help |
| **Esc / Ctrl+C** | Quit |

*Context tracking* sends the whole conversation to the model.
When it is off only your latest question is sent.
`

// SessionFactory builds a fresh chat session rendering into r.
type SessionFactory func(r view.Renderer) *chat.Session

// ResponseMsg carries the outcome of a completion back to the event loop.
type ResponseMsg struct {
	Session *chat.Session
	Reply   completion.Reply
	Err     error
}

type Model struct {
	Viewport      viewport.Model
	TextInput     textarea.Model
	Spinner       spinner.Model
	Session       *chat.Session
	Transcript    *view.Buffer
	NewSession    SessionFactory
	Renderer      *glamour.TermRenderer
	Logger        *zap.Logger
	Err           error
	Loading       bool
	WindowWidth   int
	WindowHeight  int
	ShortcutsOpen bool
	ModelName     string
	Greeting      string
	PendingText   string
}
