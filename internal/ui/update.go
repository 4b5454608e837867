package ui

import (
	"context"
	"errors"
	"strings"

	"glowdesk/internal/chat"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.Spinner, spCmd = m.Spinner.Update(msg)
		if m.Loading {
			m.UpdateViewport()
		}
		return m, spCmd

	case tea.KeyMsg:
		if m.ShortcutsOpen {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "enter", "?", "ctrl+s":
				m.ShortcutsOpen = false
				return m, nil
			}
			return m, nil
		}

		if isNewlineShortcut(msg) {
			m.TextInput.InsertString("\n")
			m.updateInputLayout()
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlN:
			m.ResetSession()
			return m, nil

		case tea.KeyCtrlT:
			m.Session.ToggleContext()
			m.UpdateViewport()
			return m, nil

		case tea.KeyCtrlF:
			m.Session.ToggleHistory()
			m.UpdateViewport()
			return m, nil

		case tea.KeyCtrlS:
			m.ShortcutsOpen = true
			return m, nil

		case tea.KeyEnter:
			return m, m.submit()
		}

	case ResponseMsg:
		// replies for a session replaced by Ctrl+N are dropped
		if msg.Session != m.Session {
			return m, nil
		}
		m.Loading = false
		// the session renders the failure advisory into the transcript
		if err := m.Session.Finish(msg.Reply, msg.Err); err != nil {
			m.Logger.Debug("turn failed", zap.String("session", m.Session.ID()), zap.Error(err))
		}
		m.UpdateViewport()
		return m, nil

	case tea.WindowSizeMsg:
		m.WindowWidth = msg.Width
		m.WindowHeight = msg.Height

		chatWidth := msg.Width - 2
		if chatWidth > MaxChatWidth {
			chatWidth = MaxChatWidth
		}
		m.Viewport.Width = chatWidth - 2

		m.updateInputLayout()
		glamourStyle := "dark"
		if !lipgloss.HasDarkBackground() {
			glamourStyle = "light"
		}
		m.Renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath(glamourStyle),
			glamour.WithWordWrap(ModalWidth-8),
		)
		m.UpdateViewport()
		return m, nil
	}

	m.TextInput, tiCmd = m.TextInput.Update(msg)
	m.updateInputLayout()

	// Filter out terminal background color queries and cursor reference codes that leak into the input
	val := m.TextInput.Value()
	if strings.Contains(val, "]11;rgb:") || strings.Contains(val, "1;rgb:") || strings.Contains(val, "[1;1R") {
		m.TextInput.Reset()
	}

	m.Viewport, vpCmd = m.Viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// submit starts a turn for the current input. Input stays in the box only
// when the session is busy so it can be sent once the reply arrives.
func (m *Model) submit() tea.Cmd {
	req, err := m.Session.Begin(m.TextInput.Value())
	switch {
	case errors.Is(err, chat.ErrEmptyInput), errors.Is(err, chat.ErrBusy):
		return nil
	case errors.Is(err, chat.ErrOffTopic):
		m.Err = nil
		m.TextInput.Reset()
		m.updateInputLayout()
		m.UpdateViewport()
		return nil
	case err != nil:
		m.Err = err
		return nil
	}

	m.Err = nil
	m.TextInput.Reset()
	m.updateInputLayout()
	m.Loading = true
	m.UpdateViewport()
	return tea.Batch(m.sendCmd(req), m.Spinner.Tick)
}

func (m *Model) sendCmd(req chat.Request) tea.Cmd {
	session := m.Session
	return func() tea.Msg {
		reply, err := session.Send(context.Background(), req)
		return ResponseMsg{Session: session, Reply: reply, Err: err}
	}
}

func isNewlineShortcut(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "shift+enter", "shift+return", "ctrl+j", "ctrl+enter", "alt+enter":
		return true
	default:
		return false
	}
}

func (m *Model) updateInputLayout() {
	if m.WindowWidth == 0 || m.WindowHeight == 0 {
		return
	}

	inputWidth := m.WindowWidth - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	contentWidth := inputWidth - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	maxInputHeight := 6
	lineCount := WrappedLineCount(m.TextInput.Value(), contentWidth)
	if lineCount < 1 {
		lineCount = 1
	}
	if lineCount > maxInputHeight {
		lineCount = maxInputHeight
	}

	m.TextInput.MaxHeight = maxInputHeight
	m.TextInput.SetWidth(inputWidth)
	m.TextInput.SetHeight(lineCount)

	inputBoxHeight := m.TextInput.Height() + 2
	reserved := inputBoxHeight + 5
	viewportHeight := m.WindowHeight - reserved
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	m.Viewport.Height = viewportHeight
}

// ResetSession drops the current conversation and starts a new one.
func (m *Model) ResetSession() {
	m.Session = m.NewSession(m.Transcript)
	m.Loading = false
	m.Err = nil
	m.TextInput.Reset()
	m.updateInputLayout()
	m.UpdateViewport()
	m.Viewport.GotoTop()
}
