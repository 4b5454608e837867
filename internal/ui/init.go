package ui

import (
	"glowdesk/internal/styles"
	"glowdesk/internal/view"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type Options struct {
	NewSession  SessionFactory
	Logger      *zap.Logger
	ModelName   string
	Greeting    string
	PendingText string
}

func InitialModel(opts Options) Model {
	ti := textarea.New()
	ti.Placeholder = "Ask about skincare, haircare or makeup..."
	ti.Prompt = "❯ "
	ti.ShowLineNumbers = false
	ti.CharLimit = 0
	ti.MaxHeight = 6
	ti.SetHeight(2)
	ti.SetWidth(80)
	ti.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#F48FB1")).Bold(true)
	ti.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#F48FB1")).Bold(true)
	ti.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ti.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#F48FB1"))

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	transcript := &view.Buffer{}
	return Model{
		TextInput:   ti,
		Viewport:    viewport.New(60, 15),
		Spinner:     sp,
		Transcript:  transcript,
		Session:     opts.NewSession(transcript),
		NewSession:  opts.NewSession,
		Logger:      logger,
		ModelName:   opts.ModelName,
		Greeting:    opts.Greeting,
		PendingText: opts.PendingText,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.TextInput.Cursor.BlinkCmd(),
		m.Spinner.Tick,
	)
}

func NewProgram(opts Options) *tea.Program {
	styles.InitTheme()
	m := InitialModel(opts)
	m.UpdateViewport()
	return tea.NewProgram(&m, tea.WithAltScreen())
}
