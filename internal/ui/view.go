package ui

import (
	"fmt"
	"strings"

	"glowdesk/internal/styles"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) RenderShortcutsModal() string {
	title := styles.ModalTitleStyle.Render("Keyboard Shortcuts")

	body := ShortcutsMarkdown
	if m.Renderer != nil {
		if rendered, err := m.Renderer.Render(ShortcutsMarkdown); err == nil {
			body = strings.TrimSpace(rendered)
		}
	}

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Esc/Enter: close")

	return lipgloss.JoinVertical(lipgloss.Left, title, body, hint)
}

func (m *Model) RenderBottomBar() string {
	contextLabel, historyLabel := m.Session.Labels()
	state := m.Session.State()
	toggles := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.ToggleBadge(contextLabel, state.ContextTrackingEnabled()),
		" ",
		styles.ToggleBadge(historyLabel, state.ShowHistoryEnabled()),
	)

	model := lipgloss.NewStyle().
		Foreground(styles.CurrentTheme.Primary).
		Render(TruncateWidth(m.ModelName, 25))

	usage := m.Session.Usage()
	tokens := lipgloss.NewStyle().
		Foreground(styles.CurrentTheme.TextMuted).
		Render(fmt.Sprintf("In:%d Out:%d", usage.PromptTokens, usage.CompletionTokens))

	help := lipgloss.NewStyle().
		Foreground(styles.CurrentTheme.TextMuted).
		Render("Help: ^S")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, toggles, "  ", model)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Center, tokens, "  ", help)

	availableWidth := m.WindowWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide) - 2
	if availableWidth < 0 {
		availableWidth = 0
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Center, leftSide, strings.Repeat(" ", availableWidth), rightSide)

	return lipgloss.NewStyle().
		Width(m.WindowWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.CurrentTheme.Border).
		Padding(0, 1).
		Render(bar)
}

func GetGreetingScreen(greeting string, width, height int) string {
	styledGreeting := styles.GreetingStyle.Render(greeting)
	subtitle := styles.GreetingSubtitleStyle.Render("Ask about skincare, haircare, makeup and routines.")
	content := lipgloss.JoinVertical(lipgloss.Center, styledGreeting, "", subtitle)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) UpdateViewport() {
	items := m.Transcript.Items()
	if len(items) == 0 {
		m.Viewport.SetContent(GetGreetingScreen(m.Greeting, m.Viewport.Width, m.Viewport.Height))
		return
	}

	frame := ""
	if m.Loading {
		frame = m.Spinner.View()
	}
	content := FormatTranscript(items, m.Viewport.Width, m.PendingText, frame)
	if m.Err != nil {
		content += "\n\n" + styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	}
	m.Viewport.SetContent(content)
	m.Viewport.GotoBottom()
}

func (m *Model) View() string {
	inputWidth := m.WindowWidth - 4
	inputBox := styles.InputBoxStyle.Width(inputWidth).Render(m.TextInput.View())

	chatContent := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("GLOWDESK"),
		"",
		m.Viewport.View(),
		"",
		inputBox,
	)
	chatArea := lipgloss.PlaceHorizontal(m.WindowWidth, lipgloss.Center, chatContent)
	content := lipgloss.JoinVertical(lipgloss.Left, chatArea, m.RenderBottomBar())

	if m.ShortcutsOpen {
		modal := styles.ModalStyle.Width(ModalWidth).Render(m.RenderShortcutsModal())
		return lipgloss.Place(
			m.WindowWidth,
			m.WindowHeight,
			lipgloss.Center,
			lipgloss.Center,
			modal,
		)
	}

	return content
}
