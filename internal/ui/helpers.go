package ui

import (
	"fmt"
	"strings"

	"glowdesk/internal/styles"
	"glowdesk/internal/view"

	"github.com/mattn/go-runewidth"
)

func WrappedLineCount(value string, width int) int {
	if width <= 0 {
		return 1
	}
	lines := strings.Split(value, "\n")
	if len(lines) == 0 {
		return 1
	}
	count := 0
	for _, line := range lines {
		w := runewidth.StringWidth(line)
		if w == 0 {
			count++
			continue
		}
		count += (w-1)/width + 1
	}
	return count
}

// TruncateWidth cuts s to at most max terminal cells, ending with an ellipsis.
func TruncateWidth(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return runewidth.Truncate(s, max, "…")
}

func FormatUserMessage(content string, width int) string {
	label := styles.UserLabelStyle.Render("YOU")
	msgStyle := styles.UserMsgStyle
	if width > 4 {
		msgStyle = msgStyle.Width(width - 4)
	}
	return fmt.Sprintf("%s\n%s", label, msgStyle.Render(content))
}

func FormatAIMessage(content string, width int) string {
	label := styles.AiLabelStyle.Render("GLOW")
	msgStyle := styles.AiMsgStyle
	if width > 4 {
		msgStyle = msgStyle.Width(width - 4)
	}
	return fmt.Sprintf("%s\n%s", label, msgStyle.Render(content))
}

// FormatTranscript renders instructions as chat bubbles. The pending
// indicator gets the spinner frame in front of it.
func FormatTranscript(items []view.Instruction, width int, pendingText, spinnerFrame string) string {
	parts := make([]string, 0, len(items))
	for i, in := range items {
		switch in.Class {
		case view.ClassUser:
			parts = append(parts, FormatUserMessage(in.Text, width))
		default:
			text := in.Text
			if spinnerFrame != "" && i == len(items)-1 && text == pendingText {
				text = spinnerFrame + " " + text
			}
			parts = append(parts, FormatAIMessage(text, width))
		}
	}
	return strings.Join(parts, "\n\n")
}
