package conversation

import "glowdesk/internal/models"

// TransmissionWindow selects what is sent to the model. With tracking on the
// whole history goes out. With tracking off only the system message and the
// latest message are sent; callers append the user turn first, so the latest
// message is that turn. A history holding only the system message yields it
// twice.
func TransmissionWindow(history []models.Message, tracking bool) []models.Message {
	if len(history) == 0 {
		return nil
	}
	if tracking {
		return append([]models.Message(nil), history...)
	}
	return []models.Message{history[0], history[len(history)-1]}
}

// DisplayWindow selects what is rendered. With showAll every message after a
// leading system message is returned. Otherwise the latest user message and
// the latest assistant message are returned, user first.
func DisplayWindow(history []models.Message, showAll bool) []models.Message {
	if showAll {
		start := 0
		if len(history) > 0 && history[0].Role == models.RoleSystem {
			start = 1
		}
		return append([]models.Message{}, history[start:]...)
	}

	var lastUser, lastAI *models.Message
	for i := len(history) - 1; i >= 0; i-- {
		if lastAI == nil && history[i].Role == models.RoleAssistant {
			lastAI = &history[i]
		}
		if lastUser == nil && history[i].Role == models.RoleUser {
			lastUser = &history[i]
		}
		if lastUser != nil && lastAI != nil {
			break
		}
	}

	out := make([]models.Message, 0, 2)
	if lastUser != nil {
		out = append(out, *lastUser)
	}
	if lastAI != nil {
		out = append(out, *lastAI)
	}
	return out
}
