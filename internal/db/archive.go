package db

import (
	"time"

	"glowdesk/internal/models"
)

// Archive records one session's turns. The chat row is created lazily on the
// first recorded message so sessions that never pass the gate leave no trace.
type Archive struct {
	store     *Store
	sessionID string
	modelID   string
	chatID    int64
	now       func() time.Time
}

func (s *Store) NewArchive(sessionID, modelID string) *Archive {
	return &Archive{store: s, sessionID: sessionID, modelID: modelID, now: time.Now}
}

// ResumeArchive continues recording into an existing chat.
func (s *Store) ResumeArchive(sessionID, modelID string, chatID int64) *Archive {
	a := s.NewArchive(sessionID, modelID)
	a.chatID = chatID
	return a
}

func (a *Archive) ChatID() int64 { return a.chatID }

func (a *Archive) Record(msg models.Message) error {
	nowUnix := a.now().Unix()
	if a.chatID == 0 {
		id, err := a.store.CreateChat(a.sessionID, a.modelID, nowUnix)
		if err != nil {
			return err
		}
		a.chatID = id
	}
	return a.store.AddMessage(a.chatID, msg, nowUnix)
}
