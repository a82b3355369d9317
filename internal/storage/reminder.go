package storage

import (
	"sync"
	"time"
)

// ReminderMessage is the last reminder delivered to a chat.
type ReminderMessage struct {
	ChatID    int64
	MessageID int
	SentAt    time.Time
}

// ReminderStorage remembers the last reminder per chat so the next one can
// replace it instead of piling up.
type ReminderStorage struct {
	mu       sync.RWMutex
	messages map[int64]ReminderMessage
	now      func() time.Time
}

func NewReminderStorage(now func() time.Time) *ReminderStorage {
	if now == nil {
		now = time.Now
	}
	return &ReminderStorage{
		messages: make(map[int64]ReminderMessage),
		now:      now,
	}
}

func (s *ReminderStorage) Get(chatID int64) (ReminderMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[chatID]
	return msg, ok
}

// Delete forgets the reminder of chatID, e.g. once the user acted on it.
func (s *ReminderStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, chatID)
}

// UpsertAndGetPrev records messageID as the reminder of chatID and returns
// the one it replaces.
func (s *ReminderStorage) UpsertAndGetPrev(chatID int64, messageID int) (prev ReminderMessage, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.messages[chatID]

	s.messages[chatID] = ReminderMessage{
		ChatID:    chatID,
		MessageID: messageID,
		SentAt:    s.now(),
	}

	return prev, hadPrev
}
