package usecase

import (
	"sync"

	"github.com/iamvkosarev/persona-chat/internal/model"
)

// Renderer shows conversation entries to the user. It never touches history.
type Renderer interface {
	Render(text string, sender model.Sender)
	Clear()
}

type TranscriptEntry struct {
	Sender model.Sender
	Text   string
}

// Transcript is the rendered list of chat bubbles. follow runs after every change so the
// front-end can repaint and scroll to the newest entry.
type Transcript struct {
	mu      sync.RWMutex
	entries []TranscriptEntry
	follow  func()
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) SetFollower(follow func()) {
	t.mu.Lock()
	t.follow = follow
	t.mu.Unlock()
}

func (t *Transcript) Render(text string, sender model.Sender) {
	t.mu.Lock()
	t.entries = append(t.entries, TranscriptEntry{Sender: sender, Text: text})
	follow := t.follow
	t.mu.Unlock()
	if follow != nil {
		follow()
	}
}

func (t *Transcript) Clear() {
	t.mu.Lock()
	t.entries = nil
	follow := t.follow
	t.mu.Unlock()
	if follow != nil {
		follow()
	}
}

func (t *Transcript) Entries() []TranscriptEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entries := make([]TranscriptEntry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
