package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type alertMsg struct {
	text string
}

type clearInputMsg struct{}

type modelsMsg struct {
	models   []string
	selected string
}

type transcriptMsg struct{}

type sender interface {
	Send(msg tea.Msg)
}

// Surface forwards controller callbacks into the running program as messages.
// Messages sent before Attach are dropped.
type Surface struct {
	mu     sync.RWMutex
	target sender
}

func NewSurface() *Surface {
	return &Surface{}
}

func (s *Surface) Attach(target sender) {
	s.mu.Lock()
	s.target = target
	s.mu.Unlock()
}

func (s *Surface) Alert(text string) {
	s.send(alertMsg{text: text})
}

func (s *Surface) ClearInput() {
	s.send(clearInputMsg{})
}

func (s *Surface) SetModels(models []string, selected string) {
	s.send(modelsMsg{models: models, selected: selected})
}

// Follow is the transcript follower: it asks the program to repaint and scroll down.
func (s *Surface) Follow() {
	s.send(transcriptMsg{})
}

func (s *Surface) send(msg tea.Msg) {
	s.mu.RLock()
	target := s.target
	s.mu.RUnlock()
	if target != nil {
		target.Send(msg)
	}
}
