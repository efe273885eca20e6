package model

type Sender string

const (
	SenderUser      = Sender("user")
	SenderAssistant = Sender("assistant")
	// SenderError marks transcript entries that replace a failed reply. Never stored in history.
	SenderError = Sender("error")
)

type ChatMessage struct {
	Sender Sender
	Text   string
}
