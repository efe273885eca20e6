package model

type PageID string

const (
	PageChat     = PageID("chat-page")
	PageSettings = PageID("settings-page")
)

var Pages = []PageID{PageChat, PageSettings}
