package usecase

import "github.com/iamvkosarev/persona-chat/internal/model"

type ActionKind string

const (
	ActionSend          = ActionKind("send")
	ActionSaveSettings  = ActionKind("save_settings")
	ActionSaveCharacter = ActionKind("save_character")
	ActionFetchModels   = ActionKind("fetch_models")
	ActionSelectModel   = ActionKind("select_model")
	ActionNavigate      = ActionKind("navigate")
	ActionOpenModal     = ActionKind("open_modal")
	ActionCloseModal    = ActionKind("close_modal")
	ActionClickOverlay  = ActionKind("click_overlay")
)

// Action is one user intent. Only the fields relevant to Kind are read.
type Action struct {
	Kind      ActionKind
	Text      string
	Settings  model.ConnectionSettings
	Character model.CharacterProfile
	Model     string
	Page      model.PageID
	OnContent bool
}

func SendAction(text string) Action {
	return Action{Kind: ActionSend, Text: text}
}

func SaveSettingsAction(settings model.ConnectionSettings) Action {
	return Action{Kind: ActionSaveSettings, Settings: settings}
}

func SaveCharacterAction(character model.CharacterProfile) Action {
	return Action{Kind: ActionSaveCharacter, Character: character}
}

func FetchModelsAction(settings model.ConnectionSettings) Action {
	return Action{Kind: ActionFetchModels, Settings: settings}
}

func SelectModelAction(name string) Action {
	return Action{Kind: ActionSelectModel, Model: name}
}

func NavigateAction(page model.PageID) Action {
	return Action{Kind: ActionNavigate, Page: page}
}

func OpenModalAction() Action {
	return Action{Kind: ActionOpenModal}
}

func CloseModalAction() Action {
	return Action{Kind: ActionCloseModal}
}

func ClickOverlayAction(onContent bool) Action {
	return Action{Kind: ActionClickOverlay, OnContent: onContent}
}
