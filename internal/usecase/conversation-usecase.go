package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/iamvkosarev/persona-chat/internal/model"
	"github.com/iamvkosarev/persona-chat/internal/observability"
	"github.com/iamvkosarev/persona-chat/pkg/local"
)

var (
	ErrReplyDiscarded = errors.New("character changed while the reply was in flight")
	ErrUnknownAction  = errors.New("unknown action")
)

type ChatAPI interface {
	ListModels(ctx context.Context, settings model.ConnectionSettings) ([]string, error)
	ChatCompletion(ctx context.Context, req ChatRequest) (string, error)
}

type TokenCounter interface {
	CountPromptTokens(req ChatRequest) (int, error)
}

// Surface is everything the controller needs from a front-end besides the transcript.
type Surface interface {
	Alert(text string)
	ClearInput()
	SetModels(models []string, selected string)
}

// Session is the whole mutable state of one conversation.
type Session struct {
	Settings       model.ConnectionSettings
	Character      model.CharacterProfile
	CharacterEpoch uuid.UUID
	History        []model.ChatMessage
	Models         []string
	SelectedModel  string
	PromptTokens   int
}

type ConversationUsecaseDeps struct {
	Store    *StoreUsecase
	OpenAI   ChatAPI
	Tokens   TokenCounter
	View     *ViewUsecase
	Renderer Renderer
	Surface  Surface
}

type ConversationUsecase struct {
	ConversationUsecaseDeps
	language local.Language

	mu      sync.Mutex
	session Session

	// commitMu orders reply commits against character changes.
	commitMu sync.Mutex
}

func NewConversationUsecase(deps ConversationUsecaseDeps, language local.Language) *ConversationUsecase {
	return &ConversationUsecase{
		ConversationUsecaseDeps: deps,
		language:                language,
		session: Session{
			CharacterEpoch: uuid.New(),
		},
	}
}

// LoadSession restores persisted settings and character. Missing records leave defaults.
func (c *ConversationUsecase) LoadSession(ctx context.Context) {
	settings, settingsOK := c.Store.LoadSettings(ctx)
	character, characterOK := c.Store.LoadCharacter(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if settingsOK {
		c.session.Settings = settings
	}
	if characterOK {
		c.session.Character = character
	}
	observability.WithFields("settings", settingsOK, "character", characterOK).Info("session loaded")
}

func (c *ConversationUsecase) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *ConversationUsecase) Dispatch(ctx context.Context, action Action) error {
	switch action.Kind {
	case ActionSend:
		return c.send(ctx, action.Text)
	case ActionSaveSettings:
		return c.saveSettings(ctx, action.Settings)
	case ActionSaveCharacter:
		return c.saveCharacter(ctx, action.Character)
	case ActionFetchModels:
		return c.fetchModels(ctx, action.Settings)
	case ActionSelectModel:
		return c.selectModel(action.Model)
	case ActionNavigate:
		return c.View.SwitchPage(action.Page)
	case ActionOpenModal:
		c.View.OpenModal()
		return nil
	case ActionCloseModal:
		c.View.CloseModal()
		return nil
	case ActionClickOverlay:
		c.View.ClickOverlay(action.OnContent)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action.Kind)
	}
}

func (c *ConversationUsecase) send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	session := c.Snapshot()
	if !session.Settings.Complete() || session.SelectedModel == "" {
		return c.reject(TextSendMissingConfig.Text(c.language))
	}
	if session.Character.Prompt == "" {
		return c.reject(TextSendMissingCharacter.Text(c.language))
	}

	c.Renderer.Render(text, model.SenderUser)
	c.Surface.ClearInput()

	req := ChatRequest{
		Settings:     session.Settings,
		Model:        session.SelectedModel,
		SystemPrompt: session.Character.Prompt,
		History:      session.History,
		Message:      text,
	}
	log := observability.WithFields(
		"model", req.Model,
		"history_len", len(req.History),
		"epoch", session.CharacterEpoch,
	)
	c.countTokens(req, log)

	log.Info("sending chat completion")
	reply, err := c.OpenAI.ChatCompletion(ctx, req)

	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	if c.Snapshot().CharacterEpoch != session.CharacterEpoch {
		log.Info("character changed before the reply arrived, discarding it", "error", err)
		return ErrReplyDiscarded
	}
	if err != nil {
		log.Error("chat completion failed", "error", err)
		c.Renderer.Render(TextChatFailed.Format(c.language, err.Error()), model.SenderError)
		return err
	}

	c.Renderer.Render(reply, model.SenderAssistant)
	c.mu.Lock()
	c.session.History = append(
		c.session.History,
		model.ChatMessage{Sender: model.SenderUser, Text: text},
		model.ChatMessage{Sender: model.SenderAssistant, Text: reply},
	)
	c.mu.Unlock()
	log.Info("chat completion done")
	return nil
}

func (c *ConversationUsecase) countTokens(req ChatRequest, log *slog.Logger) {
	if c.Tokens == nil {
		return
	}
	tokens, err := c.Tokens.CountPromptTokens(req)
	if err != nil {
		log.Debug("failed to count prompt tokens", "error", err)
		return
	}
	c.mu.Lock()
	c.session.PromptTokens = tokens
	c.mu.Unlock()
	log.Debug("prompt tokens counted", "prompt_tokens", tokens)
}

func (c *ConversationUsecase) saveSettings(ctx context.Context, settings model.ConnectionSettings) error {
	settings = settings.Trimmed()
	if !settings.Complete() {
		return c.reject(TextSettingsIncomplete.Text(c.language))
	}
	if err := c.Store.SaveSettings(ctx, settings); err != nil {
		c.Surface.Alert(TextSaveFailed.Format(c.language, err.Error()))
		return fmt.Errorf("failed to save settings: %w", err)
	}
	c.mu.Lock()
	c.session.Settings = settings
	c.mu.Unlock()
	c.Surface.Alert(TextSettingsSaved.Text(c.language))
	return nil
}

// saveCharacter always replaces the in-memory character and clears the conversation, even when
// persisting fails.
func (c *ConversationUsecase) saveCharacter(ctx context.Context, character model.CharacterProfile) error {
	character = character.Trimmed()
	saveErr := c.Store.SaveCharacter(ctx, character)

	c.View.CloseModal()

	c.commitMu.Lock()
	c.mu.Lock()
	c.session.Character = character
	c.session.CharacterEpoch = uuid.New()
	c.session.History = nil
	c.session.PromptTokens = 0
	c.mu.Unlock()
	c.Renderer.Clear()
	c.commitMu.Unlock()

	if saveErr != nil {
		c.Surface.Alert(TextSaveFailed.Format(c.language, saveErr.Error()))
		return fmt.Errorf("failed to save character: %w", saveErr)
	}
	c.Surface.Alert(TextCharacterSaved.Text(c.language))
	return nil
}

func (c *ConversationUsecase) fetchModels(ctx context.Context, settings model.ConnectionSettings) error {
	settings = settings.Trimmed()
	if !settings.Complete() {
		return c.reject(TextFetchMissingConnection.Text(c.language))
	}

	models, err := c.OpenAI.ListModels(ctx, settings)
	if err != nil {
		observability.WithFields("error", err).Error("failed to fetch models")
		c.Surface.Alert(TextModelsFetchFailed.Format(c.language, err.Error()))
		return err
	}

	var selected string
	if len(models) > 0 {
		selected = models[0]
	}
	c.mu.Lock()
	c.session.Models = models
	c.session.SelectedModel = selected
	c.mu.Unlock()

	c.Surface.SetModels(slices.Clone(models), selected)
	c.Surface.Alert(TextModelsFetched.Text(c.language))
	return nil
}

func (c *ConversationUsecase) selectModel(name string) error {
	c.mu.Lock()
	if !slices.Contains(c.session.Models, name) {
		c.mu.Unlock()
		c.Surface.Alert(TextUnknownModel.Format(c.language, name))
		return fmt.Errorf("%w: %s", model.ErrUnknownModel, name)
	}
	c.session.SelectedModel = name
	c.mu.Unlock()
	return nil
}

func (c *ConversationUsecase) reject(message string) error {
	c.Surface.Alert(message)
	return &model.ValidationError{Message: message}
}

func (c *ConversationUsecase) snapshotLocked() Session {
	session := c.session
	session.History = slices.Clone(c.session.History)
	session.Models = slices.Clone(c.session.Models)
	return session
}
