package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamvkosarev/persona-chat/config"
	"github.com/iamvkosarev/persona-chat/internal/model"
	"github.com/iamvkosarev/persona-chat/internal/observability"
	"github.com/iamvkosarev/persona-chat/pkg/local"
	"github.com/sourcegraph/conc"
)

const (
	CommandStart     = "start"
	CommandHelp      = "help"
	CommandNew       = "new"
	CommandModels    = "models"
	CommandSettings  = "settings"
	CommandCharacter = "character"

	// telegram rejects callback data longer than this
	maxCallbackDataLen = 64
	maxButtonsInRow    = 3
)

var (
	MessageUserNoAccess = local.NewSet(
		"You are not allowed to use this bot",
		local.NewTrans(local.Zh, "你无权使用此机器人"),
	)
	MessageCommandStart = local.NewSet(
		"Welcome! Use /settings <api url> <api key>, then /models to pick a model and /character to set a persona. "+
			"After that just write to chat.",
		local.NewTrans(local.Zh, "欢迎! 先用 /settings <反代地址> <密匙>, 再用 /models 选择模型, 用 /character 设定角色, 然后直接发消息即可。"),
	)
	MessageCommandHelp = local.NewSet(
		"/settings <api url> <api key> - save connection\n"+
			"/models - fetch and select a model\n"+
			"/character <name> then the prompt on the next lines - set the persona\n"+
			"/new - clear the conversation",
		local.NewTrans(
			local.Zh,
			"/settings <反代地址> <密匙> - 保存连接\n/models - 拉取并选择模型\n/character <名字> 换行后写设定 - 设定角色\n/new - 清空对话",
		),
	)
	MessageCommandUnknown = local.NewSet(
		"I don't know that command",
		local.NewTrans(local.Zh, "未知命令"),
	)
	MessageSettingsUsage = local.NewSet(
		"Usage: /settings <api url> <api key>",
		local.NewTrans(local.Zh, "用法: /settings <反代地址> <密匙>"),
	)
	MessageSelectModel = local.NewSet(
		"Select a model",
		local.NewTrans(local.Zh, "请选择模型"),
	)
	MessageSelectedModelFormat = local.NewSet(
		"Model %s selected",
		local.NewTrans(local.Zh, "已选择模型 %s"),
	)
	MessageConversationCleared = local.NewSet(
		"Conversation cleared",
		local.NewTrans(local.Zh, "对话已清空"),
	)
)

// Bot is the part of *api.BotAPI the front-end uses.
type Bot interface {
	Send(c api.Chattable) (api.Message, error)
	Request(c api.Chattable) (*api.APIResponse, error)
	GetUpdatesChan(config api.UpdateConfig) api.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramSurface renders the conversation into the owner's chat.
type TelegramSurface struct {
	bot      Bot
	chatID   int64
	language local.Language
}

func NewTelegramSurface(bot Bot, chatID int64, language local.Language) *TelegramSurface {
	return &TelegramSurface{
		bot:      bot,
		chatID:   chatID,
		language: language,
	}
}

// Render skips user entries: telegram already shows what the owner typed.
func (s *TelegramSurface) Render(text string, sender model.Sender) {
	if sender == model.SenderUser {
		return
	}
	s.sendMessageAndHandleErr(text)
}

func (s *TelegramSurface) Clear() {
	s.sendMessageAndHandleErr(MessageConversationCleared.Text(s.language))
}

func (s *TelegramSurface) Alert(text string) {
	s.sendMessageAndHandleErr(text)
}

func (s *TelegramSurface) ClearInput() {}

func (s *TelegramSurface) SetModels(models []string, selected string) {
	if len(models) == 0 {
		return
	}
	msg := api.NewMessage(s.chatID, MessageSelectModel.Text(s.language))
	inlineRows := make([][]api.InlineKeyboardButton, 0)
	inlineButtons := make([]api.InlineKeyboardButton, 0)
	for _, aiModel := range models {
		if len(aiModel) > maxCallbackDataLen {
			continue
		}
		if len(inlineButtons) == maxButtonsInRow {
			inlineRows = append(inlineRows, inlineButtons)
			inlineButtons = make([]api.InlineKeyboardButton, 0)
		}
		label := aiModel
		if aiModel == selected {
			label = "✓ " + aiModel
		}
		inlineButtons = append(inlineButtons, api.NewInlineKeyboardButtonData(label, aiModel))
	}
	if len(inlineButtons) > 0 {
		inlineRows = append(inlineRows, inlineButtons)
	}
	if len(inlineRows) == 0 {
		return
	}
	msg.ReplyMarkup = api.NewInlineKeyboardMarkup(inlineRows...)
	if _, err := s.bot.Send(msg); err != nil {
		observability.WithFields("error", err).Error("failed to send models keyboard")
	}
}

func (s *TelegramSurface) sendMessageAndHandleErr(text string) {
	if _, err := s.bot.Send(api.NewMessage(s.chatID, text)); err != nil {
		observability.WithFields("error", err).Error("failed to send message to bot")
	}
}

type TelegramUsecaseDeps struct {
	Bot          Bot
	Conversation *ConversationUsecase
}

type TelegramUsecase struct {
	TelegramUsecaseDeps
	cfg      config.Telegram
	language local.Language
}

func NewTelegramUsecase(cfg config.Telegram, language local.Language, deps TelegramUsecaseDeps) (*TelegramUsecase, error) {
	_, err := deps.Bot.Request(
		api.NewSetMyCommands(
			[]api.BotCommand{
				{
					Command:     CommandHelp,
					Description: "Get help",
				},
				{
					Command:     CommandSettings,
					Description: "Save API url and key",
				},
				{
					Command:     CommandModels,
					Description: "Fetch and select a model",
				},
				{
					Command:     CommandCharacter,
					Description: "Set the persona",
				},
				{
					Command:     CommandNew,
					Description: "Clear the conversation",
				},
			}...,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set bot commands: %w", err)
	}

	return &TelegramUsecase{
		TelegramUsecaseDeps: deps,
		cfg:                 cfg,
		language:            language,
	}, nil
}

// Run handles updates until ctx is done. Updates are handled concurrently, so a character
// change can land while a reply is still in flight.
func (t *TelegramUsecase) Run(ctx context.Context) error {
	u := api.NewUpdate(0)
	u.Timeout = 60
	updates := t.Bot.GetUpdatesChan(u)

	wg := conc.NewWaitGroup()
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			t.Bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Go(
				func() {
					t.handleUpdate(ctx, update)
				},
			)
		}
	}
}

type incomingMessage struct {
	command string
	args    string
	text    string
}

func (t *TelegramUsecase) handleUpdate(ctx context.Context, update api.Update) {
	if update.Message != nil {
		in := incomingMessage{text: update.Message.Text}
		if update.Message.IsCommand() {
			in.command = update.Message.Command()
			in.args = update.Message.CommandArguments()
		}
		if err := t.handleMessage(ctx, update.Message.Chat.ID, in); err != nil {
			observability.WithFields("error", err).Warn("error handling message")
		}
	}
	if update.CallbackQuery != nil {
		query := update.CallbackQuery
		if err := t.handleCallbackQuery(ctx, query.ID, query.From.ID, query.Data); err != nil {
			observability.WithFields("error", err).Warn("error handling callback query")
		}
	}
}

func (t *TelegramUsecase) handleMessage(ctx context.Context, chatID int64, in incomingMessage) error {
	if !t.isOwner(chatID) {
		t.sendMessageAndHandleErr(chatID, MessageUserNoAccess.Text(t.language))
		return nil
	}

	conv := t.Conversation
	switch in.command {
	case "":
	case CommandStart:
		t.sendMessageAndHandleErr(chatID, MessageCommandStart.Text(t.language))
		return nil
	case CommandHelp:
		t.sendMessageAndHandleErr(chatID, MessageCommandHelp.Text(t.language))
		return nil
	case CommandSettings:
		settings, ok := parseSettingsArgs(in.args)
		if !ok {
			t.sendMessageAndHandleErr(chatID, MessageSettingsUsage.Text(t.language))
			return nil
		}
		return conv.Dispatch(ctx, SaveSettingsAction(settings))
	case CommandModels:
		return conv.Dispatch(ctx, FetchModelsAction(conv.Snapshot().Settings))
	case CommandCharacter:
		return conv.Dispatch(ctx, SaveCharacterAction(parseCharacterArgs(in.args)))
	case CommandNew:
		return conv.Dispatch(ctx, SaveCharacterAction(conv.Snapshot().Character))
	default:
		t.sendMessageAndHandleErr(chatID, MessageCommandUnknown.Text(t.language))
		return nil
	}

	var err error
	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			if _, reqErr := t.Bot.Request(api.NewChatAction(chatID, api.ChatTyping)); reqErr != nil {
				observability.WithFields("error", reqErr).Warn("failed to send typing action")
			}
		},
	)
	wg.Go(
		func() {
			err = conv.Dispatch(ctx, SendAction(in.text))
		},
	)
	wg.Wait()

	if errors.Is(err, ErrReplyDiscarded) {
		return nil
	}
	return err
}

func (t *TelegramUsecase) handleCallbackQuery(ctx context.Context, queryID string, fromID int64, data string) error {
	if _, err := t.Bot.Request(api.NewCallback(queryID, "")); err != nil {
		return fmt.Errorf("failed to request callback: %w", err)
	}
	if !t.isOwner(fromID) {
		return nil
	}
	if err := t.Conversation.Dispatch(ctx, SelectModelAction(data)); err != nil {
		return fmt.Errorf("failed to select model: %w", err)
	}
	t.sendMessageAndHandleErr(fromID, MessageSelectedModelFormat.Format(t.language, data))
	return nil
}

func (t *TelegramUsecase) isOwner(chatID int64) bool {
	return chatID == t.cfg.OwnerTelegramID
}

func (t *TelegramUsecase) sendMessageAndHandleErr(chatID int64, message string) {
	if _, err := t.Bot.Send(api.NewMessage(chatID, message)); err != nil {
		observability.WithFields("error", err).Error("failed to send new message to bot")
	}
}

func parseSettingsArgs(args string) (model.ConnectionSettings, bool) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return model.ConnectionSettings{}, false
	}
	return model.ConnectionSettings{APIURL: fields[0], APIKey: fields[1]}, true
}

// parseCharacterArgs reads "name\nprompt". A single line is taken as the prompt.
func parseCharacterArgs(args string) model.CharacterProfile {
	name, prompt, found := strings.Cut(strings.TrimSpace(args), "\n")
	if !found {
		return model.CharacterProfile{Prompt: name}.Trimmed()
	}
	return model.CharacterProfile{Name: name, Prompt: prompt}.Trimmed()
}
