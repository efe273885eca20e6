package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamvkosarev/persona-chat/config"
	"github.com/iamvkosarev/persona-chat/internal/observability"
	in_memory "github.com/iamvkosarev/persona-chat/internal/storage/in-memory"
	key_value "github.com/iamvkosarev/persona-chat/internal/storage/key-value"
	"github.com/iamvkosarev/persona-chat/internal/storage/sqlite"
	"github.com/iamvkosarev/persona-chat/internal/tui"
	"github.com/iamvkosarev/persona-chat/internal/usecase"
	"github.com/iamvkosarev/persona-chat/pkg/local"
	"github.com/redis/go-redis/v9"
)

func Run(ctx context.Context, cfg *config.Config) error {
	logCloser, err := observability.Setup(cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	recordStorage, storageCloser, err := newRecordStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer storageCloser.Close()
	observability.WithFields("backend", cfg.Storage.Backend).Info("storage ready")

	language := local.ParseLanguage(cfg.App.Language)
	openAIUsecase := usecase.NewOpenAIUsecase(&http.Client{})
	storeUsecase := usecase.NewStoreUsecase(
		usecase.StoreUsecaseDeps{
			RecordStorage: recordStorage,
		},
	)
	deps := usecase.ConversationUsecaseDeps{
		Store:  storeUsecase,
		OpenAI: openAIUsecase,
		Tokens: openAIUsecase,
		View:   usecase.NewViewUsecase(),
	}

	if cfg.App.Frontend == config.FrontendTelegram {
		return runTelegram(ctx, cfg.Telegram, language, deps)
	}
	return runTUI(ctx, language, deps)
}

func runTUI(ctx context.Context, language local.Language, deps usecase.ConversationUsecaseDeps) error {
	transcript := usecase.NewTranscript()
	surface := tui.NewSurface()
	deps.Renderer = transcript
	deps.Surface = surface

	conversationUsecase := usecase.NewConversationUsecase(deps, language)
	conversationUsecase.LoadSession(ctx)

	return tui.Run(
		ctx, tui.Deps{
			Conversation: conversationUsecase,
			Navigation:   deps.View,
			Transcript:   transcript,
			Surface:      surface,
		}, language,
	)
}

func runTelegram(
	ctx context.Context,
	cfg config.Telegram,
	language local.Language,
	deps usecase.ConversationUsecaseDeps,
) error {
	bot, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return fmt.Errorf("failed to create new bot: %w", err)
	}
	observability.WithFields("account", bot.Self.UserName).Info("authorized on account")

	surface := usecase.NewTelegramSurface(bot, cfg.OwnerTelegramID, language)
	deps.Renderer = surface
	deps.Surface = surface

	conversationUsecase := usecase.NewConversationUsecase(deps, language)
	conversationUsecase.LoadSession(ctx)

	telegramUsecase, err := usecase.NewTelegramUsecase(
		cfg, language, usecase.TelegramUsecaseDeps{
			Bot:          bot,
			Conversation: conversationUsecase,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create telegram usecase: %w", err)
	}
	return telegramUsecase.Run(ctx)
}

func newRecordStorage(ctx context.Context, cfg config.Storage) (usecase.RecordStorage, io.Closer, error) {
	switch cfg.Backend {
	case config.StorageRedis:
		rdb := redis.NewClient(
			&redis.Options{
				Addr: cfg.RedisEndpoint,
			},
		)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisEndpoint, err)
		}
		return key_value.NewRecordStorage(rdb), rdb, nil
	case config.StorageMemory:
		return in_memory.NewRecordStorage(), io.NopCloser(nil), nil
	default:
		recordStorage, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return recordStorage, recordStorage, nil
	}
}
