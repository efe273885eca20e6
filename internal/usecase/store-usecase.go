package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iamvkosarev/persona-chat/internal/model"
	"github.com/iamvkosarev/persona-chat/internal/observability"
)

const (
	SettingsRecordKey  = "aiChatSettings"
	CharacterRecordKey = "aiChatCharacter"
)

type RecordStorage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type StoreUsecaseDeps struct {
	RecordStorage RecordStorage
}

type StoreUsecase struct {
	StoreUsecaseDeps
}

func NewStoreUsecase(deps StoreUsecaseDeps) *StoreUsecase {
	return &StoreUsecase{
		StoreUsecaseDeps: deps,
	}
}

func (s *StoreUsecase) LoadSettings(ctx context.Context) (model.ConnectionSettings, bool) {
	var settings model.ConnectionSettings
	if !s.load(ctx, SettingsRecordKey, &settings) {
		return model.ConnectionSettings{}, false
	}
	return settings, true
}

func (s *StoreUsecase) SaveSettings(ctx context.Context, settings model.ConnectionSettings) error {
	return s.save(ctx, SettingsRecordKey, settings)
}

func (s *StoreUsecase) LoadCharacter(ctx context.Context) (model.CharacterProfile, bool) {
	var character model.CharacterProfile
	if !s.load(ctx, CharacterRecordKey, &character) {
		return model.CharacterProfile{}, false
	}
	return character, true
}

func (s *StoreUsecase) SaveCharacter(ctx context.Context, character model.CharacterProfile) error {
	return s.save(ctx, CharacterRecordKey, character)
}

// load reports false for a missing, unreadable or malformed record.
func (s *StoreUsecase) load(ctx context.Context, key string, v any) bool {
	log := observability.WithFields("record", key)
	raw, err := s.RecordStorage.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, model.ErrRecordDoesNotExist) {
			log.Warn("failed to read record, treating as absent", "error", err)
		}
		return false
	}
	if err = json.Unmarshal(raw, v); err != nil {
		log.Warn("malformed record, treating as absent", "error", err)
		return false
	}
	return true
}

func (s *StoreUsecase) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", key, err)
	}
	if err = s.RecordStorage.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}
