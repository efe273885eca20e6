package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/iamvkosarev/persona-chat/internal/model"
	in_memory "github.com/iamvkosarev/persona-chat/internal/storage/in-memory"
	"github.com/iamvkosarev/persona-chat/pkg/local"
)

type fakeSurface struct {
	mu           sync.Mutex
	alerts       []string
	inputCleared int
	models       []string
	selected     string
}

func (f *fakeSurface) Alert(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, text)
}

func (f *fakeSurface) ClearInput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputCleared++
}

func (f *fakeSurface) SetModels(models []string, selected string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models = models
	f.selected = selected
}

func (f *fakeSurface) lastAlert() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.alerts) == 0 {
		return ""
	}
	return f.alerts[len(f.alerts)-1]
}

type fakeChatAPI struct {
	mu        sync.Mutex
	models    []string
	listErr   error
	reply     string
	chatErr   error
	requests  []ChatRequest
	listCalls int

	// when set, ChatCompletion signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (f *fakeChatAPI) ListModels(_ context.Context, _ model.ConnectionSettings) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.models, f.listErr
}

func (f *fakeChatAPI) ChatCompletion(ctx context.Context, req ChatRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.chatErr
}

func (f *fakeChatAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type failingStorage struct{}

func (failingStorage) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingStorage) Set(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

type testConversation struct {
	conv       *ConversationUsecase
	api        *fakeChatAPI
	surface    *fakeSurface
	transcript *Transcript
	view       *ViewUsecase
	storage    RecordStorage
}

func newTestConversation(api ChatAPI, storage RecordStorage) *testConversation {
	if storage == nil {
		storage = in_memory.NewRecordStorage()
	}
	fake, _ := api.(*fakeChatAPI)
	tc := &testConversation{
		api:        fake,
		surface:    &fakeSurface{},
		transcript: NewTranscript(),
		view:       NewViewUsecase(),
		storage:    storage,
	}
	tc.conv = NewConversationUsecase(
		ConversationUsecaseDeps{
			Store:    NewStoreUsecase(StoreUsecaseDeps{RecordStorage: storage}),
			OpenAI:   api,
			View:     tc.view,
			Renderer: tc.transcript,
			Surface:  tc.surface,
		}, local.Eng,
	)
	return tc
}

var (
	testSettings  = model.ConnectionSettings{APIURL: "https://x/v1", APIKey: "k"}
	testCharacter = model.CharacterProfile{Name: "Bob", Prompt: "You are Bob"}
)

// ready saves settings and character and selects the first fetched model.
func (tc *testConversation) ready(ctx context.Context) error {
	if err := tc.conv.Dispatch(ctx, SaveSettingsAction(testSettings)); err != nil {
		return err
	}
	if err := tc.conv.Dispatch(ctx, SaveCharacterAction(testCharacter)); err != nil {
		return err
	}
	return tc.conv.Dispatch(ctx, FetchModelsAction(testSettings))
}
