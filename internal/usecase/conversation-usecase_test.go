package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/iamvkosarev/persona-chat/internal/model"
	in_memory "github.com/iamvkosarev/persona-chat/internal/storage/in-memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendWithoutModelNeverCallsAPI(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{reply: "hello"}, nil)
	require.NoError(t, tc.conv.Dispatch(ctx, SaveSettingsAction(testSettings)))
	require.NoError(t, tc.conv.Dispatch(ctx, SaveCharacterAction(testCharacter)))

	err := tc.conv.Dispatch(ctx, SendAction("hi"))

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, TextSendMissingConfig.Default, tc.surface.lastAlert())
	assert.Zero(t, tc.api.requestCount())
	assert.Empty(t, tc.conv.Snapshot().History)
	assert.Zero(t, tc.transcript.Len())
	assert.Zero(t, tc.surface.inputCleared)
}

func TestSendWithoutCharacterPrompt(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{models: []string{"gpt-x"}, reply: "hello"}, nil)
	require.NoError(t, tc.conv.Dispatch(ctx, SaveSettingsAction(testSettings)))
	require.NoError(t, tc.conv.Dispatch(ctx, FetchModelsAction(testSettings)))

	err := tc.conv.Dispatch(ctx, SendAction("hi"))

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, TextSendMissingCharacter.Default, tc.surface.lastAlert())
	assert.Zero(t, tc.api.requestCount())
}

func TestSendBlankInputIsIgnored(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{models: []string{"gpt-x"}}, nil)
	require.NoError(t, tc.ready(ctx))
	alerts := len(tc.surface.alerts)

	require.NoError(t, tc.conv.Dispatch(ctx, SendAction("   ")))

	assert.Zero(t, tc.api.requestCount())
	assert.Len(t, tc.surface.alerts, alerts)
	assert.Zero(t, tc.transcript.Len())
}

func TestSendRendersAndAppendsHistory(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{models: []string{"gpt-x", "llama-3"}, reply: "hello there"}, nil)
	require.NoError(t, tc.ready(ctx))

	require.NoError(t, tc.conv.Dispatch(ctx, SendAction("  hi  ")))
	require.NoError(t, tc.conv.Dispatch(ctx, SendAction("how are you")))

	assert.Equal(
		t, []TranscriptEntry{
			{Sender: model.SenderUser, Text: "hi"},
			{Sender: model.SenderAssistant, Text: "hello there"},
			{Sender: model.SenderUser, Text: "how are you"},
			{Sender: model.SenderAssistant, Text: "hello there"},
		}, tc.transcript.Entries(),
	)
	assert.Equal(
		t, []model.ChatMessage{
			{Sender: model.SenderUser, Text: "hi"},
			{Sender: model.SenderAssistant, Text: "hello there"},
			{Sender: model.SenderUser, Text: "how are you"},
			{Sender: model.SenderAssistant, Text: "hello there"},
		}, tc.conv.Snapshot().History,
	)
	assert.Equal(t, 2, tc.surface.inputCleared)

	require.Len(t, tc.api.requests, 2)
	second := tc.api.requests[1]
	assert.Equal(t, "gpt-x", second.Model)
	assert.Equal(t, "You are Bob", second.SystemPrompt)
	assert.Len(t, second.History, 2)
	assert.Equal(t, "how are you", second.Message)
}

func TestSendPostsExactMessages(t *testing.T) {
	ctx := context.Background()
	srv := newFakeOpenAIServer(t, http.StatusOK, modelsBody)
	tc := newTestConversation(NewOpenAIUsecase(srv.Client()), nil)
	settings := model.ConnectionSettings{APIURL: srv.URL + "/v1", APIKey: "k"}
	require.NoError(t, tc.conv.Dispatch(ctx, SaveSettingsAction(settings)))
	require.NoError(t, tc.conv.Dispatch(ctx, SaveCharacterAction(testCharacter)))
	require.NoError(t, tc.conv.Dispatch(ctx, FetchModelsAction(settings)))
	require.Equal(t, "gpt-x", tc.conv.Snapshot().SelectedModel)

	tc.conv.session.History = []model.ChatMessage{{Sender: model.SenderUser, Text: "hi"}}
	// the server answers with the models body, which carries no choices; only the request matters here
	_ = tc.conv.Dispatch(ctx, SendAction("how are you"))

	requests := srv.recorded()
	require.Len(t, requests, 2)
	var body struct {
		Model    string              `json:"model"`
		Messages []map[string]string `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(requests[1].Body, &body))
	assert.Equal(t, "/v1/chat/completions", requests[1].Path)
	assert.Equal(t, "gpt-x", body.Model)
	assert.Equal(
		t, []map[string]string{
			{"role": "system", "content": "You are Bob"},
			{"role": "user", "content": "hi"},
			{"role": "user", "content": "how are you"},
		}, body.Messages,
	)
}

func TestSendUnauthorizedRendersErrorWithoutHistory(t *testing.T) {
	ctx := context.Background()
	srv := newFakeOpenAIServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)
	tc := newTestConversation(NewOpenAIUsecase(srv.Client()), nil)
	settings := model.ConnectionSettings{APIURL: srv.URL, APIKey: "k"}
	require.NoError(t, tc.conv.Dispatch(ctx, SaveSettingsAction(settings)))
	require.NoError(t, tc.conv.Dispatch(ctx, SaveCharacterAction(testCharacter)))
	tc.conv.session.Models = []string{"gpt-x"}
	tc.conv.session.SelectedModel = "gpt-x"
	tc.conv.session.History = []model.ChatMessage{
		{Sender: model.SenderUser, Text: "hi"},
		{Sender: model.SenderAssistant, Text: "hello"},
	}

	err := tc.conv.Dispatch(ctx, SendAction("how are you"))

	var apiErr *model.ApiError
	require.ErrorAs(t, err, &apiErr)
	entries := tc.transcript.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, model.SenderUser, entries[0].Sender)
	assert.Equal(t, model.SenderError, entries[1].Sender)
	assert.Contains(t, entries[1].Text, "bad key")
	assert.Len(t, tc.conv.Snapshot().History, 2)
}

func TestSaveCharacterClearsConversation(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{models: []string{"gpt-x"}, reply: "hello"}, nil)
	require.NoError(t, tc.ready(ctx))
	require.NoError(t, tc.conv.Dispatch(ctx, SendAction("hi")))
	require.NotEmpty(t, tc.conv.Snapshot().History)
	epoch := tc.conv.Snapshot().CharacterEpoch
	require.NoError(t, tc.conv.Dispatch(ctx, OpenModalAction()))

	alice := model.CharacterProfile{Name: " Alice ", Prompt: " You are Alice "}
	require.NoError(t, tc.conv.Dispatch(ctx, SaveCharacterAction(alice)))

	session := tc.conv.Snapshot()
	assert.Empty(t, session.History)
	assert.NotEqual(t, epoch, session.CharacterEpoch)
	assert.Equal(t, model.CharacterProfile{Name: "Alice", Prompt: "You are Alice"}, session.Character)
	assert.Zero(t, tc.transcript.Len())
	assert.False(t, tc.view.ModalOpen())
	assert.Equal(t, TextCharacterSaved.Default, tc.surface.lastAlert())

	stored, ok := tc.conv.Store.LoadCharacter(ctx)
	require.True(t, ok)
	assert.Equal(t, "You are Alice", stored.Prompt)
}

func TestSaveCharacterClearsEvenWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{}, failingStorage{})
	tc.conv.session.History = []model.ChatMessage{{Sender: model.SenderUser, Text: "hi"}}
	tc.transcript.Render("hi", model.SenderUser)

	err := tc.conv.Dispatch(ctx, SaveCharacterAction(testCharacter))

	require.ErrorContains(t, err, "disk on fire")
	assert.Empty(t, tc.conv.Snapshot().History)
	assert.Zero(t, tc.transcript.Len())
}

func TestReplyDiscardedAfterCharacterChange(t *testing.T) {
	ctx := context.Background()
	api := &fakeChatAPI{models: []string{"gpt-x"}, reply: "late reply"}
	tc := newTestConversation(api, nil)
	require.NoError(t, tc.ready(ctx))

	api.mu.Lock()
	api.started = make(chan struct{})
	api.release = make(chan struct{})
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- tc.conv.Dispatch(ctx, SendAction("hi"))
	}()

	select {
	case <-api.started:
	case <-time.After(5 * time.Second):
		t.Fatal("chat completion was not called")
	}
	require.NoError(t, tc.conv.Dispatch(ctx, SaveCharacterAction(model.CharacterProfile{Prompt: "You are Alice"})))
	close(api.release)

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrReplyDiscarded)
	case <-time.After(5 * time.Second):
		t.Fatal("send did not finish")
	}
	assert.Empty(t, tc.conv.Snapshot().History)
	assert.Zero(t, tc.transcript.Len())
}

func TestSaveSettingsSurvivesReload(t *testing.T) {
	ctx := context.Background()
	storage := in_memory.NewRecordStorage()
	tc := newTestConversation(&fakeChatAPI{}, storage)

	require.NoError(t, tc.conv.Dispatch(ctx, SaveSettingsAction(model.ConnectionSettings{APIURL: " https://x/v1 ", APIKey: " k "})))
	require.NoError(t, tc.conv.Dispatch(ctx, SaveCharacterAction(testCharacter)))
	assert.Equal(t, TextCharacterSaved.Default, tc.surface.lastAlert())

	reloaded := newTestConversation(&fakeChatAPI{}, storage)
	reloaded.conv.LoadSession(ctx)

	session := reloaded.conv.Snapshot()
	assert.Equal(t, testSettings, session.Settings)
	assert.Equal(t, testCharacter, session.Character)
	assert.Empty(t, session.History)
	assert.Empty(t, session.SelectedModel)
}

func TestSaveSettingsRejectsPartial(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{}, nil)
	require.NoError(t, tc.conv.Dispatch(ctx, SaveSettingsAction(testSettings)))

	err := tc.conv.Dispatch(ctx, SaveSettingsAction(model.ConnectionSettings{APIURL: "https://y/v1"}))

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, testSettings, tc.conv.Snapshot().Settings)
	stored, ok := tc.conv.Store.LoadSettings(ctx)
	require.True(t, ok)
	assert.Equal(t, testSettings, stored)
}

func TestFetchModels(t *testing.T) {
	ctx := context.Background()
	api := &fakeChatAPI{models: []string{"gpt-x", "llama-3"}}
	tc := newTestConversation(api, nil)

	require.NoError(t, tc.conv.Dispatch(ctx, FetchModelsAction(testSettings)))
	require.NoError(t, tc.conv.Dispatch(ctx, SelectModelAction("llama-3")))
	assert.Equal(t, "llama-3", tc.conv.Snapshot().SelectedModel)
	assert.Equal(t, []string{"gpt-x", "llama-3"}, tc.surface.models)
	assert.Equal(t, TextModelsFetched.Default, tc.surface.lastAlert())

	api.models = []string{"mistral"}
	require.NoError(t, tc.conv.Dispatch(ctx, FetchModelsAction(testSettings)))
	session := tc.conv.Snapshot()
	assert.Equal(t, []string{"mistral"}, session.Models)
	assert.Equal(t, "mistral", session.SelectedModel)
}

func TestFetchModelsFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	api := &fakeChatAPI{models: []string{"gpt-x"}}
	tc := newTestConversation(api, nil)
	require.NoError(t, tc.conv.Dispatch(ctx, FetchModelsAction(testSettings)))

	api.listErr = &model.HttpError{Status: http.StatusInternalServerError}
	err := tc.conv.Dispatch(ctx, FetchModelsAction(testSettings))

	var httpErr *model.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, []string{"gpt-x"}, tc.conv.Snapshot().Models)
	assert.Equal(t, "gpt-x", tc.conv.Snapshot().SelectedModel)
	assert.Contains(t, tc.surface.lastAlert(), "500")
}

func TestFetchModelsRequiresConnection(t *testing.T) {
	ctx := context.Background()
	api := &fakeChatAPI{models: []string{"gpt-x"}}
	tc := newTestConversation(api, nil)

	err := tc.conv.Dispatch(ctx, FetchModelsAction(model.ConnectionSettings{APIURL: "https://x/v1"}))

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, api.listCalls)
	assert.Equal(t, TextFetchMissingConnection.Default, tc.surface.lastAlert())
}

func TestSelectUnknownModel(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{models: []string{"gpt-x"}}, nil)
	require.NoError(t, tc.conv.Dispatch(ctx, FetchModelsAction(testSettings)))

	err := tc.conv.Dispatch(ctx, SelectModelAction("claude"))

	require.ErrorIs(t, err, model.ErrUnknownModel)
	assert.Equal(t, "gpt-x", tc.conv.Snapshot().SelectedModel)
}

func TestViewActions(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{}, nil)

	require.NoError(t, tc.conv.Dispatch(ctx, NavigateAction(model.PageSettings)))
	assert.Equal(t, model.PageSettings, tc.view.ActivePage())
	require.ErrorIs(t, tc.conv.Dispatch(ctx, NavigateAction("nowhere")), model.ErrUnknownPage)

	require.NoError(t, tc.conv.Dispatch(ctx, OpenModalAction()))
	require.NoError(t, tc.conv.Dispatch(ctx, ClickOverlayAction(true)))
	assert.True(t, tc.view.ModalOpen())
	require.NoError(t, tc.conv.Dispatch(ctx, ClickOverlayAction(false)))
	assert.False(t, tc.view.ModalOpen())

	require.ErrorIs(t, tc.conv.Dispatch(ctx, Action{Kind: "dance"}), ErrUnknownAction)
}

type fakeTokenCounter struct{ tokens int }

func (f fakeTokenCounter) CountPromptTokens(ChatRequest) (int, error) {
	return f.tokens, nil
}

func TestSendRecordsPromptTokens(t *testing.T) {
	ctx := context.Background()
	tc := newTestConversation(&fakeChatAPI{models: []string{"gpt-x"}, reply: "hello"}, nil)
	tc.conv.Tokens = fakeTokenCounter{tokens: 42}
	require.NoError(t, tc.ready(ctx))

	require.NoError(t, tc.conv.Dispatch(ctx, SendAction("hi")))
	assert.Equal(t, 42, tc.conv.Snapshot().PromptTokens)
}
