package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/iamvkosarev/persona-chat/internal/model"
	openai_tools "github.com/iamvkosarev/persona-chat/pkg/openai-tools"
	"github.com/sashabaranov/go-openai"
)

const (
	OpenAIRoleSystem    = "system"
	OpenAIRoleUser      = "user"
	OpenAIRoleAssistant = "assistant"
	OpenAIRoleUnknown   = "unknown"
)

var (
	errMissingConnection = &model.ValidationError{Message: "base URL and API key are required"}
	errMissingModel      = &model.ValidationError{Message: "model is required"}
)

type ChatRequest struct {
	Settings     model.ConnectionSettings
	Model        string
	SystemPrompt string
	History      []model.ChatMessage
	Message      string
}

// OpenAIUsecase talks to any OpenAI-compatible gateway. Every call is single shot.
type OpenAIUsecase struct {
	httpClient *http.Client
}

// NewOpenAIUsecase uses http.DefaultClient semantics when httpClient is nil.
func NewOpenAIUsecase(httpClient *http.Client) *OpenAIUsecase {
	return &OpenAIUsecase{
		httpClient: httpClient,
	}
}

func (o *OpenAIUsecase) ListModels(ctx context.Context, settings model.ConnectionSettings) ([]string, error) {
	c, err := o.newClient(settings)
	if err != nil {
		return nil, err
	}
	modelsList, err := c.ListModels(ctx)
	if err != nil {
		return nil, classifyOpenAIError(err, false)
	}
	models := make([]string, 0, len(modelsList.Models))
	for _, m := range modelsList.Models {
		models = append(models, m.ID)
	}
	return models, nil
}

func (o *OpenAIUsecase) ChatCompletion(ctx context.Context, req ChatRequest) (string, error) {
	c, err := o.newClient(req.Settings)
	if err != nil {
		return "", err
	}
	if req.Model == "" {
		return "", errMissingModel
	}

	resp, err := c.CreateChatCompletion(
		ctx, openai.ChatCompletionRequest{
			Model:    req.Model,
			Messages: BuildMessages(req.SystemPrompt, req.History, req.Message),
			Stream:   false,
		},
	)
	if err != nil {
		return "", classifyOpenAIError(err, true)
	}
	if len(resp.Choices) == 0 {
		return "", &model.ApiError{Status: http.StatusOK, Message: "no choices returned by model"}
	}
	return resp.Choices[0].Message.Content, nil
}

// CountPromptTokens estimates the size of the prompt ChatCompletion would send.
func (o *OpenAIUsecase) CountPromptTokens(req ChatRequest) (int, error) {
	return openai_tools.CountToken(BuildMessages(req.SystemPrompt, req.History, req.Message), req.Model)
}

// BuildMessages orders the prompt as system, replayed history, then the new user message.
func BuildMessages(systemPrompt string, history []model.ChatMessage, message string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(
		messages, openai.ChatCompletionMessage{
			Role:    OpenAIRoleSystem,
			Content: systemPrompt,
		},
	)
	for _, msg := range history {
		messages = append(
			messages, openai.ChatCompletionMessage{
				Role:    parseSenderToRole(msg.Sender),
				Content: msg.Text,
			},
		)
	}
	messages = append(
		messages, openai.ChatCompletionMessage{
			Role:    OpenAIRoleUser,
			Content: message,
		},
	)
	return messages
}

// NormalizeBaseURL strips trailing slashes; the client joins endpoints with exactly one.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

func (o *OpenAIUsecase) newClient(settings model.ConnectionSettings) (*openai.Client, error) {
	settings = settings.Trimmed()
	if !settings.Complete() {
		return nil, errMissingConnection
	}
	clientConfig := openai.DefaultConfig(settings.APIKey)
	clientConfig.BaseURL = NormalizeBaseURL(settings.APIURL)
	if o.httpClient != nil {
		clientConfig.HTTPClient = o.httpClient
	}
	return openai.NewClientWithConfig(clientConfig), nil
}

// classifyOpenAIError maps library errors onto the model error taxonomy. withMessage keeps the
// server supplied message when the body carried one.
func classifyOpenAIError(err error, withMessage bool) error {
	var apiErr *openai.APIError
	hasAPIErr := errors.As(err, &apiErr)

	// RequestError wraps bodies that did not fully decode and is the only one with a reliable status
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if withMessage && hasAPIErr && apiErr.Message != "" {
			return &model.ApiError{Status: reqErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return &model.HttpError{Status: reqErr.HTTPStatusCode}
	}
	if hasAPIErr {
		if withMessage && apiErr.Message != "" {
			return &model.ApiError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return &model.HttpError{Status: apiErr.HTTPStatusCode}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &model.NetworkError{Err: err}
	}
	return fmt.Errorf("failed to read response: %w", err)
}

func parseSenderToRole(sender model.Sender) string {
	switch sender {
	case model.SenderUser:
		return OpenAIRoleUser
	case model.SenderAssistant:
		return OpenAIRoleAssistant
	default:
		return OpenAIRoleUnknown
	}
}
