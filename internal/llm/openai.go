package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/aula-labs/tutorbot/internal/model"
)

// defaultOpenAIModel is a plain string: the SDK version in use has no
// constant for this model.
const defaultOpenAIModel = "gpt-4o"

// OpenAIClient is the OpenAI generation provider. The chat completions API
// has no file parts, so reference documents are rendered as a system-message
// listing instead.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI client.
func NewOpenAIClient(apiKey, modelName string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  modelName,
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Generate sends one chat completion request.
func (c *OpenAIClient) Generate(ctx context.Context, req *Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)

	if sys := renderSystemMessage(req.SystemInstruction, req.Documents); sys != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sys,
		})
	}

	for _, turn := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openAIRole(turn.Role),
			Content: turnText(turn),
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return "", &Error{Kind: classifyOpenAIError(err), Provider: c.Name(), Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &Error{Kind: KindUnknown, Provider: c.Name(), Err: fmt.Errorf("empty completion")}
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) Kind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode)
	}
	return classifyTransport(err)
}

func openAIRole(role model.Role) string {
	if role == model.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}

// turnText flattens a turn for providers without file parts; attached
// documents become a bracketed reference list.
func turnText(turn model.Turn) string {
	if len(turn.Documents) == 0 {
		return turn.Content
	}
	names := make([]string, len(turn.Documents))
	for i, doc := range turn.Documents {
		names[i] = doc.Name
	}
	return fmt.Sprintf("[documentos de referencia: %s]\n%s", strings.Join(names, ", "), turn.Content)
}

func renderSystemMessage(instruction string, docs []model.DocumentHandle) string {
	if instruction == "" && len(docs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(instruction)
	if len(docs) > 0 {
		names := make([]string, len(docs))
		for i, doc := range docs {
			names[i] = doc.Name
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Documentos de referencia: " + strings.Join(names, ", "))
	}
	return sb.String()
}
