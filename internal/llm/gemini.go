package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aula-labs/tutorbot/internal/model"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the generative-language REST API. It is the only
// provider that can attach pre-registered file handles to a request.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// GeminiOption customizes a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithGeminiBaseURL overrides the API base URL. Used in tests.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithGeminiHTTPClient overrides the HTTP client.
func WithGeminiHTTPClient(hc *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		c.httpClient = hc
	}
}

// NewGeminiClient creates a Gemini client for the given model.
func NewGeminiClient(apiKey, modelName string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("gemini model name is required")
	}

	c := &GeminiClient{
		apiKey:  apiKey,
		model:   modelName,
		baseURL: defaultGeminiBaseURL,
		httpClient: &http.Client{
			// No overall deadline; cancellation comes from ctx when the
			// caller configures a task timeout.
			Timeout: 0,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Wire types for the generateContent endpoint.

type geminiPart struct {
	Text     string          `json:"text,omitempty"`
	FileData *geminiFileData `json:"fileData,omitempty"`
}

type geminiFileData struct {
	FileURI  string `json:"fileUri"`
	MIMEType string `json:"mimeType,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends one generateContent request built from the conversation
// history, the current prompt and any attached reference documents.
func (c *GeminiClient) Generate(ctx context.Context, req *Request) (string, error) {
	body := geminiRequest{
		Contents:         c.buildContents(req),
		GenerationConfig: geminiGenerationConfig{Temperature: req.Temperature},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", &Error{Kind: KindUnknown, Provider: c.Name(), Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindUnknown, Provider: c.Name(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: classifyTransport(err), Provider: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &Error{Kind: KindTransient, Provider: c.Name(), Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Kind:     classifyStatus(resp.StatusCode),
			Provider: c.Name(),
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, upstreamMessage(data)),
		}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &Error{Kind: KindUnknown, Provider: c.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}

	text := extractText(&parsed)
	if text == "" {
		return "", &Error{Kind: KindUnknown, Provider: c.Name(), Err: fmt.Errorf("empty completion")}
	}
	return text, nil
}

func (c *GeminiClient) buildContents(req *Request) []geminiContent {
	contents := make([]geminiContent, 0, len(req.History)+1)
	for _, turn := range req.History {
		contents = append(contents, turnToContent(turn))
	}

	// Current prompt, with per-call document attachments when configured.
	prompt := geminiContent{Role: "user"}
	for _, doc := range req.Documents {
		prompt.Parts = append(prompt.Parts, filePart(doc))
	}
	prompt.Parts = append(prompt.Parts, geminiPart{Text: req.Prompt})
	return append(contents, prompt)
}

func turnToContent(turn model.Turn) geminiContent {
	role := "user"
	if turn.Role == model.RoleAssistant {
		role = "model"
	}

	content := geminiContent{Role: role}
	for _, doc := range turn.Documents {
		content.Parts = append(content.Parts, filePart(doc))
	}
	content.Parts = append(content.Parts, geminiPart{Text: turn.Content})
	return content
}

func filePart(doc model.DocumentHandle) geminiPart {
	return geminiPart{FileData: &geminiFileData{
		FileURI:  doc.Name,
		MIMEType: doc.MIMEType,
	}}
}

func extractText(resp *geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func upstreamMessage(data []byte) string {
	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
