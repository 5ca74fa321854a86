package recommendation

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"profitlens/internal/domain"
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient is a resty-backed client for the Gemini generateContent API.
type GeminiClient struct {
	httpClient *resty.Client
	model      string
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = "https://generativelanguage.googleapis.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base+"/v1beta").
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &GeminiClient{httpClient: restyClient, model: cfg.Model}
}

func (c *GeminiClient) Model() string {
	return c.model
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	Tools             []map[string]any        `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content           geminiContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func buildPayload(req Request) geminiRequest {
	payload := geminiRequest{Contents: make([]geminiContent, 0, len(req.Contents))}
	for _, content := range req.Contents {
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  content.Role,
			Parts: []geminiPart{{Text: content.Text}},
		})
	}
	if req.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	// JSON mode and search grounding cannot be combined.
	if req.Search {
		payload.Tools = []map[string]any{{"google_search": map[string]any{}}}
	} else if req.JSON {
		payload.GenerationConfig = &geminiGenerationConfig{ResponseMimeType: "application/json"}
	}
	return payload
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

func (r geminiResponse) sources() []domain.GroundingSource {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []domain.GroundingSource
	seen := map[string]bool{}
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		out = append(out, domain.GroundingSource{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return out
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	result := new(geminiResponse)
	apiErr := new(geminiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(buildPayload(req)).
		SetResult(result).
		SetError(apiErr).
		ForceContentType("application/json").
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return Response{}, statusError(resp.StatusCode(), apiErr.Error.Message)
	}

	text := result.text()
	if text == "" {
		return Response{}, fmt.Errorf("%w: empty candidate", ErrMalformedResponse)
	}
	return Response{Text: text, Sources: result.sources()}, nil
}

// Stream reads the server-sent event stream of streamGenerateContent.
func (c *GeminiClient) Stream(ctx context.Context, req Request, onChunk func(text string) error) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(buildPayload(req)).
		SetQueryParam("alt", "sse").
		SetDoNotParseResponse(true).
		Post(fmt.Sprintf("/models/%s:streamGenerateContent", c.model))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= http.StatusBadRequest {
		apiErr := new(geminiError)
		_ = json.NewDecoder(body).Decode(apiErr)
		return statusError(resp.StatusCode(), apiErr.Error.Message)
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("%w: stream chunk: %v", ErrMalformedResponse, err)
		}
		if text := chunk.text(); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func statusError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("%w: gemini api error: code=%d, message=%s", ErrUnavailable, status, message)
}
