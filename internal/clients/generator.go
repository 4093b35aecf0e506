// Package clients holds HTTP clients for the external services the
// application depends on: the generative API, the blob store and the
// identity provider.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"quickforge/internal/models"
)

// GeneratorClient talks to the generative text/image API.
type GeneratorClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewGeneratorClient builds a client with a bounded request timeout.
// Generation calls are slow; the timeout reflects that.
func NewGeneratorClient(baseURL, apiKey string) *GeneratorClient {
	return &GeneratorClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type textRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type textResponse struct {
	Content string `json:"content"`
}

// GenerateText sends a prompt to the text model and returns the
// generated content.
func (gc *GeneratorClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(textRequest{Prompt: prompt, MaxTokens: maxTokens, Temperature: 0.7})
	if err != nil {
		return "", models.NewInternalError(err)
	}

	raw, err := gc.post(ctx, "/v1/text", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var resp textResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", models.NewParseError("generator returned malformed response", err)
	}
	if resp.Content == "" {
		return "", models.NewParseError("generator returned empty content", nil)
	}
	return resp.Content, nil
}

// EnhancePrompt asks the model to rewrite a rough prompt into a more
// detailed one.
func (gc *GeneratorClient) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	instruction := "Rewrite the following prompt to be clearer and more detailed. " +
		"Return only the rewritten prompt with no preamble.\n\n" + prompt
	return gc.GenerateText(ctx, instruction, 512)
}

type imageResponse struct {
	ImageBase64 string `json:"image_base64"`
}

// GenerateImage sends a prompt to the image model and returns the raw
// decoded image bytes.
func (gc *GeneratorClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(textRequest{Prompt: prompt})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	raw, err := gc.post(ctx, "/v1/image", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp imageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, models.NewParseError("generator returned malformed response", err)
	}
	img, err := decodeBase64Image(resp.ImageBase64)
	if err != nil {
		return nil, models.NewParseError("generator returned malformed image data", err)
	}
	return img, nil
}

type resumeReview struct {
	Review string `json:"review"`
}

// ReviewResume uploads a resume file for analysis and returns the
// structured review text. A well-formed HTTP response with a body the
// client cannot decode is a parse failure, not a dependency failure.
func (gc *GeneratorClient) ReviewResume(ctx context.Context, filename string, file io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("resume", filename)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := mw.Close(); err != nil {
		return "", models.NewInternalError(err)
	}

	raw, err := gc.post(ctx, "/v1/resume-review", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}

	var resp resumeReview
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", models.NewParseError("resume review returned malformed response", err)
	}
	if resp.Review == "" {
		return "", models.NewParseError("resume review returned empty content", nil)
	}
	return resp.Review, nil
}

func (gc *GeneratorClient) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gc.baseURL+path, body)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+gc.apiKey)

	resp, err := gc.http.Do(req)
	if err != nil {
		return nil, models.NewDependencyError("generator request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, models.NewDependencyError("generator response read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, models.NewDependencyError(
			fmt.Sprintf("generator returned status %d", resp.StatusCode), nil)
	}
	return raw, nil
}
