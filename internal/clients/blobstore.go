package clients

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"quickforge/internal/models"
)

func decodeBase64Image(data string) ([]byte, error) {
	// Tolerate data URI prefixes like "data:image/png;base64,".
	if idx := strings.Index(data, ","); idx >= 0 && strings.HasPrefix(data, "data:") {
		data = data[idx+1:]
	}
	if data == "" {
		return nil, fmt.Errorf("empty image payload")
	}
	return base64.StdEncoding.DecodeString(data)
}

// BlobStoreClient uploads images to the external blob store / CDN and
// can request server-side transformations on upload.
type BlobStoreClient struct {
	baseURL string
	apiKey  string
	folder  string
	http    *http.Client
}

func NewBlobStoreClient(baseURL, apiKey, folder string) *BlobStoreClient {
	return &BlobStoreClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		folder:  folder,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Transformation names understood by the blob store.
const (
	TransformRemoveBackground = "background_removal"
	TransformRemoveObject     = "gen_remove"
)

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload stores an image and returns its public URL.
func (bc *BlobStoreClient) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	return bc.upload(ctx, name, r, "")
}

// UploadWithTransform stores an image while applying a named
// transformation, e.g. background removal or object removal with a
// target ("gen_remove:prompt_<object>").
func (bc *BlobStoreClient) UploadWithTransform(ctx context.Context, name string, r io.Reader, transform string) (string, error) {
	return bc.upload(ctx, name, r, transform)
}

func (bc *BlobStoreClient) upload(ctx context.Context, name string, r io.Reader, transform string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("folder", bc.folder); err != nil {
		return "", models.NewInternalError(err)
	}
	if transform != "" {
		if err := mw.WriteField("transformation", transform); err != nil {
			return "", models.NewInternalError(err)
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := mw.Close(); err != nil {
		return "", models.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bc.baseURL+"/v1/upload", &buf)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bc.apiKey)

	resp, err := bc.http.Do(req)
	if err != nil {
		return "", models.NewDependencyError("blob store request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", models.NewDependencyError("blob store response read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", models.NewDependencyError(
			fmt.Sprintf("blob store returned status %d", resp.StatusCode), nil)
	}

	var ur uploadResponse
	if err := json.Unmarshal(raw, &ur); err != nil {
		return "", models.NewParseError("blob store returned malformed response", err)
	}
	if ur.SecureURL == "" {
		return "", models.NewParseError("blob store returned no URL", nil)
	}
	return ur.SecureURL, nil
}
