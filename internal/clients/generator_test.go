package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickforge/internal/models"
)

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestGenerateText_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"content":"An article about Go."}`))
	}))
	defer srv.Close()

	gc := NewGeneratorClient(srv.URL, "test-key")
	out, err := gc.GenerateText(context.Background(), "write about Go", 800)
	require.NoError(t, err)
	assert.Equal(t, "An article about Go.", out)
}

func TestGenerateText_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	gc := NewGeneratorClient(srv.URL, "test-key")
	_, err := gc.GenerateText(context.Background(), "prompt", 0)
	assert.Equal(t, models.CodeDependency, appErrCode(t, err))
}

func TestGenerateText_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	gc := NewGeneratorClient(srv.URL, "test-key")
	_, err := gc.GenerateText(context.Background(), "prompt", 0)
	assert.Equal(t, models.CodeParse, appErrCode(t, err))
}

func TestGenerateImage_DecodesBase64(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/image", r.URL.Path)
		w.Write([]byte(`{"image_base64":"aGVsbG8="}`))
	}))
	defer srv.Close()

	gc := NewGeneratorClient(srv.URL, "test-key")
	img, err := gc.GenerateImage(context.Background(), "a fox")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), img)
}

func TestGenerateImage_BadBase64IsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"image_base64":"%%%not-base64%%%"}`))
	}))
	defer srv.Close()

	gc := NewGeneratorClient(srv.URL, "test-key")
	_, err := gc.GenerateImage(context.Background(), "a fox")
	assert.Equal(t, models.CodeParse, appErrCode(t, err))
}

func TestReviewResume_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/resume-review", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))
		_, header, err := r.FormFile("resume")
		require.NoError(t, err)
		assert.Equal(t, "cv.pdf", header.Filename)
		w.Write([]byte(`{"review":"Strong resume."}`))
	}))
	defer srv.Close()

	gc := NewGeneratorClient(srv.URL, "test-key")
	out, err := gc.ReviewResume(context.Background(), "cv.pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "Strong resume.", out)
}

func TestReviewResume_EmptyReviewIsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	gc := NewGeneratorClient(srv.URL, "test-key")
	_, err := gc.ReviewResume(context.Background(), "cv.pdf", strings.NewReader("data"))
	assert.Equal(t, models.CodeParse, appErrCode(t, err))
}
