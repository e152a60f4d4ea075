// internal/common/genai/client_test.go
package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "db-agent/internal/common/errors"
	"db-agent/internal/common/logger"
)

func candidateReply(text string) string {
	body := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "test-key", "gemini-2.0-flash", 5*time.Second, logger.NewTestLogger(t))
	return client, server
}

func TestClient_Interpret_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateReply("SELECT * FROM employees")))
	})

	text, err := client.Interpret(context.Background(), "list all employees", KindIntent)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM employees", text)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "list all employees", gotBody.Contents[0].Parts[0].Text)
}

func TestClient_Interpret_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.Interpret(context.Background(), "anything", KindIntent)
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeGateway, stdErr.Code)
	assert.Contains(t, stdErr.Details, "429")
	assert.Contains(t, stdErr.Details, "Resource has been exhausted")
}

func TestClient_Interpret_NoCandidates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := client.Interpret(context.Background(), "anything", KindIntent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hosted model call failed")
}

func TestClient_Transcribe_SendsInlineAudio(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFFxxxxWAVE"), 0o644))

	var gotBody generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(candidateReply("hello world")))
	})

	text, err := client.Transcribe(context.Background(), audioPath)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	require.Len(t, gotBody.Contents, 1)
	parts := gotBody.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "Transcribe this audio recording")
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "audio/wav", parts[1].InlineData.MIMEType)
	assert.NotEmpty(t, parts[1].InlineData.Data)
}

func TestClient_DescribeImage_UsesInstruction(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "receipt.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("\x89PNG\r\n\x1a\n"), 0o644))

	var gotBody generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(candidateReply("The total amount is $42.50")))
	})

	text, err := client.DescribeImage(context.Background(), imagePath, "What is the total amount in this receipt?")
	require.NoError(t, err)
	assert.Equal(t, "The total amount is $42.50", text)

	parts := gotBody.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "What is the total amount in this receipt?", parts[0].Text)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
}

func TestClient_Transcribe_MissingFile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a missing file")
	})

	_, err := client.Transcribe(context.Background(), "/nonexistent/clip.wav")
	assert.Error(t, err)
}

func TestClient_ListModels(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models": [{"name": "models/gemini-2.0-flash"}, {"name": "models/gemini-2.0-pro"}]}`))
	})

	names, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"models/gemini-2.0-flash", "models/gemini-2.0-pro"}, names)
}
