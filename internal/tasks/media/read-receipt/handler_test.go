// internal/tasks/media/read-receipt/handler_test.go
package readreceipt

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "db-agent/internal/common/errors"
	fetchresource "db-agent/internal/tasks/media/fetch-resource"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t *testing.T
}

func NewTestLogger(t *testing.T) *TestLogger { return &TestLogger{t: t} }

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}
func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}
func (l *TestLogger) With(fields map[string]interface{}) Logger { return l }

// ==========================
// Fakes
// ==========================

type fakeFetcher struct {
	resource *fetchresource.Resource
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, locator string) (*fetchresource.Resource, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resource, nil
}

type fakeGateway struct {
	reply        string
	err          error
	instructions []string
	paths        []string
}

func (f *fakeGateway) DescribeImage(ctx context.Context, imagePath, instruction string) (string, error) {
	f.paths = append(f.paths, imagePath)
	f.instructions = append(f.instructions, instruction)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func stagedResource(t *testing.T) *fetchresource.Resource {
	dir, err := os.MkdirTemp("", "receipt-test-")
	require.NoError(t, err)
	path := filepath.Join(dir, "refund_req2.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
	return fetchresource.NewStaged(path, "image/png", 3)
}

func newTestHandler(t *testing.T, fetcher Fetcher, gateway Gateway) *Handler {
	config := DefaultConfig()
	config.Timeout = 5 * time.Second
	return NewHandler(config, fetcher, gateway, NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ExtractsAmount(t *testing.T) {
	resource := stagedResource(t)
	gateway := &fakeGateway{reply: "The total amount in this receipt is $1,234.56."}
	handler := newTestHandler(t, &fakeFetcher{resource: resource}, gateway)

	output, err := handler.Execute(context.Background(), &Input{Locator: "receipts/refund_req2.png"})
	require.NoError(t, err)

	assert.Equal(t, 1234.56, output.Amount)
	assert.Contains(t, output.RawText, "$1,234.56")

	require.Len(t, gateway.instructions, 1)
	assert.Equal(t, "What is the total amount in this receipt?", gateway.instructions[0])
	assert.Equal(t, resource.Path, gateway.paths[0])

	// The staged image is gone after the turn.
	_, statErr := os.Stat(resource.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    float64
		wantErr bool
	}{
		{name: "plain", text: "42.50", want: 42.50},
		{name: "currency prefix", text: "Total: $99.99", want: 99.99},
		{name: "integer", text: "The total is 120 dollars", want: 120},
		{name: "thousands separator", text: "Rs. 12,345.00 in total", want: 12345},
		{name: "sentence", text: "The total amount in this receipt is 56.78.", want: 56.78},
		{name: "no number", text: "I cannot read this receipt.", wantErr: true},
		{name: "empty", text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Error Path Tests
// ==========================

func TestHandler_Execute_UnparseableReply(t *testing.T) {
	resource := stagedResource(t)
	gateway := &fakeGateway{reply: "Sorry, the image is too blurry to read."}
	handler := newTestHandler(t, &fakeFetcher{resource: resource}, gateway)

	_, err := handler.Execute(context.Background(), &Input{Locator: "receipts/blurry.png"})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeExtraction, stdErr.Code)

	_, statErr := os.Stat(resource.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHandler_Execute_GatewayFailureReleasesResource(t *testing.T) {
	resource := stagedResource(t)
	gateway := &fakeGateway{err: apperrors.NewGatewayError(500, "internal error")}
	handler := newTestHandler(t, &fakeFetcher{resource: resource}, gateway)

	_, err := handler.Execute(context.Background(), &Input{Locator: "receipts/refund_req2.png"})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeGateway, stdErr.Code)

	_, statErr := os.Stat(resource.Path)
	assert.True(t, os.IsNotExist(statErr))
}
