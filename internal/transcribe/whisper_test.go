package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podiumlab/podium/internal/config"
	"github.com/podiumlab/podium/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*WhisperClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewWhisperClient(config.WhisperService{
		Endpoint: srv.URL,
		Model:    "whisper-1",
	}, "test-key")
	return c, srv
}

func TestTranscribeSuccess(t *testing.T) {
	var gotAuth, gotModel, gotFilename string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		if _, header, err := r.FormFile("file"); err == nil {
			gotFilename = header.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello from the talk"}`))
	})

	text, err := c.Transcribe(context.Background(), []byte("audio bytes"), "talk.mp3")
	require.NoError(t, err)
	assert.Equal(t, "hello from the talk", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "talk.mp3", gotFilename)
}

func TestTranscribeRateLimitIsTransient(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := c.Transcribe(context.Background(), []byte("x"), "talk.mp3")
	require.Error(t, err)
	assert.Equal(t, domain.KindTransient, domain.Classify(err))
}

func TestTranscribeBadRequestIsNotRetryable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unsupported format", http.StatusBadRequest)
	})

	_, err := c.Transcribe(context.Background(), []byte("x"), "talk.xyz")
	require.Error(t, err)
	assert.False(t, domain.Retryable(err))
}

func TestTranscribeUnparsableBodyIsSchemaMismatch(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := c.Transcribe(context.Background(), []byte("x"), "talk.mp3")
	require.Error(t, err)
	assert.Equal(t, domain.KindSchemaMismatch, domain.Classify(err))
}

func TestTranscribeMisconfigured(t *testing.T) {
	c := NewWhisperClient(config.WhisperService{}, "")
	_, err := c.Transcribe(context.Background(), []byte("x"), "talk.mp3")
	assert.Error(t, err)
}
