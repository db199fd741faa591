package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/stream"
)

// fakeEvaluator emits one completed event per configured stage and closes
// the stream. It records the submission it received.
type fakeEvaluator struct {
	sub *domain.Submission
	err error
}

func (f *fakeEvaluator) Run(ctx context.Context, sub *domain.Submission, st *stream.Stream) error {
	f.sub = sub
	ev, _ := domain.CompletedEvent("structure", domain.KindStructure,
		&domain.StructureResult{Narrative: "fine"})
	_ = st.Emit(ctx, ev)
	st.CloseWith(ctx, f.err)
	return f.err
}

type fakeHistory struct {
	records []domain.HistoryRecord
	err     error
}

func (f *fakeHistory) FetchHistory(context.Context, string) ([]domain.HistoryRecord, error) {
	return f.records, f.err
}

func (f *fakeHistory) AppendHistory(context.Context, string, domain.AggregateSummary) (domain.HistoryRecord, error) {
	return domain.HistoryRecord{}, nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeResetter struct {
	calls int
	err   error
}

func (f *fakeResetter) ResetAll(context.Context) error {
	f.calls++
	return f.err
}

func newTestServer(eval Evaluator, history *fakeHistory, tr *fakeTranscriber,
	resetter HistoryResetter, devMode bool) *Server {
	return NewServer(eval, history, tr, resetter, 0, devMode,
		slog.New(slog.DiscardHandler))
}

// multipartBody builds an evaluate request body with the given fields.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name+".bin")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestEvaluateStreamsNDJSON(t *testing.T) {
	eval := &fakeEvaluator{}
	tr := &fakeTranscriber{text: "transcribed words"}
	srv := httptest.NewServer(newTestServer(eval, &fakeHistory{}, tr, nil, false).Handler())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{"user_id": "user-1", "notify_email": "a@b.example"},
		map[string][]byte{"slide": []byte("%PDF"), "audio": []byte("mp3")})

	resp, err := http.Post(srv.URL+"/evaluate", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	var events []domain.StageEvent
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var ev domain.StageEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, events, 2)
	assert.Equal(t, domain.KindStructure, events[0].Stage)
	assert.True(t, events[1].Terminal)
	assert.Equal(t, domain.StatusCompleted, events[1].Status)

	require.NotNil(t, eval.sub)
	assert.Equal(t, "user-1", eval.sub.UserID)
	assert.Equal(t, "transcribed words", eval.sub.Transcript, "empty transcript invokes the transcriber")
	assert.Equal(t, "a@b.example", eval.sub.NotifyAddress)
	assert.NotEmpty(t, eval.sub.ID)
	assert.WithinDuration(t, time.Now(), eval.sub.ReceivedAt, time.Minute)
}

func TestEvaluateSkipsTranscriberWhenTranscriptGiven(t *testing.T) {
	eval := &fakeEvaluator{}
	tr := &fakeTranscriber{text: "should not be used"}
	srv := httptest.NewServer(newTestServer(eval, &fakeHistory{}, tr, nil, false).Handler())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{"user_id": "user-1", "transcript": "my own words"},
		map[string][]byte{"slide": []byte("%PDF"), "audio": []byte("mp3")})

	resp, err := http.Post(srv.URL+"/evaluate", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, tr.calls)
	assert.Equal(t, "my own words", eval.sub.Transcript)
}

func TestEvaluateRejectsMissingFields(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&fakeEvaluator{}, &fakeHistory{},
		&fakeTranscriber{}, nil, false).Handler())
	defer srv.Close()

	cases := []struct {
		name   string
		fields map[string]string
		files  map[string][]byte
	}{
		{"no user_id", nil, map[string][]byte{"slide": []byte("x"), "audio": []byte("y")}},
		{"no slide", map[string]string{"user_id": "u"}, map[string][]byte{"audio": []byte("y")}},
		{"no audio", map[string]string{"user_id": "u"}, map[string][]byte{"slide": []byte("x")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tc.fields, tc.files)
			resp, err := http.Post(srv.URL+"/evaluate", contentType, body)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestEvaluateTranscriberFailureIsBadRequest(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("whisper down")}
	srv := httptest.NewServer(newTestServer(&fakeEvaluator{}, &fakeHistory{},
		tr, nil, false).Handler())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{"user_id": "user-1"},
		map[string][]byte{"slide": []byte("x"), "audio": []byte("y")})

	resp, err := http.Post(srv.URL+"/evaluate", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEvaluateMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&fakeEvaluator{}, &fakeHistory{},
		&fakeTranscriber{}, nil, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/evaluate")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHistoryReturnsRecords(t *testing.T) {
	history := &fakeHistory{records: []domain.HistoryRecord{{
		ID: 1, UserID: "user-1", CreatedAt: time.Now(),
		Summary: domain.AggregateSummary{
			Narrative: "ok", StructureScore: 3, SpeechScore: 3,
			KnowledgeScore: 3, PersonasScore: 3, ComparisonScore: 3,
		},
	}}}
	srv := httptest.NewServer(newTestServer(&fakeEvaluator{}, history,
		&fakeTranscriber{}, nil, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history/user-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []domain.HistoryRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "user-1", records[0].UserID)
}

func TestHistoryEmptyIsJSONArray(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&fakeEvaluator{}, &fakeHistory{},
		&fakeTranscriber{}, nil, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history/nobody")
	require.NoError(t, err)
	defer resp.Body.Close()

	var records []domain.HistoryRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestHistoryFetchErrorIs500(t *testing.T) {
	history := &fakeHistory{err: errors.New("db down")}
	srv := httptest.NewServer(newTestServer(&fakeEvaluator{}, history,
		&fakeTranscriber{}, nil, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/history/user-1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestResetRequiresDevMode(t *testing.T) {
	resetter := &fakeResetter{}
	srv := httptest.NewServer(newTestServer(&fakeEvaluator{}, &fakeHistory{},
		&fakeTranscriber{}, resetter, false).Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/history", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, resetter.calls)
}

func TestResetInDevMode(t *testing.T) {
	resetter := &fakeResetter{}
	srv := httptest.NewServer(newTestServer(&fakeEvaluator{}, &fakeHistory{},
		&fakeTranscriber{}, resetter, true).Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/history", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, resetter.calls)
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&fakeEvaluator{}, &fakeHistory{},
		&fakeTranscriber{}, nil, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
