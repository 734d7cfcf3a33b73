package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/store"
)

func newTestServer(t *testing.T, provider llm.Provider, opts ...func(*Options)) *Server {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	o := Options{Provider: provider, Profiles: st.ProfileRepo(), Mode: "test"}
	for _, fn := range opts {
		fn(&o)
	}
	return New(o)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestProxy_Generate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`"{\"questions\":[]}"`)})
	s := newTestServer(t, mock)

	w := do(t, s, http.MethodPost, "/api/gemini", map[string]any{
		"action":  "generate",
		"payload": map[string]any{"prompt": "Generate 5 questions"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, `{"questions":[]}`, got["text"])
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, "Generate 5 questions", mock.Calls[0].Messages[0].Content)
}

func TestProxy_EvaluateMultimodal(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"score":80}`)})
	s := newTestServer(t, mock)

	w := do(t, s, http.MethodPost, "/api/gemini", map[string]any{
		"action": "evaluate",
		"payload": map[string]any{
			"promptText":   "Grade this",
			"isMultimodal": true,
			"inlineData":   map[string]string{"mimeType": "audio/webm", "data": "aGVsbG8="},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"{\"score\":80}"}`, w.Body.String())

	att := mock.Calls[0].Messages[0].Attachments
	require.Len(t, att, 1)
	assert.Equal(t, "audio/webm", att[0].MIMEType)
	assert.Equal(t, "hello", string(att[0].Data))
}

func TestProxy_Errors(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("quota exceeded")})
	s := newTestServer(t, mock)

	w := do(t, s, http.MethodGet, "/api/gemini", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method Not Allowed", w.Body.String())

	w = do(t, s, http.MethodPost, "/api/gemini", map[string]any{"action": "translate"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Action", w.Body.String())

	w = do(t, s, http.MethodPost, "/api/gemini", map[string]any{
		"action":  "generate",
		"payload": map[string]any{"prompt": "x"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "quota exceeded")
}

func TestProxy_NoProvider(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/api/gemini", map[string]any{"action": "generate"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStudents_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/api/students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/students", map[string]any{"name": "Mei", "age": 14})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, s, http.MethodPost, "/api/students", map[string]any{"name": "Mei", "age": 15})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, s, http.MethodGet, "/api/students/Mei", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p profile.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, 14, p.Age)
	assert.Len(t, p.Points, 36)

	p.Comments = "Prefers audio questions"
	w = do(t, s, http.MethodPut, "/api/students/Mei", p)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/students", nil)
	var roster []store.RosterEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roster))
	require.Len(t, roster, 1)
	assert.Equal(t, "Prefers audio questions", roster[0].Comments)

	w = do(t, s, http.MethodPut, "/api/students/Other", p)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodDelete, "/api/students/Mei", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/api/students/Mei", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudents_CreateRequiresName(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/api/students", map[string]any{"age": 14})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, nil, func(o *Options) {
		o.RateLimit = 0.001
		o.Burst = 2
	})

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(t, s, http.MethodGet, "/api/students", nil).Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", nil).Code, "health is not limited")
}
