package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/chops/internal/chaos"
	"github.com/ajitpratap0/chops/internal/entropy"
	"github.com/ajitpratap0/chops/internal/generator"
	"github.com/ajitpratap0/chops/internal/memory"
	"github.com/ajitpratap0/chops/internal/models"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type stubClient struct{ text string }

func (s stubClient) Complete(_ context.Context, _ string) (string, error) {
	return s.text, nil
}

func newTestServer(t *testing.T, authToken string) (*Server, *memory.Store) {
	t.Helper()
	logger := newTestLogger()
	engine := chaos.New([]entropy.Source{entropy.NewPseudo(1)}, logger)
	store := memory.New(memory.DefaultConfig(), logger)
	client := stubClient{text: "Floating Library\n\nA library barge that drifts between river towns, lending out waterproof books."}
	summoner := generator.NewSummoner(engine, store, client, logger)
	return NewServer(summoner, store, logger, authToken), store
}

func doRequest(t *testing.T, srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, "")
	w := doRequest(t, srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth(t *testing.T) {
	srv, _ := newTestServer(t, "secret-token")

	w := doRequest(t, srv, http.MethodGet, "/v1/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing token")

	w = doRequest(t, srv, http.MethodGet, "/v1/stats", "", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "wrong token")

	w = doRequest(t, srv, http.MethodGet, "/v1/stats", "", "secret-token")
	assert.Equal(t, http.StatusOK, w.Code)

	// Health stays open even with auth enabled.
	w = doRequest(t, srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSummonEndpoint(t *testing.T) {
	srv, store := newTestServer(t, "")

	w := doRequest(t, srv, http.MethodPost, "/v1/summon",
		`{"persona":"mad-scientist","domain":"publishing","level":5}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result generator.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.PersonaMadScientist, result.Idea.PersonaUsed)
	assert.Equal(t, "publishing", result.Idea.Domain)
	assert.Equal(t, 1, store.Stats().ShortTermCount)
}

func TestSummonEndpoint_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, "")

	w := doRequest(t, srv, http.MethodPost, "/v1/summon", `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, http.MethodPost, "/v1/summon",
		`{"persona":"ghost","domain":"x","level":5}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, http.MethodPost, "/v1/summon",
		`{"persona":"zen-master","level":5}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "domain is required")

	w = doRequest(t, srv, http.MethodPost, "/v1/summon",
		`{"persona":"zen-master","domain":"x","level":99}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "invalid chaos level")
}

func TestRecallEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	w := doRequest(t, srv, http.MethodGet, "/v1/recall?tag=library", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp recallResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Found)

	doRequest(t, srv, http.MethodPost, "/v1/summon",
		`{"persona":"zen-master","domain":"library","level":3}`, "")

	w = doRequest(t, srv, http.MethodGet, "/v1/recall?tag=library", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	require.NotNil(t, resp.Idea)
	assert.Equal(t, "library", resp.Idea.Domain)

	w = doRequest(t, srv, http.MethodGet, "/v1/recall", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "tag is required")
}

func TestRecommendEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	doRequest(t, srv, http.MethodPost, "/v1/summon",
		`{"persona":"punk-hacker","domain":"gaming","level":7}`, "")

	w := doRequest(t, srv, http.MethodGet, "/v1/recommend?domain=gaming", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp recommendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "gaming", resp.Domain)
	require.NotEmpty(t, resp.Rankings)
	assert.Equal(t, models.PersonaPunkHacker, resp.Rankings[0].Persona)

	w = doRequest(t, srv, http.MethodGet, "/v1/recommend", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "domain is required")
}

func TestFeedbackEndpoint(t *testing.T) {
	srv, store := newTestServer(t, "")

	w := doRequest(t, srv, http.MethodPost, "/v1/feedback",
		`{"persona":"empathetic-ai","rating":0.9}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	snap := store.Snapshot()
	eff := snap.LongTerm.PersonaEffectiveness[models.PersonaEmpatheticAI]
	require.NotNil(t, eff)
	assert.Equal(t, 0.9, eff.UserSatisfactionRating)

	w = doRequest(t, srv, http.MethodPost, "/v1/feedback",
		`{"persona":"empathetic-ai","rating":1.5}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "rating out of range")

	w = doRequest(t, srv, http.MethodPost, "/v1/feedback",
		`{"persona":"nobody","rating":0.5}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	doRequest(t, srv, http.MethodPost, "/v1/summon",
		`{"persona":"time-traveler","domain":"energy","level":4}`, "")

	w := doRequest(t, srv, http.MethodGet, "/v1/stats", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats memory.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.ShortTermCount)
	assert.Equal(t, 1, stats.PersonaCount)
}
