package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/Harshitk-cp/recipebot/internal/nlg"
	"github.com/Harshitk-cp/recipebot/internal/nlu"
	"github.com/Harshitk-cp/recipebot/internal/service"
	"github.com/Harshitk-cp/recipebot/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	t      *testing.T
	app    *App
	apiKey string
}

func newTestServer(t *testing.T, checks map[string]HealthCheck) *testServer {
	t.Helper()
	catalog := memory.NewCatalog(
		domain.Recipe{Name: "Soup A", Ingredients: "leek, potato", Ease: "Super simple", PrepTime: 30},
		domain.Recipe{Name: "Soup B", Ingredients: "leek, carrot", Ease: "Average", PrepTime: 45},
		domain.Recipe{Name: "Mango Salad", Ingredients: "mango, lime", Ease: "Fairly easy", PrepTime: 10},
	)
	vocab, err := catalog.Vocabulary(context.Background())
	require.NoError(t, err)

	app, err := NewApp(Deps{
		Tenants:          memory.NewTenantStore(),
		Catalog:          catalog,
		Sessions:         memory.NewSessionStore(),
		Understander:     nlu.NewRules(vocab),
		Generator:        nlg.NewRenderer(nlg.FirstPicker{}),
		Checks:           checks,
		StrictInvariants: true,
		RateLimitRPS:     1000,
		RateLimitBurst:   1000,
	}, zap.NewNop())
	require.NoError(t, err)

	s := &testServer{t: t, app: app}
	rec := s.do(http.MethodPost, "/v1/tenants", `{"name":"kitchen"}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created createTenantResponseBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.True(t, strings.HasPrefix(created.APIKey, "rb_"))
	s.apiKey = created.APIKey
	return s
}

type createTenantResponseBody struct {
	ID     string `json:"id"`
	APIKey string `json:"api_key"`
}

func (s *testServer) do(method, path, body string, auth bool) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	rec := httptest.NewRecorder()
	s.app.Router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) turn(path, body string) service.TurnResult {
	s.t.Helper()
	rec := s.do(http.MethodPost, path, body, true)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var res service.TurnResult
	require.NoError(s.t, json.NewDecoder(rec.Body).Decode(&res))
	return res
}

func TestDialogOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/v1/sessions", "", true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var started service.TurnResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&started))
	assert.Equal(t, domain.ActionWelcome, started.Action.Kind)
	assert.Equal(t, domain.StateStart, started.State)

	turns := "/v1/sessions/" + started.SessionID.String() + "/turns"

	res := s.turn(turns, `{"text":"hello"}`)
	assert.Equal(t, domain.ActionWelcome, res.Action.Kind)
	assert.Equal(t, []domain.IntentKind{domain.IntentHello}, intentKinds(res.Intents))

	res = s.turn(turns, `{"intents":[{"kind":"inform","slot":"ingredients","value":"leek","confidence":1}]}`)
	assert.Equal(t, domain.ActionFoundSome, res.Action.Kind)
	assert.Equal(t, domain.StateListedFound, res.State)
	assert.Equal(t, "I found Soup A or Soup B. Which one do you want?", res.Utterance)

	res = s.turn(turns, `{"intents":[{"kind":"pick_first","confidence":1}]}`)
	assert.Equal(t, domain.ActionSelect, res.Action.Kind)
	assert.Equal(t, domain.StateChosen, res.State)

	rec = s.do(http.MethodGet, "/v1/sessions/"+started.SessionID.String(), "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var state domain.BotState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	assert.Equal(t, domain.StateChosen, state.State)
	require.NotNil(t, state.Chosen)
	assert.Equal(t, "Soup A", state.Chosen.Name)

	rec = s.do(http.MethodPost, turns, `{"text":"hi","intents":[{"kind":"hello"}]}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/v1/sessions/"+started.SessionID.String(), "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/v1/sessions/"+started.SessionID.String(), "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodPost, turns, `{"text":"hello"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func intentKinds(intents []domain.Intent) []domain.IntentKind {
	out := make([]domain.IntentKind, len(intents))
	for i, in := range intents {
		out[i] = in.Kind
	}
	return out
}

func TestSessionRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/v1/favorites", "/v1/recipes/search?name=soup"} {
		rec := s.do(http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := s.do(http.MethodGet, "/v1/sessions/not-a-uuid", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecipeSearch(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		query string
		code  int
		count int
	}{
		{"ingredients=leek", http.StatusOK, 2},
		{"ingredients=leek&ease=easy", http.StatusOK, 1},
		{"ingredients=leek,mango&mode=partial", http.StatusOK, 3},
		{"prep_time=30", http.StatusOK, 2},
		{"", http.StatusOK, 0},
		{"rating=high", http.StatusBadRequest, 0},
		{"prep_time=-5", http.StatusBadRequest, 0},
		{"mode=fuzzy&name=soup", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := s.do(http.MethodGet, "/v1/recipes/search?"+tt.query, "", true)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.code != http.StatusOK {
				return
			}
			var body struct {
				Recipes []domain.Recipe `json:"recipes"`
				Count   int             `json:"count"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.count, body.Count)
			assert.Len(t, body.Recipes, tt.count)
		})
	}
}

func TestFavoritesEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/v1/favorites", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"recipes":[],"count":0}`, rec.Body.String())
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t, map[string]HealthCheck{
		"catalog": func(context.Context) error { return nil },
	})

	rec := s.do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/version", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)

	rec = s.do(http.MethodGet, "/debug/stats", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "request_count")

	rec = s.do(http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recipebot_http_requests_total")
}

func TestHealthReportsFailingBackend(t *testing.T) {
	s := newTestServer(t, map[string]HealthCheck{
		"sessions": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := s.do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestAppStartStop(t *testing.T) {
	s := newTestServer(t, nil)
	s.app.Start()
	s.app.Stop()
	s.app.Stop()
}
