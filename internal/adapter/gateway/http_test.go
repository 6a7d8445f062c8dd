package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"krishi-ai/internal/adapter/contextstore"
	"krishi-ai/internal/domain"
	"krishi-ai/internal/infra/config"
	"krishi-ai/internal/usecase"
)

type echoResponder struct{ name string }

func (e *echoResponder) Name() string           { return e.name }
func (e *echoResponder) Description() string    { return "echo" }
func (e *echoResponder) Capabilities() []string { return []string{"echo"} }
func (e *echoResponder) Process(_ context.Context, query string, _ *domain.UserContext) (*domain.AgentResponse, error) {
	return &domain.AgentResponse{
		AgentName:  e.name,
		Response:   "echo: " + query,
		Confidence: 0.9,
		Metadata:   map[string]any{},
	}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	classifier, err := usecase.NewClassifier(usecase.DefaultRuleTable())
	require.NoError(t, err)

	registry := usecase.NewRegistry(log)
	registry.Register(usecase.FallbackCapability, &echoResponder{name: "Crop Advisory"})

	store := contextstore.NewMemoryStore()
	router := usecase.NewRouter(registry, usecase.DefaultRoutes(), log)
	enhancer := usecase.NewEnhancer(usecase.DefaultFollowUps())
	recorder := usecase.NewRecorder(store, log)
	pipeline := usecase.NewPipeline(classifier, store, router, enhancer, recorder, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.ServerConfig{Addr: ":0", RequestsPerMin: 600, BurstSize: 100}
	return New(ctx, cfg, pipeline, registry, log)
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"user_id": "farmer1",
		"query":   "which crop should I grow",
		"context": map[string]any{"location": "Punjab"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Agent      string         `json:"agent"`
		Response   string         `json:"response"`
		Confidence float64        `json:"confidence"`
		Metadata   map[string]any `json:"metadata"`
		SessionID  string         `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, "Crop Advisory", got.Agent)
	require.Contains(t, got.Response, "echo: which crop should I grow")
	require.NotEmpty(t, got.SessionID, "a session id must be generated when absent")
	require.Equal(t, string(domain.IntentCropAdvisory), got.Metadata["primary_intent"])
}

func TestQueryEndpointValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing user_id", `{"query":"hello"}`},
		{"missing query", `{"user_id":"u1"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)
			require.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Status     string            `json:"status"`
		Responders map[string]string `json:"responders"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, "healthy", got.Status)
	require.Equal(t, "healthy", got.Responders[usecase.FallbackCapability])
}

func TestCapabilitiesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/capabilities", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Responders []domain.ResponderStatus `json:"responders"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Responders, 1)
	require.Equal(t, usecase.FallbackCapability, got.Responders[0].ID)
}

func TestSecurityHeadersPresent(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/capabilities", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}
