package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"krishi-ai/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubResponder is a minimal Responder for registry and pipeline tests.
type stubResponder struct {
	name string
	resp *domain.AgentResponse
	err  error
}

func (s *stubResponder) Name() string            { return s.name }
func (s *stubResponder) Description() string     { return "stub" }
func (s *stubResponder) Capabilities() []string  { return []string{"stub"} }
func (s *stubResponder) Process(context.Context, string, *domain.UserContext) (*domain.AgentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func okStub(name, text string) *stubResponder {
	return &stubResponder{name: name, resp: &domain.AgentResponse{
		AgentName:  name,
		Response:   text,
		Confidence: 0.9,
		Metadata:   map[string]any{},
	}}
}

func TestRegistryGetUnknownCapability(t *testing.T) {
	r := NewRegistry(discardLogger())
	if _, err := r.Get("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRegistryListSortedByCapability(t *testing.T) {
	r := NewRegistry(discardLogger())
	r.Register("weather", okStub("Weather", "ok"))
	r.Register("crop_advisory", okStub("Crop Advisory", "ok"))
	r.Register("soil_analysis", okStub("Soil Analysis", "ok"))

	got := r.List()
	want := []string{"crop_advisory", "soil_analysis", "weather"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestRouterResolvesMappedIntent(t *testing.T) {
	r := NewRegistry(discardLogger())
	r.Register("weather", okStub("Weather", "sunny"))
	r.Register(FallbackCapability, okStub("Crop Advisory", "fallback"))
	router := NewRouter(r, DefaultRoutes(), discardLogger())

	resp, capability, err := router.Resolve(domain.IntentWeather, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if capability != "weather" || resp.Name() != "Weather" {
		t.Errorf("resolved %q/%q, want weather/Weather", capability, resp.Name())
	}
}

func TestRouterFallsBackForUnmappedIntent(t *testing.T) {
	r := NewRegistry(discardLogger())
	r.Register(FallbackCapability, okStub("Crop Advisory", "fallback"))
	router := NewRouter(r, DefaultRoutes(), discardLogger())

	_, capability, err := router.Resolve(domain.Intent("unheard_of"), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if capability != FallbackCapability {
		t.Errorf("capability = %q, want %q", capability, FallbackCapability)
	}
}

func TestRouterFallsBackWhenCapabilityMissing(t *testing.T) {
	r := NewRegistry(discardLogger())
	r.Register(FallbackCapability, okStub("Crop Advisory", "fallback"))
	router := NewRouter(r, DefaultRoutes(), discardLogger())

	// Weather is mapped but not registered.
	_, capability, err := router.Resolve(domain.IntentWeather, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if capability != FallbackCapability {
		t.Errorf("capability = %q, want fallback %q", capability, FallbackCapability)
	}
}

func TestRouterErrorsWithoutFallbackResponder(t *testing.T) {
	r := NewRegistry(discardLogger())
	router := NewRouter(r, DefaultRoutes(), discardLogger())

	if _, _, err := router.Resolve(domain.IntentWeather, nil); err == nil {
		t.Fatal("expected error when fallback responder is unregistered")
	}
}

func TestRouterTargetLanguageSelectsTranslation(t *testing.T) {
	r := NewRegistry(discardLogger())
	r.Register("translation", okStub("Translation", "अनुवाद"))
	r.Register(FallbackCapability, okStub("Crop Advisory", "fallback"))
	router := NewRouter(r, DefaultRoutes(), discardLogger())

	overrides := &domain.ContextOverrides{TargetLanguage: "hi"}
	_, capability, err := router.Resolve(domain.IntentMarket, overrides)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if capability != "translation" {
		t.Errorf("capability = %q, want translation", capability)
	}
}

func TestDefaultRoutesOmitTranslation(t *testing.T) {
	for intent, capability := range DefaultRoutes() {
		if capability == "translation" {
			t.Errorf("intent %q routes to translation; it must only be reachable by override", intent)
		}
	}
}
