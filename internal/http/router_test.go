package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/racesource"
	"getabib/internal/repository"
	"getabib/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	runnerRepo := repository.NewMemoryRunnerRepository()
	traitRepo := repository.NewMemoryTraitRepository()
	savedRepo := repository.NewMemorySavedRaceRepository()
	viewRepo := repository.NewMemoryRaceViewRepository()
	kv := repository.NewMemoryKVStore()

	jwtSvc := service.NewJWTServiceWithStore("test-secret", time.Hour, 24*time.Hour, service.NewMemoryRefreshTokenStore())
	runnerSvc := service.NewRunnerService(logger, runnerRepo, traitRepo, viewRepo, savedRepo)
	profileSvc := service.NewProfileService(logger, traitRepo)
	goalsSvc := service.NewGoalsService(logger, kv)
	feedSvc := service.NewFeedService(logger, racesource.NewStaticSource(nil), runnerSvc, goalsSvc,
		service.NewMemoryRefreshRateLimiter(time.Hour, 1), 2)
	savedSvc := service.NewSavedRaceService(logger, savedRepo, feedSvc)

	return NewRouter(logger, jwtSvc, Handlers{
		Runners:  NewRunnerHandler(logger, runnerSvc, jwtSvc),
		Profiles: NewProfileHandler(logger, profileSvc),
		Goals:    NewGoalHandler(logger, goalsSvc),
		Feed:     NewFeedHandler(logger, feedSvc, runnerSvc),
		Saved:    NewSavedHandler(logger, savedSvc),
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

type registerResponse struct {
	Runner domain.Runner     `json:"runner"`
	Tokens service.TokenPair `json:"tokens"`
}

func register(t *testing.T, r *gin.Engine, deviceID string) registerResponse {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/runners", "", map[string]string{"device_id": deviceID, "display_name": "Sam"})
	if rec.Code != http.StatusCreated && rec.Code != http.StatusOK {
		t.Fatalf("register: expected 201/200, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[registerResponse](t, rec)
}

func TestRouter_RegisterIsIdempotent(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/runners", "", map[string]string{"device_id": "device-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	first := decode[registerResponse](t, rec)

	rec = doJSON(t, r, http.MethodPost, "/runners", "", map[string]string{"device_id": "device-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for known device, got %d", rec.Code)
	}
	second := decode[registerResponse](t, rec)
	if first.Runner.ID != second.Runner.ID {
		t.Fatalf("expected same runner, got %s and %s", first.Runner.ID, second.Runner.ID)
	}

	rec = doJSON(t, r, http.MethodPost, "/runners", "", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without device, got %d", rec.Code)
	}
}

func TestRouter_AuthRefreshAndLogout(t *testing.T) {
	r := newTestRouter(t)
	reg := register(t, r, "device-2")

	rec := doJSON(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": reg.Tokens.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rotated := decode[struct {
		Tokens service.TokenPair `json:"tokens"`
	}](t, rec)

	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": reg.Tokens.RefreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected rotated token rejected, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/auth/logout", "", map[string]string{"refresh_token": rotated.Tokens.RefreshToken})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": rotated.Tokens.RefreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token rejected, got %d", rec.Code)
	}
}

func TestRouter_LogoutAllDevices(t *testing.T) {
	r := newTestRouter(t)
	first := register(t, r, "device-3")
	second := register(t, r, "device-3")

	rec := doJSON(t, r, http.MethodPost, "/auth/logout", "", map[string]any{
		"refresh_token": first.Tokens.RefreshToken,
		"all_devices":   true,
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": second.Tokens.RefreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected every session revoked, got %d", rec.Code)
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/runners/me", "/feed", "/goals", "/saved", "/races"} {
		rec := doJSON(t, r, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
	if rec := doJSON(t, r, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
}

func TestRouter_RunnerProfileFlow(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "device-3").Tokens.AccessToken

	rec := doJSON(t, r, http.MethodPut, "/runners/me/location", token, map[string]any{"city": "boston", "radius": 50})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	located := decode[registerResponse](t, rec)
	if located.Runner.Location == nil || located.Runner.Location.State != "MA" || located.Runner.Location.RadiusMiles != 50 {
		t.Fatalf("unexpected location %+v", located.Runner.Location)
	}

	rec = doJSON(t, r, http.MethodPut, "/runners/me/location", token, map[string]any{"city": "xyzzy"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown city, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPut, "/runners/me/preferences", token, map[string]any{
		"preferredDistances": []string{"ultra", "mile"},
		"terrain":            map[string]int{"trail": 140},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	prefs := decode[registerResponse](t, rec).Runner.Preferences
	if len(prefs.PreferredDistances) != 1 || prefs.Terrain["trail"] != 100 {
		t.Fatalf("expected sanitized preferences, got %+v", prefs)
	}

	if rec = doJSON(t, r, http.MethodDelete, "/runners/me/location", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	me := decode[registerResponse](t, doJSON(t, r, http.MethodGet, "/runners/me", token, nil))
	if me.Runner.Location != nil {
		t.Fatalf("expected location cleared")
	}
}

func TestRouter_QuizAndPersonality(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "device-4").Tokens.AccessToken

	if rec := doJSON(t, r, http.MethodGet, "/quiz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected quiz 200, got %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodPost, "/quiz", token, map[string]any{"answers": []map[string]string{
		{"questionId": "terrain", "optionValue": "trail"},
		{"questionId": "distance", "optionValue": "ultra"},
	}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		Personality domain.RunnerPersonality `json:"personality"`
	}](t, rec)
	if got.Personality.PrimaryType != domain.PersonalityTrailSeeker {
		t.Fatalf("expected trail seeker, got %s", got.Personality.PrimaryType)
	}

	rec = doJSON(t, r, http.MethodPost, "/quiz", token, map[string]any{"answers": []map[string]string{
		{"questionId": "terrain", "optionValue": "lava"},
	}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown option, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodDelete, "/personality", token, nil)
	reset := decode[struct {
		Personality domain.RunnerPersonality `json:"personality"`
	}](t, rec)
	if reset.Personality.PrimaryType != domain.PersonalityNewbie {
		t.Fatalf("expected newbie after reset, got %s", reset.Personality.PrimaryType)
	}
}

func TestRouter_GoalsAndGoalFeed(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "device-5").Tokens.AccessToken

	rec := doJSON(t, r, http.MethodPost, "/goals/analyze", "", map[string]string{"text": "thinking about my first ultra"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPut, "/goals", token, map[string]string{"text": "thinking about my first ultra"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	state := decode[struct {
		Goals domain.GoalsState `json:"goals"`
	}](t, rec).Goals
	if len(state.ConfirmedTags) != 1 || state.ConfirmedTags[0].ID != "pref-ultra" {
		t.Fatalf("expected pref-ultra confirmed, got %+v", state.ConfirmedTags)
	}

	rec = doJSON(t, r, http.MethodGet, "/feed/goals?limit=2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	feed := decode[struct {
		Races []domain.ScoredRace `json:"races"`
	}](t, rec).Races
	if len(feed) != 2 {
		t.Fatalf("expected 2 races, got %d", len(feed))
	}
	for _, race := range feed {
		if race.Category != domain.CategoryUltra || race.GoalScore == nil {
			t.Fatalf("expected ultras ranked first with goal score, got %+v", race)
		}
	}

	rec = doJSON(t, r, http.MethodPost, "/goals/tags/not-a-tag/confirm", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown tag, got %d", rec.Code)
	}
	if rec = doJSON(t, r, http.MethodDelete, "/goals", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRouter_FeedRacesAndSaved(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "device-6").Tokens.AccessToken

	rec := doJSON(t, r, http.MethodGet, "/feed?limit=3&exclude=1,2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	feed := decode[struct {
		Races []domain.ScoredRace `json:"races"`
	}](t, rec).Races
	if len(feed) != 3 {
		t.Fatalf("expected 3 races, got %d", len(feed))
	}
	for _, race := range feed {
		if race.ID == "1" || race.ID == "2" {
			t.Fatalf("expected excluded races missing")
		}
	}

	if rec = doJSON(t, r, http.MethodGet, "/feed?limit=abc", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/races?categories=ultra&terrain=trail", token, nil)
	races := decode[struct {
		Races []domain.Race `json:"races"`
		Total int           `json:"total"`
	}](t, rec)
	if races.Total != 2 {
		t.Fatalf("expected 2 trail ultras, got %d", races.Total)
	}
	if rec = doJSON(t, r, http.MethodGet, "/races?start_date=tomorrow", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	if rec = doJSON(t, r, http.MethodGet, "/races/3", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected race 3, got %d", rec.Code)
	}
	if rec = doJSON(t, r, http.MethodGet, "/races/404", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec = doJSON(t, r, http.MethodPost, "/races/3/view", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	stats := decode[map[string]any](t, doJSON(t, r, http.MethodGet, "/races/stats", token, nil))
	if stats["totalRaces"].(float64) != 10 {
		t.Fatalf("expected 10 races in stats, got %v", stats["totalRaces"])
	}

	if rec = doJSON(t, r, http.MethodPost, "/races/refresh", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected first refresh allowed, got %d", rec.Code)
	}
	if rec = doJSON(t, r, http.MethodPost, "/races/refresh", token, nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second refresh, got %d", rec.Code)
	}

	if rec = doJSON(t, r, http.MethodPost, "/saved/3", token, nil); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec = doJSON(t, r, http.MethodPost, "/saved/404", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown race, got %d", rec.Code)
	}
	saved := decode[struct {
		Saved []domain.SavedRace `json:"saved"`
	}](t, doJSON(t, r, http.MethodGet, "/saved", token, nil)).Saved
	if len(saved) != 1 || saved[0].Race.ID != "3" {
		t.Fatalf("expected race 3 saved, got %+v", saved)
	}

	toggled := decode[struct {
		Saved bool `json:"saved"`
	}](t, doJSON(t, r, http.MethodPost, "/saved/3/toggle", token, nil))
	if toggled.Saved {
		t.Fatalf("expected toggle to unsave")
	}
	if rec = doJSON(t, r, http.MethodDelete, "/saved/3", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for race not saved, got %d", rec.Code)
	}
	if rec = doJSON(t, r, http.MethodDelete, "/saved", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
