package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwise1/findlink/config"
	deps "github.com/bwise1/findlink/internal/debs"
	"github.com/golang-jwt/jwt"
)

func newTestAPI(t *testing.T) (*API, http.Handler) {
	t.Helper()

	cfg := &config.Config{
		Port:                8080,
		StoreBackend:        "memory",
		JwtSecret:           "test-secret",
		EmbeddingDimensions: 32,
	}
	api := &API{
		Config: cfg,
		Deps:   deps.New(cfg),
	}
	api.Init()
	return api, api.setUpServerHandler()
}

func accessToken(t *testing.T, secret string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "officer-7",
		"typ": "access",
		"exp": float64(time.Now().Add(time.Hour).Unix()),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-Request-Source", "test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequestSourceRequired(t *testing.T) {
	_, h := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/sightings/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected request without X-Request-Source to fail, got %d", rec.Code)
	}
}

func TestMutatingRoutesRequireToken(t *testing.T) {
	_, h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/cases/", "", map[string]string{"name": "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}
}

func TestSightingIntakeAndFetch(t *testing.T) {
	_, h := newTestAPI(t)

	body := map[string]interface{}{
		"sighted_date": "2025-05-12",
		"sighted_location": map[string]interface{}{
			"city":      "Milan",
			"latitude":  45.4642,
			"longitude": 9.19,
		},
		"description":      "person in a red jacket near the station",
		"confidence_level": "Medium",
		"source_type":      "Witness",
	}

	rec := doJSON(t, h, http.MethodPost, "/sightings/", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sighting: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	if created.Data.ID == "" {
		t.Fatal("expected created sighting id")
	}

	rec = doJSON(t, h, http.MethodGet, "/sightings/"+created.Data.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get sighting: expected 200, got %d", rec.Code)
	}
}

func TestCaseLifecycleOverHTTP(t *testing.T) {
	api, h := newTestAPI(t)
	token := accessToken(t, api.Config.JwtSecret)

	body := map[string]interface{}{
		"name":           "Jane Roe",
		"last_seen_date": "2025-05-10",
		"last_seen_location": map[string]interface{}{
			"city":      "Milan",
			"latitude":  45.4642,
			"longitude": 9.19,
		},
		"height": "5'8\"",
		"weight": "140",
	}

	rec := doJSON(t, h, http.MethodPost, "/cases/", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create case: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}

	rec = doJSON(t, h, http.MethodGet, "/cases/"+created.Data.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get case: expected 200, got %d", rec.Code)
	}

	var fetched struct {
		Data struct {
			Status   string   `json:"status"`
			HeightCM *float64 `json:"height_cm"`
			WeightKG *float64 `json:"weight_kg"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decoding get response: %v", err)
	}
	if fetched.Data.Status != "Active" {
		t.Fatalf("expected new case to be Active, got %q", fetched.Data.Status)
	}
	if fetched.Data.HeightCM == nil || *fetched.Data.HeightCM < 172 || *fetched.Data.HeightCM > 173 {
		t.Fatalf("expected 5'8\" to parse near 172.7cm, got %v", fetched.Data.HeightCM)
	}
	if fetched.Data.WeightKG == nil || *fetched.Data.WeightKG < 63 || *fetched.Data.WeightKG > 64 {
		t.Fatalf("expected bare 140 to read as pounds, got %v", fetched.Data.WeightKG)
	}

	rec = doJSON(t, h, http.MethodGet, "/cases/nearby?latitude=45.46&longitude=9.19&radius=5", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("nearby cases: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/cases/nearby?latitude=abc&longitude=9.19", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("nearby cases with bad latitude: expected 400, got %d", rec.Code)
	}
}

func TestSimilarSightingsNeedsRefreshOverHTTP(t *testing.T) {
	api, h := newTestAPI(t)
	token := accessToken(t, api.Config.JwtSecret)

	body := map[string]interface{}{
		"name":           "John Doe",
		"last_seen_date": "2025-05-10",
		"description":    "red jacket, tall",
		"last_seen_location": map[string]interface{}{
			"city":      "Milan",
			"latitude":  45.4642,
			"longitude": 9.19,
		},
	}
	rec := doJSON(t, h, http.MethodPost, "/cases/", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create case: expected 201, got %d", rec.Code)
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}

	rec = doJSON(t, h, http.MethodGet, "/cases/"+created.Data.ID+"/similar-sightings", "", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("ranking before refresh: expected 422, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/cases/refresh-embeddings", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh embeddings: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/cases/"+created.Data.ID+"/similar-sightings", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ranking after refresh: expected 200, got %d", rec.Code)
	}
}
