package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/perzonai/persona-engine/internal/config"
	"github.com/perzonai/persona-engine/internal/llm"
	"github.com/perzonai/persona-engine/internal/models"
	"github.com/perzonai/persona-engine/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func testConfig() config.Config {
	return config.Config{
		BaseURL:       "http://localhost:3000",
		LLMTimeout:    time.Second,
		ShareTTL:      7 * 24 * time.Hour,
		MaxUploadSize: 10 << 20,
		MaxTurns:      100,
		DevMode:       true,
	}
}

// newTestServer builds the full router backed by an offline gateway, so
// every LLM call serves deterministic fallback data.
func newTestServer(t *testing.T, cfg config.Config) (*Handler, *gin.Engine) {
	t.Helper()
	log := zap.NewNop()

	gateway, err := llm.New(context.Background(), "", "gemini-2.5-flash-lite", cfg.LLMTimeout, log)
	require.NoError(t, err)

	h := NewHandler(cfg, log, gateway,
		store.NewPersonaStore(log),
		store.NewShareRegistry(cfg.ShareTTL, log),
		store.NewConversationStore(cfg.MaxTurns),
	)
	return h, NewRouter(h)
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validGenerateBody() map[string]any {
	return map[string]any{
		"productPositioning": "Affordable project management for small design teams",
		"industry":           "SaaS",
		"targetRegion":       "North America",
		"productCategory":    "Productivity software",
	}
}

func seedPersona(h *Handler, id, name string) models.Persona {
	p := models.Persona{ID: id, Name: name}
	p.Demographics.Age = 30
	p.Demographics.Occupation = "Engineer"
	p.BuyingBehavior.BudgetRange = "$100-500"
	p.Traits = []string{"Budget-conscious"}
	p.Normalize()
	h.personas.Put([]models.Persona{p})
	return p
}

func TestHealth(t *testing.T) {
	t.Parallel()

	_, r := newTestServer(t, testConfig())
	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestGenerate_OfflineServesFallbackTrio(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	w := doJSON(r, http.MethodPost, "/api/personas/generate", validGenerateBody())
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success   bool             `json:"success"`
		Personas  []models.Persona `json:"personas"`
		SessionID string           `json:"sessionId"`
		Degraded  bool             `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.True(t, resp.Degraded, "offline gateway must flag the response")
	assert.NotEmpty(t, resp.SessionID)
	require.Len(t, resp.Personas, 3)
	assert.Equal(t, "Sarah Chen", resp.Personas[0].Name)
	assert.Equal(t, "Mike Rodriguez", resp.Personas[1].Name)
	assert.Equal(t, "Emma Thompson", resp.Personas[2].Name)

	for _, p := range resp.Personas {
		assert.NotEmpty(t, p.ID)
		_, ok := h.personas.Get(p.ID)
		assert.True(t, ok, "generated personas must be stored")
	}
}

func TestGenerate_RejectsShortPositioning(t *testing.T) {
	t.Parallel()

	_, r := newTestServer(t, testConfig())
	body := validGenerateBody()
	body["productPositioning"] = "too short"
	w := doJSON(r, http.MethodPost, "/api/personas/generate", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestRefine_HighBudgetSwapsRange(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")

	body := map[string]any{
		"personaIds": []string{p.ID},
		"refinements": map[string]any{
			"budgetLevel":   90,
			"customerFocus": 50,
			"tone":          "formal",
		},
		"originalContext": validGenerateBody(),
	}
	w := doJSON(r, http.MethodPost, "/api/personas/refine", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Personas []models.Persona `json:"personas"`
		Degraded bool             `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Personas, 1)
	assert.True(t, resp.Degraded)
	assert.Equal(t, "$500-2000", resp.Personas[0].BuyingBehavior.BudgetRange)
	assert.Contains(t, resp.Personas[0].Traits, "Premium-focused")
	assert.Equal(t, p.ID, resp.Personas[0].ID, "identity must survive refinement")

	stored, ok := h.personas.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, "$500-2000", stored.BuyingBehavior.BudgetRange)
}

func TestRefine_UnknownIDs(t *testing.T) {
	t.Parallel()

	_, r := newTestServer(t, testConfig())
	body := map[string]any{
		"personaIds":      []string{"persona_missing"},
		"refinements":     map[string]any{"budgetLevel": 50, "customerFocus": 50, "tone": "friendly"},
		"originalContext": validGenerateBody(),
	}
	w := doJSON(r, http.MethodPost, "/api/personas/refine", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChat_RecordsConversation(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")

	w := doJSON(r, http.MethodPost, "/api/personas/chat", map[string]any{
		"personaId": p.ID,
		"message":   "What do you think about our pricing?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool   `json:"success"`
		Response string `json:"response"`
		Degraded bool   `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Degraded)
	assert.NotEmpty(t, resp.Response)

	log := h.conversations.Get(p.ID)
	require.Len(t, log, 2)
	assert.Equal(t, models.RoleUser, log[0].Role)
	assert.Equal(t, "What do you think about our pricing?", log[0].Content)
	assert.Equal(t, models.RoleAssistant, log[1].Role)
	assert.Equal(t, resp.Response, log[1].Content)
}

func TestChat_UnknownPersona(t *testing.T) {
	t.Parallel()

	_, r := newTestServer(t, testConfig())
	w := doJSON(r, http.MethodPost, "/api/personas/chat", map[string]any{
		"personaId": "persona_missing",
		"message":   "hello",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchPersonas(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	seedPersona(h, "persona_1", "Sarah Chen")

	w := doJSON(r, http.MethodGet, "/api/personas/search?q=sarah", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = doJSON(r, http.MethodGet, "/api/personas/search?q=nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)

	w = doJSON(r, http.MethodGet, "/api/personas/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePersona_CascadesConversation(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")
	h.conversations.Append(p.ID, models.ConversationTurn{Role: models.RoleUser, Content: "hi"})

	w := doJSON(r, http.MethodDelete, "/api/personas/"+p.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, h.conversations.Get(p.ID))

	w = doJSON(r, http.MethodDelete, "/api/personas/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShare_CreateAndResolve(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")

	w := doJSON(r, http.MethodPost, "/api/share", map[string]any{
		"personaIds": []string{p.ID},
		"settings":   map[string]any{"publicAccess": true},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		ShareID  string `json:"shareId"`
		ShareURL string `json:"shareUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "http://localhost:3000/shared/"+created.ShareID, created.ShareURL)

	w = doJSON(r, http.MethodGet, "/api/share?id="+created.ShareID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resolved struct {
		Personas []models.Persona `json:"personas"`
		Metadata struct {
			AccessCount int `json:"accessCount"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	require.Len(t, resolved.Personas, 1)
	assert.Equal(t, "Ada", resolved.Personas[0].Name)
	assert.Equal(t, 1, resolved.Metadata.AccessCount)
}

func TestShare_PasswordGate(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")

	w := doJSON(r, http.MethodPost, "/api/share", map[string]any{
		"personaIds": []string{p.ID},
		"settings":   map[string]any{"password": "hunter2"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ShareID string `json:"shareId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(r, http.MethodGet, "/api/share?id="+created.ShareID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/share?id="+created.ShareID+"&password=hunter2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShare_AbsoluteExpiryOverride(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")

	expiresAt := time.Now().UTC().Add(time.Hour)
	w := doJSON(r, http.MethodPost, "/api/share", map[string]any{
		"personaIds": []string{p.ID},
		"settings":   map[string]any{"expiresAt": expiresAt.Format(time.RFC3339Nano)},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		ExpiresAt time.Time `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.WithinDuration(t, expiresAt, created.ExpiresAt, time.Minute,
		"absolute expiry must win over the server default")

	// A past expiry is rejected rather than silently defaulted.
	w = doJSON(r, http.MethodPost, "/api/share", map[string]any{
		"personaIds": []string{p.ID},
		"settings":   map[string]any{"expiresAt": time.Now().UTC().Add(-time.Hour).Format(time.RFC3339Nano)},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShare_ExpiresInHoursOverride(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")

	w := doJSON(r, http.MethodPost, "/api/share", map[string]any{
		"personaIds": []string{p.ID},
		"settings":   map[string]any{"expiresIn": 48},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		ExpiresAt time.Time `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.WithinDuration(t, time.Now().UTC().Add(48*time.Hour), created.ExpiresAt, time.Minute)
}

func TestShare_NotFoundAndBadRequest(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	seedPersona(h, "persona_1", "Ada")

	w := doJSON(r, http.MethodGet, "/api/share?id=share_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/share", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/share", map[string]any{
		"personaIds": []string{"persona_missing"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport_JSONByQuery(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")

	w := doJSON(r, http.MethodGet, "/api/personas/export/json?ids="+p.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".json")
	assert.Contains(t, w.Body.String(), `"name": "Ada"`)
}

func TestExport_CSVByBody(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")

	w := doJSON(r, http.MethodPost, "/api/export/personas", map[string]any{
		"personaIds": []string{p.ID},
		"format":     "csv",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "Ada")
}

func TestExport_Errors(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	p := seedPersona(h, "persona_1", "Ada")

	w := doJSON(r, http.MethodGet, "/api/personas/export/xml?ids="+p.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/personas/export/json?ids=persona_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/personas/export/json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartFile(t *testing.T, field, filename, mimeType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestUpload_CSV(t *testing.T) {
	t.Parallel()

	_, r := newTestServer(t, testConfig())
	body, contentType := multipartFile(t, "file", "customers.csv", "text/csv", []byte("name,age\nAda,30\n"))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success  bool   `json:"success"`
		FileID   string `json:"fileId"`
		FileType string `json:"fileType"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "csv", resp.FileType)
	assert.NotEmpty(t, resp.FileID)
	assert.Contains(t, w.Body.String(), `"totalRows":1`)
}

func TestUpload_Rejections(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxUploadSize = 16
	_, r := newTestServer(t, cfg)

	// No file part at all.
	w := doJSON(r, http.MethodPost, "/api/upload", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Disallowed MIME type.
	body, contentType := multipartFile(t, "file", "img.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid file type")

	// Over the configured size ceiling.
	body, contentType = multipartFile(t, "file", "big.txt", "text/plain", bytes.Repeat([]byte("a"), 32))
	req = httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file too large")

	// Malformed JSON payload inside an accepted type.
	body, contentType = multipartFile(t, "file", "broken.json", "application/json", []byte(`{"a":`))
	req = httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON format")
}

func TestGenerate_MultipartWithAttachedFile(t *testing.T) {
	t.Parallel()

	_, r := newTestServer(t, testConfig())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range validGenerateBody() {
		require.NoError(t, mw.WriteField(k, v.(string)))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="files"; filename="survey.csv"`)
	header.Set("Content-Type", "text/csv")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("question,answer\nprice,too high\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/personas/generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded":true`)
}

func TestTrends(t *testing.T) {
	t.Parallel()

	_, r := newTestServer(t, testConfig())
	w := doJSON(r, http.MethodGet, "/api/trends", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success            bool             `json:"success"`
		TrendingTopics     []map[string]any `json:"trendingTopics"`
		ContentPerformance []map[string]any `json:"contentPerformance"`
		Demographics       []map[string]any `json:"demographics"`
		EngagementMetrics  []map[string]any `json:"engagementMetrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.TrendingTopics, 8)
	assert.Len(t, resp.ContentPerformance, 6)
	assert.Len(t, resp.Demographics, 5)
	assert.Len(t, resp.EngagementMetrics, 12)
}

func TestListAndStats(t *testing.T) {
	t.Parallel()

	h, r := newTestServer(t, testConfig())
	seedPersona(h, "persona_1", "Ada")
	seedPersona(h, "persona_2", "Grace")

	w := doJSON(r, http.MethodGet, "/api/personas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)

	w = doJSON(r, http.MethodGet, "/api/personas/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalPersonas":2`)
}
