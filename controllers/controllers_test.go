package controllers

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/middleware"
	"AlterMoodGo/models"
	"AlterMoodGo/services"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type sliceStore struct {
	mu   sync.Mutex
	rows []models.EmotionRecord
}

func (s *sliceStore) filter(match func(models.EmotionRecord) bool) []models.EmotionRecord {
	var out []models.EmotionRecord
	for _, r := range s.rows {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *sliceStore) Create(_ context.Context, rec models.EmotionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rec)
	return nil
}

func (s *sliceStore) CreateBatch(_ context.Context, recs []models.EmotionRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range recs {
		if len(s.filter(func(r models.EmotionRecord) bool { return r.ID == rec.ID })) > 0 {
			continue
		}
		s.rows = append(s.rows, rec)
		n++
	}
	return n, nil
}

func (s *sliceStore) FindRange(_ context.Context, owner, subject string, r analytics.Range) ([]models.EmotionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(rec models.EmotionRecord) bool {
		return rec.OwnerID == owner && rec.SubjectID == subject && r.Contains(rec.CreatedAt)
	}), nil
}

func (s *sliceStore) Latest(_ context.Context, owner, subject string) (*models.EmotionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.filter(func(rec models.EmotionRecord) bool { return rec.OwnerID == owner && rec.SubjectID == subject })
	if len(rows) == 0 {
		return nil, services.ErrNotFound
	}
	return &rows[len(rows)-1], nil
}

func (s *sliceStore) RecentByOwner(_ context.Context, owner string, limit int) ([]models.EmotionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.filter(func(rec models.EmotionRecord) bool { return rec.OwnerID == owner })
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}

func (s *sliceStore) FindByOwnerSince(_ context.Context, owner string, since time.Time) ([]models.EmotionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(rec models.EmotionRecord) bool { return rec.OwnerID == owner && rec.LastModified.After(since) }), nil
}

func (s *sliceStore) ActiveSubjects(context.Context, time.Time) ([]models.SubjectRef, error) {
	return nil, nil
}

func record(id, subject, emotion string, intensity int, at time.Time) models.EmotionRecord {
	return models.EmotionRecord{
		ID:           id,
		OwnerID:      "sys",
		SubjectID:    subject,
		Emotion:      emotion,
		Emotions:     []string{emotion},
		Intensity:    intensity,
		CreatedAt:    at,
		LastModified: at,
	}
}

func setup(rows ...models.EmotionRecord) (*gin.Engine, *sliceStore) {
	store := &sliceStore{rows: rows}
	analyticsSvc := services.NewAnalyticsService(store, analytics.New(), services.AnalyticsOptions{
		Cache:    services.NewMemoryReportCache(time.Minute),
		CacheTTL: time.Minute,
		Now:      func() time.Time { return testNow },
	})
	emotionSvc := services.NewEmotionService(store, analyticsSvc, nil)

	ec := NewEmotionController(emotionSvc)
	sc := NewSyncController(emotionSvc)
	ac := NewAnalyticsController(analyticsSvc)

	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-UID"); uid != "" {
			c.Set(middleware.ContextUID, uid)
		}
	})
	api.GET("/emotions/vocabulary", ec.GetVocabulary)
	api.GET("/emotions/recent", ec.GetSystemRecent)
	api.POST("/alters/:alterId/emotions", ec.AddEmotion)
	api.GET("/alters/:alterId/emotions", ec.GetHistory)
	api.GET("/alters/:alterId/emotions/latest", ec.GetLatest)
	api.GET("/alters/:alterId/analytics", ac.GetReport)
	api.GET("/alters/:alterId/analytics/trend", ac.GetTrend)
	api.GET("/alters/:alterId/analytics/patterns", ac.GetPatterns)
	api.GET("/alters/:alterId/analytics/summary", ac.GetSummary)
	api.GET("/alters/:alterId/analytics/export", ac.ExportReport)
	api.POST("/sync/emotions", sc.SyncEmotions)
	api.GET("/sync/updates", sc.GetUpdates)
	return r, store
}

func request(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-UID", "sys")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestAddEmotion(t *testing.T) {
	t.Parallel()

	r, store := setup()

	w := request(r, http.MethodPost, "/api/v1/alters/alter-a/emotions",
		`{"emotion":"happy","emotions":["excited","happy"],"intensity":4,"createdAt":"2024-03-14T09:00:00Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var resp models.EmotionResponse
	decode(t, w, &resp)
	if resp.Emotion != "happy" || resp.AlterID != "alter-a" || len(resp.Emotions) != 2 {
		t.Fatalf("resp=%+v", resp)
	}
	if len(store.rows) != 1 {
		t.Fatalf("stored %d, want 1", len(store.rows))
	}
}

func TestAddEmotionValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing intensity", `{"emotion":"happy"}`},
		{"unknown tag", `{"emotion":"elated","intensity":3}`},
		{"out of range", `{"emotion":"happy","intensity":7}`},
		{"no tags", `{"intensity":3}`},
		{"malformed", `{`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, _ := setup()
			w := request(r, http.MethodPost, "/api/v1/alters/alter-a/emotions", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d, want 400, body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestMissingUID(t *testing.T) {
	t.Parallel()

	r, _ := setup()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/emotions/recent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", w.Code)
	}
}

func TestHistoryAndLatest(t *testing.T) {
	t.Parallel()

	r, _ := setup(
		record("e1", "alter-a", "sad", 2, testNow.AddDate(0, 0, -3)),
		record("e2", "alter-a", "calm", 3, testNow.AddDate(0, 0, -1)),
		record("e3", "alter-b", "angry", 5, testNow),
	)

	w := request(r, http.MethodGet, "/api/v1/alters/alter-a/emotions?from=2024-03-13T00:00:00Z&to=2024-03-15T23:59:59Z", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history status=%d body=%s", w.Code, w.Body.String())
	}
	var history struct {
		Emotions []models.EmotionResponse `json:"emotions"`
	}
	decode(t, w, &history)
	if len(history.Emotions) != 1 || history.Emotions[0].ID != "e2" {
		t.Fatalf("history=%+v", history.Emotions)
	}

	w = request(r, http.MethodGet, "/api/v1/alters/alter-a/emotions?from=2024-03-15T00:00:00Z&to=2024-03-01T00:00:00Z", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("inverted range status=%d, want 400", w.Code)
	}

	w = request(r, http.MethodGet, "/api/v1/alters/alter-a/emotions/latest", "")
	var latest models.EmotionResponse
	decode(t, w, &latest)
	if w.Code != http.StatusOK || latest.ID != "e2" {
		t.Fatalf("latest status=%d body=%s", w.Code, w.Body.String())
	}

	w = request(r, http.MethodGet, "/api/v1/alters/nobody/emotions/latest", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("latest missing status=%d, want 404", w.Code)
	}
}

func TestSystemRecent(t *testing.T) {
	t.Parallel()

	r, _ := setup(
		record("e1", "alter-a", "sad", 2, testNow.AddDate(0, 0, -3)),
		record("e2", "alter-a", "calm", 3, testNow.AddDate(0, 0, -1)),
		record("e3", "alter-b", "angry", 5, testNow),
	)

	w := request(r, http.MethodGet, "/api/v1/emotions/recent", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Emotions map[string]models.EmotionResponse `json:"emotions"`
	}
	decode(t, w, &resp)
	if len(resp.Emotions) != 2 || resp.Emotions["alter-a"].ID != "e2" || resp.Emotions["alter-b"].ID != "e3" {
		t.Fatalf("recent=%+v", resp.Emotions)
	}
}

func TestVocabulary(t *testing.T) {
	t.Parallel()

	r, _ := setup()
	w := request(r, http.MethodGet, "/api/v1/emotions/vocabulary", "")
	var resp models.VocabularyResponse
	decode(t, w, &resp)
	if resp.Version != analytics.VocabularyVersion || len(resp.Tags) != 20 {
		t.Fatalf("vocabulary=%+v", resp)
	}
	if resp.Tags[0].Tag != "happy" || resp.Tags[0].Valence != 5 {
		t.Fatalf("first tag=%+v, want happy/5", resp.Tags[0])
	}
}

func TestReportEndpoints(t *testing.T) {
	t.Parallel()

	rows := []models.EmotionRecord{
		record("e1", "alter-a", "happy", 4, testNow),
		record("e2", "alter-a", "happy", 4, testNow.AddDate(0, 0, -1)),
		record("e3", "alter-a", "sad", 2, testNow.AddDate(0, 0, -2)),
	}
	r, _ := setup(rows...)

	w := request(r, http.MethodGet, "/api/v1/alters/alter-a/analytics?period=30d", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var rep analytics.Report
	decode(t, w, &rep)
	if rep.Period != analytics.Period30Days || len(rep.Trend) != 30 || rep.Summary.TotalEntries != 3 {
		t.Fatalf("report period=%s trend=%d total=%d", rep.Period, len(rep.Trend), rep.Summary.TotalEntries)
	}

	w = request(r, http.MethodGet, "/api/v1/alters/alter-a/analytics?period=2w", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad period status=%d, want 400", w.Code)
	}

	w = request(r, http.MethodGet, "/api/v1/alters/alter-a/analytics/trend", "")
	var trend struct {
		Period analytics.Period       `json:"period"`
		Trend  []analytics.TrendPoint `json:"trend"`
	}
	decode(t, w, &trend)
	if trend.Period != analytics.Period7Days || len(trend.Trend) != 7 {
		t.Fatalf("trend=%+v", trend)
	}

	w = request(r, http.MethodGet, "/api/v1/alters/alter-a/analytics/summary?period=7d", "")
	var summary analytics.Summary
	decode(t, w, &summary)
	if summary.TotalEntries != 3 || summary.AvgIntensity != 3.3 {
		t.Fatalf("summary=%+v", summary)
	}

	w = request(r, http.MethodGet, "/api/v1/alters/alter-a/analytics/patterns", "")
	var patterns struct {
		Insights []analytics.Insight `json:"insights"`
		Messages []string            `json:"messages"`
	}
	decode(t, w, &patterns)
	if len(patterns.Insights) != 1 || patterns.Insights[0].Kind != analytics.InsightInsufficientData {
		t.Fatalf("patterns=%+v", patterns)
	}
	if len(patterns.Messages) != 1 || patterns.Messages[0] == "" {
		t.Fatalf("messages=%v", patterns.Messages)
	}
}

func TestReportCorruptRecord(t *testing.T) {
	t.Parallel()

	r, _ := setup(record("bad", "alter-a", "happy", 0, testNow))
	w := request(r, http.MethodGet, "/api/v1/alters/alter-a/analytics", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", w.Code)
	}
}

func TestExportReport(t *testing.T) {
	t.Parallel()

	r, _ := setup(record("e1", "alter-a", "happy", 4, testNow))
	w := request(r, http.MethodGet, "/api/v1/alters/alter-a/analytics/export?period=7d", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "emotions-alter-a-7d-2024-03-15.xlsx") {
		t.Fatalf("Content-Disposition=%q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader error: %v", err)
	}
	defer f.Close()
	if got := len(f.GetSheetList()); got != 4 {
		t.Fatalf("sheets=%d, want 4", got)
	}
}

func TestSyncEmotions(t *testing.T) {
	t.Parallel()

	r, store := setup(record("e1", "alter-a", "happy", 4, testNow))

	body := `[
		{"id":"e1","alterId":"alter-a","emotion":"happy","intensity":4,"createdAt":"2024-03-15T12:00:00Z"},
		{"id":"e2","alterId":"alter-b","emotions":["tired","numb"],"intensity":2,"createdAt":"2024-03-14T08:00:00Z"}
	]`
	w := request(r, http.MethodPost, "/api/v1/sync/emotions", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp models.SyncEmotionsResponse
	decode(t, w, &resp)
	if resp.Imported != 1 || resp.Skipped != 1 {
		t.Fatalf("resp=%+v", resp)
	}
	if len(store.rows) != 2 {
		t.Fatalf("stored %d, want 2", len(store.rows))
	}

	w = request(r, http.MethodPost, "/api/v1/sync/emotions", `[{"id":"e9","alterId":"alter-a","emotion":"happy","intensity":9,"createdAt":"2024-03-15T12:00:00Z"}]`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid batch status=%d, want 400", w.Code)
	}
}

func TestGetUpdates(t *testing.T) {
	t.Parallel()

	r, _ := setup(
		record("e1", "alter-a", "happy", 4, testNow.AddDate(0, 0, -2)),
		record("e2", "alter-b", "calm", 3, testNow),
	)

	w := request(r, http.MethodGet, "/api/v1/sync/updates?lastSyncDate=2024-03-14T00:00:00Z", "")
	var resp struct {
		Emotions     []models.EmotionResponse `json:"emotions"`
		LastSyncDate string                   `json:"lastSyncDate"`
	}
	decode(t, w, &resp)
	if len(resp.Emotions) != 1 || resp.Emotions[0].ID != "e2" {
		t.Fatalf("updates=%+v", resp.Emotions)
	}
	if resp.LastSyncDate != "2024-03-15T12:00:00Z" {
		t.Fatalf("lastSyncDate=%q, want server time", resp.LastSyncDate)
	}

	w = request(r, http.MethodGet, "/api/v1/sync/updates?lastSyncDate=yesterday", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}
