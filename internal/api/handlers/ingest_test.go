package handlers

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"logship/internal/engine/loganalytics"
	"logship/internal/platform/database"
	"logship/internal/platform/repositories"
)

const (
	sinkWorkspaceID  = "test-workspace"
	sinkWorkspaceKey = "c3VwZXItc2VjcmV0LXdvcmtzcGFjZS1rZXk="
)

func setupIngest(t *testing.T) (*IngestHandler, *repositories.RecordRepository, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	repo := repositories.NewRecordRepository(db)
	return NewIngestHandler(sinkWorkspaceID, sinkWorkspaceKey, repo), repo, db
}

func signedRequest(t *testing.T, body, logType, timestampField string) *http.Request {
	t.Helper()

	xmsDate := "Fri, 20 Jul 2018 16:28:59 GMT"
	sig, err := loganalytics.Signature(sinkWorkspaceKey, xmsDate, len(body))
	if err != nil {
		t.Fatalf("Signature() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/logs?api-version=2016-04-01", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(loganalytics.HeaderLogType, logType)
	req.Header.Set(loganalytics.HeaderXMSDate, xmsDate)
	req.Header.Set("Authorization", loganalytics.SharedKeyHeader(sinkWorkspaceID, sig))
	if timestampField != "" {
		req.Header.Set(loganalytics.HeaderTimeGeneratedField, timestampField)
	}
	return req
}

func TestIngestAcceptsSignedRequest(t *testing.T) {
	handler, repo, db := setupIngest(t)
	defer db.Close()

	rr := httptest.NewRecorder()
	handler.Handle(rr, signedRequest(t, `{"level":"info"}`, "AppEvents", "timestamp"))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	records, err := repo.ListByLogType("AppEvents")
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 stored record, got %d", len(records))
	}
	if records[0].Body != `{"level":"info"}` {
		t.Errorf("Stored body = %q", records[0].Body)
	}
	if records[0].TimestampField == nil || *records[0].TimestampField != "timestamp" {
		t.Errorf("Stored timestamp field = %v", records[0].TimestampField)
	}
}

func TestIngestRejectsBadSignature(t *testing.T) {
	handler, repo, db := setupIngest(t)
	defer db.Close()

	req := signedRequest(t, "{}", "AppEvents", "")
	req.Header.Set("Authorization", "SharedKey test-workspace:bm90LXRoZS1yaWdodC1zaWc=")

	rr := httptest.NewRecorder()
	handler.Handle(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rr.Code)
	}

	n, err := repo.Count()
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if n != 0 {
		t.Errorf("Rejected record was stored (%d rows)", n)
	}
}

func TestIngestRejectsTamperedBody(t *testing.T) {
	handler, _, db := setupIngest(t)
	defer db.Close()

	// Signature computed for "{}", body swapped afterwards.
	req := signedRequest(t, "{}", "AppEvents", "")
	req.Body = io.NopCloser(strings.NewReader(`{"injected":true}`))

	rr := httptest.NewRecorder()
	handler.Handle(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for tampered body, got %d", rr.Code)
	}
}

func TestIngestRequiresHeaders(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*http.Request)
		want   int
	}{
		{"missing api-version", func(r *http.Request) { r.URL.RawQuery = "" }, http.StatusBadRequest},
		{"missing Log-Type", func(r *http.Request) { r.Header.Del(loganalytics.HeaderLogType) }, http.StatusBadRequest},
		{"missing x-ms-date", func(r *http.Request) { r.Header.Del(loganalytics.HeaderXMSDate) }, http.StatusBadRequest},
		{"missing Authorization", func(r *http.Request) { r.Header.Del("Authorization") }, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, _, db := setupIngest(t)
			defer db.Close()

			req := signedRequest(t, "{}", "AppEvents", "")
			tc.mutate(req)

			rr := httptest.NewRecorder()
			handler.Handle(rr, req)

			if rr.Code != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, rr.Code)
			}
		})
	}
}

// Round-trip: the client signs, the sink verifies, through a real HTTP
// server.
func TestIngestClientRoundTrip(t *testing.T) {
	handler, repo, db := setupIngest(t)
	defer db.Close()

	server := httptest.NewServer(http.HandlerFunc(handler.Handle))
	defer server.Close()

	// Redirect the client's fixed https URL at the test server.
	transport := &rewriteTransport{target: server.URL}
	client, err := loganalytics.New(sinkWorkspaceID, sinkWorkspaceKey, transport)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := client.Send(context.Background(), `{"msg":"round trip"}`, "RoundTrip", ""); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	records, err := repo.ListByLogType("RoundTrip")
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 stored record, got %d", len(records))
	}
}

// rewriteTransport points the client's fixed workspace URL at a local test
// server while keeping path, query, headers, and body intact.
type rewriteTransport struct {
	target string
}

func (rt *rewriteTransport) Do(req *http.Request) (*http.Response, error) {
	rewritten, err := http.NewRequestWithContext(req.Context(), req.Method,
		rt.target+req.URL.Path+"?"+req.URL.RawQuery, req.Body)
	if err != nil {
		return nil, err
	}
	rewritten.Header = req.Header
	return http.DefaultClient.Do(rewritten)
}
