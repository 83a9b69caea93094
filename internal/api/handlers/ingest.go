package handlers

import (
	"crypto/hmac"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"logship/internal/engine/loganalytics"
	"logship/internal/platform/models"
	"logship/internal/platform/repositories"
)

// IngestHandler implements the receiving side of the data collector
// contract: it recomputes the SharedKey signature from the request it
// actually received and persists the record when the signatures match.
type IngestHandler struct {
	workspaceID  string
	workspaceKey string
	repo         *repositories.RecordRepository
}

func NewIngestHandler(workspaceID, workspaceKey string, repo *repositories.RecordRepository) *IngestHandler {
	return &IngestHandler{
		workspaceID:  workspaceID,
		workspaceKey: workspaceKey,
		repo:         repo,
	}
}

func (h *IngestHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("api-version") == "" {
		http.Error(w, "missing api-version", http.StatusBadRequest)
		return
	}

	logType := r.Header.Get(loganalytics.HeaderLogType)
	xmsDate := r.Header.Get(loganalytics.HeaderXMSDate)
	authorization := r.Header.Get("Authorization")

	if logType == "" || xmsDate == "" {
		http.Error(w, "missing Log-Type or x-ms-date header", http.StatusBadRequest)
		return
	}
	if authorization == "" {
		http.Error(w, "missing Authorization header", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}

	// The signature covers the byte length of the body as received, not
	// any declared Content-Length.
	expectedSig, err := loganalytics.Signature(h.workspaceKey, xmsDate, len(body))
	if err != nil {
		log.Error().Err(err).Msg("configured workspace key is not valid base64")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	expected := loganalytics.SharedKeyHeader(h.workspaceID, expectedSig)

	if !hmac.Equal([]byte(authorization), []byte(expected)) {
		log.Warn().Str("log_type", logType).Msg("rejected request with bad signature")
		http.Error(w, "signature mismatch", http.StatusForbidden)
		return
	}

	rec := &models.ReceivedRecord{
		LogType:    logType,
		Body:       string(body),
		XMSDate:    xmsDate,
		ReceivedAt: time.Now().Unix(),
	}
	if tsField := r.Header.Get(loganalytics.HeaderTimeGeneratedField); tsField != "" {
		rec.TimestampField = &tsField
	}

	if err := h.repo.Create(rec); err != nil {
		log.Error().Err(err).Msg("failed to store record")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Info().Str("record_id", rec.ID).Str("log_type", logType).Int("bytes", len(body)).Msg("record accepted")
	w.WriteHeader(http.StatusOK)
}
