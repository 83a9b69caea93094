package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"logship/internal/platform/models"
)

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(rec *models.ReceivedRecord) error {
	if rec.ID == "" {
		rec.ID = "rec_" + uuid.New().String()
	}
	if rec.ReceivedAt == 0 {
		rec.ReceivedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO received_records (id, log_type, body, timestamp_field, x_ms_date, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, rec.ID, rec.LogType, rec.Body, rec.TimestampField, rec.XMSDate, rec.ReceivedAt)
	return err
}

func (r *RecordRepository) GetByID(id string) (*models.ReceivedRecord, error) {
	query := `SELECT id, log_type, body, timestamp_field, x_ms_date, received_at FROM received_records WHERE id = ?`
	row := r.db.QueryRow(query, id)

	var rec models.ReceivedRecord
	var tsField sql.NullString

	err := row.Scan(&rec.ID, &rec.LogType, &rec.Body, &tsField, &rec.XMSDate, &rec.ReceivedAt)
	if err != nil {
		return nil, err
	}

	if tsField.Valid {
		rec.TimestampField = &tsField.String
	}
	return &rec, nil
}

func (r *RecordRepository) ListByLogType(logType string) ([]*models.ReceivedRecord, error) {
	query := `SELECT id, log_type, body, timestamp_field, x_ms_date, received_at FROM received_records WHERE log_type = ? ORDER BY received_at DESC`
	rows, err := r.db.Query(query, logType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.ReceivedRecord
	for rows.Next() {
		var rec models.ReceivedRecord
		var tsField sql.NullString

		if err := rows.Scan(&rec.ID, &rec.LogType, &rec.Body, &tsField, &rec.XMSDate, &rec.ReceivedAt); err != nil {
			return nil, err
		}
		if tsField.Valid {
			rec.TimestampField = &tsField.String
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *RecordRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM received_records`).Scan(&n)
	return n, err
}
