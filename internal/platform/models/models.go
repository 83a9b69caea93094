package models

// ReceivedRecord is a log record the sink accepted after verifying its
// SharedKey signature.
type ReceivedRecord struct {
	ID             string  `json:"id"`
	LogType        string  `json:"log_type"`
	Body           string  `json:"body"`
	TimestampField *string `json:"timestamp_field,omitempty"`
	XMSDate        string  `json:"x_ms_date"`
	ReceivedAt     int64   `json:"received_at"`
}
