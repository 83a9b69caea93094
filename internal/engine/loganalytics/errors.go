package loganalytics

import "fmt"

// ArgumentError reports a parameter that is missing, empty, or only
// whitespace. Constructors return it directly; Send wraps it like every
// other send-time failure.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s %s", e.Name, e.Reason)
}

// StatusError is returned when the ingestion endpoint answers with anything
// other than HTTP 200.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error sending log analytics events: %s (%d)", e.Status, e.Code)
}
