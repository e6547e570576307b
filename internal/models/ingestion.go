package models

import "time"

// NormalizedEvent is the common event shape every source adapter converges
// on before reconciliation. Date is a calendar day; Start/End are wall-clock
// strings in the source's local time.
type NormalizedEvent struct {
	Type          IceTimeType
	OriginalLabel string
	Date          time.Time
	StartTime     string
	EndTime       string
}

// RecordError describes one raw record that failed to normalize or insert.
type RecordError struct {
	Record string `json:"record"`
	Reason string `json:"reason"`
}

// ReplaceSummary reports the outcome of one soft-delete/insert cycle.
type ReplaceSummary struct {
	SoftDeleted     int `json:"soft_deleted"`
	Created         int `json:"created"`
	Failed          int `json:"failed"`
	StaleActiveRows int `json:"stale_active_rows,omitempty"`
}

// IngestionResult is the per-job outcome returned by an adapter invocation.
// It is ephemeral: logged and returned to the caller, never persisted.
type IngestionResult struct {
	JobName      string        `json:"job_name"`
	RinkName     string        `json:"rink_name"`
	Fetched      int           `json:"fetched"`
	SoftDeleted  int           `json:"soft_deleted"`
	Created      int           `json:"created"`
	Failed       int           `json:"failed"`
	RecordErrors []RecordError `json:"record_errors,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ms"`
}

// JobReport is the dispatcher's uniform success/failure envelope.
type JobReport struct {
	JobName string           `json:"job_name"`
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
	Result  *IngestionResult `json:"result,omitempty"`
}
