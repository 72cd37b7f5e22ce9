package logging

// Standardized attribute keys shared across components.
const (
	FieldComponent = "component"
	FieldJobID     = "job_id"
	FieldURL       = "url"
	FieldAttempt   = "attempt"
	FieldDuration  = "duration"
	FieldStage     = "stage"
)
