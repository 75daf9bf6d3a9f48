package messaging

import "time"

const (
	DatasetAuditQueue = "dataset_audit_queue"
)

// DatasetGeneratedEvent defines the payload for a dataset.generated event
type DatasetGeneratedEvent struct {
	GenerationID  string    `json:"generationId"`
	Model         string    `json:"model"`
	PromptVersion string    `json:"promptVersion"`
	Columns       []string  `json:"columns,omitempty"`
	Description   string    `json:"description,omitempty"`
	Rows          int       `json:"rows"`
	CSVBytes      int       `json:"csvBytes"`
	WellFormed    bool      `json:"wellFormed"`
	GeneratedAt   time.Time `json:"generatedAt"`
}
