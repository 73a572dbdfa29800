package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Database field name constants
const (
	// JobCreatedAtField is the database field name for the job creation timestamp
	JobCreatedAtField = "created_at"
	// JobUpdatedAtField is the database field name for the job update timestamp
	JobUpdatedAtField = "updated_at"
)

// JobStatus represents the current state of a job in the system
type JobStatus int

// Job status constants
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = iota
	// JobStatusDraft indicates the job is not yet visible to contractors
	JobStatusDraft
	// JobStatusOpen indicates the job is accepting bids
	JobStatusOpen
	// JobStatusInProgress indicates a bid has been awarded and work is underway
	JobStatusInProgress
	// JobStatusCompleted indicates the job has been confirmed as finished
	JobStatusCompleted
	// JobStatusCancelled indicates the job was withdrawn before award
	JobStatusCancelled
)

var jobStatusNames = []string{
	"unknown",
	"draft",
	"open",
	"in_progress",
	"completed",
	"cancelled",
}

// Job represents a posted repair/maintenance job in the marketplace
type Job struct {
	gorm.Model
	Title        string           `json:"title" gorm:"not null;index"`
	Description  string           `json:"description" gorm:"type:text"`
	RequesterID  uint             `json:"requester_id" gorm:"not null;index"`
	ContractorID *uint            `json:"contractor_id,omitempty" gorm:"index"` // set only through bid award
	Status       JobStatus        `json:"status" gorm:"index"`
	Budget       *decimal.Decimal `json:"budget,omitempty" gorm:"type:numeric(12,2)"`
	Tags         []string         `json:"tags,omitempty" gorm:"type:jsonb;serializer:json"`
}

// Validate checks the job's field-level invariants. A contractor must be
// assigned exactly when the job is in progress or completed.
func (j *Job) Validate() error {
	if j.Title == "" {
		return fmt.Errorf("job title is required")
	}
	if j.RequesterID == 0 {
		return fmt.Errorf("requester_id cannot be 0")
	}
	assigned := j.ContractorID != nil
	working := j.Status == JobStatusInProgress || j.Status == JobStatusCompleted
	if assigned != working {
		return fmt.Errorf("contractor assignment inconsistent with status %q", j.Status)
	}
	if j.Budget != nil && j.Budget.Sign() <= 0 {
		return fmt.Errorf("budget must be positive")
	}
	return nil
}

// ParseJobStatus converts a string representation of a job status to JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	for i, status := range jobStatusNames {
		if status == str {
			return JobStatus(i), nil
		}
	}

	return JobStatus(0), fmt.Errorf("invalid job status: %s", str)
}

// MarshalJSON implements the json.Marshaler interface for JobStatus
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

func (s JobStatus) String() string {
	if int(s) < 0 || int(s) >= len(jobStatusNames) {
		return jobStatusNames[JobStatusUnknown]
	}
	return jobStatusNames[s]
}
