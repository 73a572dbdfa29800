package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BidStatus represents the current state of a bid
type BidStatus int

// Bid status constants
const (
	// BidStatusUnknown represents an unknown or invalid bid status
	BidStatusUnknown BidStatus = iota
	// BidStatusPending indicates the bid is awaiting a decision
	BidStatusPending
	// BidStatusAccepted indicates the bid won the award
	BidStatusAccepted
	// BidStatusRejected indicates the bid was declined or withdrawn
	BidStatusRejected
)

var bidStatusNames = []string{
	"unknown",
	"pending",
	"accepted",
	"rejected",
}

// Bid represents a contractor's offer on an open job.
// At most one bid per job is ever accepted; once a job is awarded no
// sibling bid may remain pending.
type Bid struct {
	gorm.Model
	JobID         uint            `json:"job_id" gorm:"not null;index"`
	ContractorID  uint            `json:"contractor_id" gorm:"not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Proposal      string          `json:"proposal" gorm:"type:text"`
	TimeEstimate  string          `json:"time_estimate"`
	ProposedStart *time.Time      `json:"proposed_start,omitempty"`
	Status        BidStatus       `json:"status" gorm:"index"`
}

// Validate checks the bid's field-level invariants.
func (b *Bid) Validate() error {
	if b.JobID == 0 {
		return fmt.Errorf("job_id cannot be 0")
	}
	if b.ContractorID == 0 {
		return fmt.Errorf("contractor_id cannot be 0")
	}
	if b.Amount.Sign() <= 0 {
		return fmt.Errorf("bid amount must be positive")
	}
	return nil
}

// ParseBidStatus converts a string representation of a bid status to BidStatus type
func ParseBidStatus(str string) (BidStatus, error) {
	for i, status := range bidStatusNames {
		if status == str {
			return BidStatus(i), nil
		}
	}

	return BidStatus(0), fmt.Errorf("invalid bid status: %s", str)
}

// MarshalJSON implements the json.Marshaler interface for BidStatus
func (s BidStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for BidStatus
func (s *BidStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseBidStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

func (s BidStatus) String() string {
	if int(s) < 0 || int(s) >= len(bidStatusNames) {
		return bidStatusNames[BidStatusUnknown]
	}
	return bidStatusNames[s]
}
