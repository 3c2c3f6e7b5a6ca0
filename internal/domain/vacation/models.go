package vacation

import "time"

const StatusApproved = "approved"

type Vacation struct {
	ID        string    `json:"id"`
	WorkerID  string    `json:"workerId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Proposal is a candidate vacation range submitted for admission. ExcludeID
// names the vacation being edited so it does not count against itself.
type Proposal struct {
	WorkerID  string
	StartDate time.Time
	EndDate   time.Time
	ExcludeID string
}
