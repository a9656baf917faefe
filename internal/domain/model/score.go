package model

// Score statuses.
const (
	ScoreStatusScored    = "scored"
	ScoreStatusCap       = "cap"
	ScoreStatusDNF       = "dnf"
	ScoreStatusDNS       = "dns"
	ScoreStatusWithdrawn = "withdrawn"
)

// Score is one raw score submission. Values are expected in better-first
// orientation: lower value or lower sort key wins.
type Score struct {
	UserID  string
	EventID string
	Value   *float64
	Status  string
	SortKey *string
}

// NumericValue returns the value, treating a missing one as zero.
func (s Score) NumericValue() float64 {
	if s.Value == nil {
		return 0
	}
	return *s.Value
}

// Key returns the tie-break sort key or "" when absent.
func (s Score) Key() string {
	if s.SortKey == nil {
		return ""
	}
	return *s.SortKey
}
