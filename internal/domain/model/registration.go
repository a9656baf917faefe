package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Registration statuses and division defaults.
const (
	RegistrationStatusRemoved = "REMOVED"

	OpenDivisionID    = "open"
	OpenDivisionLabel = "Open"

	// Unaffiliated is the team name used when registration metadata carries
	// no usable affiliate.
	Unaffiliated = "Unaffiliated"
)

// Registration is an athlete's entry into a competition.
type Registration struct {
	ID            string
	UserID        string
	DivisionID    *string
	DivisionLabel string
	Metadata      string // opaque, optionally JSON
	FirstName     string
	LastName      string
	Status        string
}

// Active reports whether the registration takes part in the leaderboard.
func (r Registration) Active() bool {
	return r.Status != RegistrationStatusRemoved
}

// Division is a competitive bracket.
type Division struct {
	ID    string
	Label string
}

// Athlete is one competitor derived from a registration.
type Athlete struct {
	UserID    string
	Name      string
	Affiliate string
	Division  Division
}

// Division resolves the registration's division, falling back to the open
// division when none is set.
func (r Registration) Division() Division {
	if r.DivisionID == nil || *r.DivisionID == "" {
		return Division{ID: OpenDivisionID, Label: OpenDivisionLabel}
	}
	label := r.DivisionLabel
	if label == "" {
		label = *r.DivisionID
	}
	return Division{ID: *r.DivisionID, Label: label}
}

// DisplayName joins first and last name.
func (r Registration) DisplayName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Athlete builds the athlete view of the registration.
func (r Registration) Athlete() Athlete {
	affiliate, ok := ParseAffiliate(r.Metadata)
	if !ok {
		affiliate = Unaffiliated
	}
	return Athlete{
		UserID:    r.UserID,
		Name:      r.DisplayName(),
		Affiliate: affiliate,
		Division:  r.Division(),
	}
}

// ParseAffiliate extracts the team name from registration metadata.
// It prefers a non-empty "affiliateName" and otherwise uses the first
// non-empty string value of the "affiliates" object, in document order.
// Invalid JSON or missing keys yield ok == false.
func ParseAffiliate(metadata string) (string, bool) {
	if strings.TrimSpace(metadata) == "" {
		return "", false
	}
	var doc struct {
		AffiliateName string          `json:"affiliateName"`
		Affiliates    json.RawMessage `json:"affiliates"`
	}
	if err := json.Unmarshal([]byte(metadata), &doc); err != nil {
		return "", false
	}
	if name := strings.TrimSpace(doc.AffiliateName); name != "" {
		return name, true
	}
	return firstAffiliate(doc.Affiliates)
}

// firstAffiliate walks the raw affiliates object so the first entry is taken
// in document order rather than map order.
func firstAffiliate(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return "", false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", false
	}
	for dec.More() {
		// key
		if _, err := dec.Token(); err != nil {
			return "", false
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return "", false
		}
		if s, ok := value.(string); ok {
			if name := strings.TrimSpace(s); name != "" {
				return name, true
			}
		}
	}
	return "", false
}
