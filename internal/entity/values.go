package entity

import "time"

// Value objects constructed fresh per field resolution from caller arguments
// merged with schema defaults. They carry no identity.

// DateRange is an inclusive [Start, End] containment check. An inverted range
// (Start after End) matches nothing; it is not an error.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, inclusive on both ends.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start.After(r.End) {
		return false
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// PhotoFilter is a conjunction: a candidate passes only if it matches every
// present predicate. Nil fields are absent predicates.
type PhotoFilter struct {
	Category       *PhotoCategory `json:"category,omitempty"`
	CreatedBetween *DateRange     `json:"createdBetween,omitempty"`
	TaggedUsers    []string       `json:"taggedUsers,omitempty"`
	SearchText     *string        `json:"searchText,omitempty"`
}

// SortDirection orders a sorted sequence.
type SortDirection string

const (
	SortAscending  SortDirection = "ASCENDING"
	SortDescending SortDirection = "DESCENDING"
)

// SortField names the attribute a list is ordered by.
type SortField string

const (
	SortByCreated SortField = "created"
	SortByName    SortField = "name"
)

// DataSort pairs a sort field with a direction. Ties are always broken by
// entity identity ascending so repeated queries over unchanged data are
// deterministic.
type DataSort struct {
	Direction SortDirection `json:"sort"`
	Field     SortField     `json:"sortBy"`
}

// DataPage selects the window [Start, Start+First) of a sorted sequence.
// Nil First means no limit; nil Start means the beginning. A nil pointer
// records that the caller explicitly supplied null, which is distinct from
// omitting the argument (omission lets the schema default apply upstream).
type DataPage struct {
	First *int `json:"first"`
	Start *int `json:"start"`
}
