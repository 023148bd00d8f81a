package rsvp

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortByName      SortKey = "name"
	SortByEmail     SortKey = "email"
	SortByGuests    SortKey = "guests"
	SortBySubmitted SortKey = "submitted"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseSortKey(value string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(value))); key {
	case SortByName, SortByEmail, SortByGuests, SortBySubmitted:
		return key, nil
	case "created_at", "date":
		return SortBySubmitted, nil
	case "total", "head_count":
		return SortByGuests, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", value)
	}
}

// SortState is the active dashboard ordering. The zero value is newest first,
// which is the order the store returns records in.
type SortState struct {
	Key       SortKey
	Direction Direction
}

func DefaultSort() SortState {
	return SortState{Key: SortBySubmitted, Direction: Descending}
}

// Select applies a header click: the same key flips direction, a new key
// starts descending.
func (s SortState) Select(key SortKey) SortState {
	current := s.normalized()
	if current.Key == key {
		if current.Direction == Descending {
			return SortState{Key: key, Direction: Ascending}
		}
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Descending}
}

func (s SortState) normalized() SortState {
	if s.Key == "" {
		s.Key = SortBySubmitted
	}
	if s.Direction == "" {
		s.Direction = Descending
	}
	return s
}

// Sorted returns a reordered copy of records; the input slice is left as is.
func Sorted(records []RSVP, state SortState) []RSVP {
	state = state.normalized()
	result := make([]RSVP, len(records))
	copy(result, records)

	sort.SliceStable(result, func(i, j int) bool {
		cmp := compareRecords(result[i], result[j], state.Key)
		if state.Direction == Descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return result
}

func compareRecords(a, b RSVP, key SortKey) int {
	var cmp int
	switch key {
	case SortByName:
		cmp = compareText(a.Name, b.Name)
	case SortByEmail:
		cmp = compareText(a.Email, b.Email)
	case SortByGuests:
		cmp = compareInt(a.HeadCount(), b.HeadCount())
	}
	if cmp != 0 {
		return cmp
	}

	if cmp = a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
		return cmp
	}
	return strings.Compare(a.ID, b.ID)
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English)
)

func compareText(a, b string) int {
	collatorMu.Lock()
	cmp := collator.CompareString(a, b)
	collatorMu.Unlock()
	if cmp != 0 {
		return cmp
	}
	return strings.Compare(a, b)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
