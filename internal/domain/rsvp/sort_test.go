package rsvp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func sampleRecords() []RSVP {
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return []RSVP{
		{ID: "c", Name: "carol", Email: "carol@x.com", CreatedAt: base.Add(3 * time.Hour), Guests: datatypes.JSONSlice[Guest]{}},
		{ID: "a", Name: "Alice", Email: "zed@x.com", CreatedAt: base.Add(2 * time.Hour), Guests: datatypes.JSONSlice[Guest]{{Name: "A1"}, {Name: "A2"}}},
		{ID: "b", Name: "Bob", Email: "bob@x.com", CreatedAt: base.Add(time.Hour), Guests: datatypes.JSONSlice[Guest]{{Name: "B1"}}},
		{ID: "d", Name: "Bob", Email: "dan@x.com", CreatedAt: base, Guests: nil},
	}
}

func ids(records []RSVP) []string {
	result := make([]string, 0, len(records))
	for _, record := range records {
		result = append(result, record.ID)
	}
	return result
}

func TestHeadCount(t *testing.T) {
	records := sampleRecords()
	assert.Equal(t, 1, records[0].HeadCount())
	assert.Equal(t, 3, records[1].HeadCount())
	assert.Equal(t, 1, records[3].HeadCount())

	summary := Summarize(records)
	assert.Equal(t, 4, summary.Submissions)
	assert.Equal(t, 7, summary.Guests)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSelectNewKeyStartsDescending(t *testing.T) {
	state := DefaultSort().Select(SortByName)
	assert.Equal(t, SortState{Key: SortByName, Direction: Descending}, state)

	state = state.Select(SortByName)
	assert.Equal(t, Ascending, state.Direction)

	state = state.Select(SortByEmail)
	assert.Equal(t, SortState{Key: SortByEmail, Direction: Descending}, state)

	assert.Equal(t, Ascending, SortState{}.Select(SortBySubmitted).Direction)
}

func TestSortedByEachKey(t *testing.T) {
	records := sampleRecords()

	byName := Sorted(records, SortState{Key: SortByName, Direction: Ascending})
	assert.Equal(t, []string{"a", "d", "b", "c"}, ids(byName))

	byEmail := Sorted(records, SortState{Key: SortByEmail, Direction: Ascending})
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids(byEmail))

	byGuests := Sorted(records, SortState{Key: SortByGuests, Direction: Descending})
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(byGuests))

	bySubmitted := Sorted(records, DefaultSort())
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(bySubmitted))
}

func TestSelectingSameKeyTwiceReversesOrder(t *testing.T) {
	records := sampleRecords()

	for _, key := range []SortKey{SortByName, SortByEmail, SortByGuests, SortBySubmitted} {
		first := DefaultSort().Select(key)
		if key == SortBySubmitted {
			first = SortState{}.Select(SortByName).Select(key)
		}
		second := first.Select(key)

		a := ids(Sorted(records, first))
		b := ids(Sorted(records, second))
		require.Len(t, b, len(a))
		for i := range a {
			assert.Equal(t, a[i], b[len(b)-1-i], "key %s", key)
		}
	}
}

func TestSortedDoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := ids(records)

	_ = Sorted(records, SortState{Key: SortByName, Direction: Ascending})
	assert.Equal(t, before, ids(records))
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey(" Name ")
	require.NoError(t, err)
	assert.Equal(t, SortByName, key)

	key, err = ParseSortKey("created_at")
	require.NoError(t, err)
	assert.Equal(t, SortBySubmitted, key)

	_, err = ParseSortKey("phone")
	assert.Error(t, err)
}
