package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carelog/internal/model"
)

func d(t *testing.T, s string) model.Date {
	t.Helper()
	v, err := model.ParseDate(s)
	require.NoError(t, err)
	return v
}

func ids(recs []model.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func names(recs []model.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func TestUpsert_DerivesNextEligibleDate(t *testing.T) {
	s := NewStore()

	r := s.Upsert("E1", "Alice", d(t, "2024-01-15"), d(t, "2024-01-15"))
	assert.Equal(t, "2024-02-15", r.NextEligibleDate.String())
	assert.False(t, r.Expired)

	r = s.Upsert("E2", "Bob", d(t, "2024-01-31"), d(t, "2024-01-31"))
	assert.Equal(t, "2024-02-29", r.NextEligibleDate.String(), "month end clamps in a leap year")
}

func TestUpsert_SameIDKeepsOneRecordWithLatestFields(t *testing.T) {
	s := NewStore()
	today := d(t, "2024-06-01")

	s.Upsert("E1", "Alice", d(t, "2024-01-01"), today)
	s.Upsert("E2", "Bob", d(t, "2024-01-02"), today)
	s.Upsert("E1", "Alice Kim", d(t, "2024-05-20"), today)
	s.Upsert("E1", "Alice Park", d(t, "2024-05-25"), today)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"E1", "E2"}, ids(s.All()), "upsert keeps the original position")

	r, ok := s.FindByID("E1")
	require.True(t, ok)
	assert.Equal(t, "Alice Park", r.Name)
	assert.Equal(t, "2024-05-25", r.ServiceDate.String())
	assert.Equal(t, "2024-06-25", r.NextEligibleDate.String())
	assert.False(t, r.Expired)
}

func TestUpdateFields_TakesFieldsAsGiven(t *testing.T) {
	s := NewStore()
	today := d(t, "2024-01-10")
	s.Upsert("E1", "Alice", d(t, "2024-01-01"), today)

	r, err := s.UpdateFields("E1", "Alicia", d(t, "2024-01-05"), d(t, "2024-03-01"), true)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", r.Name)
	assert.Equal(t, "2024-03-01", r.NextEligibleDate.String(), "next eligible date is not re-derived")
	assert.True(t, r.Expired)

	got, _ := s.FindByID("E1")
	assert.Equal(t, r, got)
}

func TestUpdateFields_NotFound(t *testing.T) {
	s := NewStore()
	s.Upsert("E1", "Alice", d(t, "2024-01-01"), d(t, "2024-01-01"))

	_, err := s.UpdateFields("nope", "X", d(t, "2024-01-01"), d(t, "2024-02-01"), false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestDelete_IsIdempotent(t *testing.T) {
	s := NewStore()
	today := d(t, "2024-01-01")
	s.Upsert("E1", "Alice", today, today)
	s.Upsert("E2", "Bob", today, today)
	s.Upsert("E3", "Carol", today, today)

	assert.True(t, s.Delete("E2"))
	_, ok := s.FindByID("E2")
	assert.False(t, ok)
	assert.False(t, s.Delete("E2"))

	assert.Equal(t, []string{"E1", "E3"}, ids(s.All()))
	r, ok := s.FindByID("E3")
	require.True(t, ok, "index must follow the shifted slice")
	assert.Equal(t, "Carol", r.Name)
}

func TestQuery_KeywordMatchesNameOrID(t *testing.T) {
	s := NewStore()
	today := d(t, "2024-01-01")
	s.Upsert("A1", "Kim Minsu", today, today)
	s.Upsert("Kim-7", "Lee", today, today)
	s.Upsert("A3", "Park", today, today)
	s.Upsert("A4", "kimberly", today, today)
	s.Upsert("kim-9", "Choi", today, today)

	got := s.Query("Kim", false)
	assert.Equal(t, []string{"A1", "Kim-7", "A4"}, ids(got), "name folds case, id is an exact substring")
}

func TestQuery_UnicodeNamesFoldAndNormalize(t *testing.T) {
	s := NewStore()
	today := d(t, "2024-01-01")
	s.Upsert("1", "김민수", today, today)
	s.Upsert("2", "ÉLODIE", today, today)
	// "e" + combining acute, the decomposed form of "é".
	s.Upsert("3", "Ele\u0301na", today, today)

	assert.Equal(t, []string{"1"}, ids(s.Query("민수", false)))
	assert.Equal(t, []string{"2"}, ids(s.Query("élodie", false)))
	assert.Equal(t, []string{"3"}, ids(s.Query("ELÉ", false)))
}

func TestQuery_ExpiredOnly(t *testing.T) {
	s := NewStore()
	s.Upsert("E1", "Alice", d(t, "2024-01-01"), d(t, "2024-01-01"))
	s.Upsert("E2", "Bob", d(t, "2024-01-20"), d(t, "2024-01-20"))
	s.Upsert("E3", "Alina", d(t, "2023-12-01"), d(t, "2023-12-01"))

	s.RecomputeExpired(d(t, "2024-02-01"))

	assert.Equal(t, []string{"E1", "E3"}, ids(s.Query("", true)))
	assert.Equal(t, []string{"E1", "E3"}, ids(s.Query("  ", true)), "blank keyword is ignored")
	assert.Equal(t, []string{"E3"}, ids(s.Query("lin", true)))
	assert.Equal(t, []string{"E1", "E2", "E3"}, ids(s.Query("", false)))
	assert.Equal(t, 2, s.CountExpired())
}

func TestRecomputeExpired_IsIdempotentAndOverridesStaleFlags(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Record{
		{ID: "E1", Name: "Alice", ServiceDate: d(t, "2024-01-01"), NextEligibleDate: d(t, "2024-02-01"), Expired: false},
		{ID: "E2", Name: "Bob", ServiceDate: d(t, "2024-01-10"), NextEligibleDate: d(t, "2024-02-10"), Expired: true},
	})

	today := d(t, "2024-02-05")
	s.RecomputeExpired(today)
	first := s.All()
	s.RecomputeExpired(today)

	assert.Equal(t, first, s.All())
	assert.True(t, first[0].Expired)
	assert.False(t, first[1].Expired, "stale persisted flag is overwritten")
}

func TestReplace_CollapsesDuplicateIDs(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Record{
		{ID: "E1", Name: "first"},
		{ID: "E2", Name: "Bob"},
		{ID: "E1", Name: "second"},
	})

	assert.Equal(t, []string{"E1", "E2"}, ids(s.All()))
	r, _ := s.FindByID("E1")
	assert.Equal(t, "second", r.Name)
}

func TestReplace_KeepsRowsWithoutID(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Record{
		{ID: "", Name: "A"},
		{ID: "E1", Name: "Alice"},
		{ID: "", Name: "B"},
	})

	require.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"A", "Alice", "B"}, names(s.All()))

	_, ok := s.FindByID("")
	assert.False(t, ok, "rows without id are not addressable")
	assert.False(t, s.Delete(""))

	assert.True(t, s.Delete("E1"))
	assert.Equal(t, []string{"A", "B"}, names(s.All()))
	_, ok = s.FindByID("")
	assert.False(t, ok, "reindexing after delete skips rows without id")

	today := d(t, "2024-01-01")
	s.Upsert("E2", "Bob", today, today)
	assert.Equal(t, []string{"A", "B", "Bob"}, names(s.All()))
}

func TestRecent(t *testing.T) {
	s := NewStore()
	today := d(t, "2024-01-01")
	for _, id := range []string{"E1", "E2", "E3", "E4"} {
		s.Upsert(id, id, today, today)
	}

	assert.Equal(t, []string{"E2", "E3", "E4"}, ids(s.Recent(3)))
	assert.Equal(t, []string{"E1", "E2", "E3", "E4"}, ids(s.Recent(10)))
	assert.Empty(t, s.Recent(0))
}

func TestAll_ReturnsCopy(t *testing.T) {
	s := NewStore()
	today := d(t, "2024-01-01")
	s.Upsert("E1", "Alice", today, today)

	all := s.All()
	all[0].Name = "mutated"

	r, _ := s.FindByID("E1")
	assert.Equal(t, "Alice", r.Name)
}
