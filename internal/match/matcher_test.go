package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sanctions-cli/internal/sdn"
)

func testParties() []sdn.Party {
	return []sdn.Party{
		{
			SDNEntryID:  42,
			SDNType:     "Individual",
			PrimaryName: &sdn.Name{FullName: "USAMA BIN LADIN"},
			Aliases: []sdn.Alias{
				{AliasType: "a.k.a.", FullName: "OSAMA BIN LADEN"},
			},
			Programs:         []string{"SDGT"},
			LegalAuthorities: []string{"EO 13224"},
			DatesOfBirth:     []string{"1957-07-30"},
			Nationalities:    []string{"Saudi Arabia"},
		},
		{
			SDNEntryID:  77,
			SDNType:     "Entity",
			PrimaryName: &sdn.Name{FullName: "ACME TRADING LLC"},
			Programs:    []string{"IFSR"},
		},
		{
			SDNEntryID: 90,
			SDNType:    "Individual",
			Aliases: []sdn.Alias{
				{AliasType: "a.k.a.", FullName: "MOHAMMED QASIM"},
			},
		},
	}
}

func TestMatcher_IndexCounts(t *testing.T) {
	m := New(testParties())
	assert.Equal(t, 4, m.Names(), "primary names plus aliases")
	assert.Equal(t, 3, m.Entries())
}

func TestMatcher_SkipsUnnamedParties(t *testing.T) {
	m := New([]sdn.Party{
		{SDNEntryID: 1},
		{SDNEntryID: 2, PrimaryName: &sdn.Name{}},
	})
	assert.Zero(t, m.Names())
	assert.Empty(t, m.Screen("anything", 4, 20))
}

func TestMatcher_ExactIsCaseFolded(t *testing.T) {
	m := New(testParties())

	hits := m.Screen("usama bin ladin", 4, 20)
	require.NotEmpty(t, hits)

	top := hits[0]
	assert.Equal(t, ScoreExact, top.Score)
	assert.Equal(t, 0, top.Distance)
	assert.Equal(t, 42, top.EntryID)
	assert.Equal(t, "USAMA BIN LADIN", top.MatchedName)
	assert.Equal(t, "USAMA BIN LADIN", top.PrimaryName)
	assert.Equal(t, []string{"SDGT"}, top.Programs)
	assert.Equal(t, []string{"EO 13224"}, top.LegalAuthorities)
}

func TestMatcher_AliasHitKeepsPrimaryName(t *testing.T) {
	m := New(testParties())

	hits := m.Screen("OSAMA BIN LADEN", 4, 20)
	require.NotEmpty(t, hits)

	top := hits[0]
	assert.Equal(t, ScoreExact, top.Score)
	assert.Equal(t, "OSAMA BIN LADEN", top.MatchedName)
	assert.Equal(t, "USAMA BIN LADIN", top.PrimaryName, "alias hits still report the entry's primary name")
	assert.Equal(t, 42, top.EntryID)
}

func TestMatcher_NilPrimaryName(t *testing.T) {
	m := New(testParties())

	hits := m.Screen("MOHAMMED QASIM", 4, 20)
	require.NotEmpty(t, hits)
	assert.Equal(t, 90, hits[0].EntryID)
	assert.Equal(t, "", hits[0].PrimaryName)
}

func TestMatcher_NearMatch(t *testing.T) {
	m := New(testParties())

	// One substitution away from both documented spellings.
	hits := m.Screen("USAMA BIN LADEN", 0, 20)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, ScoreNear, h.Score)
		assert.LessOrEqual(t, h.Distance, 2)
		assert.Equal(t, 42, h.EntryID)
	}
}

func TestMatcher_ThresholdMatch(t *testing.T) {
	m := New(testParties())

	// Three substitutions from "ACME TRADING LLC", and a different Soundex
	// key, so the phonetic fallback cannot rescue it.
	query := "EKNE TRADING LLC"
	require.Equal(t, 3, Distance("acme trading llc", "ekne trading llc"))
	require.NotEqual(t, Soundex("ACME TRADING LLC"), Soundex(query))

	hits := m.Screen(query, 4, 20)
	require.Len(t, hits, 1)
	assert.Equal(t, ScoreThreshold, hits[0].Score)
	assert.Equal(t, 3, hits[0].Distance)

	assert.Empty(t, m.Screen(query, 2, 20), "over threshold and phonetically different")
}

func TestMatcher_PhoneticMatch(t *testing.T) {
	m := New([]sdn.Party{
		{SDNEntryID: 5, PrimaryName: &sdn.Name{FullName: "MOHAMMED"}},
	})
	require.Equal(t, Soundex("MOHAMMED"), Soundex("MAHMUD"))
	require.Equal(t, 4, Distance("mohammed", "mahmud"))

	hits := m.Screen("MAHMUD", 3, 20)
	require.Len(t, hits, 1)
	assert.Equal(t, ScorePhonetic, hits[0].Score)
	assert.Equal(t, 4, hits[0].Distance)
}

func TestMatcher_NoCandidates(t *testing.T) {
	m := New(testParties())
	assert.Empty(t, m.Screen("COMPLETELY UNRELATED QUERY STRING", 2, 20))
}

func TestMatcher_SortsByScoreThenDistance(t *testing.T) {
	m := New([]sdn.Party{
		{SDNEntryID: 1, PrimaryName: &sdn.Name{FullName: "SMITHXYZW"}},
		{SDNEntryID: 2, PrimaryName: &sdn.Name{FullName: "SMITHX"}},
		{SDNEntryID: 3, PrimaryName: &sdn.Name{FullName: "SMITH"}},
		{SDNEntryID: 4, PrimaryName: &sdn.Name{FullName: "SMITHXY"}},
	})

	hits := m.Screen("SMITH", 4, 20)
	require.Len(t, hits, 4)

	ids := []int{hits[0].EntryID, hits[1].EntryID, hits[2].EntryID, hits[3].EntryID}
	assert.Equal(t, []int{3, 2, 4, 1}, ids, "exact, then rising edit distance")
	assert.Equal(t, []int{1, 2, 2, 3}, []int{hits[0].Score, hits[1].Score, hits[2].Score, hits[3].Score})
}

func TestMatcher_LimitCapsResults(t *testing.T) {
	m := New(testParties())

	hits := m.Screen("USAMA BIN LADEN", 4, 1)
	require.Len(t, hits, 1)
	assert.Equal(t, ScoreNear, hits[0].Score)
}
