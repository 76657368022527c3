package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sanctions-cli/internal/sdn"
)

func TestPartyNames_PrimaryAndAliases(t *testing.T) {
	p := &sdn.Party{
		SDNEntryID:  36,
		PrimaryName: &sdn.Name{FullName: "AEROCARIBBEAN AIRLINES"},
		Aliases: []sdn.Alias{
			{AliasType: "a.k.a.", AliasQuality: "strong", FullName: "AERO-CARIBBEAN"},
			{AliasType: "a.k.a.", AliasQuality: "weak", FullName: "AEROCARIBE"},
		},
	}

	names := partyNames(p)
	require.Len(t, names, 3)

	assert.Equal(t, NameRow{EntryID: 36, Name: "AEROCARIBBEAN AIRLINES", IsPrimary: true, Quality: "strong"}, names[0])
	assert.Equal(t, NameRow{EntryID: 36, Name: "AERO-CARIBBEAN", Quality: "strong"}, names[1])
	assert.Equal(t, NameRow{EntryID: 36, Name: "AEROCARIBE", Quality: "weak"}, names[2])
}

func TestPartyNames_SkipsEmptyFullNames(t *testing.T) {
	p := &sdn.Party{
		SDNEntryID: 7,
		Aliases: []sdn.Alias{
			{AliasType: "a.k.a.", FullName: ""},
			{AliasType: "f.k.a.", AliasQuality: "strong", FullName: "OLD NAME"},
		},
	}

	names := partyNames(p)
	require.Len(t, names, 1)
	assert.Equal(t, "OLD NAME", names[0].Name)
	assert.False(t, names[0].IsPrimary)
}

func TestPartyNames_NoPrimary(t *testing.T) {
	p := &sdn.Party{SDNEntryID: 9}
	assert.Empty(t, partyNames(p))
}

func TestColEncoder_AbsentBecomesNil(t *testing.T) {
	var enc colEncoder

	assert.Nil(t, enc.record(nil, false))
	assert.Nil(t, enc.record((*sdn.Vessel)(nil), false))
	require.NoError(t, enc.err)
}

func TestColEncoder_MarshalsPresentValues(t *testing.T) {
	var enc colEncoder

	b := enc.record(&sdn.Name{FullName: "SMITH"}, true)
	require.NoError(t, enc.err)
	assert.JSONEq(t, `{"full_name":"SMITH"}`, string(b))
}

func TestColEncoder_ErrorSticks(t *testing.T) {
	var enc colEncoder

	// Channels cannot be marshalled; the first failure must poison the encoder.
	assert.Nil(t, enc.record(make(chan int), true))
	require.Error(t, enc.err)

	// Subsequent calls return nil without clearing the error.
	assert.Nil(t, enc.record(&sdn.Name{FullName: "SMITH"}, true))
	require.Error(t, enc.err)
}
