package lyrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreRecord_SyncedBeatsPlain(t *testing.T) {
	synced := scoreRecord(Record{Provider: "genius", Synced: []SyncedLine{{TimeMs: 0, Text: "x"}}, IsTimed: true}, outcomeDone)
	plain := scoreRecord(Record{Provider: "genius", Plain: "x"}, outcomeDone)
	require.Greater(t, synced, plain)
}

func TestScoreRecord_LRCLibSyncedBonus(t *testing.T) {
	lrclib := scoreRecord(Record{Provider: "lrclib", Synced: []SyncedLine{{TimeMs: 0, Text: "x"}}, IsTimed: true}, outcomeDone)
	genius := scoreRecord(Record{Provider: "genius", Synced: []SyncedLine{{TimeMs: 0, Text: "x"}}, IsTimed: true}, outcomeDone)
	require.Greater(t, lrclib, genius, "lrclib gets the +1 synced bonus genius doesn't")
}

func TestScoreRecord_SyncedAndPlainBonusesAreAdditive(t *testing.T) {
	both := scoreRecord(Record{Provider: "genius", Synced: []SyncedLine{{TimeMs: 0, Text: "x"}}, IsTimed: true, Plain: "x"}, outcomeDone)
	syncedOnly := scoreRecord(Record{Provider: "genius", Synced: []SyncedLine{{TimeMs: 0, Text: "x"}}, IsTimed: true}, outcomeDone)
	require.Equal(t, syncedOnly+1, both, "having plain lyrics alongside synced must still add its own +1, per spec.md §4.10")
}

func TestScoreRecord_OutcomePenalties(t *testing.T) {
	rec := Record{Plain: "x"}
	require.Greater(t, scoreRecord(rec, outcomeDone), scoreRecord(rec, outcomeFetching))
	require.Greater(t, scoreRecord(rec, outcomeFetching), scoreRecord(rec, outcomeError))
	require.Greater(t, scoreRecord(rec, outcomeError), scoreRecord(rec, outcomeUnknown))
}

func TestBest_PicksHighestScoring(t *testing.T) {
	results := []Record{
		{Provider: "genius", Plain: "only plain"},
		{Provider: "lrclib", Synced: []SyncedLine{{TimeMs: 0, Text: "synced"}}, IsTimed: true, Plain: "synced"},
	}
	rec, ok := best(results)
	require.True(t, ok)
	require.Equal(t, "lrclib", rec.Provider)
}

func TestBest_SkipsEmptyResults(t *testing.T) {
	results := []Record{{Provider: "genius"}}
	_, ok := best(results)
	require.False(t, ok)
}
