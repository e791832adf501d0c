package hopper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerNeedsAssessmentForUnknownItem(t *testing.T) {
	dir := t.TempDir()
	l, err := LoadLedger(dir)
	require.NoError(t, err)

	path := writeItem(t, dir, "a.md", "# A\n\n**Priority:** High\n**Complexity:** Small\n")
	item, err := ParseFile(path)
	require.NoError(t, err)

	require.True(t, l.NeedsAssessment(item))
	l.Record(item, OutcomeAutoInclude)
	require.False(t, l.NeedsAssessment(item))
}

func TestLedgerPersistsAcrossLoad(t *testing.T) {
	dir := t.TempDir()
	l, err := LoadLedger(dir)
	require.NoError(t, err)

	path := writeItem(t, dir, "a.md", "# A\n\n**Priority:** High\n**Complexity:** Small\n")
	item, err := ParseFile(path)
	require.NoError(t, err)
	l.Record(item, OutcomeAskHuman)
	require.NoError(t, l.Save(dir))

	reloaded, err := LoadLedger(dir)
	require.NoError(t, err)
	require.False(t, reloaded.NeedsAssessment(item))
}
