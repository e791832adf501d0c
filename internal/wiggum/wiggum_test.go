package wiggum

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParamsDefaults(t *testing.T) {
	p := Params{SandboxPrefix: "/tmp/wiggum"}
	require.Equal(t, DefaultRetries, p.retries())
	require.Equal(t, DefaultTimeoutSecond*time.Second, p.timeout())
	require.Equal(t, "merge", p.mergeStrategy())
	require.Equal(t, "/tmp/wiggum/ledger.db", p.ledgerPath())
}

func TestParamsOverrides(t *testing.T) {
	p := Params{
		DefaultRetries: 5,
		TimeoutSeconds: 30,
		MergeStrategy:  "squash",
		LedgerPath:     "/custom/ledger.db",
	}
	require.Equal(t, 5, p.retries())
	require.Equal(t, 30*time.Second, p.timeout())
	require.Equal(t, "squash", p.mergeStrategy())
	require.Equal(t, "/custom/ledger.db", p.ledgerPath())
}

func TestHashDiffStable(t *testing.T) {
	h1 := HashDiff("diff --git a b\n+line\n")
	h2 := HashDiff("diff --git a b\n+line\n")
	h3 := HashDiff("diff --git a b\n+other\n")
	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)
}

func TestTailLines(t *testing.T) {
	require.Equal(t, "a\nb\nc", tailLines("a\nb\nc", 5))
	require.Equal(t, "b\nc", tailLines("a\nb\nc", 2))
	require.Equal(t, "", tailLines("", 5))
}

func TestLedgerRecordAndSeenHash(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	ledger, err := OpenLedger(ctx, dbPath)
	require.NoError(t, err)
	defer ledger.Close()

	hash := HashDiff("some diff text")

	seen, err := ledger.SeenHash(ctx, hash)
	require.NoError(t, err)
	require.False(t, seen)

	err = ledger.Record(ctx, Attempt{Number: 1, Branch: "wiggum/attempt-1", DiffHash: hash, Outcome: OutcomeVerifyFailed})
	require.NoError(t, err)

	seen, err = ledger.SeenHash(ctx, hash)
	require.NoError(t, err)
	require.True(t, seen)

	otherHash := HashDiff("a different diff")
	seen, err = ledger.SeenHash(ctx, otherHash)
	require.NoError(t, err)
	require.False(t, seen)
}

func TestLedgerReopenPersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	ledger1, err := OpenLedger(ctx, dbPath)
	require.NoError(t, err)
	hash := HashDiff("persisted diff")
	require.NoError(t, ledger1.Record(ctx, Attempt{Number: 1, Branch: "wiggum/attempt-1", DiffHash: hash, Outcome: OutcomeSuccess}))
	require.NoError(t, ledger1.Close())

	ledger2, err := OpenLedger(ctx, dbPath)
	require.NoError(t, err)
	defer ledger2.Close()

	seen, err := ledger2.SeenHash(ctx, hash)
	require.NoError(t, err)
	require.True(t, seen, "cycle detection must survive a process restart")
}
