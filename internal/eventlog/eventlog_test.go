package eventlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEmitAppendsAndMirrors(t *testing.T) {
	dir := t.TempDir()
	log, err := Open(dir)
	require.NoError(t, err)
	defer log.Close()

	log.SetClock(func() time.Time { return time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC) })

	log.Emit(SourceCzar, KindCzarStart, SeverityInfo, nil)
	log.Emit(SourceWorker, KindWorkerComplete, SeveritySuccess, map[string]string{"worker": "a"})

	records, err := Reader(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, KindCzarStart, records[0].Event)
	require.Equal(t, KindWorkerComplete, records[1].Event)

	orch, err := os.ReadFile(filepath.Join(dir, "orchestration.log"))
	require.NoError(t, err)
	require.Contains(t, string(orch), "CZAR_START")
	require.NotContains(t, string(orch), "WORKER_COMPLETE")

	workerLog, err := os.ReadFile(filepath.Join(dir, "workers", "a.log"))
	require.NoError(t, err)
	require.Contains(t, string(workerLog), "WORKER_COMPLETE")
}

func TestEmitNeverPanicsOnConcurrentUse(t *testing.T) {
	dir := t.TempDir()
	log, err := Open(dir)
	require.NoError(t, err)
	defer log.Close()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			for j := 0; j < 20; j++ {
				log.Emit(SourceCzar, KindStatusSummary, SeverityInfo, map[string]string{"n": "x"})
			}
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	records, err := Reader(dir)
	require.NoError(t, err)
	require.Len(t, records, 160)
}

func TestAppendOnlyAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	log, err := Open(dir)
	require.NoError(t, err)
	log.Emit(SourceCzar, KindCzarStart, SeverityInfo, nil)
	require.NoError(t, log.Close())

	log2, err := Open(dir)
	require.NoError(t, err)
	defer log2.Close()
	log2.Emit(SourceCzar, KindCzarStop, SeverityInfo, nil)

	records, err := Reader(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
}
