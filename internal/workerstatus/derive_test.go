package workerstatus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeriveSessionCrashed(t *testing.T) {
	now := time.Now()
	d := &Deriver{Now: func() time.Time { return now }}
	status, health := d.Derive(Signals{
		SessionAlive:   false,
		PreviousStatus: StatusWorking,
	}, false)
	require.Equal(t, StatusWorking, status)
	require.Equal(t, HealthCrashed, health)
}

func TestDeriveCompletionMetIsIdleHealthy(t *testing.T) {
	now := time.Now()
	d := &Deriver{Now: func() time.Time { return now }}
	status, health := d.Derive(Signals{SessionAlive: true, LastActivity: now}, true)
	require.Equal(t, StatusIdle, status)
	require.Equal(t, HealthHealthy, health)
}

func TestDeriveNeverStartedIsPending(t *testing.T) {
	now := time.Now()
	d := &Deriver{Now: func() time.Time { return now }}
	status, health := d.Derive(Signals{SessionAlive: true}, false)
	require.Equal(t, StatusPending, status)
	require.Equal(t, HealthHealthy, health)
}

func TestDeriveRecentActivityIsWorkingHealthy(t *testing.T) {
	now := time.Now()
	d := &Deriver{Now: func() time.Time { return now }}
	status, health := d.Derive(Signals{
		SessionAlive: true,
		LastActivity: now.Add(-30 * time.Minute),
		CommitsOnBranch: 1,
	}, false)
	require.Equal(t, StatusWorking, status)
	require.Equal(t, HealthHealthy, health)
}

func TestDeriveTwoHourActivityIsSlow(t *testing.T) {
	now := time.Now()
	d := &Deriver{Now: func() time.Time { return now }}
	status, health := d.Derive(Signals{
		SessionAlive: true,
		LastActivity: now.Add(-90 * time.Minute),
		CommitsOnBranch: 1,
	}, false)
	require.Equal(t, StatusWorking, status)
	require.Equal(t, HealthSlow, health)
}

func TestDeriveStuckOverridesSlowWindow(t *testing.T) {
	now := time.Now()
	d := &Deriver{Now: func() time.Time { return now }}
	// 90 minutes inactive, already known as "working" from the prior tick:
	// 30-minute stuck threshold pre-empts the 2h slow classification.
	status, health := d.Derive(Signals{
		SessionAlive:    true,
		LastActivity:    now.Add(-90 * time.Minute),
		CommitsOnBranch: 1,
		PreviousStatus:  StatusWorking,
	}, false)
	require.Equal(t, StatusWorking, status)
	require.Equal(t, HealthStuck, health)
}

func TestDeriveStuckBeyondSlowWindowStillStuck(t *testing.T) {
	now := time.Now()
	d := &Deriver{Now: func() time.Time { return now }}
	status, health := d.Derive(Signals{
		SessionAlive:    true,
		LastActivity:    now.Add(-3 * time.Hour),
		CommitsOnBranch: 1,
		PreviousStatus:  StatusWorking,
	}, false)
	require.Equal(t, StatusWorking, status)
	require.Equal(t, HealthStuck, health)
}

func TestDeriveIdleFallback(t *testing.T) {
	now := time.Now()
	d := &Deriver{Now: func() time.Time { return now }}
	status, health := d.Derive(Signals{
		SessionAlive:    true,
		LastActivity:    now.Add(-3 * time.Hour),
		CommitsOnBranch: 1,
		PreviousStatus:  StatusIdle,
	}, false)
	require.Equal(t, StatusIdle, status)
	require.Equal(t, HealthHealthy, health)
}
