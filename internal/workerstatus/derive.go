package workerstatus

import "time"

// Deriver computes status/health from raw signals. Now is an injectable
// clock for deterministic testing, following the teacher's reaper-style
// "defaults to time.Now if unset" convention.
type Deriver struct {
	Now func() time.Time

	WorkingThreshold time.Duration
	SlowThreshold    time.Duration
	StuckThreshold   time.Duration
}

func (d *Deriver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deriver) thresholds() (working, slow, stuck time.Duration) {
	working, slow, stuck = d.WorkingThreshold, d.SlowThreshold, d.StuckThreshold
	if working == 0 {
		working = DefaultWorkingThreshold
	}
	if slow == 0 {
		slow = DefaultSlowThreshold
	}
	if stuck == 0 {
		stuck = DefaultStuckThreshold
	}
	return
}

// Derive applies the top-down rule table of spec.md §4.3 to compute a
// worker's status and health. completionMet indicates whether the
// completion predicate (spec.md §4.4, parametrised by phase completion
// mode) already holds for this worker.
func (d *Deriver) Derive(s Signals, completionMet bool) (Status, Health) {
	working, slow, stuck := d.thresholds()

	if !s.SessionAlive {
		status := s.PreviousStatus
		if status == "" {
			status = StatusIdle
		}
		return status, HealthCrashed
	}

	if completionMet {
		return StatusIdle, HealthHealthy
	}

	if s.CommitsOnBranch == 0 && s.LastActivity.IsZero() {
		return StatusPending, HealthHealthy
	}

	age := d.now().Sub(s.LastActivity)

	// "stuck" (30min threshold, only while status=working) overrides both
	// the 1h healthy and 2h slow windows once crossed, per spec.md §4.3's
	// explicit tie-break note ("regardless of the 2h bound").
	if s.PreviousStatus == StatusWorking && age >= stuck {
		return StatusWorking, HealthStuck
	}
	if age < working {
		return StatusWorking, HealthHealthy
	}
	if age < slow {
		return StatusWorking, HealthSlow
	}

	return StatusIdle, HealthHealthy
}
