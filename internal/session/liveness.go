package session

import (
	"context"

	gopsprocess "github.com/shirou/gopsutil/v3/process"
)

// tmuxServerRunning cross-checks that a tmux server process actually exists
// on the host, as an extra signal alongside `tmux has-session` (which can
// itself return a false positive against a zombie server on some
// platforms). Failure to enumerate processes is treated as "unknown" rather
// than "not running" so a sandboxed or restricted host doesn't spuriously
// flag every worker as crashed.
func tmuxServerRunning() (running bool, known bool) {
	procs, err := gopsprocess.ProcessesWithContext(context.Background())
	if err != nil {
		return false, false
	}
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if name == "tmux" || name == "tmux: server" {
			return true, true
		}
	}
	return false, true
}

// AliveConfirmed reports session liveness using both `tmux has-session` and
// a gopsutil process-table cross-check. If the process cross-check is
// inconclusive (sandboxed host, permission error), it falls back to the
// has-session result alone.
func (d *Driver) AliveConfirmed(ctx context.Context, name string) bool {
	alive := d.Alive(ctx, name)
	if !alive {
		return false
	}
	running, known := tmuxServerRunning()
	if !known {
		return alive
	}
	return running
}
