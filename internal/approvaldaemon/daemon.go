// Package approvaldaemon implements ApprovalDaemon: a single-threaded,
// poll-driven watcher that samples each worker's terminal output, matches
// per-agent-kind approval prompts, and sends the configured keystrokes to
// unblock the worker (spec.md §4.6). Profiles are pure data
// (configstore.AgentProfile); the daemon never interprets semantic content,
// only regexes declared ahead of time.
package approvaldaemon

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/czarina-dev/czarina/internal/configstore"
	"github.com/czarina-dev/czarina/internal/eventlog"
	"github.com/czarina-dev/czarina/internal/session"
)

const (
	DefaultPollInterval   = 2 * time.Second
	DefaultDebounceWindow = 10 * time.Second
	StuckAfterAttempts    = 3
)

// compiledProfile is an AgentProfile with its patterns pre-compiled.
type compiledProfile struct {
	patterns map[string]*regexpMatcher
	keys     map[string]string
}

// patternState tracks one (session, pattern) pair's send history so the
// daemon can debounce repeats and detect a prompt that never clears.
type patternState struct {
	lastSent time.Time
	attempts int
	stuck    bool
	lastText string
}

// Daemon watches every worker's session output and auto-answers recognized
// prompts. One Daemon instance serves an entire phase; it is intended to
// run as its own long-lived loop, independent of CzarLoop (spec.md §5).
type Daemon struct {
	Sessions *session.Driver
	Events   *eventlog.Log
	Config   *configstore.Config

	PollInterval   time.Duration
	DebounceWindow time.Duration
	Now            func() time.Time

	mu      sync.Mutex
	state   map[string]map[string]*patternState // session name -> pattern name -> state
	profile map[string]compiledProfile          // agent kind -> compiled profile
}

// New builds a Daemon with default cadence; callers may override
// PollInterval/DebounceWindow/Now before calling Run.
func New(sessions *session.Driver, events *eventlog.Log, cfg *configstore.Config) *Daemon {
	return &Daemon{
		Sessions:       sessions,
		Events:         events,
		Config:         cfg,
		PollInterval:   DefaultPollInterval,
		DebounceWindow: DefaultDebounceWindow,
		Now:            time.Now,
		state:          make(map[string]map[string]*patternState),
	}
}

func (d *Daemon) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Daemon) compiledProfiles() map[string]compiledProfile {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.profile != nil {
		return d.profile
	}
	var configured map[string]configstore.AgentProfile
	if d.Config.Daemon != nil {
		configured = d.Config.Daemon.AgentProfiles
	}
	out := make(map[string]compiledProfile)
	kinds := make(map[string]bool)
	for kind := range DefaultProfiles() {
		kinds[kind] = true
	}
	for kind := range configured {
		kinds[kind] = true
	}
	for kind := range kinds {
		profile, ok := ResolveProfile(kind, configured)
		if !ok {
			continue
		}
		cp := compiledProfile{
			patterns: make(map[string]*regexpMatcher, len(profile.ApprovalPatterns)),
			keys:     profile.KeySequences,
		}
		for name, pattern := range profile.ApprovalPatterns {
			m, err := compileMatcher(pattern)
			if err != nil {
				fmt.Fprintf(os.Stderr, "approvaldaemon: bad pattern %s/%s: %v\n", kind, name, err)
				continue
			}
			cp.patterns[name] = m
		}
		out[kind] = cp
	}
	d.profile = out
	return out
}

// Run polls every worker's session every PollInterval until ctx is
// canceled, matching spec.md §5's "suspends at poll intervals" model.
func (d *Daemon) Run(ctx context.Context) error {
	if d.Config.Daemon == nil || !d.Config.Daemon.Enabled {
		return nil
	}
	ticker := time.NewTicker(d.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.pollOnce(ctx)
		}
	}
}

// pollOnce samples every worker's visible output once and answers any
// recognized prompt, per spec.md §4.6.
func (d *Daemon) pollOnce(ctx context.Context) {
	profiles := d.compiledProfiles()
	workers := append([]configstore.Worker(nil), d.Config.Workers...)
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })

	for _, w := range workers {
		profile, ok := profiles[w.Agent]
		if !ok || len(profile.patterns) == 0 {
			continue
		}
		name := session.Name(d.Config.Project.Slug, w.ID)
		text, err := d.Sessions.Capture(ctx, name)
		if err != nil {
			continue
		}
		d.evaluateSession(ctx, name, w.ID, text, profile)
	}
}

func (d *Daemon) evaluateSession(ctx context.Context, sessionName, workerID, text string, profile compiledProfile) {
	now := d.now()

	d.mu.Lock()
	sessStates, ok := d.state[sessionName]
	if !ok {
		sessStates = make(map[string]*patternState)
		d.state[sessionName] = sessStates
	}
	d.mu.Unlock()

	patternNames := make([]string, 0, len(profile.patterns))
	for name := range profile.patterns {
		patternNames = append(patternNames, name)
	}
	sort.Strings(patternNames)

	for _, patternName := range patternNames {
		matcher := profile.patterns[patternName]

		d.mu.Lock()
		st, ok := sessStates[patternName]
		if !ok {
			st = &patternState{}
			sessStates[patternName] = st
		}
		d.mu.Unlock()

		if !matcher.MatchString(text) {
			// Visible text no longer shows this prompt: clear its state so a
			// future occurrence of the same pattern is treated fresh.
			d.mu.Lock()
			st.attempts = 0
			st.stuck = false
			st.lastText = ""
			d.mu.Unlock()
			continue
		}

		d.mu.Lock()
		if st.stuck && text == st.lastText {
			// DaemonPatternStuck: no further attempts until the visible text
			// changes (spec.md §7).
			d.mu.Unlock()
			continue
		}
		if st.stuck && text != st.lastText {
			st.stuck = false
			st.attempts = 0
		}
		st.attempts++
		st.lastText = text
		debounced := !st.lastSent.IsZero() && now.Sub(st.lastSent) < d.DebounceWindow
		attempts := st.attempts
		d.mu.Unlock()

		if !debounced {
			keys := profile.keys[patternName]
			if keys != "" {
				if err := d.Sessions.SendKeys(ctx, sessionName, keys); err == nil {
					d.mu.Lock()
					st.lastSent = now
					d.mu.Unlock()
					d.Events.Emit(eventlog.SourceDaemon, eventlog.KindDaemonApproved, eventlog.SeverityAction,
						map[string]string{"worker": workerID, "pattern": patternName})
				}
			}
		}

		if attempts >= StuckAfterAttempts {
			d.mu.Lock()
			st.stuck = true
			d.mu.Unlock()
			d.Events.Emit(eventlog.SourceDaemon, eventlog.KindDaemonStuck, eventlog.SeverityAlert,
				map[string]string{"worker": workerID, "pattern": patternName})
		}
	}
}

// Send delivers text into a worker's session without interpreting any
// response (spec.md §4.6 "Stuck-prompt injection"). It wraps
// session.Driver.Inject; CzarLoop's stuck-worker nudge calls Inject
// directly rather than going through a Daemon.
func (d *Daemon) Send(ctx context.Context, sessionName, text string) error {
	return d.Sessions.Inject(ctx, sessionName, text)
}

// Logs reads events.jsonl filtered to source=daemon, for the `daemon logs`
// CLI operation (spec.md §4.6 "Operations exposed").
func Logs(logsDir string) ([]eventlog.Record, error) {
	records, err := eventlog.Reader(logsDir)
	if err != nil {
		return nil, err
	}
	var out []eventlog.Record
	for _, r := range records {
		if r.Source == eventlog.SourceDaemon {
			out = append(out, r)
		}
	}
	return out, nil
}
