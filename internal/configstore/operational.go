package configstore

import (
	"time"

	"github.com/spf13/viper"
)

// Operational holds runtime knobs that are layered over environment
// variables and flags rather than checked into config.json — tick cadence,
// poll cadence, and log verbosity. This mirrors the split the teacher keeps
// between its viper-backed internal/config and its manifest parsing: the
// manifest is a project artifact, these are per-invocation operator choices.
type Operational struct {
	TickInterval        time.Duration `mapstructure:"tick_interval"`
	DaemonPollInterval  time.Duration `mapstructure:"daemon_poll_interval"`
	Verbose             bool          `mapstructure:"verbose"`
	CzarinaDir          string        `mapstructure:"czarina_dir"`
}

// LoadOperational reads CZARINA_* environment variables (and any flags
// already bound into v by the caller) on top of built-in defaults.
func LoadOperational(v *viper.Viper) (Operational, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix("CZARINA")
	v.AutomaticEnv()

	v.SetDefault("tick_interval", 30*time.Second)
	v.SetDefault("daemon_poll_interval", 2*time.Second)
	v.SetDefault("verbose", false)
	v.SetDefault("czarina_dir", ".czarina")

	var op Operational
	if err := v.Unmarshal(&op); err != nil {
		return Operational{}, err
	}
	return op, nil
}
