package launch

import "os"

// selfExecutable resolves the running binary's path for re-exec'ing the
// daemon subcommand detached (approvaldaemon.StartDetached).
func selfExecutable() (string, error) {
	return os.Executable()
}
