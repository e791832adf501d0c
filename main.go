// Command czarina is the orchestration supervisor's CLI entrypoint.
package main

import "github.com/czarina-dev/czarina/cmd"

func main() {
	cmd.Execute()
}
