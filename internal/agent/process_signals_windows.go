//go:build windows

package agent

import (
	"os"
	"syscall"
)

// terminationSignals are the signals forwarded from the parent to a spawned
// agent child process. SIGBREAK is Windows's analogue of SIGTERM.
func terminationSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGBREAK}
}
