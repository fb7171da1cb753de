package installer

import (
	"context"
	"os"

	"github.com/mitchellh/go-ps"

	"github.com/veracode/cli-installer/internal/logger"
)

// toolProcessNames lists executables that must not be running while the
// installation directory is replaced.
var toolProcessNames = map[string]struct{}{
	"veracode":     {},
	"veracode.exe": {},
}

// terminateToolProcesses kills running instances of the installed tool so the
// installation directory can be removed and replaced safely.
func terminateToolProcesses(ctx context.Context) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		processID := process.Pid()
		if processID == thisProcessID {
			continue
		}

		if _, found := toolProcessNames[process.Executable()]; !found {
			continue
		}

		runningProcess, err := os.FindProcess(processID)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Terminating running tool process", "pid", processID)

		if err := runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
