// pkg/blocking/blocking.go - refuse to run installers while the target
// application is in use. An installer racing a running copy of the product
// tends to leave a half-upgraded install behind.

package blocking

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/windowsadmins/silverback/pkg/logging"
)

// IsAppRunning checks if a specific application is currently running.
// appName may be an executable name ("foxit.exe"), a bare name ("foxit"),
// or an absolute path.
func IsAppRunning(log *logging.Logger, appName string) bool {
	procs, err := process.Processes()
	if err != nil {
		log.Error("Failed to enumerate processes: %v", err)
		return false
	}

	clean := strings.ToLower(appName)
	byPath := strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, `c:\`)

	for _, proc := range procs {
		name, err := proc.Name()
		if err != nil {
			continue
		}
		procName := strings.ToLower(name)

		if byPath {
			exe, err := proc.Exe()
			if err != nil {
				continue
			}
			if strings.EqualFold(exe, appName) {
				log.Debug("Found running app by path: %s", exe)
				return true
			}
			continue
		}

		if strings.HasSuffix(clean, ".exe") {
			if procName == clean {
				log.Debug("Found running app by exe name: %s", procName)
				return true
			}
			continue
		}

		if procName == clean || procName == clean+".exe" {
			log.Debug("Found running app by name: %s", procName)
			return true
		}
	}
	return false
}

// RunningApps returns which of the given applications are currently running.
func RunningApps(log *logging.Logger, apps []string) []string {
	var running []string
	for _, app := range apps {
		if app == "" {
			continue
		}
		if IsAppRunning(log, app) {
			running = append(running, app)
		}
	}
	return running
}
