// pkg/deploy/logscan.go - advisory scan of vendor installer logs.
//
// Some installers write a log file whose ERROR/WARNING markers occasionally
// contradict their own exit code. The exit code is authoritative; the scan
// only annotates the result message. It must never turn a successful exit
// into a failure.

package deploy

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// maxScanLine guards against installers that dump binary data into logs.
const maxScanLine = 1024 * 1024

// scanInstallerLog counts ERROR and WARNING markers in the given log file
// and returns a one-line annotation, or "" when there is nothing to say.
// A missing or unreadable log is fine; the scan is best-effort.
func scanInstallerLog(path string) string {
	if path == "" {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var errorLines, warningLines int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxScanLine)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "ERROR"):
			errorLines++
		case strings.Contains(line, "WARNING"):
			warningLines++
		}
	}
	if scanner.Err() != nil || (errorLines == 0 && warningLines == 0) {
		return ""
	}
	return fmt.Sprintf("installer log contains %d ERROR and %d WARNING marker line(s) (advisory only)",
		errorLines, warningLines)
}
