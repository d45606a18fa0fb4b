// pkg/facts/facts.go - system facts included in diagnostics and deploy logs.

package facts

import (
	"fmt"
	"os"
	"runtime"
)

// SystemFacts contains core system information.
type SystemFacts struct {
	Hostname     string `json:"hostname"`
	OSName       string `json:"os_name"`
	OSVersion    string `json:"os_version"`
	Architecture string `json:"architecture"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
}

// Collect gathers facts about the local machine. Individual probes that
// fail leave their fields empty; Collect itself always succeeds.
func Collect() SystemFacts {
	f := SystemFacts{
		OSName:       runtime.GOOS,
		Architecture: normalizeArch(runtime.GOARCH),
	}
	if hostname, err := os.Hostname(); err == nil {
		f.Hostname = hostname
	}
	collectPlatform(&f)
	return f
}

// Lines renders the facts for a monitor diagnostic block.
func (f SystemFacts) Lines() []string {
	lines := []string{
		fmt.Sprintf("hostname: %s", f.Hostname),
		fmt.Sprintf("os: %s %s", f.OSName, f.OSVersion),
		fmt.Sprintf("arch: %s", f.Architecture),
	}
	if f.Manufacturer != "" || f.Model != "" {
		lines = append(lines, fmt.Sprintf("hardware: %s %s", f.Manufacturer, f.Model))
	}
	return lines
}

func normalizeArch(arch string) string {
	switch arch {
	case "amd64", "x86_64":
		return "x64"
	case "386":
		return "x86"
	default:
		return arch
	}
}
