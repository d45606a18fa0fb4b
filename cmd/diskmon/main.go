// cmd/diskmon/main.go - free-space monitor component.
//
// Exit contract for monitors: 0 healthy, non-zero alert. Severity is
// carried in the result line, not the exit code.

package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/windowsadmins/silverback/pkg/facts"
	"github.com/windowsadmins/silverback/pkg/monitor"
	"github.com/windowsadmins/silverback/pkg/version"
)

const defaultMinFreePercent = 10.0

func main() {
	os.Exit(run())
}

func run() int {
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")
	outputVar := pflag.String("output-var", "Status", "Monitor output variable name.")
	pflag.Parse()

	if *versionFlag {
		version.Print()
		return 0
	}

	path := defaultVolume()
	if v, ok := os.LookupEnv("Drive"); ok && v != "" {
		path = v
	}

	minFree := defaultMinFreePercent
	if v, ok := os.LookupEnv("MinFreePercent"); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			minFree = parsed
		}
	}

	sys := facts.Collect()
	diagnostic := append(sys.Lines(),
		fmt.Sprintf("volume: %s", path),
		fmt.Sprintf("threshold: %.1f%% free", minFree),
	)

	status, healthy, err := monitor.CheckDisk(path, minFree)
	var value string
	switch {
	case err != nil:
		diagnostic = append(diagnostic, fmt.Sprintf("check error: %v", err))
		value = monitor.FormatStatus(monitor.SeverityCritical,
			fmt.Sprintf("unable to read disk usage for %s", path))
		healthy = false
	case healthy:
		value = monitor.FormatStatus(monitor.SeverityOK, status.Describe())
	default:
		value = monitor.FormatStatus(monitor.SeverityCritical,
			fmt.Sprintf("%s, below %.1f%% threshold", status.Describe(), minFree))
	}

	if err := monitor.WriteReport(os.Stdout, diagnostic, *outputVar, value); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write monitor report: %v\n", err)
		return 1
	}

	if healthy {
		return 0
	}
	return 1
}

func defaultVolume() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}
