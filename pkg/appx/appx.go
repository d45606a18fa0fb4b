// pkg/appx/appx.go - preinstalled AppX bloatware removal.
//
// AppX packages live outside the uninstall registry and have their own
// removal pipeline; a package that is already gone removes as a clean no-op,
// so running the component repeatedly is safe.

package appx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/windowsadmins/silverback/pkg/command"
	"github.com/windowsadmins/silverback/pkg/logging"
)

// DefaultTargets lists the preinstalled consumer packages removed unless a
// skip flag says otherwise. Patterns are AppX package family name globs.
var DefaultTargets = []string{
	"Microsoft.3DBuilder",
	"Microsoft.BingNews",
	"Microsoft.BingWeather",
	"Microsoft.GetHelp",
	"Microsoft.Getstarted",
	"Microsoft.Messaging",
	"Microsoft.Microsoft3DViewer",
	"Microsoft.MicrosoftOfficeHub",
	"Microsoft.MicrosoftSolitaireCollection",
	"Microsoft.MixedReality.Portal",
	"Microsoft.People",
	"Microsoft.SkypeApp",
	"Microsoft.WindowsFeedbackHub",
	"Microsoft.Xbox.TCUI",
	"Microsoft.XboxApp",
	"Microsoft.XboxGameOverlay",
	"Microsoft.XboxGamingOverlay",
	"Microsoft.ZuneMusic",
	"Microsoft.ZuneVideo",
	"king.com.CandyCrushSaga",
	"SpotifyAB.SpotifyMusic",
}

// removeTimeout bounds one Remove-AppxPackage invocation.
const removeTimeout = 5 * time.Minute

// Options controls a removal run.
type Options struct {
	Skip  map[string]bool // lowercased package patterns to leave alone
	Extra []string        // additional patterns beyond DefaultTargets
}

// Summary reports what a removal run did.
type Summary struct {
	Removed []string
	Skipped []string
	Failed  map[string]string // pattern -> failure detail
}

// Ok reports whether every non-skipped target was removed.
func (s Summary) Ok() bool {
	return len(s.Failed) == 0
}

// SkipSet builds a skip lookup from a configured list.
func SkipSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, name := range list {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			set[strings.ToLower(trimmed)] = true
		}
	}
	return set
}

// Remove drives the removal of every target not in the skip set. Failures
// are collected per package; one stubborn package does not stop the rest.
func Remove(ctx context.Context, runner command.Runner, log *logging.Logger, opts Options) Summary {
	summary := Summary{Failed: make(map[string]string)}

	targets := append(append([]string{}, DefaultTargets...), opts.Extra...)
	for _, pattern := range targets {
		if opts.Skip[strings.ToLower(pattern)] {
			log.Info("Skipping %s (skip flag set)", pattern)
			summary.Skipped = append(summary.Skipped, pattern)
			continue
		}

		runCtx, cancel := context.WithTimeout(ctx, removeTimeout)
		res, err := runner.Run(runCtx, removalSpec(pattern))
		cancel()

		if err != nil {
			log.Error("Failed to remove %s: %v", pattern, err)
			summary.Failed[pattern] = err.Error()
			continue
		}
		if res.ExitCode != 0 {
			detail := strings.TrimSpace(res.Stderr)
			if detail == "" {
				detail = fmt.Sprintf("exit code %d", res.ExitCode)
			}
			log.Error("Failed to remove %s: %s", pattern, detail)
			summary.Failed[pattern] = detail
			continue
		}

		log.Info("Removed %s (or it was already absent)", pattern)
		summary.Removed = append(summary.Removed, pattern)
	}

	return summary
}

// removalSpec builds the PowerShell invocation for one package pattern.
// The pipeline is empty when the package is absent, which exits zero.
func removalSpec(pattern string) command.Spec {
	script := fmt.Sprintf(
		"Get-AppxPackage -AllUsers -Name '%s' | Remove-AppxPackage -AllUsers", pattern)
	return command.Spec{
		Path: powershellPath(),
		Args: []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script},
	}
}

func powershellPath() string {
	if windir := os.Getenv("WINDIR"); windir != "" {
		return filepath.Join(windir, "system32", "WindowsPowershell", "v1.0", "powershell.exe")
	}
	return "powershell"
}
