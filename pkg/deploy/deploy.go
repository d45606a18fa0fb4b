// pkg/deploy/deploy.go - request/result types and the exit-code contract for
// idempotent install state transitions.

package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/windowsadmins/silverback/pkg/command"
	"github.com/windowsadmins/silverback/pkg/inventory"
)

// Action is the requested state transition.
type Action int

const (
	ActionInstall Action = iota
	ActionUninstall
	ActionEnsureLatest
)

func (a Action) String() string {
	switch a {
	case ActionInstall:
		return "install"
	case ActionUninstall:
		return "uninstall"
	case ActionEnsureLatest:
		return "ensurelatest"
	default:
		return "unknown"
	}
}

// ParseAction converts a configuration string to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "install":
		return ActionInstall, nil
	case "uninstall":
		return ActionUninstall, nil
	case "ensurelatest", "ensure-latest":
		return ActionEnsureLatest, nil
	default:
		return 0, fmt.Errorf("unsupported action: %q", s)
	}
}

// Outcome is the tri-state transition result.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRebootRequired
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRebootRequired:
		return "success-reboot-required"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Kind classifies why a transition failed. KindNone accompanies every
// non-failure outcome. A product that is simply absent is a valid state,
// not a Kind.
type Kind int

const (
	KindNone Kind = iota
	KindAmbiguousMatch
	KindProcessTimeout
	KindProcessNonZeroExit
	KindPermissionDenied
	KindBlocked
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAmbiguousMatch:
		return "ambiguous-match"
	case KindProcessTimeout:
		return "process-timeout"
	case KindProcessNonZeroExit:
		return "process-nonzero-exit"
	case KindPermissionDenied:
		return "permission-denied"
	case KindBlocked:
		return "blocked-by-running-app"
	default:
		return "unknown"
	}
}

// Installer exit codes with a documented meaning. Everything else non-zero
// is a failure.
const (
	ExitSuccess         = 0
	ExitRebootInitiated = 1641
	ExitRebootRequired  = 3010
)

// DefaultTimeout bounds installer runs when the request does not set one.
const DefaultTimeout = 15 * time.Minute

// Request describes one transition. It is built once per component run and
// not mutated afterwards.
type Request struct {
	NamePattern  string        // matched case-insensitively against display names
	Action       Action
	Installer    command.Spec  // invoked for Install / EnsureLatest from Absent
	Timeout      time.Duration // per-process bound; DefaultTimeout when zero
	MinVersion   string        // EnsureLatest version floor
	BlockingApps []string      // refuse to act while any of these run
	InstallerLog string        // advisory text scan, never authoritative
}

// Result is the structured outcome handed back to the RMM platform. The
// invoking pipeline can only interpret a process exit code, so every fault
// ends up here rather than propagating.
type Result struct {
	Outcome  Outcome
	ExitCode int // underlying process exit code, if a process ran
	Matched  []inventory.Record
	Message  string
	Kind     Kind
}

// ProcessExitCode maps the result onto the Applications exit-code contract:
// 0 success, 3010/1641 success variants passed through, non-zero otherwise.
func (r Result) ProcessExitCode() int {
	switch r.Outcome {
	case OutcomeSuccess:
		return ExitSuccess
	case OutcomeRebootRequired:
		if r.ExitCode == ExitRebootRequired || r.ExitCode == ExitRebootInitiated {
			return r.ExitCode
		}
		return ExitRebootRequired
	default:
		if r.ExitCode > 0 {
			return r.ExitCode
		}
		return 1
	}
}

// mapExitCode interprets an installer exit code through the fixed table.
func mapExitCode(code int) (Outcome, string) {
	switch code {
	case ExitSuccess:
		return OutcomeSuccess, "success"
	case ExitRebootRequired:
		return OutcomeRebootRequired, "success, reboot required"
	case ExitRebootInitiated:
		return OutcomeRebootRequired, "success, reboot initiated"
	default:
		return OutcomeFailure, "failure"
	}
}

// msiexecPath resolves the Windows Installer binary the way the uninstall
// registry expects it to be invoked.
func msiexecPath() string {
	if windir := os.Getenv("WINDIR"); windir != "" {
		return filepath.Join(windir, "system32", "msiexec.exe")
	}
	return "msiexec"
}
