// pkg/deploy/manager.go - the install state machine.
//
// Three states: Absent, PresentMatching, PresentOther. A transition either
// short-circuits (the desired state already holds), invokes one bounded
// child process, or refuses with a structured failure. Cross-version
// upgrades are never attempted in place; the caller is told to uninstall
// first.

package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	version "github.com/hashicorp/go-version"

	"github.com/windowsadmins/silverback/pkg/blocking"
	"github.com/windowsadmins/silverback/pkg/command"
	"github.com/windowsadmins/silverback/pkg/inventory"
	"github.com/windowsadmins/silverback/pkg/logging"
)

type presence int

const (
	stateAbsent presence = iota
	statePresentMatching
	statePresentOther
)

// Manager answers "is X installed, and in what form" and drives one
// idempotent transition per component run.
type Manager struct {
	source inventory.Source
	runner command.Runner
	log    *logging.Logger

	// appRunning is injectable so tests can seed running processes.
	appRunning func(*logging.Logger, string) bool
}

// New creates a Manager over the given inventory source and process runner.
func New(source inventory.Source, runner command.Runner, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		source:     source,
		runner:     runner,
		log:        log,
		appRunning: blocking.IsAppRunning,
	}
}

// QueryInstalled returns the current matching records. Re-reads the OS state
// on every call; an empty slice means absent.
func (m *Manager) QueryInstalled(namePattern string) ([]inventory.Record, error) {
	return inventory.Query(m.source, namePattern)
}

// Transition drives the state machine. It never returns an error: every
// fault from the OS boundary is folded into a Failure result, because the
// invoking platform can only interpret a structured result and an exit code.
func (m *Manager) Transition(ctx context.Context, req Request) Result {
	if req.NamePattern == "" {
		return Result{Outcome: OutcomeFailure, Message: "name pattern must not be empty"}
	}

	matched, err := inventory.Query(m.source, req.NamePattern)
	if err != nil {
		return m.failure("querying installed products", err)
	}

	if names := inventory.DistinctNames(matched); len(names) > 1 {
		m.log.Error("Pattern %q matched %d unrelated products: %s",
			req.NamePattern, len(names), strings.Join(names, ", "))
		return Result{
			Outcome: OutcomeFailure,
			Kind:    KindAmbiguousMatch,
			Matched: matched,
			Message: fmt.Sprintf("pattern %q matched multiple unrelated products (%s); tighten the pattern",
				req.NamePattern, strings.Join(names, ", ")),
		}
	}

	state := m.classify(req, matched)
	m.log.Info("Transition requested: action=%s pattern=%q state=%d matches=%d",
		req.Action, req.NamePattern, state, len(matched))

	switch req.Action {
	case ActionInstall, ActionEnsureLatest:
		return m.install(ctx, req, state, matched)
	case ActionUninstall:
		return m.uninstall(ctx, req, state, matched)
	default:
		return Result{Outcome: OutcomeFailure, Matched: matched,
			Message: fmt.Sprintf("unsupported action: %v", req.Action)}
	}
}

// classify maps the matched records to one of the three states. EnsureLatest
// additionally compares the installed version against the request's floor; an
// unparseable version is treated as matching rather than forcing a reinstall.
func (m *Manager) classify(req Request, matched []inventory.Record) presence {
	if len(matched) == 0 {
		return stateAbsent
	}
	if req.Action == ActionEnsureLatest && req.MinVersion != "" {
		if isOlderVersion(matched[0].DisplayVersion, req.MinVersion) {
			return statePresentOther
		}
	}
	return statePresentMatching
}

func (m *Manager) install(ctx context.Context, req Request, state presence, matched []inventory.Record) Result {
	switch state {
	case statePresentMatching:
		rec := matched[0]
		m.log.Info("Already installed: %s %s; no action", rec.DisplayName, rec.DisplayVersion)
		return Result{
			Outcome: OutcomeSuccess,
			Matched: matched,
			Message: fmt.Sprintf("%s %s already installed; no action taken", rec.DisplayName, rec.DisplayVersion),
		}

	case statePresentOther:
		rec := matched[0]
		m.log.Error("Installed %s %s does not satisfy minimum version %s",
			rec.DisplayName, rec.DisplayVersion, req.MinVersion)
		return Result{
			Outcome: OutcomeFailure,
			Matched: matched,
			Message: fmt.Sprintf("%s %s is installed but does not satisfy minimum version %s; uninstall it first, then install",
				rec.DisplayName, rec.DisplayVersion, req.MinVersion),
		}

	default: // stateAbsent
		if req.Installer.Path == "" {
			return Result{Outcome: OutcomeFailure,
				Message: fmt.Sprintf("no installer configured for %q", req.NamePattern)}
		}
		if running := m.runningBlockingApps(req.BlockingApps); len(running) > 0 {
			m.log.Warning("Install of %q blocked by running applications: %s",
				req.NamePattern, strings.Join(running, ", "))
			return Result{
				Outcome: OutcomeFailure,
				Kind:    KindBlocked,
				Message: fmt.Sprintf("blocked by running applications: %s", strings.Join(running, ", ")),
			}
		}
		return m.invoke(ctx, req, req.Installer, matched, "installer")
	}
}

func (m *Manager) uninstall(ctx context.Context, req Request, state presence, matched []inventory.Record) Result {
	if state == stateAbsent {
		m.log.Info("Nothing matching %q installed; uninstall is a no-op", req.NamePattern)
		return Result{
			Outcome: OutcomeSuccess,
			Message: fmt.Sprintf("nothing matching %q is installed; no action taken", req.NamePattern),
		}
	}

	rec := matched[0]
	if running := m.runningBlockingApps(req.BlockingApps); len(running) > 0 {
		m.log.Warning("Uninstall of %q blocked by running applications: %s",
			rec.DisplayName, strings.Join(running, ", "))
		return Result{
			Outcome: OutcomeFailure,
			Kind:    KindBlocked,
			Matched: matched,
			Message: fmt.Sprintf("blocked by running applications: %s", strings.Join(running, ", ")),
		}
	}

	spec, err := uninstallSpec(rec)
	if err != nil {
		return Result{Outcome: OutcomeFailure, Matched: matched,
			Message: fmt.Sprintf("cannot derive uninstall command for %s: %v", rec.DisplayName, err)}
	}
	return m.invoke(ctx, req, spec, matched, "uninstaller")
}

// invoke runs one child process, bounded by the request timeout, and maps
// its exit code through the fixed table. The installer log scan may append
// annotations but never overrides the exit-code verdict.
func (m *Manager) invoke(ctx context.Context, req Request, spec command.Spec, matched []inventory.Record, verb string) Result {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m.log.Info("Running %s: %s (timeout %s)", verb, spec, timeout)
	res, err := m.runner.Run(runCtx, spec)
	if errors.Is(err, command.ErrTimeout) {
		m.log.Error("%s timed out after %s and was terminated", verb, timeout)
		return Result{
			Outcome:  OutcomeFailure,
			ExitCode: res.ExitCode,
			Matched:  matched,
			Kind:     KindProcessTimeout,
			Message:  fmt.Sprintf("%s timed out after %s; process terminated", verb, timeout),
		}
	}
	if err != nil {
		return m.failure(fmt.Sprintf("starting %s", verb), err)
	}

	outcome, meaning := mapExitCode(res.ExitCode)
	msg := fmt.Sprintf("%s exited with code %d (%s)", verb, res.ExitCode, meaning)
	if note := scanInstallerLog(req.InstallerLog); note != "" {
		msg += "; " + note
	}

	kind := KindNone
	if outcome == OutcomeFailure {
		kind = KindProcessNonZeroExit
		m.log.Error("%s", msg)
	} else {
		m.log.Info("%s", msg)
	}

	return Result{
		Outcome:  outcome,
		ExitCode: res.ExitCode,
		Matched:  matched,
		Message:  msg,
		Kind:     kind,
	}
}

func (m *Manager) runningBlockingApps(apps []string) []string {
	var running []string
	for _, app := range apps {
		if app == "" {
			continue
		}
		if m.appRunning(m.log, app) {
			running = append(running, app)
		}
	}
	return running
}

// failure converts an OS-boundary error into a structured failure result.
func (m *Manager) failure(context string, err error) Result {
	if errors.Is(err, fs.ErrPermission) {
		m.log.Error("%s: access denied: %v", context, err)
		return Result{
			Outcome: OutcomeFailure,
			Kind:    KindPermissionDenied,
			Message: fmt.Sprintf("%s: access denied; run the component elevated", context),
		}
	}
	m.log.Error("%s: %v", context, err)
	return Result{
		Outcome: OutcomeFailure,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// isOlderVersion reports whether installed is strictly older than floor.
// Parse failures on either side report false so a malformed version string
// does not trigger a surprise reinstall.
func isOlderVersion(installed, floor string) bool {
	vInstalled, errInstalled := version.NewVersion(installed)
	vFloor, errFloor := version.NewVersion(floor)
	if errInstalled != nil || errFloor != nil {
		return false
	}
	return vInstalled.LessThan(vFloor)
}
