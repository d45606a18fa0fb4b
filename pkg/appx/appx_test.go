package appx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/windowsadmins/silverback/pkg/command"
	"github.com/windowsadmins/silverback/pkg/logging"
)

type spyRunner struct {
	specs    []command.Spec
	exitFor  map[string]int   // substring of the script -> exit code
	errFor   map[string]error // substring of the script -> run error
	stderrOn string           // stderr text attached to non-zero exits
}

func (s *spyRunner) Run(_ context.Context, spec command.Spec) (command.Result, error) {
	s.specs = append(s.specs, spec)
	script := spec.Args[len(spec.Args)-1]
	for sub, err := range s.errFor {
		if strings.Contains(script, sub) {
			return command.Result{ExitCode: -1}, err
		}
	}
	for sub, code := range s.exitFor {
		if strings.Contains(script, sub) {
			return command.Result{ExitCode: code, Stderr: s.stderrOn}, nil
		}
	}
	return command.Result{ExitCode: 0}, nil
}

func TestRemoveAllDefaultsSucceed(t *testing.T) {
	runner := &spyRunner{}
	summary := Remove(context.Background(), runner, logging.Discard(), Options{})

	if !summary.Ok() {
		t.Fatalf("unexpected failures: %v", summary.Failed)
	}
	if len(summary.Removed) != len(DefaultTargets) {
		t.Fatalf("removed %d of %d targets", len(summary.Removed), len(DefaultTargets))
	}
	if len(runner.specs) != len(DefaultTargets) {
		t.Fatalf("expected one invocation per target, got %d", len(runner.specs))
	}
}

func TestRemoveHonorsSkipSet(t *testing.T) {
	runner := &spyRunner{}
	opts := Options{Skip: SkipSet([]string{"Microsoft.XboxApp", " spotifyab.spotifymusic "})}
	summary := Remove(context.Background(), runner, logging.Discard(), opts)

	if len(summary.Skipped) != 2 {
		t.Fatalf("expected 2 skipped, got %v", summary.Skipped)
	}
	for _, spec := range runner.specs {
		script := spec.Args[len(spec.Args)-1]
		if strings.Contains(script, "Microsoft.XboxApp'") || strings.Contains(script, "SpotifyAB.SpotifyMusic") {
			t.Fatalf("skipped package was still invoked: %q", script)
		}
	}
}

func TestRemoveIncludesExtraTargets(t *testing.T) {
	runner := &spyRunner{}
	summary := Remove(context.Background(), runner, logging.Discard(), Options{
		Extra: []string{"Contoso.Trialware"},
	})

	if len(summary.Removed) != len(DefaultTargets)+1 {
		t.Fatalf("extra target not removed: %v", summary.Removed)
	}
	found := false
	for _, spec := range runner.specs {
		if strings.Contains(spec.Args[len(spec.Args)-1], "Contoso.Trialware") {
			found = true
		}
	}
	if !found {
		t.Fatal("no invocation for the extra target")
	}
}

func TestRemoveCollectsFailuresAndKeepsGoing(t *testing.T) {
	runner := &spyRunner{
		exitFor:  map[string]int{"Microsoft.SkypeApp": 1},
		errFor:   map[string]error{"Microsoft.People": errors.New("powershell unavailable")},
		stderrOn: "Remove-AppxPackage : access denied",
	}
	summary := Remove(context.Background(), runner, logging.Discard(), Options{})

	if summary.Ok() {
		t.Fatal("expected failures to be reported")
	}
	if len(summary.Failed) != 2 {
		t.Fatalf("expected 2 failures, got %v", summary.Failed)
	}
	if detail := summary.Failed["Microsoft.SkypeApp"]; !strings.Contains(detail, "access denied") {
		t.Errorf("non-zero exit should carry stderr detail, got %q", detail)
	}
	if len(summary.Removed) != len(DefaultTargets)-2 {
		t.Errorf("one failure must not stop the rest; removed %d", len(summary.Removed))
	}
}

func TestRemovalSpecShape(t *testing.T) {
	spec := removalSpec("Microsoft.BingNews")
	script := spec.Args[len(spec.Args)-1]
	if !strings.Contains(script, "Get-AppxPackage -AllUsers -Name 'Microsoft.BingNews'") {
		t.Errorf("unexpected script %q", script)
	}
	if !strings.Contains(script, "Remove-AppxPackage -AllUsers") {
		t.Errorf("script missing removal stage: %q", script)
	}
	joined := strings.Join(spec.Args, " ")
	if !strings.Contains(joined, "-NoProfile") || !strings.Contains(joined, "-NonInteractive") {
		t.Errorf("unexpected flags %v", spec.Args)
	}
}

func TestSkipSetNormalizes(t *testing.T) {
	set := SkipSet([]string{" Microsoft.GetHelp ", "", "KING.COM.CandyCrushSaga"})
	if len(set) != 2 {
		t.Fatalf("unexpected set %v", set)
	}
	if !set["microsoft.gethelp"] || !set["king.com.candycrushsaga"] {
		t.Fatalf("entries not lowercased: %v", set)
	}
}
