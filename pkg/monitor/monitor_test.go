package monitor

import (
	"strings"
	"testing"
)

func TestWriteReportPassesValidation(t *testing.T) {
	var b strings.Builder
	err := WriteReport(&b, []string{"hostname: WS-042", "os: Windows 11 Pro"},
		"DiskStatus", FormatStatus(SeverityOK, "41.2% free on C:"))
	if err != nil {
		t.Fatal(err)
	}
	if problems := Validate(b.String(), "DiskStatus"); problems != nil {
		t.Fatalf("round-trip output failed validation: %v", problems)
	}
}

func TestWriteReportEmptyDiagnosticStillValid(t *testing.T) {
	var b strings.Builder
	if err := WriteReport(&b, nil, "Status", "OK: idle"); err != nil {
		t.Fatal(err)
	}
	if problems := Validate(b.String(), "Status"); problems != nil {
		t.Fatalf("empty diagnostic block failed validation: %v", problems)
	}
}

func TestValidateRejectsMissingMarker(t *testing.T) {
	text := StartDiagnostic + "\n" + EndDiagnostic + "\n" +
		StartResult + "\nStatus=OK: fine\n"
	problems := Validate(text, "Status")
	if len(problems) == 0 {
		t.Fatal("expected a problem for the missing End Result marker")
	}
}

func TestValidateRejectsDuplicateMarker(t *testing.T) {
	text := StartDiagnostic + "\n" + StartDiagnostic + "\n" + EndDiagnostic + "\n" +
		StartResult + "\nStatus=OK: fine\n" + EndResult + "\n"
	if problems := Validate(text, "Status"); len(problems) == 0 {
		t.Fatal("expected a problem for a duplicated Start Diagnostic marker")
	}
}

func TestValidateRejectsWrongMarkerOrder(t *testing.T) {
	text := StartResult + "\nStatus=OK: fine\n" + EndResult + "\n" +
		StartDiagnostic + "\ndetails\n" + EndDiagnostic + "\n"
	problems := Validate(text, "Status")
	if len(problems) != 1 || !strings.Contains(problems[0], "order") {
		t.Fatalf("expected a marker order problem, got %v", problems)
	}
}

func TestValidateRejectsTwoResultLines(t *testing.T) {
	text := StartDiagnostic + "\n" + EndDiagnostic + "\n" +
		StartResult + "\nStatus=OK: one\nStatus=OK: two\n" + EndResult + "\n"
	if problems := Validate(text, "Status"); len(problems) == 0 {
		t.Fatal("expected a problem for two result lines")
	}
}

func TestValidateRejectsExtraNoiseInResultBlock(t *testing.T) {
	text := StartDiagnostic + "\n" + EndDiagnostic + "\n" +
		StartResult + "\nStatus=OK: fine\nstray debug output\n" + EndResult + "\n"
	if problems := Validate(text, "Status"); len(problems) == 0 {
		t.Fatal("expected a problem for a stray line inside the result block")
	}
}

func TestValidateRejectsSpaceAfterEquals(t *testing.T) {
	text := StartDiagnostic + "\n" + EndDiagnostic + "\n" +
		StartResult + "\nStatus= OK: fine\n" + EndResult + "\n"
	problems := Validate(text, "Status")
	if len(problems) != 1 || !strings.Contains(problems[0], "space") {
		t.Fatalf("expected a space-after-equals problem, got %v", problems)
	}
}

func TestValidateRejectsEmptyResultBlock(t *testing.T) {
	text := StartDiagnostic + "\n" + EndDiagnostic + "\n" +
		StartResult + "\n\n" + EndResult + "\n"
	if problems := Validate(text, "Status"); len(problems) == 0 {
		t.Fatal("expected a problem for an empty result block")
	}
}

func TestValidateRejectsWrongVariableName(t *testing.T) {
	text := StartDiagnostic + "\n" + EndDiagnostic + "\n" +
		StartResult + "\nWrongVar=OK: fine\n" + EndResult + "\n"
	if problems := Validate(text, "Status"); len(problems) == 0 {
		t.Fatal("expected a problem when the output variable name does not match")
	}
}

func TestFormatStatus(t *testing.T) {
	if got := FormatStatus(SeverityCritical, "4.0% free on C:"); got != "CRIT: 4.0% free on C:" {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestDiskStatusDescribe(t *testing.T) {
	s := DiskStatus{Path: "C:", FreePercent: 25.5, FreeBytes: 64 << 30, TotalBytes: 256 << 30}
	got := s.Describe()
	if !strings.Contains(got, "25.5% free on C:") || !strings.Contains(got, "64.0 GB of 256.0 GB") {
		t.Fatalf("unexpected description %q", got)
	}
}
