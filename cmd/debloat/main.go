// cmd/debloat/main.go - preinstalled AppX bloatware removal component.
//
// SkipPackages (comma-separated) exempts packages from the built-in target
// list; ExtraPackages adds to it. Already-absent packages remove cleanly,
// so repeated runs are no-ops.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/windowsadmins/silverback/pkg/appx"
	"github.com/windowsadmins/silverback/pkg/command"
	"github.com/windowsadmins/silverback/pkg/config"
	"github.com/windowsadmins/silverback/pkg/logging"
	"github.com/windowsadmins/silverback/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")
	listOnly := pflag.Bool("list", false, "List removal targets and exit.")

	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity")
	pflag.Parse()

	if *versionFlag {
		version.Print()
		return 0
	}

	opts := appx.Options{
		Skip:  appx.SkipSet(envList("SkipPackages")),
		Extra: envList("ExtraPackages"),
	}

	if *listOnly {
		for _, pattern := range appx.DefaultTargets {
			marker := " "
			if opts.Skip[strings.ToLower(pattern)] {
				marker = "skip"
			}
			fmt.Printf("%-4s %s\n", marker, pattern)
		}
		return 0
	}

	level := logging.LevelInfo
	if verbosity >= 1 {
		level = logging.LevelDebug
	}
	log, err := logging.New(logging.Options{Level: level, FilePath: config.Defaults().LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer log.Close()

	summary := appx.Remove(context.Background(), command.ExecRunner{}, log, opts)
	fmt.Printf("Removed %d, skipped %d, failed %d\n",
		len(summary.Removed), len(summary.Skipped), len(summary.Failed))
	for pattern, detail := range summary.Failed {
		fmt.Printf("failed: %s: %s\n", pattern, detail)
	}

	if summary.Ok() {
		return 0
	}
	return 1
}

func envList(name string) []string {
	val, ok := os.LookupEnv(name)
	if !ok || val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
