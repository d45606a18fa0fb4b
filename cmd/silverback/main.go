// cmd/silverback/main.go - the Applications-category component binary.
//
// Reads its configuration from the environment the RMM platform injects,
// drives one idempotent install/uninstall transition, and reports through
// the exit-code contract: 0 success, 3010 reboot required, 1641 reboot
// initiated, anything else failure.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/silverback/pkg/command"
	"github.com/windowsadmins/silverback/pkg/config"
	"github.com/windowsadmins/silverback/pkg/deploy"
	"github.com/windowsadmins/silverback/pkg/download"
	"github.com/windowsadmins/silverback/pkg/facts"
	"github.com/windowsadmins/silverback/pkg/inventory"
	"github.com/windowsadmins/silverback/pkg/logging"
	"github.com/windowsadmins/silverback/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	showConfig := pflag.Bool("show-config", false, "Display the resolved configuration and exit.")
	checkOnly := pflag.Bool("checkonly", false, "Report the current install state without acting.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv)")
	pflag.Parse()

	if *versionFlag {
		version.Print()
		return 0
	}

	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if verbosity >= 2 || cfg.Debug {
		level = logging.LevelDebug
	} else if verbosity == 1 && level < logging.LevelInfo {
		level = logging.LevelInfo
	}

	log, err := logging.New(logging.Options{Level: level, FilePath: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer log.Close()

	if *showConfig {
		if out, err := yaml.Marshal(cfg); err == nil {
			fmt.Printf("Resolved configuration:\n%s", out)
		}
		return 0
	}

	if err := cfg.Validate(); err != nil {
		// The one fatal, pre-transition condition: no valid request can be built.
		log.Error("Invalid configuration: %v", err)
		return 1
	}

	sys := facts.Collect()
	log.Info("Running on %s (%s %s, %s)", sys.Hostname, sys.OSName, sys.OSVersion, sys.Architecture)

	source := inventory.NewSystemSource()
	manager := deploy.New(source, command.ExecRunner{}, log)

	if *checkOnly {
		return reportState(manager, cfg, log)
	}

	// Resolve the installer: a configured URL is fetched into the cache and
	// takes the place of InstallerPath.
	action, err := deploy.ParseAction(cfg.Action)
	if err != nil {
		log.Error("Invalid configuration: %v", err)
		return 1
	}
	if action != deploy.ActionUninstall && cfg.InstallerURL != "" && cfg.InstallerPath == "" {
		local, err := download.Fetch(cfg.InstallerURL, cfg.CachePath, cfg.InstallerSHA256, log)
		if err != nil {
			log.Error("Installer download failed: %v", err)
			return 1
		}
		cfg.InstallerPath = local
	}

	req, err := cfg.Request()
	if err != nil {
		log.Error("Invalid configuration: %v", err)
		return 1
	}

	result := manager.Transition(context.Background(), req)
	log.Info("Transition finished: outcome=%s exit=%d message=%s",
		result.Outcome, result.ExitCode, result.Message)
	fmt.Println(result.Message)

	return result.ProcessExitCode()
}

// reportState prints what is currently installed without acting on it.
func reportState(manager *deploy.Manager, cfg *config.Settings, log *logging.Logger) int {
	records, err := manager.QueryInstalled(cfg.ProductName)
	if err != nil {
		log.Error("Failed to query installed products: %v", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Printf("Nothing matching %q is installed.\n", cfg.ProductName)
		return 0
	}
	for _, rec := range records {
		fmt.Printf("%s %s (%s)\n", rec.DisplayName, rec.DisplayVersion, rec.Publisher)
	}
	return 0
}
