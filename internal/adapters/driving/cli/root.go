// Package cli provides the lorekeep command-line interface.
//
// Commands open the store on demand, run one operation and close it again,
// so concurrent invocations only contend on the persistence backend.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lorekeep/internal/app"
	"github.com/custodia-labs/lorekeep/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Global flags.
var (
	storeDir    string
	configPath  string
	backendName string
	verbose     bool
	quiet       bool
	jsonOutput  bool
	yamlOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "lorekeep",
	Short: "Local-first knowledge store",
	Long: `lorekeep stores text as content-addressed, citable chunks and retrieves
them with keyword, TF-IDF and (optionally) embedding search.

Nothing is ever physically deleted: forgetting writes a tombstone that hides
the target from every read and search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		logger.SetQuiet(quiet)
		if jsonOutput && yamlOutput {
			return errors.New("--json and --yaml are mutually exclusive")
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&storeDir, "dir", "d", "", "store directory (default from config, then ~/.lorekeep/store)")
	pf.StringVar(&configPath, "config", "", "config file (default ~/.lorekeep/config.toml)")
	pf.StringVar(&backendName, "backend", "", "table backend: jsonfile, sqlite, badger or memory")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print debug logging to stderr")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress warnings")
	pf.BoolVar(&jsonOutput, "json", false, "output as JSON")
	pf.BoolVar(&yamlOutput, "yaml", false, "output as YAML")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands such as
// watch use to stop.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// loadSettings resolves settings from the config file and global flags.
func loadSettings() (app.Settings, error) {
	cfg, err := file.NewConfigStore(configPath)
	if err != nil {
		return app.Settings{}, err
	}
	settings := app.LoadSettings(cfg)
	if storeDir != "" {
		settings.Dir = storeDir
	}
	if backendName != "" {
		settings.Backend = backendName
	}
	return settings, nil
}

// openApp opens the store for one command. Callers must Close it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return app.Open(cmd.Context(), settings)
}
