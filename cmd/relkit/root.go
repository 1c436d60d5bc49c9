package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/execx"
	"github.com/relkit/relkit/internal/pipeline"
	"github.com/relkit/relkit/internal/signing"
	"github.com/relkit/relkit/internal/toolchain"
)

var (
	// Global flags
	verbose    bool
	cfgFile    string
	pathPrefix string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "relkit",
	Short: "Release orchestration for desktop builds",
	Long: `relkit sequences a desktop software release: it validates version
metadata, merges the release branch, tags the repository, drives the native
build and packaging, and signs the resulting artifacts.

Release Modes:
  merge        Merge a release branch into the target branch and tag it
  build        Build, package and sign release binaries
  sign         Sign existing release artifacts

Every mode runs its external steps in a fixed order and fails fast: the
first failing step aborts the run and the starting branch and working
directory are restored.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.relkit/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&pathPrefix, "path-prefix", "", "Directory consulted before PATH when resolving tools")
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(cfgFile)
	if path == "" {
		return
	}
	_ = os.Setenv("RELKIT_CONFIG", path)
}

// VerbosePrintf prints only when verbose mode is enabled.
func VerbosePrintf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

// loadConfig resolves configuration with flag overrides applied.
func loadConfig(overrides *config.Config) (*config.Config, error) {
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newEnv builds the pipeline environment for one run.
func newEnv(cfg *config.Config) *pipeline.Env {
	return &pipeline.Env{
		Runner:   execx.NewProcessRunner(pathPrefix),
		Cfg:      cfg,
		Out:      os.Stdout,
		Selector: &toolchain.PromptSource{In: os.Stdin, Out: os.Stdout},
		Password: signing.TerminalPassword{},
		Verbose:  cfg.Verbose,
	}
}

// repoDirOrCwd resolves the repository directory flag to an absolute path,
// defaulting to the current directory. The pipelines change directory, so a
// relative path would resolve against the wrong base after the first step.
func repoDirOrCwd(flagValue string) (string, error) {
	if flagValue != "" {
		dir, err := filepath.Abs(flagValue)
		if err != nil {
			return "", fmt.Errorf("resolve repository directory: %w", err)
		}
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}
