package main

import (
	"github.com/spf13/cobra"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/pipeline"
	"github.com/relkit/relkit/internal/release"
)

var (
	buildTag            string
	buildSnapshot       bool
	buildToolchainName  string
	buildToolchainFile  string
	buildGenerator      string
	buildOutputDir      string
	buildOptions        []string
	buildPackageFormats []string
	buildSign           bool
	buildKeyPath        string
	buildGPGKey         string
	buildTimestampURL   string
	buildRepoDir        string
)

var buildCmd = &cobra.Command{
	Use:   "build <version>",
	Short: "Build, package and sign release binaries",
	Long: `Check out the release tag, configure and compile the project with
the selected toolchain, produce the configured package formats, and
collect the packages into the output directory.

With --snapshot the current HEAD is built under a -snapshot release name
without requiring a clean working tree or a tag. With --sign the built
binaries and produced packages are code-signed; archives additionally get
a detached GPG signature and a SHA-256 digest file.

Examples:
  relkit build 2.4.0
  relkit build 2.4.0 --toolchain msvc2022 --sign --key release.pfx
  relkit build 2.5.0 --snapshot -G "NMake Makefiles"`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildTag, "tag", "", "Tag to check out (default: the version)")
	buildCmd.Flags().BoolVar(&buildSnapshot, "snapshot", false, "Build the current HEAD as a snapshot")
	buildCmd.Flags().StringVar(&buildToolchainName, "toolchain", "", "Toolchain name to use (default: prompt when ambiguous)")
	buildCmd.Flags().StringVar(&buildToolchainFile, "toolchain-file", "", "Toolchain file passed at configure time")
	buildCmd.Flags().StringVarP(&buildGenerator, "generator", "G", "", "Build-system generator")
	buildCmd.Flags().StringVarP(&buildOutputDir, "output-dir", "o", "", "Directory for finished packages")
	buildCmd.Flags().StringArrayVarP(&buildOptions, "build-option", "D", nil, "Extra configure option (KEY=VALUE, repeatable)")
	buildCmd.Flags().StringSliceVar(&buildPackageFormats, "package-format", nil, "Package formats to produce")
	buildCmd.Flags().BoolVar(&buildSign, "sign", false, "Sign built binaries and packages")
	buildCmd.Flags().StringVar(&buildKeyPath, "key", "", "Binary-signing key file")
	buildCmd.Flags().StringVar(&buildGPGKey, "gpg-key", "", "GPG key for detached signatures")
	buildCmd.Flags().StringVar(&buildTimestampURL, "timestamp-url", "", "Timestamp server for binary signatures")
	buildCmd.Flags().StringVar(&buildRepoDir, "repo-dir", "", "Repository directory (default: current directory)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	v, err := release.Parse(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(&config.Config{})
	if err != nil {
		return err
	}

	repoDir, err := repoDirOrCwd(buildRepoDir)
	if err != nil {
		return err
	}

	env := newEnv(cfg)
	return pipeline.Build(cmd.Context(), env, pipeline.BuildParams{
		Version:        v,
		RepoDir:        repoDir,
		Tag:            buildTag,
		Snapshot:       buildSnapshot,
		ToolchainName:  buildToolchainName,
		ToolchainFile:  buildToolchainFile,
		Generator:      buildGenerator,
		OutputDir:      buildOutputDir,
		Options:        buildOptions,
		PackageFormats: buildPackageFormats,
		Sign:           buildSign,
		KeyPath:        buildKeyPath,
		GPGKey:         buildGPGKey,
		TimestampURL:   buildTimestampURL,
	})
}
