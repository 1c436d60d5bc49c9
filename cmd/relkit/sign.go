package main

import (
	"github.com/spf13/cobra"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/pipeline"
	"github.com/relkit/relkit/internal/release"
)

var (
	signToolchainName string
	signKeyPath       string
	signGPGKey        string
	signTimestampURL  string
)

var signCmd = &cobra.Command{
	Use:   "sign <version> <file|glob>...",
	Short: "Sign existing release artifacts",
	Long: `Sign release artifacts that already exist on disk.

Files matching the given patterns are partitioned by extension:
executables and installers are code-signed with the toolchain's signing
tool, and installers and archives get a detached GPG signature plus a
SHA-256 digest file next to the artifact.

Examples:
  relkit sign 2.4.0 release/App-2.4.0.msi
  relkit sign 2.4.0 'release/App-2.4.0.*' --key release.pfx`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSign,
}

func init() {
	signCmd.Flags().StringVar(&signToolchainName, "toolchain", "", "Toolchain name to use (default: prompt when ambiguous)")
	signCmd.Flags().StringVar(&signKeyPath, "key", "", "Binary-signing key file")
	signCmd.Flags().StringVar(&signGPGKey, "gpg-key", "", "GPG key for detached signatures")
	signCmd.Flags().StringVar(&signTimestampURL, "timestamp-url", "", "Timestamp server for binary signatures")
	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, args []string) error {
	v, err := release.Parse(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(&config.Config{})
	if err != nil {
		return err
	}

	env := newEnv(cfg)
	return pipeline.Sign(cmd.Context(), env, pipeline.SignParams{
		Version:       v,
		ToolchainName: signToolchainName,
		KeyPath:       signKeyPath,
		GPGKey:        signGPGKey,
		TimestampURL:  signTimestampURL,
		Patterns:      args[1:],
	})
}
