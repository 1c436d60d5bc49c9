package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/pipeline"
	"github.com/relkit/relkit/internal/release"
)

var (
	mergeSourceBranch string
	mergeTargetBranch string
	mergeRepoDir      string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <version>",
	Short: "Merge a release branch into the target branch and tag it",
	Long: `Merge the current release branch into the target branch and create
a signed, annotated release tag.

Before merging, the version must already be present in the project's
build manifest, changelog, metainfo, and packaging manifest. Translation
sources are regenerated and pulled from the translation service, and
committed when they changed. The merge commit and the tag both carry the
changelog section for this version.

Examples:
  relkit merge 2.4.0
  relkit merge 2.4.0 --target-branch main
  relkit merge 2.4.0-beta1 --source-branch release/2.4`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeSourceBranch, "source-branch", "", "Branch to merge (default: current branch)")
	mergeCmd.Flags().StringVar(&mergeTargetBranch, "target-branch", "", "Branch to merge into (default: configured target)")
	mergeCmd.Flags().StringVar(&mergeRepoDir, "repo-dir", "", "Repository directory (default: current directory)")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	v, err := release.Parse(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(&config.Config{
		Git: config.GitConfig{TargetBranch: mergeTargetBranch},
	})
	if err != nil {
		return err
	}

	repoDir, err := repoDirOrCwd(mergeRepoDir)
	if err != nil {
		return err
	}

	env := newEnv(cfg)
	if err := pipeline.Merge(cmd.Context(), env, pipeline.MergeParams{
		Version:      v,
		RepoDir:      repoDir,
		SourceBranch: mergeSourceBranch,
	}); err != nil {
		return err
	}

	fmt.Printf("Release %s merged into %s and tagged\n", v, cfg.Git.TargetBranch)
	return nil
}
