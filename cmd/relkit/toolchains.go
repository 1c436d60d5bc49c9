package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/formatter"
	"github.com/relkit/relkit/internal/toolchain"
)

var toolchainsCmd = &cobra.Command{
	Use:   "toolchains",
	Short: "List discovered toolchains",
	Long: `List the toolchain installations found under the configured search
paths. Each installation is a directory containing a toolchain.yaml
descriptor.

Examples:
  relkit toolchains
  relkit toolchains --config ci.yaml`,
	RunE: runToolchains,
}

func init() {
	rootCmd.AddCommand(toolchainsCmd)
}

func runToolchains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(&config.Config{})
	if err != nil {
		return err
	}

	candidates := toolchain.Discover(cfg.Toolchains.SearchPaths)
	if len(candidates) == 0 {
		fmt.Printf("No toolchains found under: %s\n", strings.Join(cfg.Toolchains.SearchPaths, ", "))
		return nil
	}

	table := formatter.NewTable(os.Stdout, "NAME", "PATH", "TOOLS")
	for _, c := range candidates {
		tools := "-"
		if desc, err := toolchain.LoadDescriptor(c.Path); err == nil && len(desc.Tools) > 0 {
			names := make([]string, 0, len(desc.Tools))
			for name := range desc.Tools {
				names = append(names, name)
			}
			sort.Strings(names)
			tools = strings.Join(names, ", ")
		}
		table.AddRow(c.Name, c.Path, tools)
	}
	return table.Render()
}
