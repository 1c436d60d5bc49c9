package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/toolchain"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check release tooling health",
	Long: `Run health checks on the release environment.

Validates that the external tools every release mode depends on are
present and that at least one toolchain can be discovered. Optional
components are reported as warnings but do not cause failure.

Examples:
  relkit doctor
  relkit doctor --json`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // "pass", "warn", "fail"
	Detail   string `json:"detail"`
	Required bool   `json:"required"`
}

type doctorOutput struct {
	Checks  []doctorCheck `json:"checks"`
	Result  string        `json:"result"` // "HEALTHY", "UNHEALTHY"
	Summary string        `json:"summary"`
}

// gatherDoctorChecks runs all doctor checks and returns the results.
func gatherDoctorChecks(cfg *config.Config) []doctorCheck {
	return []doctorCheck{
		{Name: "relkit CLI", Status: "pass", Detail: fmt.Sprintf("v%s", version), Required: true},
		checkTool("git", true, "needed by every release mode"),
		checkTool("cmake", true, "needed to configure and compile"),
		checkTool("cpack", true, "needed to produce packages"),
		checkTool("gpg", false, "needed for detached signatures"),
		checkTool(cfg.Translations.ExtractCommand, false, "needed by the merge mode"),
		checkTool(cfg.Translations.PullCommand, false, "needed by the merge mode"),
		checkToolchains(cfg),
		checkSigningKey(cfg),
		checkConfigFiles(),
	}
}

// checkConfigFiles reports which config files are present and parseable.
func checkConfigFiles() doctorCheck {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".relkit", "config.yaml"))
	}
	if override := strings.TrimSpace(os.Getenv("RELKIT_CONFIG")); override != "" {
		paths = append(paths, override)
	} else if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".relkit", "config.yaml"))
	}

	var found []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg config.Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return doctorCheck{
				Name:     "Config",
				Status:   "fail",
				Detail:   fmt.Sprintf("%s does not parse: %v", path, err),
				Required: true,
			}
		}
		found = append(found, path)
	}

	if len(found) == 0 {
		return doctorCheck{Name: "Config", Status: "pass", Detail: "using defaults (no config files)", Required: true}
	}
	return doctorCheck{Name: "Config", Status: "pass", Detail: strings.Join(found, ", "), Required: true}
}

// checkTool verifies a program is available in PATH.
func checkTool(name string, required bool, reason string) doctorCheck {
	if _, err := exec.LookPath(name); err != nil {
		status := "warn"
		if required {
			status = "fail"
		}
		return doctorCheck{
			Name:     name,
			Status:   status,
			Detail:   fmt.Sprintf("not found (%s)", reason),
			Required: required,
		}
	}
	return doctorCheck{Name: name, Status: "pass", Detail: "available", Required: required}
}

// checkToolchains reports how many toolchain installations are discoverable.
func checkToolchains(cfg *config.Config) doctorCheck {
	candidates := toolchain.Discover(cfg.Toolchains.SearchPaths)
	if len(candidates) == 0 {
		return doctorCheck{
			Name:     "Toolchains",
			Status:   "warn",
			Detail:   fmt.Sprintf("none found under %s", strings.Join(cfg.Toolchains.SearchPaths, ", ")),
			Required: false,
		}
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return doctorCheck{
		Name:     "Toolchains",
		Status:   "pass",
		Detail:   fmt.Sprintf("%d found: %s", len(candidates), strings.Join(names, ", ")),
		Required: false,
	}
}

// checkSigningKey reports whether a binary-signing key is configured.
func checkSigningKey(cfg *config.Config) doctorCheck {
	if cfg.Signing.Key == "" {
		return doctorCheck{
			Name:     "Signing Key",
			Status:   "warn",
			Detail:   "not configured — binary signing will be skipped",
			Required: false,
		}
	}
	return doctorCheck{Name: "Signing Key", Status: "pass", Detail: cfg.Signing.Key, Required: false}
}

// doctorStatusIcon returns the display icon for a check status.
func doctorStatusIcon(status string) string {
	switch status {
	case "pass":
		return "✓"
	case "warn":
		return "!"
	case "fail":
		return "✗"
	}
	return "?"
}

// renderDoctorTable writes the formatted doctor output table.
func renderDoctorTable(w io.Writer, output doctorOutput) {
	fmt.Fprintln(w, "relkit doctor")
	fmt.Fprintln(w, "─────────────")

	maxName := 0
	for _, c := range output.Checks {
		if len(c.Name) > maxName {
			maxName = len(c.Name)
		}
	}

	for _, c := range output.Checks {
		padding := strings.Repeat(" ", maxName-len(c.Name))
		fmt.Fprintf(w, "%s %s%s  %s\n", doctorStatusIcon(c.Status), c.Name, padding, c.Detail)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", output.Summary)
}

// hasRequiredFailure returns true if any required check has failed.
func hasRequiredFailure(checks []doctorCheck) bool {
	for _, c := range checks {
		if c.Required && c.Status == "fail" {
			return true
		}
	}
	return false
}

// countCheckStatuses tallies pass, fail, and warn counts from checks.
func countCheckStatuses(checks []doctorCheck) (passes, fails, warns int) {
	for _, c := range checks {
		switch c.Status {
		case "pass":
			passes++
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}
	return passes, fails, warns
}

// buildDoctorSummary constructs a human-readable summary from check tallies.
func buildDoctorSummary(passes, fails, warns, total int) string {
	switch {
	case fails == 0 && warns == 0:
		return fmt.Sprintf("%d/%d checks passed", passes, total)
	case fails == 0:
		summary := fmt.Sprintf("%d/%d checks passed, %d warning", passes, total, warns)
		if warns > 1 {
			summary += "s"
		}
		return summary
	default:
		parts := []string{fmt.Sprintf("%d/%d checks passed", passes, total)}
		if warns > 0 {
			w := fmt.Sprintf("%d warning", warns)
			if warns > 1 {
				w += "s"
			}
			parts = append(parts, w)
		}
		parts = append(parts, fmt.Sprintf("%d failed", fails))
		return strings.Join(parts, ", ")
	}
}

func computeResult(checks []doctorCheck) doctorOutput {
	passes, fails, warns := countCheckStatuses(checks)

	result := "HEALTHY"
	if fails > 0 {
		result = "UNHEALTHY"
	}

	return doctorOutput{
		Checks:  checks,
		Result:  result,
		Summary: buildDoctorSummary(passes, fails, warns, len(checks)),
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(&config.Config{})
	if err != nil {
		return err
	}

	output := computeResult(gatherDoctorChecks(cfg))
	w := cmd.OutOrStdout()

	if doctorJSON {
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal doctor output: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	renderDoctorTable(w, output)

	if hasRequiredFailure(output.Checks) {
		return fmt.Errorf("doctor failed: one or more required checks did not pass")
	}

	return nil
}
