// Package toolchain discovers installed build environments and selects one
// per run. Selection order: explicit name match, sole candidate, interactive
// numeric choice. An explicit name that matches nothing falls back to the
// first candidate; callers rely on that forgiving behavior.
package toolchain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// descriptorFile marks a directory as a toolchain installation.
const descriptorFile = "toolchain.yaml"

// Candidate is one discovered toolchain installation.
type Candidate struct {
	// Name identifies the toolchain (descriptor name, or directory basename).
	Name string

	// Path is the installation directory.
	Path string
}

// Descriptor is the parsed toolchain.yaml inside an installation.
type Descriptor struct {
	// Name overrides the directory basename as the candidate name.
	Name string `yaml:"name"`

	// Env holds environment variables exported into build steps.
	Env map[string]string `yaml:"env"`

	// Tools maps logical tool names (cmake, signtool, ...) to paths inside
	// the installation.
	Tools map[string]string `yaml:"tools"`
}

// Discover scans the given roots for toolchain installations. A candidate is
// a direct subdirectory of a root containing toolchain.yaml. The listing is
// order-stable: roots in the given order, subdirectories sorted by name.
func Discover(roots []string) []Candidate {
	var found []Candidate
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			dir := filepath.Join(root, name)
			desc, err := LoadDescriptor(dir)
			if err != nil {
				continue
			}
			candidate := Candidate{Name: name, Path: dir}
			if desc.Name != "" {
				candidate.Name = desc.Name
			}
			found = append(found, candidate)
		}
	}
	return found
}

// LoadDescriptor reads and parses toolchain.yaml from an installation dir.
func LoadDescriptor(dir string) (*Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(dir, descriptorFile))
	if err != nil {
		return nil, err
	}
	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", descriptorFile, err)
	}
	return &desc, nil
}

// SelectionSource supplies the 1-based index for an interactive choice.
// Tests swap in a fixed-index source.
type SelectionSource interface {
	Pick(count int) (int, error)
}

// PromptSource reads a numeric selection from In after the caller prints the
// enumerated candidate list.
type PromptSource struct {
	In  io.Reader
	Out io.Writer
}

// Pick prompts for and parses a 1-based selection.
func (p *PromptSource) Pick(count int) (int, error) {
	fmt.Fprintf(p.Out, "Select a toolchain [1-%d]: ", count)
	reader := bufio.NewReader(p.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return 0, &SelectionError{Input: "", Count: count}
	}
	line = strings.TrimSpace(line)
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, &SelectionError{Input: line, Count: count}
	}
	return n, nil
}

// Select resolves exactly one candidate.
//
// Empty set: ErrNoToolchain. Explicit name: exact match, else the first
// candidate. Single candidate: silent pick. Several candidates and no name:
// enumerate 1-based in discovery order on out and ask src for an index;
// anything outside [1, len] is fatal.
func Select(candidates []Candidate, explicitName string, src SelectionSource, out io.Writer) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoToolchain
	}

	if explicitName != "" {
		for _, c := range candidates {
			if c.Name == explicitName {
				return c, nil
			}
		}
		return candidates[0], nil
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}

	for i, c := range candidates {
		fmt.Fprintf(out, "  %d) %s (%s)\n", i+1, c.Name, c.Path)
	}
	n, err := src.Pick(len(candidates))
	if err != nil {
		return Candidate{}, err
	}
	if n < 1 || n > len(candidates) {
		return Candidate{}, &SelectionError{Input: strconv.Itoa(n), Count: len(candidates)}
	}
	return candidates[n-1], nil
}
