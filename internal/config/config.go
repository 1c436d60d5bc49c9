// Package config provides configuration management for relkit.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (RELKIT_*)
// 3. Project config (.relkit/config.yaml in cwd)
// 4. Home config (~/.relkit/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all relkit configuration.
type Config struct {
	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Git settings
	Git GitConfig `yaml:"git" json:"git"`

	// Build settings
	Build BuildConfig `yaml:"build" json:"build"`

	// Signing settings
	Signing SigningConfig `yaml:"signing" json:"signing"`

	// Toolchains settings
	Toolchains ToolchainsConfig `yaml:"toolchains" json:"toolchains"`

	// Markers lists the project files that must carry the release version.
	Markers MarkersConfig `yaml:"markers" json:"markers"`

	// Translations settings for the merge pipeline.
	Translations TranslationsConfig `yaml:"translations" json:"translations"`
}

// GitConfig holds version-control settings.
type GitConfig struct {
	// TargetBranch is the branch release merges land on.
	TargetBranch string `yaml:"target_branch" json:"target_branch"`
}

// BuildConfig holds build/packaging settings.
type BuildConfig struct {
	// Generator is the build-system generator passed at configure time.
	Generator string `yaml:"generator" json:"generator"`

	// BuildDir is the out-of-tree build directory.
	BuildDir string `yaml:"build_dir" json:"build_dir"`

	// OutputDir is where finished packages are collected.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Options are extra configure options (KEY=VALUE).
	Options []string `yaml:"options" json:"options"`

	// PackageFormats are the package generators invoked after compiling.
	PackageFormats []string `yaml:"package_formats" json:"package_formats"`
}

// SigningConfig holds code-signing settings.
type SigningConfig struct {
	// Key is the path of the binary-signing key file.
	Key string `yaml:"key" json:"key"`

	// GPGKey identifies the key used for detached signatures.
	GPGKey string `yaml:"gpg_key" json:"gpg_key"`

	// TimestampURL is the timestamp server used for binary signatures.
	TimestampURL string `yaml:"timestamp_url" json:"timestamp_url"`

	// Description is the label embedded in binary signatures.
	Description string `yaml:"description" json:"description"`
}

// ToolchainsConfig holds toolchain discovery settings.
type ToolchainsConfig struct {
	// SearchPaths are the roots scanned for toolchain installations.
	SearchPaths []string `yaml:"search_paths" json:"search_paths"`
}

// MarkersConfig names the files checked for version markers before a merge.
type MarkersConfig struct {
	// BuildManifest carries the project(... VERSION x.y.z) line.
	BuildManifest string `yaml:"build_manifest" json:"build_manifest"`

	// Changelog carries the dated "## x.y.z (YYYY-MM-DD)" section header.
	Changelog string `yaml:"changelog" json:"changelog"`

	// Metainfo carries the <release version="x.y.z"> entry.
	Metainfo string `yaml:"metainfo" json:"metainfo"`

	// PackagingManifest carries the "version: x.y.z" line.
	PackagingManifest string `yaml:"packaging_manifest" json:"packaging_manifest"`
}

// TranslationsConfig names the translation tooling run during a merge.
type TranslationsConfig struct {
	// ExtractCommand regenerates the translation source file.
	ExtractCommand string `yaml:"extract_command" json:"extract_command"`

	// ExtractArgs are the arguments for ExtractCommand.
	ExtractArgs []string `yaml:"extract_args" json:"extract_args"`

	// PullCommand syncs translations from the remote service.
	PullCommand string `yaml:"pull_command" json:"pull_command"`

	// PullArgs are the arguments for PullCommand.
	PullArgs []string `yaml:"pull_args" json:"pull_args"`
}

// Default config values (used in resolution and validation).
const (
	defaultTargetBranch = "master"
	defaultGenerator    = "Ninja"
	defaultBuildDir     = "build-release"
	defaultOutputDir    = "release"
	defaultTimestampURL = "http://timestamp.sectigo.com"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Git: GitConfig{
			TargetBranch: defaultTargetBranch,
		},
		Build: BuildConfig{
			Generator:      defaultGenerator,
			BuildDir:       defaultBuildDir,
			OutputDir:      defaultOutputDir,
			PackageFormats: []string{"ZIP", "WIX"},
		},
		Signing: SigningConfig{
			TimestampURL: defaultTimestampURL,
			Description:  "Release build",
		},
		Toolchains: ToolchainsConfig{
			SearchPaths: defaultToolchainRoots(),
		},
		Markers: MarkersConfig{
			BuildManifest:     "CMakeLists.txt",
			Changelog:         "CHANGELOG.md",
			Metainfo:          filepath.Join("share", "metainfo.xml"),
			PackagingManifest: filepath.Join("snap", "snapcraft.yaml"),
		},
		Translations: TranslationsConfig{
			ExtractCommand: "lupdate",
			ExtractArgs:    []string{"-no-ui-lines", "src", "-ts", "share/translations/app_en.ts"},
			PullCommand:    "tx",
			PullArgs:       []string{"pull", "--all", "--force"},
		},
	}
}

// defaultToolchainRoots returns the platform-default discovery roots.
func defaultToolchainRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return []string{filepath.Join("/opt", "toolchains")}
	}
	return []string{
		filepath.Join(home, ".relkit", "toolchains"),
		filepath.Join("/opt", "toolchains"),
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".relkit", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("RELKIT_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".relkit", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if os.Getenv("RELKIT_VERBOSE") == "true" || os.Getenv("RELKIT_VERBOSE") == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("RELKIT_TARGET_BRANCH"); v != "" {
		cfg.Git.TargetBranch = v
	}
	if v := os.Getenv("RELKIT_GENERATOR"); v != "" {
		cfg.Build.Generator = v
	}
	if v := os.Getenv("RELKIT_BUILD_DIR"); v != "" {
		cfg.Build.BuildDir = v
	}
	if v := os.Getenv("RELKIT_OUTPUT_DIR"); v != "" {
		cfg.Build.OutputDir = v
	}
	if v := os.Getenv("RELKIT_SIGNING_KEY"); v != "" {
		cfg.Signing.Key = v
	}
	if v := os.Getenv("RELKIT_GPG_KEY"); v != "" {
		cfg.Signing.GPGKey = v
	}
	if v := os.Getenv("RELKIT_TIMESTAMP_URL"); v != "" {
		cfg.Signing.TimestampURL = v
	}
	if v := os.Getenv("RELKIT_TOOLCHAIN_PATHS"); v != "" {
		cfg.Toolchains.SearchPaths = filepath.SplitList(v)
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeList overwrites dst with src when src is non-empty.
func mergeList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	if src.Verbose {
		dst.Verbose = true
	}

	mergeStr(&dst.Git.TargetBranch, src.Git.TargetBranch)

	mergeStr(&dst.Build.Generator, src.Build.Generator)
	mergeStr(&dst.Build.BuildDir, src.Build.BuildDir)
	mergeStr(&dst.Build.OutputDir, src.Build.OutputDir)
	mergeList(&dst.Build.Options, src.Build.Options)
	mergeList(&dst.Build.PackageFormats, src.Build.PackageFormats)

	mergeStr(&dst.Signing.Key, src.Signing.Key)
	mergeStr(&dst.Signing.GPGKey, src.Signing.GPGKey)
	mergeStr(&dst.Signing.TimestampURL, src.Signing.TimestampURL)
	mergeStr(&dst.Signing.Description, src.Signing.Description)

	mergeList(&dst.Toolchains.SearchPaths, src.Toolchains.SearchPaths)

	mergeStr(&dst.Markers.BuildManifest, src.Markers.BuildManifest)
	mergeStr(&dst.Markers.Changelog, src.Markers.Changelog)
	mergeStr(&dst.Markers.Metainfo, src.Markers.Metainfo)
	mergeStr(&dst.Markers.PackagingManifest, src.Markers.PackagingManifest)

	mergeStr(&dst.Translations.ExtractCommand, src.Translations.ExtractCommand)
	mergeList(&dst.Translations.ExtractArgs, src.Translations.ExtractArgs)
	mergeStr(&dst.Translations.PullCommand, src.Translations.PullCommand)
	mergeList(&dst.Translations.PullArgs, src.Translations.PullArgs)

	return dst
}
