package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gitgate/gitgate/internal/branch"
	"github.com/gitgate/gitgate/internal/git"
	"github.com/gitgate/gitgate/internal/policy"
)

// policyFileName is the repo-local override file at the repository root.
const policyFileName = ".gitgate.yaml"

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gitgate"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage gitgate configuration.

Running bare 'gitgate config' is the same as 'gitgate config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# gitgate configuration
# See: gitgate config show (for effective values and sources)

# Ticket reference pattern (default: {{ .TicketPattern }})
ticket:
  pattern: "{{ .TicketPattern }}"

# Run settings
run:
  # Concurrent validators per run; 1 runs them sequentially (default: 1)
  workers: {{ .Workers }}

# Hook settings
hooks:
  # Binary the installed hook scripts invoke (default: "gitgate")
  bin: "{{ .HooksBin }}"

# Policy overrides by branch classification. Absent fields inherit the
# built-in defaults. Repo-local overrides go in .gitgate.yaml at the
# repository root and win over this file.
#
# policies:
#   main:
#     max_change_set_size: 5
#   feature:
#     require_conventional_commits: true
`

type configTemplateData struct {
	TicketPattern string
	Workers       int
	HooksBin      string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		TicketPattern: viper.GetString("ticket.pattern"),
		Workers:       viper.GetInt("run.workers"),
		HooksBin:      viper.GetString("hooks.bin"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "ticket.pattern", EnvVar: "GITGATE_TICKET_PATTERN"},
	{Key: "run.workers", EnvVar: "GITGATE_RUN_WORKERS"},
	{Key: "hooks.bin", EnvVar: "GITGATE_HOOKS_BIN"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}

	localPath := "(not in a repository)"
	if root := currentRepoRoot(); root != "" {
		localPath = filepath.Join(root, policyFileName)
		if _, err := os.Stat(localPath); err != nil {
			localPath += " (none)"
		}
	}
	ui.Info("Repo overrides: %s", localPath)
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-16s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set, set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'gitgate config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}

// currentRepoRoot resolves the enclosing repository root, or "" when the
// working directory is not inside one.
func currentRepoRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	root, err := git.NewClient().RepoRoot(cwd)
	if err != nil {
		return ""
	}
	return root
}

// loadPolicyFile parses one override file. A missing file is not an error.
func loadPolicyFile(path string) (*policy.File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := policy.ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// loadPolicyConfig merges the global config's policies section with the
// repo-local .gitgate.yaml (repo wins) and resolves the effective ticket
// pattern. An empty repoRoot skips the repo-local file.
func loadPolicyConfig(repoRoot string) (map[branch.Classification]policy.Override, string, error) {
	var global, local *policy.File

	if cfgPath, err := configFilePath(); err == nil {
		if global, err = loadPolicyFile(cfgPath); err != nil {
			return nil, "", err
		}
	}
	if repoRoot != "" {
		var err error
		if local, err = loadPolicyFile(filepath.Join(repoRoot, policyFileName)); err != nil {
			return nil, "", err
		}
	}

	overrides := policy.MergeOverrides(fileOverrides(global), fileOverrides(local))

	pattern := viper.GetString("ticket.pattern")
	if local != nil && local.Ticket.Pattern != "" {
		pattern = local.Ticket.Pattern
	}
	return overrides, pattern, nil
}

func fileOverrides(f *policy.File) map[branch.Classification]policy.Override {
	if f == nil {
		return nil
	}
	return f.Overrides()
}
