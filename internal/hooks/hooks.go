package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitgate/gitgate/internal/git"
	"github.com/gitgate/gitgate/internal/validate"
)

// marker identifies hook scripts this installer owns. Anything without it
// is somebody else's hook and is never touched silently.
const marker = "# gitgate:managed"

// backupSuffix is appended to a foreign hook we replace, so uninstall can
// put it back.
const backupSuffix = ".pre-gitgate"

// HookState classifies what currently sits at a hook path.
type HookState string

const (
	StateMissing HookState = "missing"
	StateManaged HookState = "managed"
	StateForeign HookState = "foreign"
)

// HookStatus is one hook's installation state.
type HookStatus struct {
	Event      validate.Event
	State      HookState
	Executable bool
	HasBackup  bool
}

// InstallResult reports what Install did for one hook.
type InstallResult struct {
	Event    validate.Event
	BackedUp bool
}

// UninstallResult reports what Uninstall did for one hook.
type UninstallResult struct {
	Event    validate.Event
	Restored bool
}

// Installer writes the hook scripts that route git's lifecycle events into
// the pipeline.
type Installer struct {
	client git.Client
	bin    string
}

// NewInstaller returns an installer that invokes bin from the hook scripts.
// An empty bin falls back to "gitgate" on PATH.
func NewInstaller(client git.Client, bin string) *Installer {
	if bin == "" {
		bin = "gitgate"
	}
	return &Installer{client: client, bin: bin}
}

// Install writes all four hook scripts into .git/hooks. A foreign hook is
// an error unless force is set, in which case it is backed up first.
// Reinstalling over our own hooks just refreshes them.
func (i *Installer) Install(repoPath string, force bool) ([]InstallResult, error) {
	dir, err := i.hooksDir(repoPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create hooks dir: %w", err)
	}

	var results []InstallResult
	for _, event := range validate.Events {
		path := filepath.Join(dir, string(event))
		result := InstallResult{Event: event}

		switch classify(path) {
		case StateForeign:
			if !force {
				return nil, fmt.Errorf("existing %s hook is not managed by gitgate; re-run with --force to back it up and replace it", event)
			}
			if err := os.Rename(path, path+backupSuffix); err != nil {
				return nil, fmt.Errorf("back up %s hook: %w", event, err)
			}
			result.BackedUp = true
		case StateManaged, StateMissing:
			// Overwrite or create.
		}

		if err := os.WriteFile(path, []byte(i.script(event)), 0755); err != nil {
			return nil, fmt.Errorf("write %s hook: %w", event, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Uninstall removes managed hooks and restores any backups. Foreign hooks
// are left alone.
func (i *Installer) Uninstall(repoPath string) ([]UninstallResult, error) {
	dir, err := i.hooksDir(repoPath)
	if err != nil {
		return nil, err
	}

	var results []UninstallResult
	for _, event := range validate.Events {
		path := filepath.Join(dir, string(event))
		if classify(path) != StateManaged {
			continue
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove %s hook: %w", event, err)
		}

		result := UninstallResult{Event: event}
		if _, err := os.Stat(path + backupSuffix); err == nil {
			if err := os.Rename(path+backupSuffix, path); err != nil {
				return nil, fmt.Errorf("restore %s hook: %w", event, err)
			}
			result.Restored = true
		}
		results = append(results, result)
	}
	return results, nil
}

// Status reports the installation state of every hook.
func (i *Installer) Status(repoPath string) ([]HookStatus, error) {
	dir, err := i.hooksDir(repoPath)
	if err != nil {
		return nil, err
	}

	statuses := make([]HookStatus, 0, len(validate.Events))
	for _, event := range validate.Events {
		path := filepath.Join(dir, string(event))
		status := HookStatus{Event: event, State: classify(path)}
		if info, err := os.Stat(path); err == nil {
			status.Executable = info.Mode()&0111 != 0
		}
		if _, err := os.Stat(path + backupSuffix); err == nil {
			status.HasBackup = true
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (i *Installer) hooksDir(repoPath string) (string, error) {
	gitDir, err := i.client.GitDir(repoPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(gitDir, "hooks"), nil
}

func (i *Installer) script(event validate.Event) string {
	return fmt.Sprintf("#!/bin/sh\n%s\nexec %s run %s \"$@\"\n", marker, i.bin, event)
}

func classify(path string) HookState {
	data, err := os.ReadFile(path)
	if err != nil {
		return StateMissing
	}
	if strings.Contains(string(data), marker) {
		return StateManaged
	}
	return StateForeign
}
