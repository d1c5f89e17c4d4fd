package installer

import (
	"fmt"
	"os"
	"path/filepath"
)

// intermediate answers that are not configuration.
var scratchKeys = []string{"SETUP_TELEGRAM"}

// Save writes the answers to <runtimePath>/.env. An existing file is kept
// unless overwrite is set.
func Save(state *InstallState, runtimePath string, overwrite bool) (string, error) {
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(runtimePath, ".env")
	if _, err := os.Stat(envPath); err == nil && !overwrite {
		return "", fmt.Errorf(".env file already exists at %s", envPath)
	}

	for _, k := range scratchKeys {
		delete(state.EnvVars, k)
	}

	if err := os.WriteFile(envPath, []byte(state.Render()), 0600); err != nil {
		return "", err
	}
	return envPath, nil
}
