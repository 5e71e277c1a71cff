package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "AutomationStudio"

// GetWorkflowsDir returns the per-user directory where saved workflows live
// for the current operating system.
func GetWorkflowsDir() string {
	var appDataDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\AutomationStudio\workflows
		appData := os.Getenv("APPDATA")
		if appData != "" {
			appDataDir = filepath.Join(appData, appDirName, "workflows")
		}
	case "darwin":
		// macOS: ~/Library/Application Support/AutomationStudio/workflows
		homeDir, err := os.UserHomeDir()
		if err == nil {
			appDataDir = filepath.Join(homeDir, "Library", "Application Support", appDirName, "workflows")
		}
	}

	if appDataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			appDataDir = filepath.Join(homeDir, "."+appDirName, "workflows")
		} else {
			appDataDir = filepath.Join(".", "workflows")
		}
	}

	return appDataDir
}
