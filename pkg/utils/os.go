package utils

import "runtime"

// GetCurrentOS returns the current operating system type
func GetCurrentOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "macos"
	case "windows":
		return "windows"
	case "linux":
		return "linux"
	}
	return "unknown"
}
