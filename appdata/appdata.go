// Package appdata locates the OS-appropriate per-user directory for an
// application's persistent state, following the conventions of each major
// platform (roaming/local AppData on Windows, Application Support on macOS,
// the home directory on Plan 9, and ~/.config on Linux, the BSDs and any
// other system; the XDG_CONFIG_HOME variable is not consulted).
package appdata

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Dir returns the directory this application should use to store data, for
// the current operating system. If roaming is true, the returned path is one
// that is synced across machines on platforms that support it (Windows
// roaming profiles); otherwise a machine-local path is used.
func Dir(appName string, roaming bool) string {
	return GetDataDir(runtime.GOOS, appName, roaming)
}

// GetDataDir is the OS-parameterized implementation behind Dir, split out so
// it can be exercised against every supported GOOS value from a single
// process in tests.
func GetDataDir(goos, appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}
	// Strip a leading period if one was supplied; it is re-added only on
	// platforms that use dotfile conventions.
	appName = strings.TrimPrefix(appName, ".")
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	switch goos {
	case "windows":
		// Windows XP and before didn't have a LOCALAPPDATA, fall back to
		// APPDATA (roaming) if it isn't set.
		appData := os.Getenv("LOCALAPPDATA")
		if roaming || appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			return "."
		}
		return filepath.Join(appData, upperFirst(appName))
	case "darwin":
		if homeDir == "" {
			return "."
		}
		return filepath.Join(homeDir, "Library", "Application Support", upperFirst(appName))
	case "plan9":
		if homeDir == "" {
			return "."
		}
		return filepath.Join(homeDir, lowerFirst(appName))
	default:
		// Linux, *BSD, and anything unrecognized follows the XDG base
		// directory convention: ~/.config/<appname>.
		if homeDir == "" {
			return "."
		}
		return filepath.Join(homeDir, ".config", lowerFirst(appName))
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
