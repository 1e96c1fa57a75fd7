package ffmpegsource

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// findBinary resolves an ffmpeg-family executable. A non-empty custom path
// must exist; otherwise PATH and common install locations are searched.
func findBinary(name, custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%s: custom path %s not found", name, custom)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName = name + ".exe"
	}

	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonDirs []string
	if runtime.GOOS == "windows" {
		commonDirs = []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
		}
	} else {
		commonDirs = []string{
			"/usr/bin",
			"/usr/local/bin",
			"/opt/homebrew/bin",
			"/snap/bin",
		}
	}

	for _, dir := range commonDirs {
		p := dir + string(os.PathSeparator) + execName
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%s not found in PATH or common locations", name)
}
