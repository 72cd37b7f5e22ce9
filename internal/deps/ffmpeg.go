package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// conventionalFFmpegDirs are checked when PATH resolution fails. Homebrew and
// system package managers install there without updating a daemon's PATH.
var conventionalFFmpegDirs = []string{
	"/usr/local/bin",
	"/opt/homebrew/bin",
	"/usr/bin",
}

// ResolveFFmpeg locates the ffmpeg binary the media engine will execute.
// An explicit override wins; otherwise PATH is consulted, then the
// conventional install locations.
func ResolveFFmpeg(override string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Video assembly",
	}

	if trimmed := strings.TrimSpace(override); trimmed != "" {
		result.Command = trimmed
		if info, err := os.Stat(trimmed); err == nil && isExecutable(info) {
			result.Available = true
			return result
		}
		if resolved, err := exec.LookPath(trimmed); err == nil {
			result.Command = resolved
			result.Available = true
			return result
		}
		result.Detail = fmt.Sprintf("configured binary %q not found", trimmed)
		return result
	}

	name := ffmpegName()
	if resolved, err := exec.LookPath(name); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}

	for _, dir := range conventionalFFmpegDirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			result.Command = candidate
			result.Available = true
			return result
		}
	}

	result.Command = name
	result.Detail = fmt.Sprintf("binary %q not found", name)
	return result
}

func ffmpegName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
