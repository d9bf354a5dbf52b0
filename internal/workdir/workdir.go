// Package workdir manages where the practicum CLI keeps recordings.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RecordingFile is the file name of a saved practice recording.
const RecordingFile = "practice.mp3"

// Root returns the base directory for all practicum working files.
// The path is expanded at runtime to resolve to:
//
//	$HOME/Documents/Alkime/Practicum
func Root() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, "Documents", "Alkime", "Practicum"), nil
}

// WorkPath returns the full path for a recording directory with the given
// name.
func WorkPath(workingName string) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "recordings", workingName), nil
}

// FilePath returns the full path for a file in a working directory.
func FilePath(workingName, filename string) (string, error) {
	workPath, err := WorkPath(workingName)
	if err != nil {
		return "", err
	}
	return filepath.Join(workPath, filename), nil
}

// Prep ensures that the working directory for the given name exists.
func Prep(workingName string) error {
	workPath, err := WorkPath(workingName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(workPath, 0o755); err != nil {
		return fmt.Errorf("failed to create working directory %s: %w", workPath, err)
	}

	return nil
}

// Name picks a working name: the sanitized explicit name if given,
// otherwise a timestamp.
func Name(explicit string, now time.Time) string {
	if name := SanitizeName(explicit); name != "" {
		return name
	}

	return now.Format("2006-01-02-150405")
}

// SanitizeName makes name safe for use as a directory name. Characters
// that are invalid in file paths become hyphens.
func SanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
	)

	// Trim leading/trailing spaces and hyphens
	return strings.Trim(replacer.Replace(name), " -")
}
