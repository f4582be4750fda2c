package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultVersion is reported when neither APP_VERSION nor a VERSION file is found
const DefaultVersion = "0.1.0"

// GetVersion returns APP_VERSION when set (CI/CD builds), otherwise the
// VERSION file plus the git commit count
func GetVersion() string {
	if envVersion := strings.TrimSpace(os.Getenv("APP_VERSION")); envVersion != "" {
		return envVersion
	}

	base := readVersionFile(".", "..")
	if count := gitCommitCount(); count > 0 {
		return base + "." + strconv.Itoa(count)
	}
	return base
}

// readVersionFile returns the content of the first VERSION file found in dirs
func readVersionFile(dirs ...string) string {
	for _, dir := range dirs {
		content, err := os.ReadFile(filepath.Join(dir, "VERSION"))
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(string(content)); v != "" {
			return v
		}
	}
	return DefaultVersion
}

func gitCommitCount() int {
	output, err := exec.Command("git", "rev-list", "--count", "HEAD").Output()
	if err != nil {
		return 0
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return 0
	}
	return count
}
