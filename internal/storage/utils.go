package storage

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// ReportIndexFile is the entry page of every report folder
const ReportIndexFile = "index.html"

// GenerateReportFolderPath generates a consistent folder path for reports
// Format: YYYY/MM/DD/EnergyReport-YYYY-MM-DD-HH-MM-SS
func GenerateReportFolderPath(timestamp time.Time) string {
	return fmt.Sprintf("%04d/%02d/%02d/EnergyReport-%04d-%02d-%02d-%02d-%02d-%02d",
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Hour(), timestamp.Minute(), timestamp.Second())
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	case ".html":
		return "text/html"
	case ".css":
		return "text/css"
	case ".md":
		return "text/markdown"
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// CleanPath normalizes a client supplied path and rejects escapes from the root
func CleanPath(filePath string) (string, error) {
	slashed := strings.ReplaceAll(filePath, "\\", "/")
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid file path %q", filePath)
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if cleaned == "" {
		return "", fmt.Errorf("invalid file path %q", filePath)
	}
	return cleaned, nil
}

// newestFirst sorts report paths in reverse order and applies limit
func newestFirst(reportPaths []string, limit int) []string {
	sort.Sort(sort.Reverse(sort.StringSlice(reportPaths)))
	if limit > 0 && limit < len(reportPaths) {
		reportPaths = reportPaths[:limit]
	}
	return reportPaths
}
