package files

import (
	"fmt"
	"strings"

	"sellerpulse/internal/errors"
)

// SelectionPolicy decides which stored workbooks feed a report.
type SelectionPolicy string

const (
	// SelectAll uses every workbook in name order.
	SelectAll SelectionPolicy = "all"
	// SelectFirst uses only the first workbook by name.
	SelectFirst SelectionPolicy = "first"
	// SelectLatest uses only the most recently modified workbook.
	SelectLatest SelectionPolicy = "latest"
)

// ParseSelectionPolicy parses a policy name. An empty name means all.
func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch p := SelectionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return SelectAll, nil
	case SelectAll, SelectFirst, SelectLatest:
		return p, nil
	default:
		return "", errors.NewAppValidationError(fmt.Sprintf("unknown selection policy %q", s)).
			WithContext("allowed", []string{string(SelectAll), string(SelectFirst), string(SelectLatest)})
	}
}

// Select applies the policy to files, which must be sorted by name.
func (p SelectionPolicy) Select(files []FileInfo) []FileInfo {
	if len(files) == 0 {
		return nil
	}

	switch p {
	case SelectFirst:
		return files[:1]
	case SelectLatest:
		latest, _ := GetLatestFile(files)
		return []FileInfo{latest}
	default:
		return files
	}
}

// Names returns the names of files in order.
func Names(files []FileInfo) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

// GetLatestFile returns the most recently modified file. Ties go to the
// later name.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
