// Package envfile reads and updates dotenv files without disturbing
// unrelated lines.
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// SectionHeader is written once above keys appended to the file
const SectionHeader = "# Gmail API Credentials"

// Entry is one KEY=value pair to write
type Entry struct {
	Key   string
	Value string
}

// Read parses the dotenv file at path. A missing file yields an empty map.
func Read(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// Update sets each entry in the file at path. Existing KEY= lines are
// replaced where they stand; new keys are appended under SectionHeader.
// Entries with empty values are skipped. All other lines are kept as-is.
func Update(path string, entries ...Entry) error {
	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var lines []string
	if len(content) > 0 {
		lines = strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	}

	index := make(map[string]int, len(lines))
	hasHeader := false
	for i, line := range lines {
		if strings.Contains(line, "Gmail API") && strings.HasPrefix(strings.TrimSpace(line), "#") {
			hasHeader = true
		}
		if key, ok := lineKey(line); ok {
			index[key] = i
		}
	}

	var appended []string
	for _, e := range entries {
		if e.Value == "" {
			continue
		}
		line := e.Key + "=" + formatValue(e.Value)
		if i, ok := index[e.Key]; ok {
			lines[i] = line
			continue
		}
		index[e.Key] = -1
		appended = append(appended, line)
	}

	if len(appended) > 0 {
		if !hasHeader {
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, SectionHeader)
		}
		lines = append(lines, appended...)
	}

	out := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// lineKey returns the variable name assigned on line, if any
func lineKey(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	trimmed = strings.TrimPrefix(trimmed, "export ")
	key, _, found := strings.Cut(trimmed, "=")
	if !found {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}

func formatValue(v string) string {
	if strings.ContainsAny(v, " \t#\"'\\\n") {
		return strconv.Quote(v)
	}
	return v
}
