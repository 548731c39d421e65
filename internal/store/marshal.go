package store

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// fieldSeparator splits a record into label and flag.
	fieldSeparator = ":"

	tokenTrue  = "true"
	tokenFalse = "false"
)

// Marshal renders items in the backing file format: one `label:flag` line
// per entry, sorted by label.
func Marshal(items map[string]bool) []byte {
	var buf bytes.Buffer
	for _, label := range sortedLabels(items) {
		buf.WriteString(label)
		buf.WriteString(fieldSeparator)
		buf.WriteString(formatFlag(items[label]))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Unmarshal parses the backing file format.
// Empty lines are skipped. The last occurrence of a duplicate label wins.
// Any malformed line fails the whole decode with a *DecodeError; no partial
// mapping is returned.
func Unmarshal(data []byte) (map[string]bool, error) {
	items := make(map[string]bool)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		label, token, ok := strings.Cut(line, fieldSeparator)
		if !ok {
			return nil, &DecodeError{Line: i + 1, Text: line, Reason: "missing separator"}
		}
		checked, err := parseFlag(token)
		if err != nil {
			return nil, &DecodeError{Line: i + 1, Text: line, Reason: err.Error()}
		}
		items[normalizeLabel(label)] = checked
	}
	return items, nil
}

func formatFlag(checked bool) string {
	if checked {
		return tokenTrue
	}
	return tokenFalse
}

func parseFlag(token string) (bool, error) {
	switch token {
	case tokenTrue:
		return true, nil
	case tokenFalse:
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag token %q (want %q or %q)", token, tokenTrue, tokenFalse)
	}
}

// normalizeLabel returns the NFC form of a label so that canonically
// equivalent spellings map to the same key.
func normalizeLabel(label string) string {
	return norm.NFC.String(label)
}

// validateLabel reports why a label cannot be stored, or "" if it can.
func validateLabel(label string) string {
	switch {
	case strings.Contains(label, fieldSeparator):
		return "label must not contain " + fieldSeparator
	case strings.ContainsAny(label, "\r\n"):
		return "label must not contain a line break"
	}
	return ""
}

func sortedLabels(items map[string]bool) []string {
	labels := make([]string, 0, len(items))
	for label := range items {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
