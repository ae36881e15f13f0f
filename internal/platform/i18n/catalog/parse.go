package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// parseCatalogFile reads the restricted YAML subset used by locale files:
// quoted locale and namespace scalars followed by a messages map whose keys
// and values are Go-quoted strings.
func parseCatalogFile(data []byte) (catalogFile, error) {
	out := catalogFile{Messages: map[string]string{}}
	inMessages := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if name, rest, ok := strings.Cut(line, ":"); ok && !strings.HasPrefix(line, `"`) {
			switch name {
			case "locale":
				value, err := strconv.Unquote(strings.TrimSpace(rest))
				if err != nil {
					return catalogFile{}, fmt.Errorf("line %d: parse locale: %w", lineNo, err)
				}
				out.Locale = value
				continue
			case "namespace":
				value, err := strconv.Unquote(strings.TrimSpace(rest))
				if err != nil {
					return catalogFile{}, fmt.Errorf("line %d: parse namespace: %w", lineNo, err)
				}
				out.Namespace = value
				continue
			case "messages":
				if strings.TrimSpace(rest) != "" {
					return catalogFile{}, fmt.Errorf("line %d: messages must be a map", lineNo)
				}
				inMessages = true
				continue
			}
		}

		if !inMessages {
			return catalogFile{}, fmt.Errorf("line %d: unexpected line %q", lineNo, line)
		}
		key, value, err := parseMessageEntry(line)
		if err != nil {
			return catalogFile{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, dup := out.Messages[key]; dup {
			return catalogFile{}, fmt.Errorf("line %d: duplicate key %q", lineNo, key)
		}
		out.Messages[key] = value
	}
	if err := scanner.Err(); err != nil {
		return catalogFile{}, fmt.Errorf("scan catalog: %w", err)
	}

	switch {
	case out.Locale == "":
		return catalogFile{}, fmt.Errorf("missing locale")
	case out.Namespace == "":
		return catalogFile{}, fmt.Errorf("missing namespace")
	case len(out.Messages) == 0:
		return catalogFile{}, fmt.Errorf("missing messages")
	}
	return out, nil
}

func parseMessageEntry(line string) (string, string, error) {
	quotedKey, err := strconv.QuotedPrefix(line)
	if err != nil {
		return "", "", fmt.Errorf("message key must be quoted: %q", line)
	}
	key, err := strconv.Unquote(quotedKey)
	if err != nil {
		return "", "", fmt.Errorf("unquote key: %w", err)
	}

	rest, ok := strings.CutPrefix(strings.TrimSpace(line[len(quotedKey):]), ":")
	if !ok {
		return "", "", fmt.Errorf("missing ':' after key %q", key)
	}
	value, err := strconv.Unquote(strings.TrimSpace(rest))
	if err != nil {
		return "", "", fmt.Errorf("unquote value for %q: %w", key, err)
	}
	return key, value, nil
}
