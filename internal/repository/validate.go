package repository

import (
	"strings"
	"unicode/utf8"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxContentLen     = 100 * 1024
	maxCategoryLen    = 50
	maxVersionLen     = 50
)

func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", types.Validationf("title must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLen {
		return "", types.Validationf("title exceeds %d characters", maxTitleLen)
	}
	return trimmed, nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return types.Validationf("description exceeds %d characters", maxDescriptionLen)
	}
	return nil
}

func validateContent(content string, required bool) error {
	if required && content == "" {
		return types.Validationf("content is required for this type")
	}
	if len(content) > maxContentLen {
		return types.Validationf("content exceeds %d bytes", maxContentLen)
	}
	return nil
}

func validateShortField(name, value string) error {
	if utf8.RuneCountInString(value) > maxCategoryLen {
		return types.Validationf("%s exceeds %d characters", name, maxCategoryLen)
	}
	return nil
}

// normalizeTags trims, dedupes (first occurrence wins), and enforces
// the tag cap (Open Question (b), resolved: reject above TagLimit).
func normalizeTags(raw []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > types.TagLimit {
		return nil, types.Validationf("tags exceed the limit of %d", types.TagLimit)
	}
	return out, nil
}

// FormatRelatedToken renders a "<type>-<id>" wire token.
func FormatRelatedToken(itemType, id string) string {
	return itemType + "-" + id
}

// ParseRelatedToken splits a "<type>-<id>" wire token. Type names never
// contain a hyphen (the slug pattern is [a-z][a-z0-9_]*), so splitting
// on the first hyphen is unambiguous even for session ids, which
// contain further hyphens of their own.
func ParseRelatedToken(token string) (itemType, id string, err error) {
	idx := strings.IndexByte(token, '-')
	if idx <= 0 || idx == len(token)-1 {
		return "", "", types.Validationf("malformed related token %q", token)
	}
	return token[:idx], token[idx+1:], nil
}

func normalizeRelated(raw []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, tok := range raw {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, _, err := ParseRelatedToken(tok); err != nil {
			return nil, err
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out, nil
}
