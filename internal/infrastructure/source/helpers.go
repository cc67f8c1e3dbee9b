package source

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// contentHash derives a stable identifier from an item's invariant
// fields, for origins that supply no native id. The same inputs always
// produce the same id, which is what makes dedup idempotent across runs.
func contentHash(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// safeText coerces arbitrary payload values into trimmed strings.
func safeText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// pickText walks an ordered alias chain and returns the first non-empty
// value. Upstream APIs flip between snake_case and camelCase field names
// depending on endpoint and version, so every canonical field is looked
// up through its known aliases.
func pickText(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s := safeText(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
