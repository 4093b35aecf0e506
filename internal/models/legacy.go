package models

import (
	"encoding/json"
	"strings"
)

// ParseLegacyLikes decodes the historical `likes` column into a
// deduplicated user-id list. Three encodings exist in old rows:
//
//	JSON array:   ["user_a","user_b"]
//	brace string: {user_a, user_b}   (driver-formatted text array)
//	NULL / ""
//
// NULL and empty normalize to an empty list. Order of first appearance is
// preserved so backfills are deterministic.
func ParseLegacyLikes(raw *string) []string {
	if raw == nil {
		return []string{}
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return []string{}
	}

	var ids []string
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &ids); err != nil {
			return []string{}
		}
	} else {
		s = strings.TrimPrefix(s, "{")
		s = strings.TrimSuffix(s, "}")
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			part = strings.Trim(part, `"`)
			if part != "" {
				ids = append(ids, part)
			}
		}
	}

	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// MergeLikeSets unions canonical like rows with a parsed legacy set,
// keeping canonical order first. Used by the feed composer for rows that
// predate the one-time backfill.
func MergeLikeSets(canonical, legacy []string) []string {
	seen := make(map[string]struct{}, len(canonical)+len(legacy))
	out := make([]string, 0, len(canonical)+len(legacy))
	for _, set := range [][]string{canonical, legacy} {
		for _, id := range set {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
