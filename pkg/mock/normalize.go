package mock

import "strings"

// NormalizePath canonicalizes a user-supplied path to the comparable form
// used as part of the dispatch key: whitespace is trimmed, an empty result
// becomes "/", and a missing leading slash is prepended. Nothing else is
// touched — no percent-decoding, no trailing-slash collapsing, no
// query-string stripping; callers must pass only the path component.
// Idempotent: NormalizePath(NormalizePath(p)) == NormalizePath(p).
func NormalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if !strings.HasPrefix(trimmed, "/") {
		return "/" + trimmed
	}
	return trimmed
}
