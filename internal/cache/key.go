// Package cache provides cache backends for plaintext secrets.
package cache

import "strings"

// KeySeparator joins the parts of a composed cache key.
const KeySeparator = ":"

// BuildKey composes a cache key from parts, e.g. BuildKey("tenant", "42") is "tenant:42".
func BuildKey(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}
