// Package keys defines the storage key layout shared by every store backend.
package keys

import "strings"

const (
	// Config is the key of the singleton configuration record.
	Config = "config"

	// ResolverPrefix namespaces name records away from the config record.
	ResolverPrefix = "nameresolver#"
)

// Record returns the key of the name record for name.
func Record(name string) string {
	return ResolverPrefix + name
}

// NameFromRecord extracts the name from a record key.
// ok is false when key does not belong to the resolver namespace.
func NameFromRecord(key string) (name string, ok bool) {
	if !strings.HasPrefix(key, ResolverPrefix) {
		return "", false
	}
	return key[len(ResolverPrefix):], true
}

// Namespaced prepends a backend prefix (e.g. "nameservice:") to key.
// An empty prefix leaves key unchanged.
func Namespaced(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + key
}
