// Package identity derives deterministic dataset identities from file paths.
//
// Loaders cache open file handles and resolved artifacts across tests; the
// cache keys need an identity that is stable regardless of platform path
// separators or casing so the same data file maps to the same entry on
// every run.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// NamespaceDataset is the fixed UUID namespace for generating deterministic
// dataset identities from file paths. It is derived from the canonical string
// "dataload.dev/dataset-identity/v1" using UUID v5 with the URL namespace,
// so the same path always yields the same identity across runs and machines.
var NamespaceDataset = uuid.NewSHA1(uuid.NameSpaceURL, []byte("dataload.dev/dataset-identity/v1"))

// ForPath returns the deterministic UUID v5 identity of a data file path.
//
// The path is normalized before hashing:
//  1. Platform separators become forward slashes
//  2. Casing is folded to lowercase
//  3. A leading "./" prefix is removed
func ForPath(path string) uuid.UUID {
	return uuid.NewSHA1(NamespaceDataset, []byte(Normalize(path)))
}

// Normalize canonicalizes a path for identity and cache-key purposes.
// Backslashes are replaced unconditionally so a Windows-style path hashes
// the same on every platform.
func Normalize(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	p = strings.ToLower(p)
	p = strings.TrimPrefix(p, "./")
	return p
}
