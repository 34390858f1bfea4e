// Package fingerprint derives deterministic content hashes identifying
// operation invocations.
//
// A fingerprint is a SHA-256 digest over the operation name and its
// normalized arguments. Keyword arguments are sorted by key before
// composition so that argument order never affects the hash. Reserved
// cache-partitioning keys (worker id, branch, timerange bounds) are
// stripped before hashing via Split and never reach the wrapped
// operation.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Reserved keyword argument keys recognized by the cache layer.
// They select a cache partition and are excluded from both the
// fingerprint and the argument set forwarded to the operation.
const (
	KeyWorkerID    = "worker_id"
	KeyBranch      = "cache_branch"
	KeyWindowStart = "experiment_start_timestamp"
	KeyWindowEnd   = "experiment_end_timestamp"
)

// reservedKeys lists every key stripped by Split.
var reservedKeys = []string{KeyWorkerID, KeyBranch, KeyWindowStart, KeyWindowEnd}

// Fingerprint computes the content hash for an operation call.
// The composition is name(arg1,arg2,key1=val1,key2=val2) with keyword
// arguments sorted by key, hashed with SHA-256 and returned as a
// fixed-length hex string.
//
// Values are rendered to their canonical text representation, so two
// calls fingerprint equally iff their rendered arguments are equal.
// Pure function: no I/O, no stored state.
func Fingerprint(name string, args []any, kwargs map[string]any) string {
	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	argParts := make([]string, len(args))
	for i, a := range args {
		argParts[i] = fmt.Sprintf("%v", a)
	}

	kwargParts := make([]string, len(keys))
	for i, k := range keys {
		kwargParts[i] = fmt.Sprintf("%s=%v", k, kwargs[k])
	}

	combined := fmt.Sprintf("%s(%s,%s)",
		name, strings.Join(argParts, ","), strings.Join(kwargParts, ","))

	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}
