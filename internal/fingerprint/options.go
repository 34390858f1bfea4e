package fingerprint

import "math"

// Options holds the cache-partitioning parameters carried by the
// reserved keyword arguments.
type Options struct {
	// Worker identifies the calling worker. Informational only: it does
	// not partition the cache and never reaches the operation.
	Worker string

	// Branch selects an independent cache lineage for the same
	// fingerprint. Default 0.
	Branch int

	// Start and End bound the logical-time window the result is valid
	// for. Defaults are 0 and +Inf (open window).
	Start float64
	End   float64
}

// Split separates the reserved cache-partitioning keys from kwargs.
// It returns the extracted Options and a copy of kwargs with the
// reserved keys removed. The input map is not mutated.
func Split(kwargs map[string]any) (Options, map[string]any) {
	opts := Options{
		Branch: 0,
		Start:  0,
		End:    math.Inf(1),
	}

	if v, ok := kwargs[KeyWorkerID]; ok {
		if s, ok := v.(string); ok {
			opts.Worker = s
		}
	}
	if v, ok := kwargs[KeyBranch]; ok {
		if n, ok := asInt(v); ok {
			opts.Branch = n
		}
	}
	if v, ok := kwargs[KeyWindowStart]; ok {
		if f, ok := asFloat(v); ok {
			opts.Start = f
		}
	}
	if v, ok := kwargs[KeyWindowEnd]; ok {
		if f, ok := asFloat(v); ok {
			opts.End = f
		}
	}

	cleaned := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		cleaned[k] = v
	}
	for _, k := range reservedKeys {
		delete(cleaned, k)
	}

	return opts, cleaned
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
