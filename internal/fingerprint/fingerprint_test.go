package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Deterministic(t *testing.T) {
	args := []any{"question", 42}
	kwargs := map[string]any{"temperature": 0.7, "model": "small"}

	first := Fingerprint("generate", args, kwargs)
	second := Fingerprint("generate", args, kwargs)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "SHA-256 hex digest is 64 chars")
}

func TestFingerprint_KwargOrderIndependent(t *testing.T) {
	// Build the same logical map twice with different insertion order.
	a := map[string]any{}
	a["alpha"] = 1
	a["beta"] = 2
	a["gamma"] = 3

	b := map[string]any{}
	b["gamma"] = 3
	b["alpha"] = 1
	b["beta"] = 2

	assert.Equal(t,
		Fingerprint("op", nil, a),
		Fingerprint("op", nil, b),
	)
}

func TestFingerprint_Composition(t *testing.T) {
	// The digest is SHA-256 over name(args,kwargs) with sorted kwargs.
	sum := sha256.Sum256([]byte("op(1,2,a=x,b=y)"))
	want := hex.EncodeToString(sum[:])

	got := Fingerprint("op", []any{1, 2}, map[string]any{"b": "y", "a": "x"})
	assert.Equal(t, want, got)
}

func TestFingerprint_DistinguishesCalls(t *testing.T) {
	base := Fingerprint("op", []any{1}, map[string]any{"k": "v"})

	assert.NotEqual(t, base, Fingerprint("other", []any{1}, map[string]any{"k": "v"}))
	assert.NotEqual(t, base, Fingerprint("op", []any{2}, map[string]any{"k": "v"}))
	assert.NotEqual(t, base, Fingerprint("op", []any{1}, map[string]any{"k": "w"}))
}

func TestSplit_Defaults(t *testing.T) {
	opts, cleaned := Split(map[string]any{"prompt": "hi"})

	assert.Equal(t, 0, opts.Branch)
	assert.Equal(t, 0.0, opts.Start)
	assert.True(t, math.IsInf(opts.End, 1))
	assert.Empty(t, opts.Worker)
	assert.Equal(t, map[string]any{"prompt": "hi"}, cleaned)
}

func TestSplit_StripsReservedKeys(t *testing.T) {
	kwargs := map[string]any{
		"prompt":       "hi",
		KeyWorkerID:    "w-17",
		KeyBranch:      3,
		KeyWindowStart: 100.0,
		KeyWindowEnd:   200.0,
	}

	opts, cleaned := Split(kwargs)

	assert.Equal(t, "w-17", opts.Worker)
	assert.Equal(t, 3, opts.Branch)
	assert.Equal(t, 100.0, opts.Start)
	assert.Equal(t, 200.0, opts.End)

	require.Len(t, cleaned, 1)
	assert.Contains(t, cleaned, "prompt")

	// Input map must not be mutated.
	assert.Len(t, kwargs, 5)
}

func TestSplit_ReservedKeysNeverAffectHash(t *testing.T) {
	plain := map[string]any{"prompt": "hi"}
	tagged := map[string]any{
		"prompt":       "hi",
		KeyWorkerID:    "w-1",
		KeyBranch:      7,
		KeyWindowStart: 5.0,
	}

	_, cleanedPlain := Split(plain)
	_, cleanedTagged := Split(tagged)

	assert.Equal(t,
		Fingerprint("op", nil, cleanedPlain),
		Fingerprint("op", nil, cleanedTagged),
	)
}

func TestSplit_NumericCoercion(t *testing.T) {
	// Branch and bounds arrive as whatever numeric type the caller used.
	opts, _ := Split(map[string]any{
		KeyBranch:      float64(2),
		KeyWindowStart: 10,
		KeyWindowEnd:   int64(20),
	})

	assert.Equal(t, 2, opts.Branch)
	assert.Equal(t, 10.0, opts.Start)
	assert.Equal(t, 20.0, opts.End)
}
