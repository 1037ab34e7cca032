package telemetry

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// TraceHash computes trace_hash: for each sample newest-first, for each
// tag in the sample in deterministic ordinal
// order, append one byte (tag ordinal) followed by the IEEE-754
// little-endian 8-byte encoding of the value; return the hex digest of the
// resulting hash. Sample maps are unordered in Go, so SortedTags is the
// only correctness requirement here that can't be inferred from iteration
// order.
func TraceHash(w *Window) string {
	h := sha256.New()
	for _, sample := range w.Samples() {
		for _, tag := range sample.SortedTags() {
			h.Write([]byte{byte(tag)})
			var bits [8]byte
			binary.LittleEndian.PutUint64(bits[:], math.Float64bits(sample.Get(tag)))
			h.Write(bits[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
