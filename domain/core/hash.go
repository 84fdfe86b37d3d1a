package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash is a hex-encoded SHA-256 digest.
type Hash string

func (h Hash) String() string { return string(h) }

func (h Hash) IsEmpty() bool { return h == "" }

// SampleHash fingerprints the input of a comparison so that two runs over the
// same data can be matched.
type SampleHash Hash

func (h SampleHash) String() string { return Hash(h).String() }

// ComputeSampleHash digests both samples in order together with alpha. Each
// sample is length-prefixed, so moving a value from one group to the other
// changes the hash.
func ComputeSampleHash(groupA, groupB []float64, alpha float64) SampleHash {
	h := sha256.New()
	var buf [8]byte

	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	for _, sample := range [][]float64{groupA, groupB} {
		write(uint64(len(sample)))
		for _, v := range sample {
			write(math.Float64bits(v))
		}
	}
	write(math.Float64bits(alpha))

	return SampleHash(hex.EncodeToString(h.Sum(nil)))
}
