package utils

import (
	"fmt"
	"github.com/twmb/murmur3"
)

// HashFields hashes an ordered list of fields. Every field is terminated so
// that ["ab", "c"] and ["a", "bc"] hash differently.
func HashFields(fields ...string) uint64 {
	hash := murmur3.New64()
	for _, f := range fields {
		if _, err := hash.Write([]byte(f)); err != nil {
			panic(err)
		}
		if _, err := hash.Write([]byte{0}); err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}

func HashHex(h uint64) string {
	return fmt.Sprintf("%016x", h)
}
