package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	"glfuzz/internal/config"
)

// Digest is a SHA-256 sum.
type Digest [32]byte

// combineDigest: H(content || dep1 || dep2 ...). deps уже в детерминированном порядке.
func combineDigest(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// configDigest hashes everything in cfg that changes generated output.
func configDigest(cfg config.Config, passes []string) Digest {
	// %+v печатает поля в порядке объявления: этого достаточно
	s := fmt.Sprintf("%+v|%+v|%s", cfg.Params, cfg.Probabilities, strings.Join(passes, ","))
	return sha256.Sum256([]byte(s))
}

// VariantKey identifies a variant: the same reference, donors,
// configuration, passes and seed always produce the same text.
func VariantKey(reference, donors Digest, cfg config.Config, passes []string, seed int64) Digest {
	var s Digest
	binary.LittleEndian.PutUint64(s[:8], uint64(seed))
	return combineDigest(reference, donors, configDigest(cfg, passes), s)
}
