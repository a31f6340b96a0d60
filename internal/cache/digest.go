package cache

import (
	"encoding/hex"

	"github.com/minio/highwayhash"

	"escheck/internal/ecma"
)

// Digest - фиксированный 256 битный ключ вердикта.
type Digest [32]byte

// String returns the hex form used as the on-disk file name.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

var hashKey = []byte("escheck-verdict-cache-key-000001")

// Key digests everything that can change a verdict: the rule revision, the
// profile (level and flags) and the prepared source text.
func Key(p ecma.Profile, src []byte) (Digest, error) {
	h, err := highwayhash.New(hashKey)
	if err != nil {
		return Digest{}, err
	}
	var hdr [4]byte
	hdr[0] = byte(ruleRevision)
	hdr[1] = byte(p.Level())
	if p.Module() {
		hdr[2] = 1
	}
	if p.AllowHashbang() {
		hdr[3] = 1
	}
	_, _ = h.Write(hdr[:])
	_, _ = h.Write(src)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}
