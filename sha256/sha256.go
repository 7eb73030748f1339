// Package sha256 wraps crypto/sha256 behind a narrow hash-package shape
// (Size, New, Sum256). A SIMD-accelerated implementation such as
// github.com/minio/sha256-simd would drop in behind the same three names;
// that module isn't available to this build, so this wraps the standard
// library instead.
package sha256

import (
	"crypto/sha256"
	"hash"
)

// Size is the size in bytes of a sha256 checksum.
const Size = sha256.Size

// New returns a new hash.Hash computing the sha256 checksum.
func New() hash.Hash { return sha256.New() }

// Sum256 returns the sha256 checksum of data.
func Sum256(data []byte) [Size]byte { return sha256.Sum256(data) }
