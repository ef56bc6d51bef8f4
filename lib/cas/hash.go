// Copyright 2026 The Envwatch Authors
// SPDX-License-Identifier: Apache-2.0

package cas

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. The byte values
// are the ASCII encoding of the domain name, zero-padded to 32 bytes.
type domainKey [32]byte

// Domain separation keys. Changing them changes every address in the
// domain, orphaning existing store files.
var (
	blobDomainKey = domainKey{
		'e', 'n', 'v', 'w', 'a', 't', 'c', 'h', '.', 'c', 'a', 's', '.',
		'b', 'l', 'o', 'b', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	nameDomainKey = domainKey{
		'e', 'n', 'v', 'w', 'a', 't', 'c', 'h', '.', 'c', 'a', 's', '.',
		'n', 'a', 'm', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// HashBlob computes the blob-domain digest of data. This is the
// address [Store.Put] files data under.
func HashBlob(data []byte) Hash {
	return keyedHash(blobDomainKey, data)
}

// HashName computes the name-domain digest of a string, for keying
// files by something other than their content (a build root path, for
// example).
func HashName(name string) Hash {
	return keyedHash(nameDomainKey, []byte(name))
}

// String returns the lowercase hex encoding of the digest.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed only fails for keys that are not 32 bytes long.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("cas: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}
