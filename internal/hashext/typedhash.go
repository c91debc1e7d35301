// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package hashext provides extensions to the standard crypto/hash package.
package hashext

import (
	"crypto"
	"encoding/hex"
	"hash"
	"strings"
)

// TypedHash is a hash.Hash annotated with its algorithm.
type TypedHash struct {
	hash.Hash
	Algorithm crypto.Hash
}

// NewTypedHash constructs a new TypedHash. The algorithm must be linked in.
func NewTypedHash(algo crypto.Hash) TypedHash {
	return TypedHash{Hash: algo.New(), Algorithm: algo}
}

// Hex returns the lower-case hex digest.
func (t TypedHash) Hex() string {
	return hex.EncodeToString(t.Sum(nil))
}

// Extension is the suffix of the checksum file published next to an
// artifact in a Maven repository, e.g. ".sha1".
func (t TypedHash) Extension() string {
	return "." + strings.ToLower(strings.ReplaceAll(t.Algorithm.String(), "-", ""))
}
