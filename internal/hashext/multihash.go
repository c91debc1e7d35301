// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package hashext

import (
	"crypto"
	"io"
)

// MultiHash computes several digests of one stream.
type MultiHash []TypedHash

// NewMultiHash creates a new MultiHash, digests ordered as hs.
func NewMultiHash(hs ...crypto.Hash) MultiHash {
	var th MultiHash
	for _, algo := range hs {
		th = append(th, NewTypedHash(algo))
	}
	return th
}

// Write feeds p to every contained hash.
func (m MultiHash) Write(p []byte) (int, error) {
	for _, th := range m {
		n, err := th.Write(p)
		if err != nil {
			return n, err
		}
	}
	return len(p), nil
}

// Reset calls Hash.Reset on all contained hashes.
func (m MultiHash) Reset() {
	for _, th := range m {
		th.Reset()
	}
}

// ReadFrom hashes r to EOF and returns the byte count.
func (m MultiHash) ReadFrom(r io.Reader) (int64, error) {
	return io.Copy(writerOnly{m}, r)
}

// writerOnly hides ReadFrom so io.Copy does not recurse.
type writerOnly struct{ io.Writer }

// Checksum is the content of a checksum file.
type Checksum struct {
	// Name is the artifact name plus the algorithm extension.
	Name   string
	Digest string
}

// Checksums lists the checksum files of name, in hash order.
func (m MultiHash) Checksums(name string) []Checksum {
	out := make([]Checksum, 0, len(m))
	for _, th := range m {
		out = append(out, Checksum{Name: name + th.Extension(), Digest: th.Hex()})
	}
	return out
}

var _ io.ReaderFrom = MultiHash{}
