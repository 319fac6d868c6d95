// Package fvc implements the File Verification Code version 2
// aggregation algorithm: a sorted, delimiter-free fold of per-file
// SHA-256 digests into a single versioned code.
package fvc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"

	"github.com/Wind-River/fvc-go/internal/digest"
)

// prefix is the 5-byte ASCII+version header every Code begins with:
// "FVC2" followed by a NUL byte.
var prefix = [5]byte{'F', 'V', 'C', '2', 0x00}

// CodeSize is the fixed length of a Code: 5-byte prefix + 32-byte sum.
const CodeSize = len(prefix) + sha256.Size

// Code is the 37-byte File Verification Code.
type Code [CodeSize]byte

// Hex returns the lowercase hex encoding of c.
func (c Code) Hex() string {
	return hex.EncodeToString(c[:])
}

// Accumulator ingests per-file digests and folds them into a Code.
// The zero value is ready to use.
type Accumulator struct {
	digests []digest.Digest
	sorted  bool
}

// IngestReader reads r fully, computes its SHA-256, and appends it to
// the digest list.
func (a *Accumulator) IngestReader(r io.Reader) error {
	d, err := (digest.Hasher{}).Reader(r)
	if err != nil {
		return err
	}
	a.IngestDigest(d)
	return nil
}

// IngestDigest appends an already-computed digest directly, skipping
// re-hashing.
func (a *Accumulator) IngestDigest(d digest.Digest) {
	a.digests = append(a.digests, d)
	a.sorted = false
}

// Sum produces the 37-byte FVC2 code of everything ingested so far.
// Calling Sum repeatedly without an intervening Ingest* call returns
// identical bytes.
func (a *Accumulator) Sum() Code {
	if !a.sorted {
		sort.Slice(a.digests, func(i, j int) bool {
			return bytes.Compare(a.digests[i][:], a.digests[j][:]) < 0
		})
		a.sorted = true
	}

	h := sha256.New()
	for _, d := range a.digests {
		h.Write(d[:])
	}

	var code Code
	copy(code[:len(prefix)], prefix[:])
	copy(code[len(prefix):], h.Sum(nil))
	return code
}

// Hex is Sum's result, lowercase hex encoded.
func (a *Accumulator) Hex() string {
	sum := a.Sum()
	return sum.Hex()
}
