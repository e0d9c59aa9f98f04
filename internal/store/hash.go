package store

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash is the hex sha256 of a document body or source file.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ComputeSignatureHash computes a deterministic hash from a function's
// callable shape: its name, ordered parameters and return type. Doc
// comments and source positions do NOT affect the hash.
func ComputeSignatureHash(name string, params []string, returns string) string {
	h := sha256.New()
	fmt.Fprintf(h, "name:%s\n", name)
	for i, p := range params {
		fmt.Fprintf(h, "param:%d:%s\n", i, p)
	}
	fmt.Fprintf(h, "returns:%s\n", returns)
	return fmt.Sprintf("%x", h.Sum(nil))
}
