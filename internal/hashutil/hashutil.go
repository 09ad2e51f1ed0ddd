package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashStrings returns a SHA256 hash of the provided strings with newline separators.
func HashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeQuestion lowercases a question and collapses whitespace so
// trivially different spellings share a key.
func NormalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// QuestionKey identifies a question within a scope such as a database
// path and model name.
func QuestionKey(question string, scope ...string) string {
	parts := make([]string, 0, len(scope)+1)
	parts = append(parts, scope...)
	parts = append(parts, NormalizeQuestion(question))
	return HashStrings(parts...)
}
