package report

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// dateLinePrefix starts the only line of a document that changes between
// two renderings of the same aggregate.
const dateLinePrefix = "> 분석일: "

// Digest returns the hex BLAKE2b-256 digest of the document body with the
// generation date line removed. Two documents rendered from the same
// aggregate on different days have the same digest.
func (d Document) Digest() string {
	var sb strings.Builder
	sb.Grow(len(d.Body))
	for line := range strings.SplitSeq(d.Body, "\n") {
		if strings.HasPrefix(line, dateLinePrefix) {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sum := blake2b.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
