package risk

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprinter hashes normalized code. Implementations must be
// deterministic; an error aborts only the quality detector.
type Fingerprinter interface {
	Fingerprint(normalized string) (string, error)
}

type Blake2bFingerprinter struct{}

func (Blake2bFingerprinter) Fingerprint(normalized string) (string, error) {
	sum := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:]), nil
}
