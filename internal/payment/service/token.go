package service

import "crypto/rand"

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const referenceLength = 10

// newReferenceToken returns a short exchange-safe opaque token. Collisions
// are accepted as negligible; the token is not a uniqueness guarantee.
func newReferenceToken() string {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return string(buf)
}
