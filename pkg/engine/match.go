package engine

import "crypto"

type comparablePublicKey interface {
	Equal(x crypto.PublicKey) bool
}

// matchKey compares the key's public component against the leaf's public
// key structurally (modulus and exponent for RSA, curve and point for EC).
// It never attempts a sign/verify round-trip. A mismatch is attributed to
// the key slot, since that is the file the user most likely swapped.
func (e *Engine) matchKey(bundle *CertificateBundle, key crypto.Signer, keyPath string, report *Report) {
	pub, ok := key.Public().(comparablePublicKey)
	if !ok || !pub.Equal(bundle.Leaf().PublicKey) {
		report.Error(keyPath, "Private key and certificate do not match")
	}
}
