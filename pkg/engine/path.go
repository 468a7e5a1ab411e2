package engine

import (
	"crypto/x509"

	"github.com/go-kit/kit/log/level"
)

// validateLeafPath is the terminal check: a full X.509 path validation of
// the leaf with the bundle's non-leaf entries as trust anchors and, when a
// CRL chain is present, a revocation check of the leaf against its aligned
// CRL. Whatever the sub-cause, failure surfaces as a single issue.
func (e *Engine) validateLeafPath(bundle *CertificateBundle, chain *CRLChain, report *Report) {
	certs := bundle.Certificates
	leaf := certs[0]

	roots := x509.NewCertPool()
	intermediates := x509.NewCertPool()
	if len(certs) == 1 {
		roots.AddCert(leaf)
	} else {
		roots.AddCert(certs[len(certs)-1])
		for _, cert := range certs[1 : len(certs)-1] {
			intermediates.AddCert(cert)
		}
	}

	_, err := leaf.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   e.now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		level.Error(e.logger).Log("err", err, "msg", "Leaf path validation failed", "subject", leaf.Subject.CommonName)
		report.Error(bundle.Path, "Leaf certificate could not be validated")
		return
	}

	if chain != nil && leafRevoked(leaf, chain) {
		level.Error(e.logger).Log("msg", "Leaf certificate is revoked", "subject", leaf.Subject.CommonName, "serial", leaf.SerialNumber)
		report.Error(bundle.Path, "Leaf certificate could not be validated")
	}
}

func leafRevoked(leaf *x509.Certificate, chain *CRLChain) bool {
	for _, entry := range chain.Lists[0].RevokedCertificateEntries {
		if entry.SerialNumber.Cmp(leaf.SerialNumber) == 0 {
			return true
		}
	}
	return false
}
