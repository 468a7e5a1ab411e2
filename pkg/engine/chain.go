package engine

import (
	"bytes"

	"github.com/go-kit/kit/log/level"
)

// validateChain walks the bundle from the leaf toward the topmost entry,
// checking issuer/subject linkage and each signature under the next entry's
// public key. The topmost entry is the trust anchor and is not checked
// against anything. Broken links are recorded, never aborted on, so every
// independent failure of the run still surfaces.
func (e *Engine) validateChain(bundle *CertificateBundle, report *Report) {
	certs := bundle.Certificates
	for i := 0; i+1 < len(certs); i++ {
		child, parent := certs[i], certs[i+1]
		if !bytes.Equal(child.RawIssuer, parent.RawSubject) {
			report.Errorf(bundle.Path, "Certificate %q was not issued by %q", child.Subject.CommonName, parent.Subject.CommonName)
			continue
		}
		if err := child.CheckSignatureFrom(parent); err != nil {
			level.Error(e.logger).Log("err", err, "msg", "Chain signature check failed", "subject", child.Subject.CommonName)
			report.Errorf(bundle.Path, "Signature of certificate %q could not be verified by %q", child.Subject.CommonName, parent.Subject.CommonName)
		}
	}
}
