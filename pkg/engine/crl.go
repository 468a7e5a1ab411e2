package engine

import (
	"bytes"
	"crypto/x509"
	"time"

	"github.com/go-kit/kit/log/level"
)

// CRLChain is the parsed CRL chain file in input order: position 0 is the
// CRL of the authority that issued the leaf, each following position one
// authority level higher.
type CRLChain struct {
	Path  string
	Lists []*x509.RevocationList
}

func (e *Engine) parseCRLChain(src Source, report *Report) *CRLChain {
	if !src.Provided() {
		report.Warn("", "No CRL chain given; full CRL chain checking will not be possible")
		return nil
	}
	data, ok := e.readable(src, report)
	if !ok {
		return nil
	}
	chain := &CRLChain{Path: src.Path()}
	for _, block := range DecodeBlocks(data) {
		if block.Kind != BlockCRL {
			continue
		}
		if block.Malformed() {
			report.Errorf(src.Path(), "Could not parse %s: %s", src.Path(), block.Raw)
			continue
		}
		crl, err := x509.ParseRevocationList(block.DER)
		if err != nil {
			level.Error(e.logger).Log("err", err, "msg", "Could not parse CRL block", "path", src.Path())
			report.Errorf(src.Path(), "Could not parse %s: %s", src.Path(), block.Raw)
			continue
		}
		chain.Lists = append(chain.Lists, crl)
	}
	if len(chain.Lists) == 0 {
		report.Errorf(src.Path(), "Could not detect any CRLs in %s", src.Path())
		return nil
	}
	level.Info(e.logger).Log("msg", "CRL chain parsed", "path", src.Path(), "crls", len(chain.Lists))
	return chain
}

// validateCorrespondence aligns each CRL with the bundle authority at the
// same level: CRL i must be issued (name and signature) by bundle entry i+1,
// or by the leaf itself when the bundle holds only a self-issuing CA.
// CRLs past the topmost entry are checked against the trust anchor.
func (e *Engine) validateCorrespondence(bundle *CertificateBundle, chain *CRLChain, report *Report) {
	certs := bundle.Certificates
	for i, crl := range chain.Lists {
		authority := certs[len(certs)-1]
		if i+1 < len(certs) {
			authority = certs[i+1]
		}
		if !bytes.Equal(crl.RawIssuer, authority.RawSubject) {
			if i == 0 {
				report.Error(chain.Path, "Leaf CRL was not issued by leaf certificate")
			} else {
				report.Errorf(chain.Path, "CRL at position %d was not issued by %q", i, authority.Subject.CommonName)
			}
			continue
		}
		if err := crl.CheckSignatureFrom(authority); err != nil {
			level.Error(e.logger).Log("err", err, "msg", "CRL signature check failed", "issuer", authority.Subject.CommonName)
			report.Errorf(chain.Path, "Signature of CRL issued by %q could not be verified", authority.Subject.CommonName)
			continue
		}
		if !crl.NextUpdate.IsZero() && e.now().After(crl.NextUpdate) {
			report.Warnf(chain.Path, "CRL issued by %q is stale since %s", authority.Subject.CommonName, crl.NextUpdate.UTC().Format(time.RFC3339))
		}
	}
}
