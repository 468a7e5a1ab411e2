package engine

import (
	"crypto/x509"

	"github.com/go-kit/kit/log/level"
)

// CertificateBundle is the parsed bundle file in input order: position 0 is
// the leaf, the last position the topmost authority the caller supplied.
// The topmost entry is implicitly trusted whether or not it is self-signed.
type CertificateBundle struct {
	Path         string
	Certificates []*x509.Certificate
}

func (b *CertificateBundle) Leaf() *x509.Certificate {
	return b.Certificates[0]
}

func (b *CertificateBundle) Authorities() []*x509.Certificate {
	return b.Certificates[1:]
}

func (e *Engine) parseBundle(src Source, report *Report) *CertificateBundle {
	data, ok := e.readable(src, report)
	if !ok {
		return nil
	}
	bundle := &CertificateBundle{Path: src.Path()}
	for _, block := range DecodeBlocks(data) {
		if block.Kind != BlockCertificate {
			continue
		}
		if block.Malformed() {
			report.Errorf(src.Path(), "Could not parse %s: %s", src.Path(), block.Raw)
			continue
		}
		cert, err := x509.ParseCertificate(block.DER)
		if err != nil {
			level.Error(e.logger).Log("err", err, "msg", "Could not parse certificate block", "path", src.Path())
			report.Errorf(src.Path(), "Could not parse %s: %s", src.Path(), block.Raw)
			continue
		}
		bundle.Certificates = append(bundle.Certificates, cert)
	}
	if len(bundle.Certificates) == 0 {
		report.Errorf(src.Path(), "Could not detect any certificates in %s", src.Path())
		return nil
	}
	level.Info(e.logger).Log("msg", "Certificate bundle parsed", "path", src.Path(), "certificates", len(bundle.Certificates))
	return bundle
}
