package engine

import (
	"crypto"
	"crypto/x509"
	"errors"

	"github.com/go-kit/kit/log/level"
)

// parseKey decodes the first private-key block of the source. Extra key
// blocks are ignored, the first one wins.
func (e *Engine) parseKey(src Source, report *Report) crypto.Signer {
	data, ok := e.readable(src, report)
	if !ok {
		return nil
	}
	for _, block := range DecodeBlocks(data) {
		if block.Kind != BlockPrivateKey {
			continue
		}
		if block.Malformed() {
			break
		}
		key, err := parsePrivateKey(block.DER)
		if err != nil {
			level.Error(e.logger).Log("err", err, "msg", "Could not parse private key", "path", src.Path())
			break
		}
		level.Info(e.logger).Log("msg", "Private key parsed", "path", src.Path())
		return key
	}
	report.Errorf(src.Path(), "Could not parse %s", src.Path())
	return nil
}

func parsePrivateKey(der []byte) (crypto.Signer, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, errors.New("unsupported private key type")
		}
		return signer, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, errors.New("unrecognized private key encoding")
}
