package file

import (
	"io/ioutil"

	"github.com/lamassuiot/ca-material-validator/pkg/engine"
	"github.com/lamassuiot/ca-material-validator/pkg/secrets/material"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

type file struct {
	bundle string
	key    string
	crl    string
	logger log.Logger
}

// NewFile serves the key material from local files. An empty crl path means
// the CRL chain was not provided at all.
func NewFile(bundle string, key string, crl string, logger log.Logger) material.Secrets {
	return &file{bundle: bundle, key: key, crl: crl, logger: logger}
}

func (f *file) GetBundle() engine.Source {
	return f.read(f.bundle, "certificate bundle")
}

func (f *file) GetKey() engine.Source {
	return f.read(f.key, "private key")
}

func (f *file) GetCRLChain() engine.Source {
	if f.crl == "" {
		return engine.MissingSource()
	}
	return f.read(f.crl, "CRL chain")
}

func (f *file) read(path string, name string) engine.Source {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		level.Error(f.logger).Log("err", err, "msg", "Could not load "+name)
		return engine.UnreadableSource(path, err)
	}
	level.Info(f.logger).Log("msg", "Loaded "+name, "path", path)
	return engine.NewSource(path, data)
}
