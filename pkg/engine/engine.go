// Package engine validates a CA's key material before it is installed as
// the active signing identity: a PEM bundle (leaf certificate plus issuing
// chain), the matching private key, and an optional CRL chain. Checks never
// fail fast; every independent problem is collected into one Report.
package engine

import (
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

type Engine struct {
	logger log.Logger
	now    func() time.Time
}

func NewEngine(logger log.Logger) *Engine {
	return &Engine{logger: logger, now: time.Now}
}

// Validate runs every applicable check over the three input slots and
// returns the aggregated report. A check is skipped only when a parse it
// depends on failed; the earlier issue already explains the gap, so the
// skip itself adds nothing.
func (e *Engine) Validate(bundleSrc, keySrc, crlSrc Source) *Report {
	report := &Report{}

	bundle := e.parseBundle(bundleSrc, report)
	key := e.parseKey(keySrc, report)
	crls := e.parseCRLChain(crlSrc, report)

	if bundle != nil {
		report.Subject = bundle.Leaf().Subject.CommonName
		if key != nil {
			e.matchKey(bundle, key, keySrc.Path(), report)
		}
		e.validateChain(bundle, report)
		if crls != nil {
			e.validateCorrespondence(bundle, crls, report)
		}
		e.validateLeafPath(bundle, crls, report)
	}

	level.Info(e.logger).Log("msg", "Validation finished", "subject", report.Subject,
		"valid", report.Valid(), "errors", report.ErrorCount(), "warnings", report.WarningCount())
	return report
}

func (e *Engine) readable(src Source, report *Report) ([]byte, bool) {
	if !src.Readable() {
		level.Error(e.logger).Log("err", src.Err(), "msg", "Could not read input", "path", src.Path())
		report.Errorf(src.Path(), "Could not read %s", src.Path())
		return nil, false
	}
	return src.Data(), true
}
