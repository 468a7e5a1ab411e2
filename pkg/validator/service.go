package validator

import (
	"context"
	"errors"
	"time"

	"github.com/lamassuiot/ca-material-validator/pkg/depot"
	"github.com/lamassuiot/ca-material-validator/pkg/engine"
	"github.com/lamassuiot/ca-material-validator/pkg/secrets/material"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

type Service interface {
	Health(ctx context.Context) bool
	Validate(ctx context.Context, m Material) (*engine.Report, error)
	ValidateStored(ctx context.Context) (*engine.Report, error)
	History(ctx context.Context, limit int) ([]depot.Run, error)
}

// Material carries the key material inline, each field a PEM string. An
// empty CRLChain means the chain was not provided.
type Material struct {
	Bundle   string `json:"bundle"`
	Key      string `json:"private_key"`
	CRLChain string `json:"crl_chain,omitempty"`
}

var (
	ErrNoSecretsBackend = errors.New("no secrets backend configured")
	ErrNoDepot          = errors.New("no run depot configured")
)

const defaultHistoryLimit = 20

type CAValidator struct {
	engine  *engine.Engine
	secrets material.Secrets
	depot   depot.Depot
	logger  log.Logger
}

// NewService wires the validation engine with its collaborators. secrets
// and d may be nil; the matching operations then report themselves as
// unconfigured.
func NewService(secrets material.Secrets, d depot.Depot, logger log.Logger) Service {
	return &CAValidator{
		engine:  engine.NewEngine(logger),
		secrets: secrets,
		depot:   d,
		logger:  logger,
	}
}

func (v *CAValidator) Health(ctx context.Context) bool {
	return true
}

func (v *CAValidator) Validate(ctx context.Context, m Material) (*engine.Report, error) {
	crlSrc := engine.MissingSource()
	if m.CRLChain != "" {
		crlSrc = engine.NewSource("crl-chain", []byte(m.CRLChain))
	}
	report := v.engine.Validate(
		engine.NewSource("bundle", []byte(m.Bundle)),
		engine.NewSource("private-key", []byte(m.Key)),
		crlSrc,
	)
	v.record(report)
	return report, nil
}

func (v *CAValidator) ValidateStored(ctx context.Context) (*engine.Report, error) {
	if v.secrets == nil {
		return nil, ErrNoSecretsBackend
	}
	report := v.engine.Validate(v.secrets.GetBundle(), v.secrets.GetKey(), v.secrets.GetCRLChain())
	v.record(report)
	return report, nil
}

func (v *CAValidator) History(ctx context.Context, limit int) ([]depot.Run, error) {
	if v.depot == nil {
		return nil, ErrNoDepot
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return v.depot.GetRuns(limit)
}

func (v *CAValidator) record(report *engine.Report) {
	if v.depot == nil {
		return
	}
	run := &depot.Run{
		StartedAt: time.Now().UTC(),
		Subject:   report.Subject,
		Valid:     report.Valid(),
		Errors:    report.ErrorCount(),
		Warnings:  report.WarningCount(),
	}
	if err := v.depot.InsertRun(run); err != nil {
		level.Warn(v.logger).Log("err", err, "msg", "Could not record validation run")
	}
}
