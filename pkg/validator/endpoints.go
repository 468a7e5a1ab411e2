package validator

import (
	"context"

	"github.com/lamassuiot/ca-material-validator/pkg/depot"
	"github.com/lamassuiot/ca-material-validator/pkg/engine"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/tracing/opentracing"
	stdopentracing "github.com/opentracing/opentracing-go"
)

type Endpoints struct {
	HealthEndpoint         endpoint.Endpoint
	ValidateEndpoint       endpoint.Endpoint
	ValidateStoredEndpoint endpoint.Endpoint
	HistoryEndpoint        endpoint.Endpoint
}

func MakeServerEndpoints(s Service, otTracer stdopentracing.Tracer) Endpoints {
	var healthEndpoint endpoint.Endpoint
	{
		healthEndpoint = MakeHealthEndpoint(s)
		healthEndpoint = opentracing.TraceServer(otTracer, "Health")(healthEndpoint)
	}
	var validateEndpoint endpoint.Endpoint
	{
		validateEndpoint = MakeValidateEndpoint(s)
		validateEndpoint = opentracing.TraceServer(otTracer, "ValidateOperation")(validateEndpoint)
	}
	var validateStoredEndpoint endpoint.Endpoint
	{
		validateStoredEndpoint = MakeValidateStoredEndpoint(s)
		validateStoredEndpoint = opentracing.TraceServer(otTracer, "ValidateStoredOperation")(validateStoredEndpoint)
	}
	var historyEndpoint endpoint.Endpoint
	{
		historyEndpoint = MakeHistoryEndpoint(s)
		historyEndpoint = opentracing.TraceServer(otTracer, "HistoryOperation")(historyEndpoint)
	}
	return Endpoints{
		HealthEndpoint:         healthEndpoint,
		ValidateEndpoint:       validateEndpoint,
		ValidateStoredEndpoint: validateStoredEndpoint,
		HistoryEndpoint:        historyEndpoint,
	}
}

func MakeHealthEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		healthy := s.Health(ctx)
		return healthResponse{Healthy: healthy}, nil
	}
}

func MakeValidateEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(validateRequest)
		report, err := s.Validate(ctx, req.Material)
		return validateResponse{Report: report, Err: err}, nil
	}
}

func MakeValidateStoredEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		report, err := s.ValidateStored(ctx)
		return validateResponse{Report: report, Err: err}, nil
	}
}

func MakeHistoryEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(historyRequest)
		runs, err := s.History(ctx, req.Limit)
		return historyResponse{Runs: runs, Err: err}, nil
	}
}

type healthRequest struct{}

type healthResponse struct {
	Healthy bool  `json:"healthy,omitempty"`
	Err     error `json:"err,omitempty"`
}

type validateRequest struct {
	Material Material
}

type validateResponse struct {
	Report *engine.Report
	Err    error
}

func (r validateResponse) error() error { return r.Err }

type historyRequest struct {
	Limit int
}

type historyResponse struct {
	Runs []depot.Run `json:"runs"`
	Err  error       `json:"err,omitempty"`
}

func (r historyResponse) error() error { return r.Err }
