package validator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lamassuiot/ca-material-validator/pkg/engine"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/tracing/opentracing"

	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	stdopentracing "github.com/opentracing/opentracing-go"

	"github.com/gorilla/mux"
)

var (
	ErrMalformedBody = errors.New("malformed request body")
	ErrMissingBundle = errors.New("bundle field is required")
	ErrMissingKey    = errors.New("private_key field is required")
)

type errorer interface {
	error() error
}

func MakeHTTPHandler(s Service, logger log.Logger, otTracer stdopentracing.Tracer) http.Handler {
	r := mux.NewRouter()
	e := MakeServerEndpoints(s, otTracer)

	options := []httptransport.ServerOption{
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	r.Methods("GET").Path("/health").Handler(httptransport.NewServer(
		e.HealthEndpoint,
		decodeHealthRequest,
		encodeHealthResponse,
		append(options, httptransport.ServerBefore(opentracing.HTTPToContext(otTracer, "Health", logger)))...,
	))

	r.Methods("POST").Path("/v1/validate").Handler(httptransport.NewServer(
		e.ValidateEndpoint,
		decodeValidateRequest,
		encodeValidateResponse,
		append(options, httptransport.ServerBefore(opentracing.HTTPToContext(otTracer, "ValidateOperation", logger)))...,
	))

	r.Methods("POST").Path("/v1/validate/stored").Handler(httptransport.NewServer(
		e.ValidateStoredEndpoint,
		decodeValidateStoredRequest,
		encodeValidateResponse,
		append(options, httptransport.ServerBefore(opentracing.HTTPToContext(otTracer, "ValidateStoredOperation", logger)))...,
	))

	r.Methods("GET").Path("/v1/runs").Handler(httptransport.NewServer(
		e.HistoryEndpoint,
		decodeHistoryRequest,
		encodeHistoryResponse,
		append(options, httptransport.ServerBefore(opentracing.HTTPToContext(otTracer, "HistoryOperation", logger)))...,
	))

	return r
}

func decodeHealthRequest(ctx context.Context, r *http.Request) (request interface{}, err error) {
	var req healthRequest
	return req, nil
}

func decodeValidateRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var m Material
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(&m); err != nil {
		return nil, ErrMalformedBody
	}
	defer r.Body.Close()
	if m.Bundle == "" {
		return nil, ErrMissingBundle
	}
	if m.Key == "" {
		return nil, ErrMissingKey
	}
	return validateRequest{Material: m}, nil
}

func decodeValidateStoredRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	return validateRequest{}, nil
}

func decodeHistoryRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return historyRequest{Limit: limit}, nil
}

// reportView is the wire form of a report, with the aggregate flag the
// presentation layer maps to an exit code.
type reportView struct {
	Valid   bool           `json:"valid"`
	Subject string         `json:"subject,omitempty"`
	Issues  []engine.Issue `json:"issues"`
}

func encodeValidateResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	resp := response.(validateResponse)
	view := reportView{
		Valid:   resp.Report.Valid(),
		Subject: resp.Report.Subject,
		Issues:  resp.Report.Issues,
	}
	if view.Issues == nil {
		view.Issues = []engine.Issue{}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(view)
}

func encodeHealthResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

func encodeHistoryResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if e, ok := response.(errorer); ok && e.error() != nil {
		encodeError(ctx, e.error(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		panic("encodeError with nil error")
	}
	http.Error(w, err.Error(), codeFrom(err))
}

func codeFrom(err error) int {
	switch err {
	case ErrMalformedBody, ErrMissingBundle, ErrMissingKey:
		return http.StatusBadRequest
	case ErrNoSecretsBackend, ErrNoDepot:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
