package validator

import (
	"time"

	"github.com/lamassuiot/ca-material-validator/pkg/depot"
	"github.com/lamassuiot/ca-material-validator/pkg/engine"

	"github.com/go-kit/kit/log"

	"context"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   Service
	logger log.Logger
}

func (mw loggingMiddleware) Health(ctx context.Context) (healthy bool) {
	defer func(begin time.Time) {
		mw.logger.Log(
			"method", "Health",
			"healthy", healthy,
			"took", time.Since(begin),
		)
	}(time.Now())
	return mw.next.Health(ctx)
}

func (mw loggingMiddleware) Validate(ctx context.Context, m Material) (report *engine.Report, err error) {
	defer func(begin time.Time) {
		keyvals := []interface{}{
			"method", "Validate",
			"took", time.Since(begin),
			"err", err,
		}
		if report != nil {
			keyvals = append(keyvals, "subject", report.Subject, "valid", report.Valid())
		}
		mw.logger.Log(keyvals...)
	}(time.Now())
	return mw.next.Validate(ctx, m)
}

func (mw loggingMiddleware) ValidateStored(ctx context.Context) (report *engine.Report, err error) {
	defer func(begin time.Time) {
		keyvals := []interface{}{
			"method", "ValidateStored",
			"took", time.Since(begin),
			"err", err,
		}
		if report != nil {
			keyvals = append(keyvals, "subject", report.Subject, "valid", report.Valid())
		}
		mw.logger.Log(keyvals...)
	}(time.Now())
	return mw.next.ValidateStored(ctx)
}

func (mw loggingMiddleware) History(ctx context.Context, limit int) (runs []depot.Run, err error) {
	defer func(begin time.Time) {
		mw.logger.Log(
			"method", "History",
			"took", time.Since(begin),
			"err", err)
	}(time.Now())
	return mw.next.History(ctx, limit)
}
