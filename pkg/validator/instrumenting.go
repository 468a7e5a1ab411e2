package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/lamassuiot/ca-material-validator/pkg/depot"
	"github.com/lamassuiot/ca-material-validator/pkg/engine"

	"github.com/go-kit/kit/metrics"
)

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func NewInstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return &instrumentingMiddleware{
			requestCount:   counter,
			requestLatency: latency,
			next:           next,
		}
	}
}

func (mw *instrumentingMiddleware) Health(ctx context.Context) bool {
	defer func(begin time.Time) {
		lvs := []string{"method", "Health", "error", "false"}
		mw.requestCount.With(lvs...).Add(1)
		mw.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
	}(time.Now())
	return mw.next.Health(ctx)
}

func (mw *instrumentingMiddleware) Validate(ctx context.Context, m Material) (report *engine.Report, err error) {
	defer func(begin time.Time) {
		lvs := []string{"method", "Validate", "error", fmt.Sprint(err != nil)}
		mw.requestCount.With(lvs...).Add(1)
		mw.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Validate(ctx, m)
}

func (mw *instrumentingMiddleware) ValidateStored(ctx context.Context) (report *engine.Report, err error) {
	defer func(begin time.Time) {
		lvs := []string{"method", "ValidateStored", "error", fmt.Sprint(err != nil)}
		mw.requestCount.With(lvs...).Add(1)
		mw.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.ValidateStored(ctx)
}

func (mw *instrumentingMiddleware) History(ctx context.Context, limit int) (runs []depot.Run, err error) {
	defer func(begin time.Time) {
		lvs := []string{"method", "History", "error", fmt.Sprint(err != nil)}
		mw.requestCount.With(lvs...).Add(1)
		mw.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.History(ctx, limit)
}
