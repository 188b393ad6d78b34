package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestChainOrder(t *testing.T) {
	var trace []string
	tag := func(name string) Interceptor {
		return func(ctx context.Context, op string, next Operation) error {
			trace = append(trace, name+">"+op)
			err := next(ctx)
			trace = append(trace, name+"<")
			return err
		}
	}

	err := Chain(tag("outer"), tag("inner"))(context.Background(), "fetch", func(context.Context) error {
		trace = append(trace, "op")
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"outer>fetch", "inner>fetch", "op", "inner<", "outer<"}, trace)
}

func TestEmptyChainRunsOperation(t *testing.T) {
	called := false
	err := Chain()(context.Background(), "op", func(context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestLoggingInterceptorReportsFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	boom := errors.New("boom")

	err := LoggingInterceptor(zap.New(core))(context.Background(), "extract_product", func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	failed := logs.FilterMessage("operation failed").All()
	if assert.Len(t, failed, 1) {
		assert.Equal(t, "extract_product", failed[0].ContextMap()["op"])
	}
	assert.Equal(t, 1, logs.FilterMessage("operation started").Len())
}

func TestMetricsInterceptorToleratesNilMetrics(t *testing.T) {
	err := MetricsInterceptor(nil)(context.Background(), "op", func(context.Context) error { return nil })
	assert.NoError(t, err)

	m := NewMetrics()
	_ = MetricsInterceptor(m)(context.Background(), "op", func(context.Context) error { return nil })
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration, "crawler_operation_duration_seconds"))
}
