package crawler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Operation is one unit of driver or pipeline work.
type Operation func(ctx context.Context) error

// Interceptor wraps every instrumented operation. It must call next exactly
// once and return its error.
type Interceptor func(ctx context.Context, op string, next Operation) error

// Chain composes interceptors; the first one is outermost.
func Chain(interceptors ...Interceptor) Interceptor {
	return func(ctx context.Context, op string, next Operation) error {
		wrapped := next
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor, inner := interceptors[i], wrapped
			wrapped = func(ctx context.Context) error {
				return interceptor(ctx, op, inner)
			}
		}
		return wrapped(ctx)
	}
}

// LoggingInterceptor logs the start and end of every operation.
func LoggingInterceptor(logger *zap.Logger) Interceptor {
	return func(ctx context.Context, op string, next Operation) error {
		logger.Debug("operation started", zap.String("op", op))
		start := time.Now()
		err := next(ctx)
		fields := []zap.Field{zap.String("op", op), zap.Duration("duration", time.Since(start))}
		if err != nil {
			logger.Warn("operation failed", append(fields, zap.Error(err))...)
			return err
		}
		logger.Debug("operation finished", fields...)
		return nil
	}
}

// MetricsInterceptor observes the duration of every operation.
func MetricsInterceptor(m *Metrics) Interceptor {
	return func(ctx context.Context, op string, next Operation) error {
		start := time.Now()
		err := next(ctx)
		m.ObserveOperation(op, time.Since(start))
		return err
	}
}
