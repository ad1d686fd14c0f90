package racesource

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"getabib/internal/domain"
	"getabib/internal/metrics"
)

const breakerFailureThreshold = 5

// breaker corta los pedidos a una fuente que viene fallando seguido.
type breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[[]domain.Race]
}

func newBreaker(name string, logger *zap.Logger) *breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		// Una cancelacion del llamador no cuenta como falla de la fuente.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("upstream circuit breaker state changed",
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return &breaker{name: name, cb: gobreaker.NewCircuitBreaker[[]domain.Race](settings)}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

// do ejecuta fn protegido por el breaker y registra el resultado.
func (b *breaker) do(fn func() ([]domain.Race, error)) ([]domain.Race, error) {
	started := time.Now()
	races, err := b.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ObserveUpstreamFetch(b.name, "open", started)
	case err != nil:
		metrics.ObserveUpstreamFetch(b.name, "error", started)
	default:
		metrics.ObserveUpstreamFetch(b.name, "ok", started)
	}
	return races, err
}

func (b *breaker) state() gobreaker.State {
	return b.cb.State()
}
