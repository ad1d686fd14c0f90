// Package racesource obtiene el catalogo de carreras de las APIs publicas de inscripcion
// y lo normaliza al modelo domain.Race.
package racesource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"getabib/internal/domain"
)

const (
	SourceRunSignUp   = "runsignup"
	SourceUltraSignup = "ultrasignup"

	userAgent       = "getabib/1.0 (+https://getabib.app)"
	maxResponseSize = 8 << 20
)

// Fetcher trae el listado completo de una fuente.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Race, error)
}

// StateFetcher trae carreras de una fuente que se consulta estado por estado.
type StateFetcher interface {
	Name() string
	FetchState(ctx context.Context, state string) ([]domain.Race, error)
}

// httpGetter agrupa el cliente HTTP y el limitador de pedidos de una fuente.
type httpGetter struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPGetter(timeout time.Duration, rps float64) httpGetter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return httpGetter{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// getJSON espera turno en el limitador, hace el GET y decodifica el cuerpo en out.
func (g httpGetter) getJSON(ctx context.Context, endpoint string, out any) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("upstream http error: status=%d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
