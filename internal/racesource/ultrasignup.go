package racesource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"getabib/internal/domain"
)

const (
	DefaultUltraSignupBaseURL = "https://ultrasignup.com/service/events.svc"
	defaultUltraKm            = 50
)

var ultraDistancePattern = regexp2.MustCompile(`(\d+\.?\d*)\s*(K|M|mi|km)?`, regexp2.IgnoreCase|regexp2.ECMAScript)

// UltraSignupClient lee el feed publico de eventos de trail y ultra.
type UltraSignupClient struct {
	baseURL string
	getter  httpGetter
	breaker *breaker
	logger  *zap.Logger
	now     func() time.Time
}

func NewUltraSignupClient(baseURL string, timeout time.Duration, rps float64, logger *zap.Logger) *UltraSignupClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = DefaultUltraSignupBaseURL
	}
	return &UltraSignupClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		getter:  newHTTPGetter(timeout, rps),
		breaker: newBreaker(SourceUltraSignup, logger),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *UltraSignupClient) Name() string { return SourceUltraSignup }

// Fetch devuelve solo carreras futuras.
func (c *UltraSignupClient) Fetch(ctx context.Context) ([]domain.Race, error) {
	now := c.now()
	return c.breaker.do(func() ([]domain.Race, error) {
		var events []ultraSignupEvent
		if err := c.getter.getJSON(ctx, c.baseURL+"/getallevents", &events); err != nil {
			return nil, fmt.Errorf("ultrasignup: %w", err)
		}
		races := make([]domain.Race, 0, len(events))
		for _, ev := range events {
			if r, ok := c.transform(ev, now); ok {
				races = append(races, r)
			}
		}
		c.logger.Debug("ultrasignup fetched", zap.Int("races", len(races)))
		return races, nil
	})
}

func (c *UltraSignupClient) transform(ev ultraSignupEvent, now time.Time) (domain.Race, bool) {
	date, parsed, ok := normalizeDate(ev.EventDate)
	if !ok || !parsed.After(now) {
		return domain.Race{}, false
	}
	km := parseUltraDistance(ev.Distance)
	return domain.Race{
		ID:              SourceUltraSignup + "_" + string(ev.EventID),
		Name:            strings.TrimSpace(ev.EventName),
		Date:            date,
		City:            orDefault(ev.City, unknownCity),
		State:           strings.TrimSpace(ev.State),
		Country:         orDefault(ev.Country, defaultCountry),
		Distance:        km,
		DistanceLabel:   distanceLabel(km),
		Category:        categoryFromDistance(km),
		RegistrationURL: ev.EventURL,
		Terrain:         domain.TerrainTrail,
		Source:          SourceUltraSignup,
	}, true
}

// parseUltraDistance interpreta textos como "50K", "100M" o "31 mi". Sin numero se
// asume 50 km.
func parseUltraDistance(raw string) float64 {
	if strings.TrimSpace(raw) == "" {
		return defaultUltraKm
	}
	m, err := ultraDistancePattern.FindStringMatch(raw)
	if err != nil || m == nil {
		return defaultUltraKm
	}
	groups := m.Groups()
	num, err := strconv.ParseFloat(groups[1].String(), 64)
	if err != nil {
		return defaultUltraKm
	}
	switch strings.ToLower(groups[2].String()) {
	case "m", "mi":
		return num * kmPerMile
	}
	return num
}

type ultraSignupEvent struct {
	EventID   flexString `json:"EventId"`
	EventName string     `json:"EventName"`
	EventDate string     `json:"EventDate"`
	City      string     `json:"City"`
	State     string     `json:"State"`
	Country   string     `json:"Country"`
	EventURL  string     `json:"EventUrl"`
	Distance  string     `json:"Distance"`
	EventType string     `json:"EventType"`
}
