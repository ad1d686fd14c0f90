package racesource

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"getabib/internal/domain"
)

const (
	DefaultRunSignUpBaseURL = "https://runsignup.com/Rest"
	runSignUpPageSize       = 100
)

// RunSignUpClient consulta el listado publico de RunSignUp por estado.
type RunSignUpClient struct {
	baseURL string
	getter  httpGetter
	breaker *breaker
	logger  *zap.Logger
	now     func() time.Time
}

// NewRunSignUpClient construye el cliente. rps <= 0 desactiva el limitador.
func NewRunSignUpClient(baseURL string, timeout time.Duration, rps float64, logger *zap.Logger) *RunSignUpClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = DefaultRunSignUpBaseURL
	}
	return &RunSignUpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		getter:  newHTTPGetter(timeout, rps),
		breaker: newBreaker(SourceRunSignUp, logger),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *RunSignUpClient) Name() string { return SourceRunSignUp }

// FetchState trae las carreras del proximo anio en un estado.
func (c *RunSignUpClient) FetchState(ctx context.Context, state string) ([]domain.Race, error) {
	now := c.now()
	params := url.Values{}
	params.Set("format", "json")
	params.Set("state", state)
	params.Set("start_date", now.Format("2006-01-02"))
	params.Set("end_date", now.AddDate(0, 0, 365).Format("2006-01-02"))
	params.Set("results_per_page", strconv.Itoa(runSignUpPageSize))
	params.Set("sort", "date ASC")
	params.Set("only_races_with_results", "F")
	params.Set("include_event_info", "T")
	endpoint := c.baseURL + "/races?" + params.Encode()

	return c.breaker.do(func() ([]domain.Race, error) {
		var resp runSignUpResponse
		if err := c.getter.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("runsignup %s: %w", state, err)
		}
		races := make([]domain.Race, 0, len(resp.Races))
		for _, wrapper := range resp.Races {
			if r, ok := c.transform(wrapper.Race, now); ok {
				races = append(races, r)
			}
		}
		c.logger.Debug("runsignup state fetched", zap.String("state", state), zap.Int("races", len(races)))
		return races, nil
	})
}

func (c *RunSignUpClient) transform(raw runSignUpRace, now time.Time) (domain.Race, bool) {
	dateRaw := raw.NextDate
	if strings.TrimSpace(dateRaw) == "" {
		dateRaw = raw.LastDate
	}
	date, parsed, ok := normalizeDate(dateRaw)
	if !ok || !isUpcoming(parsed, now) {
		return domain.Race{}, false
	}

	km := marathonKm
	if ev, ok := primaryEvent(raw.Events); ok {
		km = distanceKm(float64(ev.Distance), ev.DistanceUnit)
	}

	registration := raw.URL
	if registration == "" {
		registration = raw.ExternalRaceURL
	}

	return domain.Race{
		ID:              SourceRunSignUp + "_" + string(raw.RaceID),
		Name:            strings.TrimSpace(raw.Name),
		Date:            date,
		City:            orDefault(raw.Address.City, unknownCity),
		State:           strings.TrimSpace(raw.Address.State),
		Country:         orDefault(raw.Address.CountryCode, defaultCountry),
		Distance:        km,
		DistanceLabel:   distanceLabel(km),
		Category:        categoryFromDistance(km),
		RegistrationURL: registration,
		WebsiteURL:      raw.ExternalRaceURL,
		Description:     truncateRunes(raw.Description, maxDescriptionRunes),
		ImageURL:        raw.LogoURL,
		Terrain:         domain.TerrainRoad,
		Source:          SourceRunSignUp,
	}, true
}

// primaryEvent elige el evento de mayor distancia de la carrera.
func primaryEvent(events []runSignUpEvent) (runSignUpEvent, bool) {
	if len(events) == 0 {
		return runSignUpEvent{}, false
	}
	best := events[0]
	bestKm := distanceKm(float64(best.Distance), best.DistanceUnit)
	for _, ev := range events[1:] {
		if km := distanceKm(float64(ev.Distance), ev.DistanceUnit); km > bestKm {
			best, bestKm = ev, km
		}
	}
	return best, true
}

type runSignUpResponse struct {
	Races []struct {
		Race runSignUpRace `json:"race"`
	} `json:"races"`
}

type runSignUpRace struct {
	RaceID   flexString `json:"race_id"`
	Name     string     `json:"name"`
	NextDate string     `json:"next_date"`
	LastDate string     `json:"last_date"`
	Address  struct {
		City        string `json:"city"`
		State       string `json:"state"`
		CountryCode string `json:"country_code"`
		Zipcode     string `json:"zipcode"`
	} `json:"address"`
	URL             string           `json:"url"`
	ExternalRaceURL string           `json:"external_race_url"`
	LogoURL         string           `json:"logo_url"`
	Description     string           `json:"description"`
	Events          []runSignUpEvent `json:"events"`
}

type runSignUpEvent struct {
	EventID      flexString `json:"event_id"`
	Name         string     `json:"name"`
	Distance     flexFloat  `json:"distance"`
	DistanceUnit string     `json:"distance_unit"`
	StartTime    string     `json:"start_time"`
}

// flexFloat acepta un numero o un string numerico; cualquier otra cosa queda en 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexString acepta ids numericos o string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}
