package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"43200"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"259200"`

	RaceAPIBaseURL        string   `env:"RACE_API_BASE_URL" envDefault:"https://runsignup.com/Rest"`
	UltraSignupAPIBaseURL string   `env:"ULTRASIGNUP_API_BASE_URL" envDefault:"https://ultrasignup.com/service/events.svc"`
	RaceAPITimeoutSeconds int      `env:"RACE_API_TIMEOUT_SECONDS" envDefault:"15"`
	RaceFetchStates       []string `env:"RACE_FETCH_STATES" envSeparator:","`
	RaceFetchBatchSize    int      `env:"RACE_FETCH_CONCURRENCY" envDefault:"5"`
	RaceFetchBatchDelayMS int      `env:"RACE_FETCH_BATCH_DELAY_MS" envDefault:"500"`
	RaceFetchRPS          float64  `env:"RACE_FETCH_RPS" envDefault:"4"`
	RaceCacheTTLHours     int      `env:"RACE_CACHE_TTL_HOURS" envDefault:"24"`
	UseMockRaces          bool     `env:"USE_MOCK_RACES" envDefault:"false"`

	RefreshLimitPerHour int `env:"REFRESH_LIMIT_PER_HOUR" envDefault:"3"`
	ScoringWorkers      int `env:"SCORING_WORKERS" envDefault:"4"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.RaceFetchStates = normalizeStates(cfg.RaceFetchStates)
	return &cfg, nil
}

func (c *Config) RaceAPITimeout() time.Duration {
	return time.Duration(c.RaceAPITimeoutSeconds) * time.Second
}

func (c *Config) RaceFetchBatchDelay() time.Duration {
	return time.Duration(c.RaceFetchBatchDelayMS) * time.Millisecond
}

func (c *Config) RaceCacheTTL() time.Duration {
	return time.Duration(c.RaceCacheTTLHours) * time.Hour
}

func normalizeStates(states []string) []string {
	out := make([]string, 0, len(states))
	for _, s := range states {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
