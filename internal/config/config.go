// Package config holds the tunables of a game and of the processes hosting it.
package config

import (
	"log/slog"
	"time"

	"github.com/myrjola/whodunit/internal/envstruct"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/scoring"
)

var ErrInvalidConfig = errors.NewSentinel("invalid configuration")

// Game configures turn limits, context compression, question planning and the automated driver.
type Game struct {
	MaxTurns       int `env:"WHODUNIT_MAX_TURNS" envDefault:"30"`
	CompressAfter  int `env:"WHODUNIT_COMPRESS_AFTER" envDefault:"20"`
	RecentWindow   int `env:"WHODUNIT_RECENT_WINDOW" envDefault:"4"`
	EarlyWindow    int `env:"WHODUNIT_EARLY_WINDOW" envDefault:"6"`
	SummaryRunes   int `env:"WHODUNIT_SUMMARY_RUNES" envDefault:"80"`
	PlannerHistory int `env:"WHODUNIT_PLANNER_HISTORY" envDefault:"8"`
	IntelWindow    int `env:"WHODUNIT_INTEL_WINDOW" envDefault:"4"`
	IntelRunes     int `env:"WHODUNIT_INTEL_RUNES" envDefault:"300"`
	Highlights     int `env:"WHODUNIT_HIGHLIGHTS" envDefault:"5"`
	HighlightRunes int `env:"WHODUNIT_HIGHLIGHT_RUNES" envDefault:"200"`
	FirstPass      int `env:"WHODUNIT_FIRST_PASS" envDefault:"4"`
	SecondPass     int `env:"WHODUNIT_SECOND_PASS" envDefault:"2"`

	// DedupThreshold is the only place the duplicate question threshold is configured.
	DedupThreshold float64 `env:"WHODUNIT_DEDUP_THRESHOLD" envDefault:"0.65"`
}

// Scoring configures the weights and efficiency tiers of the final score.
type Scoring struct {
	SuspectPoints  int `env:"WHODUNIT_SCORE_SUSPECT" envDefault:"40"`
	WeaponPoints   int `env:"WHODUNIT_SCORE_WEAPON" envDefault:"30"`
	MotivePoints   int `env:"WHODUNIT_SCORE_MOTIVE" envDefault:"30"`
	FastTurns      int `env:"WHODUNIT_FAST_TURNS" envDefault:"10"`
	FastBonus      int `env:"WHODUNIT_FAST_BONUS" envDefault:"10"`
	MediumTurns    int `env:"WHODUNIT_MEDIUM_TURNS" envDefault:"15"`
	MediumBonus    int `env:"WHODUNIT_MEDIUM_BONUS" envDefault:"5"`
	PenaltyStart   int `env:"WHODUNIT_PENALTY_START" envDefault:"25"`
	PenaltyPerTurn int `env:"WHODUNIT_PENALTY_PER_TURN" envDefault:"2"`
	MaxPenalty     int `env:"WHODUNIT_MAX_PENALTY" envDefault:"20"`
}

// Rules converts the configuration into scoring rules.
func (s Scoring) Rules() scoring.Rules {
	return scoring.Rules{
		SuspectPoints:  s.SuspectPoints,
		WeaponPoints:   s.WeaponPoints,
		MotivePoints:   s.MotivePoints,
		FastTurns:      s.FastTurns,
		FastBonus:      s.FastBonus,
		MediumTurns:    s.MediumTurns,
		MediumBonus:    s.MediumBonus,
		PenaltyStart:   s.PenaltyStart,
		PenaltyPerTurn: s.PenaltyPerTurn,
		MaxPenalty:     s.MaxPenalty,
	}
}

// Models selects the chat models and the OpenAI compatible endpoint serving them.
type Models struct {
	APIKey       string `env:"OPENAI_API_KEY" envDefault:""`
	BaseURL      string `env:"OPENAI_BASE_URL" envDefault:""`
	SuspectModel string `env:"WHODUNIT_SUSPECT_MODEL" envDefault:"gpt-4o-mini"`
	UtilityModel string `env:"WHODUNIT_UTILITY_MODEL" envDefault:"gpt-4o-mini"`
	ImageModel   string `env:"WHODUNIT_IMAGE_MODEL" envDefault:"dall-e-3"`
}

// Server configures the hosting processes.
type Server struct {
	Addr      string `env:"WHODUNIT_ADDR" envDefault:"localhost:4000"`
	SqliteURL string `env:"WHODUNIT_SQLITE_URL" envDefault:"./whodunit.sqlite3"`
	// PprofPort disables the pprof server when empty.
	PprofPort string `env:"WHODUNIT_PPROF_PORT" envDefault:"6060"`
	CaseFile string `env:"WHODUNIT_CASE_FILE" envDefault:""`
	LogLevel string `env:"WHODUNIT_LOG_LEVEL" envDefault:"info"`
	// RequestTimeout bounds one request, including every model call it makes.
	RequestTimeout time.Duration `env:"WHODUNIT_REQUEST_TIMEOUT" envDefault:"3m"`
	// SessionLifetime is how long an idle player keeps their game.
	SessionLifetime time.Duration `env:"WHODUNIT_SESSION_LIFETIME" envDefault:"12h"`
}

// Config is the complete configuration of a process.
type Config struct {
	Game    Game
	Scoring Scoring
	Models  Models
	Server  Server
}

// Load reads the configuration from the environment and validates it.
//
// lookupEnv has the same signature as [os.LookupEnv].
func Load(lookupEnv func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Config{}, errors.Wrap(err, "populate config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied.
func Default() Config {
	cfg, err := Load(func(string) (string, bool) { return "", false })
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects nonsensical values.
func (c Config) Validate() error {
	var errs []error
	positive := []struct {
		name  string
		value int
	}{
		{"max_turns", c.Game.MaxTurns},
		{"recent_window", c.Game.RecentWindow},
		{"early_window", c.Game.EarlyWindow},
		{"summary_runes", c.Game.SummaryRunes},
		{"planner_history", c.Game.PlannerHistory},
		{"intel_window", c.Game.IntelWindow},
		{"intel_runes", c.Game.IntelRunes},
		{"highlights", c.Game.Highlights},
		{"highlight_runes", c.Game.HighlightRunes},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, errors.Wrap(ErrInvalidConfig, "must be positive",
				slog.String("setting", p.name), slog.Int("value", p.value)))
		}
	}
	nonNegative := []struct {
		name  string
		value int
	}{
		{"compress_after", c.Game.CompressAfter},
		{"first_pass", c.Game.FirstPass},
		{"second_pass", c.Game.SecondPass},
		{"suspect_points", c.Scoring.SuspectPoints},
		{"weapon_points", c.Scoring.WeaponPoints},
		{"motive_points", c.Scoring.MotivePoints},
		{"fast_bonus", c.Scoring.FastBonus},
		{"medium_bonus", c.Scoring.MediumBonus},
		{"penalty_per_turn", c.Scoring.PenaltyPerTurn},
		{"max_penalty", c.Scoring.MaxPenalty},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			errs = append(errs, errors.Wrap(ErrInvalidConfig, "must not be negative",
				slog.String("setting", p.name), slog.Int("value", p.value)))
		}
	}
	if c.Game.DedupThreshold <= 0 || c.Game.DedupThreshold > 1 {
		errs = append(errs, errors.Wrap(ErrInvalidConfig, "dedup threshold must be in (0, 1]",
			slog.Float64("value", c.Game.DedupThreshold)))
	}
	if sum := c.Scoring.SuspectPoints + c.Scoring.WeaponPoints + c.Scoring.MotivePoints; sum > 100 {
		errs = append(errs, errors.Wrap(ErrInvalidConfig, "component points exceed 100", slog.Int("sum", sum)))
	}
	if c.Server.RequestTimeout <= time.Second {
		errs = append(errs, errors.Wrap(ErrInvalidConfig, "request timeout must exceed one second",
			slog.Duration("value", c.Server.RequestTimeout)))
	}
	if c.Server.SessionLifetime < time.Minute {
		errs = append(errs, errors.Wrap(ErrInvalidConfig, "session lifetime must be at least a minute",
			slog.Duration("value", c.Server.SessionLifetime)))
	}
	if c.Scoring.FastTurns > c.Scoring.MediumTurns {
		errs = append(errs, errors.Wrap(ErrInvalidConfig, "fast turns exceed medium turns",
			slog.Int("fast_turns", c.Scoring.FastTurns), slog.Int("medium_turns", c.Scoring.MediumTurns)))
	}
	return errors.Join(errs...)
}
