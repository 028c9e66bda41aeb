package env

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"zodiac_backend/internal/config"
)

const (
	gamingConfigPathEnvName = "GAMING_CONFIG_PATH"

	DefaultGamingConfigPath = "config/gaming.json"
)

// GamingDocument mirrors the responsible gaming configuration file.
// JSON documents parse as YAML, so both formats are accepted.
type GamingDocument struct {
	ResponsibleGaming struct {
		AlertIntervals       []int   `yaml:"alertIntervals"`
		MaxContinuousMinutes int     `yaml:"maxContinuousMinutes"`
		DailyLimitWarning    float64 `yaml:"dailyLimitWarning"`
		MaxSpinsPer30Min     int     `yaml:"maxSpinsPer30Min"`
		ResetTimezone        string  `yaml:"resetTimezone"`
	} `yaml:"responsibleGaming"`
	BettingLimits struct {
		DailyLimit      int     `yaml:"dailyLimit"`
		CooldownSeconds float64 `yaml:"cooldownSeconds"`
	} `yaml:"bettingLimits"`
}

// DefaultGamingDocument returns the built-in limits used when no
// configuration file is available.
func DefaultGamingDocument() GamingDocument {
	var doc GamingDocument
	doc.ResponsibleGaming.AlertIntervals = []int{30, 60, 90}
	doc.ResponsibleGaming.MaxContinuousMinutes = 120
	doc.ResponsibleGaming.DailyLimitWarning = 0.80
	doc.ResponsibleGaming.MaxSpinsPer30Min = 300
	doc.BettingLimits.DailyLimit = 10000
	doc.BettingLimits.CooldownSeconds = 1
	return doc
}

type gamingConfig struct {
	alertIntervals       []int
	maxContinuousMinutes int
	dailyLimitWarning    float64
	maxSpinsPer30Min     int
	dailyLimit           int
	cooldown             time.Duration
	location             *time.Location
}

// NewGamingConfig validates doc. Zero values are filled from the defaults.
func NewGamingConfig(doc GamingDocument) (config.GamingConfig, error) {
	def := DefaultGamingDocument()
	rg := doc.ResponsibleGaming
	bl := doc.BettingLimits

	if len(rg.AlertIntervals) == 0 {
		rg.AlertIntervals = def.ResponsibleGaming.AlertIntervals
	}
	if rg.MaxContinuousMinutes == 0 {
		rg.MaxContinuousMinutes = def.ResponsibleGaming.MaxContinuousMinutes
	}
	if rg.DailyLimitWarning == 0 {
		rg.DailyLimitWarning = def.ResponsibleGaming.DailyLimitWarning
	}
	if rg.MaxSpinsPer30Min == 0 {
		rg.MaxSpinsPer30Min = def.ResponsibleGaming.MaxSpinsPer30Min
	}
	if bl.DailyLimit == 0 {
		bl.DailyLimit = def.BettingLimits.DailyLimit
	}

	for _, m := range rg.AlertIntervals {
		if m <= 0 {
			return nil, fmt.Errorf("alert interval must be positive, got %d", m)
		}
	}
	if rg.MaxContinuousMinutes < 0 || rg.MaxSpinsPer30Min < 0 || bl.DailyLimit < 0 {
		return nil, errors.New("limits must not be negative")
	}
	if rg.DailyLimitWarning < 0 || rg.DailyLimitWarning > 1 {
		return nil, fmt.Errorf("daily limit warning must be within 0..1, got %v", rg.DailyLimitWarning)
	}
	if bl.CooldownSeconds < 0 {
		return nil, errors.New("cooldown must not be negative")
	}

	loc := time.Local
	if rg.ResetTimezone != "" {
		l, err := time.LoadLocation(rg.ResetTimezone)
		if err != nil {
			return nil, fmt.Errorf("invalid reset timezone: %w", err)
		}
		loc = l
	}

	intervals := make([]int, len(rg.AlertIntervals))
	copy(intervals, rg.AlertIntervals)

	return &gamingConfig{
		alertIntervals:       intervals,
		maxContinuousMinutes: rg.MaxContinuousMinutes,
		dailyLimitWarning:    rg.DailyLimitWarning,
		maxSpinsPer30Min:     rg.MaxSpinsPer30Min,
		dailyLimit:           bl.DailyLimit,
		cooldown:             time.Duration(bl.CooldownSeconds * float64(time.Second)),
		location:             loc,
	}, nil
}

// NewGamingConfigFromFile loads the gaming configuration. A missing or broken
// file is not fatal: the defaults apply and the problem is logged.
func NewGamingConfigFromFile(path string, logger *zap.Logger) config.GamingConfig {
	if path == "" {
		path = os.Getenv(gamingConfigPathEnvName)
	}
	if path == "" {
		path = DefaultGamingConfigPath
	}

	cfg, err := loadGamingConfig(path)
	if err != nil {
		logger.Warn("responsible gaming config unavailable, using defaults",
			zap.String("path", path), zap.Error(err))
		cfg, _ = NewGamingConfig(DefaultGamingDocument())
	}
	return cfg
}

func loadGamingConfig(path string) (config.GamingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc GamingDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewGamingConfig(doc)
}

func (cfg *gamingConfig) AlertIntervals() []int {
	out := make([]int, len(cfg.alertIntervals))
	copy(out, cfg.alertIntervals)
	return out
}

func (cfg *gamingConfig) MaxContinuousMinutes() int {
	return cfg.maxContinuousMinutes
}

func (cfg *gamingConfig) DailyLimitWarning() float64 {
	return cfg.dailyLimitWarning
}

func (cfg *gamingConfig) MaxSpinsPer30Min() int {
	return cfg.maxSpinsPer30Min
}

func (cfg *gamingConfig) DailyLimit() int {
	return cfg.dailyLimit
}

func (cfg *gamingConfig) Cooldown() time.Duration {
	return cfg.cooldown
}

func (cfg *gamingConfig) ResetLocation() *time.Location {
	return cfg.location
}
