package world

import "strings"

const (
	DefaultSeed   = "prototype"
	DefaultWidth  = 32
	DefaultHeight = 32

	// A board narrower than three tiles is all border wall with no
	// interior left to stand on.
	minBoardSpan = 3
)

type Config struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Seed          string `json:"seed"`
	Pillars       bool   `json:"pillars"`
	PillarCount   int    `json:"pillarCount"`
	Sentinels     bool   `json:"sentinels"`
	SentinelCount int    `json:"sentinelCount"`
	Imps          bool   `json:"imps"`
	ImpCount      int    `json:"impCount"`
	Acolytes      bool   `json:"acolytes"`
	AcolyteCount  int    `json:"acolyteCount"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.PillarCount < 0 {
		normalized.PillarCount = 0
	}
	if normalized.SentinelCount < 0 {
		normalized.SentinelCount = 0
	}
	if normalized.ImpCount < 0 {
		normalized.ImpCount = 0
	}
	if normalized.AcolyteCount < 0 {
		normalized.AcolyteCount = 0
	}
	if normalized.Width < minBoardSpan {
		normalized.Width = DefaultWidth
	}
	if normalized.Height < minBoardSpan {
		normalized.Height = DefaultHeight
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func DefaultConfig() Config {
	return Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Seed:          DefaultSeed,
		Pillars:       true,
		PillarCount:   6,
		Sentinels:     true,
		SentinelCount: 2,
		Imps:          true,
		ImpCount:      3,
		Acolytes:      true,
		AcolyteCount:  2,
	}
}
