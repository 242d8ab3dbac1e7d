package game

import (
	"time"

	"github.com/scythe504/drawguess-backend/internal"
	"github.com/scythe504/drawguess-backend/internal/common/clock"
)

// Config holds the collaborators and tunables shared by every session.
type Config struct {
	Transport Transport
	Words     *WordSelector
	Clock     clock.Clock
	Archiver  Archiver

	RoundDurationSeconds int
	MaxRounds            int
	RevealDelay          time.Duration
	HintOffsets          []int
	MaxPlayers           int

	// Seed makes hint letter choice reproducible. Zero picks a random seed.
	Seed uint64
}

// validate checks required collaborators and fills in defaults.
func (c *Config) validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Transport == nil {
		return ErrNilTransport
	}
	if c.Words == nil {
		return ErrNilWordSelector
	}
	if c.Clock == nil {
		return ErrNilClock
	}
	if c.Archiver == nil {
		c.Archiver = noopArchiver{}
	}
	if c.RoundDurationSeconds <= 0 {
		c.RoundDurationSeconds = internal.DefaultRoundDurationSeconds
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = internal.DefaultMaxRounds
	}
	if c.RevealDelay <= 0 {
		c.RevealDelay = internal.RevealPhaseDuration
	}
	if c.HintOffsets == nil {
		c.HintOffsets = internal.DefaultHintOffsets
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = internal.MaxPlayersPerRoom
	}
	return nil
}
