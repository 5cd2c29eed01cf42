package actions

import (
	"log/slog"

	"github.com/matthewrmshin/atlas/parallel"
	"github.com/matthewrmshin/atlas/uid"
	"github.com/matthewrmshin/atlas/utils"
)

type Config struct {
	// Precision is the lon/lat resolution of every unique id
	Precision uid.Precision
	// PoleTolerance, in degrees, selects the nodes of a pole band
	PoleTolerance float64
	// Reducer combines the lon/lat bounding box of all partitions
	Reducer parallel.Reducer
	Logger  *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Precision:     uid.DefaultPrecision(),
		PoleTolerance: utils.MICRODEG,
		Reducer:       parallel.Local{},
		Logger:        slog.Default(),
	}
}

// withDefaults fills unset fields so a zero Config behaves like DefaultConfig
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Precision.Resolution <= 0 {
		c.Precision = def.Precision
	}
	if c.PoleTolerance <= 0 {
		c.PoleTolerance = def.PoleTolerance
	}
	if c.Reducer == nil {
		c.Reducer = def.Reducer
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	return c
}
