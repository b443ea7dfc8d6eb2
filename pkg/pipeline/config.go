package pipeline

import (
	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned for a configuration that would corrupt
// detection or smoothing. It is raised before detection runs, so a bad
// config never touches the mesh.
var ErrInvalidConfig = errors.New("pipeline: invalid smoothing configuration")

// Config is the smoothing configuration surface consumed by the core.
// The zero value is invalid; start from DefaultConfig.
type Config struct {
	// Enabled gates everything below junction detection. When false the
	// mesh is returned unmodified and statistics are still computed from
	// detection alone.
	Enabled bool `yaml:"enabled"`

	// RadiusFactor scales the largest incident vessel radius into the
	// local smoothing radius of each junction. Must be positive.
	RadiusFactor float64 `yaml:"radius_factor"`

	// Iterations is the Taubin iteration count. Zero is a valid no-op.
	Iterations int `yaml:"iterations"`

	// Tolerance is the endpoint clustering distance. Too small misses
	// junctions whose endpoints drift apart numerically; too large
	// clusters unrelated endpoints, which the connectivity gate then has
	// to discard. Must be positive.
	Tolerance float64 `yaml:"tolerance"`
}

// DefaultConfig returns the defaults used by the surface exporter.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		RadiusFactor: 2.0,
		Iterations:   5,
		Tolerance:    1e-6,
	}
}

// Validate checks the configuration. All violations are reported in one
// error, wrapped around ErrInvalidConfig.
func (c Config) Validate() error {
	var problems []string
	if c.RadiusFactor <= 0 {
		problems = append(problems, "radius_factor must be > 0")
	}
	if c.Iterations < 0 {
		problems = append(problems, "iterations must be >= 0")
	}
	if c.Tolerance <= 0 {
		problems = append(problems, "tolerance must be > 0")
	}
	if len(problems) == 0 {
		return nil
	}
	msg := problems[0]
	for _, p := range problems[1:] {
		msg += "; " + p
	}
	return errors.Wrap(ErrInvalidConfig, msg)
}
