package burstnet

// rng.go holds the random number abstractions used by the burst
// application: a stream interface that lets tests substitute
// deterministic draws, and samplers for the configured distributions

import (
	"fmt"
	"math"

	"github.com/iti/rngstream"
)

// randStream is the slice of rngstream functionality the simulation draws on.
// Every node owns one stream; tests implement randStream with scripted values
type randStream interface {
	RandU01() float64
	RandInt(low, high int) int
}

// check that the rngstream generator provides what we need of it
var _ randStream = (*rngstream.RngStream)(nil)

// expRV returns a sample of an exponentially distributed random number
func expRV(u01, rate float64) float64 {
	return -math.Log(1.0-u01) / rate
}

// sampleExpRV has the sampler function signature, drawing an
// exponential with rate params[0]
func sampleExpRV(u01 float64, params []float64) float64 {
	return expRV(u01, params[0])
}

// sampleConst has the sampler function signature, always returning params[0]
func sampleConst(u01 float64, params []float64) float64 {
	return params[0]
}

// sampleUniform has the sampler function signature, returning a value
// drawn uniformly from [params[0], params[1])
func sampleUniform(u01 float64, params []float64) float64 {
	return params[0] + u01*(params[1]-params[0])
}

// durationSampler carries a sampler function and the parameters
// it is called with.  One is built for each configured distribution
// (sleep time, burst time, inter-send time, packet length)
type durationSampler struct {
	// function that maps a U01 random number and a parameter
	// vector to a sample
	sample func(float64, []float64) float64
	params []float64
}

// createDurationSampler builds a durationSampler from its desc representation.
// An error is returned when the distribution name is not recognized or
// its parameters are unusable
func createDurationSampler(dd *DistDesc) (*durationSampler, error) {
	ds := new(durationSampler)

	switch dd.Dist {
	case "const", "constant":
		ds.sample = sampleConst
		ds.params = []float64{dd.Mean}
	case "expon", "exp", "exponential":
		if !(dd.Mean > 0.0) {
			return nil, fmt.Errorf("exponential distribution needs positive mean, have %v", dd.Mean)
		}
		ds.sample = sampleExpRV
		ds.params = []float64{1.0 / dd.Mean}
	case "uniform", "unif":
		if dd.Max < dd.Min {
			return nil, fmt.Errorf("uniform distribution has max %v below min %v", dd.Max, dd.Min)
		}
		ds.sample = sampleUniform
		ds.params = []float64{dd.Min, dd.Max}
	default:
		return nil, fmt.Errorf("unrecognized distribution %q", dd.Dist)
	}

	return ds, nil
}

// draw advances the stream and returns the next sample
func (ds *durationSampler) draw(rng randStream) float64 {
	return ds.sample(rng.RandU01(), ds.params)
}
