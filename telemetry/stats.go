package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// World state at window end
	Live     int    `csv:"live"`
	Free     int    `csv:"free"`
	Total    int    `csv:"total"`
	Shapes   int    `csv:"shapes"`
	Boundary string `csv:"boundary"`
	Emitting bool   `csv:"emitting"`

	// Events during window
	Emitted             int `csv:"emitted"`
	ForcedRetirements   int `csv:"forced_retirements"`
	NaturalExpiries     int `csv:"natural_expiries"`
	EngineFailures      int `csv:"engine_failures"`
	EmitterFailures     int `csv:"emitter_failures"`
	CohesionFailures    int `csv:"cohesion_failures"`
	BoundaryFailures    int `csv:"boundary_failures"`
	BoundaryTransitions int `csv:"boundary_transitions"`
	ShapesSpawned       int `csv:"shapes_spawned"`

	// Particle speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean, sample standard deviation and
// percentiles from speed values.
func ComputeSpeedStats(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("live", s.Live),
		slog.Int("free", s.Free),
		slog.Int("total", s.Total),
		slog.Int("shapes", s.Shapes),
		slog.String("boundary", s.Boundary),
		slog.Bool("emitting", s.Emitting),
		slog.Int("emitted", s.Emitted),
		slog.Int("forced_retirements", s.ForcedRetirements),
		slog.Int("natural_expiries", s.NaturalExpiries),
		slog.Int("engine_failures", s.EngineFailures),
		slog.Int("boundary_transitions", s.BoundaryTransitions),
		slog.Int("shapes_spawned", s.ShapesSpawned),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"live", s.Live,
		"free", s.Free,
		"total", s.Total,
		"shapes", s.Shapes,
		"boundary", s.Boundary,
		"emitting", s.Emitting,
		"emitted", s.Emitted,
		"forced_retirements", s.ForcedRetirements,
		"natural_expiries", s.NaturalExpiries,
		"engine_failures", s.EngineFailures,
		"emitter_failures", s.EmitterFailures,
		"cohesion_failures", s.CohesionFailures,
		"boundary_failures", s.BoundaryFailures,
		"boundary_transitions", s.BoundaryTransitions,
		"shapes_spawned", s.ShapesSpawned,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
	)
}
