package main

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/fluidbox/config"
	"github.com/pthm-cable/fluidbox/game"
	"github.com/pthm-cable/fluidbox/telemetry"
)

// FitnessEvaluator runs headless simulations and scores how close the
// steady water population gets to a target.
type FitnessEvaluator struct {
	params      *ParamVector
	baseConfig  *config.Config
	target      float64
	maxTicks    int32
	seeds       []int64
	statsWindow float64

	mu       sync.Mutex
	lastLive float64 // steady live population from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, target float64, maxTicks int32, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		baseConfig:  baseCfg,
		target:      target,
		maxTicks:    maxTicks,
		seeds:       seeds,
		statsWindow: 1.0,
	}
}

// LastLive returns the steady live population of the most recent evaluation.
func (fe *FitnessEvaluator) LastLive() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastLive
}

// Evaluate computes fitness for raw parameter values (lower = better):
// the squared relative distance between the steady live population and
// the target, averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return math.Inf(1)
	}

	lives := make([]float64, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lives[i], errs[i] = fe.runSimulation(cfg, seed)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return math.Inf(1)
		}
	}

	live := stat.Mean(lives, nil)
	fe.mu.Lock()
	fe.lastLive = live
	fe.mu.Unlock()

	return populationError(lives, fe.target)
}

// populationError is the mean squared relative error of lives from target.
func populationError(lives []float64, target float64) float64 {
	sq := make([]float64, len(lives))
	for i, l := range lives {
		d := (l - target) / target
		sq[i] = d * d
	}
	return stat.Mean(sq, nil)
}

// runSimulation runs one headless game on the ark engine and returns the
// mean live population over the second half of the run.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (float64, error) {
	var windows []telemetry.WindowStats

	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		Engine:         "ark",
		StartWater:     true,
		StatsWindowSec: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return 0, err
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}

	return steadyLive(windows)
}

// steadyLive averages the live population over the second half of the
// windows, after the population has had time to settle.
func steadyLive(windows []telemetry.WindowStats) (float64, error) {
	if len(windows) < 2 {
		return 0, fmt.Errorf("only %d telemetry windows, run longer", len(windows))
	}
	tail := windows[len(windows)/2:]
	live := make([]float64, len(tail))
	for i, w := range tail {
		live[i] = float64(w.Live)
	}
	return stat.Mean(live, nil), nil
}
