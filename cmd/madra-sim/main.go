package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/MikeSquared-Agency/Madra/internal/catalog"
	"github.com/MikeSquared-Agency/Madra/internal/explorer"
	"github.com/MikeSquared-Agency/Madra/internal/sim"
)

func main() {
	def := explorer.DefaultScenario()

	technique := flag.String("technique", def.TechniqueID, "catalog technique id")
	requires := flag.String("requires", "", "comma-separated categories for an ad hoc technique, e.g. Pure,Destruction")
	environment := flag.String("env", def.EnvironmentID, "catalog environment id")
	weights := flag.String("weights", "", "custom environment weights, e.g. Fire=0.5,Earth=0.5")
	density := flag.Float64("density", 0.5, "custom environment density in [0,1]")
	duration := flag.Float64("duration", def.DurationMin, "simulated minutes")
	dt := flag.Float64("dt", def.DtMin, "time step in minutes")
	reserve := flag.Float64("reserve", def.InitialReservePct, "initial reserve fraction of capacity")
	capacity := flag.Float64("capacity", def.InitialCapacity, "initial capacity")
	direction := flag.String("direction", string(def.Direction), "inward, balanced or outward")
	ease := flag.Float64("ease", def.Ease, "cycling ease in [0,1]")
	context := flag.String("context", string(def.Context), "resting, moving or fighting")
	catalogPath := flag.String("catalog", "", "optional catalog file")
	out := flag.String("out", "", "write samples CSV here instead of stdout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s := def
	s.TechniqueID = *technique
	s.EnvironmentID = *environment
	s.DurationMin = *duration
	s.DtMin = *dt
	s.InitialReservePct = *reserve
	s.InitialCapacity = *capacity
	s.Direction = sim.Direction(*direction)
	s.Ease = *ease
	s.Context = sim.Context(*context)

	if *requires != "" {
		cats, err := parseRequires(*requires)
		if err != nil {
			fatal(logger, "invalid -requires", err)
		}
		s.Requires = cats
	}
	if *weights != "" {
		comp, err := parseWeights(*weights)
		if err != nil {
			fatal(logger, "invalid -weights", err)
		}
		s.Custom = &explorer.CustomEnvironment{Density: *density, Weights: comp}
	}

	registry, err := catalog.NewRegistry(*catalogPath, logger)
	if err != nil {
		fatal(logger, "failed to load catalog", err)
	}
	x := explorer.New(registry, nil, nil, explorer.DefaultLimits(), explorer.DefaultSweepConfig(), logger)

	res, err := x.Run(s)
	if err != nil {
		fatal(logger, "simulation rejected", err)
	}

	logger.Info("simulation complete",
		"technique", res.Technique.ID,
		"environment", res.Environment.ID,
		"match", res.Match.Score,
		"samples", res.Summary.Samples,
		"final_reserve", res.Summary.FinalReserve,
		"fullness", res.Summary.Fullness,
		"equilibrium", res.Equilibrium,
	)

	if err := writeSamples(*out, res.Samples); err != nil {
		fatal(logger, "failed to write samples", err)
	}
}

func writeSamples(path string, samples []sim.Sample) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	return gocsv.Marshal(samples, w)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
