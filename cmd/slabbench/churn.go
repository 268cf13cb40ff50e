package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavanmanishd/slab"
)

type smallTask struct {
	id    uint64
	state uint32
	flags uint32
}

type mediumTask struct {
	id      uint64
	waker   uintptr
	scratch [240]byte
}

type largeTask struct {
	id  uint64
	buf [1008]byte
}

var elemSizes = []string{"small", "medium", "large"}

type churnConfig struct {
	Tasks      int
	Rounds     int
	FreeRatio  float64
	ReadyRatio float64
	Seed       int64
	ElemSize   string
}

func (c churnConfig) validate() error {
	if c.Tasks <= 0 {
		return fmt.Errorf("--tasks must be positive, got %d", c.Tasks)
	}
	if c.Rounds < 0 {
		return fmt.Errorf("--rounds must not be negative, got %d", c.Rounds)
	}
	if c.FreeRatio < 0 || c.FreeRatio > 1 {
		return fmt.Errorf("--free-ratio must be within [0, 1], got %g", c.FreeRatio)
	}
	if c.ReadyRatio < 0 || c.ReadyRatio > 1 {
		return fmt.Errorf("--ready-ratio must be within [0, 1], got %g", c.ReadyRatio)
	}
	return nil
}

type churnReport struct {
	ElemSize   string           `json:"elem_size"`
	Allocs     int              `json:"allocs"`
	Frees      int              `json:"frees"`
	StaleFrees int              `json:"stale_frees"`
	Polled     int              `json:"polled"`
	Elapsed    time.Duration    `json:"elapsed_ns"`
	Layout     slab.Layout      `json:"layout"`
	Metrics    slab.SlabMetrics `json:"metrics"`
}

func newChurnCmd(g *globalFlags) *cobra.Command {
	cfg := churnConfig{}
	cmd := &cobra.Command{
		Use:   "churn",
		Short: "Simulate task spawn/retire churn",
		Long: `The churn command fills an arena with tasks, then runs rounds in which
a fraction of tasks is marked ready and polled, and a fraction is retired
and replaced. Retiring the same task twice in a round counts as a stale free.

Example:
  slabbench churn --tasks 10000 --rounds 50 --free-ratio 0.2
  slabbench churn --elem-size large --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			logger, err := g.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			report, err := runChurnFor(cfg, logger)
			if err != nil {
				return err
			}
			if g.jsonOut {
				return printJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Tasks, "tasks", 4096, "Live tasks to keep in the arena")
	cmd.Flags().IntVar(&cfg.Rounds, "rounds", 100, "Churn rounds to run")
	cmd.Flags().Float64Var(&cfg.FreeRatio, "free-ratio", 0.1, "Fraction of tasks retired per round")
	cmd.Flags().Float64Var(&cfg.ReadyRatio, "ready-ratio", 0.05, "Fraction of tasks marked ready per round")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 1, "Random seed")
	cmd.Flags().StringVar(&cfg.ElemSize, "elem-size", "small", "Task size: small, medium, large")
	return cmd
}

func runChurnFor(cfg churnConfig, logger *slog.Logger) (churnReport, error) {
	switch cfg.ElemSize {
	case "small":
		return runChurn(cfg, logger, func(id int) smallTask { return smallTask{id: uint64(id)} }), nil
	case "medium":
		return runChurn(cfg, logger, func(id int) mediumTask { return mediumTask{id: uint64(id)} }), nil
	case "large":
		return runChurn(cfg, logger, func(id int) largeTask { return largeTask{id: uint64(id)} }), nil
	}
	return churnReport{}, fmt.Errorf("unknown --elem-size %q (want one of %v)", cfg.ElemSize, elemSizes)
}

func runChurn[T any](cfg churnConfig, logger *slog.Logger, spawn func(id int) T) churnReport {
	start := time.Now()
	s := slab.NewWithOptions[T](slab.Options{Logger: logger})
	defer s.Release()

	rep := churnReport{ElemSize: cfg.ElemSize, Layout: s.Layout()}
	rng := rand.New(rand.NewSource(cfg.Seed))
	nextID := 0
	allocate := func() slab.Key {
		rep.Allocs++
		nextID++
		return s.Allocate(spawn(nextID))
	}

	keys := make([]slab.Key, cfg.Tasks)
	for i := range keys {
		keys[i] = allocate()
	}

	retire := int(float64(cfg.Tasks) * cfg.FreeRatio)
	for round := 0; round < cfg.Rounds; round++ {
		for _, k := range keys {
			if rng.Float64() < cfg.ReadyRatio {
				s.MarkReady(k)
			}
		}
		for _, page := range s.ReadyPages() {
			rep.Polled += len(s.TakeReady(page))
		}

		var freed []int
		for j := 0; j < retire; j++ {
			ix := rng.Intn(len(keys))
			if !s.Free(keys[ix]) {
				rep.StaleFrees++
				continue
			}
			rep.Frees++
			freed = append(freed, ix)
		}
		for _, ix := range freed {
			keys[ix] = allocate()
		}
		logger.Debug("churn round", "round", round, "live", s.Live(), "pages", s.NumPages(), "free_pages", s.FreePages())
	}

	rep.Metrics = s.Metrics()
	rep.Elapsed = time.Since(start)
	logger.Info("churn finished", "allocs", rep.Allocs, "frees", rep.Frees, "pages", rep.Metrics.NumPages)
	return rep
}

func printReport(w io.Writer, r churnReport) {
	m := r.Metrics
	fmt.Fprintf(w, "Element:      %s (%d bytes, %d slots/page)\n", r.ElemSize, r.Layout.ElemSize, r.Layout.NumValues)
	fmt.Fprintf(w, "Allocations:  %d\n", r.Allocs)
	fmt.Fprintf(w, "Frees:        %d (stale %d)\n", r.Frees, r.StaleFrees)
	fmt.Fprintf(w, "Polled:       %d\n", r.Polled)
	fmt.Fprintf(w, "Pages:        %d (%d with space, %d bytes)\n", m.NumPages, m.FreePages, m.Bytes)
	fmt.Fprintf(w, "Live:         %d / %d slots (%.1f%%)\n", m.Live, m.Capacity, m.Utilization*100)
	fmt.Fprintf(w, "Elapsed:      %s\n", r.Elapsed.Round(time.Microsecond))
}
