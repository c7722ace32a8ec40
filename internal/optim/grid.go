// Package optim runs a bow model over a grid of input values and picks the
// best result.
package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bow-simulation/virtualbow-sub001/internal/model"
)

// Setters are the input values a grid can vary, by name. They only assign
// scalar fields, so copies of an input can share its slices.
var Setters = map[string]func(in *model.InputData, v float64){
	"brace_height":   func(in *model.InputData, v float64) { in.Dimensions.BraceHeight = v },
	"draw_length":    func(in *model.InputData, v float64) { in.Dimensions.DrawLength = v },
	"handle_setback": func(in *model.InputData, v float64) { in.Dimensions.HandleSetback = v },
	"handle_angle":   func(in *model.InputData, v float64) { in.Dimensions.HandleAngle = v },
	"arrow_mass":     func(in *model.InputData, v float64) { in.Masses.Arrow = v },
	"string_center":  func(in *model.InputData, v float64) { in.Masses.StringCenter = v },
	"string_tip":     func(in *model.InputData, v float64) { in.Masses.StringTip = v },
	"limb_tip":       func(in *model.InputData, v float64) { in.Masses.LimbTip = v },
	"n_strands":      func(in *model.InputData, v float64) { in.String.NStrands = int(math.Round(v)) },
	"ratio_limbs":    func(in *model.InputData, v float64) { in.Damping.RatioLimbs = v },
	"ratio_string":   func(in *model.InputData, v float64) { in.Damping.RatioString = v },
}

// ParamNames lists the keys of Setters in sorted order.
func ParamNames() []string {
	names := make([]string, 0, len(Setters))
	for name := range Setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Param struct {
	Name   string
	Values []float64
}

// Point is one simulated grid point. Err is set if the simulation of this
// point failed; the other points are not affected.
type Point struct {
	Params map[string]float64
	Output *model.Output
	Err    error
}

type GridSearch struct {
	params  []Param
	workers int
}

// NewGridSearch checks the parameters. workers < 1 uses one worker per CPU.
func NewGridSearch(params []Param, workers int) (*GridSearch, error) {
	seen := make(map[string]bool)
	for _, p := range params {
		if _, ok := Setters[p.Name]; !ok {
			return nil, fmt.Errorf("optim: unknown parameter %q (one of %s)", p.Name, strings.Join(ParamNames(), ", "))
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("optim: parameter %q given twice", p.Name)
		}
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("optim: no values for %q", p.Name)
		}
		seen[p.Name] = true
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &GridSearch{params: params, workers: workers}, nil
}

// Points returns all combinations of parameter values, the last parameter
// varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var points []map[string]float64
	g.collect(0, make(map[string]float64), &points)
	return points
}

func (g *GridSearch) collect(depth int, current map[string]float64, points *[]map[string]float64) {
	if depth == len(g.params) {
		*points = append(*points, current)
		return
	}
	p := g.params[depth]
	for _, val := range p.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[p.Name] = val
		g.collect(depth+1, next, points)
	}
}

// Run simulates every grid point on a copy of base. Points are returned in
// the order of Points. done, if not nil, is called after each point from
// the worker that simulated it. Run stops early only if ctx is canceled.
func (g *GridSearch) Run(ctx context.Context, base *model.InputData, mode model.Mode, done func(Point)) ([]Point, error) {
	params := g.Points()
	results := make([]Point, len(params))
	jobs := make(chan int)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for w := 0; w < min(g.workers, len(params)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				in := *base
				for name, v := range params[idx] {
					Setters[name](&in, v)
				}

				out, err := model.Simulate(ctx, &in, mode, nil)
				results[idx] = Point{Params: params[idx], Output: out, Err: err}
				if done != nil {
					mu.Lock()
					done(results[idx])
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for i := range params {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Best returns the successful point with the largest (or, if minimize is
// set, smallest) metric. metric reports false for outputs it cannot rate.
func Best(points []Point, metric func(*model.Output) (float64, bool), minimize bool) (Point, bool) {
	var (
		best  Point
		value float64
		found bool
	)
	for _, p := range points {
		if p.Err != nil || p.Output == nil {
			continue
		}
		v, ok := metric(p.Output)
		if !ok || math.IsNaN(v) {
			continue
		}
		if minimize {
			v = -v
		}
		if !found || v > value {
			best, value, found = p, v, true
		}
	}
	return best, found
}
