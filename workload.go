package main

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funny-falcon/refgc/alloc"
	"github.com/funny-falcon/refgc/gc"
)

// Scenario drives one registry: Objects allocations are tracked, each is
// cloned Copies times, a Reassign share of pointers is moved to a fresh
// allocation, and all but Keep pointers are released.
type Scenario struct {
	Name     string  `yaml:"name"`
	Length   int     `yaml:"length"`
	Objects  int     `yaml:"objects"`
	Copies   int     `yaml:"copies"`
	Reassign float64 `yaml:"reassign"`
	Keep     int     `yaml:"keep"`
}

type Workload struct {
	Seed      int64      `yaml:"seed"`
	Scenarios []Scenario `yaml:"scenarios"`
}

var defaultWorkload = Workload{
	Seed: 1,
	Scenarios: []Scenario{
		{Name: "scalars", Objects: 1000, Copies: 3, Reassign: 0.1, Keep: 10},
		{Name: "arrays", Length: 16, Objects: 200, Copies: 1, Reassign: 0.2, Keep: 5},
	},
}

func LoadWorkload(path string) (Workload, error) {
	if path == "" {
		return defaultWorkload, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Workload{}, err
	}
	return ParseWorkload(data)
}

func ParseWorkload(data []byte) (Workload, error) {
	var w Workload
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Workload{}, fmt.Errorf("parse workload: %w", err)
	}
	for i, sc := range w.Scenarios {
		if sc.Length < 0 || sc.Objects < 0 || sc.Copies < 0 || sc.Keep < 0 {
			return Workload{}, fmt.Errorf("scenario %d %q: negative count", i, sc.Name)
		}
		if sc.Reassign < 0 || sc.Reassign > 1 {
			return Workload{}, fmt.Errorf("scenario %d %q: reassign %v outside [0, 1]", i, sc.Name, sc.Reassign)
		}
	}
	return w, nil
}

func (sc Scenario) shape() gc.Shape {
	if sc.Length == 0 {
		return gc.Scalar()
	}
	return gc.Array(sc.Length)
}

type Report struct {
	Name      string `json:"name"`
	Shape     string `json:"shape"`
	Tracked   int    `json:"tracked"`
	PeakSize  int    `json:"peak_size"`
	Collected bool   `json:"collected"`
	Remaining int    `json:"remaining"`
}

// Runner plays scenarios against a heap. Kept pointers outlive Run and are
// reclaimed by the heap's shutdown.
type Runner struct {
	Heap  *gc.Heap
	Typed *alloc.Typed[int64]
	Kept  []*gc.Pointer[int64]
}

func (r *Runner) Run(w Workload) ([]Report, error) {
	rnd := rand.New(rand.NewSource(w.Seed))
	var reports []Report
	for _, sc := range w.Scenarios {
		rep, err := r.run(rnd, sc)
		if err != nil {
			return reports, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (r *Runner) allocate(shape gc.Shape) *int64 {
	if shape.IsArray() {
		return r.Typed.NewArray(shape.Len())
	}
	return r.Typed.New()
}

func (r *Runner) run(rnd *rand.Rand, sc Scenario) (Report, error) {
	shape := sc.shape()
	reg, err := gc.RegistryFor[int64](r.Heap, shape, r.Typed)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Name: sc.Name, Shape: shape.String()}

	var ptrs []*gc.Pointer[int64]
	for i := 0; i < sc.Objects; i++ {
		p := reg.Track(r.allocate(shape))
		for j, v := range p.All() {
			*v = int64(i + j)
		}
		ptrs = append(ptrs, p)
		for c := 0; c < sc.Copies; c++ {
			cp, err := p.Clone()
			if err != nil {
				return rep, err
			}
			ptrs = append(ptrs, cp)
		}
		rep.Tracked++
	}
	for _, p := range ptrs {
		if rnd.Float64() < sc.Reassign {
			p.Reset(r.allocate(shape))
			rep.Tracked++
		}
	}
	rep.PeakSize = reg.Size()

	rnd.Shuffle(len(ptrs), func(i, j int) { ptrs[i], ptrs[j] = ptrs[j], ptrs[i] })
	keep := sc.Keep
	if keep > len(ptrs) {
		keep = len(ptrs)
	}
	r.Kept = append(r.Kept, ptrs[:keep]...)
	for _, p := range ptrs[keep:] {
		p.Release()
	}
	rep.Collected = reg.Collect()
	rep.Remaining = reg.Size()
	return rep, nil
}
