// Package workload describes the synthetic instruction streams the
// simulator executes.
//
// A Spec is the user-facing YAML description: total instruction count, an
// instruction-class mix, annotated work regions, and a seed. Building a
// Spec yields a validated Program, which cores consume through
// deterministic per-position operation streams.
package workload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Region is an annotated work region, delimited by WORKBEGIN and WORKEND
// markers at the given absolute instruction positions.
type Region struct {
	Begin uint64 `yaml:"begin"`
	End   uint64 `yaml:"end"`
}

// Mix gives the fraction of each instruction class in the stream. The
// fractions must be non-negative and sum to a positive value; they are
// normalized during Build.
type Mix struct {
	ALU    float64 `yaml:"alu"`
	Load   float64 `yaml:"load"`
	Store  float64 `yaml:"store"`
	Branch float64 `yaml:"branch"`
}

// Spec describes a synthetic workload.
type Spec struct {
	// TotalInstructions is the length of the instruction stream.
	TotalInstructions uint64 `yaml:"total_instructions"`

	// Seed makes the generated operation stream reproducible.
	Seed int64 `yaml:"seed"`

	// Mix is the instruction-class mix.
	Mix Mix `yaml:"mix"`

	// Regions are the annotated work regions, in ascending order.
	Regions []Region `yaml:"regions"`
}

// DefaultSpec returns a small general-purpose workload: ten million
// instructions with a typical integer mix and one annotated region
// covering most of the run.
func DefaultSpec() *Spec {
	return &Spec{
		TotalInstructions: 10_000_000,
		Seed:              1,
		Mix: Mix{
			ALU:    0.55,
			Load:   0.25,
			Store:  0.1,
			Branch: 0.1,
		},
		Regions: []Region{
			{Begin: 500_000, End: 9_500_000},
		},
	}
}

// LoadSpec reads a Spec from a YAML file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}

	return &spec, nil
}

// Validate checks the spec for structural problems.
func (s *Spec) Validate() error {
	if s.TotalInstructions == 0 {
		return fmt.Errorf("total_instructions must be positive")
	}

	if s.Mix.ALU < 0 || s.Mix.Load < 0 || s.Mix.Store < 0 || s.Mix.Branch < 0 {
		return fmt.Errorf("mix fractions cannot be negative")
	}

	if s.Mix.ALU+s.Mix.Load+s.Mix.Store+s.Mix.Branch <= 0 {
		return fmt.Errorf("mix fractions must sum to a positive value")
	}

	prevEnd := uint64(0)
	for i, r := range s.Regions {
		if r.Begin >= r.End {
			return fmt.Errorf("region %d: begin %d is not before end %d",
				i, r.Begin, r.End)
		}

		if r.Begin < prevEnd {
			return fmt.Errorf("region %d: overlaps or is out of order at %d",
				i, r.Begin)
		}

		if r.End > s.TotalInstructions {
			return fmt.Errorf("region %d: end %d is past the last instruction %d",
				i, r.End, s.TotalInstructions)
		}

		prevEnd = r.End
	}

	return nil
}

// Build validates the spec and produces a Program.
func (s *Spec) Build() (*Program, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workload spec: %w", err)
	}

	total := s.Mix.ALU + s.Mix.Load + s.Mix.Store + s.Mix.Branch

	var markers []Marker
	for _, r := range s.Regions {
		markers = append(markers,
			Marker{Kind: MarkerWorkBegin, Instruction: r.Begin},
			Marker{Kind: MarkerWorkEnd, Instruction: r.End},
		)
	}

	return &Program{
		Total:   s.TotalInstructions,
		Markers: markers,
		seed:    s.Seed,
		cumulative: [numClasses]float64{
			s.Mix.ALU / total,
			(s.Mix.ALU + s.Mix.Load) / total,
			(s.Mix.ALU + s.Mix.Load + s.Mix.Store) / total,
			1.0,
		},
	}, nil
}
