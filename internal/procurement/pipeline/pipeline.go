// Package pipeline holds the approval pipeline as configuration data: one
// authoritative ordered list of role stages per institution, with optional
// per-department overrides. The state machine never hardcodes a shape.
package pipeline

import (
	"fmt"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
)

// DefaultStages is the canonical institutional pipeline.
var DefaultStages = []string{"hod", "store", "registrar", "principal", "management", "account"}

// Pipeline is an ordered list of approving role stages.
type Pipeline struct {
	stages []string
	index  map[string]int
}

// New builds a pipeline from an ordered stage list.
func New(stages []string) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline must have at least one stage")
	}
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		if s == "" {
			return nil, fmt.Errorf("pipeline stage %d is empty", i)
		}
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("pipeline stage %q appears twice", s)
		}
		index[s] = i
	}
	return &Pipeline{stages: append([]string(nil), stages...), index: index}, nil
}

// Default returns the canonical pipeline.
func Default() *Pipeline {
	p, _ := New(DefaultStages)
	return p
}

// Stages returns a copy of the ordered stage list.
func (p *Pipeline) Stages() []string {
	return append([]string(nil), p.stages...)
}

// First returns the first stage.
func (p *Pipeline) First() string {
	return p.stages[0]
}

// Contains reports whether stage is part of the pipeline.
func (p *Pipeline) Contains(stage string) bool {
	_, ok := p.index[stage]
	return ok
}

// Next returns the stage after the given one. ok is false when stage is the
// last stage or not part of the pipeline.
func (p *Pipeline) Next(stage string) (next string, ok bool) {
	i, found := p.index[stage]
	if !found || i+1 >= len(p.stages) {
		return "", false
	}
	return p.stages[i+1], true
}

// StatusAfter returns the indent status that follows an approval by stage:
// the next pending status, or approved when stage is the last one.
func (p *Pipeline) StatusAfter(stage string) string {
	if next, ok := p.Next(stage); ok {
		return entity.PendingStatus(next)
	}
	return entity.IndentStatusApproved
}

// Statuses returns every status an indent can hold under this pipeline,
// rejection included.
func (p *Pipeline) Statuses() []string {
	out := []string{entity.IndentStatusDraft}
	for _, s := range p.stages {
		out = append(out, entity.PendingStatus(s))
	}
	return append(out, entity.IndentStatusApproved, entity.IndentStatusRejected)
}

// Set resolves the pipeline for a department, falling back to the default.
type Set struct {
	def  *Pipeline
	dept map[string]*Pipeline
}

// NewSet builds a pipeline set from the default shape and per-department
// overrides.
func NewSet(def []string, overrides map[string][]string) (*Set, error) {
	if len(def) == 0 {
		def = DefaultStages
	}
	p, err := New(def)
	if err != nil {
		return nil, fmt.Errorf("default pipeline: %w", err)
	}
	s := &Set{def: p, dept: make(map[string]*Pipeline, len(overrides))}
	for dept, stages := range overrides {
		dp, err := New(stages)
		if err != nil {
			return nil, fmt.Errorf("pipeline for department %q: %w", dept, err)
		}
		s.dept[dept] = dp
	}
	return s, nil
}

// For returns the pipeline governing the given department.
func (s *Set) For(department string) *Pipeline {
	if p, ok := s.dept[department]; ok {
		return p
	}
	return s.def
}
