package prebuilt

import (
	"errors"
	"fmt"

	"github.com/stategraph/stategraph/pkg/stategraph"
)

var ErrEmptyPipeline = errors.New("pipeline requires at least one stage")

// Stage is one step of a linear pipeline.
type Stage struct {
	Name string
	Fn   stategraph.NodeFunc
}

// PipelineConfig describes a straight chain of stages executed once
// each, in order.
type PipelineConfig struct {
	GraphName string
	Schema    *stategraph.Schema
	Stages    []Stage
}

// NewPipeline compiles the stages into a linear graph.
func NewPipeline(cfg PipelineConfig) (*stategraph.CompiledGraph, error) {
	if len(cfg.Stages) == 0 {
		return nil, ErrEmptyPipeline
	}
	name := cfg.GraphName
	if name == "" {
		name = "pipeline"
	}
	schema := cfg.Schema
	if schema == nil {
		schema = stategraph.NewSchema().AddField("results", stategraph.Append())
	}

	b := stategraph.NewBuilder(name, schema)
	for _, stage := range cfg.Stages {
		if err := b.AddNode(stage.Name, stage.Fn); err != nil {
			return nil, err
		}
	}
	for i := 0; i+1 < len(cfg.Stages); i++ {
		if err := b.AddEdge(cfg.Stages[i].Name, cfg.Stages[i+1].Name); err != nil {
			return nil, err
		}
	}
	if err := b.SetEntry(cfg.Stages[0].Name); err != nil {
		return nil, err
	}
	return b.Compile()
}

// PipelineBuilder wraps NewPipeline for registry use.
func PipelineBuilder() Builder {
	return BuildFunc{
		BuilderName: "pipeline",
		Fn: func(cfg any) (*stategraph.CompiledGraph, error) {
			typed, ok := cfg.(PipelineConfig)
			if !ok {
				return nil, fmt.Errorf("%w: want PipelineConfig, got %T", ErrBadConfig, cfg)
			}
			return NewPipeline(typed)
		},
	}
}
