package declarative

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/state"
	"github.com/stategraph/stategraph/pkg/registry"
)

// Loaded couples a compiled graph with the run settings the definition
// carried alongside the topology.
type Loaded struct {
	Graph     *graph.CompiledGraph
	StepLimit int
}

// Load parses a YAML definition and compiles it against the registry.
func Load(data []byte, reg *registry.Registry) (*Loaded, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}
	return Build(&def, reg)
}

// LoadFile reads and compiles a definition from disk.
func LoadFile(path string, reg *registry.Registry) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition %s: %w", path, err)
	}
	loaded, err := Load(data, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}

// Build compiles a parsed definition against the registry.
func Build(def *Definition, reg *registry.Registry) (*Loaded, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}

	schema := state.NewSchema()
	for name, field := range def.State {
		kind := state.ReducerType(field.Reducer)
		if kind == "" {
			kind = state.ReducerReplace
		}
		reducer, err := state.New(kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		if field.Initial != nil {
			schema.AddFieldWithInitial(name, reducer, field.Initial)
		} else {
			schema.AddField(name, reducer)
		}
	}

	b := graph.NewBuilder(def.Name, schema)
	for _, node := range def.Nodes {
		fn, err := nodeFunc(node, reg)
		if err != nil {
			return nil, err
		}
		if err := b.AddNode(node.Name, fn); err != nil {
			return nil, err
		}
	}
	for _, edge := range def.Edges {
		if edge.To != "" {
			if err := b.AddEdge(edge.From, edge.To); err != nil {
				return nil, err
			}
			continue
		}
		router, err := reg.Router(edge.Router)
		if err != nil {
			return nil, fmt.Errorf("edge from %q: %w", edge.From, err)
		}
		if err := b.AddConditionalEdge(edge.From, router, edge.Targets...); err != nil {
			return nil, err
		}
	}
	if err := b.SetEntry(def.Entry); err != nil {
		return nil, err
	}

	g, err := b.Compile()
	if err != nil {
		return nil, err
	}
	return &Loaded{Graph: g, StepLimit: def.StepLimit}, nil
}

func nodeFunc(node NodeDef, reg *registry.Registry) (graph.NodeFunc, error) {
	if node.Fn != "" {
		fn, err := reg.Node(node.Fn)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", node.Name, err)
		}
		return fn, nil
	}
	update := state.Update(node.Update)
	return func(ctx context.Context, s state.State) (state.Update, error) {
		return update.Clone(), nil
	}, nil
}
