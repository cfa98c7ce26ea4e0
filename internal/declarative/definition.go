// Package declarative loads graph definitions from YAML. Node and
// router behavior comes from a registry; the definition contributes the
// wiring: schema fields, nodes, edges and the entry point.
package declarative

import (
	"errors"
	"fmt"
)

var (
	ErrMissingName   = errors.New("definition has no name")
	ErrMissingEntry  = errors.New("definition has no entry")
	ErrNoNodes       = errors.New("definition has no nodes")
	ErrAmbiguousNode = errors.New("node declares both fn and update")
	ErrEmptyNode     = errors.New("node declares neither fn nor update")
	ErrAmbiguousEdge = errors.New("edge declares both to and router")
	ErrEmptyEdge     = errors.New("edge declares neither to nor router")
)

// Definition is the YAML shape of a graph.
type Definition struct {
	Name      string              `yaml:"name"`
	Entry     string              `yaml:"entry"`
	State     map[string]FieldDef `yaml:"state"`
	Nodes     []NodeDef           `yaml:"nodes"`
	Edges     []EdgeDef           `yaml:"edges"`
	StepLimit int                 `yaml:"step_limit"`
}

// FieldDef declares one schema field.
type FieldDef struct {
	Reducer string `yaml:"reducer"`
	Initial any    `yaml:"initial"`
}

// NodeDef declares a node: either Fn naming a registered function, or
// Update, a literal partial update the node returns on every visit.
type NodeDef struct {
	Name   string         `yaml:"name"`
	Fn     string         `yaml:"fn"`
	Update map[string]any `yaml:"update"`
}

// EdgeDef declares an outgoing edge: either To for a fixed edge, or
// Router (with optional Targets) for a conditional one.
type EdgeDef struct {
	From    string   `yaml:"from"`
	To      string   `yaml:"to"`
	Router  string   `yaml:"router"`
	Targets []string `yaml:"targets"`
}

func (d *Definition) validate() error {
	if d.Name == "" {
		return ErrMissingName
	}
	if d.Entry == "" {
		return ErrMissingEntry
	}
	if len(d.Nodes) == 0 {
		return ErrNoNodes
	}
	for _, n := range d.Nodes {
		if n.Fn != "" && n.Update != nil {
			return fmt.Errorf("%w: %s", ErrAmbiguousNode, n.Name)
		}
		if n.Fn == "" && n.Update == nil {
			return fmt.Errorf("%w: %s", ErrEmptyNode, n.Name)
		}
	}
	for _, e := range d.Edges {
		if e.To != "" && e.Router != "" {
			return fmt.Errorf("%w: from %s", ErrAmbiguousEdge, e.From)
		}
		if e.To == "" && e.Router == "" {
			return fmt.Errorf("%w: from %s", ErrEmptyEdge, e.From)
		}
	}
	return nil
}
