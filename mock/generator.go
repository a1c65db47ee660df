package mock

import (
	"context"

	"github.com/fwojciec/streamable"
)

// Interface compliance check.
var _ streamable.Generator = (*Generator)(nil)

// Generator is a test double for streamable.Generator.
// Set NextFn before calling Next.
type Generator struct {
	NextFn func(ctx context.Context) (streamable.Node, bool, error)
}

// Next delegates to NextFn.
func (g *Generator) Next(ctx context.Context) (streamable.Node, bool, error) {
	return g.NextFn(ctx)
}

// Steps returns a Generator that yields each node in turn and finishes
// with terminal as the done step's value.
func Steps(terminal streamable.Node, nodes ...streamable.Node) *Generator {
	i := 0
	return &Generator{
		NextFn: func(context.Context) (streamable.Node, bool, error) {
			if i >= len(nodes) {
				return terminal, true, nil
			}
			n := nodes[i]
			i++
			return n, false, nil
		},
	}
}
