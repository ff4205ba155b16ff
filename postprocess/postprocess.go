// Package postprocess transforms rendered template content before it is
// written to the project.
//
// Processors run after placeholder substitution, in the order they were added.
// A processor that does not apply to a file returns the content unchanged.
package postprocess

import "fmt"

type Processor interface {
	Process(path string, content []byte) ([]byte, error)
}

// Func adapts a function to the Processor interface.
type Func func(path string, content []byte) ([]byte, error)

func (f Func) Process(path string, content []byte) ([]byte, error) {
	return f(path, content)
}

// Chain runs processors in sequence, feeding each the previous output.
type Chain struct {
	processors []Processor
}

func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: append([]Processor(nil), processors...)}
}

func (c *Chain) Add(p Processor) {
	c.processors = append(c.processors, p)
}

// Process stops at the first failing processor.
func (c *Chain) Process(path string, content []byte) ([]byte, error) {
	result := content
	for i, p := range c.processors {
		processed, err := p.Process(path, result)
		if err != nil {
			return nil, fmt.Errorf("processor %d failed for %s: %w", i, path, err)
		}
		result = processed
	}
	return result, nil
}

func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.processors)
}
