package filter

import (
	"fmt"

	"github.com/robert-malhotra/h5value/internal/message"
)

// Pipeline is the ordered filter chain of a dataset.
type Pipeline struct {
	filters []Filter
	// index is each filter's position in the message, for the chunk mask.
	index []int
}

// NewPipeline builds a pipeline from a filter pipeline message. A nil
// message gives an empty pipeline.
func NewPipeline(fp *message.FilterPipeline) (*Pipeline, error) {
	p := &Pipeline{}
	if fp == nil {
		return p, nil
	}
	for i, info := range fp.Filters {
		f, err := New(info)
		if err != nil {
			return nil, err
		}
		if f == nil {
			continue
		}
		p.filters = append(p.filters, f)
		p.index = append(p.index, i)
	}
	return p, nil
}

// Decode undoes the pipeline, last filter first. Bit i of mask skips the
// filter at position i of the message.
func (p *Pipeline) Decode(input []byte, mask uint32) ([]byte, error) {
	data := input
	for i := len(p.filters) - 1; i >= 0; i-- {
		if mask&(1<<uint(p.index[i])) != 0 {
			continue
		}
		var err error
		if data, err = p.filters[i].Decode(data); err != nil {
			return nil, fmt.Errorf("filter %d: %w", p.filters[i].ID(), err)
		}
	}
	return data, nil
}

// Encode applies the pipeline, first filter first.
func (p *Pipeline) Encode(input []byte) ([]byte, error) {
	data := input
	for _, f := range p.filters {
		var err error
		if data, err = f.Encode(data); err != nil {
			return nil, fmt.Errorf("filter %d: %w", f.ID(), err)
		}
	}
	return data, nil
}

// Empty reports whether the pipeline has no filters.
func (p *Pipeline) Empty() bool {
	return len(p.filters) == 0
}

// Len returns the number of filters in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.filters)
}
