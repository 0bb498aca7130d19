package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{1, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		en = NewEdgeKey([2]int{1<<32 - 1, 1})
		assert.Equal(t, EdgeKey((1<<32-1)<<32+1), en)
		assert.Equal(t, [2]int{1, 1<<32 - 1}, en.GetVertices(false))

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Face keys are independent of vertex order
		fk1 := NewFaceKey([]int{7, 3, 9, 1})
		fk2 := NewFaceKey([]int{9, 1, 3, 7})
		assert.Equal(t, fk1, fk2)
		assert.Equal(t, []int{1, 3, 7, 9}, fk1.GetVertices())

		seg := NewFaceKey([]int{5, 2})
		assert.Equal(t, FaceKey{-1, -1, 2, 5}, seg)
		assert.Equal(t, []int{2, 5}, seg.GetVertices())
		assert.NotEqual(t, seg, NewFaceKey([]int{2, 6}))

		assert.Panics(t, func() { NewFaceKey([]int{1}) })
	}
	{
		err := fmt.Errorf("%w: inner radius %g >= outer radius %g", ErrInvalidDomain, 2., 1.)
		assert.True(t, errors.Is(err, ErrInvalidDomain))
		assert.False(t, errors.Is(err, ErrInvalidDegree))
	}
}
