package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: 10}, Params{}.Normalize(0))
	assert.Equal(t, Params{Page: 1, Limit: 9}, Params{Page: -3}.Normalize(9))
	assert.Equal(t, Params{Page: 2, Limit: MaxLimit}, Params{Page: 2, Limit: 5000}.Normalize(10))
}

func TestOffsetAndTotalPages(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Params{Page: 3, Limit: 10}.Offset())

	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}
