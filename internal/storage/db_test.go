package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSchemaSizesVectorColumn(t *testing.T) {
	rendered := renderSchema(1536)
	assert.Contains(t, rendered, "embedding vector(1536)")
	assert.NotContains(t, rendered, "{{embedding_dim}}")
}
