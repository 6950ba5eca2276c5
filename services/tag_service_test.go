package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"traffic", "road work"},
		NormalizeTags([]string{"traffic, road work"}))

	assert.Equal(t, []string{"traffic", "roads"},
		NormalizeTags([]string{" traffic ", "", "roads"}))

	assert.Equal(t, []string{"solo"}, NormalizeTags([]string{"solo"}))
	assert.Empty(t, NormalizeTags(nil))
	assert.Empty(t, NormalizeTags([]string{" , , "}))
}
