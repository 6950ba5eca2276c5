package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "breaking-road-closure", Slugify("Breaking: Road Closure!"))
	assert.Equal(t, "cafe-opening", Slugify("  Café   Opening  "))
	assert.Equal(t, "n-a", Slugify("!!!"))
	assert.Equal(t, "n-a", Slugify(""))
}
