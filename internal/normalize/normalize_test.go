package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icetimehq/icetime-api/internal/models"
)

func TestExactMapsKnownLabel(t *testing.T) {
	m := TypeMap{"Freestyle": models.TypeStickTime}

	assert.Equal(t, models.TypeStickTime, Exact("Freestyle", m))
	// Deterministic on repeated calls.
	assert.Equal(t, models.TypeStickTime, Exact("Freestyle", m))
}

func TestExactUnknownLabelFallsThroughToOther(t *testing.T) {
	m := TypeMap{"Freestyle": models.TypeStickTime}

	assert.Equal(t, models.TypeOther, Exact("Zamboni Break", m))
	assert.Equal(t, models.TypeOther, Exact("", m))
}

func TestExactIsCaseSensitive(t *testing.T) {
	m := TypeMap{"Public Skate": models.TypeOpenSkate}

	assert.Equal(t, models.TypeOther, Exact("public skate", m))
	assert.Equal(t, models.TypeOther, Exact(" Public Skate", m))
}

func TestContainsMatchesDecoratedTitles(t *testing.T) {
	m := TypeMap{
		"public skate":   models.TypeOpenSkate,
		"stick time":     models.TypeStickTime,
		"open hockey":    models.TypeOpenHockey,
		"learn to skate": models.TypeLearnToSkate,
	}

	assert.Equal(t, models.TypeOpenSkate, Contains("Friday Night Public Skate!", m))
	assert.Equal(t, models.TypeStickTime, Contains("STICK TIME (all ages)", m))
	assert.Equal(t, models.TypeOther, Contains("Birthday Party", m))
}

func TestContainsPrefersMostSpecificLabel(t *testing.T) {
	m := TypeMap{
		"skate":          models.TypeOpenSkate,
		"learn to skate": models.TypeLearnToSkate,
	}

	assert.Equal(t, models.TypeLearnToSkate, Contains("Learn to Skate - Session 2", m))
}

func TestContainsBreaksEqualLengthTiesDeterministically(t *testing.T) {
	m := TypeMap{
		"open hockey": models.TypeOpenHockey,
		"open skatin": models.TypeOpenSkate,
	}

	// Both eleven-character labels match; the lexicographically smaller
	// key must win on every run, whatever order the map iterates in.
	for i := 0; i < 50; i++ {
		assert.Equal(t, models.TypeOpenHockey, Contains("open hockey and open skating", m))
	}
}
