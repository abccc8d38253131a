package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeWithInverseIncludesEquals(t *testing.T) {
	for r := range baseRelations {
		got := Compose(r, Inverse(r))
		assert.Contains(t, got, Equals, "compose(%s, inverse(%s)) should include equals", r, r)
	}
}

func TestComposeEqualsIsIdentity(t *testing.T) {
	for r := range baseRelations {
		got := Compose(Equals, r)
		assert.ElementsMatch(t, []Relation{r}, got)
	}
}

func TestComposeDerivedFromInverses(t *testing.T) {
	// after is the inverse of before; composing with it should mirror the
	// before table through double inversion.
	got := Compose(After, After)
	assert.NotEmpty(t, got)
	for _, r := range got {
		assert.Equal(t, After, r)
	}
}

func TestRelateScenarioFromSpecTemporalTransitivity(t *testing.T) {
	// A=[10,20], B=[30,40], C=[40,50]
	ab := Relate(10, 20, 30, 40)
	assert.Equal(t, Before, ab)

	bc := Relate(30, 40, 40, 50)
	assert.Equal(t, Meets, bc)

	composed := Compose(ab, bc)
	assert.Contains(t, composed, Before)
}
