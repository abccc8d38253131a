package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultsMatchSpec(t *testing.T) {
	c := Default()
	assert.Equal(t, 0.1, c.Decay)
	assert.Equal(t, 0.8, c.BudgetDecay)
	assert.Equal(t, 0.3, c.InferenceThreshold)
	assert.Equal(t, 15, c.MaxPathLength)
	assert.Equal(t, 8, c.BeliefCapacity)
	assert.Equal(t, 0.05, c.BudgetThreshold)
	assert.Equal(t, 0.7, c.ContradictionThreshold)
	assert.Equal(t, 1000, c.MinConceptsForForgetting)
}

func TestFromEnvOverridesDefaults(t *testing.T) {
	os.Setenv("NARS_BELIEF_CAPACITY", "12")
	defer os.Unsetenv("NARS_BELIEF_CAPACITY")

	c := FromEnv()
	assert.Equal(t, 12, c.BeliefCapacity)
	assert.Equal(t, 0.1, c.Decay, "unset vars should keep their default")
}
