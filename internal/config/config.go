// Package config provides the kernel's configuration (spec §6 "Configuration
// options"). Values are loaded from defaults then overridden by environment
// variables, mirroring the teacher's internal/config package — there is no
// flag/CLI binding here since the terminal UI is out of scope (spec §1).
package config

import (
	"os"
	"strconv"
)

// Config holds every tunable named in spec §6.
type Config struct {
	Decay                    float64 `json:"decay"`
	BudgetDecay              float64 `json:"budget_decay"`
	InferenceThreshold       float64 `json:"inference_threshold"`
	MaxPathLength            int     `json:"max_path_length"`
	BeliefCapacity           int     `json:"belief_capacity"`
	TemporalHorizon          int     `json:"temporal_horizon"`
	BudgetThreshold          float64 `json:"budget_threshold"`
	MaxDerivationDepth       int     `json:"max_derivation_depth"`
	ExpressionTimeoutMS      int     `json:"expression_timeout_ms"`
	DerivationCacheSize      int     `json:"derivation_cache_size"`
	QuestionTimeoutMS        int     `json:"question_timeout_ms"`
	MemoryMaintenanceInterval int    `json:"memory_maintenance_interval"`
	ContradictionThreshold   float64 `json:"contradiction_threshold"`
	ForgettingThreshold      float64 `json:"forgetting_threshold"`
	MinConceptsForForgetting int     `json:"min_concepts_for_forgetting"`
	LogLevel                 string  `json:"log_level"`

	// QuestionResolutionInterval and memory sampling knobs are named in
	// other sections of spec §4 but not enumerated in §6's config table;
	// kept here alongside it since they are tuned the same way.
	QuestionResolutionInterval int `json:"question_resolution_interval"`
	ForgettingCheckSampleSize  int `json:"forgetting_check_sample_size"`
}

// Default returns the configuration with every spec-mandated default value.
func Default() *Config {
	return &Config{
		Decay:                      0.1,
		BudgetDecay:                0.8,
		InferenceThreshold:         0.3,
		MaxPathLength:              15,
		BeliefCapacity:             8,
		TemporalHorizon:            3,
		BudgetThreshold:            0.05,
		MaxDerivationDepth:         5,
		ExpressionTimeoutMS:        500,
		DerivationCacheSize:        1000,
		QuestionTimeoutMS:          3000,
		MemoryMaintenanceInterval:  100,
		ContradictionThreshold:     0.7,
		ForgettingThreshold:        0.1,
		MinConceptsForForgetting:   1000,
		LogLevel:                   "info",
		QuestionResolutionInterval: 10,
		ForgettingCheckSampleSize:  200,
	}
}

// FromEnv starts from Default() and overrides any field whose environment
// variable (prefixed NARS_) is set, the way the teacher's
// storage.NewStorageFromEnv layers env vars over defaults.
func FromEnv() *Config {
	c := Default()
	envFloat("NARS_DECAY", &c.Decay)
	envFloat("NARS_BUDGET_DECAY", &c.BudgetDecay)
	envFloat("NARS_INFERENCE_THRESHOLD", &c.InferenceThreshold)
	envInt("NARS_MAX_PATH_LENGTH", &c.MaxPathLength)
	envInt("NARS_BELIEF_CAPACITY", &c.BeliefCapacity)
	envInt("NARS_TEMPORAL_HORIZON", &c.TemporalHorizon)
	envFloat("NARS_BUDGET_THRESHOLD", &c.BudgetThreshold)
	envInt("NARS_MAX_DERIVATION_DEPTH", &c.MaxDerivationDepth)
	envInt("NARS_EXPRESSION_TIMEOUT_MS", &c.ExpressionTimeoutMS)
	envInt("NARS_DERIVATION_CACHE_SIZE", &c.DerivationCacheSize)
	envInt("NARS_QUESTION_TIMEOUT_MS", &c.QuestionTimeoutMS)
	envInt("NARS_MEMORY_MAINTENANCE_INTERVAL", &c.MemoryMaintenanceInterval)
	envFloat("NARS_CONTRADICTION_THRESHOLD", &c.ContradictionThreshold)
	envFloat("NARS_FORGETTING_THRESHOLD", &c.ForgettingThreshold)
	envInt("NARS_MIN_CONCEPTS_FOR_FORGETTING", &c.MinConceptsForForgetting)
	if v := os.Getenv("NARS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return c
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
