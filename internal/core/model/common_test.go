package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{PhaseMonitor, "Monitor"},
		{PhaseAnalysis, "Analysis"},
		{PhasePlan, "Plan"},
		{PhaseLegitimate, "Legitimate"},
		{PhaseExecute, "Execute"},
		{"aok", "aok"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, PhaseName(tt.code))
		})
	}
}

func TestDefaultColorsCoverDefaultOrder(t *testing.T) {
	for _, key := range DefaultOrder {
		assert.Contains(t, DefaultColors, key)
	}
}
