package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/gridrisk/pkg/constants"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want constants.Direction
	}{
		{"BIDIRECTIONAL", constants.DirectionBidirectional},
		{" bidirectional ", constants.DirectionBidirectional},
		{"Bi-Directional", constants.DirectionBidirectional},
		{"bi_directional", constants.DirectionBidirectional},
		{"from", constants.DirectionFrom},
		{"To", constants.DirectionTo},
		{"", constants.DirectionTo},
		{"  ", constants.DirectionTo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDirection(tt.in))
		})
	}
}

func TestRelationshipFact_IsBidirectional(t *testing.T) {
	assert.True(t, RelationshipFact{Direction: ParseDirection("Bidirectional")}.IsBidirectional())
	assert.False(t, RelationshipFact{Direction: constants.DirectionTo}.IsBidirectional())
}
