package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/bakery-app/models"
)

func TestAvailableToSell(t *testing.T) {
	policy := NewAvailabilityPolicy(Config{DisplayBuffer: 2})

	cases := []struct {
		name   string
		stock  int
		active bool
		want   int
	}{
		{"above buffer", 5, true, 3},
		{"at buffer", 2, true, 0},
		{"below buffer", 1, true, 0},
		{"empty", 0, true, 0},
		{"inactive", 50, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.AvailableToSell(models.FinishedGood{StockOnHand: tc.stock, Active: tc.active})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAvailabilityPolicyBuffer(t *testing.T) {
	assert.Equal(t, DefaultDisplayBuffer, NewAvailabilityPolicy(DefaultConfig()).Buffer())
	assert.Equal(t, 0, NewAvailabilityPolicy(Config{DisplayBuffer: -3}).Buffer())

	noBuffer := NewAvailabilityPolicy(Config{})
	assert.Equal(t, 4, noBuffer.AvailableToSell(models.FinishedGood{StockOnHand: 4, Active: true}))
}
