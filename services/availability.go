package services

import "github.com/yeremiapane/bakery-app/models"

// DefaultDisplayBuffer is the number of units kept back for the shop display.
const DefaultDisplayBuffer = 2

// Config carries the tunables injected into the engines.
type Config struct {
	DisplayBuffer int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{DisplayBuffer: DefaultDisplayBuffer}
}

// AvailabilityPolicy derives sellable quantity from raw stock.
type AvailabilityPolicy struct {
	buffer int
}

func NewAvailabilityPolicy(cfg Config) AvailabilityPolicy {
	buffer := cfg.DisplayBuffer
	if buffer < 0 {
		buffer = 0
	}
	return AvailabilityPolicy{buffer: buffer}
}

// AvailableToSell returns max(0, stock - buffer). Inactive goods are never
// sellable. A quote is only advisory: checkout evaluates it again on stock
// read inside its own transaction.
func (p AvailabilityPolicy) AvailableToSell(good models.FinishedGood) int {
	if !good.Active {
		return 0
	}
	available := good.StockOnHand - p.buffer
	if available < 0 {
		return 0
	}
	return available
}

// Buffer returns the configured display buffer.
func (p AvailabilityPolicy) Buffer() int {
	return p.buffer
}
