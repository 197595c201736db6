package scenario

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/homeopt/core/model"
)

// ErrInvalidRate is returned when a tariff token is not a decimal number.
var ErrInvalidRate = errors.New("invalid tariff rate")

func isRateSeparator(r rune) bool {
	switch r {
	case ',', ';', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// ParseRates reads exactly 24 rates separated by commas, semicolons,
// whitespace or newlines. Decimals use a dot.
func ParseRates(text string) ([]float64, error) {
	tokens := strings.FieldsFunc(text, isRateSeparator)
	if len(tokens) != model.HoursPerDay {
		return nil, fmt.Errorf("%w: got %d values", model.ErrTariffLength, len(tokens))
	}
	rates := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w at position %d: %q", ErrInvalidRate, i, tok)
		}
		rates[i] = v
	}
	return rates, nil
}

// FormatRates renders rates as a comma separated list with at most three
// decimals, the inverse of ParseRates.
func FormatRates(rates []float64) string {
	parts := make([]string, len(rates))
	for i, r := range rates {
		parts[i] = strconv.FormatFloat(math.RoundToEven(r*1000)/1000, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}
