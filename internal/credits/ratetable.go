// Package credits estimates warehouse credit consumption for a list of workloads.
package credits

import "fmt"

type Size string

const (
	SizeXSmall  Size = "X-Small"
	SizeSmall   Size = "Small"
	SizeMedium  Size = "Medium"
	SizeLarge   Size = "Large"
	SizeXLarge  Size = "X-Large"
	Size2XLarge Size = "2X-Large"
	Size3XLarge Size = "3X-Large"
	Size4XLarge Size = "4X-Large"
	Size5XLarge Size = "5X-Large"
	Size6XLarge Size = "6X-Large"
)

const (
	// Average weeks in a month
	WeeksPerMonth = 52.0 / 12.0
	MonthsPerYear = 12
)

// Smallest to largest. Each tier doubles the previous rate.
var sizes = []Size{
	SizeXSmall,
	SizeSmall,
	SizeMedium,
	SizeLarge,
	SizeXLarge,
	Size2XLarge,
	Size3XLarge,
	Size4XLarge,
	Size5XLarge,
	Size6XLarge,
}

var creditsPerHour = map[Size]float64{
	SizeXSmall:  1,
	SizeSmall:   2,
	SizeMedium:  4,
	SizeLarge:   8,
	SizeXLarge:  16,
	Size2XLarge: 32,
	Size3XLarge: 64,
	Size4XLarge: 128,
	Size5XLarge: 256,
	Size6XLarge: 512,
}

// Rate is one row of the rate table.
type Rate struct {
	Size           Size    `json:"size"`
	CreditsPerHour float64 `json:"credits_per_hour"`
}

// Sizes returns the tier labels in ascending order.
func Sizes() []Size {
	out := make([]Size, len(sizes))
	copy(out, sizes)
	return out
}

// RateTable returns the ordered rate table.
func RateTable() []Rate {
	rates := make([]Rate, 0, len(sizes))
	for _, s := range sizes {
		rates = append(rates, Rate{Size: s, CreditsPerHour: creditsPerHour[s]})
	}
	return rates
}

func CreditsPerHour(size Size) (float64, bool) {
	rate, ok := creditsPerHour[size]
	return rate, ok
}

func (s Size) Valid() bool {
	_, ok := creditsPerHour[s]
	return ok
}

func ParseSize(label string) (Size, error) {
	size := Size(label)
	if !size.Valid() {
		return "", fmt.Errorf("%w: unknown size %q", ErrInvalidValue, label)
	}
	return size, nil
}
