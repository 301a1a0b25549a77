package reward

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

const amountFormat = "#,###.##"

// Amount is a base reward scaled by a multiplier of at least 1.
type Amount struct {
	Base       float64
	Multiplier float64
}

// NewAmount builds an Amount, raising invalid multipliers to 1.
func NewAmount(base, multiplier float64) Amount {
	return Amount{Base: base, Multiplier: normalizeMultiplier(multiplier)}
}

func normalizeMultiplier(m float64) float64 {
	if math.IsNaN(m) || m < 1 {
		return 1
	}
	return m
}

// Value returns base * multiplier.
func (a Amount) Value() float64 {
	return a.Base * normalizeMultiplier(a.Multiplier)
}

// Factor returns the effective multiplier.
func (a Amount) Factor() float64 {
	return normalizeMultiplier(a.Multiplier)
}

// Bonus reports whether the multiplier adds to the base amount.
func (a Amount) Bonus() bool {
	return normalizeMultiplier(a.Multiplier) > 1
}

// Display renders the value with two decimals.
func (a Amount) Display() string {
	return FormatAmount(a.Value())
}

// BonusLabel returns the bonus marker, or "" without a bonus.
func (a Amount) BonusLabel() string {
	if !a.Bonus() {
		return ""
	}
	return "BONUS x" + strconv.FormatFloat(normalizeMultiplier(a.Multiplier), 'f', -1, 64)
}

// Label renders the amount followed by the bonus marker when present.
func (a Amount) Label() string {
	if label := a.BonusLabel(); label != "" {
		return fmt.Sprintf("%s (%s)", a.Display(), label)
	}
	return a.Display()
}

// FormatAmount formats v with thousands separators and two decimals.
func FormatAmount(v float64) string {
	return humanize.FormatFloat(amountFormat, v)
}
