// Package assembler computes purchase-order financials. Pure computation:
// no state, no I/O. All amounts are whole rupees.
package assembler

import (
	"math"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/apperr"
)

// Item is one priced line fed into Assemble.
type Item struct {
	Name      string
	Make      string
	Quantity  int64
	UnitPrice int64
}

// Totals is the computed financial block of a purchase order.
type Totals struct {
	Subtotal      int64
	GSTAmount     int64
	GrandTotal    int64
	AmountInWords string
}

// Assemble computes subtotal, GST and grand total for the given items.
// GST is rounded half-up to the nearest rupee.
func Assemble(items []Item, gstPercent float64) (*Totals, error) {
	if gstPercent < 0 || gstPercent > 100 {
		return nil, apperr.Validationf("gst percent %v out of range", gstPercent)
	}

	var subtotal int64
	for i, item := range items {
		if item.Quantity < 0 {
			return nil, apperr.Validationf("item %d: negative quantity %d", i, item.Quantity)
		}
		if item.UnitPrice < 0 {
			return nil, apperr.Validationf("item %d: negative unit price %d", i, item.UnitPrice)
		}
		subtotal += item.Quantity * item.UnitPrice
	}

	gst := roundHalfUp(float64(subtotal) * gstPercent / 100)
	grand := subtotal + gst

	return &Totals{
		Subtotal:      subtotal,
		GSTAmount:     gst,
		GrandTotal:    grand,
		AmountInWords: AmountInWords(grand),
	}, nil
}

func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
