package vehicle

import (
	"fmt"
	"strings"
	"time"
)

// View is the API shape of a vehicle: the model plus derived display
// fields the storefront renders directly.
type View struct {
	Vehicle
	FormattedPrice string `json:"formattedPrice"`
	Age            int    `json:"age"`
}

func present(v *Vehicle) View {
	return View{
		Vehicle:        *v,
		FormattedPrice: FormatPrice(v.Price),
		Age:            Age(v.Year, time.Now()),
	}
}

func presentAll(vehicles []Vehicle) []View {
	out := make([]View, 0, len(vehicles))
	for i := range vehicles {
		out = append(out, present(&vehicles[i]))
	}
	return out
}

// FormatPrice renders an amount in Brazilian real notation, e.g.
// 85000 -> "R$ 85.000,00". Thousands use dots, cents use a comma.
func FormatPrice(amount float64) string {
	cents := int64(amount*100 + 0.5)
	if amount < 0 {
		cents = -int64(-amount*100 + 0.5)
	}

	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return fmt.Sprintf("%sR$ %s,%02d", sign, strings.Join(groups, "."), frac)
}

// Age is how many model years old the vehicle is, never negative
// (next-year models count as zero).
func Age(year int, now time.Time) int {
	age := now.Year() - year
	if age < 0 {
		return 0
	}
	return age
}
