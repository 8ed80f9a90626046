// README: Pricing suggestion tests.
package pricing

import (
	"testing"

	"fleetline/internal/config"
	"fleetline/internal/types"
)

func TestSuggestDriverPrice(t *testing.T) {
	cases := []struct {
		name       string
		commission int
		currency   string
		in         types.Money
		want       types.Money
	}{
		{
			name:       "standard commission",
			commission: 15,
			currency:   "ILS",
			in:         types.Money{Amount: 10000, Currency: "ILS"},
			want:       types.Money{Amount: 8500, Currency: "ILS"},
		},
		{
			name:       "company currency wins",
			commission: 15,
			currency:   "ILS",
			in:         types.Money{Amount: 10000, Currency: "USD"},
			want:       types.Money{Amount: 8500, Currency: "USD"},
		},
		{
			name:       "default currency fills a blank",
			commission: 10,
			currency:   "ILS",
			in:         types.Money{Amount: 1000},
			want:       types.Money{Amount: 900, Currency: "ILS"},
		},
		{
			name:       "zero commission passes through",
			commission: 0,
			currency:   "ILS",
			in:         types.Money{Amount: 777, Currency: "ILS"},
			want:       types.Money{Amount: 777, Currency: "ILS"},
		},
		{
			name:       "commission above 100 clamps to zero payout",
			commission: 150,
			currency:   "ILS",
			in:         types.Money{Amount: 1000, Currency: "ILS"},
			want:       types.Money{Amount: 0, Currency: "ILS"},
		},
		{
			name:       "negative commission clamps to passthrough",
			commission: -5,
			currency:   "ILS",
			in:         types.Money{Amount: 1000, Currency: "ILS"},
			want:       types.Money{Amount: 1000, Currency: "ILS"},
		},
	}
	for _, tc := range cases {
		svc := NewService(config.PricingConfig{CommissionPercent: tc.commission, Currency: tc.currency})
		got := svc.SuggestDriverPrice(tc.in)
		if got != tc.want {
			t.Errorf("%s: SuggestDriverPrice(%+v) = %+v, want %+v", tc.name, tc.in, got, tc.want)
		}
	}
}
