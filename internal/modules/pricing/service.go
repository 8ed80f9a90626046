// README: Pricing service suggests driver payouts from the company price.
package pricing

import (
	"fleetline/internal/config"
	"fleetline/internal/types"
)

type Service struct {
	commissionPercent int
	currency          string
}

func NewService(cfg config.PricingConfig) *Service {
	return &Service{
		commissionPercent: cfg.CommissionPercent,
		currency:          cfg.Currency,
	}
}

// SuggestDriverPrice applies the brokerage commission to the company price.
// The suggestion never goes negative and keeps the company's currency when
// one is set.
func (s *Service) SuggestDriverPrice(companyPrice types.Money) types.Money {
	pct := s.commissionPercent
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	amount := companyPrice.Amount - companyPrice.Amount*int64(pct)/100
	if amount < 0 {
		amount = 0
	}
	currency := companyPrice.Currency
	if currency == "" {
		currency = s.currency
	}
	return types.Money{Amount: amount, Currency: currency}
}
