// Package pricing turns the two upstream pricing schemas into one display price.
package pricing

import "tcg-tracker/internal/models"

const (
	VariantNormal  = "normal"
	VariantHolo    = "holofoil"
	VariantReverse = "reverseHolofoil"
)

// Normalize picks the display price for a card. Priority:
// TCGPlayer holofoil market, TCGPlayer normal market, Cardmarket avg-holo,
// Cardmarket avg. Only strictly positive amounts count.
func Normalize(p *models.RawPricing) (models.Price, bool) {
	if p == nil {
		return models.Price{}, false
	}
	if tp := p.TCGPlayer; tp != nil {
		for _, variant := range []string{VariantHolo, VariantNormal} {
			if v, ok := tp.Variants[variant]; ok && positive(v.Market) {
				return models.Price{Amount: *v.Market, Currency: models.USD}, true
			}
		}
	}
	if cm := p.Cardmarket; cm != nil {
		for _, amount := range []*float64{cm.AvgHolo, cm.Avg} {
			if positive(amount) {
				return models.Price{Amount: *amount, Currency: models.EUR}, true
			}
		}
	}
	return models.Price{}, false
}

// Details returns the full breakdown of one schema for the given print
// variant. TCGPlayer is preferred, falling back to its normal variant; when
// TCGPlayer has neither, Cardmarket is used with holo fields for holofoil.
// An empty variant selects whatever Normalize would have used.
func Details(p *models.RawPricing, variant string) (*models.PriceDetails, bool) {
	if p == nil {
		return nil, false
	}
	if variant == "" {
		variant = defaultVariant(p)
	}

	if tp := p.TCGPlayer; tp != nil {
		v, ok := tp.Variants[variant]
		if !ok {
			v, ok = tp.Variants[VariantNormal]
		}
		if ok {
			return &models.PriceDetails{
				Currency: models.USD,
				Market:   v.Market,
				Low:      v.Low,
				High:     v.High,
				Mid:      v.Mid,
				Direct:   v.DirectLow,
				Updated:  tp.Updated,
			}, true
		}
	}

	if cm := p.Cardmarket; cm != nil {
		d := &models.PriceDetails{Currency: models.EUR, Updated: cm.Updated}
		if variant == VariantHolo {
			d.Market, d.Low, d.Trend, d.Avg7, d.Avg30 = cm.AvgHolo, cm.LowHolo, cm.TrendHolo, cm.Avg7Holo, cm.Avg30Holo
		} else {
			d.Market, d.Low, d.Trend, d.Avg7, d.Avg30 = cm.Avg, cm.Low, cm.Trend, cm.Avg7, cm.Avg30
		}
		return d, true
	}
	return nil, false
}

func defaultVariant(p *models.RawPricing) string {
	if p.TCGPlayer != nil {
		if v, ok := p.TCGPlayer.Variants[VariantHolo]; ok && positive(v.Market) {
			return VariantHolo
		}
		return VariantNormal
	}
	if p.Cardmarket != nil && positive(p.Cardmarket.AvgHolo) {
		return VariantHolo
	}
	return VariantNormal
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}
