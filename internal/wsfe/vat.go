package wsfe

import (
	"github.com/shopspring/decimal"

	money "github.com/rezonia/afip-client/internal/decimal"
	"github.com/rezonia/afip-client/internal/model"
)

// Aggregation is the monetary summary of an item set. All amounts are
// rounded to 2 decimals half-away-from-zero at this boundary; nothing
// is rounded during accumulation.
type Aggregation struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	ByRate   []model.VATEntry
}

// rateBucket accumulates unrounded net and tax per distinct rate.
// Buckets keep first-occurrence order.
type rateBucket struct {
	rate decimal.Decimal
	base decimal.Decimal
	tax  decimal.Decimal
}

// Aggregate computes net/tax/gross totals and groups line items by VAT
// rate. When pricesIncludeVAT, the net unit price is recovered as
// price/(1+rate/100) and the grand total is the raw gross sum, which
// avoids reintroducing rounding error from the recovered net.
// An item without a rate contributes at rate 0.
func Aggregate(items []model.InvoiceItem, pricesIncludeVAT bool) Aggregation {
	var buckets []*rateBucket
	subtotal := money.Zero
	tax := money.Zero
	gross := money.Zero

	for _, item := range items {
		rate := money.Zero
		if item.VATRate != nil {
			rate = *item.VATRate
		}

		lineGross := item.Quantity.Mul(item.UnitPrice)
		gross = gross.Add(lineGross)

		netUnit := item.UnitPrice
		if pricesIncludeVAT {
			netUnit = money.NetFromGross(item.UnitPrice, rate)
		}
		lineNet := item.Quantity.Mul(netUnit)
		lineTax := money.VATAmount(lineNet, rate)

		subtotal = subtotal.Add(lineNet)
		tax = tax.Add(lineTax)

		bucket := findBucket(buckets, rate)
		if bucket == nil {
			bucket = &rateBucket{rate: rate}
			buckets = append(buckets, bucket)
		}
		bucket.base = bucket.base.Add(lineNet)
		bucket.tax = bucket.tax.Add(lineTax)
	}

	total := subtotal.Add(tax)
	if pricesIncludeVAT {
		total = gross
	}

	agg := Aggregation{
		Subtotal: money.Round2(subtotal),
		Tax:      money.Round2(tax),
		Total:    money.Round2(total),
	}
	for _, b := range buckets {
		agg.ByRate = append(agg.ByRate, model.VATEntry{
			Rate:   b.rate,
			Base:   money.Round2(b.base),
			Amount: money.Round2(b.tax),
		})
	}
	return agg
}

func findBucket(buckets []*rateBucket, rate decimal.Decimal) *rateBucket {
	for _, b := range buckets {
		if b.rate.Equal(rate) {
			return b
		}
	}
	return nil
}
