package pricing

import (
	"math"
	"testing"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTRY(t *testing.T) {
	// Liste 100, iskonto %10, KDV %20, kâr %35
	b := Calculate(Input{
		ListPrice:       100,
		DiscountPercent: 10,
		KDVPercent:      20,
		ProfitPercent:   35,
		Currency:        models.CurrencyTRY,
	}, CurrencyRates{})

	assert.InDelta(t, 90, b.BuyPrice, 1e-9)
	assert.InDelta(t, 31.5, b.ProfitAmount, 1e-9)
	assert.InDelta(t, 121.5, b.PriceBeforeVAT, 1e-9)
	assert.InDelta(t, 24.3, b.VATAmount, 1e-9)
	assert.InDelta(t, 145.8, b.SalePrice, 1e-9)
	assert.InDelta(t, 145.8, b.SalePriceTRY, 1e-9)
	assert.False(t, b.RateMissing)
}

func TestCalculateTRYIgnoresRates(t *testing.T) {
	// TRY üründe kur değeri ne olursa olsun TRY fiyat = satış fiyatı
	b := Calculate(Input{ListPrice: 50, Currency: models.CurrencyTRY},
		CurrencyRates{USDToTRY: 42.5, EURToTRY: 46})
	assert.Equal(t, b.SalePrice, b.SalePriceTRY)
	assert.InDelta(t, 1, b.ExchangeRate, 1e-9)
}

func TestCalculateForeignCurrency(t *testing.T) {
	b := Calculate(Input{
		ListPrice:       200,
		DiscountPercent: 25,
		KDVPercent:      10,
		Currency:        models.CurrencyUSD,
	}, CurrencyRates{USDToTRY: 40})

	assert.InDelta(t, 150, b.BuyPrice, 1e-9)
	assert.InDelta(t, 165, b.SalePrice, 1e-9)
	assert.InDelta(t, 6600, b.SalePriceTRY, 1e-9)
	assert.False(t, b.RateMissing)
}

func TestCalculateMissingRate(t *testing.T) {
	// Kur 0 = kur girilmemiş. TRY karşılığı 0 TL olarak raporlanmaz,
	// RateMissing ile işaretlenir.
	b := Calculate(Input{ListPrice: 100, Currency: models.CurrencyEUR}, CurrencyRates{})
	assert.True(t, b.RateMissing)
	assert.InDelta(t, 100, b.SalePrice, 1e-9)
	assert.Zero(t, b.SalePriceTRY)
}

func TestCalculatePermissiveInputs(t *testing.T) {
	// Negatif ve NaN girdiler 0 kabul edilir, hesap hata üretmez
	b := Calculate(Input{
		ListPrice:       -5,
		DiscountPercent: math.NaN(),
		KDVPercent:      -1,
		ProfitPercent:   math.Inf(1),
		Currency:        models.CurrencyTRY,
	}, CurrencyRates{})
	assert.Zero(t, b.BuyPrice)
	assert.Zero(t, b.SalePrice)
}

func TestCalculateLayerOrdering(t *testing.T) {
	// Alış fiyatı liste fiyatını aşamaz; kâr ve KDV eklenen katmanlar
	// olduğundan satış fiyatı alış fiyatının altına inemez
	cases := []Input{
		{ListPrice: 0, Currency: models.CurrencyTRY},
		{ListPrice: 99.99, DiscountPercent: 100, KDVPercent: 20, ProfitPercent: 35, Currency: models.CurrencyTRY},
		{ListPrice: 1234.56, DiscountPercent: 12.5, KDVPercent: 10, ProfitPercent: 0, Currency: models.CurrencyTRY},
		{ListPrice: 7, DiscountPercent: 0, KDVPercent: 0, ProfitPercent: 250, Currency: models.CurrencyTRY},
	}
	for _, in := range cases {
		b := Calculate(in, CurrencyRates{})
		assert.LessOrEqual(t, b.BuyPrice, in.ListPrice)
		assert.GreaterOrEqual(t, b.SalePrice, b.BuyPrice)
	}
}

func TestForVariationCustomPrice(t *testing.T) {
	p := &models.Product{
		ListPrice:       100,
		DiscountPercent: 10,
		KDVPercent:      20,
		ProfitPercent:   35,
		Currency:        models.CurrencyTRY,
		HasPrice2:       true,
		ListPrice2:      80,
		DiscountPercent2: 5,
	}
	v := &models.ProductVariation{
		HasCustomPrice:   true,
		ListPrice:        120,
		DiscountPercent:  15,
		ListPrice2:       95,
		DiscountPercent2: 8,
	}

	in, custom := ForVariation(p, v, 1)
	require.True(t, custom)
	assert.InDelta(t, 120, in.ListPrice, 1e-9)
	assert.InDelta(t, 15, in.DiscountPercent, 1e-9)
	// KDV ve kâr her zaman üründen
	assert.InDelta(t, 20, in.KDVPercent, 1e-9)
	assert.InDelta(t, 35, in.ProfitPercent, 1e-9)

	in2, custom := ForVariation(p, v, 2)
	require.True(t, custom)
	assert.InDelta(t, 95, in2.ListPrice, 1e-9)
	assert.InDelta(t, 8, in2.DiscountPercent, 1e-9)
}

func TestForVariationFallback(t *testing.T) {
	p := &models.Product{ListPrice: 100, KDVPercent: 10, Currency: models.CurrencyTRY}
	v := &models.ProductVariation{HasCustomPrice: false, ListPrice: 999}

	in, custom := ForVariation(p, v, 1)
	assert.False(t, custom)
	assert.InDelta(t, 100, in.ListPrice, 1e-9) // Ürün fiyatına düşer

	in, custom = ForVariation(p, nil, 1)
	assert.False(t, custom)
	assert.InDelta(t, 100, in.ListPrice, 1e-9)
}

func TestForProductPrice2Toggle(t *testing.T) {
	p := &models.Product{ListPrice: 100, ListPrice2: 70, Currency: models.CurrencyTRY}

	// HasPrice2 kapalıysa mode 2 istense bile Fiyat 1 kullanılır
	in := ForProduct(p, 2)
	assert.InDelta(t, 100, in.ListPrice, 1e-9)

	p.HasPrice2 = true
	in = ForProduct(p, 2)
	assert.InDelta(t, 70, in.ListPrice, 1e-9)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 10.56, Round2(10.556), 1e-9)
	assert.InDelta(t, 10.55, Round2(10.554), 1e-9)
	assert.InDelta(t, 0, Round2(0.004), 1e-9)
	assert.InDelta(t, -2.5, Round2(-2.499), 1e-9)
}
