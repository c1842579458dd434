package pricing

import (
	"math"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"
)

// Tek fiyat hesabı: liste fiyatı -> iskonto -> kâr -> KDV -> kur.
// Aynı hesap hem katalog ekranlarında hem satış anında kullanılır;
// bu paket dışında fiyat aritmetiği yazılmaz.

// CurrencyRates - Ayarlardan okunan manuel kurlar. 0 = kur girilmemiş.
type CurrencyRates struct {
	USDToTRY float64
	EURToTRY float64
}

// Rate - Para birimine göre TRY kuru. TRY için 1 döner.
func (r CurrencyRates) Rate(cur models.Currency) float64 {
	switch cur {
	case models.CurrencyUSD:
		return r.USDToTRY
	case models.CurrencyEUR:
		return r.EURToTRY
	default:
		return 1
	}
}

type Input struct {
	ListPrice       float64
	DiscountPercent float64
	KDVPercent      float64
	ProfitPercent   float64
	Currency        models.Currency
}

type Breakdown struct {
	BuyPrice       float64 // Liste fiyatı - iskonto (alış fiyatı)
	ProfitAmount   float64
	PriceBeforeVAT float64
	VATAmount      float64
	SalePrice      float64 // Orijinal para biriminde KDV dahil satış fiyatı
	ExchangeRate   float64
	SalePriceTRY   float64 // Kur çarpılmış TRY karşılığı (RateMissing ise 0)

	// Döviz ürününde kur girilmemişse true: TRY karşılığı "hesaplanamıyor"
	// olarak gösterilmeli, 0 TL olarak değil.
	RateMissing bool
}

// Calculate - Sabit sıralı fiyat hesabı. Ara adımlarda yuvarlama yapılmaz,
// yuvarlama yalnızca satır/fiş toplamlarında (Round2) uygulanır.
// Geçersiz girdiler (negatif, NaN) 0 kabul edilir, hata üretmez.
func Calculate(in Input, rates CurrencyRates) Breakdown {
	listPrice := sanitize(in.ListPrice)
	discount := sanitize(in.DiscountPercent)
	kdv := sanitize(in.KDVPercent)
	profit := sanitize(in.ProfitPercent)

	buyPrice := listPrice * (1 - discount/100)
	profitAmount := buyPrice * (profit / 100)
	priceBeforeVAT := buyPrice + profitAmount
	vatAmount := priceBeforeVAT * (kdv / 100)
	salePrice := priceBeforeVAT + vatAmount

	b := Breakdown{
		BuyPrice:       buyPrice,
		ProfitAmount:   profitAmount,
		PriceBeforeVAT: priceBeforeVAT,
		VATAmount:      vatAmount,
		SalePrice:      salePrice,
	}

	if in.Currency == models.CurrencyTRY || in.Currency == "" {
		b.ExchangeRate = 1
		b.SalePriceTRY = salePrice
		return b
	}

	rate := sanitize(rates.Rate(in.Currency))
	b.ExchangeRate = rate
	if rate == 0 {
		b.RateMissing = true
		return b
	}
	b.SalePriceTRY = salePrice * rate
	return b
}

// ForProduct - Üründen fiyat girdisi üretir. priceMode 2 ve ürün Fiyat 2
// tanımlıysa ikinci liste fiyatı/iskonto kullanılır.
func ForProduct(p *models.Product, priceMode int) Input {
	in := Input{
		ListPrice:       p.ListPrice,
		DiscountPercent: p.DiscountPercent,
		KDVPercent:      p.KDVPercent,
		ProfitPercent:   p.ProfitPercent,
		Currency:        p.Currency,
	}
	if priceMode == 2 && p.HasPrice2 {
		in.ListPrice = p.ListPrice2
		in.DiscountPercent = p.DiscountPercent2
	}
	return in
}

// ForVariation - Varyasyon için fiyat girdisi. Özel fiyatı olmayan varyasyon
// kendi fiyatına sahip değildir; ürün fiyatına düşülür ve ikinci dönüş
// değeri false olur. KDV ve kâr yüzdesi her durumda üründen gelir,
// varyasyon bunları asla ezemez.
func ForVariation(p *models.Product, v *models.ProductVariation, priceMode int) (Input, bool) {
	if v == nil || !v.HasCustomPrice {
		return ForProduct(p, priceMode), false
	}

	in := Input{
		ListPrice:       v.ListPrice,
		DiscountPercent: v.DiscountPercent,
		KDVPercent:      p.KDVPercent,
		ProfitPercent:   p.ProfitPercent,
		Currency:        p.Currency,
	}
	if priceMode == 2 && p.HasPrice2 {
		in.ListPrice = v.ListPrice2
		in.DiscountPercent = v.DiscountPercent2
	}
	return in, true
}

// Round2 - Kuruşa yuvarlama. Yalnızca satır ve fiş toplamlarında kullanılır.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}
