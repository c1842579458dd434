package b2b

import "github.com/berkaydagdeviren/2bhub-sub000/internal/models"

// DeriveStatus - Sipariş durumunu satırlardan türetir. Swap satırları
// (iade karşılığı verilen değişim ürünleri) taramaya girmez: sipariş,
// swap olmayan tüm satırlar tamamen iade edildiğinde "returned" olur.
// Durum hiçbir yerde elle set edilmez; her mutasyondan sonra aynı
// transaction içinde bu fonksiyonla hesaplanıp yazılır.
func DeriveStatus(items []models.B2BSaleItem) models.B2BSaleStatus {
	anyReturned := false
	allReturned := true
	counted := 0

	for i := range items {
		if items[i].IsSwap {
			continue
		}
		counted++
		if items[i].ReturnedQuantity > 0 {
			anyReturned = true
		}
		if items[i].ReturnedQuantity < items[i].Quantity {
			allReturned = false
		}
	}

	if counted == 0 {
		return models.B2BStatusActive
	}

	switch {
	case allReturned:
		return models.B2BStatusReturned
	case anyReturned:
		return models.B2BStatusPartiallyReturned
	default:
		return models.B2BStatusActive
	}
}
