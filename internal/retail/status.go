package retail

import "github.com/berkaydagdeviren/2bhub-sub000/internal/models"

// DeriveStatus - Fiş durumunu satırlardan türetir. Durum hiçbir zaman elle
// set edilmez; her iade mutasyonundan sonra aynı transaction içinde bu
// fonksiyonla yeniden hesaplanıp kaydedilir.
func DeriveStatus(items []models.RetailSaleItem) models.RetailSaleStatus {
	if len(items) == 0 {
		return models.RetailStatusCompleted
	}

	anyReturned := false
	allReturned := true
	for i := range items {
		if items[i].ReturnedQuantity > 0 {
			anyReturned = true
		}
		if items[i].ReturnedQuantity < items[i].Quantity {
			allReturned = false
		}
	}

	switch {
	case allReturned:
		return models.RetailStatusReturned
	case anyReturned:
		return models.RetailStatusPartiallyReturned
	default:
		return models.RetailStatusCompleted
	}
}
