package b2b

import (
	"testing"

	"github.com/berkaydagdeviren/2bhub-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	item := func(qty, returned int) models.B2BSaleItem {
		return models.B2BSaleItem{Quantity: qty, ReturnedQuantity: returned}
	}
	swap := func(qty int) models.B2BSaleItem {
		return models.B2BSaleItem{Quantity: qty, IsSwap: true}
	}

	t.Run("iadesiz sipariş active", func(t *testing.T) {
		items := []models.B2BSaleItem{item(10, 0), item(5, 0)}
		assert.Equal(t, models.B2BStatusActive, DeriveStatus(items))
	})

	t.Run("kısmi iade partially_returned", func(t *testing.T) {
		items := []models.B2BSaleItem{item(10, 4), item(5, 0)}
		assert.Equal(t, models.B2BStatusPartiallyReturned, DeriveStatus(items))
	})

	t.Run("tüm satırlar tam iade returned", func(t *testing.T) {
		items := []models.B2BSaleItem{item(10, 10), item(5, 5)}
		assert.Equal(t, models.B2BStatusReturned, DeriveStatus(items))
	})

	t.Run("swap satırları taramaya girmez", func(t *testing.T) {
		// Tek normal satır tamamen iade edildi, karşılığında swap satırı
		// eklendi: swap satırının iade edilmemiş olması durumu bozmaz
		items := []models.B2BSaleItem{item(10, 10), swap(3)}
		assert.Equal(t, models.B2BStatusReturned, DeriveStatus(items))
	})

	t.Run("sadece swap satırı varsa active", func(t *testing.T) {
		items := []models.B2BSaleItem{swap(3)}
		assert.Equal(t, models.B2BStatusActive, DeriveStatus(items))
	})

	t.Run("boş sipariş active", func(t *testing.T) {
		assert.Equal(t, models.B2BStatusActive, DeriveStatus(nil))
	})
}
