package expiry

import (
	"sort"

	"validity-service/internal/models"
)

// CompareBatches сравнивает партии по сроку годности, приведённому к концу дня.
// Партии с одинаковой календарной датой равны.
func CompareBatches(a, b models.Batch) int {
	return compareTimes(endOfDay(a.ExpirationDate), endOfDay(b.ExpirationDate))
}

// SortBatchesByExpiration возвращает партии, упорядоченные от самой ранней даты к поздней.
// Сортировка стабильная, исходный срез не изменяется.
func SortBatchesByExpiration(batches []models.Batch) ([]models.Batch, error) {
	for _, b := range batches {
		if b.ExpirationDate.IsZero() {
			return nil, newValidationError(InvalidDate, "batch %q has no expiration date", b.ID)
		}
	}

	sorted := make([]models.Batch, len(batches))
	copy(sorted, batches)
	if len(sorted) < 2 {
		return sorted, nil
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return CompareBatches(sorted[i], sorted[j]) < 0
	})

	return sorted, nil
}

// RemoveCheckedBatches оставляет только необработанные партии в исходном порядке
func RemoveCheckedBatches(batches []models.Batch) []models.Batch {
	filtered := make([]models.Batch, 0, len(batches))
	for _, b := range batches {
		if b.Status == models.BatchUnchecked {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

// CompareProducts реализует порядок срочности товаров по их первой партии.
// Правила проверяются строго в этом порядке:
//  1. товар с партиями раньше товара без партий;
//  2. товары без партий равны;
//  3. необработанная партия раньше обработанной;
//  4. при одинаковом статусе раньше идёт более ранняя дата (начало дня).
func CompareProducts(a, b models.Product) int {
	switch {
	case len(a.Batches) > 0 && len(b.Batches) == 0:
		return -1
	case len(a.Batches) == 0 && len(b.Batches) == 0:
		return 0
	case len(a.Batches) == 0:
		return 1
	}

	first, second := a.Batches[0], b.Batches[0]
	switch {
	case first.Status == models.BatchUnchecked && second.Status == models.BatchChecked:
		return -1
	case first.Status == models.BatchChecked && second.Status == models.BatchChecked:
		return compareTimes(startOfDay(first.ExpirationDate), startOfDay(second.ExpirationDate))
	case first.Status == models.BatchChecked && second.Status == models.BatchUnchecked:
		return 1
	default:
		return compareTimes(startOfDay(first.ExpirationDate), startOfDay(second.ExpirationDate))
	}
}

// SortProductsByUrgency упорядочивает товары по самой срочной партии.
// Партии внутри товаров должны быть отсортированы заранее, здесь они не пересортировываются.
func SortProductsByUrgency(products []models.Product) ([]models.Product, error) {
	for _, p := range products {
		if len(p.Batches) == 0 {
			continue
		}
		first := p.Batches[0]
		if !first.Status.Valid() {
			return nil, newValidationError(InvalidInput, "product %q: batch %q has unknown status %q", p.ID, first.ID, first.Status)
		}
		if first.ExpirationDate.IsZero() {
			return nil, newValidationError(InvalidDate, "product %q: batch %q has no expiration date", p.ID, first.ID)
		}
	}

	sorted := make([]models.Product, len(products))
	copy(sorted, products)

	sort.SliceStable(sorted, func(i, j int) bool {
		return CompareProducts(sorted[i], sorted[j]) < 0
	})

	return sorted, nil
}

// OrderInventory сортирует партии каждого товара (при необходимости убирая обработанные),
// а затем сортирует сами товары по срочности
func OrderInventory(products []models.Product, removeChecked bool) ([]models.Product, error) {
	prepared := make([]models.Product, 0, len(products))
	for _, p := range products {
		batches, err := SortBatchesByExpiration(p.Batches)
		if err != nil {
			return nil, err
		}
		if removeChecked {
			batches = RemoveCheckedBatches(batches)
		}
		p.Batches = batches
		prepared = append(prepared, p)
	}

	return SortProductsByUrgency(prepared)
}
