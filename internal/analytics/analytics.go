// Package analytics derives dashboard series from fetched product and
// transaction pages. All functions are pure.
package analytics

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// Unknown labels records with an empty grouping key.
const Unknown = "Unknown"

// Bucket is one labelled value of a chart series.
type Bucket struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// StatusTotal aggregates transactions that share a status.
type StatusTotal struct {
	Status domain.TransactionStatus `json:"status"`
	Count  int                      `json:"count"`
	Amount float64                  `json:"amount"`
}

// ProductsByBrand counts products per brand, largest first.
func ProductsByBrand(products []domain.Product) []Bucket {
	return group(products, func(p domain.Product) string { return p.BrandName },
		func(domain.Product) float64 { return 1 })
}

// RevenueByCategory sums price*sold per category, largest first.
func RevenueByCategory(products []domain.Product) []Bucket {
	return group(products, func(p domain.Product) string { return p.Category },
		func(p domain.Product) float64 { return p.Price * float64(p.Sold) })
}

// MonthlySales sums units sold per creation month ("2006-01"), oldest first.
// Products without a creation time are skipped.
func MonthlySales(products []domain.Product) []Bucket {
	sums := make(map[string]float64)
	for _, p := range products {
		if p.CreatedAt.IsZero() {
			continue
		}
		sums[p.CreatedAt.UTC().Format("2006-01")] += float64(p.Sold)
	}
	out := make([]Bucket, 0, len(sums))
	for month, v := range sums {
		out = append(out, Bucket{Label: month, Value: v})
	}
	slices.SortFunc(out, func(a, b Bucket) int { return strings.Compare(a.Label, b.Label) })
	return out
}

// MonthlyRevenue sums approved transaction amounts per month within the
// last months months ending at now, oldest first. Months without revenue are
// present with a zero value.
func MonthlyRevenue(txs []domain.Transaction, now time.Time, months int) []Bucket {
	if months <= 0 {
		return []Bucket{}
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	out := make([]Bucket, months)
	index := make(map[string]int, months)
	for i := range out {
		label := first.AddDate(0, i, 0).Format("2006-01")
		out[i] = Bucket{Label: label}
		index[label] = i
	}
	for _, tx := range txs {
		if tx.Status != domain.TransactionApproved {
			continue
		}
		if i, ok := index[tx.CreatedAt.UTC().Format("2006-01")]; ok {
			out[i].Value += tx.Amount
		}
	}
	return out
}

// TopSellers returns up to n products ordered by units sold, then by name.
func TopSellers(products []domain.Product, n int) []domain.Product {
	if n <= 0 {
		return []domain.Product{}
	}
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, func(a, b domain.Product) int {
		if c := cmp.Compare(b.Sold, a.Sold); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []domain.Product{}
	}
	return sorted
}

// TransactionTotals counts and sums transactions per status, in workflow
// order. Every known status is present.
func TransactionTotals(txs []domain.Transaction) []StatusTotal {
	out := []StatusTotal{
		{Status: domain.TransactionPending},
		{Status: domain.TransactionApproved},
		{Status: domain.TransactionRejected},
	}
	for _, tx := range txs {
		for i := range out {
			if out[i].Status == tx.Status {
				out[i].Count++
				out[i].Amount += tx.Amount
				break
			}
		}
	}
	return out
}

func group(products []domain.Product, key func(domain.Product) string, value func(domain.Product) float64) []Bucket {
	sums := make(map[string]float64)
	for _, p := range products {
		k := strings.TrimSpace(key(p))
		if k == "" {
			k = Unknown
		}
		sums[k] += value(p)
	}
	out := make([]Bucket, 0, len(sums))
	for label, v := range sums {
		out = append(out, Bucket{Label: label, Value: v})
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	return out
}
