package catalog

import (
	"strconv"
	"time"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// Column is one table column of a list page.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Descriptor parametrizes the console screen of one entity type.
type Descriptor[T domain.Entity] struct {
	// Name is the URL segment, e.g. "brands".
	Name string
	// Title is shown in navigation and page headings.
	Title string
	// Endpoint is the backend resource path, e.g. "/brands".
	Endpoint string
	// SearchFields returns the values local search matches against.
	SearchFields func(T) []string
	// Image returns the image URL field, or is nil when T has no image.
	Image   func(*T) *string
	Columns []Column[T]
}

func money(v float64) string   { return strconv.FormatFloat(v, 'f', 2, 64) }
func percent(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "%" }
func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Brands describes the brand screen.
func Brands() Descriptor[domain.Brand] {
	return Descriptor[domain.Brand]{
		Name:         "brands",
		Title:        "Brands",
		Endpoint:     "/brands",
		SearchFields: func(b domain.Brand) []string { return []string{b.Name, b.Origin} },
		Image:        func(b *domain.Brand) *string { return &b.ImageURL },
		Columns: []Column[domain.Brand]{
			{Header: "Name", Value: func(b domain.Brand) string { return b.Name }},
			{Header: "Origin", Value: func(b domain.Brand) string { return b.Origin }},
		},
	}
}

// Blogs describes the blog screen.
func Blogs() Descriptor[domain.Blog] {
	return Descriptor[domain.Blog]{
		Name:         "blogs",
		Title:        "Blogs",
		Endpoint:     "/blogs",
		SearchFields: func(b domain.Blog) []string { return []string{b.Title, b.Author} },
		Image:        func(b *domain.Blog) *string { return &b.ImageURL },
		Columns: []Column[domain.Blog]{
			{Header: "Title", Value: func(b domain.Blog) string { return b.Title }},
			{Header: "Author", Value: func(b domain.Blog) string { return b.Author }},
		},
	}
}

// Vouchers describes the voucher screen.
func Vouchers() Descriptor[domain.Voucher] {
	return Descriptor[domain.Voucher]{
		Name:         "vouchers",
		Title:        "Vouchers",
		Endpoint:     "/vouchers",
		SearchFields: func(v domain.Voucher) []string { return []string{v.Code, v.Description} },
		Columns: []Column[domain.Voucher]{
			{Header: "Code", Value: func(v domain.Voucher) string { return v.Code }},
			{Header: "Discount", Value: func(v domain.Voucher) string { return percent(v.DiscountPercent) }},
			{Header: "Quantity", Value: func(v domain.Voucher) string { return strconv.Itoa(v.Quantity) }},
			{Header: "Starts", Value: func(v domain.Voucher) string { return date(v.StartDate) }},
			{Header: "Ends", Value: func(v domain.Voucher) string { return date(v.EndDate) }},
		},
	}
}

// PaymentMethods describes the payment method screen.
func PaymentMethods() Descriptor[domain.PaymentMethod] {
	return Descriptor[domain.PaymentMethod]{
		Name:         "payment-methods",
		Title:        "Payment methods",
		Endpoint:     "/payment-methods",
		SearchFields: func(p domain.PaymentMethod) []string { return []string{p.Name, p.Description} },
		Image:        func(p *domain.PaymentMethod) *string { return &p.ImageURL },
		Columns: []Column[domain.PaymentMethod]{
			{Header: "Name", Value: func(p domain.PaymentMethod) string { return p.Name }},
			{Header: "Enabled", Value: func(p domain.PaymentMethod) string { return strconv.FormatBool(p.Enabled) }},
		},
	}
}

// CancelReasons describes the cancel reason screen.
func CancelReasons() Descriptor[domain.CancelReason] {
	return Descriptor[domain.CancelReason]{
		Name:         "cancel-reasons",
		Title:        "Cancel reasons",
		Endpoint:     "/cancel-reasons",
		SearchFields: func(c domain.CancelReason) []string { return []string{c.Reason} },
		Columns: []Column[domain.CancelReason]{
			{Header: "Reason", Value: func(c domain.CancelReason) string { return c.Reason }},
			{Header: "Refund", Value: func(c domain.CancelReason) string { return percent(c.RefundRate) }},
		},
	}
}

// SkinTypes describes the skin type screen.
func SkinTypes() Descriptor[domain.SkinType] {
	return Descriptor[domain.SkinType]{
		Name:         "skin-types",
		Title:        "Skin types",
		Endpoint:     "/skin-types",
		SearchFields: func(s domain.SkinType) []string { return []string{s.Code, s.Name} },
		Image:        func(s *domain.SkinType) *string { return &s.ImageURL },
		Columns: []Column[domain.SkinType]{
			{Header: "Code", Value: func(s domain.SkinType) string { return s.Code }},
			{Header: "Name", Value: func(s domain.SkinType) string { return s.Name }},
		},
	}
}

// Products describes the product screen.
func Products() Descriptor[domain.Product] {
	return Descriptor[domain.Product]{
		Name:     "products",
		Title:    "Products",
		Endpoint: "/products",
		SearchFields: func(p domain.Product) []string {
			return []string{p.Name, p.BrandName, p.Category, p.Status}
		},
		Image: func(p *domain.Product) *string { return &p.ImageURL },
		Columns: []Column[domain.Product]{
			{Header: "Name", Value: func(p domain.Product) string { return p.Name }},
			{Header: "Brand", Value: func(p domain.Product) string { return p.BrandName }},
			{Header: "Category", Value: func(p domain.Product) string { return p.Category }},
			{Header: "Price", Value: func(p domain.Product) string { return money(p.Price) }},
			{Header: "Stock", Value: func(p domain.Product) string { return strconv.Itoa(p.Quantity) }},
			{Header: "Status", Value: func(p domain.Product) string { return p.Status }},
		},
	}
}

// Promotions describes the promotion screen.
func Promotions() Descriptor[domain.Promotion] {
	return Descriptor[domain.Promotion]{
		Name:         "promotions",
		Title:        "Promotions",
		Endpoint:     "/promotions",
		SearchFields: func(p domain.Promotion) []string { return []string{p.Name, p.Description} },
		Image:        func(p *domain.Promotion) *string { return &p.ImageURL },
		Columns: []Column[domain.Promotion]{
			{Header: "Name", Value: func(p domain.Promotion) string { return p.Name }},
			{Header: "Discount", Value: func(p domain.Promotion) string { return percent(p.DiscountRate) }},
			{Header: "Starts", Value: func(p domain.Promotion) string { return date(p.StartDate) }},
			{Header: "Ends", Value: func(p domain.Promotion) string { return date(p.EndDate) }},
		},
	}
}

// QuizQuestions describes the skin quiz screen.
func QuizQuestions() Descriptor[domain.QuizQuestion] {
	return Descriptor[domain.QuizQuestion]{
		Name:     "quiz-questions",
		Title:    "Skin quiz",
		Endpoint: "/quiz-questions",
		SearchFields: func(q domain.QuizQuestion) []string {
			fields := []string{q.Content}
			for _, a := range q.Answers {
				fields = append(fields, a.Content)
			}
			return fields
		},
		Columns: []Column[domain.QuizQuestion]{
			{Header: "Question", Value: func(q domain.QuizQuestion) string { return q.Content }},
			{Header: "Answers", Value: func(q domain.QuizQuestion) string { return strconv.Itoa(len(q.Answers)) }},
		},
	}
}
