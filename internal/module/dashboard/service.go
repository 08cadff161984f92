package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simp-lee/shopconsole/internal/analytics"
	"github.com/simp-lee/shopconsole/internal/domain"
)

// Lister fetches one page of T.
type Lister[T any] interface {
	List(ctx context.Context, page, pageSize int) (*domain.PagedResult[T], error)
}

// Summary is the dashboard payload. Every series is derived locally from
// the sampled product and transaction pages.
type Summary struct {
	ProductCount      int64                   `json:"productCount"`
	TransactionCount  int64                   `json:"transactionCount"`
	ProductsByBrand   []analytics.Bucket      `json:"productsByBrand"`
	RevenueByCategory []analytics.Bucket      `json:"revenueByCategory"`
	MonthlySales      []analytics.Bucket      `json:"monthlySales"`
	MonthlyRevenue    []analytics.Bucket      `json:"monthlyRevenue"`
	TopSellers        []domain.Product        `json:"topSellers"`
	Transactions      []analytics.StatusTotal `json:"transactions"`
	GeneratedAt       time.Time               `json:"generatedAt"`
}

// Config configures a Service.
type Config struct {
	Products     Lister[domain.Product]
	Transactions Lister[domain.Transaction]
	// SampleSize is the page size used for both fetches. Defaults to 500.
	SampleSize int
	// Months is the length of the revenue series. Defaults to 12.
	Months int
	// TopN is the number of best sellers. Defaults to 5.
	TopN   int
	Logger *slog.Logger
	Now    func() time.Time
}

// Service builds dashboard summaries.
type Service struct {
	cfg Config
}

// NewService creates a Service. Both listers are required.
func NewService(cfg Config) *Service {
	if cfg.Products == nil || cfg.Transactions == nil {
		panic("dashboard.NewService: products and transactions listers are required")
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 500
	}
	if cfg.Months <= 0 {
		cfg.Months = 12
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{cfg: cfg}
}

// Summary loads products and transactions concurrently and derives the
// chart series. Either fetch failing fails the whole summary.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var (
		products *domain.PagedResult[domain.Product]
		txs      *domain.PagedResult[domain.Transaction]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.cfg.Products.List(gctx, 1, s.cfg.SampleSize)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = s.cfg.Transactions.List(gctx, 1, s.cfg.SampleSize)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.cfg.Logger.WarnContext(ctx, "dashboard load failed", slog.Any("error", err))
		return nil, domain.NewFetchError(err)
	}
	if products == nil {
		products = domain.NewPagedResult[domain.Product](nil, 1, s.cfg.SampleSize, 0)
	}
	if txs == nil {
		txs = domain.NewPagedResult[domain.Transaction](nil, 1, s.cfg.SampleSize, 0)
	}

	return &Summary{
		ProductCount:      products.TotalCount,
		TransactionCount:  txs.TotalCount,
		ProductsByBrand:   analytics.ProductsByBrand(products.Items),
		RevenueByCategory: analytics.RevenueByCategory(products.Items),
		MonthlySales:      analytics.MonthlySales(products.Items),
		MonthlyRevenue:    analytics.MonthlyRevenue(txs.Items, s.cfg.Now(), s.cfg.Months),
		TopSellers:        analytics.TopSellers(products.Items, s.cfg.TopN),
		Transactions:      analytics.TransactionTotals(txs.Items),
		GeneratedAt:       s.cfg.Now().UTC(),
	}, nil
}
