package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	activitydomain "github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	activityports "github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
	catalogdomain "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/ports"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	partydomain "github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid report input")
)

const (
	DefaultLowStockThreshold = 10
	DefaultSummaryTTL        = 30 * time.Second

	recentSalesLimit = 10
	summaryTopLimit  = 5
	maxDays          = 365
)

var _ ports.Service = (*Service)(nil)

// Service builds dashboard and sales reports. Cashiers only ever see figures
// derived from their own sales.
type Service struct {
	source     ports.Source
	cache      ports.Cache
	ttl        time.Duration
	activities activityports.Sink
	threshold  int
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

// WithCache stores summaries in cache for ttl.
func WithCache(cache ports.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithActivitySink(sink activityports.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.activities = sink
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLowStockThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(source ports.Source, opts ...Option) *Service {
	s := &Service{
		source:     source,
		ttl:        DefaultSummaryTTL,
		activities: activityports.NoopSink,
		threshold:  DefaultLowStockThreshold,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Summary returns the landing view for a. Cache failures only cost a rebuild.
func (s *Service) Summary(ctx context.Context, a actor.Actor) (*domain.Summary, error) {
	key := summaryKey(a)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.record(ctx, a, "DASHBOARD_SUMMARY_VIEWED", map[string]any{"cached": true})
			return cached, nil
		case !errors.Is(err, ports.ErrCacheMiss):
			s.logger.WarnContext(ctx, "dashboard cache read failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	summary, err := s.buildSummary(ctx, a)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "dashboard cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	s.record(ctx, a, "DASHBOARD_SUMMARY_VIEWED", map[string]any{"cached": false})
	return summary, nil
}

func (s *Service) buildSummary(ctx context.Context, a actor.Actor) (*domain.Summary, error) {
	now := s.now()
	sales, err := s.source.Orders(ctx, ordersdomain.KindSale, scope(a))
	if err != nil {
		return nil, err
	}
	products, err := s.source.Products(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.source.Parties(ctx, partydomain.KindCustomer)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.source.Parties(ctx, partydomain.KindSupplier)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		TotalSales:     domain.CompletedTotal(sales),
		TotalPurchases: decimal.Zero,
		TotalProducts:  len(products),
		TotalCustomers: len(customers),
		TotalSuppliers: len(suppliers),
		RecentSales:    recentSales(sales, partyNames(customers)),
		TopProducts:    domain.RankProducts(sales, productNames(products), summaryTopLimit),
		SalesTrend:     monthTrend(sales, now),
		GeneratedAt:    now,
		UserContext: domain.UserContext{
			UserID:           a.ID,
			UserName:         a.Name,
			UserRole:         a.Role,
			CanViewPurchases: !a.IsCashier(),
			CanViewAllSales:  !a.IsCashier(),
		},
	}
	for _, product := range products {
		if product.IsLowStock(s.threshold) {
			summary.LowStockProducts++
		}
	}
	for _, sale := range sales {
		if sale.ActorID == a.ID {
			summary.UserContext.PersonalSalesCount++
		}
	}
	if !a.IsCashier() {
		purchases, err := s.source.Orders(ctx, ordersdomain.KindPurchase, ordersports.ListFilter{})
		if err != nil {
			return nil, err
		}
		summary.TotalPurchases = domain.CompletedTotal(purchases)
		trend := monthTrend(purchases, now)
		summary.PurchasesTrend = &trend
	}
	return summary, nil
}

// LowStock lists inventory records under the threshold, emptiest first.
func (s *Service) LowStock(ctx context.Context, a actor.Actor, limit int) ([]domain.LowStockProduct, error) {
	limit, err := boundedLimit(limit, 10)
	if err != nil {
		return nil, err
	}
	products, err := s.source.LowStock(ctx, s.threshold)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].Stock < products[j].Stock })
	if len(products) > limit {
		products = products[:limit]
	}
	out := make([]domain.LowStockProduct, 0, len(products))
	for _, product := range products {
		out = append(out, domain.LowStockProduct{
			ID:           product.ID,
			Name:         product.Name,
			Stock:        product.Stock,
			MinimumStock: s.threshold,
		})
	}
	s.record(ctx, a, "LOW_STOCK_VIEWED", map[string]any{"count": len(out)})
	return out, nil
}

func (s *Service) TopProducts(ctx context.Context, a actor.Actor, limit int) ([]domain.ProductSales, error) {
	limit, err := boundedLimit(limit, summaryTopLimit)
	if err != nil {
		return nil, err
	}
	sales, err := s.source.Orders(ctx, ordersdomain.KindSale, scope(a))
	if err != nil {
		return nil, err
	}
	names, err := s.productNames(ctx)
	if err != nil {
		return nil, err
	}
	top := domain.RankProducts(sales, names, limit)
	s.record(ctx, a, "TOP_PRODUCTS_VIEWED", map[string]any{"limit": limit})
	return top, nil
}

// SalesByDay totals completed sales per day over the last days days, oldest
// first. Days without sales are omitted.
func (s *Service) SalesByDay(ctx context.Context, a actor.Actor, days int) ([]domain.DailySales, error) {
	days, err := boundedDays(days)
	if err != nil {
		return nil, err
	}
	now := s.now()
	from := startOfDay(now).AddDate(0, 0, -(days - 1))
	filter := scope(a)
	filter.From = &from
	sales, err := s.source.Orders(ctx, ordersdomain.KindSale, filter)
	if err != nil {
		return nil, err
	}
	byDay := map[string]*domain.DailySales{}
	for _, sale := range sales {
		if sale.Status != ordersdomain.StatusCompleted {
			continue
		}
		key := sale.CreatedAt.In(now.Location()).Format(domain.DateLayout)
		entry, ok := byDay[key]
		if !ok {
			entry = &domain.DailySales{Date: key, TotalSales: decimal.Zero}
			byDay[key] = entry
		}
		entry.TotalOrders++
		entry.TotalSales = entry.TotalSales.Add(sale.Total)
	}
	out := make([]domain.DailySales, 0, len(byDay))
	for _, entry := range byDay {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	s.record(ctx, a, "SALES_BY_DAY_VIEWED", map[string]any{"days": days})
	return out, nil
}

// SalesAnalytics summarizes sales between from and to, both optional.
func (s *Service) SalesAnalytics(ctx context.Context, a actor.Actor, from, to *time.Time) (*domain.SalesAnalytics, error) {
	if err := requireManager(a); err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	sales, err := s.source.Orders(ctx, ordersdomain.KindSale, ordersports.ListFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	names, err := s.productNames(ctx)
	if err != nil {
		return nil, err
	}
	analytics := &domain.SalesAnalytics{
		TotalSales:     len(sales),
		TotalRevenue:   domain.CompletedTotal(sales),
		TopProducts:    domain.RankProducts(sales, names, summaryTopLimit),
		CompletionRate: decimal.Zero,
	}
	for _, sale := range sales {
		switch sale.Status {
		case ordersdomain.StatusCompleted:
			analytics.CompletedSales++
		case ordersdomain.StatusPending:
			analytics.PendingSales++
		}
	}
	if analytics.TotalSales > 0 {
		analytics.CompletionRate = percent(analytics.CompletedSales, analytics.TotalSales)
	}
	s.record(ctx, a, "SALES_ANALYTICS_VIEWED", map[string]any{"from": formatDate(from), "to": formatDate(to)})
	return analytics, nil
}

// DailyReport breaks one calendar day down by hour and payment method.
func (s *Service) DailyReport(ctx context.Context, a actor.Actor, day time.Time) (*domain.DailyReport, error) {
	if err := requireManager(a); err != nil {
		return nil, err
	}
	if day.IsZero() {
		day = s.now()
	}
	from := startOfDay(day)
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	sales, err := s.source.Orders(ctx, ordersdomain.KindSale, ordersports.ListFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	names, err := s.productNames(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.DailyReport{
		Date:               from.Format(domain.DateLayout),
		TotalSales:         len(sales),
		TotalRevenue:       domain.CompletedTotal(sales),
		PaymentMethods:     map[ordersdomain.PaymentMethod]int{},
		TopSellingProducts: domain.RankProducts(sales, names, summaryTopLimit),
	}
	var hours [24]domain.HourlySales
	for _, sale := range sales {
		report.PaymentMethods[sale.PaymentMethod]++
		hour := sale.CreatedAt.In(from.Location()).Hour()
		hours[hour].Sales++
		switch sale.Status {
		case ordersdomain.StatusCompleted:
			report.CompletedSales++
			hours[hour].Revenue = hours[hour].Revenue.Add(sale.Total)
		case ordersdomain.StatusPending:
			report.PendingSales++
		}
	}
	report.HourlyBreakdown = []domain.HourlySales{}
	for hour, entry := range hours {
		if entry.Sales == 0 {
			continue
		}
		entry.Hour = fmt.Sprintf("%02d:00", hour)
		report.HourlyBreakdown = append(report.HourlyBreakdown, entry)
	}
	s.record(ctx, a, "DAILY_SALES_REPORT_GENERATED", map[string]any{"date": report.Date})
	return report, nil
}

// SalesTrends returns per-day counts for the last days days, newest first.
func (s *Service) SalesTrends(ctx context.Context, a actor.Actor, days int) (*domain.SalesTrends, error) {
	if err := requireManager(a); err != nil {
		return nil, err
	}
	days, err := boundedDays(days)
	if err != nil {
		return nil, err
	}
	now := s.now()
	from := startOfDay(now).AddDate(0, 0, -(days - 1))
	sales, err := s.source.Orders(ctx, ordersdomain.KindSale, ordersports.ListFilter{From: &from, To: &now})
	if err != nil {
		return nil, err
	}
	byDay := map[string]*domain.TrendPoint{}
	for _, sale := range sales {
		key := sale.CreatedAt.In(now.Location()).Format(domain.DateLayout)
		point, ok := byDay[key]
		if !ok {
			point = &domain.TrendPoint{Date: key, Revenue: decimal.Zero}
			byDay[key] = point
		}
		point.TotalSales++
		if sale.Status == ordersdomain.StatusCompleted {
			point.CompletedSales++
			point.Revenue = point.Revenue.Add(sale.Total)
		}
	}
	trends := &domain.SalesTrends{
		Period:    fmt.Sprintf("%d days", days),
		StartDate: from.Format(domain.DateLayout),
		EndDate:   now.Format(domain.DateLayout),
		Trends:    make([]domain.TrendPoint, 0, len(byDay)),
	}
	for _, point := range byDay {
		trends.Trends = append(trends.Trends, *point)
	}
	sort.Slice(trends.Trends, func(i, j int) bool { return trends.Trends[i].Date > trends.Trends[j].Date })
	s.record(ctx, a, "SALES_TRENDS_VIEWED", map[string]any{"days": days})
	return trends, nil
}

// TopCustomers ranks customers by completed sale revenue.
func (s *Service) TopCustomers(ctx context.Context, a actor.Actor, limit int) ([]domain.CustomerRanking, error) {
	if err := requireManager(a); err != nil {
		return nil, err
	}
	limit, err := boundedLimit(limit, 10)
	if err != nil {
		return nil, err
	}
	completed := ordersdomain.StatusCompleted
	sales, err := s.source.Orders(ctx, ordersdomain.KindSale, ordersports.ListFilter{Status: &completed})
	if err != nil {
		return nil, err
	}
	customers, err := s.source.Parties(ctx, partydomain.KindCustomer)
	if err != nil {
		return nil, err
	}
	names := partyNames(customers)

	byCustomer := map[int64]*domain.CustomerRanking{}
	for _, sale := range sales {
		if sale.CounterpartyID == nil || sale.Status != ordersdomain.StatusCompleted {
			continue
		}
		id := *sale.CounterpartyID
		entry, ok := byCustomer[id]
		if !ok {
			entry = &domain.CustomerRanking{CustomerID: id, CustomerName: names[id], TotalSpent: decimal.Zero}
			byCustomer[id] = entry
		}
		entry.TotalOrders++
		entry.TotalSpent = entry.TotalSpent.Add(sale.Total)
	}
	out := make([]domain.CustomerRanking, 0, len(byCustomer))
	for _, entry := range byCustomer {
		entry.AverageOrderValue = entry.TotalSpent.Div(decimal.NewFromInt(int64(entry.TotalOrders))).Round(2)
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSpent.Equal(out[j].TotalSpent) {
			return out[i].CustomerID < out[j].CustomerID
		}
		return out[i].TotalSpent.GreaterThan(out[j].TotalSpent)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	s.record(ctx, a, "TOP_CUSTOMERS_VIEWED", map[string]any{"limit": limit})
	return out, nil
}

func (s *Service) productNames(ctx context.Context) (map[int64]string, error) {
	products, err := s.source.Products(ctx)
	if err != nil {
		return nil, err
	}
	return productNames(products), nil
}

func (s *Service) record(ctx context.Context, a actor.Actor, action string, details map[string]any) {
	s.activities.Record(ctx, activitydomain.Activity{
		UserID:     a.ID,
		UserName:   a.Name,
		UserRole:   string(a.Role),
		Action:     action,
		EntityType: "dashboard",
		Details:    details,
		Timestamp:  s.now(),
	})
}

func summaryKey(a actor.Actor) string {
	return fmt.Sprintf("dashboard:summary:%d", a.ID)
}

func scope(a actor.Actor) ordersports.ListFilter {
	if a.IsCashier() {
		id := a.ID
		return ordersports.ListFilter{ActorID: &id}
	}
	return ordersports.ListFilter{}
}

func requireManager(a actor.Actor) error {
	if !a.Role.AtLeast(actor.RoleManager) {
		return fmt.Errorf("%w: reports require manager or admin", ErrForbidden)
	}
	return nil
}

func boundedLimit(limit, fallback int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	case limit == 0:
		return fallback, nil
	case limit > 100:
		return 100, nil
	}
	return limit, nil
}

func boundedDays(days int) (int, error) {
	if days == 0 {
		return 30, nil
	}
	if days < 0 || days > maxDays {
		return 0, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, maxDays)
	}
	return days, nil
}

// monthTrend compares completed totals of the calendar month containing now
// with the month before.
func monthTrend(orders []*ordersdomain.Order, now time.Time) domain.Trend {
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)
	current, previous := decimal.Zero, decimal.Zero
	for _, order := range orders {
		if order.Status != ordersdomain.StatusCompleted {
			continue
		}
		created := order.CreatedAt.In(now.Location())
		switch {
		case !created.Before(thisMonth):
			current = current.Add(order.Total)
		case !created.Before(lastMonth):
			previous = previous.Add(order.Total)
		}
	}
	return domain.NewTrend(current, previous)
}

func recentSales(sales []*ordersdomain.Order, customers map[int64]string) []domain.RecentSale {
	sorted := make([]*ordersdomain.Order, len(sales))
	copy(sorted, sales)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if len(sorted) > recentSalesLimit {
		sorted = sorted[:recentSalesLimit]
	}
	out := make([]domain.RecentSale, 0, len(sorted))
	for _, sale := range sorted {
		entry := domain.RecentSale{ID: sale.ID, Total: sale.Total, Status: string(sale.Status), CreatedAt: sale.CreatedAt}
		if sale.CounterpartyID != nil {
			entry.CustomerName = customers[*sale.CounterpartyID]
		}
		out = append(out, entry)
	}
	return out
}

func productNames(products []*catalogdomain.Product) map[int64]string {
	names := make(map[int64]string, len(products))
	for _, product := range products {
		names[product.ID] = product.Name
	}
	return names
}

func partyNames(parties []*partydomain.Party) map[int64]string {
	names := make(map[int64]string, len(parties))
	for _, party := range parties {
		names[party.ID] = party.Name
	}
	return names
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func percent(part, whole int) decimal.Decimal {
	return decimal.NewFromInt(int64(part)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(whole))).Round(2)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(domain.DateLayout)
}
