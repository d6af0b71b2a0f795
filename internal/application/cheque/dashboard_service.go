package cheque

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/cheque"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SummaryCache is the cache contract for dashboard snapshots. Get returns
// nil with no error on a miss; cache failures degrade to a live query.
type SummaryCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DashboardSummaryResponse is the aggregate snapshot served to the dashboard
type DashboardSummaryResponse struct {
	HolderName        string          `json:"holder_name"`
	TotalReceived     int64           `json:"total_received"`
	DueThisWeekCount  int64           `json:"due_this_week_count"`
	DueThisWeekTotal  decimal.Decimal `json:"due_this_week_total"`
	UpcomingThisWeek  []PDCResponse   `json:"upcoming_this_week"`
	RecentlyDeposited []PDCResponse   `json:"recently_deposited"`
	BankNames         []string        `json:"bank_names"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// TenantHistoryResponse summarizes one tenant's cheque track record
type TenantHistoryResponse struct {
	TenantID          uuid.UUID       `json:"tenant_id"`
	TotalCheques      int64           `json:"total_cheques"`
	ClearedCheques    int64           `json:"cleared_cheques"`
	BouncedCheques    int64           `json:"bounced_cheques"`
	PendingCheques    int64           `json:"pending_cheques"`
	BounceRatePercent decimal.Decimal `json:"bounce_rate_percent"`

	PDCs shared.Paginated[PDCResponse] `json:"pdcs"`
}

// DashboardService serves the read-side aggregate views. Snapshots are cached
// briefly; the dashboard tolerates slight staleness.
type DashboardService struct {
	dashboardRepo cheque.DashboardRepository
	cache         SummaryCache
	holderName    string
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewDashboardService creates a new DashboardService. holderName is the
// company name printed on the dashboard header, from configuration.
func NewDashboardService(
	dashboardRepo cheque.DashboardRepository,
	cache SummaryCache,
	holderName string,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		cache:         cache,
		holderName:    holderName,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

func summaryCacheKey(tenantID *uuid.UUID) string {
	if tenantID == nil {
		return "pdc:dashboard:summary:all"
	}
	return "pdc:dashboard:summary:" + tenantID.String()
}

// Summary returns the dashboard snapshot, scoped to one tenant when tenantID
// is set, portfolio-wide otherwise.
func (s *DashboardService) Summary(ctx context.Context, tenantID *uuid.UUID) (*DashboardSummaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "summary")
	defer span.End()

	key := summaryCacheKey(tenantID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		} else if raw != nil {
			var cached DashboardSummaryResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	now := time.Now()
	summary, err := s.dashboardRepo.Summary(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	resp := &DashboardSummaryResponse{
		HolderName:        s.holderName,
		TotalReceived:     summary.TotalReceived,
		DueThisWeekCount:  summary.DueThisWeekCount,
		DueThisWeekTotal:  summary.DueThisWeekTotal,
		UpcomingThisWeek:  toPDCResponses(summary.UpcomingThisWeek),
		RecentlyDeposited: toPDCResponses(summary.RecentlyDeposited),
		BankNames:         summary.BankNames,
		GeneratedAt:       now,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}

	return resp, nil
}

// TenantHistory returns one tenant's cheque statistics including the bounce
// rate, plus a page of their cheques. A tenant with no cheques reports a
// zero rate and an empty page.
func (s *DashboardService) TenantHistory(ctx context.Context, tenantID uuid.UUID, page, pageSize int) (*TenantHistoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "tenant_history")
	defer span.End()

	stats, err := s.dashboardRepo.TenantStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.OrderBy = "cheque_date"
	filter.OrderDir = "desc"

	items, total, err := s.dashboardRepo.TenantPDCs(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	return &TenantHistoryResponse{
		TenantID:          tenantID,
		TotalCheques:      stats.Total,
		ClearedCheques:    stats.Cleared,
		BouncedCheques:    stats.Bounced,
		PendingCheques:    stats.Pending,
		BounceRatePercent: stats.BounceRatePercent(),
		PDCs:              shared.NewPaginated(toPDCResponses(items), total, filter.Page, filter.PageSize),
	}, nil
}

// WithdrawalHistory returns the page of withdrawn cheques, most recent first
func (s *DashboardService) WithdrawalHistory(ctx context.Context, page, pageSize int) (*shared.Paginated[PDCResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.OrderBy = "withdrawal_date"
	filter.OrderDir = "desc"

	items, total, err := s.dashboardRepo.WithdrawalHistory(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(toPDCResponses(items), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Banks returns the distinct bank names seen across registered cheques,
// for the registration form's bank picker.
func (s *DashboardService) Banks(ctx context.Context, tenantID *uuid.UUID) ([]string, error) {
	return s.dashboardRepo.DistinctBankNames(ctx, tenantID)
}

// HolderName returns the configured company name cheques are made out to
func (s *DashboardService) HolderName() string {
	return s.holderName
}
