package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/domain/screener"
	"github.com/swaggerdagger987/FDL/internal/domain/syncstate"
	"github.com/swaggerdagger987/FDL/internal/platform/cache"
	"github.com/swaggerdagger987/FDL/internal/platform/logging"
	"github.com/swaggerdagger987/FDL/internal/statkey"
)

const (
	defaultScreenerLimit = 200
	maxScreenerLimit     = 1000

	defaultOptionsLimit = 600
	maxOptionsLimit     = 12000

	optionsCacheMaxEntries = 32
)

// coreMetricKeys are always projected onto screener rows.
var coreMetricKeys = []string{"fantasy_points_ppr", "age", "years_exp"}

var filterOperatorSynonyms = map[string]string{
	"gte":     screener.OpGte,
	">=":      screener.OpGte,
	"min":     screener.OpGte,
	"lte":     screener.OpLte,
	"<=":      screener.OpLte,
	"max":     screener.OpLte,
	"gt":      screener.OpGt,
	">":       screener.OpGt,
	"lt":      screener.OpLt,
	"<":       screener.OpLt,
	"eq":      screener.OpEq,
	"=":       screener.OpEq,
	"neq":     screener.OpNeq,
	"!=":      screener.OpNeq,
	"between": screener.OpBetween,
	"range":   screener.OpBetween,
}

// FilterInput is one raw caller-supplied metric filter before normalization.
type FilterInput struct {
	Key      string `json:"key"`
	Op       string `json:"op"`
	Value    any    `json:"value"`
	ValueMax any    `json:"value_max"`
}

type ScreenerInput struct {
	Search        string
	Position      string
	Positions     []string
	Team          string
	AgeMin        *float64
	AgeMax        *float64
	Filters       []FilterInput
	SortKey       string
	SortDirection string
	Columns       []string
	Limit         int
	Offset        int
}

// ScreenerResult echoes the normalized filters and sort actually applied
// so callers can see which inputs were silently dropped.
type ScreenerResult struct {
	Items          []screener.Row
	Total          int
	Columns        []string
	AppliedFilters []screener.Filter
	AppliedSort    screener.Sort
}

type OptionsInput struct {
	Search   string
	Position string
	Team     string
	Limit    int
}

type ScreenerService struct {
	screenerRepo screener.Repository
	playerRepo   player.Repository
	stateRepo    syncstate.Repository
	optionsCache *cache.Store
	logger       *logging.Logger
	now          func() time.Time

	stampMu   sync.Mutex
	lastStamp string
}

func NewScreenerService(
	screenerRepo screener.Repository,
	playerRepo player.Repository,
	stateRepo syncstate.Repository,
	logger *logging.Logger,
) *ScreenerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScreenerService{
		screenerRepo: screenerRepo,
		playerRepo:   playerRepo,
		stateRepo:    stateRepo,
		optionsCache: cache.NewStore(0, optionsCacheMaxEntries),
		logger:       logger,
		now:          time.Now,
	}
}

// NormalizeFilterOperator folds operator synonyms to canonical form. Unknown
// tokens default to gte.
func NormalizeFilterOperator(raw string) string {
	if op, ok := filterOperatorSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return op
	}
	return screener.OpGte
}

// NormalizeFilters canonicalizes keys and operators, swaps between bounds,
// drops filters with unparseable values, and caps the applied set.
func NormalizeFilters(raw []FilterInput) []screener.Filter {
	normalized := make([]screener.Filter, 0, len(raw))
	for _, input := range raw {
		key := statkey.Normalize(input.Key)
		if key == "" {
			continue
		}

		op := NormalizeFilterOperator(input.Op)
		value, valueOK := statkey.CoerceFloat(input.Value)
		valueMax, valueMaxOK := statkey.CoerceFloat(input.ValueMax)

		if op == screener.OpBetween {
			if !valueOK || !valueMaxOK {
				continue
			}
			low, high := value, valueMax
			if low > high {
				low, high = high, low
			}
			normalized = append(normalized, screener.Filter{Key: key, Op: op, Value: low, ValueMax: &high})
		} else {
			if !valueOK {
				continue
			}
			normalized = append(normalized, screener.Filter{Key: key, Op: op, Value: value})
		}

		if len(normalized) >= screener.MaxFilters {
			break
		}
	}
	return normalized
}

// buildColumnList unions the core projection with filter keys, the sort key,
// and caller extras, deduplicated and capped.
func buildColumnList(extras []string, filters []screener.Filter, sortKey string) []string {
	keys := make([]string, 0, len(coreMetricKeys)+len(filters)+len(extras)+1)
	keys = append(keys, coreMetricKeys...)
	for _, f := range filters {
		keys = append(keys, f.Key)
	}
	if sortKey != "" {
		keys = append(keys, sortKey)
	}
	keys = append(keys, extras...)

	seen := make(map[string]struct{}, len(keys))
	deduped := make([]string, 0, len(keys))
	for _, raw := range keys {
		key := statkey.Normalize(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, key)
		if len(deduped) >= screener.MaxColumns {
			break
		}
	}
	return deduped
}

// Query runs one screener request end to end.
func (s *ScreenerService) Query(ctx context.Context, input ScreenerInput) (ScreenerResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ScreenerService.Query")
	defer span.End()

	positions := make([]string, 0, len(input.Positions)+1)
	for _, p := range input.Positions {
		if token := strings.ToUpper(strings.TrimSpace(p)); token != "" {
			positions = append(positions, token)
		}
	}
	if len(positions) == 0 {
		if token := strings.ToUpper(strings.TrimSpace(input.Position)); token != "" {
			positions = append(positions, token)
		}
	}

	filters := NormalizeFilters(input.Filters)

	sortKey := statkey.Normalize(input.SortKey)
	if sortKey == "" {
		sortKey = "fantasy_points_ppr"
	}
	direction := strings.ToLower(strings.TrimSpace(input.SortDirection))
	if direction != "asc" {
		direction = "desc"
	}
	sortSpec := screener.Sort{Key: sortKey, Direction: direction}

	columns := buildColumnList(input.Columns, filters, sortKey)

	limit := input.Limit
	if limit <= 0 {
		limit = defaultScreenerLimit
	}
	if limit > maxScreenerLimit {
		limit = maxScreenerLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := screener.Query{
		Search:    strings.ToLower(strings.TrimSpace(input.Search)),
		Positions: positions,
		Team:      strings.ToUpper(strings.TrimSpace(input.Team)),
		AgeMin:    input.AgeMin,
		AgeMax:    input.AgeMax,
		Filters:   filters,
		Sort:      sortSpec,
		Columns:   columns,
		Limit:     limit,
		Offset:    offset,
	}

	result, err := s.screenerRepo.Query(ctx, query)
	if err != nil {
		return ScreenerResult{}, fmt.Errorf("screener query: %w", err)
	}

	return ScreenerResult{
		Items:          result.Items,
		Total:          result.Total,
		Columns:        columns,
		AppliedFilters: filters,
		AppliedSort:    sortSpec,
	}, nil
}

// ListFilterOptions enumerates discoverable metric keys with their observed
// ranges. Results are cached until the last-sync stamp changes.
func (s *ScreenerService) ListFilterOptions(ctx context.Context, input OptionsInput) ([]screener.FilterOption, error) {
	ctx, span := startUsecaseSpan(ctx, "ScreenerService.ListFilterOptions")
	defer span.End()

	limit := input.Limit
	if limit <= 0 {
		limit = defaultOptionsLimit
	}
	if limit > maxOptionsLimit {
		limit = maxOptionsLimit
	}

	query := screener.OptionsQuery{
		Search:   strings.ToLower(strings.TrimSpace(input.Search)),
		Position: strings.ToUpper(strings.TrimSpace(input.Position)),
		Team:     strings.ToUpper(strings.TrimSpace(input.Team)),
		Limit:    limit,
	}

	s.refreshCacheStamp(ctx)
	cacheKey := query.Search + "|" + query.Position + "|" + query.Team + "|" + strconv.Itoa(limit)

	cached, err := s.optionsCache.GetOrLoad(ctx, cacheKey, func(ctx context.Context) (any, error) {
		options, err := s.screenerRepo.ListFilterOptions(ctx, query)
		if err != nil {
			return nil, err
		}
		return options, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list filter options: %w", err)
	}

	options, ok := cached.([]screener.FilterOption)
	if !ok {
		return nil, fmt.Errorf("unexpected filter options cache entry")
	}
	return options, nil
}

// refreshCacheStamp flushes the options cache wholesale whenever the last
// sync report timestamp moves.
func (s *ScreenerService) refreshCacheStamp(ctx context.Context) {
	stamp := "no_sync"
	if entry, ok, err := s.stateRepo.Get(ctx, lastSyncReportKey); err == nil && ok {
		stamp = entry.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	s.stampMu.Lock()
	defer s.stampMu.Unlock()
	if s.lastStamp != stamp {
		s.lastStamp = stamp
		s.optionsCache.Flush(ctx)
	}
}

// ListTeams returns the distinct team codes present on player records.
func (s *ScreenerService) ListTeams(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "ScreenerService.ListTeams")
	defer span.End()

	teams, err := s.playerRepo.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}
