package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/swaggerdagger987/FDL/internal/domain/metric"
	"github.com/swaggerdagger987/FDL/internal/domain/player"
	"github.com/swaggerdagger987/FDL/internal/domain/syncstate"
	"github.com/swaggerdagger987/FDL/internal/domain/weeklystat"
	"github.com/swaggerdagger987/FDL/internal/platform/logging"
	"github.com/swaggerdagger987/FDL/internal/statkey"
)

const (
	regularSeasonWeeks = 18

	statBatchSize   = 250
	metricBatchSize = 12000

	assetCacheTTL       = 24 * time.Hour
	assetCacheKeyPrefix = "nflverse_player_stats_asset"
	lastSyncReportKey   = "last_sync_report"
)

// SleeperGateway fetches the primary-source feeds. Week payloads map player
// IDs to raw stat objects.
type SleeperGateway interface {
	Players(ctx context.Context) (map[string]any, error)
	WeekStats(ctx context.Context, season, week int) (map[string]any, error)
}

// NflverseGateway lists upstream releases and streams CSV assets row by row.
type NflverseGateway interface {
	ListReleases(ctx context.Context) ([]Release, error)
	StreamCSV(ctx context.Context, url string, fn func(record map[string]string) error) error
}

type SyncConfig struct {
	Weeks         int
	AssetCacheTTL time.Duration
}

type SourceReport struct {
	PlayersUpserted    int    `json:"players_upserted,omitempty"`
	StatRowsUpserted   int    `json:"stats_rows_upserted,omitempty"`
	MetricRowsUpserted int    `json:"metrics_rows_upserted,omitempty"`
	WeeksFetched       int    `json:"weeks_fetched,omitempty"`
	WeeksSkipped       int    `json:"weeks_skipped,omitempty"`
	UnresolvedRows     int    `json:"unresolved_rows,omitempty"`
	Asset              string `json:"asset,omitempty"`
	AssetSeasonHint    int    `json:"asset_season_hint,omitempty"`
	FallbackSeasonUsed bool   `json:"fallback_season_used,omitempty"`
	Note               string `json:"note,omitempty"`
}

type SyncSummary struct {
	Season              int                     `json:"season"`
	PlayersUpserted     int                     `json:"players_upserted"`
	StatRowsUpserted    int                     `json:"stats_rows_upserted"`
	MetricRowsUpserted  int                     `json:"metrics_rows_upserted"`
	MetricKeysAvailable int                     `json:"metric_keys_available"`
	Sources             map[string]SourceReport `json:"sources"`
	SyncedAt            time.Time               `json:"synced_at"`
}

// SyncService runs full ingestion passes: identity refresh, primary weekly
// ingestion, optional secondary ingestion, then materialization.
type SyncService struct {
	playerRepo player.Repository
	statRepo   weeklystat.Repository
	metricRepo metric.Repository
	stateRepo  syncstate.Repository
	sleeper    SleeperGateway
	nflverse   NflverseGateway
	cfg        SyncConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewSyncService(
	playerRepo player.Repository,
	statRepo weeklystat.Repository,
	metricRepo metric.Repository,
	stateRepo syncstate.Repository,
	sleeper SleeperGateway,
	nflverse NflverseGateway,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Weeks <= 0 {
		cfg.Weeks = regularSeasonWeeks
	}
	if cfg.AssetCacheTTL <= 0 {
		cfg.AssetCacheTTL = assetCacheTTL
	}

	return &SyncService{
		playerRepo: playerRepo,
		statRepo:   statRepo,
		metricRepo: metricRepo,
		stateRepo:  stateRepo,
		sleeper:    sleeper,
		nflverse:   nflverse,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// CurrentSeason maps a timestamp to the NFL season it falls in. The new
// season starts in August.
func CurrentSeason(now time.Time) int {
	if now.Month() >= time.August {
		return now.Year()
	}
	return now.Year() - 1
}

// RunSync executes one full ingestion pass and returns its summary report.
func (s *SyncService) RunSync(ctx context.Context, season int, includeSecondary bool) (SyncSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.RunSync")
	defer span.End()

	if season <= 0 {
		season = CurrentSeason(s.now())
	}

	summary := SyncSummary{
		Season:   season,
		Sources:  make(map[string]SourceReport),
		SyncedAt: s.now().UTC(),
	}

	playersReport, err := s.syncPlayers(ctx)
	if err != nil {
		return summary, err
	}
	summary.PlayersUpserted = playersReport.PlayersUpserted
	summary.Sources["sleeper_players"] = playersReport

	sleeperReport, err := s.syncSleeperWeeks(ctx, season)
	if err != nil {
		return summary, err
	}
	summary.StatRowsUpserted += sleeperReport.StatRowsUpserted
	summary.MetricRowsUpserted += sleeperReport.MetricRowsUpserted
	summary.Sources["sleeper_stats"] = sleeperReport

	if includeSecondary {
		nflverseReport, err := s.syncNflverse(ctx, season)
		if err != nil {
			return summary, err
		}
		summary.StatRowsUpserted += nflverseReport.StatRowsUpserted
		summary.MetricRowsUpserted += nflverseReport.MetricRowsUpserted
		summary.Sources["nflverse_stats"] = nflverseReport
	}

	if err := s.materialize(ctx); err != nil {
		return summary, err
	}
	if err := s.statRepo.RefreshCurrent(ctx); err != nil {
		return summary, fmt.Errorf("refresh current stats: %w", err)
	}

	keys, err := s.metricRepo.ListLatestKeys(ctx)
	if err != nil {
		return summary, fmt.Errorf("count latest metric keys: %w", err)
	}
	summary.MetricKeysAvailable = len(keys)

	if err := s.persistSummary(ctx, summary); err != nil {
		return summary, err
	}

	s.logger.InfoContext(ctx, "full sync finished",
		"season", season,
		"players", summary.PlayersUpserted,
		"stat_rows", summary.StatRowsUpserted,
		"metric_rows", summary.MetricRowsUpserted,
		"metric_keys", summary.MetricKeysAvailable,
	)
	return summary, nil
}

func (s *SyncService) syncPlayers(ctx context.Context) (SourceReport, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.syncPlayers")
	defer span.End()

	payload, err := s.sleeper.Players(ctx)
	if err != nil {
		return SourceReport{}, crerr.Wrap(ErrDependencyUnavailable, err.Error())
	}

	players := SleeperPlayersFromPayload(payload, s.now().UTC())
	if err := s.playerRepo.UpsertMany(ctx, players); err != nil {
		return SourceReport{}, fmt.Errorf("upsert players: %w", err)
	}
	return SourceReport{PlayersUpserted: len(players)}, nil
}

func (s *SyncService) syncSleeperWeeks(ctx context.Context, season int) (SourceReport, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.syncSleeperWeeks")
	defer span.End()

	report := SourceReport{}
	now := s.now().UTC()
	var stats []weeklystat.Stat
	var metricRows []metric.Weekly

	for week := 1; week <= s.cfg.Weeks; week++ {
		payload, err := s.sleeper.WeekStats(ctx, season, week)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			s.logger.WarnContext(ctx, "week fetch failed, skipping",
				"season", season, "week", week, "error", err)
			report.WeeksSkipped++
			continue
		}
		if len(payload) == 0 {
			continue
		}
		report.WeeksFetched++

		weekStats, weekMetrics := SleeperWeekRows(payload, season, week, now)
		stats = append(stats, weekStats...)
		metricRows = append(metricRows, weekMetrics...)
	}

	if err := s.metricRepo.UpsertWeeklyMany(ctx, metricRows); err != nil {
		return report, fmt.Errorf("upsert weekly metrics: %w", err)
	}
	if err := s.statRepo.UpsertMany(ctx, stats); err != nil {
		return report, fmt.Errorf("upsert weekly stats: %w", err)
	}
	report.StatRowsUpserted = len(stats)
	report.MetricRowsUpserted = len(metricRows)
	return report, nil
}

func (s *SyncService) syncNflverse(ctx context.Context, season int) (SourceReport, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.syncNflverse")
	defer span.End()

	asset, found, err := s.discoverStatAsset(ctx, season)
	if err != nil {
		return SourceReport{}, err
	}
	if !found {
		return SourceReport{Note: "no player stats asset found"}, nil
	}

	index, err := BuildIdentityIndex(ctx, s.playerRepo)
	if err != nil {
		return SourceReport{}, fmt.Errorf("build identity index: %w", err)
	}

	report := SourceReport{Asset: asset.Name, AssetSeasonHint: asset.SeasonHint}
	now := s.now().UTC()
	var stats []weeklystat.Stat
	var metricRows []metric.Weekly

	flush := func() error {
		if len(metricRows) > 0 {
			if err := s.metricRepo.UpsertWeeklyMany(ctx, metricRows); err != nil {
				return fmt.Errorf("upsert weekly metrics: %w", err)
			}
			report.MetricRowsUpserted += len(metricRows)
			metricRows = metricRows[:0]
		}
		if len(stats) > 0 {
			if err := s.statRepo.UpsertMany(ctx, stats); err != nil {
				return fmt.Errorf("upsert weekly stats: %w", err)
			}
			report.StatRowsUpserted += len(stats)
			stats = stats[:0]
		}
		return nil
	}

	streamErr := s.nflverse.StreamCSV(ctx, asset.URL, func(record map[string]string) error {
		result := convertNflverseRow(record, index, season, asset.SeasonHint, now)
		if result.Unresolved {
			report.UnresolvedRows++
			return nil
		}
		if !result.OK {
			return nil
		}
		if result.Fallback {
			report.FallbackSeasonUsed = true
		}

		stats = append(stats, result.Stat)
		metricRows = append(metricRows, result.Metrics...)
		if len(stats) >= statBatchSize || len(metricRows) >= metricBatchSize {
			return flush()
		}
		return nil
	})
	if streamErr != nil {
		return report, crerr.Wrap(ErrDependencyUnavailable, streamErr.Error())
	}
	if err := flush(); err != nil {
		return report, err
	}

	return report, nil
}

func (s *SyncService) discoverStatAsset(ctx context.Context, season int) (StatAsset, bool, error) {
	cacheKey := assetCacheKeyPrefix + ":" + strconv.Itoa(season)
	if entry, ok, err := s.stateRepo.Get(ctx, cacheKey); err == nil && ok && entry.Fresh(s.now(), s.cfg.AssetCacheTTL) {
		var cached StatAsset
		if err := sonic.UnmarshalString(entry.Value, &cached); err == nil && cached.URL != "" {
			return cached, true, nil
		}
	}

	releases, err := s.nflverse.ListReleases(ctx)
	if err != nil {
		return StatAsset{}, false, crerr.Wrap(ErrDependencyUnavailable, err.Error())
	}

	asset, found := ScoreStatAssets(releases, season)
	if !found {
		return StatAsset{}, false, nil
	}

	encoded, err := sonic.MarshalString(asset)
	if err == nil {
		if err := s.stateRepo.Set(ctx, cacheKey, encoded); err != nil {
			s.logger.WarnContext(ctx, "persist asset cache failed", "error", err)
		}
	}
	return asset, true, nil
}

// materialize rebuilds the latest-metrics table. Profile descriptor rows are
// computed here so the repository can apply the whole replace in one
// transaction.
func (s *SyncService) materialize(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "SyncService.materialize")
	defer span.End()

	profileRows, err := s.buildProfileRows(ctx)
	if err != nil {
		return err
	}
	if err := s.metricRepo.RecomputeLatest(ctx, profileRows); err != nil {
		return fmt.Errorf("recompute latest metrics: %w", err)
	}
	return nil
}

func (s *SyncService) buildProfileRows(ctx context.Context) ([]metric.Latest, error) {
	players, err := s.playerRepo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list player profiles: %w", err)
	}

	now := s.now().UTC()
	var rows []metric.Latest
	for _, p := range players {
		if p.Age != nil {
			rows = append(rows, profileRow(p.ID, "age", *p.Age, now))
		}
		if p.YearsExp != nil {
			rows = append(rows, profileRow(p.ID, "years_exp", float64(*p.YearsExp), now))
		}

		for statKey, value := range statkey.FlattenNumeric(p.Profile) {
			if profileKeyExcluded(statKey) {
				continue
			}
			rows = append(rows, profileRow(p.ID, statKey, value, now))
		}
	}
	return rows, nil
}

// profileKeyExcluded filters identifier-ish profile keys out of the metric
// namespace.
func profileKeyExcluded(statKey string) bool {
	if statKey == "" || statKey == "id" {
		return true
	}
	if len(statKey) > 3 && statKey[len(statKey)-3:] == "_id" {
		return true
	}
	if len(statKey) >= 7 && statKey[:7] == "search_" {
		return true
	}
	return false
}

func profileRow(playerID, statKey string, value float64, now time.Time) metric.Latest {
	return metric.Latest{
		PlayerID:  playerID,
		StatKey:   statKey,
		Value:     value,
		Source:    metric.SourceProfile,
		UpdatedAt: now,
	}
}

func (s *SyncService) persistSummary(ctx context.Context, summary SyncSummary) error {
	encoded, err := sonic.MarshalString(summary)
	if err != nil {
		return fmt.Errorf("encode sync summary: %w", err)
	}
	if err := s.stateRepo.Set(ctx, lastSyncReportKey, encoded); err != nil {
		return fmt.Errorf("persist sync summary: %w", err)
	}
	return nil
}
