package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
)

// Redis keys for the approval aggregates.
const (
	keyApprovedCount = "procurement:approved:count"
	keyApprovedValue = "procurement:approved:value"
)

// DashboardService maintains the aggregates surfaced on role dashboards:
// how many indents were fully approved and their combined estimated value.
// Counters live in redis; the store is the fallback source of truth.
type DashboardService struct {
	indents IndentStore
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewDashboardService(indents IndentStore, rdb *redis.Client, logger *zap.Logger) *DashboardService {
	return &DashboardService{indents: indents, rdb: rdb, logger: logger}
}

// SetRedis injects the redis client.
func (s *DashboardService) SetRedis(rdb *redis.Client) {
	s.rdb = rdb
}

// RecordApproval bumps the approved counters for a fully approved indent.
func (s *DashboardService) RecordApproval(ctx context.Context, ind *entity.Indent) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, keyApprovedCount).Err(); err != nil {
		s.logger.Warn("failed to bump approved count", zap.Error(err))
		return
	}
	if err := s.rdb.IncrBy(ctx, keyApprovedValue, ind.TotalApproxValue()).Err(); err != nil {
		s.logger.Warn("failed to bump approved value", zap.Error(err))
	}
}

// Stats is the dashboard aggregate block.
type Stats struct {
	ApprovedCount  int64            `json:"approved_count"`
	ApprovedValue  int64            `json:"approved_value"`
	PendingByStage map[string]int64 `json:"pending_by_stage"`
}

// GetStats reads the aggregates, preferring redis and falling back to the
// store when redis is absent or empty.
func (s *DashboardService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	fromRedis := false
	if s.rdb != nil {
		count, err1 := s.rdb.Get(ctx, keyApprovedCount).Int64()
		value, err2 := s.rdb.Get(ctx, keyApprovedValue).Int64()
		if err1 == nil && err2 == nil {
			stats.ApprovedCount = count
			stats.ApprovedValue = value
			fromRedis = true
		}
	}
	if !fromRedis {
		count, value, err := s.indents.ApprovedAggregate(ctx)
		if err != nil {
			return nil, err
		}
		stats.ApprovedCount = count
		stats.ApprovedValue = value
	}

	pending, err := s.indents.PendingCounts(ctx)
	if err != nil {
		return nil, err
	}
	stats.PendingByStage = pending
	return stats, nil
}
