package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// TierSummary is one row of the tier distribution report.
type TierSummary struct {
	Tier       constants.SeverityTier
	Entities   int64
	AvgScore   float64
	MaxScore   float64
	LastScored time.Time
}

const tierReportSQL = `
SELECT severity_tier, COUNT(*), AVG(final_score), MAX(final_score), MAX(scored_at)
FROM entity_risk_profiles
GROUP BY severity_tier
ORDER BY MAX(final_score) DESC`

// TierReport aggregates persisted profiles per severity tier, highest tier first.
func (db *DBConnection) TierReport(ctx context.Context) ([]TierSummary, error) {
	if db.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(db.config.QueryTimeout)*time.Second)
		defer cancel()
	}

	rows, err := db.pool.Query(ctx, tierReportSQL)
	if err != nil {
		db.logger.Error(ctx, "Tier report query failed", err)
		return nil, errors.ErrDatabaseOperation("tier_report", err)
	}

	report, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TierSummary, error) {
		var (
			s    TierSummary
			tier string
		)
		err := row.Scan(&tier, &s.Entities, &s.AvgScore, &s.MaxScore, &s.LastScored)
		s.Tier = constants.SeverityTier(tier)
		return s, err
	})
	if err != nil {
		db.logger.Error(ctx, "Tier report scan failed", err)
		return nil, errors.ErrDatabaseOperation("tier_report", err)
	}

	db.logger.Debug(ctx, "Tier report computed", logger.Fields{"tiers": len(report)})
	return report, nil
}
