package storage

import (
	"context"
	"fmt"
	"time"
)

// VolumePeriod holds aggregated training volume for one week.
type VolumePeriod struct {
	Period      string  `json:"period"`
	Sessions    int     `json:"sessions"`
	TotalSets   int     `json:"total_sets"`
	TotalReps   int     `json:"total_reps"`
	Tonnage     float64 `json:"tonnage"`
	AvgDuration float64 `json:"avg_duration_sec"`
}

// GetVolumeSummary returns per-week set, rep, and tonnage totals for the
// athlete. Tonnage is the sum of weight*reps over all logged sets.
func (db *DB) GetVolumeSummary(ctx context.Context, athleteID string, start, end time.Time) ([]VolumePeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc('week', s.performed_at)::date AS period,
		        COUNT(DISTINCT s.session_id)::int,
		        COUNT(*)::int,
		        COALESCE(SUM(s.reps), 0)::int,
		        COALESCE(SUM(s.weight * s.reps), 0)
		 FROM logged_sets s
		 WHERE s.athlete_id = $1 AND s.performed_at >= $2 AND s.performed_at < $3
		 GROUP BY period
		 ORDER BY period DESC`,
		athleteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying volume summary: %w", err)
	}
	defer rows.Close()

	var result []VolumePeriod
	for rows.Next() {
		var periodTime time.Time
		var p VolumePeriod
		if err := rows.Scan(&periodTime, &p.Sessions, &p.TotalSets, &p.TotalReps, &p.Tonnage); err != nil {
			return nil, fmt.Errorf("scanning volume period: %w", err)
		}
		p.Period = periodTime.Format("2006-01-02")
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach average session duration per week from training_logs.
	durRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc('week', date)::date AS period, AVG(duration_sec)
		 FROM training_logs
		 WHERE athlete_id = $1 AND date >= $2 AND date < $3
		 GROUP BY period`,
		athleteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying durations: %w", err)
	}
	defer durRows.Close()

	durations := map[string]float64{}
	for durRows.Next() {
		var periodTime time.Time
		var avg float64
		if err := durRows.Scan(&periodTime, &avg); err != nil {
			return nil, fmt.Errorf("scanning duration: %w", err)
		}
		durations[periodTime.Format("2006-01-02")] = avg
	}
	if err := durRows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].AvgDuration = durations[result[i].Period]
	}
	return result, nil
}
