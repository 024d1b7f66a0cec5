package store

import (
	"context"
	"database/sql"

	"github.com/Amoeba115/newschedule/internal/db"
	"github.com/Amoeba115/newschedule/internal/models"
	"github.com/Amoeba115/newschedule/internal/timeutil"
)

// PostgresStore persists schedule runs and position rules. It is optional:
// the application runs fully in memory when no DATABASE_URL is configured.
type PostgresStore struct {
	q  *db.Queries
	db *sql.DB
}

func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{q: db.New(conn), db: conn}
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *models.ScheduleRun) error {
	return s.q.CreateScheduleRun(ctx, db.ScheduleRun{
		ID:            run.ID,
		StoreOpen:     run.StoreOpen,
		StoreClose:    run.StoreClose,
		EmployeeCount: int32(run.EmployeeCount),
		Feasible:      run.Feasible,
		CSV:           run.CSV,
	})
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*models.ScheduleRun, error) {
	rows, err := s.q.ListScheduleRuns(ctx, int32(limit))
	if err != nil {
		return nil, err
	}
	runs := make([]*models.ScheduleRun, 0, len(rows))
	for _, r := range rows {
		runs = append(runs, &models.ScheduleRun{
			ID:            r.ID,
			StoreOpen:     r.StoreOpen,
			StoreClose:    r.StoreClose,
			EmployeeCount: int(r.EmployeeCount),
			Feasible:      r.Feasible,
			CSV:           r.CSV,
			CreatedAt:     r.CreatedAt,
		})
	}
	return runs, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*models.ScheduleRun, error) {
	r, err := s.q.GetScheduleRun(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ScheduleRun{
		ID:            r.ID,
		StoreOpen:     r.StoreOpen,
		StoreClose:    r.StoreClose,
		EmployeeCount: int(r.EmployeeCount),
		Feasible:      r.Feasible,
		CSV:           r.CSV,
		CreatedAt:     r.CreatedAt,
	}, nil
}

// SaveRules replaces the stored rule set with the given one.
func (s *PostgresStore) SaveRules(ctx context.Context, rules []models.Rule) error {
	if err := s.q.DeletePositionRules(ctx); err != nil {
		return err
	}
	for _, r := range rules {
		row := db.PositionRule{
			Name:           r.Name,
			Positions:      r.Positions,
			MaxConsecutive: int32(r.MaxConsecutive),
			RuleGroup:      r.Group,
		}
		if r.WindowStart.Valid() {
			row.WindowStart = r.WindowStart.Format()
		}
		if r.WindowEnd.Valid() {
			row.WindowEnd = r.WindowEnd.Format()
		}
		if err := s.q.CreatePositionRule(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) LoadRules(ctx context.Context) ([]models.Rule, error) {
	rows, err := s.q.ListPositionRules(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]models.Rule, 0, len(rows))
	for _, row := range rows {
		kind := models.RuleConsecutiveCap
		if row.RuleGroup != "" {
			kind = models.RuleGroupedConsecutiveCap
		}
		r := models.Rule{
			Name:           row.Name,
			Kind:           kind,
			Positions:      row.Positions,
			MaxConsecutive: int(row.MaxConsecutive),
			Group:          row.RuleGroup,
			WindowStart:    timeutil.NoValue,
			WindowEnd:      timeutil.NoValue,
		}
		if row.WindowStart != "" {
			if m, err := timeutil.ParseClock(row.WindowStart); err == nil {
				r.WindowStart = m
			}
		}
		if row.WindowEnd != "" {
			if m, err := timeutil.ParseClock(row.WindowEnd); err == nil {
				r.WindowEnd = m
			}
		}
		rules = append(rules, r)
	}
	return rules, nil
}
