package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type ScheduleRun struct {
	ID            string
	StoreOpen     string
	StoreClose    string
	EmployeeCount int32
	Feasible      bool
	CSV           string
	CreatedAt     time.Time
}

type PositionRule struct {
	ID             int64
	Name           string
	Positions      []string
	MaxConsecutive int32
	RuleGroup      string
	WindowStart    string
	WindowEnd      string
	CreatedAt      time.Time
}

// Queries interface mimicking sqlc generated code
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

func (q *Queries) CreateScheduleRun(ctx context.Context, arg ScheduleRun) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO schedule_runs (id, store_open, store_close, employee_count, feasible, csv_output) VALUES ($1, $2, $3, $4, $5, $6)",
		arg.ID, arg.StoreOpen, arg.StoreClose, arg.EmployeeCount, arg.Feasible, arg.CSV,
	)
	return err
}

func (q *Queries) ListScheduleRuns(ctx context.Context, limit int32) ([]ScheduleRun, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, store_open, store_close, employee_count, feasible, csv_output, created_at FROM schedule_runs ORDER BY created_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ScheduleRun
	for rows.Next() {
		var i ScheduleRun
		if err := rows.Scan(&i.ID, &i.StoreOpen, &i.StoreClose, &i.EmployeeCount, &i.Feasible, &i.CSV, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) GetScheduleRun(ctx context.Context, id string) (ScheduleRun, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT id, store_open, store_close, employee_count, feasible, csv_output, created_at FROM schedule_runs WHERE id = $1",
		id,
	)
	var i ScheduleRun
	err := row.Scan(&i.ID, &i.StoreOpen, &i.StoreClose, &i.EmployeeCount, &i.Feasible, &i.CSV, &i.CreatedAt)
	return i, err
}

func (q *Queries) CreatePositionRule(ctx context.Context, arg PositionRule) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO position_rules (name, positions, max_consecutive, rule_group, window_start, window_end) VALUES ($1, $2, $3, $4, $5, $6)",
		arg.Name, pq.Array(arg.Positions), arg.MaxConsecutive, arg.RuleGroup, arg.WindowStart, arg.WindowEnd,
	)
	return err
}

func (q *Queries) ListPositionRules(ctx context.Context) ([]PositionRule, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, name, positions, max_consecutive, rule_group, window_start, window_end, created_at FROM position_rules ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PositionRule
	for rows.Next() {
		var i PositionRule
		if err := rows.Scan(&i.ID, &i.Name, pq.Array(&i.Positions), &i.MaxConsecutive, &i.RuleGroup, &i.WindowStart, &i.WindowEnd, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) DeletePositionRules(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM position_rules")
	return err
}
