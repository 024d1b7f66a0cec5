package models

import "time"

// ScheduleRun is the persisted record of one solve invocation.
type ScheduleRun struct {
	ID            string    `json:"id"`
	StoreOpen     string    `json:"store_open"`
	StoreClose    string    `json:"store_close"`
	EmployeeCount int       `json:"employee_count"`
	Feasible      bool      `json:"feasible"`
	CSV           string    `json:"csv"`
	CreatedAt     time.Time `json:"created_at"`
}
