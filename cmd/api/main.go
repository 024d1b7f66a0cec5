package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/Amoeba115/newschedule/internal/config"
	"github.com/Amoeba115/newschedule/internal/logger"
	"github.com/Amoeba115/newschedule/internal/middleware"
	"github.com/Amoeba115/newschedule/internal/models"
	"github.com/Amoeba115/newschedule/internal/roster"
	"github.com/Amoeba115/newschedule/internal/rules"
	"github.com/Amoeba115/newschedule/internal/scheduling"
	"github.com/Amoeba115/newschedule/internal/store"
	"github.com/Amoeba115/newschedule/internal/timeutil"
)

var (
	cfg *config.Config
	log *logger.Logger

	catalog models.Catalog
	ruleSet *models.RuleSet
	engine  *scheduling.Engine

	employeesMu sync.RWMutex
	employees   []models.ShiftRecord

	overridesMu sync.RWMutex
	overrides   []models.Override

	lastRunMu sync.RWMutex
	lastRun   *models.ScheduleRun
	lastGrid  [][]string

	runStore runRecorder
)

// runRecorder is the slice of the run store the handlers need, kept as an
// interface so tests can record saves without a database.
type runRecorder interface {
	SaveRun(ctx context.Context, run *models.ScheduleRun) error
}

// Data Structs for UI
type DashboardData struct {
	Employees  []models.ShiftRecord
	Overrides  []models.Override
	Positions  []string
	Rules      []models.Rule
	Scoring    models.ScoringPolicy
	StoreOpen  string
	StoreClose string
	LastRun    *models.ScheduleRun
	Error      string
}

type ScheduleData struct {
	Run  *models.ScheduleRun
	Grid [][]string
}

func main() {
	godotenv.Load()

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log = logger.New(cfg.LogLevel)

	catalog = models.NewCatalog(cfg.IncludeLobby)

	ruleSet, err = rules.Load(cfg.RulesPath)
	if err != nil {
		log.WithError(err).Fatal("loading rules")
	}
	engine = scheduling.NewEngine(catalog, ruleSet)
	engine.SetPermutationCap(cfg.MaxPermutations)

	if loaded, err := rules.LoadOverrides(cfg.OverridesPath); err != nil {
		log.WithError(err).Warn("loading overrides")
	} else {
		overrides = loaded
	}

	if cfg.DatabaseURL != "" {
		conn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("opening database")
		}
		if err := conn.Ping(); err != nil {
			log.WithError(err).Fatal("pinging database")
		}
		runStore = store.NewPostgresStore(conn)
		log.Info("run persistence enabled")
	}

	http.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("ui/static"))))
	http.HandleFunc("/", middleware.CSRF(handleDashboard))
	http.HandleFunc("/schedule", middleware.CSRF(handleSchedule))

	http.HandleFunc("/api/employees", middleware.CSRF(handleAPIEmployees))
	http.HandleFunc("/api/employees/edit", middleware.CSRF(handleEditEmployee))
	http.HandleFunc("/api/employees/delete", middleware.CSRF(handleDeleteEmployee))

	http.HandleFunc("/api/overrides", middleware.CSRF(handleAPIOverrides))
	http.HandleFunc("/api/overrides/delete", middleware.CSRF(handleDeleteOverride))

	http.HandleFunc("/api/schedule", middleware.CSRF(handleGenerateSchedule))
	http.HandleFunc("/api/schedule/csv", handleScheduleCSV)

	http.HandleFunc("/api/roster/import", middleware.CSRF(handleImportRoster))
	http.HandleFunc("/api/roster/export", handleExportRoster)

	http.HandleFunc("/api/search", handleActiveSearch)

	log.WithField("port", cfg.Port).Info("scheduler server started")
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

func resolveTemplatePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Try going up two levels (for tests running from cmd/api)
		p2 := "../../" + path
		if _, err := os.Stat(p2); err == nil {
			return p2
		}
	}
	return path
}

func render(w http.ResponseWriter, r *http.Request, data interface{}, files ...string) {
	var allFiles []string
	allFiles = append(allFiles, resolveTemplatePath("ui/templates/layout.html"))
	for _, f := range files {
		allFiles = append(allFiles, resolveTemplatePath(f))
	}

	tmpl, err := template.ParseFiles(allFiles...)
	if err != nil {
		http.Error(w, "Template Parse Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	wrapper := struct {
		Data      interface{}
		CSRFToken string
	}{
		Data:      data,
		CSRFToken: middleware.TokenFrom(r.Context()),
	}

	if err := tmpl.ExecuteTemplate(w, "layout", wrapper); err != nil {
		http.Error(w, "Template Execute Error: "+err.Error(), http.StatusInternalServerError)
	}
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	employeesMu.RLock()
	emps := make([]models.ShiftRecord, len(employees))
	copy(emps, employees)
	employeesMu.RUnlock()

	overridesMu.RLock()
	ovs := make([]models.Override, len(overrides))
	copy(ovs, overrides)
	overridesMu.RUnlock()

	lastRunMu.RLock()
	run := lastRun
	lastRunMu.RUnlock()

	data := DashboardData{
		Employees:  emps,
		Overrides:  ovs,
		Positions:  catalog.Work,
		Rules:      ruleSet.Rules,
		Scoring:    ruleSet.Scoring,
		StoreOpen:  cfg.StoreOpen,
		StoreClose: cfg.StoreClose,
		LastRun:    run,
		Error:      r.URL.Query().Get("error"),
	}
	render(w, r, data, "ui/templates/dashboard.html")
}

func handleSchedule(w http.ResponseWriter, r *http.Request) {
	lastRunMu.RLock()
	data := ScheduleData{
		Run:  lastRun,
		Grid: lastGrid,
	}
	lastRunMu.RUnlock()

	render(w, r, data, "ui/templates/schedule.html")
}

// Employee Handlers

func recordFromForm(r *http.Request) models.ShiftRecord {
	return models.ShiftRecord{
		Name:          strings.TrimSpace(r.FormValue("name")),
		ShiftStart:    strings.TrimSpace(r.FormValue("shift_start")),
		ShiftEnd:      strings.TrimSpace(r.FormValue("shift_end")),
		BreakStart:    strings.TrimSpace(r.FormValue("break_start")),
		TrainingStart: strings.TrimSpace(r.FormValue("training_start")),
		TrainingEnd:   strings.TrimSpace(r.FormValue("training_end")),
	}
}

func validateRecord(rec models.ShiftRecord) error {
	if rec.Name == "" {
		return errors.New("name is required")
	}
	for _, field := range []string{rec.ShiftStart, rec.ShiftEnd, rec.BreakStart, rec.TrainingStart, rec.TrainingEnd} {
		if _, err := timeutil.ParseClock(field); err != nil {
			return err
		}
	}
	return nil
}

func handleAPIEmployees(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	rec := recordFromForm(r)
	if err := validateRecord(rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	employeesMu.Lock()
	employees = append(employees, rec)
	employeesMu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func handleEditEmployee(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	idx, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}
	rec := recordFromForm(r)
	if err := validateRecord(rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	employeesMu.Lock()
	if idx >= 0 && idx < len(employees) {
		employees[idx] = rec
	}
	employeesMu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	idx, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}

	employeesMu.Lock()
	if idx >= 0 && idx < len(employees) {
		employees = append(employees[:idx], employees[idx+1:]...)
	}
	employeesMu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Override Handlers

func handleAPIOverrides(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ov := models.Override{
		Employee: models.NormalizeName(r.FormValue("employee")),
		Position: strings.TrimSpace(r.FormValue("position")),
		Start:    strings.TrimSpace(r.FormValue("start_time")),
		End:      strings.TrimSpace(r.FormValue("end_time")),
	}
	if ov.Employee == "" || ov.Position == "" {
		http.Error(w, "employee and position are required", http.StatusBadRequest)
		return
	}
	if !catalog.Contains(ov.Position) {
		http.Error(w, "unknown position: "+ov.Position, http.StatusBadRequest)
		return
	}

	overridesMu.Lock()
	overrides = append(overrides, ov)
	overridesMu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func handleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	idx, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}

	overridesMu.Lock()
	if idx >= 0 && idx < len(overrides) {
		overrides = append(overrides[:idx], overrides[idx+1:]...)
	}
	overridesMu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Schedule Handlers

func handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	open := r.FormValue("store_open")
	if open == "" {
		open = cfg.StoreOpen
	}
	closeTime := r.FormValue("store_close")
	if closeTime == "" {
		closeTime = cfg.StoreClose
	}

	employeesMu.RLock()
	emps := make([]models.ShiftRecord, len(employees))
	copy(emps, employees)
	employeesMu.RUnlock()

	overridesMu.RLock()
	ovs := make([]models.Override, len(overrides))
	copy(ovs, overrides)
	overridesMu.RUnlock()

	runID := uuid.NewString()
	runLog := log.WithRun(runID)

	ctx := r.Context()
	if cfg.SolveTimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.SolveTimeoutSec)*time.Second)
		defer cancel()
	}

	started := time.Now()
	table, err := engine.Solve(ctx, scheduling.Request{
		StoreOpen:  open,
		StoreClose: closeTime,
		Employees:  emps,
		Overrides:  ovs,
	})
	if err != nil {
		runLog.WithError(err).Warn("solve failed")
		status := http.StatusInternalServerError
		var parseErr *timeutil.ParseError
		switch {
		case errors.Is(err, scheduling.ErrEmptyInput):
			status = http.StatusBadRequest
		case errors.Is(err, scheduling.ErrInfeasible):
			status = http.StatusUnprocessableEntity
		case errors.As(err, &parseErr):
			status = http.StatusBadRequest
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusServiceUnavailable
		}
		if runStore != nil {
			failed := &models.ScheduleRun{
				ID:            runID,
				StoreOpen:     open,
				StoreClose:    closeTime,
				EmployeeCount: len(emps),
				Feasible:      false,
				CreatedAt:     time.Now(),
			}
			if saveErr := runStore.SaveRun(r.Context(), failed); saveErr != nil {
				runLog.WithError(saveErr).Warn("persisting failed run")
			}
		}
		http.Error(w, fmt.Sprintf("Schedule Generation Failed: %v", err), status)
		return
	}

	csvOut, err := table.CSV()
	if err != nil {
		http.Error(w, "CSV encoding failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	run := &models.ScheduleRun{
		ID:            runID,
		StoreOpen:     open,
		StoreClose:    closeTime,
		EmployeeCount: len(emps),
		Feasible:      true,
		CSV:           csvOut,
		CreatedAt:     time.Now(),
	}

	lastRunMu.Lock()
	lastRun = run
	lastGrid = table.Grid()
	lastRunMu.Unlock()

	if err := rules.SaveOverrides(cfg.OverridesPath, ovs); err != nil {
		runLog.WithError(err).Warn("persisting overrides")
	}

	if runStore != nil {
		if err := runStore.SaveRun(ctx, run); err != nil {
			runLog.WithError(err).Warn("persisting run")
		}
	}

	runLog.WithFields(map[string]interface{}{
		"employees": len(emps),
		"elapsed":   time.Since(started).String(),
	}).Info("schedule generated")

	http.Redirect(w, r, "/schedule", http.StatusSeeOther)
}

func handleScheduleCSV(w http.ResponseWriter, r *http.Request) {
	lastRunMu.RLock()
	run := lastRun
	lastRunMu.RUnlock()

	if run == nil {
		http.Error(w, "No schedule generated yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.csv"`)
	fmt.Fprint(w, run.CSV)
}

// Roster import/export

func handleImportRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("roster")
	if err != nil {
		http.Error(w, "Missing roster file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	records, err := roster.ParseSummary(file)
	if err != nil {
		http.Error(w, "Import failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	employeesMu.Lock()
	employees = records
	employeesMu.Unlock()

	log.WithField("employees", len(records)).Info("roster imported")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func handleExportRoster(w http.ResponseWriter, r *http.Request) {
	employeesMu.RLock()
	emps := make([]models.ShiftRecord, len(employees))
	copy(emps, employees)
	employeesMu.RUnlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="employee_summary.txt"`)
	fmt.Fprint(w, roster.FormatSummary(emps))
}
