package main

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Amoeba115/newschedule/internal/config"
	"github.com/Amoeba115/newschedule/internal/logger"
	"github.com/Amoeba115/newschedule/internal/middleware"
	"github.com/Amoeba115/newschedule/internal/models"
	"github.com/Amoeba115/newschedule/internal/scheduling"
)

func setupAPITest(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	cfg = &config.Config{
		Port:            "0",
		LogLevel:        "error",
		RulesPath:       filepath.Join(dir, "rules.yaml"),
		OverridesPath:   filepath.Join(dir, "overrides.yaml"),
		StoreOpen:       "7:30 AM",
		StoreClose:      "10:00 PM",
		MaxPermutations: 50000,
		SolveTimeoutSec: 5,
	}
	log = logger.New("error")
	catalog = models.NewCatalog(false)
	ruleSet = &models.RuleSet{}
	engine = scheduling.NewEngine(catalog, ruleSet)
	engine.SetPermutationCap(cfg.MaxPermutations)

	employeesMu.Lock()
	employees = nil
	employeesMu.Unlock()
	overridesMu.Lock()
	overrides = nil
	overridesMu.Unlock()
	lastRunMu.Lock()
	lastRun = nil
	lastGrid = nil
	lastRunMu.Unlock()
	runStore = nil
}

func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/employees", middleware.CSRF(handleAPIEmployees))
	mux.HandleFunc("/api/employees/edit", middleware.CSRF(handleEditEmployee))
	mux.HandleFunc("/api/employees/delete", middleware.CSRF(handleDeleteEmployee))
	mux.HandleFunc("/api/overrides", middleware.CSRF(handleAPIOverrides))
	mux.HandleFunc("/api/overrides/delete", middleware.CSRF(handleDeleteOverride))
	mux.HandleFunc("/api/schedule", middleware.CSRF(handleGenerateSchedule))
	mux.HandleFunc("/api/schedule/csv", handleScheduleCSV)
	mux.HandleFunc("/api/roster/import", middleware.CSRF(handleImportRoster))
	mux.HandleFunc("/api/roster/export", handleExportRoster)
	return httptest.NewServer(mux)
}

// Custom client to not follow redirects
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, rawURL, token string, form url.Values) *http.Response {
	t.Helper()
	form.Set("csrf_token", token)
	req, err := http.NewRequest("POST", rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func addEmployee(t *testing.T, client *http.Client, base, token, name, start, end, brk string) {
	t.Helper()
	resp := postForm(t, client, base+"/api/employees", token, url.Values{
		"name":        {name},
		"shift_start": {start},
		"shift_end":   {end},
		"break_start": {brk},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("add employee %s: expected 303, got %d", name, resp.StatusCode)
	}
}

func TestAPI_GenerateSchedule(t *testing.T) {
	setupAPITest(t)
	ts := newTestServer()
	defer ts.Close()

	client := noRedirectClient()
	token := middleware.GenerateToken()

	addEmployee(t, client, ts.URL, token, "Alice Smith", "9:00 AM", "11:00 AM", "")
	addEmployee(t, client, ts.URL, token, "Bob Jones", "9:00 AM", "11:00 AM", "")

	// Pin Bob to Conductor for the first hour.
	resp := postForm(t, client, ts.URL+"/api/overrides", token, url.Values{
		"employee":   {"Bob Jones"},
		"position":   {"Conductor"},
		"start_time": {"9:00 AM"},
		"end_time":   {"10:00 AM"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("add override: expected 303, got %d", resp.StatusCode)
	}

	resp = postForm(t, client, ts.URL+"/api/schedule", token, url.Values{
		"store_open":  {"9:00 AM"},
		"store_close": {"11:00 AM"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("generate: expected 303, got %d", resp.StatusCode)
	}

	csvResp, err := http.Get(ts.URL + "/api/schedule/csv")
	if err != nil {
		t.Fatalf("csv download failed: %v", err)
	}
	defer csvResp.Body.Close()
	if csvResp.StatusCode != http.StatusOK {
		t.Fatalf("csv download: expected 200, got %d", csvResp.StatusCode)
	}
	body, _ := io.ReadAll(csvResp.Body)
	csv := string(body)

	if !strings.Contains(csv, "Position,9:00 AM,9:30 AM,10:00 AM,10:30 AM") {
		t.Errorf("csv header missing slot times:\n%s", csv)
	}
	if !strings.Contains(csv, "Alice S.") {
		t.Errorf("csv missing Alice S.:\n%s", csv)
	}

	// The override row keeps Bob on Conductor during the pinned window.
	for _, line := range strings.Split(csv, "\n") {
		if strings.HasPrefix(line, "Conductor") {
			cells := strings.Split(line, ",")
			if len(cells) < 3 || cells[1] != "Bob J." || cells[2] != "Bob J." {
				t.Errorf("expected Bob J. pinned to Conductor for first two slots, got %q", line)
			}
		}
	}

	// Overrides are persisted alongside the generated schedule.
	if _, err := os.Stat(cfg.OverridesPath); err != nil {
		t.Errorf("overrides file not written: %v", err)
	}
}

func TestAPI_GenerateSchedule_NoEmployees(t *testing.T) {
	setupAPITest(t)
	ts := newTestServer()
	defer ts.Close()

	client := noRedirectClient()
	token := middleware.GenerateToken()

	resp := postForm(t, client, ts.URL+"/api/schedule", token, url.Values{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty roster, got %d", resp.StatusCode)
	}
}

func TestAPI_GenerateSchedule_BadHours(t *testing.T) {
	setupAPITest(t)
	ts := newTestServer()
	defer ts.Close()

	client := noRedirectClient()
	token := middleware.GenerateToken()

	addEmployee(t, client, ts.URL, token, "Alice Smith", "9:00 AM", "11:00 AM", "")

	resp := postForm(t, client, ts.URL+"/api/schedule", token, url.Values{
		"store_open":  {"not a time"},
		"store_close": {"11:00 AM"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed open time, got %d", resp.StatusCode)
	}
}

func TestAPI_EmployeeValidation(t *testing.T) {
	setupAPITest(t)
	ts := newTestServer()
	defer ts.Close()

	client := noRedirectClient()
	token := middleware.GenerateToken()

	resp := postForm(t, client, ts.URL+"/api/employees", token, url.Values{
		"name":        {"Alice Smith"},
		"shift_start": {"25:99"},
		"shift_end":   {"5:00 PM"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad clock string, got %d", resp.StatusCode)
	}

	resp = postForm(t, client, ts.URL+"/api/employees", token, url.Values{
		"shift_start": {"9:00 AM"},
		"shift_end":   {"5:00 PM"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing name, got %d", resp.StatusCode)
	}
}

func TestAPI_OverrideUnknownPosition(t *testing.T) {
	setupAPITest(t)
	ts := newTestServer()
	defer ts.Close()

	client := noRedirectClient()
	token := middleware.GenerateToken()

	resp := postForm(t, client, ts.URL+"/api/overrides", token, url.Values{
		"employee":   {"Alice Smith"},
		"position":   {"Zamboni Driver"},
		"start_time": {"9:00 AM"},
		"end_time":   {"10:00 AM"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown position, got %d", resp.StatusCode)
	}
}

func TestAPI_CSRFRejected(t *testing.T) {
	setupAPITest(t)
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.PostForm(ts.URL+"/api/employees", url.Values{
		"name":        {"Alice Smith"},
		"shift_start": {"9:00 AM"},
		"shift_end":   {"5:00 PM"},
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 without CSRF token, got %d", resp.StatusCode)
	}
}

func TestAPI_DeleteEmployee(t *testing.T) {
	setupAPITest(t)
	ts := newTestServer()
	defer ts.Close()

	client := noRedirectClient()
	token := middleware.GenerateToken()

	addEmployee(t, client, ts.URL, token, "Alice Smith", "9:00 AM", "5:00 PM", "")
	addEmployee(t, client, ts.URL, token, "Bob Jones", "9:00 AM", "5:00 PM", "")

	resp := postForm(t, client, ts.URL+"/api/employees/delete", token, url.Values{
		"index": {"0"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("delete: expected 303, got %d", resp.StatusCode)
	}

	employeesMu.RLock()
	defer employeesMu.RUnlock()
	if len(employees) != 1 || employees[0].Name != "Bob Jones" {
		t.Errorf("expected only Bob Jones to remain, got %+v", employees)
	}
}

func TestAPI_RosterImportExport(t *testing.T) {
	setupAPITest(t)
	ts := newTestServer()
	defer ts.Close()

	client := noRedirectClient()
	token := middleware.GenerateToken()

	summary := strings.Join([]string{
		"--- Employee 1 ---",
		"Name: Alice Smith",
		"Shift Start: 9:00 AM",
		"Shift End: 5:00 PM",
		"Break: 12:00 PM",
		"Has Training: No",
		"--- Employee 2 ---",
		"Name: Bob Jones",
		"Shift Start: 10:00 AM",
		"Shift End: 6:00 PM",
		"Break: 1:00 PM",
		"Has Training: Yes",
		"Training Start: 2:00 PM",
	}, "\n")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("csrf_token", token)
	part, err := mw.CreateFormFile("roster", "employee_summary.txt")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(summary))
	mw.Close()

	req, err := http.NewRequest("POST", ts.URL+"/api/roster/import", &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("import: expected 303, got %d", resp.StatusCode)
	}

	employeesMu.RLock()
	count := len(employees)
	employeesMu.RUnlock()
	if count != 2 {
		t.Fatalf("expected 2 imported employees, got %d", count)
	}

	expResp, err := http.Get(ts.URL + "/api/roster/export")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	defer expResp.Body.Close()
	body, _ := io.ReadAll(expResp.Body)

	for _, want := range []string{"Name: Alice Smith", "Name: Bob Jones", "Training Start: 2:00 PM"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("export missing %q:\n%s", want, body)
		}
	}
}

// recordingRunStore captures saved runs in memory.
type recordingRunStore struct {
	runs []*models.ScheduleRun
}

func (s *recordingRunStore) SaveRun(_ context.Context, run *models.ScheduleRun) error {
	s.runs = append(s.runs, run)
	return nil
}

func TestAPI_RunPersistenceRecordsFeasibility(t *testing.T) {
	setupAPITest(t)
	rec := &recordingRunStore{}
	runStore = rec
	ts := newTestServer()
	defer ts.Close()

	client := noRedirectClient()
	token := middleware.GenerateToken()

	// An empty roster fails the solve but the run is still recorded.
	resp := postForm(t, client, ts.URL+"/api/schedule", token, url.Values{
		"store_open":  {"9:00 AM"},
		"store_close": {"11:00 AM"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty roster, got %d", resp.StatusCode)
	}
	if len(rec.runs) != 1 {
		t.Fatalf("expected 1 saved run after failed solve, got %d", len(rec.runs))
	}
	if rec.runs[0].Feasible {
		t.Error("failed solve saved with Feasible = true")
	}

	addEmployee(t, client, ts.URL, token, "Alice Smith", "9:00 AM", "11:00 AM", "")

	resp = postForm(t, client, ts.URL+"/api/schedule", token, url.Values{
		"store_open":  {"9:00 AM"},
		"store_close": {"11:00 AM"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("generate: expected 303, got %d", resp.StatusCode)
	}
	if len(rec.runs) != 2 {
		t.Fatalf("expected 2 saved runs, got %d", len(rec.runs))
	}
	if last := rec.runs[1]; !last.Feasible || last.CSV == "" {
		t.Errorf("successful run saved as Feasible=%v with CSV length %d", last.Feasible, len(last.CSV))
	}
}

func TestAPI_CSVWithoutSchedule(t *testing.T) {
	setupAPITest(t)
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/schedule/csv")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 before any run, got %d", resp.StatusCode)
	}
}
