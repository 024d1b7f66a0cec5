package main

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

type ActiveSearchSignals struct {
	Search         string `json:"search"`
	EmployeeSearch string `json:"employeeSearch"`
	PositionSearch string `json:"positionSearch"`
}

// Levenshtein calculates the Levenshtein distance between two strings.
func Levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	n, m := len(r1), len(r2)
	if n > m {
		r1, r2 = r2, r1
		n, m = m, n
	}

	currentRow := make([]int, n+1)
	for i := 0; i <= n; i++ {
		currentRow[i] = i
	}

	for i := 1; i <= m; i++ {
		previousRow := currentRow
		currentRow = make([]int, n+1)
		currentRow[0] = i
		for j := 1; j <= n; j++ {
			add, del, change := previousRow[j]+1, currentRow[j-1]+1, previousRow[j-1]
			if r1[j-1] != r2[i-1] {
				change++
			}
			currentRow[j] = min(add, min(del, change))
		}
	}
	return currentRow[n]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func handleActiveSearch(w http.ResponseWriter, r *http.Request) {
	signals := &ActiveSearchSignals{}
	if err := datastar.ReadSignals(r, signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	searchType := r.URL.Query().Get("type")
	var query string

	switch searchType {
	case "employee":
		query = signals.EmployeeSearch
	case "position":
		query = signals.PositionSearch
	default:
		query = signals.Search
	}

	if query == "" && signals.Search != "" {
		query = signals.Search
	}

	query = strings.ToLower(strings.TrimSpace(query))

	switch searchType {
	case "employee":
		handleEmployeeSearch(datastar.NewSSE(w, r), query)
	case "position":
		handlePositionSearch(datastar.NewSSE(w, r), query)
	default:
		http.Error(w, "Invalid search type", http.StatusBadRequest)
	}
}

func handleEmployeeSearch(sse *datastar.ServerSentEventGenerator, query string) {
	type ScoredEmployee struct {
		Name    string
		Display string
		Shift   string
		Score   int
	}

	employeesMu.RLock()
	emps := make([]ScoredEmployee, 0, len(employees))
	for _, rec := range employees {
		emps = append(emps, ScoredEmployee{
			Name:    rec.Name,
			Display: rec.DisplayName(),
			Shift:   rec.ShiftStart + " - " + rec.ShiftEnd,
		})
	}
	employeesMu.RUnlock()

	var results []ScoredEmployee
	for _, emp := range emps {
		if query == "" {
			results = append(results, emp)
			continue
		}

		full := strings.ToLower(emp.Name)
		display := strings.ToLower(emp.Display)

		// Simple scoring: contains = 0, fuzzy = distance
		score := 1000
		if strings.Contains(full, query) || strings.Contains(display, query) {
			score = 0
		} else {
			dist := min(Levenshtein(query, full), Levenshtein(query, display))
			if dist < 5 { // Threshold
				score = dist
			}
		}

		if score < 1000 {
			emp.Score = score
			results = append(results, emp)
		}
	}

	slices.SortFunc(results, func(a, b ScoredEmployee) int {
		return a.Score - b.Score
	})

	if len(results) > 15 {
		results = results[:15]
	}

	var sb strings.Builder
	sb.WriteString(`<div id="employee-results" class="list">`)
	for _, res := range results {
		sb.WriteString(fmt.Sprintf(`
			<a class="row waves-effect" onclick="selectEmployee('%s')">
				<div class="col">
					<span>%s</span>
					<label>%s</label>
				</div>
			</a>`, res.Display, res.Display, res.Shift))
	}
	if len(results) == 0 {
		sb.WriteString(`<div class="padding">No results found</div>`)
	}
	sb.WriteString("</div>")

	sse.PatchElements(sb.String())
}

func handlePositionSearch(sse *datastar.ServerSentEventGenerator, query string) {
	type ScoredPosition struct {
		Name  string
		Score int
	}

	var results []ScoredPosition
	for _, pos := range catalog.Work {
		if query == "" {
			results = append(results, ScoredPosition{Name: pos})
			continue
		}

		name := strings.ToLower(pos)

		score := 1000
		if strings.Contains(name, query) {
			score = 0
		} else {
			dist := Levenshtein(query, name)
			if dist < 5 {
				score = dist
			}
		}

		if score < 1000 {
			results = append(results, ScoredPosition{Name: pos, Score: score})
		}
	}

	slices.SortFunc(results, func(a, b ScoredPosition) int {
		return a.Score - b.Score
	})

	if len(results) > 15 {
		results = results[:15]
	}

	var sb strings.Builder
	sb.WriteString(`<div id="position-results" class="list">`)
	for _, res := range results {
		sb.WriteString(fmt.Sprintf(`
			<a class="row waves-effect" onclick="selectPosition('%s')">
				<div class="col">
					<span>%s</span>
				</div>
			</a>`, res.Name, res.Name))
	}
	if len(results) == 0 {
		sb.WriteString(`<div class="padding">No results found</div>`)
	}
	sb.WriteString("</div>")

	sse.PatchElements(sb.String())
}
