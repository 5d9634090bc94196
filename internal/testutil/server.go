package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finmate/internal/model"
)

// Server is an in-process FinMate server holding a list of expenses.
type Server struct {
	*httptest.Server
	// ChatReply answers POST /finmate. It defaults to echoing the input.
	ChatReply func(input string) string
	// Analysis is returned by GET /api/expenses/analyze. Its Categories and
	// MonthlyTrend must be non-nil.
	Analysis model.Analysis
	// Tips is returned by GET /api/budget/tips without a category.
	Tips     model.BudgetTips
	expenses []model.Expense
	chats    []string
	requests []string
	mu       sync.Mutex
}

// NewServer starts a server seeded with expenses and closes it when the
// test ends.
func NewServer(t *testing.T, expenses []model.Expense) *Server {
	t.Helper()

	s := &Server{
		expenses: expenses,
		Analysis: model.Analysis{
			CurrentMonthTotal: 620,
			LastMonthTotal:    500,
			PercentChange:     24,
			Categories:        map[string]float64{"Food": 500, "Transport": 120},
			HighestCategory:   model.CategoryShare{Name: "Food", Amount: 500, Percentage: 80.6},
			MostFrequent:      model.CategoryCount{Name: "Food", Count: 3},
			MonthlyTrend:      []model.MonthTotal{{Month: "Feb", Total: 500}, {Month: "Mar", Total: 620}},
		},
		Tips: model.BudgetTips{
			GeneralTips: []string{"Track every expense", "Set a monthly budget"},
			Categories:  []string{"food", "transport"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /finmate", s.chat)
	mux.HandleFunc("GET /api/expenses", s.list)
	mux.HandleFunc("GET /api/expenses/analyze", s.analyze)
	mux.HandleFunc("GET /api/budget/tips", s.tips)
	mux.HandleFunc("PUT /api/expenses/{id}", s.update)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.remove)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// Requests lists "METHOD /path" for every request received.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Chats lists the inputs posted to the conversational endpoint.
func (s *Server) Chats() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.chats...)
}

// Expenses returns the server's current expenses.
func (s *Server) Expenses() []model.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Expense(nil), s.expenses...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.chats = append(s.chats, body.Input)
	reply := s.ChatReply
	s.mu.Unlock()

	text := "You said: " + body.Input
	if reply != nil {
		text = reply(body.Input)
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": text})
}

type wireExpense struct {
	ID       json.Number `json:"id"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
	Notes    *string     `json:"notes"`
}

func toWire(e model.Expense) wireExpense {
	out := wireExpense{
		ID:       json.Number(e.ID),
		Amount:   json.Number(e.Amount.String()),
		Category: e.Category,
		Date:     e.Date,
	}
	if e.Notes != "" {
		notes := e.Notes
		out.Notes = &notes
	}
	return out
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 5
	}

	s.mu.Lock()
	data := make([]wireExpense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if len(data) == limit {
			break
		}
		data = append(data, toWire(e))
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (s *Server) analyze(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	analysis := s.Analysis
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": analysis})
}

func (s *Server) tips(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		s.mu.Lock()
		tips := s.Tips
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": tips})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": model.BudgetTips{
		Category: category,
		Tips:     []string{"Compare prices before buying " + category},
	}})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount   json.Number `json:"amount"`
		Category string      `json:"category"`
		Date     string      `json:"date"`
		Notes    string      `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(body.Amount.String())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid amount"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Expense not found"})
		return
	}
	s.expenses[i].Amount = amount
	s.expenses[i].Category = body.Category
	s.expenses[i].Date = body.Date
	s.expenses[i].Notes = strings.TrimSpace(body.Notes)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Expense updated successfully"})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Expense not found"})
		return
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Expense deleted successfully"})
}

// find must be called with mu held.
func (s *Server) find(id string) int {
	for i, e := range s.expenses {
		if string(e.ID) == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
