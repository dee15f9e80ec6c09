// Package apitest runs an in-memory inventory API for tests. It records every
// call so tests can assert on the exact request sequence.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"stock-cli/internal/api"
	"stock-cli/internal/calendar"
	"stock-cli/internal/model"

	"github.com/shopspring/decimal"
)

const (
	Username = "admin"
	Password = "12345"
	Token    = "test-token"
)

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   string
	Auth   string
}

func (c Call) String() string {
	s := c.Method + " " + c.Path
	if c.Query != "" {
		s += "?" + c.Query
	}
	return s
}

type Server struct {
	srv *httptest.Server

	mu    sync.Mutex
	items []model.Item
	lots  []model.Lot
	next  int64
	calls []Call
	fail  map[string][]int
	// HTTPDates makes lot listings use the HTTP-date form for expiry_date.
	HTTPDates bool
}

// New starts a server closed at test cleanup.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{next: 1, fail: map[string][]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", s.login)
	mux.HandleFunc("GET /api/items", s.auth(s.listItems))
	mux.HandleFunc("POST /api/items", s.auth(s.createItem))
	mux.HandleFunc("PUT /api/items/{id}", s.auth(s.updateItem))
	mux.HandleFunc("DELETE /api/items/{id}", s.auth(s.deleteItem))
	mux.HandleFunc("GET /api/lots/item/{id}", s.auth(s.listLots))
	mux.HandleFunc("POST /api/lots", s.auth(s.createLot))
	mux.HandleFunc("PUT /api/lots/{id}", s.auth(s.updateLot))
	mux.HandleFunc("DELETE /api/lots/{id}", s.auth(s.deleteLot))
	s.srv = httptest.NewServer(s.record(mux))
	t.Cleanup(s.srv.Close)
	return s
}

// BaseURL includes the /api prefix.
func (s *Server) BaseURL() string { return s.srv.URL + "/api" }

// Client returns a client authenticated with the test token.
func (s *Server) Client(t testing.TB) *api.Client {
	t.Helper()
	c, err := api.New(api.Options{BaseURL: s.BaseURL(), Credentials: api.StaticToken(Token)})
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	return c
}

// AddItem seeds an item and returns it with its assigned id.
func (s *Server) AddItem(name, price string) model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := model.Item{ID: s.next, Name: name, Price: decimal.RequireFromString(price)}
	s.next++
	s.items = append(s.items, it)
	return it
}

// AddLot seeds a lot and returns it with its assigned id.
func (s *Server) AddLot(itemID int64, number string, qty int, expiry calendar.Date) model.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := model.Lot{ID: s.next, Number: number, Quantity: qty, ExpiryDate: expiry, ItemID: itemID}
	s.next++
	s.lots = append(s.lots, l)
	return l
}

func (s *Server) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

func (s *Server) Lots() []model.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Lot(nil), s.lots...)
}

// Calls returns the recorded requests in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallStrings is Calls rendered as "METHOD /path?query".
func (s *Server) CallStrings() []string {
	var out []string
	for _, c := range s.Calls() {
		out = append(out, c.String())
	}
	return out
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// FailNext makes the next request matching "METHOD /api/path" answer with code.
func (s *Server) FailNext(method, path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.fail[key] = append(s.fail[key], code)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(b)))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api"),
			Query:  r.URL.RawQuery,
			Body:   string(b),
			Auth:   r.Header.Get("Authorization"),
		})
		key := r.Method + " " + r.URL.Path
		var code int
		if q := s.fail[key]; len(q) > 0 {
			code = q[0]
			s.fail[key] = q[1:]
		}
		s.mu.Unlock()

		if code != 0 {
			writeJSON(w, code, map[string]string{"erro": http.StatusText(code)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"erro": "Token inválido ou expirado"})
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Username != Username || body.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"erro": "Usuário ou senha inválidos"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": Token})
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("name"))
	s.mu.Lock()
	out := []model.Item{}
	for _, it := range s.items {
		if q == "" || strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

type itemBody struct {
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

func (b itemBody) valid() bool { return b.Name != nil && b.Price != nil }

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var b itemBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || !b.valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"erro": "Dados inválidos ou ausentes"})
		return
	}
	s.AddItem(*b.Name, b.Price.String())
	writeJSON(w, http.StatusCreated, map[string]string{"mensagem": "Item adicionado com sucesso"})
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var b itemBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || !b.valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"erro": "Dados inválidos ou ausentes"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Name = *b.Name
			s.items[i].Price = *b.Price
			writeJSON(w, http.StatusOK, map[string]string{"mensagem": "Item atualizado com sucesso"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"erro": "Item não foi encontrado"})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"mensagem": "Item deletado com sucesso"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"erro": "Item não foi encontrado"})
}

type wireLot struct {
	ID         int64  `json:"id"`
	Number     string `json:"number"`
	Quantity   int    `json:"quantity"`
	ExpiryDate string `json:"expiry_date"`
	ItemID     int64  `json:"item_id"`
}

func (s *Server) listLots(w http.ResponseWriter, r *http.Request) {
	itemID, _ := pathID(r)
	s.mu.Lock()
	out := []wireLot{}
	for _, l := range s.lots {
		if l.ItemID != itemID {
			continue
		}
		exp := l.ExpiryDate.ISO()
		if s.HTTPDates {
			exp = l.ExpiryDate.Time(nil).Format(http.TimeFormat)
		}
		out = append(out, wireLot{ID: l.ID, Number: l.Number, Quantity: l.Quantity, ExpiryDate: exp, ItemID: l.ItemID})
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

type lotBody struct {
	Number     *string        `json:"number"`
	Quantity   *int           `json:"quantity"`
	ExpiryDate *calendar.Date `json:"expiry_date"`
	ItemID     *int64         `json:"item_id"`
}

func (b lotBody) valid() bool {
	return b.Number != nil && b.Quantity != nil && b.ExpiryDate != nil && !b.ExpiryDate.IsZero()
}

func (s *Server) createLot(w http.ResponseWriter, r *http.Request) {
	var b lotBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || !b.valid() || b.ItemID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"erro": "Dados inválidos ou ausentes"})
		return
	}
	s.AddLot(*b.ItemID, *b.Number, *b.Quantity, *b.ExpiryDate)
	writeJSON(w, http.StatusCreated, map[string]string{"mensagem": "Lote adicionado com sucesso"})
}

func (s *Server) updateLot(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var b lotBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || !b.valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"erro": "Dados inválidos ou ausentes"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lots {
		if s.lots[i].ID == id {
			s.lots[i].Number = *b.Number
			s.lots[i].Quantity = *b.Quantity
			s.lots[i].ExpiryDate = *b.ExpiryDate
			writeJSON(w, http.StatusOK, map[string]string{"mensagem": "Lote atualizado com sucesso"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"erro": "Lote não foi encontrado"})
}

func (s *Server) deleteLot(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lots {
		if s.lots[i].ID == id {
			s.lots = append(s.lots[:i], s.lots[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"mensagem": "Lote deletado com sucesso"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"erro": "Lote não foi encontrado"})
}
