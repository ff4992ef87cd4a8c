// Package mockapi is an in-memory implementation of the service-center REST backend, used for
// local development and end-to-end tests.
package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/evcenter-admin/resources"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Record is a backend record as a generic JSON object.
type Record map[string]any

func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// RecordedRequest is what the mock saw of one request.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
}

type user struct {
	Name         string
	Email        string
	Role         string
	CenterID     string
	PasswordHash []byte
}

type failure struct {
	status  int
	message string
}

type Server struct {
	mux      *http.ServeMux
	secret   []byte
	tokenTTL time.Duration
	omitTTL  bool
	now      func() time.Time

	mu          sync.Mutex
	users       map[string]user
	collections map[string][]Record
	refresh     map[string]string // refresh token -> email
	requests    []RecordedRequest
	failures    map[string]failure // "METHOD collection" -> injected failure
}

type Option func(*Server)

// WithTokenTTL sets the lifetime of issued access tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithoutExpiresIn makes auth responses omit expiresIn, leaving only the token's exp claim.
func WithoutExpiresIn() Option {
	return func(s *Server) { s.omitTTL = true }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// Collections the mock serves.
var Collections = []string{
	resources.CollectionAppointments,
	resources.CollectionCustomers,
	resources.CollectionVehicles,
	resources.CollectionParts,
	resources.CollectionStaff,
	resources.CollectionShifts,
	resources.CollectionInvoices,
	resources.CollectionCenters,
}

func New(opts ...Option) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		secret:      []byte(uuid.NewString()),
		tokenTTL:    15 * time.Minute,
		now:         time.Now,
		users:       map[string]user{},
		collections: map[string][]Record{},
		refresh:     map[string]string{},
		failures:    map[string]failure{},
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, c := range Collections {
		s.collections[c] = []Record{}
	}

	s.mux.HandleFunc("POST /auth/login", s.login)
	s.mux.HandleFunc("POST /auth/refresh", s.refreshToken)
	s.mux.HandleFunc("GET /reports/summary", s.authed(s.summary))
	s.mux.HandleFunc("GET /{collection}", s.authed(s.list))
	s.mux.HandleFunc("POST /{collection}", s.authed(s.create))
	s.mux.HandleFunc("GET /{collection}/{id}", s.authed(s.get))
	s.mux.HandleFunc("PUT /{collection}/{id}", s.authed(s.update))
	s.mux.HandleFunc("DELETE /{collection}/{id}", s.authed(s.remove))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
	})
	s.mu.Unlock()
	s.mux.ServeHTTP(w, r)
}

// AddUser registers an account. The password is stored as a bcrypt hash.
func (s *Server) AddUser(name, email, password, role, centerID string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("[mockapi AddUser] hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(email)] = user{Name: name, Email: email, Role: role, CenterID: centerID, PasswordHash: hash}
	return nil
}

// Seed appends records to a collection, assigning ids where missing.
func (s *Server) Seed(collection string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if rec.ID() == "" {
			rec["id"] = uuid.NewString()
		}
		s.collections[collection] = append(s.collections[collection], rec)
	}
}

// FailNext makes the next request with method on collection fail with status and message.
func (s *Server) FailNext(method, collection string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+collection] = failure{status: status, message: message}
}

// Records returns a copy of a collection's records.
func (s *Server) Records(collection string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.collections[collection])
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// RequestsTo filters Requests by method and path.
func (s *Server) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// IssueToken signs an access token for email directly, bypassing the password check.
func (s *Server) IssueToken(email string, ttl time.Duration) (string, error) {
	claims := jwtlib.RegisteredClaims{
		Subject:   strings.ToLower(email),
		IssuedAt:  jwtlib.NewNumericDate(s.now()),
		ExpiresAt: jwtlib.NewNumericDate(s.now().Add(ttl)),
		ID:        uuid.NewString(),
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

// auth

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(in.Email))]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.writeTokens(w, u)
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	s.mu.Lock()
	email, ok := s.refresh[in.RefreshToken]
	delete(s.refresh, in.RefreshToken)
	u, known := s.users[email]
	s.mu.Unlock()
	if !ok || !known {
		writeError(w, http.StatusUnauthorized, "Refresh token is invalid or expired")
		return
	}
	s.writeTokens(w, u)
}

func (s *Server) writeTokens(w http.ResponseWriter, u user) {
	access, err := s.IssueToken(u.Email, s.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	refresh := uuid.NewString()
	s.mu.Lock()
	s.refresh[refresh] = strings.ToLower(u.Email)
	s.mu.Unlock()

	body := map[string]any{
		"accessToken":  access,
		"refreshToken": refresh,
		"user": map[string]any{
			"name":     u.Name,
			"email":    u.Email,
			"role":     u.Role,
			"centerId": u.CenterID,
		},
	}
	if !s.omitTTL {
		body["expiresIn"] = int64(s.tokenTTL.Seconds())
	}
	writeData(w, http.StatusOK, body)
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		claims := &jwtlib.RegisteredClaims{}
		_, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (any, error) { return s.secret, nil },
			jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
			jwtlib.WithTimeFunc(s.now),
		)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}
		next(w, r)
	}
}

// collections

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("collection")
	s.mu.Lock()
	_, ok := s.collections[name]
	f, failing := s.failures[r.Method+" "+name]
	delete(s.failures, r.Method+" "+name)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Unknown resource "+name)
		return "", false
	}
	if failing {
		writeError(w, f.status, f.message)
		return "", false
	}
	return name, true
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	name, ok := s.collection(w, r)
	if !ok {
		return
	}
	page := positive(r.URL.Query().Get("page"), 1)
	limit := positive(r.URL.Query().Get("limit"), 20)

	s.mu.Lock()
	all := s.collections[name]
	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))
	items := slices.Clone(all[start:end])
	total := len(all)
	s.mu.Unlock()

	writeData(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	name, ok := s.collection(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(name, r.PathValue("id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	writeData(w, http.StatusOK, s.collections[name][i])
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	name, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, err := decodeRecord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Malformed record")
		return
	}
	rec["id"] = uuid.NewString()

	s.mu.Lock()
	s.collections[name] = append([]Record{rec}, s.collections[name]...)
	s.mu.Unlock()
	writeData(w, http.StatusCreated, rec)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	name, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, err := decodeRecord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Malformed record")
		return
	}
	id := r.PathValue("id")
	rec["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(name, id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	s.collections[name][i] = rec
	writeData(w, http.StatusOK, rec)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	name, ok := s.collection(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(name, r.PathValue("id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	s.collections[name] = slices.Delete(s.collections[name], i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) indexOf(collection, id string) int {
	return slices.IndexFunc(s.collections[collection], func(rec Record) bool { return rec.ID() == id })
}

// decodeRecord accepts a bare record or one wrapped in {"data": ...}.
func decodeRecord(r *http.Request) (Record, error) {
	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		return nil, err
	}
	if inner, ok := rec["data"].(map[string]any); ok && len(rec) == 1 {
		rec = inner
	}
	if rec == nil {
		return nil, errors.New("empty record")
	}
	return rec, nil
}

func positive(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("mockapi: failed to write response")
	}
}
