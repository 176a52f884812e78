package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/lox/rangebook/internal/cash"
	"github.com/lox/rangebook/internal/display"
	"github.com/lox/rangebook/internal/rangestore"
	"github.com/lox/rangebook/internal/ranges"
	"github.com/lox/rangebook/internal/storage"
	"github.com/lox/rangebook/poker"
)

const maxBodyBytes = 8 << 20

type roleInfo struct {
	Role     cash.Role `json:"role"`
	Optional bool      `json:"optional"`
}

type actionInfo struct {
	Action   cash.Action `json:"action"`
	Priority int         `json:"priority"`
	Color    cash.Color  `json:"color"`
}

type sequenceInfo struct {
	Sequence cash.Sequence `json:"sequence"`
	Abbrev   string        `json:"abbrev"`
	Title    string        `json:"title"`
	Roles    []roleInfo    `json:"roles"`
	Actions  []actionInfo  `json:"actions"`
	Default  cash.Config   `json:"default"`
}

type resolveRequest struct {
	Positions cash.Positions `json:"positions"`
	Role      string         `json:"role"`
	Position  string         `json:"position"`
}

type saveRequest struct {
	Name  string        `json:"name"`
	Hands ranges.Matrix `json:"hands"`
}

type combosResponse struct {
	Config       cash.Config    `json:"config"`
	Dead         string         `json:"dead,omitempty"`
	Combinations float64        `json:"combinations"`
	Combos       []ranges.Combo `json:"combos"`
}

type statsResponse struct {
	Config cash.Config    `json:"config"`
	Stats  ranges.Stats   `json:"stats"`
	Cells  []display.Cell `json:"cells"`
}

func (s *Server) handleSequences(w http.ResponseWriter, r *http.Request) {
	out := make([]sequenceInfo, 0, len(cash.Sequences))
	for _, seq := range cash.Sequences {
		info := sequenceInfo{Sequence: seq, Abbrev: seq.Abbrev(), Title: seq.Title()}
		for _, role := range seq.Roles() {
			info.Roles = append(info.Roles, roleInfo{Role: role, Optional: cash.Optional(seq, role)})
		}
		for _, a := range seq.Actions() {
			info.Actions = append(info.Actions, actionInfo{Action: a, Priority: cash.PriorityOf(a), Color: cash.ColorOf(a)})
		}
		info.Default, _ = cash.DefaultConfig(seq)
		out = append(out, info)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleOptions lists the legal seats for ?role= given the other roles
// passed as query parameters.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	seq, err := cash.ParseSequence(chi.URLParam(r, "sequence"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	q := r.URL.Query()
	role := seq.ResolveRole(q.Get("role"))
	q.Del("role")

	cfg, err := configFromQuery(seq, q)
	if err == nil {
		cfg, err = cash.Normalize(cfg)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := cash.Options(seq, role, cfg.Positions)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts == nil {
		opts = []cash.Position{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"role":     role,
		"optional": cash.Optional(seq, role),
		"options":  opts,
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	seq, err := cash.ParseSequence(chi.URLParam(r, "sequence"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req resolveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := cash.Normalize(cash.Config{Sequence: seq, Positions: req.Positions})
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	pos := cash.NoPosition
	if req.Position != "" {
		if pos, err = cash.ParsePosition(req.Position); err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	resolved, err := cash.SetRole(cfg, seq.ResolveRole(req.Role), pos)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"config": resolved,
		"key":    cash.DeriveKey(resolved),
		"name":   cash.DeriveName(resolved),
		"valid":  resolved.Validate() == nil,
	})
}

func (s *Server) handleListRanges(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.repo.Export(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="cash-ranges.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.repo.Import(r.Context(), data)
	if errors.Is(err, rangestore.ErrNotInitialized) {
		s.writeStoreError(w, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	report, err := s.repo.Reconcile(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLoadRange(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.rangeConfig(w, r)
	if !ok {
		return
	}
	cr, err := s.repo.LoadOrEmpty(r.Context(), cfg)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cr)
}

func (s *Server) handleSaveRange(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.rangeConfig(w, r)
	if !ok {
		return
	}
	var req saveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.repo.Save(r.Context(), cfg, req.Name, req.Hands)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteRange(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.rangeConfig(w, r)
	if !ok {
		return
	}
	existed, err := s.repo.Delete(r.Context(), cfg)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": existed})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.rangeConfig(w, r)
	if !ok {
		return
	}
	cr, err := s.repo.LoadOrEmpty(r.Context(), cfg)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statsResponse{
		Config: cr.Config(),
		Stats:  ranges.ComputeStats(cr.Hands, cr.Sequence.Actions()),
		Cells:  display.BlendAll(cr.Hands),
	})
}

// handleCombos lists the concrete holdings of a range. Cards named in
// ?dead=AsKd are removed from the list and the live count.
func (s *Server) handleCombos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deadParam := q.Get("dead")
	q.Del("dead")

	dead, err := poker.ParseCards(deadParam)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, ok := s.rangeConfigFrom(w, r, q)
	if !ok {
		return
	}
	cr, err := s.repo.LoadOrEmpty(r.Context(), cfg)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	combos := ranges.ExpandCombos(cr.Hands, dead)
	if combos == nil {
		combos = []ranges.Combo{}
	}
	resp := combosResponse{
		Config:       cr.Config(),
		Combinations: ranges.LiveCombinations(cr.Hands, dead),
		Combos:       combos,
	}
	if dead != 0 {
		resp.Dead = dead.String()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// rangeConfig reads the sequence from the path and role seats from the
// query string, e.g. /api/ranges/3BET?hero=BTN&opponent=CO.
func (s *Server) rangeConfig(w http.ResponseWriter, r *http.Request) (cash.Config, bool) {
	return s.rangeConfigFrom(w, r, r.URL.Query())
}

func (s *Server) rangeConfigFrom(w http.ResponseWriter, r *http.Request, q url.Values) (cash.Config, bool) {
	seq, err := cash.ParseSequence(chi.URLParam(r, "sequence"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return cash.Config{}, false
	}
	cfg, err := configFromQuery(seq, q)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return cash.Config{}, false
	}
	return cfg, true
}

// configFromQuery builds a config from role=position query parameters.
// Roles are added in the sequence's acting order, then any other names
// (legacy aliases or unknown roles) in sorted order so Normalize and
// Validate can judge them.
func configFromQuery(seq cash.Sequence, q url.Values) (cash.Config, error) {
	cfg := cash.Config{Sequence: seq}
	used := make(map[string]bool, len(q))

	add := func(name string) error {
		if used[name] {
			return nil
		}
		used[name] = true
		values := q[name]
		if len(values) > 1 {
			return fmt.Errorf("role %s given %d times", name, len(values))
		}
		cfg.Positions = cfg.Positions.With(cash.Role(name), cash.Position(values[0]))
		return nil
	}

	for _, role := range seq.Roles() {
		if _, ok := q[string(role)]; ok {
			if err := add(string(role)); err != nil {
				return cash.Config{}, err
			}
		}
	}
	rest := make([]string, 0, len(q))
	for name := range q {
		rest = append(rest, name)
	}
	slices.Sort(rest)
	for _, name := range rest {
		if err := add(name); err != nil {
			return cash.Config{}, err
		}
	}
	return cfg, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var verr *cash.ValidationError
	switch {
	case errors.Is(err, rangestore.ErrNotInitialized):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, rangestore.ErrInvalidConfig), errors.Is(err, rangestore.ErrInvalidHands), errors.As(err, &verr):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("Request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
