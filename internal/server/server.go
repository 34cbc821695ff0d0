// Package server exposes the daemon's HTTP JSON API: profile resolution,
// active-profile matching, change-log queries and configuration
// snapshots. The API is read-mostly; the only writes are change-log
// recording and clearing, both serialized through one mutex together
// with their persistence.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"easyconfd/internal/changelog"
	"easyconfd/internal/exporter"
	"easyconfd/internal/linkparam"
	"easyconfd/internal/logging"
	"easyconfd/internal/metrics"
	"easyconfd/internal/paramset"
	"easyconfd/internal/profile"
	"easyconfd/internal/store"
)

// CatalogFunc returns the current profile catalog. The daemon passes the
// watcher's accessor so handlers always see the latest reload.
type CatalogFunc func() *profile.Catalog

// Options configures a Server.
type Options struct {
	Catalog CatalogFunc
	Log     *changelog.Log
	Store   *store.Store
	Logger  *logging.Logger
	Metrics *metrics.DaemonMetrics

	// Locale is the default locale for profile names and preset labels
	// when a request does not specify one.
	Locale string

	// ServeMetrics enables the /metrics endpoint.
	ServeMetrics bool
}

// Server handles the daemon API.
type Server struct {
	catalog      CatalogFunc
	logger       *logging.Logger
	metrics      *metrics.DaemonMetrics
	locale       string
	serveMetrics bool

	mu  sync.Mutex
	log *changelog.Log
	st  *store.Store
}

// New creates a Server. Store may be nil, in which case recorded entries
// live only in memory.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewDaemonMetrics(nil)
	}
	locale := opts.Locale
	if locale == "" {
		locale = profile.DefaultLocale
	}
	return &Server{
		catalog:      opts.Catalog,
		log:          opts.Log,
		st:           opts.Store,
		logger:       logger,
		metrics:      m,
		locale:       locale,
		serveMetrics: opts.ServeMetrics,
	}
}

// Handler returns the daemon's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/pairs", s.instrument(s.handlePairs))
	mux.HandleFunc("GET /api/v1/profiles", s.instrument(s.handleProfiles))
	mux.HandleFunc("POST /api/v1/match", s.instrument(s.handleMatch))
	mux.HandleFunc("GET /api/v1/presets", s.instrument(s.handlePresets))
	mux.HandleFunc("GET /api/v1/history", s.instrument(s.handleHistory))
	mux.HandleFunc("POST /api/v1/history", s.instrument(s.handleRecord))
	mux.HandleFunc("DELETE /api/v1/history/{entry}", s.instrument(s.handleClear))
	mux.HandleFunc("POST /api/v1/export", s.instrument(s.handleExport))
	mux.HandleFunc("POST /api/v1/import", s.instrument(s.handleImport))

	if s.serveMetrics {
		mux.Handle("GET /metrics", metrics.Default().HTTPHandler())
	}

	return mux
}

// instrument wraps a handler with request counting and timing.
func (s *Server) instrument(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := s.metrics.StartRequestTimer()
		defer timer.Stop()
		h(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.UpdateUptime()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	pairs := s.catalog().Pairs()
	type pairOut struct {
		Sender   string `json:"sender_channel_type"`
		Receiver string `json:"receiver_channel_type"`
	}
	out := make([]pairOut, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, pairOut{Sender: p.SenderChannelType, Receiver: p.ReceiverChannelType})
	}
	writeJSON(w, http.StatusOK, map[string]any{"pairs": out})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	receiver := r.URL.Query().Get("receiver")
	sender := r.URL.Query().Get("sender")
	if receiver == "" || sender == "" {
		s.writeError(w, http.StatusBadRequest, "receiver and sender query parameters are required")
		return
	}
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = s.locale
	}

	profiles, ok := s.catalog().GetProfiles(receiver, sender, locale)
	if !ok {
		s.writeError(w, http.StatusNotFound,
			fmt.Sprintf("no profiles defined for %s/%s", sender, receiver))
		return
	}
	s.metrics.ProfileResolutionsTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceiverChannelType string            `json:"receiver_channel_type"`
		SenderChannelType   string            `json:"sender_channel_type"`
		Values              paramset.ValueSet `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ReceiverChannelType == "" || req.SenderChannelType == "" {
		s.writeError(w, http.StatusBadRequest, "receiver_channel_type and sender_channel_type are required")
		return
	}

	id := s.catalog().MatchActiveProfile(req.ReceiverChannelType, req.SenderChannelType, req.Values)
	s.metrics.ProfileMatchesTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"profile_id": id,
		"expert":     id == profile.ExpertProfileID,
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	selector := linkparam.TimeSelectorType(r.URL.Query().Get("selector"))
	if selector == "" {
		s.writeError(w, http.StatusBadRequest, "selector query parameter is required")
		return
	}
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = s.locale
	}

	presets := linkparam.Presets(selector, locale)
	if len(presets) == 0 {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown selector type %q", selector))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": presets})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter := changelog.Filter{
		EntryID:        r.URL.Query().Get("entry"),
		ChannelAddress: r.URL.Query().Get("channel"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	s.mu.Lock()
	entries, total := s.log.GetEntries(filter)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "total": total})
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntryID        string              `json:"entry_id"`
		InterfaceID    string              `json:"interface_id"`
		ChannelAddress string              `json:"channel_address"`
		DeviceName     string              `json:"device_name"`
		DeviceModel    string              `json:"device_model"`
		ParamsetKey    string              `json:"paramset_key"`
		Changes        paramset.ChangeDiff `json:"changes"`
		Source         string              `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ChannelAddress == "" {
		s.writeError(w, http.StatusBadRequest, "channel_address is required")
		return
	}
	if req.EntryID == "" {
		req.EntryID = uuid.NewString()
	}

	s.mu.Lock()
	entry := s.log.Add(changelog.AddRequest{
		EntryID:        req.EntryID,
		InterfaceID:    req.InterfaceID,
		ChannelAddress: req.ChannelAddress,
		DeviceName:     req.DeviceName,
		DeviceModel:    req.DeviceModel,
		ParamsetKey:    req.ParamsetKey,
		Changes:        req.Changes,
		Source:         req.Source,
	})
	var persistErr error
	if s.st != nil {
		persistErr = s.st.SaveEntries(s.log.Entries())
	}
	size := s.log.Len()
	s.mu.Unlock()

	if persistErr != nil {
		s.logger.Error("persist change entry", "error", persistErr, "entry_id", entry.EntryID)
		s.writeError(w, http.StatusInternalServerError, "failed to persist entry")
		return
	}

	s.metrics.RecordChangeEntry()
	s.metrics.ChangeLogSize.Set(int64(size))
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	entryID := r.PathValue("entry")

	s.mu.Lock()
	removed := s.log.ClearByEntryID(entryID)
	var persistErr error
	if s.st != nil && removed > 0 {
		_, persistErr = s.st.DeleteByEntryID(entryID)
	}
	size := s.log.Len()
	s.mu.Unlock()

	if persistErr != nil {
		s.logger.Error("delete change entries", "error", persistErr, "entry_id", entryID)
		s.writeError(w, http.StatusInternalServerError, "failed to delete entries")
		return
	}

	s.metrics.ChangeLogSize.Set(int64(size))
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exporter.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	data, err := exporter.Export(req)
	if err != nil {
		s.logger.Error("export configuration", "error", err)
		s.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	cfg, err := exporter.Import(data)
	if err != nil {
		if errors.Is(err, exporter.ErrUnsupportedVersion) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.metrics.RequestErrorsTotal.Inc()
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
