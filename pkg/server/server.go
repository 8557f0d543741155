package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/rank"
	charmlog "github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server answers ranking requests over a msgpack stream.
type Server struct {
	mu       sync.Mutex
	ranker   *rank.Ranker
	config   *config.Config
	requests int

	dec    *msgpack.Decoder
	writer io.Writer
	logger *charmlog.Logger
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(ranker *rank.Ranker, cfg *config.Config) *Server {
	return NewServerWithIO(ranker, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing
// responses to w. A nil cfg means config.DefaultConfig.
func NewServerWithIO(ranker *rank.Ranker, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		ranker: ranker,
		config: cfg,
		dec:    msgpack.NewDecoder(r),
		writer: w,
		logger: logger.New("server"),
	}
}

// Start signals readiness and serves requests until the input is exhausted.
// It returns nil at EOF and the error for any other read or write failure.
func (s *Server) Start() error {
	s.logger.Debug("Starting server")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed, stopping server")
				return nil
			}
			s.logger.Errorf("Reading request: %v", err)
			return err
		}
		if err := s.handleRequest(raw); err != nil {
			return err
		}
	}
}

// Stats returns a snapshot of the ranker and request count.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *Server) statsLocked() Stats {
	return Stats{
		Distinct:     s.ranker.Len(),
		Observations: s.ranker.Observations(),
		Backend:      s.ranker.Kind().String(),
		Requests:     s.requests,
		CacheHits:    s.ranker.CacheStats().Hits,
	}
}

// handleRequest decodes one raw message and writes exactly one response.
// Only write failures are returned.
func (s *Server) handleRequest(raw msgpack.RawMessage) error {
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.logger.Errorf("Unmarshaling request: %v", err)
		return s.sendError("", "Invalid msgpack request", 400)
	}

	s.mu.Lock()
	s.requests++
	resp := s.dispatchLocked(req)
	s.mu.Unlock()

	return s.send(resp)
}

func (s *Server) dispatchLocked(req Request) any {
	switch req.Action {
	case "observe":
		return s.handleObserve(req)
	case "top":
		return s.handleTop(req, false)
	case "drain":
		return s.handleTop(req, true)
	case "count":
		if req.Item == "" {
			return errorResponse(req.ID, "Missing 'item' parameter", 400)
		}
		return CountResponse{ID: req.ID, Item: req.Item, Count: s.ranker.Count(req.Item)}
	case "stats":
		return StatsResponse{ID: req.ID, Stats: s.statsLocked()}
	case "reset":
		s.ranker.Reset()
		return StatusResponse{ID: req.ID, Status: "ok"}
	case "health":
		return StatusResponse{ID: req.ID, Status: "ok"}
	case "":
		return errorResponse(req.ID, "Missing 'action' parameter", 400)
	default:
		return errorResponse(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

// handleObserve validates the whole batch before recording any of it.
func (s *Server) handleObserve(req Request) any {
	if len(req.Items) == 0 {
		return errorResponse(req.ID, "Missing 'items' parameter", 400)
	}
	if limit := s.config.Server.MaxBatch; len(req.Items) > limit {
		return errorResponse(req.ID, fmt.Sprintf("Batch of %d items exceeds maximum of %d", len(req.Items), limit), 400)
	}
	for i, item := range req.Items {
		if item == "" {
			return errorResponse(req.ID, fmt.Sprintf("Empty item at position %d", i), 400)
		}
	}

	for _, item := range req.Items {
		if err := s.ranker.Observe(item); err != nil {
			s.logger.Errorf("Observing %q: %v", item, err)
			return errorResponse(req.ID, "Internal server error", 500)
		}
	}
	return ObserveResponse{
		ID:       req.ID,
		Status:   "ok",
		Observed: len(req.Items),
		Distinct: s.ranker.Len(),
	}
}

func (s *Server) handleTop(req Request, drain bool) any {
	k := req.K
	switch {
	case k < 0:
		return errorResponse(req.ID, fmt.Sprintf("Invalid k: %d", k), 400)
	case k == 0:
		k = s.config.Rank.TopK
	case k > s.config.Rank.MaxK:
		s.logger.Debugf("Clamping k=%d to max_k=%d", k, s.config.Rank.MaxK)
		k = s.config.Rank.MaxK
	}
	if len(req.Prefix) > s.config.Server.MaxPrefix {
		return errorResponse(req.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", s.config.Server.MaxPrefix), 400)
	}
	if drain && req.Prefix != "" {
		return errorResponse(req.ID, "drain does not accept a prefix", 400)
	}

	start := time.Now()
	var (
		entries []rank.Entry
		err     error
	)
	if drain {
		entries, err = s.ranker.Drain(k)
	} else {
		entries, err = s.ranker.TopPrefix(req.Prefix, k)
	}
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Errorf("Ranking for %q: %v", req.ID, err)
		return errorResponse(req.ID, "Internal server error", 500)
	}
	s.logger.Debugf("Took [ %v ] for %s k=%d prefix=%q", elapsed, req.Action, k, req.Prefix)

	ranks := utils.CreateRankList(len(entries))
	items := make([]RankedItem, len(entries))
	for i, e := range entries {
		items[i] = RankedItem{Word: e.Item, Count: e.Count, Rank: ranks[i]}
	}
	return TopResponse{
		ID:        req.ID,
		Items:     items,
		Count:     len(items),
		TimeTaken: elapsed.Microseconds(),
	}
}

func errorResponse(id, message string, code int) ErrorResponse {
	return ErrorResponse{ID: id, Error: message, Code: code}
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(errorResponse(id, message, code))
}

// send encodes one response. A response that fails to encode is replaced by
// a 500 error; a failed write is returned.
func (s *Server) send(resp any) error {
	data, err := msgpack.Marshal(resp)
	if err != nil {
		s.logger.Errorf("Marshaling response: %v", err)
		data, err = msgpack.Marshal(errorResponse("", "Internal server error", 500))
		if err != nil {
			return err
		}
	}
	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
