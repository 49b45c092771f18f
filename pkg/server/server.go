// Package server implements MessagePack IPC for the completion engine.
package server

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Razdeep/autocomplete/pkg/config"
	"github.com/Razdeep/autocomplete/pkg/engine"
)

// Server handles completion requests over msgpack IPC on stdin/stdout.
type Server struct {
	eng        *engine.Engine
	limits     engine.Limits
	config     *config.Config
	configPath string

	// Reuse objects to prevent allocations. scratch is the engine's
	// per-query mutable state: this server processes one request at a
	// time on stdin, so a single Scratch suffices.
	scratch      *engine.Scratch
	decoder      *msgpack.Decoder
	writeMutex   sync.Mutex
	requestCount int64
}

// NewServer creates a server with configuration, backed by eng.
func NewServer(eng *engine.Engine, limits engine.Limits, cfg *config.Config, configPath string) *Server {
	server := &Server{
		eng:        eng,
		limits:     limits,
		config:     cfg,
		configPath: configPath,
		scratch:    engine.NewScratch(limits),
		decoder:    msgpack.NewDecoder(os.Stdin),
	}
	log.Debugf("Creating server with limits: %+v", limits)
	return server
}

// reloadConfig reloads configuration from TOML file
func (s *Server) reloadConfig() error {
	newConfig, err := config.LoadConfig(s.configPath)
	if err != nil {
		log.Warnf("Failed to reload config, keeping current: %v", err)
		return err
	}
	s.config = newConfig
	log.Debugf("Config reloaded from: %s", s.configPath)
	return nil
}

// Start begins listening for completion requests.
func (s *Server) Start() error {
	log.Debug("Starting MessagePack completion server")

	for {
		if err := s.processCompletionRequest(); err != nil {
			if err == io.EOF {
				log.Debug("Client disconnected")
				return nil
			}
			continue
		}
	}
}

// processCompletionRequest handles a single completion request.
func (s *Server) processCompletionRequest() error {
	// Only reload config every 100 requests to reduce filesystem load
	s.requestCount++
	if s.requestCount%100 == 0 {
		s.reloadConfig()
	}

	var request CompletionRequest
	log.Debug("Waiting for request...")
	if err := s.decoder.Decode(&request); err != nil {
		log.Debugf("Decode error: %v", err)
		return err
	}

	if request.Action == "get_stats" {
		return s.processStatsRequest(request.ID)
	}

	log.Debugf("Received completion request: query=%q, k=%d, mode=%s", request.Query, request.Limit, request.Mode)

	if request.Query == "" {
		return s.sendError(request.ID, "empty query", 400)
	}
	if len(request.Query) < s.config.Server.MinPrefix {
		return s.sendError(request.ID, fmt.Sprintf("query too short (min: %d)", s.config.Server.MinPrefix), 400)
	}
	if len(request.Query) > s.config.Server.MaxPrefix {
		return s.sendError(request.ID, fmt.Sprintf("query too long (max: %d)", s.config.Server.MaxPrefix), 400)
	}

	k := request.Limit
	if k <= 0 {
		k = s.limits.MaxK / 2 // reasonable default
	}
	if k > s.limits.MaxK {
		k = s.limits.MaxK
	}

	start := time.Now()
	results, err := s.runQuery(request.Query, k, request.Mode)
	elapsed := time.Since(start)

	if err != nil {
		return s.sendError(request.ID, err.Error(), 422)
	}

	completions := make([]CompletionResult, len(results))
	for i, r := range results {
		completions[i] = CompletionResult{Text: r.Text, DocID: r.DocID}
	}

	return s.sendResponse(&CompletionResponse{
		ID:          request.ID,
		Completions: completions,
		Count:       len(completions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// runQuery dispatches to one of the engine's three pipelines per the
// request's mode field.
func (s *Server) runQuery(query string, k int, mode string) ([]engine.Result, error) {
	switch mode {
	case "prefix":
		return s.eng.PrefixTopk(query, k, s.scratch)
	case "conjunctive":
		return s.eng.ConjunctiveTopk(query, k, s.scratch)
	default:
		return s.eng.Topk(query, k, s.scratch)
	}
}

// processStatsRequest answers a get_stats request with the loaded
// artifact's dimensions. The index is immutable after load, so stats are
// the only runtime introspection the server offers.
func (s *Server) processStatsRequest(id string) error {
	stats := s.eng.Stats()
	log.Debugf("Received get_stats request: n=%d, t=%d, v=%d", stats.NumCompletions, stats.NumTerms, stats.ArtifactVersion)
	return s.sendResponse(&StatsResponse{
		ID:              id,
		NumCompletions:  stats.NumCompletions,
		NumTerms:        stats.NumTerms,
		ArtifactVersion: stats.ArtifactVersion,
	})
}

// sendResponse encodes and sends MessagePack response to stdout atomically.
func (s *Server) sendResponse(response any) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	var buf bytes.Buffer
	encoder := msgpack.NewEncoder(&buf)
	if err := encoder.Encode(response); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	os.Stdout.Sync()
	return nil
}

// sendError sends MessagePack error response.
func (s *Server) sendError(id string, message string, code int) error {
	errorResponse := &CompletionError{
		ID:    id,
		Error: message,
		Code:  code,
	}
	return s.sendResponse(errorResponse)
}
