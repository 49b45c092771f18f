// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Razdeep/autocomplete/internal/logger"
	"github.com/Razdeep/autocomplete/internal/utils"
	"github.com/Razdeep/autocomplete/pkg/engine"
)

// Mode selects which of the engine's three pipelines the CLI drives.
type Mode int

const (
	ModeTopk Mode = iota
	ModePrefix
	ModeConjunctive
)

// InputHandler processes user input from stdin, providing completions
// through the engine. It accepts flags to control behavior such as
// minimum and maximum query length, result limits, and input filtering.
type InputHandler struct {
	eng             *engine.Engine
	scratch         *engine.Scratch
	out             *log.Logger
	mode            Mode
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	requestCount    int
	noFilter        bool
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(eng *engine.Engine, limits engine.Limits, mode Mode, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		eng:             eng,
		scratch:         engine.NewScratch(limits),
		out:             logger.Default(""),
		mode:            mode,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to the handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	h.out.Print("WordServe CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	h.out.Print("type a query and press Enter to see the completions (Ctrl+C to exit):")

	for {
		h.out.Print("> ")
		query, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		query = strings.TrimRight(query, "\n")
		if strings.TrimSpace(query) == "" {
			continue
		}
		h.handleInput(query)
	}
}

// handleInput processes a single query to generate completions.
// It validates the query's length and content, then asks the engine for
// results. Results are formatted and printed to the log.
func (h *InputHandler) handleInput(query string) {
	h.requestCount++

	if len(query) < h.minPrefixLength {
		log.Errorf("Query too short: %s", query)
		return
	}

	if len(query) > h.maxPrefixLength {
		log.Errorf("Query too long: %s", query)
		return
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter {
		if !utils.IsValidInput(strings.TrimSpace(query)) {
			log.Infof("No results found for query: '%s'", query)
			return
		}
	} else {
		log.Debug("Input filtering disabled - indexed all entries")
	}

	start := time.Now()
	log.Debug("Processing request for", "query", query, "mode", h.mode)

	results, err := h.run(query)

	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if err != nil {
		log.Errorf("Query rejected: %v", err)
		return
	}
	if len(results) == 0 {
		log.Warnf("No completions found for query: '%s'", query)
		return
	}

	h.out.Printf("Found %d completions for query '%s':", len(results), query)
	for i, r := range results {
		clText := fmt.Sprintf("\033[38;5;75m%s\033[0m", r.Text)
		h.out.Printf("%2d. %-40s (doc_id: %8s)", i+1, clText, utils.FormatWithCommas(r.DocID))
	}
}

// run dispatches to the pipeline selected by h.mode.
func (h *InputHandler) run(query string) ([]engine.Result, error) {
	switch h.mode {
	case ModePrefix:
		return h.eng.PrefixTopk(query, h.suggestLimit, h.scratch)
	case ModeConjunctive:
		return h.eng.ConjunctiveTopk(query, h.suggestLimit, h.scratch)
	default:
		return h.eng.Topk(query, h.suggestLimit, h.scratch)
	}
}
