// Package outwriter renders records, startup status and the entity catalog.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRecords prints an entity collection using the configured output format.
func (ow *OutWriter) WriteRecords(entity schema.EntitySpec, records []schema.Record, cfg *contract.Config, duration time.Duration) error {
	return WriteRecordResults(entity, records, cfg, duration)
}

// WriteStatuses prints startup results using the configured output format.
func (ow *OutWriter) WriteStatuses(statuses []schema.ResourceStatus, cfg *contract.Config, duration time.Duration) error {
	return WriteStatusResults(statuses, cfg, duration)
}

// WriteEntities prints the entity catalog using the configured output format.
func (ow *OutWriter) WriteEntities(entities []schema.EntitySpec, cfg *contract.Config) error {
	return WriteEntityCatalog(entities, cfg)
}

// Fixed column budget for record tables: #, identity, code and name plus borders.
const (
	fixedRecordWidth = 60
	minDetailWidth   = 20
	maxDetailWidth   = 100
)

// getTerminalWidth returns the width override, the detected terminal width,
// or a conservative default.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxDetailWidth calculates how wide the free-form details column may be.
func getMaxDetailWidth(cfg *contract.Config) int {
	available := getTerminalWidth(cfg) - fixedRecordWidth
	return min(max(available, minDetailWidth), maxDetailWidth)
}
