package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// Errors
var (
	ErrReportNotFound = errors.New("report not found")
	ErrBadFormat      = errors.New("unsupported output format")
)

// Output formats accepted by the renderer.
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// Config holds file renderer configuration.
type Config struct {
	Dir          string // Directory holding generated report files
	OutputFormat string // "html" or "pdf" (default: html)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Dir:          "output/reports",
		OutputFormat: FormatHTML,
	}
}

// FileRenderer resolves report IDs against generated files on disk.
type FileRenderer struct {
	cfg    Config
	logger *slog.Logger
}

// NewFileRenderer creates a file renderer. Returns an error when the
// configured output format is not supported.
func NewFileRenderer(cfg Config, logger *slog.Logger) (*FileRenderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		cfg.Dir = DefaultConfig().Dir
	}
	switch cfg.OutputFormat {
	case "":
		cfg.OutputFormat = FormatHTML
	case FormatHTML, FormatPDF:
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadFormat, cfg.OutputFormat)
	}
	return &FileRenderer{cfg: cfg, logger: logger}, nil
}

// RenderReport locates the generated file for reportID and returns its
// path. Matching is by ID substring on the file basename; when several
// files match, the lexicographically first wins so repeated calls are
// deterministic. For PDF output the HTML path is mapped to its sibling
// .pdf path.
func (r *FileRenderer) RenderReport(ctx context.Context, reportID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if reportID == "" {
		return "", fmt.Errorf("%w: empty report id", ErrReportNotFound)
	}

	matches, err := filepath.Glob(filepath.Join(r.cfg.Dir, "*.html"))
	if err != nil {
		return "", fmt.Errorf("scanning report directory: %w", err)
	}

	var found []string
	for _, m := range matches {
		if strings.Contains(filepath.Base(m), reportID) {
			found = append(found, m)
		}
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w: %s", ErrReportNotFound, reportID)
	}
	sort.Strings(found)
	path := found[0]

	if r.cfg.OutputFormat == FormatPDF {
		path = strings.TrimSuffix(path, ".html") + ".pdf"
	}

	r.logger.Debug("report resolved",
		"report_id", reportID,
		"path", path,
		"format", r.cfg.OutputFormat,
	)
	return path, nil
}
