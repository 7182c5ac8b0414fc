// Package batch converts CSV files of points concurrently.
package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pspoerri/lsgconv/internal/convert"
)

// Converter is the part of *convert.Converter a batch needs.
type Converter interface {
	Convert(req convert.Request) (convert.Result, error)
}

// Config holds batch settings.
type Config struct {
	// Mode applies to every row. When zero each row must carry a mode column.
	Mode        convert.Mode
	Concurrency int
	// Progress receives a progress bar when non-nil, typically os.Stderr.
	Progress io.Writer
	Logger   *zap.Logger
}

// Stats holds batch statistics.
type Stats struct {
	Rows      int
	Converted int
	Failed    int
}

// ErrColumn is the name of the output column carrying per-row failures.
const ErrColumn = "error"

var columnAliases = map[string]string{
	"mode":      "mode",
	"x":         "x",
	"easting":   "x",
	"lat":       "x",
	"latitude":  "x",
	"y":         "y",
	"northing":  "y",
	"lon":       "y",
	"longitude": "y",
	"h":         "h",
	"height":    "h",
}

type columns struct {
	mode, x, y, h int
}

type row struct {
	fields []string
	result convert.Result
	err    error
}

// Run reads points from in, converts them with conv and writes the input
// columns followed by the converted values to out, preserving row order. A row
// that fails to parse or convert is written with an empty result and its error
// in the error column; the batch continues. Run stops early only when ctx is
// cancelled or the input is not valid CSV.
func Run(ctx context.Context, cfg Config, conv Converter, in io.Reader, out io.Writer) (Stats, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Stats{}, errors.New("batch: input has no header")
	}
	if err != nil {
		return Stats{}, fmt.Errorf("batch: reading header: %w", err)
	}
	cols, err := mapColumns(header, cfg.Mode)
	if err != nil {
		return Stats{}, err
	}

	var rows []*row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Stats{}, fmt.Errorf("batch: reading input: %w", err)
		}
		rows = append(rows, &row{fields: rec})
	}
	logger.Info("batch started", zap.Int("rows", len(rows)), zap.Int("concurrency", cfg.Concurrency))

	var pb *progressBar
	if cfg.Progress != nil && len(rows) > 0 {
		pb = newProgressBar(cfg.Progress, "Converting", int64(len(rows)))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for _, r := range rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.result, r.err = convertRow(conv, cfg.Mode, cols, r.fields)
			if pb != nil {
				pb.Done(r.err != nil)
			}
			return nil
		})
	}
	werr := g.Wait()
	if pb != nil {
		pb.Finish()
	}
	if werr == nil {
		werr = ctx.Err()
	}
	if werr != nil {
		return Stats{Rows: len(rows)}, fmt.Errorf("batch: %w", werr)
	}

	st := Stats{Rows: len(rows)}
	cw := csv.NewWriter(out)
	if err := cw.Write(outputHeader(header)); err != nil {
		return st, fmt.Errorf("batch: writing output: %w", err)
	}
	blank := make([]string, len(convert.Columns))
	for _, r := range rows {
		rec := append([]string(nil), r.fields...)
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		rec = rec[:len(header)]
		if r.err != nil {
			st.Failed++
			rec = append(append(rec, blank...), r.err.Error())
		} else {
			st.Converted++
			rec = append(append(rec, r.result.Fields()...), "")
		}
		if err := cw.Write(rec); err != nil {
			return st, fmt.Errorf("batch: writing output: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return st, fmt.Errorf("batch: writing output: %w", err)
	}

	logger.Info("batch finished",
		zap.Int("rows", st.Rows), zap.Int("converted", st.Converted), zap.Int("failed", st.Failed))
	return st, nil
}

func mapColumns(header []string, mode convert.Mode) (columns, error) {
	cols := columns{mode: -1, x: -1, y: -1, h: -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch columnAliases[name] {
		case "mode":
			cols.mode = i
		case "x":
			cols.x = i
		case "y":
			cols.y = i
		case "h":
			cols.h = i
		}
	}
	switch {
	case cols.x < 0 || cols.y < 0:
		return cols, fmt.Errorf("batch: header needs x and y columns, got %q", header)
	case mode == 0 && cols.mode < 0:
		return cols, errors.New("batch: no mode given and the input has no mode column")
	}
	return cols, nil
}

func convertRow(conv Converter, mode convert.Mode, cols columns, fields []string) (convert.Result, error) {
	get := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	m := mode.String()
	if cols.mode >= 0 && strings.TrimSpace(get(cols.mode)) != "" {
		m = get(cols.mode)
	}
	req, err := convert.ParseRequest(m, get(cols.x), get(cols.y), get(cols.h))
	if err != nil {
		return convert.Result{}, err
	}
	return conv.Convert(req)
}

func outputHeader(in []string) []string {
	h := append([]string(nil), in...)
	h = append(h, convert.Columns...)
	return append(h, ErrColumn)
}
