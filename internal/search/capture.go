package search

import (
	"bytes"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chemsearch/internal/molparse"
)

// CaptureParser converts connection-table text into molecular graphs while
// collecting, per input value, the warnings the parser emits on its global
// log channel.
//
// The parser library reports irregularities through a process-wide logger
// rather than inline. CaptureParser redirects that channel into a private
// buffer for the duration of a batch and drains and resets the buffer after
// every single parse call; skipping the reset would bleed one row's
// diagnostics into the next. The buffer is single-batch state: a
// CaptureParser must not be shared across concurrent batches.
type CaptureParser struct {
	buf    bytes.Buffer
	logger *zap.Logger
	cache  map[uint64]parsed
}

// parsed is one cache entry: identical connection tables yield identical
// graphs and identical diagnostics, so repeated payloads parse once.
type parsed struct {
	mol  *molparse.Molecule
	diag string
}

// NewCaptureParser builds a parser whose capture logger writes compact
// level+message lines into the internal buffer. Timestamps are omitted so
// diagnostics are stable row data.
func NewCaptureParser() *CaptureParser {
	p := &CaptureParser{cache: map[uint64]parsed{}}

	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	})
	p.logger = zap.New(zapcore.NewCore(enc, zapcore.AddSync(&p.buf), zap.WarnLevel))
	return p
}

// ParseAll parses each connection-table value and returns same-length slices
// of graphs and diagnostic texts, row-aligned with the input. A value that
// fails to parse contributes a nil graph and a non-empty diagnostic; parse
// problems never propagate as errors.
func (p *CaptureParser) ParseAll(values []string) ([]*molparse.Molecule, []string) {
	prev := molparse.SetLogger(p.logger)
	defer molparse.SetLogger(prev)

	mols := make([]*molparse.Molecule, 0, len(values))
	diags := make([]string, 0, len(values))
	for _, v := range values {
		key := xxh3.HashString(v)
		if hit, ok := p.cache[key]; ok {
			mols = append(mols, hit.mol)
			diags = append(diags, hit.diag)
			continue
		}

		mol, err := molparse.Parse(v)
		_ = p.logger.Sync()
		diag := p.buf.String()
		p.buf.Reset()
		if err != nil {
			diag += err.Error() + "\n"
		}

		p.cache[key] = parsed{mol: mol, diag: diag}
		mols = append(mols, mol)
		diags = append(diags, diag)
	}
	return mols, diags
}
