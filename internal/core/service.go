package core

import (
	"bytes"
	"context"
	"errors"
	"time"
)

// DefaultPreviewRows is the number of rows captured per validation.
const DefaultPreviewRows = 10

// ServiceConfig tunes validation and conversion.
type ServiceConfig struct {
	PreviewRows          int   // rows captured in ValidationResult.PreviewRows
	SizeGateBytes        int64 // files at or above this size are not loaded
	MaxDecompressedBytes int64 // cap for .gz / .xz uploads and workbook archives
}

// DefaultServiceConfig returns the built-in limits.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PreviewRows:          DefaultPreviewRows,
		SizeGateBytes:        DefaultSizeGateBytes,
		MaxDecompressedBytes: DefaultMaxDecompressedBytes,
	}
}

// Service validates and converts uploaded files against the engine.
// It is safe for concurrent use; every call runs in its own session.
type Service struct {
	engine *Engine
	cfg    ServiceConfig
}

// NewService creates a Service on top of an open engine. Zero fields in cfg
// take their defaults.
func NewService(engine *Engine, cfg ServiceConfig) *Service {
	def := DefaultServiceConfig()
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = def.PreviewRows
	}
	if cfg.SizeGateBytes <= 0 {
		cfg.SizeGateBytes = def.SizeGateBytes
	}
	if cfg.MaxDecompressedBytes <= 0 {
		cfg.MaxDecompressedBytes = def.MaxDecompressedBytes
	}
	return &Service{engine: engine, cfg: cfg}
}

// Validate detects the format of an uploaded file, loads it into a scoped
// session and reports its schema and a bounded preview.
//
// Validate never returns a Go error: every failure is reported through
// ValidationResult.Error with IsValid false. An oversized file yields
// IsValid true with an advisory in Error.
func (svc *Service) Validate(ctx context.Context, req ValidateRequest) ValidationResult {
	start := time.Now()
	logger := loggerFrom(ctx).With("file", req.FileName, "bytes", len(req.Data))

	res := svc.validate(ctx, req)

	if res.IsValid {
		logger.Info("file validated",
			"format", res.Format.String(),
			"columns", res.ColumnCount,
			"preview_rows", res.PreviewRowCount,
			"advisory", res.Error,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		logger.Info("file rejected",
			"format", res.Format.String(),
			"code", res.Code,
			"error", res.Error,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return res
}

func (svc *Service) validate(ctx context.Context, req ValidateRequest) ValidationResult {
	byteLength := req.ByteLength
	if byteLength <= 0 {
		byteLength = int64(len(req.Data))
	}

	name, _ := innerName(req.FileName)
	format, ok := Detect(name, req.MIMEType)
	if !ok {
		return failedResult(FormatNone, unrecognizedFormat(req.FileName, req.MIMEType))
	}

	if !shouldFullyValidate(byteLength, svc.cfg.SizeGateBytes) {
		return sizeBypassResult(format, byteLength)
	}

	data, err := svc.prepare(req.Data, req.FileName, format)
	if err != nil {
		return failedResult(format, err)
	}
	// A small compressed upload can unpack past the gate.
	if !shouldFullyValidate(int64(len(data)), svc.cfg.SizeGateBytes) {
		return sizeBypassResult(format, int64(len(data)))
	}

	ld, _ := loaderFor(format, svc.cfg.MaxDecompressedBytes)

	var res ValidationResult
	err = svc.engine.WithSession(ctx, data, "upload."+format.String(), func(s *Session, path string) error {
		info, err := ld.load(ctx, s, loadInput{Path: path, Data: data}, func(rel Relation) error {
			shape, err := introspect(ctx, s, rel, svc.cfg.PreviewRows)
			if err != nil {
				return err
			}
			res = validResult(format, shape)
			return nil
		})
		if err != nil {
			return err
		}

		res.Tables = info.Tables
		if info.Advisory != "" {
			res.Error = info.Advisory
		}
		return nil
	})
	if err != nil {
		return failedResult(format, classify(ctx, format, err))
	}
	return res
}

// prepare unwraps compressed uploads and normalizes delimited text.
// Buffers with nothing but whitespace left are EmptyContent.
func (svc *Service) prepare(data []byte, fileName string, format LogicalFormat) ([]byte, error) {
	data, _, err := unwrapCompressed(data, fileName, svc.cfg.MaxDecompressedBytes)
	if err != nil {
		return nil, err
	}

	if format == FormatCSV {
		data, err = normalizeText(data)
		if err != nil {
			return nil, engineLoadError(validationOp(format), err)
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, emptyContent(validationOp(format), "file contains no data")
	}
	return data, nil
}

// classify gives unclassified failures the load error kind of the format
// being validated. Cancellation is left as is.
func classify(ctx context.Context, format LogicalFormat, err error) error {
	if KindOf(err) != 0 {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return engineLoadError(validationOp(format), err)
}

// validationOp names the load step for a format in error messages.
func validationOp(f LogicalFormat) string {
	if f == FormatEmbeddedDB {
		return "Database validation"
	}
	return f.Label() + " validation"
}

// validResult builds a successful result from an introspected relation.
func validResult(format LogicalFormat, shape tableShape) ValidationResult {
	return ValidationResult{
		IsValid:         true,
		Format:          format,
		ColumnNames:     shape.Names,
		ColumnTypes:     shape.Types,
		ColumnCount:     len(shape.Names),
		PreviewRowCount: len(shape.Rows),
		PreviewRows:     shape.Rows,
	}
}

// failedResult builds an invalid result carrying err's message and code.
func failedResult(format LogicalFormat, err error) ValidationResult {
	res := emptyResult(format)
	res.Error = err.Error()
	res.Code = MapError(err).Code
	return res
}

// Ping checks that the engine answers queries.
func (svc *Service) Ping(ctx context.Context) error {
	return svc.engine.Ping(ctx)
}
