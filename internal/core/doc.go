// Package core provides the file ingestion validator and converter.
//
// This package holds all domain logic independent of any transport layer. It
// can be used by web handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Registry: the ordered list of supported formats, used for detection
//     by file extension and then by MIME type.
//   - Engine: one embedded analytical database per process.
//   - Session: a dedicated engine connection that owns every virtual file,
//     temp relation and attached catalog created for one call.
//   - Loaders: one per format, turning an uploaded buffer into a queryable
//     relation.
//   - Service: the entry point for Validate and Convert.
//
// # Validation
//
// Validation never fails with a Go error. Every outcome, including an
// unsupported file, is a [ValidationResult]:
//
//  1. Compressed uploads (.gz, .xz) are unpacked with a size cap
//  2. The format is detected with [Detect]
//  3. Files at or above the size gate are accepted with an advisory
//  4. The buffer is registered as a virtual file and loaded into the engine
//  5. Column names, types and the first rows are read back
//
// # Conversion
//
// [Service.Convert] recasts the columns of a CSV file; output columns keep
// their source names. Other formats are returned unchanged. A value that cannot be cast fails the
// whole conversion with a [KindCastFailure] error naming the column and value.
//
// # Error Handling
//
// Failures are *[IngestError] values classified by [ErrorKind]. Messages are
// mapped to user-facing text with [MapError]; each category has a code:
//
//   - FMT001: unrecognized format
//   - LOAD001-LOAD006: the engine could not read the file
//   - EMPTY001: no sheets, rows or tables
//   - CAST001-CAST002: conversion failures
//   - SIZE001: large file advisory
//   - UPL002-UPL005: busy, cancelled or timed out
package core
