// Package io reads and writes the files the CLI and the HTTP server work
// with: chart sources, exported results and edit patches.
//
// # Chart Files
//
// [ReadSource] loads a chart and checks it with [errors.ValidateSource].
// [WriteSource] replaces a chart through a temporary file in the same
// directory, so a crash never leaves a half-written chart behind.
//
// # Export
//
// [Write] encodes any value as JSON or YAML:
//
//	err := io.Write(os.Stdout, pipeline.FormatYAML, result)
//
// JSON output is indented by two spaces. YAML output uses the yaml struct
// tags of the engine types, which mirror the JSON names.
//
// # Patches
//
// Task edits arrive as small JSON documents. [DecodeUpdate] and
// [DecodeNewTask] validate them against embedded JSON schemas before
// decoding:
//
//	{"startDate": "2024-03-01", "assignee": "alice"}
//
// Unknown fields, malformed dates and out-of-range numbers are rejected
// with an [errors.ErrCodeInvalidPatch] error whose cause is a
// [*SchemaError] listing every problem.
//
// [errors.ValidateSource]: github.com/matzehuels/ganttsync/pkg/errors.ValidateSource
// [errors.ErrCodeInvalidPatch]: github.com/matzehuels/ganttsync/pkg/errors.ErrCodeInvalidPatch
package io
