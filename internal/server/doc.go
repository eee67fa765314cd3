// Package server implements the MCP (Model Context Protocol) server for the
// document tools.
//
// This package provides a JSON-RPC 2.0 server that exposes image editing,
// document reading and export through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Images:
//   - image_load: Decode an image and report its metadata
//   - image_edit: One-shot rotate, colour adjust and crop
//
// Editor sessions (the interactive crop/rotate/adjust editor):
//   - editor_open, editor_state, editor_close
//   - editor_rotate, editor_adjust, editor_reset
//   - editor_crop_mode, editor_pointer, editor_viewport, editor_suggest_crop
//   - editor_save: Apply the edits and adopt the result
//
// Document tasks (need an AI capability):
//   - document_ocr, document_transcribe_handwriting
//   - document_extract_table, document_extract_fields
//   - document_remove_handwriting
//
// Exports (written to the configured output directory):
//   - export_pdf, export_word, export_csv
//
// Tools that take an image accept a file path, inline base64 or, where
// noted, the session_id of an open editor.
//
// # Image Caching
//
// Images loaded by path are cached by path and reused across tool calls.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Unknown tools and malformed arguments return -32602. Tool execution
// errors return -32000 with data {"kind", "error"}, where kind is one of
// decode, export, capability, editor, invalid or internal. A failed call
// leaves sessions and files as they were.
//
// # Usage
//
//	srv := server.New(server.Options{Capability: c, Logger: log})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal("server error", zap.Error(err))
//	}
package server
