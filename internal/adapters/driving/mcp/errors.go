// Package mcp provides an MCP (Model Context Protocol) server adapter for ragdocs.
// It lets AI assistants ask questions over the indexed documentation and
// retrieve the passages answers are grounded on.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
