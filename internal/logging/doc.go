// Package logging provides opt-in file-based logging with rotation for
// mcp-memoria. When the --debug flag is set, comprehensive logs are
// written to ~/.mcp-memoria/logs/ for debugging and troubleshooting.
//
// In MCP server mode, stdout carries the JSON-RPC stream exclusively, so
// logging must go to file only, never to stdout or stderr.
package logging
