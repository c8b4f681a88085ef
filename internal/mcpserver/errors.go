package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcp-memoria/mcp-memoria/internal/merrors"
)

// Standard JSON-RPC error codes, plus custom codes for timeout/not-found.
const (
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
	ErrCodeTimeout        = -32001
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP protocol errors. MemoriaError
// values are mapped by category; context cancellation/deadline errors map
// to the timeout code; everything else is an internal error.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var me *merrors.MemoriaError
	if errors.As(err, &me) {
		return mapMemoriaError(me)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "request timed out"}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "request was canceled"}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "internal server error"}
	}
}

func mapMemoriaError(me *merrors.MemoriaError) *MCPError {
	switch me.Category {
	case merrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: me.Message}
	case merrors.CategoryEmbedder:
		return &MCPError{Code: ErrCodeInternalError, Message: me.Message}
	case merrors.CategoryStore:
		return &MCPError{Code: ErrCodeInternalError, Message: me.Message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: me.Message}
	}
}

// NewInvalidParamsError creates an error for invalid tool input.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for an unknown tool name.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("tool %q not found", name)}
}
