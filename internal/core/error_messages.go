package core

// error_messages.go maps technical errors to messages shown to users.
//
// User-facing errors carry a code so a report can be matched to its cause.
// Codes are grouped by category:
//
// File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum size limit
//	          Action: Split the file into smaller files
//	          Patterns: "file too large"
//
//	FILE002 - Invalid spreadsheet: File could not be read as CSV or workbook
//	          Action: Export the sheet as CSV (comma or semicolon separated)
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File contains characters that could not be decoded
//	          Action: Save the file with UTF-8 encoding
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Select one or more CSV files
//	          Patterns: "no files provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Upload a file with at least one word pair
//	          Patterns: "empty file"
//
//	FILE006 - Unsupported file: Only CSV and .xlsx files can be converted
//	          Action: Export the sheet as CSV
//	          Patterns: "unsupported file type"
//
//	FILE007 - Mixed separators: Workbook cells contain both ";" and ","
//	          Action: Remove one of the characters from the cells named
//	          Patterns: "cells contain both separators"
//
// Conversion Errors (CONV001-CONV099)
//
//	CONV001 - Too many files: Batch exceeds the per-request file limit
//	          Patterns: "too many files"
//
//	CONV002 - Invalid separators: Separators are empty or identical
//	          Patterns: "invalid separators"
//
// Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy: Too many conversions in progress ("too many conversions")
//	UPL002 - Request cancelled ("context canceled")
//	UPL003 - Request timeout ("context deadline exceeded")
//
// History Errors (HIST001-HIST099)
//
//	HIST001 - Conversion not found ("conversion not found")
//	HIST002 - History disabled ("history disabled")
//
// Database Errors (DB001-DB099)
//
//	DB001 - Connection refused ("connection refused")
//	DB002 - Connection reset ("connection reset")
//	DB003 - Timeout ("timeout")
//
// Rate Limiting (RATE001)
//
//	RATE001 - Too many requests ("rate limit")
//
// Default Error (ERR000)
//
// Fallback when no pattern matches. Check application logs for the original
// technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: the first matching pattern wins.
var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File could not be read as a spreadsheet",
			Action:  "Export the sheet as CSV (comma or semicolon separated)",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains characters that could not be decoded",
			Action:  "Save the file with UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no files provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select one or more CSV files",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with at least one word pair",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Only CSV and .xlsx files can be converted",
			Action:  "Export the sheet as CSV",
			Code:    "FILE006",
		},
	},
	{
		pattern: "cells contain both separators",
		msg: UserMessage{
			Message: "Workbook cells contain both \";\" and \",\", so the columns cannot be told apart",
			Action:  "Remove one of the two characters from the cells named in the error",
			Code:    "FILE007",
		},
	},

	// Conversion errors
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Too many files in one request",
			Action:  "Convert the files in smaller batches",
			Code:    "CONV001",
		},
	},
	{
		pattern: "invalid separators",
		msg: UserMessage{
			Message: "Word/hint and pair separators must be different",
			Action:  "Check the separator settings",
			Code:    "CONV002",
		},
	},

	// Upload errors
	{
		pattern: "too many conversions",
		msg: UserMessage{
			Message: "System is busy converting other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try fewer or smaller files",
			Code:    "UPL003",
		},
	},

	// History errors
	{
		pattern: "conversion not found",
		msg: UserMessage{
			Message: "Conversion not found",
			Action:  "Check the conversion ID",
			Code:    "HIST001",
		},
	},
	{
		pattern: "history disabled",
		msg: UserMessage{
			Message: "Conversion history is not enabled",
			Action:  "Configure DATABASE_URL to keep a history",
			Code:    "HIST002",
		},
	},

	// Database errors
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when none matches.
//
// Example:
//
//	msg := MapError(fmt.Errorf("read file: %w", ErrFileTooLarge))
//	// msg.Code == "FILE001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
