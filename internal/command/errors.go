package command

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/messaging"
	"github.com/spf13/cobra"
)

// reportedError marks an error a command already wrote to stderr.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// ReportError writes err to w unless a command already printed it. Cobra's
// own argument, flag and unknown-command errors reach here unprinted.
func ReportError(w io.Writer, err error) {
	var reported *reportedError
	if err == nil || errors.As(err, &reported) {
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	switch {
	case isSchemaError(err):
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: This looks like a schema mismatch. Back up .quill/quill.db and run: quill init --force")
	case db.IsForeignKeyError(err):
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: a referenced user or message no longer exists; re-run after checking the ids")
	case errors.Is(err, messaging.ErrCorruptThread):
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: the reply graph contains a cycle; the stored data needs repair")
	}

	return &reportedError{err: err}
}

// isSchemaError checks if an error is a SQLite schema mismatch.
func isSchemaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "has no column")
}
