package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

// ReportError prints err and its suggestion to w and returns the exit code.
// Exit errors without an underlying error only carry a status and print nothing.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return errors.ExitSuccess
	}

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(w, color.RedString("Error: %v", err))
		}
		if exitErr.Suggestion != "" {
			fmt.Fprintln(w, color.YellowString("hint: %s", exitErr.Suggestion))
		}
		return exitErr.Code
	}

	fmt.Fprintln(w, color.RedString("Error: %v", err))
	return errors.ExitUser
}
