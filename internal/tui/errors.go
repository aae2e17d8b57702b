package tui

import (
	"errors"
	"fmt"

	"github.com/zhycn/batool/internal/catalog"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// userMessage renders err for the status bar.
func userMessage(err error) (string, StatusKind) {
	switch {
	case err == nil:
		return "", StatusInfo
	case errors.Is(err, catalog.ErrNotModified):
		return MsgUpToDate, StatusInfo
	case errors.Is(err, catalog.ErrDuplicateName):
		return "✗ " + err.Error(), StatusWarn
	default:
		return "✗ " + err.Error(), StatusError
	}
}
