package cmd

import (
	"fmt"
	"strings"

	sgerrors "github.com/sitegrade/sitegrade-cli/internal/shared/errors"
)

// UnknownCategoryError indicates a --skip value that matches no category.
// It unwraps to sgerrors.ErrUnknownCategory.
type UnknownCategoryError struct {
	Name  string
	Known []string
}

func (e *UnknownCategoryError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown category %q", e.Name)
	}
	return fmt.Sprintf("unknown category %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownCategoryError) Unwrap() error { return sgerrors.ErrUnknownCategory }

// UnknownFormatError indicates an output format the renderer does not support.
// It unwraps to sgerrors.ErrUnknownFormat.
type UnknownFormatError struct {
	Format    string
	Supported []string
}

func (e *UnknownFormatError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unknown output format %q", e.Format)
	}
	return fmt.Sprintf("unknown output format %q (supported: %s)", e.Format, strings.Join(e.Supported, ", "))
}

func (e *UnknownFormatError) Unwrap() error { return sgerrors.ErrUnknownFormat }
