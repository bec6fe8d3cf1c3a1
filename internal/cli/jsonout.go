package cli

import (
	"fmt"
	"io"

	"github.com/devaiflow/daf/internal/jsonutil"
)

// printJSON writes v to w as indented JSON, matching the rest of the repo's
// on-disk JSON formatting convention.
func printJSON(w io.Writer, v any) error {
	data, err := jsonutil.MarshalIndentWithNewline(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	_, err = w.Write(data)
	return err
}
