package tui

import (
	"fmt"
	"io"

	"github.com/lepinkainen/steamshelf/internal/library"
)

// WriteLibrary prints records as a plain list, one game per line.
func WriteLibrary(w io.Writer, records []library.GameRecord) error {
	for _, r := range records {
		_, err := fmt.Fprintf(w, "%-8d %-*s %5s %9s\n",
			r.AppID,
			defaultNameWidth, truncate(r.Name, defaultNameWidth),
			renderScore(r.Metacritic),
			formatPlaytime(r.PlaytimeForever))
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d games\n", len(records))
	return err
}
