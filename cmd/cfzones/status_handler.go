package main

import (
	"fmt"
	"io"

	"github.com/nebari-dev/cfzones/pkg/status"
)

var levelMarkers = map[status.Level]string{
	status.LevelInfo:     "*",
	status.LevelProgress: ">",
	status.LevelSuccess:  "+",
	status.LevelSkip:     "=",
	status.LevelWarning:  "!",
	status.LevelError:    "x",
}

// statusPrintHandler returns a status.Handler that prints one human-readable
// line per update. Structured records go through slog; this is the progress
// view for whoever is watching the terminal.
func statusPrintHandler(out io.Writer) status.Handler {
	return func(update status.Update) {
		marker, ok := levelMarkers[update.Level]
		if !ok {
			marker = "*"
		}

		prefix := ""
		switch {
		case update.Zone != "" && update.Step != "":
			prefix = fmt.Sprintf("[%s %s] ", update.Zone, update.Step)
		case update.Zone != "":
			prefix = fmt.Sprintf("[%s] ", update.Zone)
		}

		_, _ = fmt.Fprintf(out, "%s %s%s\n", marker, prefix, update.Message)
	}
}
