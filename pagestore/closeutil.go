package pagestore

import (
	"log/slog"
	"os"
)

// closeFile closes f and logs any error. Used for file handles closed via
// defer where the error has nowhere useful to propagate to.
func closeFile(f *os.File) {
	if err := f.Close(); err != nil {
		slog.Error("pagestore: close file", "error", err)
	}
}
