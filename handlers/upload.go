package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/satheeshds/schemes/ingest"
)

const (
	modeDryRun = "dry_run"
	modeApply  = "apply"
)

// importMode reads ?mode=, defaulting to a dry run.
func importMode(r *http.Request) (string, bool) {
	switch m := r.URL.Query().Get("mode"); m {
	case "", modeDryRun:
		return modeDryRun, true
	case modeApply:
		return modeApply, true
	default:
		return m, false
	}
}

// readUpload parses the multipart "file" field into a table. On failure it
// writes the error response and returns ok=false.
func readUpload(w http.ResponseWriter, r *http.Request) (t *ingest.Table, fileName string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
			return nil, "", false
		}
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return nil, "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return nil, "", false
	}
	defer file.Close()

	t, err = ingest.ReadFile(header.Filename, file)
	if err != nil {
		writeIngestError(w, err)
		return nil, "", false
	}
	slog.Debug("upload parsed", "file", header.Filename, "rows", len(t.Rows))
	return t, header.Filename, true
}

// writeIngestError maps file-level failures to 422 and anything else to 500.
func writeIngestError(w http.ResponseWriter, err error) {
	var structErr *ingest.StructuralError
	var sizeErr *ingest.SizeLimitError
	if errors.As(err, &structErr) || errors.As(err, &sizeErr) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
