package web

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/csvtotext/internal/core"
	"github.com/JonMunkholm/csvtotext/internal/logging"
)

// multipartMemory is how much of a multipart form is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// convertResponse is a Batch plus the text ready to paste into the field.
type convertResponse struct {
	*core.Batch
	Text   string `json:"text"`
	Report string `json:"report"`
}

// handleConvert converts uploaded spreadsheets into canonical lines.
//
// Files are sent as multipart field "files" (or "file"). An optional form
// field "existing" holds text already in the target field; the converted
// lines are appended to it in the returned text.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	maxFiles := int64(s.cfg.Conversion.MaxFiles)
	maxBody := s.cfg.Conversion.MaxFileSize*maxFiles + multipartMemory
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		err = bodyError(err)
		respondError(w, r, err, statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		respondError(w, r, core.ErrNoFiles, http.StatusBadRequest)
		return
	}
	if len(headers) > s.cfg.Conversion.MaxFiles {
		err := fmt.Errorf("%w: %d files, limit is %d", core.ErrTooManyFiles, len(headers), s.cfg.Conversion.MaxFiles)
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	files := make([]core.SourceFile, 0, len(headers))
	for _, fh := range headers {
		file, err := readFormFile(fh, s.cfg.Conversion.MaxFileSize)
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
		files = append(files, file)
	}

	ctx := WithRequestMetadata(r.Context(), r)
	batch, err := s.service.ConvertFiles(ctx, files)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(ctx).Debug("convert response",
		"conversion_id", batch.ID,
		"lines", len(batch.Lines),
	)

	writeJSON(w, http.StatusOK, convertResponse{
		Batch:  batch,
		Text:   core.AppendLines(r.FormValue("existing"), batch.Lines),
		Report: batch.Report(),
	})
}

// readFormFile reads one uploaded file. A file over limit fails the whole
// request with ErrFileTooLarge.
func readFormFile(fh *multipart.FileHeader, limit int64) (core.SourceFile, error) {
	f, err := fh.Open()
	if err != nil {
		return core.SourceFile{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return core.ReadSource(fh.Filename, f, limit)
}

// normalizeResponse is the result of converting pasted text.
type normalizeResponse struct {
	Delimiter   core.Delimiter    `json:"delimiter"`
	Lines       []string          `json:"lines"`
	InvalidRows []core.InvalidRow `json:"invalid_rows"`
	Report      string            `json:"report"`
	Text        string            `json:"text"`
}

// handleNormalize converts pasted CSV text.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	req, err := s.readTextRequest(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	result := s.service.Normalize(req.Text)
	invalid := result.Errors
	if invalid == nil {
		invalid = []core.InvalidRow{}
	}

	writeJSON(w, http.StatusOK, normalizeResponse{
		Delimiter:   result.Delimiter,
		Lines:       result.Lines,
		InvalidRows: invalid,
		Report:      core.FormatReport(result.Errors),
		Text:        core.AppendLines(req.Existing, result.Lines),
	})
}

// validateResponse lists the lines that are not "word,hint:word,hint".
type validateResponse struct {
	Valid       bool              `json:"valid"`
	InvalidRows []core.InvalidRow `json:"invalid_rows"`
	Report      string            `json:"report"`
}

// handleValidate checks edited field text line by line.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := s.readTextRequest(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	invalid := s.service.Validate(req.Text)
	if invalid == nil {
		invalid = []core.InvalidRow{}
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Valid:       len(invalid) == 0,
		InvalidRows: invalid,
		Report:      core.FormatReport(invalid),
	})
}
