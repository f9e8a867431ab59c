package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/JonMunkholm/fileprobe/internal/core"
)

// multipartMemory is how much of a multipart form is held in memory.
const multipartMemory = 32 << 20

const genericContentType = "application/octet-stream"

// upload is a file received in a multipart form.
type upload struct {
	Data       []byte
	FileName   string
	MIMEType   string
	ByteLength int64
}

// handleValidate validates an uploaded file and returns a ValidationResult.
//
// Form fields: file (the upload), mime (optional override), byteLength
// (declared size). A request with fileName and byteLength but no file part
// asks only for the size gate decision on a file too large to send.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	release, err := s.limiter.Acquire(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer release()

	ctx := withRequestMetadata(r.Context(), r)
	result := s.service.Validate(ctx, core.ValidateRequest{
		Data:       up.Data,
		FileName:   up.FileName,
		MIMEType:   up.MIMEType,
		ByteLength: up.ByteLength,
	})

	writeJSON(w, result)
}

// handleConvert recasts the columns of an uploaded CSV file and returns the
// converted file. Other formats are returned unchanged.
//
// Form fields: file, columnMapping and typeMapping (JSON objects of strings).
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var columns core.ColumnMapping
	if err := decodeMapping(r.FormValue("columnMapping"), &columns); err != nil {
		writeError(w, http.StatusBadRequest, "invalid columnMapping: "+err.Error())
		return
	}
	var types core.TypeMapping
	if err := decodeMapping(r.FormValue("typeMapping"), &types); err != nil {
		writeError(w, http.StatusBadRequest, "invalid typeMapping: "+err.Error())
		return
	}

	release, err := s.limiter.Acquire(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer release()

	ctx := withRequestMetadata(r.Context(), r)
	out, err := s.service.Convert(ctx, core.ConvertRequest{
		Data:          up.Data,
		FileName:      up.FileName,
		MIMEType:      up.MIMEType,
		ColumnMapping: columns,
		TypeMapping:   types,
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	name, contentType := convertedName(up)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// handleFormats lists the supported formats in detection order.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, core.Formats())
}

// healthResponse is the body of /healthz.
type healthResponse struct {
	Status   string                    `json:"status"`
	Sessions core.SessionLimiterStatus `json:"sessions"`
	Error    string                    `json:"error,omitempty"`
}

// handleHealth reports engine availability and session usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Sessions: s.limiter.Status()}

	if err := s.service.Ping(r.Context()); err != nil {
		resp.Status = "unavailable"
		resp.Error = err.Error()
		writeJSONStatus(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, resp)
}

// readUpload parses the multipart form and reads the file part.
// When requireFile is false, a missing file part is accepted if fileName
// and byteLength are given.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, requireFile bool) (upload, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return upload{}, fmt.Errorf("file too large (limit %d bytes)", maxSize)
		}
		return upload{}, errors.New("invalid multipart form")
	}

	up := upload{
		FileName: r.FormValue("fileName"),
		MIMEType: r.FormValue("mime"),
	}
	if v := r.FormValue("byteLength"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return upload{}, errors.New("byteLength must be a non-negative integer")
		}
		up.ByteLength = n
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) && !requireFile && up.FileName != "" && up.ByteLength > 0 {
		return up, nil
	}
	if err != nil {
		return upload{}, errors.New("no file provided")
	}
	defer file.Close()

	if header.Size > maxSize {
		return upload{}, fmt.Errorf("file too large (limit %d bytes)", maxSize)
	}

	data, err := readPart(file)
	if err != nil {
		return upload{}, err
	}

	up.Data = data
	if up.FileName == "" {
		up.FileName = header.Filename
	}
	// Multipart writers default every part to octet-stream; only a specific
	// type says anything about the format.
	if ct := header.Header.Get("Content-Type"); up.MIMEType == "" && ct != genericContentType {
		up.MIMEType = ct
	}
	if up.ByteLength == 0 {
		up.ByteLength = int64(len(data))
	}
	return up, nil
}

// readPart reads a whole multipart file part.
func readPart(f multipart.File) ([]byte, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	return data, nil
}

// decodeMapping parses an optional JSON object of strings.
func decodeMapping[M ~map[string]string](raw string, dst *M) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

// convertedName returns the download name and content type for a
// conversion result. Converted CSV is always uncompressed.
func convertedName(up upload) (string, string) {
	name := up.FileName
	if name == "" {
		name = "converted"
	}

	inner := core.InnerFileName(name)
	if format, ok := core.Detect(inner, up.MIMEType); ok && format == core.FormatCSV {
		base := strings.TrimSuffix(inner, path.Ext(inner))
		return base + "_converted.csv", "text/csv; charset=utf-8"
	}

	if up.MIMEType != "" {
		return name, up.MIMEType
	}
	return name, genericContentType
}
