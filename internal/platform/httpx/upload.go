package httpx

import (
	"fmt"
	"io"
	"net/http"

	"github.com/alima/supply/internal/shared"
)

// ReadUpload reads the "file" part of a multipart request.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return "", nil, fmt.Errorf("%w: no se pudo leer el formulario: %v", shared.ErrValidation, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: el campo file es obligatorio", shared.ErrValidation)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("%w: no se pudo leer el archivo: %v", shared.ErrValidation, err)
	}
	return header.Filename, data, nil
}

// WriteWorkbook sends an xlsx attachment.
func WriteWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
