// Package handlers exposes the OCR pipeline over HTTP.
package handlers

import (
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/tendant/simple-ocr/internal/metrics"
	"github.com/tendant/simple-ocr/internal/pipeline"
	"github.com/tendant/simple-ocr/pkg/ocrapi"
)

// multipartMemory caps the in-memory portion of multipart parsing; larger
// parts spill to temp files.
const multipartMemory = 32 << 20

// OCRHandler handles text extraction requests.
type OCRHandler struct {
	pipeline     *pipeline.Pipeline
	orchestrator *pipeline.Orchestrator
}

// NewOCRHandler creates a new OCR handler.
func NewOCRHandler(p *pipeline.Pipeline, o *pipeline.Orchestrator) *OCRHandler {
	return &OCRHandler{
		pipeline:     p,
		orchestrator: o,
	}
}

// HandleExtract handles POST /extract-text - runs one image through the
// pipeline.
func (h *OCRHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, "/extract-text")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, "/extract-text", ocrapi.NewRequestError(ocrapi.ReasonEmptyFile,
			"Invalid multipart form data."))
		return
	}
	defer cleanupMultipart(r)

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, "/extract-text", ocrapi.NewRequestError(ocrapi.ReasonEmptyFile,
			"An image file is required in the 'image' field."))
		return
	}
	defer file.Close()

	blob, err := readBlob(file, header)
	if err != nil {
		log.Printf("Failed to read upload %q: %v", header.Filename, err)
		writeError(w, "/extract-text", ocrapi.NewRequestError(ocrapi.ReasonInternalFault,
			"Failed to read uploaded file."))
		return
	}

	result, err := h.pipeline.Process(r.Context(), blob, includeMetadata(r))
	if err != nil {
		writeError(w, "/extract-text", pipeline.AsRequestError(err))
		return
	}

	resp := ocrapi.ExtractResponse{
		Success:          true,
		Text:             result.Text,
		Confidence:       result.Confidence,
		ProcessingTimeMs: result.ProcessingTimeMs,
		Cached:           result.Cached,
		Metadata:         result.Metadata,
	}
	if result.NoText {
		resp.Message = "No text found in image"
	}
	writeJSON(w, "/extract-text", http.StatusOK, resp)
}

// HandleExtractBatch handles POST /extract-text/batch - runs up to the batch
// ceiling of images with per-item failure isolation.
func (h *OCRHandler) HandleExtractBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, "/extract-text/batch")
		return
	}
	start := time.Now()

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, "/extract-text/batch", ocrapi.NewRequestError(ocrapi.ReasonEmptyFile,
			"Invalid multipart form data."))
		return
	}
	defer cleanupMultipart(r)

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, "/extract-text/batch", ocrapi.NewRequestError(ocrapi.ReasonEmptyFile,
			"At least one image is required in the 'images' field."))
		return
	}

	blobs := make([]pipeline.Blob, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			log.Printf("Failed to open upload %q: %v", header.Filename, err)
			writeError(w, "/extract-text/batch", ocrapi.NewRequestError(ocrapi.ReasonInternalFault,
				"Failed to read uploaded file."))
			return
		}
		blob, err := readBlob(file, header)
		file.Close()
		if err != nil {
			log.Printf("Failed to read upload %q: %v", header.Filename, err)
			writeError(w, "/extract-text/batch", ocrapi.NewRequestError(ocrapi.ReasonInternalFault,
				"Failed to read uploaded file."))
			return
		}
		blobs = append(blobs, blob)
	}

	batch, err := h.orchestrator.ProcessBatch(r.Context(), blobs, includeMetadata(r))
	if err != nil {
		writeError(w, "/extract-text/batch", pipeline.AsRequestError(err))
		return
	}

	resp := ocrapi.BatchResponse{
		Success:          true,
		Total:            batch.Total,
		Processed:        batch.Processed,
		Results:          make([]ocrapi.BatchItem, 0, len(batch.Items)),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	for _, item := range batch.Items {
		resp.Results = append(resp.Results, batchItem(item))
	}
	writeJSON(w, "/extract-text/batch", http.StatusOK, resp)
}

// HandleHealth handles GET / - liveness probe, no processing.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, "/", http.StatusOK, ocrapi.HealthResponse{
		Status:  "healthy",
		Service: "OCR API",
	})
}

func batchItem(item pipeline.Item) ocrapi.BatchItem {
	out := ocrapi.BatchItem{
		Index:    item.Index,
		Filename: item.Filename,
	}
	if item.Err != nil {
		out.Error = pipeline.AsRequestError(item.Err).Message
		return out
	}

	res := item.Result
	out.Success = true
	out.Text = &res.Text
	out.Confidence = &res.Confidence
	out.Cached = res.Cached
	out.Metadata = res.Metadata
	if res.NoText {
		out.Message = "No text found in image"
	}
	return out
}

func readBlob(file multipart.File, header *multipart.FileHeader) (pipeline.Blob, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.Blob{}, err
	}
	return pipeline.Blob{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}

func includeMetadata(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("include_metadata"))
	return err == nil && v
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func writeMethodNotAllowed(w http.ResponseWriter, endpoint string) {
	writeJSON(w, endpoint, http.StatusMethodNotAllowed, ocrapi.ErrorResponse{
		Success:    false,
		Error:      "Method not allowed",
		StatusCode: http.StatusMethodNotAllowed,
	})
}

func writeJSON(w http.ResponseWriter, endpoint string, status int, v any) {
	metrics.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, endpoint string, reqErr *ocrapi.RequestError) {
	status := reqErr.HTTPStatus()
	writeJSON(w, endpoint, status, ocrapi.ErrorResponse{
		Success:    false,
		Error:      reqErr.Message,
		ErrorCode:  reqErr.Reason,
		StatusCode: status,
	})
}
