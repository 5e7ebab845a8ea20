package ocrapi

// ExtractResponse is the JSON body returned by POST /extract-text on success.
type ExtractResponse struct {
	Success          bool           `json:"success"`
	Text             string         `json:"text"`
	Confidence       float64        `json:"confidence"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	Cached           bool           `json:"cached,omitempty"`
	Message          string         `json:"message,omitempty"`
	Metadata         *ImageMetadata `json:"metadata,omitempty"`
}

// BatchResponse is the JSON body returned by POST /extract-text/batch.
type BatchResponse struct {
	Success          bool        `json:"success"`
	Total            int         `json:"total"`
	Processed        int         `json:"processed"`
	Results          []BatchItem `json:"results"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
}

// BatchItem reports the outcome for a single image within a batch. Items
// appear in input order; exactly one of the success fields or Error is set.
type BatchItem struct {
	Index      int            `json:"index"`
	Filename   string         `json:"filename"`
	Success    bool           `json:"success"`
	Text       *string        `json:"text,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Cached     bool           `json:"cached,omitempty"`
	Message    string         `json:"message,omitempty"`
	Metadata   *ImageMetadata `json:"metadata,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Success    bool        `json:"success"`
	Error      string      `json:"error"`
	ErrorCode  ErrorReason `json:"error_code,omitempty"`
	StatusCode int         `json:"status_code"`
}

// HealthResponse is the JSON body returned by GET /.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ImageMetadata describes an uploaded image. All fields are best-effort;
// EXIF and Language are omitted when unavailable.
type ImageMetadata struct {
	Format   string    `json:"format"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	EXIF     *EXIFData `json:"exif,omitempty"`
	Language string    `json:"language,omitempty"`
}

// EXIFData carries the whitelisted EXIF tags exposed to clients.
type EXIFData struct {
	Make        string `json:"Make,omitempty"`
	Model       string `json:"Model,omitempty"`
	DateTime    string `json:"DateTime,omitempty"`
	Software    string `json:"Software,omitempty"`
	Orientation string `json:"Orientation,omitempty"`
}
