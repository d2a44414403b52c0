package models

// Analysis modes. ModeModelOnly runs the span-labeling oracle alone;
// ModeHybrid additionally runs the pattern matchers.
const (
	ModeModelOnly = "model-only"
	ModeHybrid    = "hybrid"
)

// AnalyzeRequest is the caller-facing request shape for a single text.
// IncludePatternMatches defaults to true; handlers preset it before
// decoding so an absent JSON field keeps the default.
type AnalyzeRequest struct {
	Text                  string  `json:"text"                  validate:"required"`
	Mode                  string  `json:"mode"                  validate:"omitempty,oneof=model-only hybrid"`
	Language              string  `json:"language"`
	EntityTypes           []Label `json:"entity_types,omitempty"`
	ConfidenceThreshold   float64 `json:"confidence_threshold"  validate:"gte=0,lte=1"`
	IncludePatternMatches bool    `json:"include_pattern_matches"`
}

// EntityResult is a scored entity as returned to the caller. Context is
// deliberately not exposed.
type EntityResult struct {
	Text       string  `json:"text"`
	Label      Label   `json:"label"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// Statistics summarizes one pipeline invocation. Counts by label and by
// source are computed over the post-filter output.
type Statistics struct {
	TotalCandidates int            `json:"total_candidates"`
	AfterDedup      int            `json:"after_dedup"`
	AfterFilter     int            `json:"after_filter"`
	ByLabel         map[Label]int  `json:"by_label"`
	BySource        map[Source]int `json:"by_source"`
}

type AnalyzeResponse struct {
	RequestID      string         `json:"request_id"`
	Entities       []EntityResult `json:"entities"`
	Statistics     Statistics     `json:"statistics"`
	ProcessingTime float64        `json:"processing_time"`
}

// BatchRequest analyzes up to Extraction.MaxBatchSize independent texts.
type BatchRequest struct {
	Texts                 []string `json:"texts"                validate:"required,min=1"`
	Mode                  string   `json:"mode"                 validate:"omitempty,oneof=model-only hybrid"`
	Language              string   `json:"language"`
	EntityTypes           []Label  `json:"entity_types,omitempty"`
	ConfidenceThreshold   float64  `json:"confidence_threshold" validate:"gte=0,lte=1"`
	IncludePatternMatches bool     `json:"include_pattern_matches"`
}

// BatchItemResult holds a successful per-index result.
type BatchItemResult struct {
	Index  int              `json:"index"`
	Result *AnalyzeResponse `json:"result"`
}

// BatchItemError holds an isolated per-index failure.
type BatchItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BatchResponse struct {
	Results        []BatchItemResult `json:"results"`
	Errors         []BatchItemError  `json:"errors"`
	ProcessingTime float64           `json:"processing_time"`
	TotalTexts     int               `json:"total_texts"`
	Successful     int               `json:"successful"`
	Failed         int               `json:"failed"`
}
