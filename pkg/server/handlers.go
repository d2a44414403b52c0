package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lexanon/lexanon/internal"
	"github.com/lexanon/lexanon/pkg/models"
	"github.com/lexanon/lexanon/pkg/pipeline"
)

var log = internal.GetLogger()

var validate = validator.New()

// labelDescriptions documents the canonical entity vocabulary for the
// supported-entities endpoint.
var labelDescriptions = map[models.Label]string{
	models.LabelPerson:  "Noms de personnes",
	models.LabelOrg:     "Organisations et entreprises",
	models.LabelLoc:     "Lieux et localités",
	models.LabelDate:    "Dates",
	models.LabelMoney:   "Montants",
	models.LabelEmail:   "Adresses email",
	models.LabelPhone:   "Numéros de téléphone",
	models.LabelIBAN:    "Codes IBAN",
	models.LabelSiren:   "Numéros SIREN",
	models.LabelSiret:   "Numéros SIRET",
	models.LabelAddress: "Adresses postales",
}

// AnalyzeHandler godoc
//
//	@Summary		Extract entities from a single text
//	@Description	runs hybrid entity extraction, resolution and scoring over one text
//	@Tags			analyze
//	@Accept			json
//	@Produce		json
//	@Param			analyzeRequest	body		models.AnalyzeRequest	true	"Analysis request"
//	@Success		200				{object}	models.AnalyzeResponse
//	@Failure		400				{object}	APIError	"Bad Request"
//	@Failure		500				{object}	APIError	"Internal Server Error"
//	@Router			/api/v1/analyze [post]
func AnalyzeHandler(appState *models.AppState) http.HandlerFunc {
	pipe := pipeline.NewPipeline(appState)
	return func(w http.ResponseWriter, r *http.Request) {
		req := newAnalyzeRequest(appState)
		if err := decodeJSON(r, &req); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}

		response, err := pipe.Analyze(r.Context(), &req)
		if err != nil {
			if errors.Is(err, models.ErrEmptyText) {
				renderError(w, err, http.StatusBadRequest)
				return
			}
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		if err := encodeJSON(w, response); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}

// AnalyzeBatchHandler godoc
//
//	@Summary		Extract entities from a batch of texts
//	@Description	analyzes up to the configured maximum number of texts concurrently
//	@Tags			analyze
//	@Accept			json
//	@Produce		json
//	@Param			batchRequest	body		models.BatchRequest	true	"Batch analysis request"
//	@Success		200				{object}	models.BatchResponse
//	@Failure		400				{object}	APIError	"Bad Request"
//	@Failure		500				{object}	APIError	"Internal Server Error"
//	@Router			/api/v1/analyze/batch [post]
func AnalyzeBatchHandler(appState *models.AppState) http.HandlerFunc {
	pipe := pipeline.NewPipeline(appState)
	return func(w http.ResponseWriter, r *http.Request) {
		req := models.BatchRequest{
			Mode:                  models.ModeHybrid,
			ConfidenceThreshold:   appState.Config.Extraction.DefaultThreshold,
			IncludePatternMatches: true,
		}
		if err := decodeJSON(r, &req); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}

		response, err := pipe.AnalyzeBatch(r.Context(), &req)
		if err != nil {
			// Batch size violations are rejected before any processing
			if errors.Is(err, models.ErrBatchTooLarge) {
				renderError(w, err, http.StatusBadRequest)
				return
			}
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		if err := encodeJSON(w, response); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}

// SupportedEntitiesHandler godoc
//
//	@Summary		List the supported entity vocabulary
//	@Description	returns canonical labels, enabled pattern names and label descriptions
//	@Tags			entities
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}
//	@Router			/api/v1/entities/supported [get]
func SupportedEntitiesHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]interface{}{
			"supported_entities": models.SupportedLabels(),
			"patterns":           appState.Patterns.Names(),
			"descriptions":       labelDescriptions,
		}
		if err := encodeJSON(w, payload); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}

// newAnalyzeRequest presets request defaults so absent JSON fields keep
// them after decoding.
func newAnalyzeRequest(appState *models.AppState) models.AnalyzeRequest {
	return models.AnalyzeRequest{
		Mode:                  models.ModeHybrid,
		Language:              appState.Config.NLP.Language,
		ConfidenceThreshold:   appState.Config.Extraction.DefaultThreshold,
		IncludePatternMatches: true,
	}
}
