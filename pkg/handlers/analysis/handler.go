package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/de-tools/deal-radar/pkg/adapters"
	"github.com/de-tools/deal-radar/pkg/models/api"
	"github.com/de-tools/deal-radar/pkg/models/domain"
	"github.com/de-tools/deal-radar/pkg/services/analysis"
	"github.com/de-tools/deal-radar/pkg/services/extract"
	"github.com/de-tools/deal-radar/pkg/store/duckdb/report"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const Version = "0.1.0"

// Controller is the analysis pipeline the handler fronts.
type Controller interface {
	AnalyzeDocument(ctx context.Context, documentName, text string, opts analysis.Options) (domain.Report, error)
	GetReport(ctx context.Context, id string) (*domain.Report, error)
}

type Handler struct {
	controller     Controller
	maxUploadBytes int64
	semanticReady  bool
}

func NewHandler(controller Controller, maxUploadBytes int64, semanticReady bool) *Handler {
	return &Handler{
		controller:     controller,
		maxUploadBytes: maxUploadBytes,
		semanticReady:  semanticReady,
	}
}

// AnalyzeDocument accepts a multipart upload (field "file", .pdf or .txt),
// runs the pipeline, and returns the finished report. Query flags "rules"
// and "semantic" disable individual detectors.
func (h *Handler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file exceeds the upload size limit or is not valid multipart data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload field \"file\"")
		return
	}
	defer file.Close()

	if !extract.SupportedExtension(header.Filename) {
		writeError(w, http.StatusBadRequest, "only PDF and plain text files are supported")
		return
	}

	tmp, err := os.CreateTemp("", "deal-radar-*"+filepath.Ext(header.Filename))
	if err != nil {
		logger.Error().Err(err).Msg("failed to create temp file")
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		logger.Error().Err(err).Msg("failed to write upload")
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	tmp.Close()

	text, err := extract.Text(tmp.Name(), header.Filename)
	if err != nil {
		logger.Warn().Err(err).Str("document", header.Filename).Msg("text extraction failed")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	opts := analysis.Options{
		UseRules:    boolParam(r, "rules", true),
		UseSemantic: boolParam(r, "semantic", true),
	}

	result, err := h.controller.AnalyzeDocument(ctx, header.Filename, text, opts)
	if err != nil {
		logger.Error().Err(err).Str("document", header.Filename).Msg("analysis failed")
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapReportDomainToApi(result))
}

// GetReport returns a previously stored report by id.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	result, err := h.controller.GetReport(ctx, id)
	if errors.Is(err, report.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("report_id", id).Msg("failed to load report")
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapReportDomainToApi(*result))
}

// Health reports service availability; a missing semantic client means the
// pipeline runs in rule-only degraded mode.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.semanticReady {
		status = "degraded"
	}

	writeJSON(r.Context(), w, http.StatusOK, api.Health{
		Status:  status,
		Version: Version,
		Services: map[string]bool{
			"api":      true,
			"semantic": h.semanticReady,
		},
	})
}

func boolParam(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Error{Error: message})
}
