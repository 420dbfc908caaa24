package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/speakerbox/pkg/buildinfo"
	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/extract"
	"github.com/matzehuels/speakerbox/pkg/pipeline"
	"github.com/matzehuels/speakerbox/pkg/render/panel"
	"github.com/matzehuels/speakerbox/pkg/store"
)

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

// CalculateRequest is the body of POST /v1/calculate.
type CalculateRequest struct {
	Fs               float64  `json:"fs"`
	Qts              float64  `json:"qts"`
	Vas              float64  `json:"vas"`
	Topology         string   `json:"topology"`
	DriverDiameterCm float64  `json:"driver_diameter_cm,omitempty"`
	Formats          []string `json:"formats,omitempty"`
	Detailed         bool     `json:"detailed,omitempty"`
	NoLabels         bool     `json:"no_labels,omitempty"`

	// SaveAs stores the result under this name.
	SaveAs     string `json:"save_as,omitempty"`
	ParsedText string `json:"parsed_text,omitempty"`
}

// CalculateResponse is the body returned by POST /v1/calculate.
type CalculateResponse struct {
	Driver     enclosure.Driver     `json:"driver"`
	Result     enclosure.Result     `json:"result"`
	Dimensions enclosure.Dimensions `json:"dimensions"`
	CutList    []panel.Part         `json:"cut_list"`
	Warnings   []string             `json:"warnings,omitempty"`
	Artifacts  map[string][]byte    `json:"artifacts,omitempty"`
	Cached     bool                 `json:"cached"`
	Saved      *store.Calculation   `json:"saved,omitempty"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Topology == "" {
		req.Topology = s.defaults.Topology
	}
	if req.DriverDiameterCm == 0 {
		req.DriverDiameterCm = s.defaults.DriverDiameterCm
	}

	opts := pipeline.Options{
		Fs: req.Fs, Qts: req.Qts, Vas: req.Vas,
		Topology:         req.Topology,
		DriverDiameterCm: req.DriverDiameterCm,
		Formats:          req.Formats,
		Detailed:         req.Detailed,
		NoLabels:         req.NoLabels,
		Logger:           s.logger,
	}

	var resp CalculateResponse
	if len(req.Formats) > 0 {
		res, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp = CalculateResponse{
			Driver:     res.Driver,
			Result:     *res.Design,
			Dimensions: res.Dimensions,
			CutList:    res.Layout.CutList(),
			Warnings:   res.Warnings,
			Artifacts:  res.Artifacts,
			Cached:     res.CacheInfo.CalculateHit,
		}
	} else {
		// Only the numbers: skip rendering.
		design, hit, err := s.runner.CalculateWithCacheInfo(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		l, err := s.runner.Layout(r.Context(), design.Dimensions, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp = CalculateResponse{
			Driver:     opts.Driver(),
			Result:     design.Result,
			Dimensions: design.Dimensions,
			CutList:    l.CutList(),
			Warnings:   append(pipeline.DesignWarnings(design.Result), pipeline.LayoutWarnings(l)...),
			Cached:     hit,
		}
	}

	if req.SaveAs != "" {
		calc := store.NewCalculation(req.SaveAs, resp.Driver, resp.Result, resp.Dimensions)
		calc.ParsedText = req.ParsedText
		saved, err := s.store.Save(r.Context(), calc)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Saved = &saved
	}
	writeJSON(w, http.StatusOK, resp)
}

// LayoutRequest is the body of POST /v1/layout. Zero values fall back to
// the server's layout defaults.
type LayoutRequest struct {
	WidthCm          float64 `json:"width_cm"`
	HeightCm         float64 `json:"height_cm"`
	DepthCm          float64 `json:"depth_cm"`
	DriverDiameterCm float64 `json:"driver_diameter_cm"`
	Format           string  `json:"format,omitempty"`
	NoLabels         bool    `json:"no_labels,omitempty"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	format := req.Format
	if format == "" {
		format = pipeline.FormatDXF
	}
	opts := pipeline.Options{
		WidthCm:          orDefault(req.WidthCm, s.defaults.WidthCm),
		HeightCm:         orDefault(req.HeightCm, s.defaults.HeightCm),
		DepthCm:          orDefault(req.DepthCm, s.defaults.DepthCm),
		DriverDiameterCm: orDefault(req.DriverDiameterCm, s.defaults.DriverDiameterCm),
		Formats:          []string{format},
		NoLabels:         req.NoLabels,
		Logger:           s.logger,
	}

	res, err := s.runner.ExecuteLayout(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, warning := range res.Warnings {
		w.Header().Add("X-Layout-Warning", warning)
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("Content-Disposition", `attachment; filename="speaker_box`+pipeline.Extensions[format]+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// ExtractRequest is the body of POST /v1/extract.
type ExtractRequest struct {
	Text   string `json:"text"`
	APIKey string `json:"api_key,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "parameter extraction is not configured"))
		return
	}
	var req ExtractRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		key = strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	}
	params, err := s.extractor(key).Extract(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, params)
}

func (s *Server) handleListCalculations(w http.ResponseWriter, r *http.Request) {
	calcs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calcs)
}

func (s *Server) handleSaveCalculation(w http.ResponseWriter, r *http.Request) {
	var calc store.Calculation
	if err := decode(r, &calc); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.store.Save(r.Context(), calc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetCalculation(w http.ResponseWriter, r *http.Request) {
	calc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

func (s *Server) handleDeleteCalculation(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExtractorFor adapts an extract.Client constructor to ExtractorFunc.
func ExtractorFor(newClient func(apiKey string) *extract.Client) ExtractorFunc {
	return func(apiKey string) Extractor { return newClient(apiKey) }
}
