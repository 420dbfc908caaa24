package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/extract"
	"github.com/matzehuels/speakerbox/pkg/pipeline"
	"github.com/matzehuels/speakerbox/pkg/store"
)

type fakeExtractor struct {
	key string
	err error
}

func (f *fakeExtractor) Extract(_ context.Context, text string) (extract.Params, error) {
	if f.err != nil {
		return extract.Params{}, f.err
	}
	if f.key == "" {
		return extract.Params{}, errors.New(errors.ErrCodeUnauthorized, "no key")
	}
	return extract.ParseReply(text)
}

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *strings.Builder) {
	t.Helper()
	var logs strings.Builder
	opts = append([]Option{WithLogger(log.New(&logs))}, opts...)
	srv := httptest.NewServer(New(pipeline.NewRunner(nil, nil, nil), opts...).Handler())
	t.Cleanup(srv.Close)
	return srv, &logs
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestCalculate(t *testing.T) {
	srv, logs := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/v1/calculate", CalculateRequest{Fs: 40, Qts: 0.4, Vas: 50})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[CalculateResponse](t, resp)
	assert.Equal(t, "sealed", string(body.Result.Topology))
	assert.InDelta(t, 23.54, body.Result.BoxVolumeLiters, 0.01)
	assert.Equal(t, 2.9, body.Dimensions.WidthCm)
	assert.Len(t, body.CutList, 3)
	assert.Empty(t, body.Artifacts)
	assert.Nil(t, body.Saved)
	assert.Contains(t, logs.String(), "/v1/calculate")
}

func TestCalculateWithArtifactsAndSave(t *testing.T) {
	st := store.NewMemoryStore()
	srv, _ := newTestServer(t, WithStore(st))

	resp := do(t, http.MethodPost, srv.URL+"/v1/calculate", CalculateRequest{
		Fs: 35, Qts: 0.38, Vas: 60, Topology: "ported",
		Formats: []string{"dxf"},
		SaveAs:  "sub", ParsedText: "Fs 35",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[CalculateResponse](t, resp)
	assert.True(t, strings.HasPrefix(string(body.Artifacts["dxf"]), "0\nSECTION"))
	assert.True(t, body.Result.PortClamped)
	assert.NotEmpty(t, body.Warnings)
	require.NotNil(t, body.Saved)
	assert.Equal(t, "Fs 35", body.Saved.ParsedText)

	list, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sub", list[0].Name)
}

func TestCalculateErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"missing", CalculateRequest{Fs: 40, Vas: 50}, http.StatusBadRequest, errors.ErrCodeMissingInput},
		{"infeasible", CalculateRequest{Fs: 40, Qts: 0.9, Vas: 50}, http.StatusUnprocessableEntity, errors.ErrCodeInfeasibleDesign},
		{"topology", CalculateRequest{Fs: 40, Qts: 0.4, Vas: 50, Topology: "horn"}, http.StatusBadRequest, errors.ErrCodeInvalidTopology},
		{"format", CalculateRequest{Fs: 40, Qts: 0.4, Vas: 50, Formats: []string{"gif"}}, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown field", map[string]any{"fs": 40, "color": "red"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/v1/calculate", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeBody[errorBody](t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestLayoutDefaults(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/v1/layout", LayoutRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/dxf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "speaker_box.dxf")
	assert.NotEmpty(t, resp.Header.Values("X-Layout-Warning"))

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "Front Panel (3x4.8cm)")
}

func TestLayoutFormats(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/v1/layout", LayoutRequest{WidthCm: 29, HeightCm: 46, DepthCm: 18, Format: "svg"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))

	resp = do(t, http.MethodPost, srv.URL+"/v1/layout", LayoutRequest{WidthCm: -1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeNonPositiveGeometry, decodeBody[errorBody](t, resp).Code)
}

func TestExtract(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/v1/extract", ExtractRequest{Text: `{"fs": 40}`})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	srv, _ = newTestServer(t, WithExtractor(func(key string) Extractor { return &fakeExtractor{key: key} }))

	resp = do(t, http.MethodPost, srv.URL+"/v1/extract", ExtractRequest{Text: `{"fs": 40, "qts": 0.4}`, APIKey: "k"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decodeBody[extract.Params](t, resp)
	require.NotNil(t, p.Fs)
	assert.Equal(t, 40.0, *p.Fs)
	assert.Nil(t, p.Vas)

	resp = do(t, http.MethodPost, srv.URL+"/v1/extract", ExtractRequest{Text: `{"fs": 40}`})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/extract", strings.NewReader(`{"text":"nothing"}`))
	req.Header.Set("Authorization", "Bearer k")
	hresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer hresp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, hresp.StatusCode)
}

func TestCalculationsCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/v1/calculations"

	resp := do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]store.Calculation](t, resp))

	calc := store.Calculation{
		Name: "box", Fs: 40, Qts: 0.4, Vas: 50, Topology: "sealed",
		WidthCm: 2.9, HeightCm: 4.6, DepthCm: 1.8, VolumeLiters: 23.54,
	}
	resp = do(t, http.MethodPost, base, calc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saved := decodeBody[store.Calculation](t, resp)
	require.NotEmpty(t, saved.ID)

	resp = do(t, http.MethodGet, base+"/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "box", decodeBody[store.Calculation](t, resp).Name)

	resp = do(t, http.MethodDelete, base+"/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeNotFound, decodeBody[errorBody](t, resp).Code)

	calc.Name = ""
	resp = do(t, http.MethodPost, base, calc)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotFoundRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/v2/nothing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeNotFound, decodeBody[errorBody](t, resp).Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeMissingInput, http.StatusBadRequest},
		{errors.ErrCodeInfeasibleDesign, http.StatusUnprocessableEntity},
		{errors.ErrCodeNonPositiveGeometry, http.StatusUnprocessableEntity},
		{errors.ErrCodeConflict, http.StatusConflict},
		{errors.ErrCodeRateLimited, http.StatusTooManyRequests},
		{errors.ErrCodeNetwork, http.StatusBadGateway},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.code); got != tt.want {
			t.Errorf("StatusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
