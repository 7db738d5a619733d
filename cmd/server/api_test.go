package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daemonaise/studio/internal/catalog"
	"github.com/Daemonaise/studio/internal/estimate"
	"github.com/Daemonaise/studio/internal/mesh"
	"github.com/Daemonaise/studio/internal/quote"
)

func newTestServer() *server {
	pricing := catalog.Default()
	return &server{
		engine:    quote.New(pricing),
		pricing:   pricing,
		estimator: estimate.Heuristic{},
	}
}

// asciiSTLCube renders an axis-aligned cube with the given side as
// ASCII STL, consistently wound so the mesh is watertight.
func asciiSTLCube(side float64) []byte {
	vertices := [8][3]float64{
		{0, 0, 0}, {side, 0, 0}, {side, side, 0}, {0, side, 0},
		{0, 0, side}, {side, 0, side}, {side, side, side}, {0, side, side},
	}
	faces := [12][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
	}

	var b bytes.Buffer
	b.WriteString("solid cube\n")
	for _, f := range faces {
		b.WriteString("facet normal 0 0 0\nouter loop\n")
		for _, vi := range f {
			v := vertices[vi]
			fmt.Fprintf(&b, "vertex %g %g %g\n", v[0], v[1], v[2])
		}
		b.WriteString("endloop\nendfacet\n")
	}
	b.WriteString("endsolid cube\n")
	return b.Bytes()
}

func multipartUpload(t *testing.T, fileName string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestHandleHealthz(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleAnalyzeReturnsMetrics(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartUpload(t, "cube.stl", asciiSTLCube(10), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.handleAnalyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var metrics mesh.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, mesh.FormatSTL, metrics.Format)
	assert.Equal(t, 12, metrics.TriangleCount)
	assert.InDelta(t, 1000.0, metrics.VolumeMm3, 1e-6)
	assert.True(t, metrics.WatertightEstimate)
}

func TestHandleAnalyzeRejectsGarbage(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartUpload(t, "cube.stl", []byte("not a mesh at all"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.handleAnalyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeRejectsUnknownExtension(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartUpload(t, "cube.step", asciiSTLCube(10), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.handleAnalyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeRequiresFile(t *testing.T) {
	srv := newTestServer()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("material", "pla"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.handleAnalyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuoteEndToEnd(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartUpload(t, "bracket.stl", asciiSTLCube(100), map[string]string{
		"material": "pla",
		"nozzle":   "0.4",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/quote", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.handleQuote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var q quote.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "pla", q.FilamentID)
	assert.Equal(t, 1, q.Segments)
	assert.Positive(t, q.Costs.Total)
	assert.GreaterOrEqual(t, q.LeadTimeMaxDays, q.LeadTimeMinDays)
}

func TestHandleQuoteMissingMaterial(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartUpload(t, "cube.stl", asciiSTLCube(10), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/quote", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.handleQuote(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuoteIncompatibleMaterialConflicts(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartUpload(t, "cube.stl", asciiSTLCube(10), map[string]string{
		"material": "glass-fiber-peek",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/quote", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.handleQuote(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleQuotePreferredPrinter(t *testing.T) {
	srv := newTestServer()

	body, contentType := multipartUpload(t, "cube.stl", asciiSTLCube(50), map[string]string{
		"material": "pla",
		"printer":  "bench-220",
		"auto":     "0",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/quote", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.handleQuote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var q quote.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, "bench-220", q.PrinterKey)
}

type failingEstimator struct{}

func (failingEstimator) Estimate(context.Context, *mesh.Metrics, string, string) (estimate.Baseline, error) {
	return estimate.Baseline{}, fmt.Errorf("slicer unreachable")
}

func TestHandleQuoteEstimatorFailureIsBadGateway(t *testing.T) {
	srv := newTestServer()
	srv.estimator = failingEstimator{}

	body, contentType := multipartUpload(t, "cube.stl", asciiSTLCube(10), map[string]string{
		"material": "pla",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/quote", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.handleQuote(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleCatalogExposesFleet(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.handleCatalog(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var cfg quote.PricingConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Len(t, cfg.Printers, 3)
	assert.Contains(t, cfg.Filaments, "pla")
}
