package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdash/adapters/datareadiness"
	"opsdash/adapters/importer"
	"opsdash/adapters/kvstore"
	"opsdash/app"
	"opsdash/domain/core"
	"opsdash/internal"
	datasetstore "opsdash/internal/dataset"
)

const courierCSV = `route,delivery_time,status
R1,32,delivered
R2,41,late
R1,29,delivered`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := internal.NewNopLogger()
	store := datasetstore.NewStore(context.Background(), kvstore.NewMemoryStore(0), datasetstore.DefaultStoreConfig(), logger)
	proc := datasetstore.NewProcessor(importer.NewDataReader(importer.DefaultImportConfig()),
		datareadiness.NewProfilerAdapter(nil), store, logger, 1<<20)
	svc := app.NewDashboardService(store, proc, core.SystemClock{}, logger)
	return NewServer(svc, logger, 1<<20)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, fileName, domain, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if domain != "" {
		require.NoError(t, mw.WriteField("domain", domain))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "missing error object: %s", w.Body.String())
	return errObj["code"].(string)
}

func importCourier(t *testing.T, s *Server) string {
	t.Helper()
	w := do(t, s, uploadRequest(t, "routes.csv", "courier", courierCSV))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ds := decode(t, w)["dataset"].(map[string]interface{})
	return ds["id"].(string)
}

func TestImportAndFetchDataset(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, uploadRequest(t, "routes.csv", "courier", courierCSV))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	ds := body["dataset"].(map[string]interface{})
	assert.Equal(t, "routes", ds["name"])
	assert.Equal(t, "courier", ds["operationDomain"])
	assert.Equal(t, 3.0, ds["rowCount"])
	assert.Equal(t, "full", body["persist"].(map[string]interface{})["fidelity"])

	id := ds["id"].(string)
	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode(t, w)["id"])

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets?domain=courier", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["count"])

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets?domain=energy", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["count"])
	assert.Equal(t, []interface{}{}, decode(t, w)["datasets"])
}

func TestImportRejections(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		req    *http.Request
		status int
		code   string
	}{
		{"unknown domain", uploadRequest(t, "routes.csv", "harbour", courierCSV), http.StatusBadRequest, "INVALID_INPUT"},
		{"missing file", uploadRequest(t, "", "courier", ""), http.StatusBadRequest, "INVALID_INPUT"},
		{"unsupported format", uploadRequest(t, "routes.pdf", "courier", courierCSV), http.StatusBadRequest, "PARSE_ERROR"},
		{"no rows", uploadRequest(t, "routes.csv", "courier", "route,status\n"), http.StatusBadRequest, "PARSE_ERROR"},
		{"bad json", uploadRequest(t, "routes.json", "courier", "{not json"), http.StatusBadRequest, "PARSE_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, s, tc.req)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	assert.Equal(t, 0.0, decode(t, w)["count"])
}

func TestUnknownDatasetIsNotFound(t *testing.T) {
	s := newTestServer(t)
	id := string(core.NewID())

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/datasets/"+id, nil),
		httptest.NewRequest(http.MethodDelete, "/api/datasets/"+id, nil),
		httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/analysis", nil),
		httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/metrics", nil),
	} {
		w := do(t, s, req)
		assert.Equal(t, http.StatusNotFound, w.Code, req.URL.Path)
		assert.Equal(t, "NOT_FOUND", errorCode(t, w))
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := newTestServer(t)
	id := importCourier(t, s)

	w := do(t, s, httptest.NewRequest(http.MethodDelete, "/api/datasets/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode(t, w)["removed"])

	importCourier(t, s)
	w = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/datasets", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	assert.Equal(t, 0.0, decode(t, w)["count"])
}

func TestKPIsAndCharts(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/kpis/courier", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["hasRealData"])

	importCourier(t, s)
	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/kpis/courier", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["hasRealData"])
	assert.Equal(t, 3.0, body["kpis"].(map[string]interface{})["throughput"])

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/charts/courier/pie", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "R1", data[0].(map[string]interface{})["name"])

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/charts/courier/radar", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/kpis/harbour", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimeSeriesAndOverview(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/timeseries/energy", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 31)

	importCourier(t, s)
	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/overview", nil))
	require.Equal(t, http.StatusOK, w.Code)
	domains := decode(t, w)["domains"].([]interface{})
	require.Len(t, domains, 4)
	assert.Equal(t, "courier", domains[1].(map[string]interface{})["domain"])
	assert.Equal(t, true, domains[1].(map[string]interface{})["hasRealData"])
	assert.Equal(t, false, domains[0].(map[string]interface{})["hasRealData"])
}

func TestScenarioEndpoint(t *testing.T) {
	s := newTestServer(t)
	id := importCourier(t, s)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/scenarios", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return do(t, s, req)
	}

	w := post(`{"datasetId":"` + id + `","metric":"delivery_time","workforceLevel":100}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, 0.0, body["projectedChange"])
	assert.Equal(t, "duration", body["elasticityClass"])

	w = post(`{"datasetId":"` + id + `","metric":"delivery_time","workforceLevel":200}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = post(`{"datasetId":"` + id + `","metric":"status","workforceLevel":100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = post(`{"datasetId":"` + id + `","metric":"missing","workforceLevel":100}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = post(`{"datasetId":"` + id + `","metric":"delivery_time"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	metrics := decode(t, w)["metrics"].([]interface{})
	require.Len(t, metrics, 1)
	assert.Equal(t, "delivery_time", metrics[0].(map[string]interface{})["name"])
}

func TestAnalysisFormats(t *testing.T) {
	s := newTestServer(t)
	id := importCourier(t, s)

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/analysis", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["markdown"], "**Route Optimization**")

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/analysis?format=html", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<strong>Route Optimization</strong>")

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/analysis?format=markdown", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "## Dataset Analysis: routes"))

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/analysis?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownRouteAndPanicUseErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	s.router.GET("/api/boom", func(c *gin.Context) { panic("boom") })

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	errBody := decode(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "INTERNAL_ERROR", errBody["code"])
	assert.Equal(t, "internal server error", errBody["message"])
}

func TestScenarioRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/scenarios", strings.NewReader(`{"metric":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	w := do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResponsesAreCompressed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	w := do(t, s, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
