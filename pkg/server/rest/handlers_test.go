package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/routemodel"
	"lintang/routeplanner/pkg/server/rest"
	"lintang/routeplanner/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*chi.Mux, *prometheus.Registry) {
	t.Helper()
	nodes := []datastructure.Node{
		{X: 0, Y: 0, Lat: -7.56, Lon: 110.82},
		{X: 0.5, Y: 0, Lat: -7.56, Lon: 110.825},
		{X: 1, Y: 0, Lat: -7.56, Lon: 110.83},
		{X: 1, Y: 1, Lat: -7.55, Lon: 110.83},
		{X: 0.9, Y: 1, Lat: -7.55, Lon: 110.829},
	}
	roads := []datastructure.Road{
		{WayID: 1, Type: datastructure.RoadTypeSecondary, NodeIdxs: []int32{0, 1, 2}},
		{WayID: 2, Type: datastructure.RoadTypeSecondary, NodeIdxs: []int32{3, 4}},
	}
	m, err := routemodel.NewRouteModel(nodes, roads, 500)
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := service.NewNavigationService(m, log, 2)

	reg := prometheus.NewRegistry()
	r := chi.NewRouter()
	metrics := rest.NewMetrics(reg)
	r.Use(rest.PromeHttpMiddleware(metrics))
	rest.NavigatorRouter(r, svc, metrics, 3)
	return r, reg
}

func doPost(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestShortestPathHandler(t *testing.T) {
	r, reg := newTestRouter(t)

	rec := doPost(r, "/api/navigations/shortest-path", `{"start_x":0,"start_y":0,"end_x":100,"end_y":0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rest.ShortestPathResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, 500.0, resp.Dist)
	assert.Len(t, resp.Nodes, 3)
	assert.Len(t, resp.Route, 3)
	assert.NotEmpty(t, resp.Path)
	assert.Equal(t, "A* Algorithm", resp.Alg)
	assert.Equal(t, 0.0, resp.Nodes[2].DistFromGoal)

	assert.Equal(t, 1.0, queryCount(t, reg, "found"))
	assert.Equal(t, 0.0, queryCount(t, reg, "not_found"))
}

// queryCount nilai counter shortest path query dengan label result.
func queryCount(t *testing.T, reg *prometheus.Registry, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "routeplanner_shortestpath_query_count" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestShortestPathHandlerResultLabels(t *testing.T) {
	r, reg := newTestRouter(t)

	rec := doPost(r, "/api/navigations/shortest-path", `{"start_x":0,"start_y":0,"end_x":100,"end_y":100}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/navigations/shortest-path",
		strings.NewReader(`{"start_x":0,"start_y":0,"end_x":100,"end_y":0}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	assert.Equal(t, 1.0, queryCount(t, reg, "not_found"))
	assert.Equal(t, 1.0, queryCount(t, reg, "error"))
	assert.Equal(t, 0.0, queryCount(t, reg, "found"))
}

func TestShortestPathHandlerErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"unreachable", `{"start_x":0,"start_y":0,"end_x":100,"end_y":100}`, http.StatusNotFound},
		{"out of range", `{"start_x":0,"start_y":0,"end_x":101,"end_y":0}`, http.StatusBadRequest},
		{"missing field", `{"start_x":0,"start_y":0,"end_x":100}`, http.StatusBadRequest},
		{"malformed json", `{"start_x":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doPost(r, "/api/navigations/shortest-path", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var errResp rest.ErrResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.NotEmpty(t, errResp.ErrorText)
		})
	}

	t.Run("validation messages translated", func(t *testing.T) {
		rec := doPost(r, "/api/navigations/shortest-path", `{"start_x":-5,"start_y":0,"end_x":100,"end_y":0}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var errResp rest.ErrResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		require.Len(t, errResp.ErrValidation, 1)
		assert.Contains(t, errResp.ErrValidation[0], "StartX")
	})
}

func TestShortestPathBatchHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"queries":[
		{"start_x":0,"start_y":0,"end_x":100,"end_y":0},
		{"start_x":0,"start_y":0,"end_x":100,"end_y":100},
		{"start_x":100,"start_y":100,"end_x":90,"end_y":100}
	]}`
	rec := doPost(r, "/api/navigations/shortest-path-batch", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rest.ShortestPathBatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)

	assert.Equal(t, 0, resp.Results[0].Index)
	require.NotNil(t, resp.Results[0].Result)
	assert.Equal(t, 500.0, resp.Results[0].Result.Dist)

	assert.Nil(t, resp.Results[1].Result)
	assert.NotEmpty(t, resp.Results[1].Error)

	require.NotNil(t, resp.Results[2].Result)
	assert.Equal(t, 50.0, resp.Results[2].Result.Dist)
}

func TestShortestPathBatchHandlerLimits(t *testing.T) {
	r, _ := newTestRouter(t)

	q := `{"start_x":0,"start_y":0,"end_x":100,"end_y":0}`
	rec := doPost(r, "/api/navigations/shortest-path-batch", `{"queries":[`+strings.Join([]string{q, q, q, q}, ",")+`]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doPost(r, "/api/navigations/shortest-path-batch", `{"queries":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doPost(r, "/api/navigations/shortest-path-batch", `{"queries":[{"start_x":0}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHello(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/navigations/hello", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello, World!")
}
