package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/handler"
	"github.com/unclebandit/creditsim/internal/metrics"
	"github.com/unclebandit/creditsim/internal/model"
	"github.com/unclebandit/creditsim/internal/service"
)

// --- Mock stats reader ---

type MockStats struct {
	fail bool
}

func (m *MockStats) ListTables(ctx context.Context) ([]service.TableInfo, error) {
	if m.fail {
		return nil, errors.New("disk gone")
	}
	return []service.TableInfo{{Name: model.TableCustomers, Rows: 2, Columns: model.CustomerColumns}}, nil
}

func (m *MockStats) GetTable(ctx context.Context, name string) (*model.Table, error) {
	if name != model.TableCustomers {
		return nil, appErrors.NewTableNotFound(name)
	}
	return &model.Table{
		Name:    model.TableCustomers,
		Columns: []string{"customer_id", "age"},
		Rows:    [][]string{{"1", "30"}, {"2", "41"}},
	}, nil
}

func (m *MockStats) GetCampaignDetailsWithStats(ctx context.Context, id int) (*service.CampaignDetails, error) {
	if id != 1 {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return &service.CampaignDetails{
		ID:           1,
		Channel:      model.ChannelApp,
		Exposures:    10,
		Treatment:    service.ArmStats{Exposures: 6, Opened: 3, OpenRate: 0.5},
		Control:      service.ArmStats{Exposures: 4, Opened: 1, OpenRate: 0.25},
		OpenRateLift: 0.25,
	}, nil
}

func newServer(stats handler.StatsReader) (http.Handler, *metrics.Metrics) {
	m := metrics.New()
	return handler.NewRouter(stats, m, zap.NewNop()), m
}

func do(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListTables(t *testing.T) {
	h, _ := newServer(&MockStats{})
	w := do(t, h, "/tables")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []service.TableInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, model.TableCustomers, body.Data[0].Name)
	assert.Equal(t, 2, body.Data[0].Rows)
}

func TestListTables_Error(t *testing.T) {
	h, _ := newServer(&MockStats{fail: true})
	w := do(t, h, "/tables")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetTable_CSV(t *testing.T) {
	h, _ := newServer(&MockStats{})
	w := do(t, h, "/tables/customers")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "customer_id,age\n1,30\n2,41\n", w.Body.String())
}

func TestGetTable_NotFound(t *testing.T) {
	h, _ := newServer(&MockStats{})
	w := do(t, h, "/tables/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCampaign(t *testing.T) {
	h, _ := newServer(&MockStats{})

	w := do(t, h, "/campaigns/1")
	require.Equal(t, http.StatusOK, w.Code)
	var details service.CampaignDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, 10, details.Exposures)
	assert.Equal(t, 0.25, details.OpenRateLift)

	assert.Equal(t, http.StatusNotFound, do(t, h, "/campaigns/7").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "/campaigns/abc").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newServer(&MockStats{})
	do(t, h, "/tables")
	do(t, h, "/tables/nope")

	w := do(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `creditsim_http_requests_total{route="/tables",status="200"} 1`)
	assert.Contains(t, w.Body.String(), `creditsim_http_requests_total{route="/tables/{name}",status="404"} 1`)
}
