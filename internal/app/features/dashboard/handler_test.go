package dashboard_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/realtycrm/internal/app/features/dashboard"
	"github.com/dalemusser/realtycrm/internal/app/store/queries/dashboardqueries"
	"github.com/dalemusser/realtycrm/internal/app/system/auth"
	"github.com/dalemusser/realtycrm/internal/app/system/telemetry"
	"github.com/dalemusser/realtycrm/internal/domain/models"
	"github.com/dalemusser/realtycrm/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	src     *testutil.MemSource
	router  chi.Router
	metrics *telemetry.Metrics
	logs    *observer.ObservedLogs
}

func newEnv(t *testing.T) *env {
	t.Helper()

	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	src := testutil.NewMemSource()
	engine := dashboardqueries.New(src, dashboardqueries.WithClock(func() time.Time { return testNow }))
	metrics := telemetry.New(prometheus.NewRegistry())
	h := dashboard.NewHandler(engine, 0, metrics, zap.New(core))

	return &env{src: src, router: dashboard.Routes(h, sm), metrics: metrics, logs: logs}
}

type envelope struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	ErrorRef string          `json:"errorRef"`
	Data     json.RawMessage `json:"data"`
}

func (e *env) do(t *testing.T, target string, user *testutil.TestUser) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := testutil.NewRequest("GET", target)
	if user != nil {
		req = testutil.WithUser(req, *user)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return rec, body
}

func addLead(src *testutil.MemSource, status, source string, assignedTo primitive.ObjectID, at time.Time) {
	src.AddLead(models.Lead{
		ID:         primitive.NewObjectID(),
		Name:       "Lead",
		Status:     status,
		Source:     source,
		AssignedTo: assignedTo,
		CreatedAt:  at,
	})
}

func TestRoutes_RequireSignIn(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/stats", "/leads-trend", "/revenue-trend", "/project-status", "/lead-sources", "/recent-activities"} {
		rec, body := e.do(t, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.False(t, body.Success, path)
	}
}

func TestServeStats_Admin(t *testing.T) {
	e := newEnv(t)
	a := primitive.NewObjectID()
	e.src.AddUser(models.User{ID: a, FullName: "Asha", Role: models.RoleAssociate})
	addLead(e.src, models.LeadStatusNew, models.LeadSourceWebsite, a, testNow.Add(-time.Hour))

	admin := testutil.AdminUser()
	rec, body := e.do(t, "/stats", &admin)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, body.Success)

	var stats dashboardqueries.AdminStats
	require.NoError(t, json.Unmarshal(body.Data, &stats))
	assert.Equal(t, int64(1), stats.TotalLeads)
	assert.Equal(t, int64(1), stats.TotalAssociates)

	assert.Equal(t, 1.0, promtest.ToFloat64(e.metrics.Requests.WithLabelValues("stats", "admin", telemetry.OutcomeOK)))
}

func TestServeStats_Associate(t *testing.T) {
	e := newEnv(t)
	self := primitive.NewObjectID()
	addLead(e.src, models.LeadStatusClosedWon, models.LeadSourceWebsite, self, testNow)
	addLead(e.src, models.LeadStatusNew, models.LeadSourceWebsite, self, testNow)
	addLead(e.src, models.LeadStatusNew, models.LeadSourceWebsite, primitive.NewObjectID(), testNow)

	user := testutil.AssociateUser(self)
	rec, body := e.do(t, "/stats", &user)

	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &raw))
	assert.Equal(t, 2.0, raw["totalLeads"])
	assert.Equal(t, "50.0", raw["conversionRate"])
	assert.NotContains(t, raw, "totalRevenue")
}

func TestServeStats_UnknownRole(t *testing.T) {
	e := newEnv(t)
	viewer := testutil.TestUser{ID: primitive.NewObjectID().Hex(), Role: "viewer"}

	rec, body := e.do(t, "/stats", &viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, body.Success)
}

func TestServeLeadsTrend_Period(t *testing.T) {
	e := newEnv(t)
	admin := testutil.AdminUser()
	a := primitive.NewObjectID()
	addLead(e.src, models.LeadStatusNew, models.LeadSourceWebsite, a, testNow.AddDate(0, 0, -20))
	addLead(e.src, models.LeadStatusNew, models.LeadSourceWebsite, a, testNow.AddDate(0, 0, -2))

	tests := []struct {
		target string
		code   int
		points int
	}{
		{"/leads-trend", http.StatusOK, 2}, // default 30 days
		{"/leads-trend?period=7", http.StatusOK, 1},
		{"/leads-trend?period=0", http.StatusBadRequest, 0},
		{"/leads-trend?period=-5", http.StatusBadRequest, 0},
		{"/leads-trend?period=week", http.StatusBadRequest, 0},
	}

	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			rec, body := e.do(t, tc.target, &admin)
			require.Equal(t, tc.code, rec.Code)
			if tc.code != http.StatusOK {
				assert.False(t, body.Success)
				assert.NotEmpty(t, body.Message)
				return
			}
			var points []dashboardqueries.DailyCount
			require.NoError(t, json.Unmarshal(body.Data, &points))
			assert.Len(t, points, tc.points)
		})
	}
}

func TestServeRevenueTrend_AdminOnly(t *testing.T) {
	e := newEnv(t)
	a := primitive.NewObjectID()
	rd := testNow.Add(-24 * time.Hour)
	e.src.AddPayment(models.Payment{ID: primitive.NewObjectID(), Amount: 1000, Status: models.PaymentStatusReceived, Associate: a, ReceivedDate: &rd, CreatedAt: rd})

	associate := testutil.AssociateUser(a)
	rec, _ := e.do(t, "/revenue-trend", &associate)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := testutil.AdminUser()
	rec, body := e.do(t, "/revenue-trend?period=7", &admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var points []dashboardqueries.DailyRevenue
	require.NoError(t, json.Unmarshal(body.Data, &points))
	assert.Equal(t, []dashboardqueries.DailyRevenue{{Date: "2026-03-14", Revenue: 1000}}, points)
}

func TestServeDistributionsAndActivities(t *testing.T) {
	e := newEnv(t)
	self := primitive.NewObjectID()
	e.src.AddProject(models.Project{ID: primitive.NewObjectID(), Status: models.ProjectStatusCompleted})
	addLead(e.src, models.LeadStatusNew, models.LeadSourceGoogle, self, testNow.Add(-time.Minute))
	addLead(e.src, models.LeadStatusNew, models.LeadSourceFacebook, primitive.NewObjectID(), testNow)

	user := testutil.AssociateUser(self)

	rec, body := e.do(t, "/project-status", &user)
	require.Equal(t, http.StatusOK, rec.Code)
	var projects []dashboardqueries.StatusCount
	require.NoError(t, json.Unmarshal(body.Data, &projects))
	assert.Equal(t, []dashboardqueries.StatusCount{{Status: models.ProjectStatusCompleted, Count: 1}}, projects)

	rec, body = e.do(t, "/lead-sources", &user)
	require.Equal(t, http.StatusOK, rec.Code)
	var sources []dashboardqueries.SourceCount
	require.NoError(t, json.Unmarshal(body.Data, &sources))
	assert.Equal(t, []dashboardqueries.SourceCount{{Source: models.LeadSourceGoogle, Count: 1}}, sources)

	rec, body = e.do(t, "/recent-activities", &user)
	require.Equal(t, http.StatusOK, rec.Code)
	var feed []dashboardqueries.Activity
	require.NoError(t, json.Unmarshal(body.Data, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, "New lead: Lead (New)", feed[0].Message)
}

func TestServeAssociatePerformance_Access(t *testing.T) {
	e := newEnv(t)
	self := primitive.NewObjectID()
	other := primitive.NewObjectID()
	addLead(e.src, models.LeadStatusQualified, models.LeadSourceWebsite, other, testNow)

	admin := testutil.AdminUser()
	associate := testutil.AssociateUser(self)

	rec, body := e.do(t, "/associate-performance/"+other.Hex(), &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var perf dashboardqueries.Performance
	require.NoError(t, json.Unmarshal(body.Data, &perf))
	assert.Equal(t, []dashboardqueries.StatusCount{{Status: models.LeadStatusQualified, Count: 1}}, perf.LeadPerformance)
	assert.Empty(t, perf.CommissionTrend)

	rec, _ = e.do(t, "/associate-performance/"+self.Hex(), &associate)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = e.do(t, "/associate-performance/"+other.Hex(), &associate)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = e.do(t, "/associate-performance/not-an-id", &admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_DataAccessFailure(t *testing.T) {
	e := newEnv(t)
	e.src.FailOn("GroupCount", errors.New("connection refused"))

	admin := testutil.AdminUser()
	rec, body := e.do(t, "/project-status", &admin)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "Server error", body.Message)
	assert.NotEmpty(t, body.ErrorRef)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	logged := e.logs.FilterMessage("dashboard query failed").All()
	require.Len(t, logged, 1)
	assert.Equal(t, body.ErrorRef, logged[0].ContextMap()["error_ref"])
	assert.Equal(t, "project-status", logged[0].ContextMap()["endpoint"])

	assert.Equal(t, 1.0, promtest.ToFloat64(e.metrics.Requests.WithLabelValues("project-status", "admin", telemetry.OutcomeError)))
}
