package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncPageResolve(ResolveFound)
	pr.IncPageResolve(ResolveFound)
	pr.IncPageResolve(ResolveNotFound)
	pr.ObserveHTTPRequest("/docs/*", http.MethodGet, 200, 15*time.Millisecond)
	pr.IncFeedbackEvent(FeedbackDropped)
	pr.ObserveReindex(time.Second, true)
	pr.SetIndexedDocuments(12)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.pageResolves.WithLabelValues("found")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.pageResolves.WithLabelValues("not_found")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.feedbackEvents.WithLabelValues("dropped")), 0)
	assert.InDelta(t, 12, testutil.ToFloat64(pr.documents), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 5)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncPageResolve(ResolveFound)
		pr.SetIndexedDocuments(1)
	})
}

func TestHTTPHandler_ServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewPrometheusRecorder(reg).SetIndexedDocuments(3)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "docsite_indexed_documents 3")
}
