package httputil_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medflow/mrz-scanner/pkg/httputil"
	"github.com/medflow/mrz-scanner/pkg/logger"
	"github.com/medflow/mrz-scanner/pkg/testutil"
)

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test")
	panics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := httputil.RequestID(httputil.Recoverer(log)(panics))

	req := testutil.WithRequestID(testutil.NewHTTPRequest(http.MethodGet, "/api/v1/scans/x", nil), "req-panic")
	rec := testutil.ExecuteRequest(handler, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-panic", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"req-panic"`)
	assert.Contains(t, buf.String(), "panic recovered")
}
