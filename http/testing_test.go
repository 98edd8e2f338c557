package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aukilabs/surfacegrid/featureflag"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

// wallJSON is a 11m x 6m wall that yields 10 x 5 samples with the testing
// defaults.
const wallJSON = `{"position":[0,0,0],"right":[1,0,0],"up":[0,1,0],"bounds":[1100,600]}`

func newTestGridHandler(flags ...string) GridHandler {
	return GridHandler{
		Defaults: GridDefaults{
			DensityX:       1,
			DensityY:       1,
			ScaleFactor:    100,
			MergeTolerance: 0.4,
		},
		FeatureFlags: featureflag.New(flags),
	}
}

func post(t *testing.T, h http.Handler, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "http://localsurfacegrid", bytes.NewBufferString(body))
	for k, v := range header {
		req.Header[k] = v
	}

	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, contentTypeJSON, rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
