package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfbscan/tfbscan/internal/app"
	"github.com/tfbscan/tfbscan/internal/engine"
	"github.com/tfbscan/tfbscan/internal/jaspar"
	"github.com/tfbscan/tfbscan/internal/metrics"
	"github.com/tfbscan/tfbscan/internal/report"
	"github.com/tfbscan/tfbscan/internal/store"
	"github.com/tfbscan/tfbscan/internal/types"
	"github.com/tfbscan/tfbscan/internal/window"
)

type fakeSearcher struct {
	res   engine.Result
	err   error
	email string
	cfg   engine.Config
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, email string, cfg engine.Config) (engine.Result, error) {
	f.calls++
	f.email, f.cfg = email, cfg
	return f.res, f.err
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/tfbs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTFBS_ReturnsWindows(t *testing.T) {
	f := &fakeSearcher{res: engine.Result{TF: "FOXF2", Windows: []types.WindowResult{{
		ID: 1, Start: 28, End: 58, Score: 0.03,
		Observations: []types.SequenceObservation{{SequenceID: "NM_A", Observation: types.Observation{Position: 50, RawPosition: 50, Score: 8}}},
	}}}}
	h := New(f, Options{Workers: 3}).Handler()

	rec := post(t, h, `{"email":"a@b.org","t":-5,"m":"MA0031.1","s":0.01,"mrna":["NM_A","NM_B"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "a@b.org", f.email)
	assert.Equal(t, engine.Config{
		Motif: "MA0031.1", Sequences: []string{"NM_A", "NM_B"},
		PromoterLength: 1000, WindowSize: 40, WindowThreshold: 0.01, Threshold: -5, Workers: 3,
	}, f.cfg)

	var got []report.Window
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, [2]int{28, 58}, got[0].WindowPos)
	assert.Equal(t, "FOXF2", got[0].TF)
}

func TestTFBS_EmptyResultMessage(t *testing.T) {
	f := &fakeSearcher{res: engine.Result{Windows: []types.WindowResult{}}}
	h := New(f, Options{}).Handler()
	rec := post(t, h, `{"email":"a@b.org","t":-5,"l":500,"w":20,"m":"MA0031.1","s":0.01,"p":0.5,"mrna":["NM_A"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got report.NoResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, report.NoResultMessage, got.Message)
	assert.Equal(t, 500, got.Parameters.PromoterLength)
	assert.Equal(t, 20, got.Parameters.WindowSize)
	assert.Equal(t, 0.5, got.Parameters.Pseudocount)
	assert.Equal(t, []string{"NM_A"}, got.Parameters.MRNA)
}

func TestTFBS_BadRequests(t *testing.T) {
	cases := map[string]string{
		"no motif":      `{"email":"a@b.org","t":-5,"s":0.01,"mrna":["NM_A"]}`,
		"no mrna":       `{"email":"a@b.org","t":-5,"m":"MA0031.1","s":0.01,"mrna":[]}`,
		"no thresholds": `{"email":"a@b.org","m":"MA0031.1","mrna":["NM_A"]}`,
		"bad json":      `{"m":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			f := &fakeSearcher{}
			rec := post(t, New(f, Options{}).Handler(), body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, f.calls)
		})
	}
}

func TestTFBS_ErrorMapping(t *testing.T) {
	body := `{"email":"a@b.org","t":-5,"m":"MA0031.1","s":0.01,"mrna":["NM_A"]}`

	f := &fakeSearcher{err: &window.ConfigError{Field: "window_size", Reason: "must be smaller than promoter_length"}}
	rec := post(t, New(f, Options{}).Handler(), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "window_size")

	for _, clientErr := range []error{
		fmt.Errorf("sequence NM_A: %w", app.ErrNoEmail),
		fmt.Errorf("motif ../x: %w", store.ErrBadName),
	} {
		f = &fakeSearcher{err: clientErr}
		rec = post(t, New(f, Options{}).Handler(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, clientErr.Error())
	}

	f = &fakeSearcher{err: errors.New("entrez efetch: connection refused")}
	rec = post(t, New(f, Options{}).Handler(), body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInternal)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestTFBS_ClientErrorsFromApp(t *testing.T) {
	a, err := app.New(app.Options{DataDir: t.TempDir(), EntrezBaseURL: "http://127.0.0.1:1", JASPARBaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	require.NoError(t, a.Store.SaveMotif(jaspar.Matrix{
		ID: "MA0031.1", Name: "FOXD1",
		Counts: [4][]float64{{10, 0}, {0, 10}, {0, 0}, {0, 0}},
	}))
	h := New(a, Options{}).Handler()

	cases := map[string]struct {
		body string
		want string
	}{
		"no email":     {`{"t":-5,"m":"MA0031.1","s":0.01,"mrna":["NM_A"]}`, "email"},
		"bad motif id": {`{"email":"a@b.org","t":-5,"m":"../x","s":0.01,"mrna":["NM_A"]}`, "invalid identifier"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := post(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
			assert.NotContains(t, rec.Body.String(), msgInternal)
		})
	}
}

func TestRoutes(t *testing.T) {
	m := metrics.NewMetrics()
	h := New(&fakeSearcher{}, Options{Metrics: m}).Handler()

	for _, path := range []string{"/", "/welcome"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Welcome to the TFBS API")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"tfbscan"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tfbs", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tfbscan_http_requests_total")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("other", "404")))
}
