package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcb-service/internal/config"
	"dcb-service/internal/dcb/model"
	"dcb-service/internal/store"
)

type memStore struct {
	rows      map[string]store.Record
	districts map[string]string
}

func (m *memStore) Upsert(_ context.Context, _ string, records []store.Record, keys []string) (store.UpsertResult, error) {
	var res store.UpsertResult
	for _, rec := range records {
		key := fmt.Sprint(rec[keys[0]]) + "|" + fmt.Sprint(rec[keys[1]])
		if _, ok := m.rows[key]; ok {
			res.Updated++
		} else {
			res.Created++
		}
		m.rows[key] = rec
	}
	return res, nil
}

func (m *memStore) Lookup(_ context.Context, table string, filter map[string]any) ([]store.Record, error) {
	if table == "districts" {
		if id, ok := m.districts[fmt.Sprint(filter["name"])]; ok {
			return []store.Record{{"id": id}}, nil
		}
	}
	return nil, nil
}

func testConfig() config.Config {
	return config.Config{
		MaxUploadMB:     8,
		DCBTable:        "institution_dcb",
		FinancialYear:   "2025-26",
		BatchSize:       100,
		MaxErrorSamples: 5,
	}
}

func uploadCSV(t *testing.T, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const sampleCSV = `Sl No,AP Gazette No,Name of the Institution,Mandal,Village,Demand Arrears,Demand Current,Collection Arrears,Collection Current
1,ABC/99,Sri Temple,Foo,Bar,5000,3000,2000,1000
2,DEF/7,Sri Mosque,Baz,,0,"1,500",0,500
`

func TestImportHandler(t *testing.T) {
	st := &memStore{rows: map[string]store.Record{}, districts: map[string]string{"Adoni": "d-1"}}
	h := Import(testConfig(), st, map[string]string{}, zerolog.Nop())

	rr := httptest.NewRecorder()
	h(rr, uploadCSV(t, nil, "Adoni.csv", sampleCSV))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var sum model.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	require.Len(t, sum.Sheets, 1)
	assert.Equal(t, 2, sum.Totals.Created)
	assert.Equal(t, 0, sum.Totals.Errors)

	rec := st.rows["DEF/7|2025-26"]
	require.NotNil(t, rec)
	assert.Equal(t, 1500.0, rec["demand_current"])
	assert.Equal(t, "d-1", rec["district_id"])
}

func TestImportHandlerDryRun(t *testing.T) {
	st := &memStore{rows: map[string]store.Record{}, districts: map[string]string{}}
	h := Import(testConfig(), st, map[string]string{}, zerolog.Nop())

	rr := httptest.NewRecorder()
	h(rr, uploadCSV(t, map[string]string{"dry_run": "true"}, "Adoni.csv", sampleCSV))
	require.Equal(t, http.StatusOK, rr.Code)

	var sum model.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.Totals.Created)
	assert.Empty(t, st.rows, "dry run never touches the real store")
}

func TestImportHandlerYearOverride(t *testing.T) {
	st := &memStore{rows: map[string]store.Record{}, districts: map[string]string{"Adoni": "d-1"}}
	h := Import(testConfig(), st, map[string]string{}, zerolog.Nop())

	rr := httptest.NewRecorder()
	h(rr, uploadCSV(t, map[string]string{"year": "2024-25"}, "Adoni.csv", sampleCSV))
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Contains(t, st.rows, "ABC/99|2024-25")
}

func TestImportHandlerMissingFile(t *testing.T) {
	st := &memStore{rows: map[string]store.Record{}, districts: map[string]string{}}
	h := Import(testConfig(), st, map[string]string{}, zerolog.Nop())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("district", "Adoni"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	h(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "missing file"))
}
