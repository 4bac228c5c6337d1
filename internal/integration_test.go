package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"repairshop-backend/config"
	"repairshop-backend/internal/api"
	"repairshop-backend/internal/model"
	"repairshop-backend/internal/store"
)

var dbSeq atomic.Int64

// setupServer builds a router backed by a fresh in-memory SQLite database.
// TranslateError makes uniqueness and foreign-key violations surface as the
// same gorm error kinds the postgres backend produces.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:itest%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	// A shared-cache memory database lives only while a connection is open.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(&model.Client{}, &model.Machine{}, &model.Repair{}))

	cfg := &config.ServerConfig{
		RateLimitPerSec:  10000,
		RateLimitBurst:   10000,
		CORSAllowOrigins: []string{"*"},
		QueryMode:        config.QueryModeJoin,
	}
	return api.NewRouter(store.NewGormStore(testDB), cfg)
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRepairLifecycle(t *testing.T) {
	router := setupServer(t)

	w := do(router, "POST", "/clients", `{"client_id":"ACME","name":"ACME Corp"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ACME", decode(t, w)["client_id"])

	w = do(router, "POST", "/machines", `{"ns":"SN-1","brand":"Acme","class":"Lathe"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SN-1", decode(t, w)["ns"])

	w = do(router, "POST", "/repairs", `{"client_id":"ACME","ns":"SN-1","intake_date":"2024-01-01","status":"open"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(float64)
	require.Greater(t, id, float64(0))
	path := fmt.Sprintf("/repairs/%.0f", id)

	// The single read is joined with the machine and flattened.
	w = do(router, "GET", path, "")
	require.Equal(t, http.StatusOK, w.Code)
	rec := decode(t, w)
	assert.Equal(t, "Acme", rec["brand"])
	assert.Equal(t, "Lathe", rec["class"])
	assert.Equal(t, "open", rec["status"])
	assert.Equal(t, "ACME Corp", rec["client_name"])
	assert.Equal(t, false, rec["billed"])
	assert.Equal(t, "", rec["completed_date"])

	// A billed-only partial update touches exactly that field.
	w = do(router, "PUT", path, `{"billed":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, "GET", path, "")
	rec = decode(t, w)
	assert.Equal(t, true, rec["billed"])
	assert.Equal(t, "open", rec["status"])
	assert.Equal(t, "2024-01-01", rec["intake_date"])
	assert.Equal(t, "Acme", rec["brand"])

	// Superset payloads are tolerated; only recognized fields apply.
	w = do(router, "PUT", path, `{"status":"done","completed_date":"2024-02-01","favourite_color":"red"}`)
	require.Equal(t, http.StatusOK, w.Code)
	rec = decode(t, do(router, "GET", path, ""))
	assert.Equal(t, "done", rec["status"])
	assert.Equal(t, "2024-02-01", rec["completed_date"])

	w = do(router, "PUT", path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "DELETE", path, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// A delete that affected nothing is not-found, never success.
	w = do(router, "DELETE", path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, "GET", path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRepairCreateRejectsDanglingReferences(t *testing.T) {
	router := setupServer(t)

	w := do(router, "POST", "/repairs", `{"client_id":"NOPE","ns":"NOPE","intake_date":"2024-01-01","status":"open"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Migration must hang both constraints off repairs; a constraint pointing
// the other way would make every client or machine insert fail against its
// (empty) repairs reference.
func TestMigrationConstraintsPointFromRepairs(t *testing.T) {
	dsn := fmt.Sprintf("file:itest%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(&model.Client{}, &model.Machine{}, &model.Repair{}))

	tableSQL := func(name string) string {
		var ddl string
		require.NoError(t, testDB.Raw(
			"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&ddl).Error)
		require.NotEmpty(t, ddl)
		return ddl
	}

	repairs := tableSQL("repairs")
	assert.Contains(t, repairs, "FOREIGN KEY")
	assert.Contains(t, repairs, "clients")
	assert.Contains(t, repairs, "machines")

	assert.NotContains(t, tableSQL("clients"), "FOREIGN KEY")
	assert.NotContains(t, tableSQL("machines"), "FOREIGN KEY")
}

func TestClientFindOrCreate(t *testing.T) {
	router := setupServer(t)

	// First submission by name inserts and generates an id.
	w := do(router, "POST", "/clients", `{"name":"Beta Works","phone":"111"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	firstID := decode(t, w)["client_id"].(string)
	require.NotEmpty(t, firstID)

	// Re-submission resolves the same row; attributes do not mutate.
	w = do(router, "POST", "/clients", `{"name":"Beta Works","phone":"222"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, firstID, decode(t, w)["client_id"])

	w = do(router, "GET", "/clients/"+firstID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "111", decode(t, w)["phone"])

	// A distinct id carrying an already-taken name loses at the unique
	// index and is answered with a conflict, not a second row.
	w = do(router, "POST", "/clients", `{"client_id":"B2","name":"Beta Works"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	list := decodeList(t, do(router, "GET", "/clients", ""))
	assert.Len(t, list, 1)

	// Partial update of non-key attributes.
	w = do(router, "PUT", "/clients/"+firstID, `{"address":"Main St 1","unknown":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, do(router, "GET", "/clients/"+firstID, ""))
	assert.Equal(t, "Main St 1", got["address"])
	assert.Equal(t, "Beta Works", got["name"])

	w = do(router, "PUT", "/clients/"+firstID, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "PUT", "/clients/missing", `{"phone":"3"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, "GET", "/clients/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClientIDOnlySubmissions(t *testing.T) {
	router := setupServer(t)

	// Name uniqueness applies to non-empty names only: two clients created
	// with nothing but an id must not collide on their blank names.
	w := do(router, "POST", "/clients", `{"client_id":"A1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(router, "POST", "/clients", `{"client_id":"A2"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "A2", decode(t, w)["client_id"])

	list := decodeList(t, do(router, "GET", "/clients", ""))
	assert.Len(t, list, 2)

	// A known id still resolves instead of inserting again.
	w = do(router, "POST", "/clients", `{"client_id":"A1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A1", decode(t, w)["client_id"])
}

func TestMachineUpsertPolicy(t *testing.T) {
	router := setupServer(t)

	w := do(router, "POST", "/machines", `{"ns":"M-1","brand":"Acme","class":"Lathe"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Re-submitting the same serial with a different brand updates in
	// place, and does so consistently across repeated calls.
	for i := 0; i < 2; i++ {
		w = do(router, "POST", "/machines", `{"ns":"M-1","brand":"Bosch","class":"Lathe"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "M-1", decode(t, w)["ns"])

		got := decode(t, do(router, "GET", "/machines/M-1", ""))
		assert.Equal(t, "Bosch", got["brand"])
	}

	list := decodeList(t, do(router, "GET", "/machines", ""))
	assert.Len(t, list, 1, "upsert must never create a duplicate serial")

	w = do(router, "GET", "/machines/NOPE", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func seedFilterData(t *testing.T, router *gin.Engine) {
	t.Helper()
	for _, body := range []string{
		`{"client_id":"C1","name":"Client One"}`,
		`{"client_id":"C2","name":"Client Two"}`,
	} {
		require.Equal(t, http.StatusCreated, do(router, "POST", "/clients", body).Code)
	}
	for _, body := range []string{
		`{"ns":"SN-1","brand":"Acme Industrial","class":"Lathe"}`,
		`{"ns":"SN-2","brand":"Bosch","class":"Mill"}`,
	} {
		require.Equal(t, http.StatusOK, do(router, "POST", "/machines", body).Code)
	}
	for _, body := range []string{
		`{"client_id":"C1","ns":"SN-1","intake_date":"2024-01-01","status":"open","fault_desc":"Cracked spindle"}`,
		`{"client_id":"C1","ns":"SN-2","intake_date":"2024-01-02","status":"done"}`,
		`{"client_id":"C2","ns":"SN-1","intake_date":"2024-01-03","status":"open-waiting"}`,
	} {
		require.Equal(t, http.StatusCreated, do(router, "POST", "/repairs", body).Code)
	}
}

func TestRepairFilters(t *testing.T) {
	router := setupServer(t)
	seedFilterData(t, router)

	// Unfiltered: all rows, newest first.
	all := decodeList(t, do(router, "GET", "/repairs", ""))
	require.Len(t, all, 3)
	assert.Equal(t, float64(3), all[0]["id"])
	assert.Equal(t, float64(1), all[2]["id"])

	// Brand filters the joined machine relation, case-insensitively, as a
	// substring.
	byBrand := decodeList(t, do(router, "GET", "/repairs?brand=acme", ""))
	require.Len(t, byBrand, 2)
	for _, r := range byBrand {
		assert.Equal(t, "Acme Industrial", r["brand"])
	}

	// Status is an exact match, so "open" must not catch "open-waiting".
	byStatus := decodeList(t, do(router, "GET", "/repairs?status=open", ""))
	require.Len(t, byStatus, 1)
	assert.Equal(t, float64(1), byStatus[0]["id"])

	// Identifier filters are exact.
	byClient := decodeList(t, do(router, "GET", "/repairs?client_id=C1", ""))
	assert.Len(t, byClient, 2)
	byNS := decodeList(t, do(router, "GET", "/repairs?ns=SN-2", ""))
	assert.Len(t, byNS, 1)

	// Free-text fault filter.
	byFault := decodeList(t, do(router, "GET", "/repairs?fault=crack", ""))
	require.Len(t, byFault, 1)
	assert.Equal(t, "Cracked spindle", byFault[0]["fault_desc"])

	// Filters combine.
	combined := decodeList(t, do(router, "GET", "/repairs?brand=acme&status=open-waiting", ""))
	require.Len(t, combined, 1)
	assert.Equal(t, "C2", combined[0]["client_id"])

	// An absent (or empty) parameter emits no predicate: rows with empty
	// fault descriptions still appear.
	empties := decodeList(t, do(router, "GET", "/repairs?fault=&brand=", ""))
	assert.Len(t, empties, 3)
}

func TestLookups(t *testing.T) {
	router := setupServer(t)
	seedFilterData(t, router)

	w := do(router, "GET", "/lookups", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)

	toStrings := func(v any) []string {
		raw := v.([]any)
		out := make([]string, len(raw))
		for i, s := range raw {
			out[i] = s.(string)
		}
		return out
	}

	assert.Equal(t, []string{"Acme Industrial", "Bosch"}, toStrings(got["brands"]))
	assert.Equal(t, []string{"Lathe", "Mill"}, toStrings(got["classes"]))
	assert.Equal(t, []string{"Cracked spindle"}, toStrings(got["faults"]), "empty fault descriptions are excluded")
	assert.Equal(t, []string{"C1", "C2"}, toStrings(got["client_ids"]))
	assert.Equal(t, []string{"SN-1", "SN-2"}, toStrings(got["serials"]))
}

func TestResponsesAreUTF8JSON(t *testing.T) {
	router := setupServer(t)

	require.Equal(t, http.StatusCreated,
		do(router, "POST", "/clients", `{"client_id":"PL","name":"Zakład Ślusarski Żółć"}`).Code)

	w := do(router, "GET", "/clients/PL", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Zakład Ślusarski Żółć", decode(t, w)["name"])
}
