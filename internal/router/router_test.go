package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prison-records/internal/config"
	"prison-records/internal/importer"
	"prison-records/internal/models"
	"prison-records/internal/report"
	"prison-records/internal/store"
	"prison-records/internal/textgen"
	"prison-records/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type viewData struct {
	View struct {
		Rows         []models.Prisoner `json:"rows"`
		TotalRecords int               `json:"totalRecords"`
		TotalPages   int               `json:"totalPages"`
		PageIndex    int               `json:"pageIndex"`
		Title        string            `json:"title"`
	} `json:"view"`
	State struct {
		Page    models.Page        `json:"page"`
		Filters models.Filters     `json:"filters"`
		Sort    *models.SortConfig `json:"sort"`
	} `json:"state"`
	Record models.Prisoner `json:"record"`
}

type testServer struct {
	engine *gin.Engine
	store  *store.MemoryStore
	reply  func(req textgen.Request) (string, error)
}

func seed() []models.Prisoner {
	return []models.Prisoner{
		{ID: "p1", SNo: 1, ConvictNo: "C-1", Name: "Ali Khan", AdmissionDate: "2024-01-10",
			Category: models.CategoryGeneralConvict, Status: models.StatusConfined, RunningIn: models.FineTypeNA,
			Nationality: "Pakistani", CrimeType: "Theft", StatusUpdateDate: "2024-01-10"},
		{ID: "p2", SNo: 2, ConvictNo: "C-2", Name: "Bashir", AdmissionDate: "2024-02-10",
			Category: models.CategoryForeigner, Status: models.StatusConfined, RunningIn: models.FineTypeFine, Amount: 500,
			Nationality: "Afghani", CrimeType: "Fraud", StatusUpdateDate: "2024-02-10"},
	}
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		reply: func(req textgen.Request) (string, error) { return "generated", nil },
	}
	gen := textgen.Func(func(ctx context.Context, req textgen.Request) (string, error) {
		return ts.reply(req)
	})

	n := 0
	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	ts.store = store.NewMemoryStore(store.Options{
		Location: time.UTC,
		NewID: func() string {
			n++
			return fmt.Sprintf("new-%d", n)
		},
		Now: now,
	}, seed()...)

	norm := &importer.Normalizer{Location: time.UTC, Now: now}
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		App:    config.AppSubConfig{PageSize: 10},
	}
	engine, err := SetupRouter(cfg, Deps{
		Store: ts.store,
		Importer: &importer.Importer{
			Store:      ts.store,
			Normalizer: norm,
			AI:         &importer.AINormalizer{Gen: gen, Normalizer: norm},
		},
		Composer: &report.Composer{Gen: gen},
	})
	require.NoError(t, err)
	ts.engine = engine
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (ts *testServer) upload(t *testing.T, mode, name, content string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import?mode="+mode, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestList_Home(t *testing.T) {
	ts := newServer(t)
	w, env := ts.do(t, http.MethodGet, "/api/prisoners", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.CodeOK, env.Code)

	d := decode[viewData](t, env.Data)
	assert.Equal(t, 2, d.View.TotalRecords)
	assert.Equal(t, 1, d.View.TotalPages)
	assert.Equal(t, "Malir Prison & C.F Karachi", d.View.Title)
	assert.Equal(t, models.PageHome, d.State.Page)
}

func TestView_PageFiltersSortGoto(t *testing.T) {
	ts := newServer(t)

	_, env := ts.do(t, http.MethodPost, "/api/view/page", map[string]string{"page": "Foreigner"})
	d := decode[viewData](t, env.Data)
	require.Len(t, d.View.Rows, 1)
	assert.Equal(t, "C-2", d.View.Rows[0].ConvictNo)
	assert.Equal(t, "Confined Foreigner Prisoners", d.View.Title)

	ts.do(t, http.MethodPost, "/api/view/page", map[string]string{"page": "Home"})
	_, env = ts.do(t, http.MethodPost, "/api/view/filters", map[string]string{"searchTerm": "ali"})
	d = decode[viewData](t, env.Data)
	require.Len(t, d.View.Rows, 1)
	assert.Equal(t, "Ali Khan", d.View.Rows[0].Name)
	assert.Equal(t, models.FilterAll, d.State.Filters.Category)

	ts.do(t, http.MethodPost, "/api/view/filters", map[string]string{})
	ts.do(t, http.MethodPost, "/api/view/sort", map[string]string{"key": "sNo"})
	_, env = ts.do(t, http.MethodPost, "/api/view/sort", map[string]string{"key": "sNo"})
	d = decode[viewData](t, env.Data)
	require.NotNil(t, d.State.Sort)
	assert.Equal(t, models.Descending, d.State.Sort.Direction)
	assert.Equal(t, 2, d.View.Rows[0].SNo)

	w, _ := ts.do(t, http.MethodPost, "/api/view/sort", map[string]string{"key": "shoeSize"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env = ts.do(t, http.MethodPost, "/api/view/goto", map[string]int{"index": 3})
	d = decode[viewData](t, env.Data)
	assert.Equal(t, 3, d.View.PageIndex)
	assert.Empty(t, d.View.Rows)

	w, _ = ts.do(t, http.MethodPost, "/api/view/goto", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestView_GotoHugeIndex(t *testing.T) {
	ts := newServer(t)
	w, env := ts.do(t, http.MethodPost, "/api/view/goto", map[string]int64{"index": 1 << 62})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	d := decode[viewData](t, env.Data)
	assert.Empty(t, d.View.Rows)
	assert.Equal(t, 1, d.View.TotalPages)

	w, env = ts.do(t, http.MethodGet, "/api/prisoners", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	d = decode[viewData](t, env.Data)
	assert.Empty(t, d.View.Rows)
	assert.Equal(t, 2, d.View.TotalRecords)

	w, _ = ts.do(t, http.MethodGet, "/api/export/csv", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, strings.Split(w.Body.String(), "\n"), 3)
}

func TestCreate_AssignsSNoAndNationality(t *testing.T) {
	ts := newServer(t)
	in := models.NewInput()
	in.ConvictNo, in.Name, in.AdmissionDate = "C-3", "Chaudhry", "2024-05-30"
	in.Category = models.CategoryForeigner

	w, env := ts.do(t, http.MethodPost, "/api/prisoners", in)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	d := decode[viewData](t, env.Data)
	assert.Equal(t, 3, d.Record.SNo)
	assert.Equal(t, "new-1", d.Record.ID)
	assert.Equal(t, models.NationalityIndian, d.Record.Nationality)
	assert.Equal(t, "2024-06-01", d.Record.StatusUpdateDate)
	assert.Equal(t, 3, d.View.TotalRecords)

	in.Category = models.CategoryCivil
	in.Nationality = "Afghani"
	in.ConvictNo = "C-4"
	_, env = ts.do(t, http.MethodPost, "/api/prisoners", in)
	d = decode[viewData](t, env.Data)
	assert.Equal(t, models.NationalityPakistani, d.Record.Nationality)
}

func TestCreate_Invalid(t *testing.T) {
	ts := newServer(t)
	in := models.NewInput()
	in.ConvictNo, in.AdmissionDate = "C-3", "2024-05-30"
	in.Status = "Escaped"

	w, env := ts.do(t, http.MethodPost, "/api/prisoners", in)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.CodeInvalidParam, env.Code)
	assert.Contains(t, env.Message, "name is required")
	assert.Contains(t, env.Message, "status has an invalid value")

	all, _ := ts.store.All(context.Background())
	assert.Len(t, all, 2)
}

func TestUpdate(t *testing.T) {
	ts := newServer(t)
	_, env := ts.do(t, http.MethodGet, "/api/prisoners/p2", nil)
	d := decode[viewData](t, env.Data)
	in := d.Record.Input()
	in.Status = models.StatusReleased

	w, env := ts.do(t, http.MethodPut, "/api/prisoners/p2", in)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	d = decode[viewData](t, env.Data)
	assert.Equal(t, "p2", d.Record.ID)
	assert.Equal(t, 2, d.Record.SNo)
	assert.Equal(t, models.StatusReleased, d.Record.Status)
	assert.Equal(t, "Afghani", d.Record.Nationality)
	assert.Equal(t, "2024-06-01", d.Record.StatusUpdateDate)

	w, env = ts.do(t, http.MethodPut, "/api/prisoners/nope", in)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, util.CodeNotFound, env.Code)

	w, _ = ts.do(t, http.MethodGet, "/api/prisoners/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdate_NationalityRule(t *testing.T) {
	ts := newServer(t)

	_, env := ts.do(t, http.MethodGet, "/api/prisoners/p2", nil)
	vd := decode[viewData](t, env.Data)
	in := vd.Record.Input()
	in.Nationality = ""
	w, env := ts.do(t, http.MethodPut, "/api/prisoners/p2", in)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "nationality is required for Foreigner", env.Message)
	got, err := ts.store.Get(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Afghani", got.Nationality)

	_, env = ts.do(t, http.MethodGet, "/api/prisoners/p1", nil)
	vd = decode[viewData](t, env.Data)
	in = vd.Record.Input()
	in.Category = models.CategoryForeigner
	w, env = ts.do(t, http.MethodPut, "/api/prisoners/p1", in)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Equal(t, models.NationalityIndian, decode[viewData](t, env.Data).Record.Nationality)
}

func TestImport_Normal(t *testing.T) {
	ts := newServer(t)
	csv := "convictNo,name,admissionDate,category\nC-10,Dilawar,2024-03-01,Civil\nC-11,Ejaz,45000,\n"
	w, env := ts.upload(t, "normal", "batch.csv", csv)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	var d struct {
		Message string           `json:"message"`
		Summary importer.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "Successfully imported 2 prisoners.", d.Message)
	require.Len(t, d.Summary.Records, 2)
	assert.Equal(t, 3, d.Summary.Records[0].SNo)
	assert.Equal(t, "2023-03-15", d.Summary.Records[1].AdmissionDate)
}

func TestImport_Failures(t *testing.T) {
	ts := newServer(t)

	w, env := ts.upload(t, "normal", "batch.csv", "convictNo,name,admissionDate\nC-10,,2024-03-01\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "Row 2")

	w, env = ts.upload(t, "normal", "batch.csv", "convictNo,name,admissionDate\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File is empty or could not be read.", env.Message)

	w, env = ts.upload(t, "normal", "batch.pdf", "whatever")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Failed to read the file.", env.Message)

	w, _ = ts.upload(t, "magic", "batch.csv", "a\n1\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.reply = func(req textgen.Request) (string, error) { return "", errors.New("quota") }
	w, env = ts.upload(t, "ai", "batch.csv", "Inmate,Number\nX,1\n")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, util.CodeCapability, env.Code)

	all, _ := ts.store.All(context.Background())
	assert.Len(t, all, 2)
}

func TestImport_AI(t *testing.T) {
	ts := newServer(t)
	ts.reply = func(req textgen.Request) (string, error) {
		return `[{"convictNo":"X-1","name":"Farooq","admissionDate":"2024-04-01"},{"name":"NoNumber","admissionDate":"2024-04-01"}]`, nil
	}
	w, env := ts.upload(t, "ai", "batch.csv", "Inmate Name,Convict ID\nFarooq,X-1\nNoNumber,\n")
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	var d struct {
		Summary importer.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, 1, d.Summary.Imported)
	assert.Equal(t, 1, d.Summary.Dropped)
}

func TestExport(t *testing.T) {
	ts := newServer(t)
	w, _ := ts.do(t, http.MethodGet, "/api/export/csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "prisoners_export.csv")
	lines := strings.Split(w.Body.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(models.FieldNames, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"p1","1","C-1"`))

	w, _ = ts.do(t, http.MethodGet, "/api/export/xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "prisoners_export.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	ts.do(t, http.MethodPost, "/api/view/filters", map[string]string{"searchTerm": "zzz"})
	w, _ = ts.do(t, http.MethodGet, "/api/export/csv", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestReports(t *testing.T) {
	ts := newServer(t)
	var prompt string
	ts.reply = func(req textgen.Request) (string, error) {
		prompt = req.Prompt
		return "## Summary", nil
	}

	ts.do(t, http.MethodPost, "/api/view/filters", map[string]string{"crimeType": "Fraud"})
	w, env := ts.do(t, http.MethodPost, "/api/reports/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d struct {
		Report  string `json:"report"`
		Records int    `json:"records"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "## Summary", d.Report)
	assert.Equal(t, 1, d.Records)
	assert.Contains(t, prompt, "- Crime Type: Fraud")

	w, _ = ts.do(t, http.MethodPost, "/api/reports/range", map[string]any{
		"startDate": "2024-03-01", "endDate": "2024-01-01", "sections": []string{"admissions"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = ts.do(t, http.MethodPost, "/api/reports/range", map[string]any{
		"startDate": "2024-01-01", "endDate": "2024-12-31", "sections": []string{"admissions"},
	})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.Contains(t, prompt, "Total New Admissions: 2")

	ts.reply = func(req textgen.Request) (string, error) { return "", errors.New("down") }
	_, env = ts.do(t, http.MethodPost, "/api/reports/summary", nil)
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, report.SummaryFailedText, d.Report)
}

func TestChat(t *testing.T) {
	ts := newServer(t)
	ts.reply = func(req textgen.Request) (string, error) { return "", errors.New("offline") }

	_, env := ts.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "Hi"})
	var d struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &d))
	require.Len(t, d.Messages, 3)
	assert.Equal(t, models.RoleError, d.Messages[2].Role)

	ts.reply = func(req textgen.Request) (string, error) { return "Hello", nil }
	w, env := ts.do(t, http.MethodPost, "/api/chat/retry", map[string]int{"index": 2})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &d))
	require.Len(t, d.Messages, 3)
	assert.Equal(t, "Hello", d.Messages[2].Text)

	w, _ = ts.do(t, http.MethodPost, "/api/chat/retry", map[string]int{"index": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env = ts.do(t, http.MethodGet, "/api/chat", nil)
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Len(t, d.Messages, 3)
}
