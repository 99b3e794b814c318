package portfolio

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAuth rejects requests without the marker header, standing in for the
// JWT middleware.
func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test-Auth") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newTestHandler() (*Handler, *fakeStorage) {
	fs := newFakeStorage()
	h := &Handler{
		personal:  newMemStore[PersonalInfo, *PersonalInfo](),
		projects:  newMemStore[Project, *Project](),
		details:   newMemStore[ProjectDetail, *ProjectDetail](),
		jobs:      newMemStore[JobHistory, *JobHistory](),
		education: newMemStore[EducationHistory, *EducationHistory](),
		skills:    newMemStore[Skill, *Skill](),
		media:     fs,
	}
	return h, fs
}

func newTestRouter() (chi.Router, *Handler, *fakeStorage) {
	h, fs := newTestHandler()
	r := chi.NewRouter()
	h.Mount(r, testAuth)
	return r, h, fs
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Fields  []FieldError    `json:"fields"`
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any, authed bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("X-Test-Auth", "1")
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestSkillCRUDOverHTTP(t *testing.T) {
	r, _, _ := newTestRouter()

	rec, env := doJSON(t, r, "POST", "/professional-skills/", &Skill{
		SkillName:    "Go",
		SkillLevel:   SkillAdvanced,
		DisplayOrder: 2,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)

	var created Skill
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	rec, env = doJSON(t, r, "POST", "/professional-skills/", &Skill{
		SkillName:    "Postgres",
		SkillLevel:   SkillIntermediate,
		DisplayOrder: 1,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = doJSON(t, r, "GET", "/professional-skills/fetch", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Skill
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Postgres", listed[0].SkillName)
	assert.Equal(t, "Go", listed[1].SkillName)

	rec, env = doJSON(t, r, "GET", "/professional-skills/"+created.ID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var got Skill
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created, got)

	created.SkillLevel = SkillBeginner
	rec, env = doJSON(t, r, "PUT", "/professional-skills/"+created.ID, &created, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Skill
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, SkillBeginner, updated.SkillLevel)

	rec, _ = doJSON(t, r, "DELETE", "/professional-skills/"+created.ID, nil, true)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = doJSON(t, r, "GET", "/professional-skills/"+created.ID, nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestMutationsRequireAuth(t *testing.T) {
	r, _, _ := newTestRouter()

	rec, _ := doJSON(t, r, "POST", "/professional-skills/", &Skill{
		SkillName:    "Go",
		SkillLevel:   SkillAdvanced,
		DisplayOrder: 1,
	}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, r, "PUT", "/professional-skills/some-id", &Skill{}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, r, "DELETE", "/professional-skills/some-id", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Reads stay public.
	rec, _ = doJSON(t, r, "GET", "/professional-skills/fetch", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateReturnsEveryValidationError(t *testing.T) {
	r, _, _ := newTestRouter()

	rec, env := doJSON(t, r, "POST", "/professional-skills/", &Skill{
		SkillLevel: "EXPERT",
	}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.ElementsMatch(t,
		[]string{"skillName", "skillLevel", "displayOrder"},
		fieldNames(&ValidationError{Fields: env.Fields}))
}

func TestListDetailsByProject(t *testing.T) {
	r, _, _ := newTestRouter()

	for i, projectID := range []string{"p1", "p2", "p1"} {
		rec, _ := doJSON(t, r, "POST", "/project-detail-content/", &ProjectDetail{
			ProjectID:    projectID,
			ContentType:  DetailText,
			Content:      "block",
			DisplayOrder: i + 1,
		}, true)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, env := doJSON(t, r, "GET", "/project-detail-content/project/p1", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []ProjectDetail
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 2)
	for _, d := range listed {
		assert.Equal(t, "p1", d.ProjectID)
	}
}

func TestCreateJobHistoryWithMediaOverHTTP(t *testing.T) {
	r, _, fs := newTestRouter()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range map[string]string{
		"companyName":  "Initech",
		"jobTitle":     "Engineer",
		"startDate":    "2020-01-15",
		"isCurrent":    "true",
		"description":  "TPS reports",
		"location":     "Austin, TX",
		"displayOrder": "1",
	} {
		require.NoError(t, mw.WriteField(name, value))
	}
	part, err := mw.CreateFormFile("companyLogo", "logo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/job-history/with-media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-Auth", "1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var created JobHistory
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, strings.HasSuffix(created.CompanyLogo, "job-history/logo.png"))
	assert.True(t, fs.has("job-history/logo.png"))
}

func TestProjectDetailTextBlockKeepsInlineContent(t *testing.T) {
	r, _, fs := newTestRouter()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range map[string]string{
		"projectId":                "p1",
		"projectDetailContentType": "TEXT",
		"textContent":              "Built the ingestion pipeline.",
		"displayOrder":             "1",
	} {
		require.NoError(t, mw.WriteField(name, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/project-detail-content/with-media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-Auth", "1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var created ProjectDetail
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Built the ingestion pipeline.", created.Content)
	assert.Empty(t, fs.objects)
}
