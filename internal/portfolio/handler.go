package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/berkay/portfolio-api/internal/response"
	"github.com/berkay/portfolio-api/internal/storage"
)

// Middleware guards mutating routes.
type Middleware = func(http.Handler) http.Handler

// Handler exposes the six content resources over HTTP.
type Handler struct {
	personal  store[PersonalInfo]
	projects  store[Project]
	details   store[ProjectDetail]
	jobs      store[JobHistory]
	education store[EducationHistory]
	skills    store[Skill]
	media     storage.Storage
}

// NewHandler wires the record stores onto the shared pool and object storage.
func NewHandler(db *pgxpool.Pool, media storage.Storage) *Handler {
	return &Handler{
		personal:  newPGStore[PersonalInfo, *PersonalInfo](db, kindPersonalInfo),
		projects:  newPGStore[Project, *Project](db, kindProject),
		details:   newPGStore[ProjectDetail, *ProjectDetail](db, kindProjectDetail),
		jobs:      newPGStore[JobHistory, *JobHistory](db, kindJobHistory),
		education: newPGStore[EducationHistory, *EducationHistory](db, kindEducation),
		skills:    newPGStore[Skill, *Skill](db, kindSkill),
		media:     media,
	}
}

// Mount registers every content route under r. Reads stay public; all
// mutating routes go through requireAuth.
func (h *Handler) Mount(r chi.Router, requireAuth Middleware) {
	r.Route("/personal-info", func(r chi.Router) {
		mountCRUD[PersonalInfo, *PersonalInfo](r, h.personal, h.media, requireAuth)
		r.With(requireAuth).Post("/with-media", h.createPersonalInfoWithMedia)
		r.With(requireAuth).Put("/{id}/with-media", h.updatePersonalInfoWithMedia)
	})

	r.Route("/projects", func(r chi.Router) {
		mountCRUD[Project, *Project](r, h.projects, h.media, requireAuth)
		r.With(requireAuth).Post("/with-media", h.createProjectWithMedia)
		r.With(requireAuth).Put("/{id}/with-media", h.updateProjectWithMedia)
	})

	r.Route("/project-detail-content", func(r chi.Router) {
		mountCRUD[ProjectDetail, *ProjectDetail](r, h.details, h.media, requireAuth)
		r.Get("/project/{projectId}", h.listDetailsByProject)
		r.With(requireAuth).Post("/with-media", h.createProjectDetailWithMedia)
		r.With(requireAuth).Put("/{id}/with-media", h.updateProjectDetailWithMedia)
	})

	r.Route("/job-history", func(r chi.Router) {
		mountCRUD[JobHistory, *JobHistory](r, h.jobs, h.media, requireAuth)
		r.With(requireAuth).Post("/with-media", h.createJobHistoryWithMedia)
		r.With(requireAuth).Put("/{id}/with-media", h.updateJobHistoryWithMedia)
	})

	r.Route("/education-history", func(r chi.Router) {
		mountCRUD[EducationHistory, *EducationHistory](r, h.education, h.media, requireAuth)
	})

	r.Route("/professional-skills", func(r chi.Router) {
		mountCRUD[Skill, *Skill](r, h.skills, h.media, requireAuth)
	})
}

// mountCRUD registers the JSON CRUD surface shared by every record kind:
// GET /fetch, GET /{id}, POST /, PUT /{id}, DELETE /{id}.
func mountCRUD[T any, P docPtr[T]](r chi.Router, st store[T], media storage.Storage, requireAuth Middleware) {
	r.Get("/fetch", func(w http.ResponseWriter, req *http.Request) {
		recs, err := st.List(req.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		response.OK(w, recs)
	})

	r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
		rec, err := st.Get(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		response.OK(w, rec)
	})

	r.With(requireAuth).Post("/", func(w http.ResponseWriter, req *http.Request) {
		rec := new(T)
		if err := json.NewDecoder(req.Body).Decode(rec); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
		created, err := createRecord[T, P](req.Context(), st, rec)
		if err != nil {
			writeError(w, err)
			return
		}
		response.Created(w, created)
	})

	r.With(requireAuth).Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
		rec := new(T)
		if err := json.NewDecoder(req.Body).Decode(rec); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
		updated, err := replaceRecord[T, P](req.Context(), st, chi.URLParam(req, "id"), rec)
		if err != nil {
			writeError(w, err)
			return
		}
		response.OK(w, updated)
	})

	r.With(requireAuth).Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
		if err := deleteRecord[T, P](req.Context(), st, media, chi.URLParam(req, "id")); err != nil {
			writeError(w, err)
			return
		}
		response.NoContent(w)
	})
}

// listDetailsByProject godoc
//
//	@Summary	List detail blocks of one project
//	@Tags		project-detail-content
//	@Produce	json
//	@Param		projectId	path		string	true	"Project id"
//	@Success	200			{object}	response.Envelope{data=[]ProjectDetail}
//	@Failure	500			{object}	response.Envelope
//	@Router		/project-detail-content/project/{projectId} [get]
func (h *Handler) listDetailsByProject(w http.ResponseWriter, r *http.Request) {
	recs, err := h.details.ListByField(r.Context(), "projectId", chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, recs)
}

func (h *Handler) createPersonalInfoWithMedia(w http.ResponseWriter, r *http.Request) {
	f, err := newFormReader(r)
	if err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	info := &PersonalInfo{
		Name:      f.require("name"),
		Email:     f.require("email"),
		Phone:     f.require("phone"),
		Address:   f.require("address"),
		City:      f.require("city"),
		State:     f.require("state"),
		Zip:       f.require("zip"),
		Country:   f.require("country"),
		WorkTitle: f.optional("workTitle"),
	}
	picture := f.file("profilePicture")
	resume := f.file("resume")
	if verr := f.err(); verr != nil {
		response.ValidationFailed(w, verr.Fields)
		return
	}

	created, err := createWithMedia[PersonalInfo, *PersonalInfo](
		r.Context(), h.personal, h.media, info, personalAssetFields(picture, resume))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, created)
}

func (h *Handler) updatePersonalInfoWithMedia(w http.ResponseWriter, r *http.Request) {
	f, err := newFormReader(r)
	if err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	info := &PersonalInfo{
		Name:      f.require("name"),
		Email:     f.require("email"),
		Phone:     f.require("phone"),
		Address:   f.require("address"),
		City:      f.require("city"),
		State:     f.require("state"),
		Zip:       f.require("zip"),
		Country:   f.require("country"),
		WorkTitle: f.optional("workTitle"),
	}
	picture := f.file("profilePicture")
	resume := f.file("resume")
	if verr := f.err(); verr != nil {
		response.ValidationFailed(w, verr.Fields)
		return
	}

	updated, err := updateWithMedia[PersonalInfo, *PersonalInfo](
		r.Context(), h.personal, h.media, chi.URLParam(r, "id"), info, personalAssetFields(picture, resume))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, updated)
}

func personalAssetFields(picture, resume *File) []assetField[PersonalInfo] {
	return []assetField[PersonalInfo]{
		{
			folder: folderPersonalInfo,
			get:    func(p *PersonalInfo) string { return p.ProfilePicture },
			set:    func(p *PersonalInfo, ref string) { p.ProfilePicture = ref },
			file:   picture,
		},
		{
			folder: folderPersonalInfo,
			get:    func(p *PersonalInfo) string { return p.Resume },
			set:    func(p *PersonalInfo, ref string) { p.Resume = ref },
			file:   resume,
		},
	}
}

func (h *Handler) createProjectWithMedia(w http.ResponseWriter, r *http.Request) {
	f, err := newFormReader(r)
	if err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	project := &Project{
		Name:         f.require("projectName"),
		Description:  f.require("projectDescription"),
		Link:         f.require("projectLink"),
		Link2:        f.optional("projectLink2"),
		Link3:        f.optional("projectLink3"),
		ContentType:  ContentType(f.require("projectContentType")),
		Technologies: f.require("projectTechnologies"),
		DisplayOrder: f.requireInt("displayOrder"),
	}
	mediaFile := f.file("mediaFile")
	if verr := f.err(); verr != nil {
		response.ValidationFailed(w, verr.Fields)
		return
	}

	created, err := createWithMedia[Project, *Project](
		r.Context(), h.projects, h.media, project, projectAssetFields(mediaFile))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, created)
}

func (h *Handler) updateProjectWithMedia(w http.ResponseWriter, r *http.Request) {
	f, err := newFormReader(r)
	if err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	project := &Project{
		Name:         f.require("projectName"),
		Description:  f.require("projectDescription"),
		Link:         f.require("projectLink"),
		Link2:        f.optional("projectLink2"),
		Link3:        f.optional("projectLink3"),
		ContentType:  ContentType(f.require("projectContentType")),
		Technologies: f.require("projectTechnologies"),
		DisplayOrder: f.requireInt("displayOrder"),
	}
	mediaFile := f.file("mediaFile")
	if verr := f.err(); verr != nil {
		response.ValidationFailed(w, verr.Fields)
		return
	}

	updated, err := updateWithMedia[Project, *Project](
		r.Context(), h.projects, h.media, chi.URLParam(r, "id"), project, projectAssetFields(mediaFile))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, updated)
}

func projectAssetFields(mediaFile *File) []assetField[Project] {
	return []assetField[Project]{
		{
			folder: folderProjects,
			get:    func(p *Project) string { return p.Content },
			set:    func(p *Project, ref string) { p.Content = ref },
			file:   mediaFile,
		},
	}
}

func (h *Handler) createProjectDetailWithMedia(w http.ResponseWriter, r *http.Request) {
	f, err := newFormReader(r)
	if err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	// TEXT blocks carry their content inline; IMAGE/VIDEO blocks get the
	// reference from the upload below.
	detail := &ProjectDetail{
		ProjectID:    f.require("projectId"),
		ContentType:  DetailContentType(f.require("projectDetailContentType")),
		Content:      f.optional("textContent"),
		DisplayOrder: f.requireInt("displayOrder"),
	}
	mediaFile := f.file("mediaFile")
	if verr := f.err(); verr != nil {
		response.ValidationFailed(w, verr.Fields)
		return
	}

	created, err := createWithMedia[ProjectDetail, *ProjectDetail](
		r.Context(), h.details, h.media, detail, detailAssetFields(mediaFile))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, created)
}

func (h *Handler) updateProjectDetailWithMedia(w http.ResponseWriter, r *http.Request) {
	f, err := newFormReader(r)
	if err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	detail := &ProjectDetail{
		ProjectID:    f.require("projectId"),
		ContentType:  DetailContentType(f.require("projectDetailContentType")),
		Content:      f.optional("textContent"),
		DisplayOrder: f.requireInt("displayOrder"),
	}
	mediaFile := f.file("mediaFile")
	if verr := f.err(); verr != nil {
		response.ValidationFailed(w, verr.Fields)
		return
	}

	updated, err := updateWithMedia[ProjectDetail, *ProjectDetail](
		r.Context(), h.details, h.media, chi.URLParam(r, "id"), detail, detailAssetFields(mediaFile))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, updated)
}

func detailAssetFields(mediaFile *File) []assetField[ProjectDetail] {
	return []assetField[ProjectDetail]{
		{
			folder: folderProjectDetail,
			get:    func(d *ProjectDetail) string { return d.Content },
			set:    func(d *ProjectDetail, ref string) { d.Content = ref },
			file:   mediaFile,
		},
	}
}

func (h *Handler) createJobHistoryWithMedia(w http.ResponseWriter, r *http.Request) {
	f, err := newFormReader(r)
	if err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	job := &JobHistory{
		CompanyName:  f.require("companyName"),
		JobTitle:     f.require("jobTitle"),
		StartDate:    f.require("startDate"),
		EndDate:      f.optional("endDate"),
		IsCurrent:    f.requireBool("isCurrent"),
		Description:  f.require("description"),
		Location:     f.require("location"),
		DisplayOrder: f.requireInt("displayOrder"),
	}
	logo := f.file("companyLogo")
	if verr := f.err(); verr != nil {
		response.ValidationFailed(w, verr.Fields)
		return
	}

	created, err := createWithMedia[JobHistory, *JobHistory](
		r.Context(), h.jobs, h.media, job, jobAssetFields(logo))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, created)
}

func (h *Handler) updateJobHistoryWithMedia(w http.ResponseWriter, r *http.Request) {
	f, err := newFormReader(r)
	if err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	job := &JobHistory{
		CompanyName:  f.require("companyName"),
		JobTitle:     f.require("jobTitle"),
		StartDate:    f.require("startDate"),
		EndDate:      f.optional("endDate"),
		IsCurrent:    f.requireBool("isCurrent"),
		Description:  f.require("description"),
		Location:     f.require("location"),
		DisplayOrder: f.requireInt("displayOrder"),
	}
	logo := f.file("companyLogo")
	if verr := f.err(); verr != nil {
		response.ValidationFailed(w, verr.Fields)
		return
	}

	updated, err := updateWithMedia[JobHistory, *JobHistory](
		r.Context(), h.jobs, h.media, chi.URLParam(r, "id"), job, jobAssetFields(logo))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, updated)
}

func jobAssetFields(logo *File) []assetField[JobHistory] {
	return []assetField[JobHistory]{
		{
			folder: folderJobHistory,
			get:    func(j *JobHistory) string { return j.CompanyLogo },
			set:    func(j *JobHistory, ref string) { j.CompanyLogo = ref },
			file:   logo,
		},
	}
}

// writeError maps service errors onto the response envelope: validation and
// bad references are 400, missing ids 404, storage failures 400, anything
// unexpected a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "record not found")
	case errors.Is(err, storage.ErrInvalidReference),
		errors.Is(err, storage.ErrStorage):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
