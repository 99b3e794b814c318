// Package portfolio holds the content records served by the site and the
// write orchestration that keeps their media references consistent.
package portfolio

import (
	"fmt"
	"regexp"
	"time"
)

// Storage partition keys, one per record kind.
const (
	kindPersonalInfo  = "personal_info"
	kindProject       = "projects"
	kindProjectDetail = "project_detail_content"
	kindJobHistory    = "job_history"
	kindEducation     = "education_history"
	kindSkill         = "professional_skills"
)

// Upload folders per record kind.
const (
	folderPersonalInfo  = "personal-info"
	folderProjects      = "projects"
	folderProjectDetail = "project-details"
	folderJobHistory    = "job-history"
)

// SkillLevel is a closed, string-backed proficiency variant.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "BEGINNER"
	SkillIntermediate SkillLevel = "INTERMEDIATE"
	SkillAdvanced     SkillLevel = "ADVANCED"
)

// Display labels are kept separate from the variant values; the wire format
// carries the uppercase value, clients render the label.
var skillLevelLabels = map[SkillLevel]string{
	SkillBeginner:     "Beginner",
	SkillIntermediate: "Intermediate",
	SkillAdvanced:     "Advanced",
}

// Valid reports whether the value is a known skill level.
func (l SkillLevel) Valid() bool { _, ok := skillLevelLabels[l]; return ok }

// Label returns the display label for the level.
func (l SkillLevel) Label() string { return skillLevelLabels[l] }

// ContentType is the media variant for a project's showcase content.
type ContentType string

const (
	ContentImage ContentType = "IMAGE"
	ContentVideo ContentType = "VIDEO"
)

var contentTypeLabels = map[ContentType]string{
	ContentImage: "Image",
	ContentVideo: "Video",
}

func (t ContentType) Valid() bool   { _, ok := contentTypeLabels[t]; return ok }
func (t ContentType) Label() string { return contentTypeLabels[t] }

// DetailContentType is the variant for project detail blocks, which may
// additionally be inline text.
type DetailContentType string

const (
	DetailText  DetailContentType = "TEXT"
	DetailImage DetailContentType = "IMAGE"
	DetailVideo DetailContentType = "VIDEO"
)

var detailContentTypeLabels = map[DetailContentType]string{
	DetailText:  "Text",
	DetailImage: "Image",
	DetailVideo: "Video",
}

func (t DetailContentType) Valid() bool   { _, ok := detailContentTypeLabels[t]; return ok }
func (t DetailContentType) Label() string { return detailContentTypeLabels[t] }

// PersonalInfo is the site owner's contact card. ProfilePicture and Resume
// hold asset references when set.
type PersonalInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zip            string `json:"zip"`
	Country        string `json:"country"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	Resume         string `json:"resume,omitempty"`
	WorkTitle      string `json:"workTitle,omitempty"`
}

func (p *PersonalInfo) documentID() string      { return p.ID }
func (p *PersonalInfo) setDocumentID(id string) { p.ID = id }
func (p *PersonalInfo) displayOrder() int       { return 0 }

// Validate checks all fields at once and reports every problem found.
func (p *PersonalInfo) Validate() *ValidationError {
	v := &ValidationError{}
	v.requireText("name", p.Name)
	v.requireMatch("email", p.Email, emailRe, "invalid email address")
	v.requireMatch("phone", p.Phone, phoneRe, "invalid phone number (10-11 digits)")
	v.requireText("address", p.Address)
	v.requireText("city", p.City)
	v.requireText("state", p.State)
	v.requireMatch("zip", p.Zip, zipRe, "invalid zip code")
	v.requireText("country", p.Country)
	return v.result()
}

func (p *PersonalInfo) assetRefs() []string {
	return nonEmpty(p.ProfilePicture, p.Resume)
}

// Project is a portfolio showcase entry. ProjectContent holds the asset
// reference of the showcase image or video.
type Project struct {
	ID           string      `json:"id"`
	Name         string      `json:"projectName"`
	Description  string      `json:"projectDescription"`
	Link         string      `json:"projectLink"`
	Link2        string      `json:"projectLink2,omitempty"`
	Link3        string      `json:"projectLink3,omitempty"`
	ContentType  ContentType `json:"projectContentType"`
	Content      string      `json:"projectContent"`
	Technologies string      `json:"projectTechnologies"`
	DisplayOrder int         `json:"displayOrder"`
}

func (p *Project) documentID() string      { return p.ID }
func (p *Project) setDocumentID(id string) { p.ID = id }
func (p *Project) displayOrder() int       { return p.DisplayOrder }

func (p *Project) Validate() *ValidationError {
	v := &ValidationError{}
	v.requireText("projectName", p.Name)
	v.requireText("projectDescription", p.Description)
	v.requireText("projectLink", p.Link)
	if !p.ContentType.Valid() {
		v.add("projectContentType", "must be one of: IMAGE, VIDEO")
	}
	v.requireText("projectContent", p.Content)
	v.requireText("projectTechnologies", p.Technologies)
	v.requireOrder(p.DisplayOrder)
	return v.result()
}

func (p *Project) assetRefs() []string { return nonEmpty(p.Content) }

// ProjectDetail is one content block on a project's detail page. Content is
// an asset reference for IMAGE/VIDEO blocks and inline text for TEXT blocks.
type ProjectDetail struct {
	ID           string            `json:"id"`
	ProjectID    string            `json:"projectId"`
	ContentType  DetailContentType `json:"projectDetailContentType"`
	Content      string            `json:"projectDetailContent"`
	DisplayOrder int               `json:"displayOrder"`
}

func (d *ProjectDetail) documentID() string      { return d.ID }
func (d *ProjectDetail) setDocumentID(id string) { d.ID = id }
func (d *ProjectDetail) displayOrder() int       { return d.DisplayOrder }

func (d *ProjectDetail) Validate() *ValidationError {
	v := &ValidationError{}
	v.requireText("projectId", d.ProjectID)
	if !d.ContentType.Valid() {
		v.add("projectDetailContentType", "must be one of: TEXT, IMAGE, VIDEO")
	}
	v.requireText("projectDetailContent", d.Content)
	v.requireOrder(d.DisplayOrder)
	return v.result()
}

func (d *ProjectDetail) assetRefs() []string { return nonEmpty(d.Content) }

// JobHistory is one employment entry. CompanyLogo holds an asset reference
// when set.
type JobHistory struct {
	ID           string `json:"id"`
	CompanyName  string `json:"companyName"`
	JobTitle     string `json:"jobTitle"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate,omitempty"`
	IsCurrent    bool   `json:"isCurrent"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	DisplayOrder int    `json:"displayOrder"`
	CompanyLogo  string `json:"companyLogo,omitempty"`
}

func (j *JobHistory) documentID() string      { return j.ID }
func (j *JobHistory) setDocumentID(id string) { j.ID = id }
func (j *JobHistory) displayOrder() int       { return j.DisplayOrder }

func (j *JobHistory) Validate() *ValidationError {
	v := &ValidationError{}
	v.requireText("companyName", j.CompanyName)
	v.requireText("jobTitle", j.JobTitle)
	v.requireDate("startDate", j.StartDate)
	v.optionalDate("endDate", j.EndDate)
	v.requireText("description", j.Description)
	v.requireText("location", j.Location)
	v.requireOrder(j.DisplayOrder)
	return v.result()
}

func (j *JobHistory) assetRefs() []string { return nonEmpty(j.CompanyLogo) }

// EducationHistory is one education entry. It carries no assets.
type EducationHistory struct {
	ID           string `json:"id"`
	SchoolName   string `json:"schoolName"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate,omitempty"`
	IsCurrent    bool   `json:"isCurrent"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	GPA          string `json:"gpa"`
	DisplayOrder int    `json:"displayOrder"`
}

func (e *EducationHistory) documentID() string      { return e.ID }
func (e *EducationHistory) setDocumentID(id string) { e.ID = id }
func (e *EducationHistory) displayOrder() int       { return e.DisplayOrder }

func (e *EducationHistory) Validate() *ValidationError {
	v := &ValidationError{}
	v.requireText("schoolName", e.SchoolName)
	v.requireText("degree", e.Degree)
	v.requireText("fieldOfStudy", e.FieldOfStudy)
	v.requireDate("startDate", e.StartDate)
	v.optionalDate("endDate", e.EndDate)
	v.requireText("description", e.Description)
	v.requireText("location", e.Location)
	v.requireMatch("gpa", e.GPA, gpaRe, "invalid GPA")
	v.requireOrder(e.DisplayOrder)
	return v.result()
}

func (e *EducationHistory) assetRefs() []string { return nil }

// Skill is one professional skill entry. It carries no assets.
type Skill struct {
	ID           string     `json:"id"`
	SkillName    string     `json:"skillName"`
	SkillLevel   SkillLevel `json:"skillLevel"`
	DisplayOrder int        `json:"displayOrder"`
}

func (s *Skill) documentID() string      { return s.ID }
func (s *Skill) setDocumentID(id string) { s.ID = id }
func (s *Skill) displayOrder() int       { return s.DisplayOrder }

func (s *Skill) Validate() *ValidationError {
	v := &ValidationError{}
	v.requireText("skillName", s.SkillName)
	if !s.SkillLevel.Valid() {
		v.add("skillLevel", "must be one of: BEGINNER, INTERMEDIATE, ADVANCED")
	}
	v.requireOrder(s.DisplayOrder)
	return v.result()
}

func (s *Skill) assetRefs() []string { return nil }

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^\d{10,11}$`)
	zipRe   = regexp.MustCompile(`^\d{5}$`)
	gpaRe   = regexp.MustCompile(`^\d{1,3}\.\d{2}$`)
)

const dateLayout = "2006-01-02"

// FieldError describes one invalid or missing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field problem found in a record, so
// callers see all of them at once instead of the first.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// result returns the error when any field failed, nil otherwise.
func (e *ValidationError) result() *ValidationError {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) requireText(field, value string) {
	if value == "" {
		e.add(field, "is required")
	}
}

func (e *ValidationError) requireMatch(field, value string, re *regexp.Regexp, message string) {
	if value == "" {
		e.add(field, "is required")
		return
	}
	if !re.MatchString(value) {
		e.add(field, message)
	}
}

func (e *ValidationError) requireDate(field, value string) {
	if value == "" {
		e.add(field, "is required")
		return
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		e.add(field, "must be a date in YYYY-MM-DD format")
	}
}

func (e *ValidationError) optionalDate(field, value string) {
	if value == "" {
		return
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		e.add(field, "must be a date in YYYY-MM-DD format")
	}
}

func (e *ValidationError) requireOrder(order int) {
	if order < 1 {
		e.add("displayOrder", "must be greater than 0")
	}
}

func nonEmpty(refs ...string) []string {
	var out []string
	for _, r := range refs {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
