package portfolio

import (
	"errors"
	"net/http"
	"strconv"
)

// Multipart bodies are parsed with this memory ceiling; larger files spill
// to temp storage.
const maxMultipartMemory = 32 << 20

// formReader decodes a multipart form into typed fields, collecting every
// missing or malformed field instead of failing on the first.
type formReader struct {
	r    *http.Request
	verr ValidationError
}

func newFormReader(r *http.Request) (*formReader, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, err
	}
	return &formReader{r: r}, nil
}

// require returns the named field's value, recording an error when absent.
func (f *formReader) require(name string) string {
	v := f.r.FormValue(name)
	if v == "" {
		f.verr.add(name, "is required")
	}
	return v
}

// optional returns the named field's value, empty when absent.
func (f *formReader) optional(name string) string {
	return f.r.FormValue(name)
}

// requireInt parses the named field as an integer.
func (f *formReader) requireInt(name string) int {
	v := f.r.FormValue(name)
	if v == "" {
		f.verr.add(name, "is required")
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.verr.add(name, "must be an integer")
		return 0
	}
	return n
}

// requireBool parses the named field as "true" or "false".
func (f *formReader) requireBool(name string) bool {
	v := f.r.FormValue(name)
	if v == "" {
		f.verr.add(name, "is required")
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		f.verr.add(name, "must be true or false")
		return false
	}
	return b
}

// file returns the named upload, or nil when the request carries none.
func (f *formReader) file(name string) *File {
	src, header, err := f.r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		f.verr.add(name, "invalid file upload")
		return nil
	}
	return &File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      src,
	}
}

// err returns the aggregated decode errors, nil when the form was valid.
func (f *formReader) err() *ValidationError {
	return f.verr.result()
}
