package portfolio

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMultipartRequest(t *testing.T, fields map[string]string, files map[string]string) (*formReader, error) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for name, filename := range files {
		part, err := mw.CreateFormFile(name, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("file-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/job-history/with-media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return newFormReader(req)
}

func TestFormReaderDecodesAllFieldTypes(t *testing.T) {
	f, err := newMultipartRequest(t, map[string]string{
		"companyName":  "Initech",
		"isCurrent":    "true",
		"displayOrder": "2",
	}, map[string]string{
		"companyLogo": "logo.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "Initech", f.require("companyName"))
	assert.True(t, f.requireBool("isCurrent"))
	assert.Equal(t, 2, f.requireInt("displayOrder"))
	assert.Empty(t, f.optional("endDate"))

	file := f.file("companyLogo")
	require.NotNil(t, file)
	assert.Equal(t, "logo.png", file.Name)
	assert.Equal(t, int64(10), file.Size)
	data, err := io.ReadAll(file.Reader)
	require.NoError(t, err)
	assert.Equal(t, "file-bytes", string(data))

	assert.Nil(t, f.err())
}

func TestFormReaderCollectsEveryDecodeError(t *testing.T) {
	f, err := newMultipartRequest(t, map[string]string{
		"isCurrent":    "maybe",
		"displayOrder": "second",
	}, nil)
	require.NoError(t, err)

	f.require("companyName")
	f.requireBool("isCurrent")
	f.requireInt("displayOrder")
	assert.Nil(t, f.file("companyLogo"))

	verr := f.err()
	require.NotNil(t, verr)
	assert.ElementsMatch(t,
		[]string{"companyName", "isCurrent", "displayOrder"},
		fieldNames(verr))
}

func TestFormReaderMissingFileIsNil(t *testing.T) {
	f, err := newMultipartRequest(t, map[string]string{"companyName": "Initech"}, nil)
	require.NoError(t, err)

	assert.Nil(t, f.file("companyLogo"))
	assert.Nil(t, f.err())
}

func TestFormReaderRejectsNonMultipartBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/job-history/with-media", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")

	_, err := newFormReader(req)
	assert.Error(t, err)
}
