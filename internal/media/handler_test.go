package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkay/portfolio-api/internal/storage"
)

type fakeStore struct {
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Upload(ctx context.Context, folder, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := folder + "/" + filename
	f.objects[key] = data
	return "https://media.test/" + key, nil
}

func (f *fakeStore) PresignedURL(ctx context.Context, ref string) (string, error) {
	key, err := storage.ResolveKey(ref)
	if err != nil {
		return "", err
	}
	if _, ok := f.objects[key]; !ok {
		return "", fmt.Errorf("%w: no such object %q", storage.ErrStorage, key)
	}
	return "signed://" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, ref string) error {
	key, err := storage.ResolveKey(ref)
	if err != nil {
		return err
	}
	delete(f.objects, key)
	return nil
}

func uploadRequest(t *testing.T, folder, filename string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("file-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/media/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadReturnsRefAndSignedURL(t *testing.T) {
	fs := newFakeStore()
	h := NewHandler(fs)

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "projects", "screenshot.png"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"key":"https://media.test/projects/screenshot.png"`)
	assert.Contains(t, rec.Body.String(), `"url":"signed://projects/screenshot.png"`)
	assert.Contains(t, fs.objects, "projects/screenshot.png")
}

func TestUploadRequiresFolderAndFile(t *testing.T) {
	h := NewHandler(newFakeStore())

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "", "screenshot.png"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "projects", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresignedURLAcceptsKeyOrAccessURL(t *testing.T) {
	fs := newFakeStore()
	fs.objects["projects/screenshot.png"] = []byte("data")
	h := NewHandler(fs)

	for _, key := range []string{
		"projects/screenshot.png",
		"https://media.test/projects/screenshot.png",
	} {
		req := httptest.NewRequest("GET", "/api/media/presigned-url?key="+url.QueryEscape(key), nil)
		rec := httptest.NewRecorder()
		h.PresignedURL(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "key %q", key)
		assert.Contains(t, rec.Body.String(), `"url":"signed://projects/screenshot.png"`)
	}
}

func TestPresignedURLRequiresKey(t *testing.T) {
	h := NewHandler(newFakeStore())

	req := httptest.NewRequest("GET", "/api/media/presigned-url", nil)
	rec := httptest.NewRecorder()
	h.PresignedURL(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRemovesObject(t *testing.T) {
	fs := newFakeStore()
	fs.objects["projects/screenshot.png"] = []byte("data")
	h := NewHandler(fs)

	ref := url.QueryEscape("https://media.test/projects/screenshot.png")
	req := httptest.NewRequest("DELETE", "/api/media/delete?fileUrl="+ref, nil)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, fs.objects, "projects/screenshot.png")
}

func TestDeleteRequiresFileURL(t *testing.T) {
	h := NewHandler(newFakeStore())

	req := httptest.NewRequest("DELETE", "/api/media/delete", nil)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
