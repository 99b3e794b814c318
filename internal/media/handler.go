// Package media exposes direct object-storage endpoints for the admin UI.
package media

import (
	"errors"
	"net/http"

	"github.com/berkay/portfolio-api/internal/response"
	"github.com/berkay/portfolio-api/internal/storage"
)

const maxUploadMemory = 32 << 20

// Handler holds HTTP handlers for media endpoints.
type Handler struct {
	store storage.Storage
}

// NewHandler creates a new media Handler.
func NewHandler(store storage.Storage) *Handler {
	return &Handler{store: store}
}

type uploadData struct {
	Key string `json:"key" example:"projects/2f3a..._screenshot.png"`
	URL string `json:"url" example:"https://bucket.s3.amazonaws.com/projects/...&X-Amz-Signature=..."`
}

type presignedData struct {
	URL string `json:"url"`
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Store a file under the given folder and return its reference plus a presigned URL for immediate display.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"File to upload"
//	@Param			folder	formData	string	true	"Target folder"
//	@Success		200		{object}	response.Envelope{data=uploadData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Router			/media/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	folder := r.FormValue("folder")
	if folder == "" {
		response.BadRequest(w, "folder is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	ref, err := h.store.Upload(r.Context(), folder, header.Filename, file, header.Size,
		header.Header.Get("Content-Type"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	signed, err := h.store.PresignedURL(r.Context(), ref)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.OK(w, uploadData{Key: ref, URL: signed})
}

// PresignedURL godoc
//
//	@Summary		Resolve a stored reference to a presigned URL
//	@Description	Accepts either a bare object key or a full access URL.
//	@Tags			media
//	@Produce		json
//	@Param			key	query		string	true	"Object key or access URL"
//	@Success		200	{object}	response.Envelope{data=presignedData}
//	@Failure		400	{object}	response.Envelope
//	@Router			/media/presigned-url [get]
func (h *Handler) PresignedURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		response.BadRequest(w, "key is required")
		return
	}

	signed, err := h.store.PresignedURL(r.Context(), key)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.OK(w, presignedData{URL: signed})
}

// Delete godoc
//
//	@Summary	Delete a stored object
//	@Tags		media
//	@Produce	json
//	@Security	BearerAuth
//	@Param		fileUrl	query		string	true	"Object key or access URL"
//	@Success	200		{object}	response.Envelope
//	@Failure	400		{object}	response.Envelope
//	@Failure	401		{object}	response.Envelope
//	@Router		/media/delete [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("fileUrl")
	if ref == "" {
		response.BadRequest(w, "fileUrl is required")
		return
	}

	if err := h.store.Delete(r.Context(), ref); err != nil {
		if errors.Is(err, storage.ErrInvalidReference) {
			response.BadRequest(w, "invalid reference format")
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	response.OK(w, map[string]string{"message": "file deleted successfully"})
}
