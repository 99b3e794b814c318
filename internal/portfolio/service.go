package portfolio

import (
	"context"
	"io"

	"github.com/berkay/portfolio-api/internal/storage"
	"github.com/berkay/portfolio-api/pkg/logger"
)

// File is an uploaded attachment extracted from a multipart request.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// assetField binds one record field to its uploaded replacement. get and set
// read and write the asset reference on the record; file is nil when the
// request carried no replacement for this field.
type assetField[T any] struct {
	folder string
	get    func(*T) string
	set    func(*T, string)
	file   *File
}

// createRecord validates and persists a new record.
func createRecord[T any, P docPtr[T]](ctx context.Context, st store[T], rec *T) (*T, error) {
	if verr := P(rec).Validate(); verr != nil {
		return nil, verr
	}
	return st.Create(ctx, rec)
}

// replaceRecord validates and overwrites an existing record in full.
func replaceRecord[T any, P docPtr[T]](ctx context.Context, st store[T], id string, rec *T) (*T, error) {
	if verr := P(rec).Validate(); verr != nil {
		return nil, verr
	}
	return st.Replace(ctx, id, rec)
}

// createWithMedia uploads the provided attachments, then persists the record
// referencing them. When persistence fails the uploads are not rolled back;
// the resulting orphans are accepted.
func createWithMedia[T any, P docPtr[T]](ctx context.Context, st store[T], media storage.Storage, rec *T, fields []assetField[T]) (*T, error) {
	for _, f := range fields {
		if f.file == nil {
			continue
		}
		ref, err := media.Upload(ctx, f.folder, f.file.Name, f.file.Reader, f.file.Size, f.file.ContentType)
		if err != nil {
			return nil, err
		}
		f.set(rec, ref)
	}

	if verr := P(rec).Validate(); verr != nil {
		return nil, verr
	}
	return st.Create(ctx, rec)
}

// updateWithMedia sequences the asset swap on a full-replace write:
// upload replacements, persist the record with the new references, then
// best-effort delete the superseded assets. Fields without a replacement
// carry the existing reference forward.
func updateWithMedia[T any, P docPtr[T]](ctx context.Context, st store[T], media storage.Storage, id string, rec *T, fields []assetField[T]) (*T, error) {
	existing, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var superseded []string
	for _, f := range fields {
		if f.file != nil {
			ref, err := media.Upload(ctx, f.folder, f.file.Name, f.file.Reader, f.file.Size, f.file.ContentType)
			if err != nil {
				return nil, err
			}
			if old := f.get(existing); old != "" {
				superseded = append(superseded, old)
			}
			f.set(rec, ref)
		} else if f.get(rec) == "" {
			f.set(rec, f.get(existing))
		}
	}

	if verr := P(rec).Validate(); verr != nil {
		return nil, verr
	}

	updated, err := st.Replace(ctx, id, rec)
	if err != nil {
		// The record keeps its original references; anything uploaded
		// above is an accepted orphan.
		return nil, err
	}

	deleteAssets(ctx, media, superseded)
	return updated, nil
}

// deleteRecord removes the record, then best-effort deletes every asset it
// referenced. A missing record reports not-found and deletes nothing.
func deleteRecord[T any, P docPtr[T]](ctx context.Context, st store[T], media storage.Storage, id string) error {
	rec, err := st.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, id); err != nil {
		return err
	}
	deleteAssets(ctx, media, P(rec).assetRefs())
	return nil
}

// deleteAssets removes superseded or orphaned objects. Failures leave
// orphans in the store; they are logged and never surfaced to the caller.
func deleteAssets(ctx context.Context, media storage.Storage, refs []string) {
	for _, ref := range refs {
		if err := media.Delete(ctx, ref); err != nil {
			logger.Sugar.Warnw("asset delete failed, object orphaned", "ref", ref, "error", err)
		}
	}
}
