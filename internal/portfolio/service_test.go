package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkay/portfolio-api/internal/storage"
	"github.com/berkay/portfolio-api/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

// ---- fakes ----

// memStore keeps records as marshaled documents, mirroring how the real
// store round-trips them through jsonb.
type memStore[T any, P docPtr[T]] struct {
	mu   sync.Mutex
	recs map[string][]byte

	replaceErr error
}

func newMemStore[T any, P docPtr[T]]() *memStore[T, P] {
	return &memStore[T, P]{recs: map[string][]byte{}}
}

func (s *memStore[T, P]) decodeAll() ([]*T, error) {
	out := []*T{}
	for _, raw := range s.recs {
		rec := new(T)
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *memStore[T, P]) List(ctx context.Context) ([]*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.decodeAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return P(out[i]).displayOrder() < P(out[j]).displayOrder()
	})
	return out, nil
}

func (s *memStore[T, P]) ListByField(ctx context.Context, field, value string) ([]*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*T{}
	for _, raw := range s.recs {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		if v, _ := m[field].(string); v != value {
			continue
		}
		rec := new(T)
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return P(out[i]).displayOrder() < P(out[j]).displayOrder()
	})
	return out, nil
}

func (s *memStore[T, P]) Get(ctx context.Context, id string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec := new(T)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *memStore[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	P(rec).setDocumentID(uuid.NewString())
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	s.recs[P(rec).documentID()] = raw
	return rec, nil
}

func (s *memStore[T, P]) Replace(ctx context.Context, id string, rec *T) (*T, error) {
	if s.replaceErr != nil {
		return nil, s.replaceErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[id]; !ok {
		return nil, ErrNotFound
	}
	P(rec).setDocumentID(id)
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	s.recs[id] = raw
	return rec, nil
}

func (s *memStore[T, P]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[id]; !ok {
		return ErrNotFound
	}
	delete(s.recs, id)
	return nil
}

// fakeStorage holds uploaded objects in memory and hands out access URLs
// that resolve back to their keys.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	uploadErr error
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(ctx context.Context, folder, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := folder + "/" + filename
	f.objects[key] = data
	return "https://media.test/" + key, nil
}

func (f *fakeStorage) PresignedURL(ctx context.Context, ref string) (string, error) {
	key, err := storage.ResolveKey(ref)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return "", fmt.Errorf("%w: no such object %q", storage.ErrStorage, key)
	}
	return "signed://" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, ref string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	key, err := storage.ResolveKey(ref)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func validJob() *JobHistory {
	return &JobHistory{
		CompanyName:  "Initech",
		JobTitle:     "Engineer",
		StartDate:    "2020-01-15",
		EndDate:      "2022-06-30",
		IsCurrent:    false,
		Description:  "TPS reports",
		Location:     "Austin, TX",
		DisplayOrder: 1,
	}
}

func upload(name string) *File {
	return &File{
		Name:        name,
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("data"),
	}
}

// ---- tests ----

func TestCreateRecordAssignsID(t *testing.T) {
	st := newMemStore[Skill, *Skill]()

	created, err := createRecord[Skill, *Skill](context.Background(), st, &Skill{
		SkillName:    "Go",
		SkillLevel:   SkillAdvanced,
		DisplayOrder: 1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := st.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateRecordRejectsInvalid(t *testing.T) {
	st := newMemStore[Skill, *Skill]()

	_, err := createRecord[Skill, *Skill](context.Background(), st, &Skill{
		SkillLevel: "EXPERT",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"skillName", "skillLevel", "displayOrder"}, fields)
	assert.Empty(t, st.recs)
}

func TestReplaceRecordMissing(t *testing.T) {
	st := newMemStore[Skill, *Skill]()

	_, err := replaceRecord[Skill, *Skill](context.Background(), st, "nope", &Skill{
		SkillName:    "Go",
		SkillLevel:   SkillBeginner,
		DisplayOrder: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, st.recs)
}

func TestListOrdersByDisplayOrder(t *testing.T) {
	st := newMemStore[Skill, *Skill]()
	for _, order := range []int{3, 1, 2} {
		_, err := createRecord[Skill, *Skill](context.Background(), st, &Skill{
			SkillName:    fmt.Sprintf("skill-%d", order),
			SkillLevel:   SkillIntermediate,
			DisplayOrder: order,
		})
		require.NoError(t, err)
	}

	recs, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i, rec := range recs {
		assert.Equal(t, i+1, rec.DisplayOrder)
	}
}

func TestCreateWithMediaUploadsThenPersists(t *testing.T) {
	st := newMemStore[JobHistory, *JobHistory]()
	fs := newFakeStorage()

	job := validJob()
	fields := []assetField[JobHistory]{{
		folder: folderJobHistory,
		get:    func(j *JobHistory) string { return j.CompanyLogo },
		set:    func(j *JobHistory, ref string) { j.CompanyLogo = ref },
		file:   upload("logo.png"),
	}}

	created, err := createWithMedia[JobHistory, *JobHistory](context.Background(), st, fs, job, fields)
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/job-history/logo.png", created.CompanyLogo)
	assert.True(t, fs.has("job-history/logo.png"))

	got, err := st.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.CompanyLogo, got.CompanyLogo)
}

func TestCreateWithMediaUploadFailure(t *testing.T) {
	st := newMemStore[JobHistory, *JobHistory]()
	fs := newFakeStorage()
	fs.uploadErr = fmt.Errorf("%w: connection refused", storage.ErrStorage)

	fields := []assetField[JobHistory]{{
		folder: folderJobHistory,
		get:    func(j *JobHistory) string { return j.CompanyLogo },
		set:    func(j *JobHistory, ref string) { j.CompanyLogo = ref },
		file:   upload("logo.png"),
	}}

	_, err := createWithMedia[JobHistory, *JobHistory](context.Background(), st, fs, validJob(), fields)
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.Empty(t, st.recs)
}

func TestUpdateWithMediaSwapsAsset(t *testing.T) {
	st := newMemStore[JobHistory, *JobHistory]()
	fs := newFakeStorage()
	fs.objects["job-history/old.png"] = []byte("old")

	seed := validJob()
	seed.CompanyLogo = "https://media.test/job-history/old.png"
	seeded, err := st.Create(context.Background(), seed)
	require.NoError(t, err)

	incoming := validJob()
	fields := []assetField[JobHistory]{{
		folder: folderJobHistory,
		get:    func(j *JobHistory) string { return j.CompanyLogo },
		set:    func(j *JobHistory, ref string) { j.CompanyLogo = ref },
		file:   upload("new.png"),
	}}

	updated, err := updateWithMedia[JobHistory, *JobHistory](context.Background(), st, fs, seeded.ID, incoming, fields)
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/job-history/new.png", updated.CompanyLogo)

	// The superseded object is gone and can no longer be signed.
	assert.False(t, fs.has("job-history/old.png"))
	_, err = fs.PresignedURL(context.Background(), "https://media.test/job-history/old.png")
	assert.ErrorIs(t, err, storage.ErrStorage)
	assert.True(t, fs.has("job-history/new.png"))
}

func TestUpdateWithMediaCarriesExistingRef(t *testing.T) {
	st := newMemStore[JobHistory, *JobHistory]()
	fs := newFakeStorage()
	fs.objects["job-history/old.png"] = []byte("old")

	seed := validJob()
	seed.CompanyLogo = "https://media.test/job-history/old.png"
	seeded, err := st.Create(context.Background(), seed)
	require.NoError(t, err)

	incoming := validJob()
	fields := []assetField[JobHistory]{{
		folder: folderJobHistory,
		get:    func(j *JobHistory) string { return j.CompanyLogo },
		set:    func(j *JobHistory, ref string) { j.CompanyLogo = ref },
		file:   nil,
	}}

	updated, err := updateWithMedia[JobHistory, *JobHistory](context.Background(), st, fs, seeded.ID, incoming, fields)
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/job-history/old.png", updated.CompanyLogo)
	assert.True(t, fs.has("job-history/old.png"))
	assert.Empty(t, fs.deleted)
}

func TestUpdateWithMediaPersistFailureLeavesOrphan(t *testing.T) {
	st := newMemStore[JobHistory, *JobHistory]()
	fs := newFakeStorage()
	fs.objects["job-history/old.png"] = []byte("old")

	seed := validJob()
	seed.CompanyLogo = "https://media.test/job-history/old.png"
	seeded, err := st.Create(context.Background(), seed)
	require.NoError(t, err)

	st.replaceErr = errors.New("connection reset")

	incoming := validJob()
	fields := []assetField[JobHistory]{{
		folder: folderJobHistory,
		get:    func(j *JobHistory) string { return j.CompanyLogo },
		set:    func(j *JobHistory, ref string) { j.CompanyLogo = ref },
		file:   upload("new.png"),
	}}

	_, err = updateWithMedia[JobHistory, *JobHistory](context.Background(), st, fs, seeded.ID, incoming, fields)
	require.Error(t, err)

	// The record still points at the old object; the new upload is an
	// orphan but the old asset was not deleted.
	st.replaceErr = nil
	got, err := st.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/job-history/old.png", got.CompanyLogo)
	assert.True(t, fs.has("job-history/old.png"))
	assert.True(t, fs.has("job-history/new.png"))
}

func TestUpdateWithMediaMissingRecord(t *testing.T) {
	st := newMemStore[JobHistory, *JobHistory]()
	fs := newFakeStorage()

	fields := []assetField[JobHistory]{{
		folder: folderJobHistory,
		get:    func(j *JobHistory) string { return j.CompanyLogo },
		set:    func(j *JobHistory, ref string) { j.CompanyLogo = ref },
		file:   upload("new.png"),
	}}

	_, err := updateWithMedia[JobHistory, *JobHistory](context.Background(), st, fs, "nope", validJob(), fields)
	assert.ErrorIs(t, err, ErrNotFound)
	// Nothing was uploaded for a record that does not exist.
	assert.Empty(t, fs.objects)
}

func TestDeleteRecordCascadesAssets(t *testing.T) {
	st := newMemStore[JobHistory, *JobHistory]()
	fs := newFakeStorage()
	fs.objects["job-history/logo.png"] = []byte("logo")

	seed := validJob()
	seed.CompanyLogo = "https://media.test/job-history/logo.png"
	seeded, err := st.Create(context.Background(), seed)
	require.NoError(t, err)

	require.NoError(t, deleteRecord[JobHistory, *JobHistory](context.Background(), st, fs, seeded.ID))

	_, err = st.Get(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, fs.has("job-history/logo.png"))
}

func TestDeleteRecordMissingDeletesNothing(t *testing.T) {
	st := newMemStore[JobHistory, *JobHistory]()
	fs := newFakeStorage()
	fs.objects["job-history/logo.png"] = []byte("logo")

	err := deleteRecord[JobHistory, *JobHistory](context.Background(), st, fs, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, fs.has("job-history/logo.png"))
	assert.Empty(t, fs.deleted)
}

func TestDeleteRecordSwallowsAssetFailure(t *testing.T) {
	st := newMemStore[JobHistory, *JobHistory]()
	fs := newFakeStorage()
	fs.deleteErr = fmt.Errorf("%w: access denied", storage.ErrStorage)

	seed := validJob()
	seed.CompanyLogo = "https://media.test/job-history/logo.png"
	seeded, err := st.Create(context.Background(), seed)
	require.NoError(t, err)

	// The record delete succeeds even though the asset delete fails; the
	// object is left orphaned.
	require.NoError(t, deleteRecord[JobHistory, *JobHistory](context.Background(), st, fs, seeded.ID))
	_, err = st.Get(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
