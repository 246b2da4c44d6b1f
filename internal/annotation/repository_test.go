package annotation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/transport"
)

// fakeTransport 内存中的服务端，按集合路径存放线上记录
type fakeTransport struct {
	nextID  int64
	owner   int64
	items   map[string][]Record
	raw     map[string]string // 覆盖 GET 响应，用于构造畸形记录
	fail    error
	calls   []string
	inspect func(method, path string)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{nextID: 100, owner: 42, items: map[string][]Record{}, raw: map[string]string{}}
}

func (f *fakeTransport) Do(_ context.Context, method, path string, body any) ([]byte, error) {
	f.calls = append(f.calls, method+" "+path)
	if f.inspect != nil {
		f.inspect(method, path)
	}
	if f.fail != nil {
		return nil, f.fail
	}

	collection, id := splitItemPath(path)
	switch {
	case method == http.MethodGet:
		if raw, ok := f.raw[path]; ok {
			return []byte(raw), nil
		}
		list := f.items[path]
		if list == nil {
			list = []Record{}
		}
		return json.Marshal(list)
	case method == http.MethodPost:
		rec := body.(Record).Clone()
		f.nextID++
		rec["id"] = f.nextID
		rec["user"] = f.owner
		f.items[path] = append(f.items[path], rec)
		return json.Marshal(rec)
	case method == http.MethodPatch:
		for _, rec := range f.items[collection] {
			if rec["id"] == id {
				for k, v := range body.(Record) {
					rec[k] = v
				}
				return json.Marshal(rec)
			}
		}
		return nil, errs.NotFound("annotation %d", id)
	case method == http.MethodDelete && id != 0:
		for i, rec := range f.items[collection] {
			if rec["id"] == id {
				f.items[collection] = append(f.items[collection][:i], f.items[collection][i+1:]...)
				return nil, nil
			}
		}
		return nil, errs.NotFound("annotation %d", id)
	case method == http.MethodDelete:
		if body == nil {
			delete(f.items, path)
			return nil, nil
		}
		ids := body.(map[string]any)["ids"].([]int64)
		kept := f.items[path][:0]
		for _, rec := range f.items[path] {
			if !containsID(ids, rec["id"].(int64)) {
				kept = append(kept, rec)
			}
		}
		f.items[path] = kept
		return nil, nil
	}
	return nil, errors.New("unsupported")
}

func splitItemPath(path string) (string, int64) {
	i := strings.LastIndex(path, "/")
	id, err := strconv.ParseInt(path[i+1:], 10, 64)
	if err != nil {
		return path, 0
	}
	return path[:i], id
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestRepository_CreateAssignsID(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	repo := NewRepository(tr, Spans)

	draft := &Span{Base: Base{Label: 3}, StartOffset: 0, EndOffset: 5}
	created, err := repo.Create(ctx, 1, 2, draft)
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(42), created.Owner)
	assert.Equal(t, int64(5), created.EndOffset)
	assert.Zero(t, draft.ID, "the draft is not mutated; a new instance is returned")
	assert.False(t, draft.Pending())
	assert.Equal(t, []string{"POST /projects/1/examples/2/spans"}, tr.calls)
}

func TestRepository_CreateRejectsPersistedID(t *testing.T) {
	tr := newFakeTransport()
	repo := NewRepository(tr, Categories)

	_, err := repo.Create(context.Background(), 1, 2, &Category{Base: Base{ID: 7, Label: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	assert.Empty(t, tr.calls, "no request is sent")
}

func TestRepository_CreateChecksShapePreconditions(t *testing.T) {
	tr := newFakeTransport()
	ctx := context.Background()

	_, err := NewRepository(tr, Relations).Create(ctx, 1, 2, &Relation{FromID: 0, ToID: 5, Type: 1})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument), "relation needs persisted endpoints")

	_, err = NewRepository(tr, Relations).Create(ctx, 1, 2, &Relation{FromID: 5, ToID: 5, Type: 1})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument), "relation cannot point a span at itself")

	_, err = NewRepository(tr, Segmentations).Create(ctx, 1, 2, NewSegmentation(1, []Point{{X: 0, Y: 0}, {X: 1, Y: 1}}))
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument), "polygon needs 3 points")

	_, err = NewRepository(tr, Spans).Create(ctx, 1, 2, &Span{Base: Base{Label: 1}, StartOffset: 4, EndOffset: 4})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument), "empty span")

	assert.Empty(t, tr.calls)
}

func TestRepository_CreateMarksPendingDuringWrite(t *testing.T) {
	tr := newFakeTransport()
	repo := NewRepository(tr, BoundingBoxes)
	box := NewBoundingBox(1, 10, 10, 5, 5)

	tr.inspect = func(method, path string) {
		assert.True(t, box.Pending(), "box should be pending while the request is in flight")
		assert.ErrorIs(t, box.SetRect(0, 0, 1, 1), ErrPendingWrite)
	}
	created, err := repo.Create(context.Background(), 1, 2, box)
	require.NoError(t, err)
	assert.False(t, box.Pending())
	assert.Equal(t, box.UUID, created.UUID, "uuid survives the sync cycle")
	assert.Equal(t, 10.0, created.X)
}

func TestRepository_CreateRejectsResponseWithoutID(t *testing.T) {
	tr := &stubTransport{response: `{"label":1,"user":2}`}
	repo := NewRepository(tr, Categories)

	_, err := repo.Create(context.Background(), 1, 2, &Category{Base: Base{Label: 1}})
	assert.True(t, errors.Is(err, errs.ErrDecode))
}

func TestRepository_ListDecodesEveryItem(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	repo := NewRepository(tr, Texts)

	for _, text := range []string{"a", "b"} {
		_, err := repo.Create(ctx, 1, 2, &TextLabel{Text: text})
		require.NoError(t, err)
	}

	items, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Text)
	assert.Equal(t, "b", items[1].Text)

	empty, err := repo.List(ctx, 1, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepository_ListFailsOnMalformedRecord(t *testing.T) {
	tr := newFakeTransport()
	tr.raw["/projects/1/examples/2/spans"] = `[{"id":1,"label":2,"start_offset":0,"end_offset":3},{"id":2,"label":2,"start_offset":"x","end_offset":3}]`
	repo := NewRepository(tr, Spans)

	items, err := repo.List(context.Background(), 1, 2)
	assert.Nil(t, items, "a malformed record must not be silently dropped")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDecode))
	assert.Contains(t, err.Error(), "spans[1]")
}

func TestRepository_UpdatePartialFields(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	repo := NewRepository(tr, Relations)

	created, err := repo.Create(ctx, 1, 2, &Relation{FromID: 10, ToID: 11, Type: 1})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, 1, 2, created.ID, TypePatch(2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Type)
	assert.Equal(t, int64(10), updated.FromID)

	_, err = repo.Update(ctx, 1, 2, 9999, TypePatch(2))
	assert.True(t, errors.Is(err, errs.ErrNotFound), "update of a missing id is surfaced")

	_, err = repo.Update(ctx, 1, 2, created.ID, Patch{})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}

func TestRepository_Apply(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	repo := NewRepository(tr, Categories)

	created, err := repo.Create(ctx, 1, 2, &Category{Base: Base{Label: 1}})
	require.NoError(t, err)
	require.NoError(t, created.ChangeLabel(5))
	require.True(t, created.Dirty())

	updated, err := repo.Apply(ctx, 1, 2, created, LabelPatch(created.Label))
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Label)
	assert.False(t, created.Dirty())
	assert.False(t, created.Pending())
}

func TestRepository_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	repo := NewRepository(tr, Spans)

	_, err := repo.Create(ctx, 1, 2, &Span{Base: Base{Label: 1}, StartOffset: 0, EndOffset: 1})
	require.NoError(t, err)

	before, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, 1, 2, 12345))
	require.NoError(t, repo.Delete(ctx, 1, 2, 12345))

	after, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRepository_DeleteToleratesPlainTextNotFound(t *testing.T) {
	mock := httpmock.NewMockTransport()
	mock.RegisterResponder(http.MethodDelete, "http://labels.test/api/v1/projects/1/examples/2/spans/9",
		httpmock.NewStringResponder(http.StatusNotFound, "404 page not found"))
	tr := transport.NewHTTPTransport("http://labels.test/api/v1",
		transport.WithHTTPClient(&http.Client{Transport: mock}))

	require.NoError(t, NewRepository(tr, Spans).Delete(context.Background(), 1, 2, 9))
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestRepository_BulkDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	tr := newFakeTransport()
	repo := NewRepository(tr, Categories)

	var ids []int64
	for label := int64(1); label <= 3; label++ {
		c, err := repo.Create(ctx, 1, 2, &Category{Base: Base{Label: label}})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	require.NoError(t, repo.BulkDelete(ctx, 1, 2, []int64{ids[0], ids[1], 777}))
	left, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, ids[2], left[0].ID)

	calls := len(tr.calls)
	require.NoError(t, repo.BulkDelete(ctx, 1, 2, nil))
	assert.Len(t, tr.calls, calls, "empty bulk delete sends nothing")

	require.NoError(t, repo.Clear(ctx, 1, 2))
	left, err = repo.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRepository_TransportErrorPassesThrough(t *testing.T) {
	cause := &errs.TransportError{Method: "GET", Path: "/x", Status: 503, Err: errors.New("unavailable")}
	tr := newFakeTransport()
	tr.fail = cause
	repo := NewRepository(tr, Segmentations)

	_, err := repo.List(context.Background(), 1, 2)
	assert.Same(t, cause, err)

	assert.True(t, errors.Is(repo.Delete(context.Background(), 1, 2, 3), errs.ErrTransport),
		"only NotFound is swallowed on delete")
}

// stubTransport 固定响应
type stubTransport struct {
	response string
}

func (s *stubTransport) Do(context.Context, string, string, any) ([]byte, error) {
	return []byte(s.response), nil
}
