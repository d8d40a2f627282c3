package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/specforge/internal/command"
	"github.com/mark3labs/specforge/internal/spec"
	"github.com/mark3labs/specforge/internal/store"
)

const petsYAML = `openapi: 3.0.3
info:
  title: Pets
  version: 1.0.0
paths:
  /pets:
    get:
      responses:
        "200":
          description: ok
`

const legacyYAML = `swagger: "2.0"
info:
  title: Legacy
  version: "1"
host: api.example.com
basePath: /v1
schemes: [https]
paths:
  /items:
    get:
      responses:
        "200":
          description: ok
`

func TestSession_StartsWithDefaultDocument(t *testing.T) {
	s := New(nil)
	doc := s.Document()
	require.NotNil(t, doc)
	assert.Equal(t, "New API", doc.Info.Title)
	assert.Empty(t, doc.Paths)
}

func TestSession_ImportReplacesDocument(t *testing.T) {
	s := New(nil)
	doc, err := s.Import(context.Background(), []byte(petsYAML))
	require.NoError(t, err)
	assert.Equal(t, "Pets", doc.Info.Title)
	require.Contains(t, doc.Paths, "/pets")
	// Canonical form: the operation carries an empty tag list.
	assert.NotNil(t, doc.Paths["/pets"].Get.Tags)
}

func TestSession_ImportLegacy(t *testing.T) {
	s := New(nil)
	doc, err := s.Import(context.Background(), []byte(legacyYAML))
	require.NoError(t, err)
	require.NotEmpty(t, doc.Servers)
	assert.Equal(t, "https://api.example.com/v1", doc.Servers[0].URL)
}

func TestSession_ImportInvalidKeepsDocument(t *testing.T) {
	s := New(nil)
	before := s.Document()
	_, err := s.Import(context.Background(), []byte("title: nothing\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, spec.ErrInvalidSpecification))
	assert.Same(t, before, s.Document())
}

func TestSession_SaveThenUndoAcrossSessions(t *testing.T) {
	ctx := context.Background()
	st := store.NewFileStore(t.TempDir())

	first := New(st)
	_, err := first.Import(ctx, []byte(petsYAML))
	require.NoError(t, err)
	_, err = first.Dispatch(ctx, command.Save{})
	require.NoError(t, err)

	data, err := st.Get(ctx, store.SnapshotKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/pets")

	second := New(st)
	assert.Equal(t, "New API", second.Document().Info.Title)
	doc, err := second.Dispatch(ctx, command.Undo{})
	require.NoError(t, err)
	assert.Equal(t, "Pets", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/pets")
}

func TestSession_UndoWithoutSnapshotIsNoop(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemoryStore())
	before := s.Document()
	doc, err := s.Dispatch(ctx, command.Undo{})
	require.NoError(t, err)
	assert.Same(t, before, doc)
}

func TestSession_UndoRevertsEdits(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	_, err := s.DispatchAll(ctx,
		command.AddPath{Path: "/a"},
		command.Save{},
		command.AddPath{Path: "/b"},
		command.SetInfoField{Field: "title", Value: "Changed"},
	)
	require.NoError(t, err)
	require.Contains(t, s.Document().Paths, "/b")

	doc, err := s.Dispatch(ctx, command.Undo{})
	require.NoError(t, err)
	assert.Contains(t, doc.Paths, "/a")
	assert.NotContains(t, doc.Paths, "/b")
	assert.Equal(t, "New API", doc.Info.Title)
}

type failingStore struct{ store.Store }

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("disk full") }

func TestSession_SaveReportsStoreFailure(t *testing.T) {
	s := New(failingStore{store.NewMemoryStore()})
	_, err := s.Dispatch(context.Background(), command.Save{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotNil(t, s.State().Snapshot)
}

func TestSession_ExportFormats(t *testing.T) {
	s := New(nil, WithDocument(spec.NewDefaultDocument()))
	js, err := s.Export(spec.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(js), `"title": "New API"`)
	ym, err := s.Export(spec.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(ym), "title: New API")
}

func TestSession_ConcurrentDispatch(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Dispatch(ctx, command.AddServer{})
		}()
	}
	wg.Wait()
	assert.Len(t, s.Document().Servers, 21)
}
