package pagestore

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/pagecache/pagecache"
)

func TestLocal_PutGetDelete(t *testing.T) {
	s, err := NewLocal(t.TempDir(), 0)
	require.NoError(t, err)
	defer s.Close()

	id := pagecache.PageID{FileID: "f", PageIndex: 0}
	require.NoError(t, s.Put(id, []byte("hello world")))
	require.EqualValues(t, 11, s.Bytes())

	r, err := s.Get(id, 6)
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, []byte("world"), body)

	require.NoError(t, s.Delete(id, 11))
	require.EqualValues(t, 0, s.Bytes())

	_, err = s.Get(id, 0)
	require.ErrorIs(t, err, pagecache.ErrNotFound)
}

func TestLocal_PutDisallowsOverwrite(t *testing.T) {
	s, err := NewLocal(t.TempDir(), 0)
	require.NoError(t, err)
	defer s.Close()

	id := pagecache.PageID{FileID: "f", PageIndex: 0}
	require.NoError(t, s.Put(id, []byte("a")))
	err = s.Put(id, []byte("b"))
	require.ErrorIs(t, err, pagecache.ErrAlreadyExists)
}

func TestLocal_DeleteSizeMismatch(t *testing.T) {
	s, err := NewLocal(t.TempDir(), 0)
	require.NoError(t, err)
	defer s.Close()

	id := pagecache.PageID{FileID: "f", PageIndex: 0}
	require.NoError(t, s.Put(id, []byte("hello")))

	err = s.Delete(id, 999)
	require.ErrorIs(t, err, pagecache.ErrSizeMismatch)
}

func TestLocal_PagesEnumeratesOnReload(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewLocal(dir, 0)
	require.NoError(t, err)
	require.NoError(t, s1.Put(pagecache.PageID{FileID: "a", PageIndex: 0}, []byte("xx")))
	require.NoError(t, s1.Put(pagecache.PageID{FileID: "a", PageIndex: 1}, []byte("yyy")))
	require.NoError(t, s1.Close())

	s2, err := NewLocal(dir, 0)
	require.NoError(t, err)
	defer s2.Close()

	pages, err := s2.Pages()
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.EqualValues(t, 5, s2.Bytes())
}

func TestLocal_OverheadRatio(t *testing.T) {
	s, err := NewLocal(t.TempDir(), 0.25)
	require.NoError(t, err)
	defer s.Close()
	require.InDelta(t, 0.25, s.OverheadRatio(), 1e-9)
}
