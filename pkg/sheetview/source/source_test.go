package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, value string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", value))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestOpenBytes(t *testing.T) {
	f, err := OpenBytes(1, workbookBytes(t, "hello"))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = OpenBytes(2, []byte("%PDF-1.7\n"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = OpenBytes(3, nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDirResolver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "7.xlsx"), workbookBytes(t, "seven"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "8.xlsx"), []byte("plain text"), 0o644))

	r := NewDirResolver(dir)

	f, err := r.Open(context.Background(), 7)
	require.NoError(t, err)
	defer f.Close()
	v, _ := f.GetCellValue("Sheet1", "A1")
	assert.Equal(t, "seven", v)

	_, err = r.Open(context.Background(), 9)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = r.Open(context.Background(), 8)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	r.Pattern = "doc-%03d.xlsx"
	assert.Equal(t, filepath.Join(dir, "doc-007.xlsx"), r.Path(7))
}

func TestHTTPResolver(t *testing.T) {
	data := workbookBytes(t, "remote")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.URL.Path {
		case "/api/documents/5/download/":
			w.Write(data)
		case "/api/documents/6/download/":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL+"/", "secret", 0)

	f, err := r.Open(context.Background(), 5)
	require.NoError(t, err)
	defer f.Close()
	v, _ := f.GetCellValue("Sheet1", "A1")
	assert.Equal(t, "remote", v)

	_, err = r.Open(context.Background(), 404)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = r.Open(context.Background(), 6)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDocumentNotFound))

	_, err = NewHTTPResolver(srv.URL, "wrong", 0).Open(context.Background(), 5)
	assert.Error(t, err)

	// A hand-built resolver without a client uses the default one.
	bare := &HTTPResolver{BaseURL: srv.URL, Token: "secret"}
	f2, err := bare.Open(context.Background(), 5)
	require.NoError(t, err)
	f2.Close()
}

func TestNewHTTPResolver(t *testing.T) {
	r := NewHTTPResolver("http://docs.local/", "tok", 0)
	assert.Equal(t, "http://docs.local", r.BaseURL)
	assert.Equal(t, "tok", r.Token)
	require.NotNil(t, r.Client)
	assert.Equal(t, DefaultTimeout, r.Client.Timeout)
}

type countingResolver struct {
	data  []byte
	calls atomic.Int32
}

func (c *countingResolver) Open(_ context.Context, id int) (*excelize.File, error) {
	c.calls.Add(1)
	if id < 0 {
		return nil, ErrDocumentNotFound
	}
	return OpenBytes(id, c.data)
}

func acquire(t *testing.T, s *Store, id int) *Handle {
	t.Helper()
	h, err := s.Acquire(context.Background(), id)
	require.NoError(t, err)
	return h
}

func TestStoreCachesAndEvicts(t *testing.T) {
	r := &countingResolver{data: workbookBytes(t, "x")}
	s := NewStore(r, 2)
	defer s.Close()

	first := acquire(t, s, 1)
	again := acquire(t, s, 1)
	assert.Same(t, first.File, again.File)
	assert.EqualValues(t, 1, r.calls.Load())
	first.Release()
	again.Release()

	acquire(t, s, 2).Release()
	acquire(t, s, 3).Release()
	assert.Equal(t, 2, s.Len())
	assert.True(t, first.entry.closed)

	// 1 was evicted and is resolved again.
	acquire(t, s, 1).Release()
	assert.EqualValues(t, 4, r.calls.Load())
}

func TestStoreDefersCloseOfBorrowedWorkbook(t *testing.T) {
	r := &countingResolver{data: workbookBytes(t, "kept")}
	s := NewStore(r, 1)
	defer s.Close()

	held := acquire(t, s, 1)
	other := acquire(t, s, 2)
	defer other.Release()

	// 1 left the cache but its reader is still active.
	assert.Equal(t, 1, s.Len())
	assert.True(t, held.entry.evicted)
	assert.False(t, held.entry.closed)
	v, err := held.File.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "kept", v)

	held.Release()
	assert.True(t, held.entry.closed)
	held.Release()
	assert.Equal(t, 0, held.entry.refs)
}

func TestStoreConcurrentEviction(t *testing.T) {
	r := &countingResolver{data: workbookBytes(t, "v")}
	s := NewStore(r, 1)
	defer s.Close()

	var wg sync.WaitGroup
	failures := make(chan string, 64)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			h, err := s.Acquire(context.Background(), id)
			if err != nil {
				failures <- err.Error()
				return
			}
			defer h.Release()
			for j := 0; j < 4; j++ {
				if h.entry.closed {
					failures <- "workbook closed while held"
					return
				}
				if v, err := h.File.GetCellValue("Sheet1", "A1"); err != nil || v != "v" {
					failures <- "unexpected read"
					return
				}
			}
		}(i % 4)
	}
	wg.Wait()
	close(failures)

	for msg := range failures {
		t.Error(msg)
	}
	assert.LessOrEqual(t, s.Len(), 1)
}

func TestStoreCloseWithBorrowedWorkbook(t *testing.T) {
	s := NewStore(&countingResolver{data: workbookBytes(t, "x")}, 2)

	held := acquire(t, s, 1)
	acquire(t, s, 2).Release()
	require.NoError(t, s.Close())

	assert.Equal(t, 0, s.Len())
	assert.False(t, held.entry.closed)
	held.Release()
	assert.True(t, held.entry.closed)
}

func TestStoreResolve(t *testing.T) {
	s := NewStore(&countingResolver{data: workbookBytes(t, "x")}, 0)
	defer s.Close()

	assert.NoError(t, s.Resolve(context.Background(), 1))
	assert.ErrorIs(t, s.Resolve(context.Background(), -1), ErrDocumentNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestStoreConcurrentAcquire(t *testing.T) {
	r := &countingResolver{data: workbookBytes(t, "x")}
	s := NewStore(r, 4)
	defer s.Close()

	var wg sync.WaitGroup
	files := make([]*excelize.File, 8)
	for i := range files {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := s.Acquire(context.Background(), 42)
			if err == nil {
				files[i] = h.File
				h.Release()
			}
		}(i)
	}
	wg.Wait()

	for _, f := range files {
		assert.Same(t, files[0], f)
	}
	assert.Equal(t, 1, s.Len())
}
