package local

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saransh1220/panchakarma/internal/modules/filestorage/domain"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_EndToEnd(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base, "http://localhost/uploads/")
	require.NoError(t, err)
	require.Equal(t, base, ls.BasePath())

	url, err := ls.UploadFile(context.Background(), "avatars/u1/a.jpg", bytes.NewBufferString("hello"), "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "http://localhost/uploads/avatars/u1/a.jpg", url)

	_, err = os.Stat(filepath.Join(base, "avatars", "u1", "a.jpg"))
	require.NoError(t, err)

	p, err := ls.GetPresignedURL(context.Background(), "avatars/u1/a.jpg", time.Minute)
	require.NoError(t, err)
	require.Equal(t, url, p)

	k, err := ls.GetKeyFromURL(url)
	require.NoError(t, err)
	require.Equal(t, "avatars/u1/a.jpg", k)

	require.NoError(t, ls.DeleteFile(context.Background(), "avatars/u1/a.jpg"))
	require.ErrorIs(t, ls.DeleteFile(context.Background(), "avatars/u1/a.jpg"), domain.ErrNotExist)

	_, err = ls.GetKeyFromURL("http://bad/x")
	require.Error(t, err)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	_, err = ls.UploadFile(context.Background(), "../escape.txt", bytes.NewBufferString("x"), "text/plain")
	require.ErrorIs(t, err, domain.ErrInvalidKey)

	_, err = ls.GetPresignedURL(context.Background(), "", time.Minute)
	require.ErrorIs(t, err, domain.ErrInvalidKey)

	require.ErrorIs(t, ls.DeleteFile(context.Background(), "a/../../b"), domain.ErrInvalidKey)
}
