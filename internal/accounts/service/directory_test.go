package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kodefactor/accounts/internal/accounts/blob"
	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/pagex"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type failingBlobs struct{}

func (failingBlobs) Put(context.Context, string, string, io.Reader) (string, error) {
	return "", fmt.Errorf("bucket unavailable")
}

func TestListAccountsPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		f.signup(t, fmt.Sprintf("User %02d", i), fmt.Sprintf("user%02d@x.com", i), "secret1")
	}

	dir := &service.DirectoryService{Accounts: f.accounts}
	page, err := dir.ListAccounts(ctx, pagex.New(2, 5))
	require.NoError(t, err)

	require.Equal(t, 12, page.TotalUsers)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Users, 5)
	for i, u := range page.Users {
		require.Equal(t, fmt.Sprintf("user%02d@x.com", i+6), u.Email)
	}

	last, err := dir.ListAccounts(ctx, pagex.New(3, 5))
	require.NoError(t, err)
	require.Len(t, last.Users, 2)

	empty, err := dir.ListAccounts(ctx, pagex.New(9, 5))
	require.NoError(t, err)
	require.NotNil(t, empty.Users)
	require.Empty(t, empty.Users)
}

func TestCurrentAccount(t *testing.T) {
	f := newFixture(t)
	sess := f.signup(t, "Ann", "ann@x.com", "secret1")
	dir := &service.DirectoryService{Accounts: f.accounts}

	a, err := dir.CurrentAccount(context.Background(), sess.Account.ID)
	require.NoError(t, err)
	require.Equal(t, "Ann", a.Name)

	_, err = dir.CurrentAccount(context.Background(), "missing")
	require.ErrorIs(t, err, service.ErrAccountNotFound)
}

func TestUploadProfileImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.signup(t, "Ann", "ann@x.com", "secret1")

	blobs, err := blob.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	dir := &service.DirectoryService{Accounts: f.accounts, Blobs: blobs}

	url, err := dir.UploadProfileImage(ctx, sess.Account.ID, "me.png", "image/png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/profile_images/"+sess.Account.ID+"/"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	require.Equal(t, url, f.account(t, "ann@x.com").ProfileImage)
}

func TestUploadProfileImageRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.signup(t, "Ann", "ann@x.com", "secret1")

	blobs, err := blob.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	dir := &service.DirectoryService{Accounts: f.accounts, Blobs: blobs}

	_, err = dir.UploadProfileImage(ctx, sess.Account.ID, "", "", nil)
	require.ErrorIs(t, err, service.ErrNoFile)

	_, err = dir.UploadProfileImage(ctx, sess.Account.ID, "empty.png", "image/png", bytes.NewReader(nil))
	require.ErrorIs(t, err, service.ErrNoFile)

	_, err = dir.UploadProfileImage(ctx, sess.Account.ID, "notes.png", "image/png", strings.NewReader("plain text pretending"))
	require.ErrorIs(t, err, service.ErrUnsupportedImage)

	_, err = dir.UploadProfileImage(ctx, "missing", "me.png", "image/png", bytes.NewReader(pngHeader))
	require.ErrorIs(t, err, service.ErrAccountNotFound)

	broken := &service.DirectoryService{Accounts: f.accounts, Blobs: failingBlobs{}}
	_, err = broken.UploadProfileImage(ctx, sess.Account.ID, "me.png", "image/png", bytes.NewReader(pngHeader))
	require.ErrorIs(t, err, service.ErrUploadFailed)
	require.Empty(t, f.account(t, "ann@x.com").ProfileImage)
}
