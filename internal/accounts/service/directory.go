package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/blob"
	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/store"
	"github.com/kodefactor/accounts/pkg/idx"
	"github.com/kodefactor/accounts/pkg/pagex"
	"github.com/kodefactor/accounts/pkg/slogx"
)

const profileImageFolder = "profile_images"

// imageTypes maps the accepted sniffed content types to a file extension.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DirectoryService serves account listing and profile operations.
type DirectoryService struct {
	Accounts store.Accounts
	Blobs    blob.Store
}

type AccountPage struct {
	Users       []domain.AccountSummary
	TotalUsers  int
	TotalPages  int
	CurrentPage int
}

func (s *DirectoryService) ListAccounts(ctx context.Context, p pagex.Params) (AccountPage, error) {
	p = pagex.New(p.Page, p.Limit)

	total, err := s.Accounts.Count(ctx)
	if err != nil {
		return AccountPage{}, fmt.Errorf("count accounts: %w", err)
	}

	users, err := s.Accounts.ListPage(ctx, p.Offset(), p.Limit)
	if err != nil {
		return AccountPage{}, fmt.Errorf("list accounts: %w", err)
	}
	if users == nil {
		users = []domain.AccountSummary{}
	}

	return AccountPage{
		Users:       users,
		TotalUsers:  total,
		TotalPages:  pagex.TotalPages(total, p.Limit),
		CurrentPage: p.Page,
	}, nil
}

func (s *DirectoryService) CurrentAccount(ctx context.Context, id string) (domain.Account, error) {
	a, err := s.Accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("load account: %w", err)
	}
	return a, nil
}

// UploadProfileImage stores an image for the account and records its URL.
// The content type is sniffed from the data; the client's claim is only logged.
func (s *DirectoryService) UploadProfileImage(ctx context.Context, id, filename, contentType string, r io.Reader) (string, error) {
	l := slogx.FromContext(ctx)
	if r == nil {
		return "", ErrNoFile
	}

	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(head) == 0 {
		return "", ErrNoFile
	}

	sniffed := http.DetectContentType(head)
	ext, ok := imageTypes[sniffed]
	if !ok {
		l.Info("profile image rejected",
			slog.String("filename", filename),
			slog.String("declared", contentType),
			slog.String("sniffed", sniffed))
		return "", ErrUnsupportedImage
	}

	if _, err := s.CurrentAccount(ctx, id); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s/%s%s", profileImageFolder, id, idx.New(), ext)
	url, err := s.Blobs.Put(ctx, key, sniffed, br)
	if err != nil {
		l.Error("profile image upload failed", slog.String("key", key), slog.Any("err", err))
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	if _, err := s.Accounts.Update(ctx, id, domain.AccountPatch{ProfileImage: &url}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("save profile image: %w", err)
	}
	return url, nil
}
