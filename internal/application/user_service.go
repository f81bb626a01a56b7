package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-management-api/internal/domain/apperr"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	repo "github.com/oksasatya/project-management-api/internal/domain/repository"
	"github.com/oksasatya/project-management-api/pkg/helpers"
)

const (
	CodeInvalidProfile  = "invalid_profile"
	CodeInvalidAvatar   = "invalid_avatar"
	CodeStorageDisabled = "storage_not_configured"

	maxNameLen       = 50
	maxBioLen        = 500
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ObjectUploader stores an uploaded file and returns its public URL.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type UserService struct {
	Users   repo.UserRepository
	Storage ObjectUploader
	Logger  *logrus.Logger
}

func NewUserService(users repo.UserRepository, storage ObjectUploader, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Storage: storage, Logger: logger}
}

func (s *UserService) internal(msg string, err error, fields logrus.Fields) error {
	helpers.LogError(s.Logger, msg, err, fields)
	return apperr.Internal("store_unavailable", err)
}

func (s *UserService) load(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, CodeUserNotFound, "user not found")
	}
	if err != nil {
		return nil, s.internal("load user failed", err, logrus.Fields{"user_id": id})
	}
	return u, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (entity.UserProfile, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return entity.UserProfile{}, err
	}
	return u.Profile(), nil
}

// UpdateProfileInput carries the editable profile fields. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	Department  *string
	Phone       *string
	Bio         *string
	Skills      []string
	Preferences *entity.Preferences
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (entity.UserProfile, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return entity.UserProfile{}, err
	}

	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if v == "" || utf8.RuneCountInString(v) > maxNameLen {
			return entity.UserProfile{}, apperr.New(apperr.KindBadRequest, CodeInvalidProfile, "first name must be 1-50 characters")
		}
		u.FirstName = v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		if v == "" || utf8.RuneCountInString(v) > maxNameLen {
			return entity.UserProfile{}, apperr.New(apperr.KindBadRequest, CodeInvalidProfile, "last name must be 1-50 characters")
		}
		u.LastName = v
	}
	if in.Department != nil {
		u.Department = strings.TrimSpace(*in.Department)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > maxBioLen {
			return entity.UserProfile{}, apperr.New(apperr.KindBadRequest, CodeInvalidProfile, "bio must be at most 500 characters")
		}
		u.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Skills != nil {
		u.Skills = cleanList(in.Skills)
	}
	if in.Preferences != nil {
		u.Preferences = *in.Preferences
	}

	if err := s.Users.Update(ctx, u); err != nil {
		return entity.UserProfile{}, s.internal("update profile failed", err, logrus.Fields{"user_id": u.ID})
	}
	return u.Profile(), nil
}

// UploadAvatar stores an image under avatars/<user>/ and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (entity.UserProfile, error) {
	if s.Storage == nil {
		return entity.UserProfile{}, apperr.New(apperr.KindInternal, CodeStorageDisabled, "avatar storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return entity.UserProfile{}, apperr.New(apperr.KindBadRequest, CodeInvalidAvatar, "avatar must be an image")
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return entity.UserProfile{}, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := s.Storage.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		helpers.LogError(s.Logger, "avatar upload failed", err, logrus.Fields{"user_id": userID})
		return entity.UserProfile{}, apperr.Internal("upload_failed", err)
	}

	u.Avatar = url
	if err := s.Users.Update(ctx, u); err != nil {
		return entity.UserProfile{}, s.internal("persist avatar failed", err, logrus.Fields{"user_id": u.ID})
	}
	return u.Profile(), nil
}

// List pages through all users. limit is clamped to [1,100].
func (s *UserService) List(ctx context.Context, limit, offset int) ([]entity.UserProfile, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.Users.List(ctx, limit, offset)
	if err != nil {
		return nil, s.internal("list users failed", err, nil)
	}
	out := make([]entity.UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
