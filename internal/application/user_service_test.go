package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/project-management-api/internal/domain/apperr"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/internal/testutil"
	"github.com/oksasatya/project-management-api/pkg/helpers"
)

type fakeUploader struct {
	path, contentType, body string
	err                     error
}

func (f *fakeUploader) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	f.path, f.contentType, f.body = objectPath, contentType, string(b)
	return "https://storage.googleapis.com/bucket/" + objectPath, nil
}

func seedUser(t *testing.T, users *testutil.UserRepo, email string, role entity.Role) *entity.User {
	t.Helper()
	u := &entity.User{FirstName: "Test", LastName: "User", Email: email, Password: "hash", Role: role, IsActive: true, Preferences: entity.DefaultPreferences()}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func strp(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	users := testutil.NewUserRepo()
	u := seedUser(t, users, "a@x.com", entity.RoleDeveloper)
	svc := NewUserService(users, nil, helpers.NewDiscardLogger())

	prof, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{
		FirstName: strp("  Ada "),
		Bio:       strp("builds things"),
		Skills:    []string{"go", " go", "", "sql"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Ada", prof.FirstName)
	assert.Equal(t, "User", prof.LastName)
	assert.Equal(t, "builds things", prof.Bio)
	assert.Equal(t, []string{"go", "sql"}, prof.Skills)

	_, err = svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{LastName: strp(strings.Repeat("x", 51))})
	requireKind(t, err, apperr.KindBadRequest)

	_, err = svc.UpdateProfile(context.Background(), "missing", UpdateProfileInput{})
	requireKind(t, err, apperr.KindNotFound)
}

func TestUserService_UploadAvatar(t *testing.T) {
	users := testutil.NewUserRepo()
	u := seedUser(t, users, "a@x.com", entity.RoleDeveloper)
	up := &fakeUploader{}
	svc := NewUserService(users, up, helpers.NewDiscardLogger())
	ctx := context.Background()

	prof, err := svc.UploadAvatar(ctx, u.ID, strings.NewReader("png-bytes"), "Me.PNG", "image/png")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.path, "avatars/"+u.ID+"/"))
	assert.True(t, strings.HasSuffix(up.path, ".png"))
	assert.Equal(t, "png-bytes", up.body)
	assert.Equal(t, "https://storage.googleapis.com/bucket/"+up.path, prof.Avatar)

	_, err = svc.UploadAvatar(ctx, u.ID, strings.NewReader("x"), "a.txt", "text/plain")
	requireKind(t, err, apperr.KindBadRequest)

	up.err = errors.New("bucket gone")
	_, err = svc.UploadAvatar(ctx, u.ID, strings.NewReader("x"), "a.png", "image/png")
	requireKind(t, err, apperr.KindInternal)

	_, err = NewUserService(users, nil, nil).UploadAvatar(ctx, u.ID, strings.NewReader("x"), "a.png", "image/png")
	requireKind(t, err, apperr.KindInternal)
}

func TestUserService_List(t *testing.T) {
	users := testutil.NewUserRepo()
	for _, e := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		seedUser(t, users, e, entity.RoleDeveloper)
	}
	svc := NewUserService(users, nil, nil)

	page, err := svc.List(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a@x.com", page[0].Email)

	page, err = svc.List(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c@x.com", page[0].Email)

	users.Err = testutil.ErrUnavailable
	_, err = svc.List(context.Background(), 10, 0)
	requireKind(t, err, apperr.KindInternal)
}
