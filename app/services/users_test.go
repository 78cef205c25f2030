package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories/memstore"
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/auth"
)

func newUsers(t *testing.T) (*services.UserService, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	return services.NewUserService(st.Users(), auth.NewTokens("test-secret", time.Hour), newMemFiles()), st
}

func register(t *testing.T, svc *services.UserService, name, email string) *services.AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), services.RegisterInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return res
}

func TestRegister(t *testing.T) {
	svc, st := newUsers(t)

	res := register(t, svc, "Ann", "Ann@Example.com")
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)

	stored, err := st.Users().FindByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.Equal(t, "en", stored.Profile.Language)
	assert.True(t, stored.WantsOrderEmails())

	_, err = svc.Register(context.Background(), services.RegisterInput{Name: "Ann2", Email: "ann@example.com", Password: "secret1"})
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "User already exists", ve.Message)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newUsers(t)
	_, err := svc.Register(context.Background(), services.RegisterInput{Name: "A", Email: "nope", Password: "123"})

	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 3)
}

func TestLogin(t *testing.T) {
	svc, _ := newUsers(t)
	register(t, svc, "Ann", "ann@example.com")

	res, err := svc.Login(context.Background(), services.LoginInput{Email: "ANN@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", res.User.Name)

	_, err = svc.Login(context.Background(), services.LoginInput{Email: "ann@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
	assert.Equal(t, "Invalid credentials", err.Error())

	_, err = svc.Login(context.Background(), services.LoginInput{Email: "who@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestAuthenticate_ReloadsUser(t *testing.T) {
	svc, st := newUsers(t)
	res := register(t, svc, "Ann", "ann@example.com")

	p, err := svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, p.UserID)
	assert.Equal(t, "user", p.Role)

	u, err := st.Users().FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	u.Role = models.RoleManager
	require.NoError(t, st.Users().Update(context.Background(), u))

	p, err = svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "manager", p.Role)

	require.NoError(t, st.Users().Delete(context.Background(), res.User.ID))
	_, err = svc.Authenticate(context.Background(), res.Token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestUsers_ListAndGetAuthorization(t *testing.T) {
	svc, _ := newUsers(t)
	ann := register(t, svc, "Ann", "ann@example.com")
	ben := register(t, svc, "Ben", "ben@example.com")
	annP := auth.Principal{UserID: ann.User.ID, Role: "user"}

	_, err := svc.List(context.Background(), annP)
	assert.ErrorIs(t, err, services.ErrForbidden)
	users, err := svc.List(context.Background(), manager)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.Get(context.Background(), annP, ben.User.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
	me, err := svc.Get(context.Background(), annP, ann.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", me.Name)

	me, err = svc.Me(context.Background(), annP)
	require.NoError(t, err)
	assert.Equal(t, ann.User.ID, me.ID)
}

func TestUsers_UpdateCannotTouchCredentials(t *testing.T) {
	svc, st := newUsers(t)
	ann := register(t, svc, "Ann", "ann@example.com")
	annP := auth.Principal{UserID: ann.User.ID, Role: "user"}

	got, err := svc.Update(context.Background(), annP, ann.User.ID, services.UpdateUserInput{
		Name:    ptr("Annie"),
		Company: ptr("Acme"),
		Preferences: &models.Preferences{Notifications: models.NotificationPreferences{
			EmailNotifications: true,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Annie", got.Name)
	assert.Equal(t, "Acme", got.Profile.Company)
	assert.False(t, got.WantsOrderEmails())

	stored, err := st.Users().FindByID(context.Background(), ann.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.Equal(t, "ann@example.com", stored.Email)

	_, err = svc.Update(context.Background(), bob, ann.User.ID, services.UpdateUserInput{Name: ptr("x y")})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestUsers_CreateAndDelete(t *testing.T) {
	svc, _ := newUsers(t)

	_, err := svc.Create(context.Background(), manager, services.CreateUserInput{Name: "Max", Email: "max@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	u, err := svc.Create(context.Background(), admin, services.CreateUserInput{
		Name: "Max", Email: "max@example.com", Password: "secret1", Role: "manager",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, u.Role)

	_, err = svc.Create(context.Background(), admin, services.CreateUserInput{
		Name: "Max", Email: "root@example.com", Password: "secret1", Role: "root",
	})
	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)

	err = svc.Delete(context.Background(), admin, admin.UserID)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Cannot delete your own account", ve.Message)

	assert.ErrorIs(t, svc.Delete(context.Background(), manager, u.ID), services.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), admin, u.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, u.ID), services.ErrNotFound)
}

func TestUsers_UploadAvatar(t *testing.T) {
	svc, _ := newUsers(t)
	ann := register(t, svc, "Ann", "ann@example.com")
	annP := auth.Principal{UserID: ann.User.ID, Role: "user"}

	u, err := svc.UploadAvatar(context.Background(), annP, ann.User.ID, services.Upload{
		ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("jpg"),
	})
	require.NoError(t, err)
	assert.Contains(t, u.Profile.Avatar, "/avatars/"+ann.User.ID+"/")

	_, err = svc.UploadAvatar(context.Background(), bob, ann.User.ID, services.Upload{ContentType: "image/jpeg"})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newUsers(t)

	u, created, err := svc.EnsureAdmin(context.Background(), "Root", "root@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, u.IsAdmin())

	again, created, err := svc.EnsureAdmin(context.Background(), "Root", "ROOT@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
}
