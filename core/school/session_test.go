package school

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Sessions_Login(t *testing.T) {
	store, _ := newTestStore(t)
	sessions := NewSessions(store)

	// wrong password: failed login leaves no session behind
	_, err := sessions.Login("ana", "wrong")
	assert.Equal(t, ErrInvalidCredentials, err)
	_, ok := sessions.Current()
	assert.False(t, ok)

	// blank fields
	_, err = sessions.Login("", "x")
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = sessions.Login("ana", "  ")
	assert.Equal(t, ErrInvalidCredentials, err)

	usr, err := sessions.Login("ana", "x")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, usr.Role)
	assert.Equal(t, "Ana", usr.Name)

	current, ok := sessions.Current()
	assert.True(t, ok)
	assert.Equal(t, usr, current)
}

func Test_Sessions_Logout(t *testing.T) {
	store, _ := newTestStore(t)
	sessions := NewSessions(store)

	_, err := sessions.Login("ana", "x")
	require.NoError(t, err)

	sessions.Logout()
	_, ok := sessions.Current()
	assert.False(t, ok)

	// logout with no session is fine
	sessions.Logout()
}

func Test_Sessions_seeNewlyAddedTeachers(t *testing.T) {
	store, _ := newTestStore(t)
	sessions := NewSessions(store)

	_, err := store.AddTeacher(context.Background(), NewTeacher{Name: "Paulo Freire"})
	require.NoError(t, err)

	usr, err := sessions.Login("paulo", DefaultTeacherPassword)
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, usr.Role)
}
