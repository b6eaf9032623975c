package repository

import (
	"testing"

	"coder_edu_progress/internal/model"
	"coder_edu_progress/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_UpdateLastSeen(t *testing.T) {
	db := testutil.DB(t)
	u := testutil.SeedUser(t, db, "seen@example.com", model.Student)
	before := u.LastSeen

	require.NoError(t, NewUserRepository(db).UpdateLastSeen(u.ID))

	var got model.User
	require.NoError(t, db.First(&got, u.ID).Error)
	assert.True(t, got.LastSeen.After(before))

	// unknown users are a no-op
	assert.NoError(t, NewUserRepository(db).UpdateLastSeen(u.ID+100))
}
