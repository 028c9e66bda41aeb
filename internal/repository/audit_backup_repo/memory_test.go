package audit_backup_repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zodiac_backend/internal/model"
)

func TestMemoryRepoKeepsLastEntries(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository(3)

	for i := 0; i < 5; i++ {
		err := r.Append(ctx, "u1", []model.AuditLogEntry{{ID: fmt.Sprint(i)}})
		require.NoError(t, err)
	}

	got, err := r.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "4", got[2].ID)

	other, err := r.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
