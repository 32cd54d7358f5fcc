package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thammystudio/studio-crm/internal/model"
)

func TestDeliveryReportRepository_Create(t *testing.T) {
	repo := NewDeliveryReportRepository(setupTestDB(t).DB)
	ctx := context.Background()

	t.Run("delivered", func(t *testing.T) {
		deliveredAt := baseTime.Add(time.Minute)
		created, err := repo.Create(ctx, &model.DeliveryReport{MessageID: "msg-1", Status: "DELIVERED", OperatorID: "OP-1", DeliveredAt: &deliveredAt})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "OP-1", created.OperatorID)
		assert.False(t, created.CreatedAt.IsZero())
		require.NotNil(t, created.DeliveredAt)
		assert.True(t, created.DeliveredAt.Equal(deliveredAt))
	})

	t.Run("failed has no delivery time", func(t *testing.T) {
		created, err := repo.Create(ctx, &model.DeliveryReport{MessageID: "msg-1", Status: "FAILED", ErrorCode: "RETRIES_EXHAUSTED"})
		require.NoError(t, err)
		assert.Nil(t, created.DeliveredAt)
		assert.Equal(t, "RETRIES_EXHAUSTED", created.ErrorCode)
	})

	t.Run("list by message", func(t *testing.T) {
		reports, err := repo.ListByMessage(ctx, "msg-1")
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, "DELIVERED", reports[0].Status)
		assert.Equal(t, "FAILED", reports[1].Status)
		assert.Equal(t, "RETRIES_EXHAUSTED", reports[1].ErrorCode)

		none, err := repo.ListByMessage(ctx, "msg-2")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
