package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRequestCtx(t *testing.T) {
	ctx := NewRequestCtx("POST", "/api/v1/leads?source=zalo", []byte(`{"name":"Lan"}`))

	assert.Equal(t, "POST", string(ctx.Method()))
	assert.Equal(t, "/api/v1/leads", string(ctx.Path()))
	assert.Equal(t, "zalo", string(ctx.QueryArgs().Peek("source")))
	assert.Equal(t, `{"name":"Lan"}`, string(ctx.PostBody()))
	assert.Equal(t, "application/json", string(ctx.Request.Header.ContentType()))

	// usable as a context.Context by services and the database layer
	var c context.Context = ctx
	assert.NoError(t, c.Err())
	select {
	case <-c.Done():
		t.Fatal("fresh request context is already done")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestSetupTestDB_Transaction(t *testing.T) {
	db := SetupTestDB(t)
	ctx := NewRequestCtx("GET", "/", nil)

	err := db.WithinTransaction(ctx, func(ctx context.Context) error {
		return db.Write(ctx).Exec("SELECT 1").Error
	})
	assert.NoError(t, err)
}
