package dbctx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"doc-governance/dbctx"
	"doc-governance/models"
	"doc-governance/testutil"
)

type ctxKey struct{}

func TestDBPrefersTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.WithValue(context.Background(), ctxKey{}, "req")

	plain := dbctx.New(ctx).DB(db)
	assert.Equal(t, "req", plain.Statement.Context.Value(ctxKey{}))

	err := db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		if err := dbc.DB(db).Create(&models.User{Username: "tx", Email: "tx@example.com", Password: "x"}).Error; err != nil {
			return err
		}
		var n int64
		require.NoError(t, dbc.DB(db).Model(&models.User{}).Count(&n).Error)
		assert.EqualValues(t, 1, n)
		return gorm.ErrInvalidTransaction
	})
	require.ErrorIs(t, err, gorm.ErrInvalidTransaction)

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n, "rolled back")
}

func TestDBWithoutContext(t *testing.T) {
	db := testutil.NewDB(t)
	assert.NotNil(t, dbctx.Context{}.DB(db).Statement.Context)
}
