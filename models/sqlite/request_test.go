package sqlite

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

func setupRequestRepo(suffix string, t *testing.T) *requestRepo {
	path := "./request_" + suffix
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&outstandingRequest{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = os.Remove(path)
	})
	return newRequestRepo(db)
}

func record(session string, id types.RequestID) *types.RequestRecord {
	return &types.RequestRecord{
		Session: session,
		PendingRequest: types.PendingRequest{
			ID:          id,
			Method:      "eth_call",
			Returns:     types.ReturnNumber,
			Function:    "balanceOf",
			Requirement: types.TransportSync,
			Transport:   types.TransportHTTP,
			Submitted:   time.Unix(1700000000+int64(id), 0).UTC(),
		},
		Payload: json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"eth_call","params":[]}`),
	}
}

func TestRequestRepo_SaveGet(t *testing.T) {
	r := setupRequestRepo("save_get", t)

	require.NoError(t, r.Save(record("a", 1)))

	got, err := r.Get("a", 1)
	require.NoError(t, err)
	require.Equal(t, types.RequestID(1), got.ID)
	require.Equal(t, "balanceOf", got.Function)
	require.Equal(t, types.TransportSync, got.Requirement)
	require.Equal(t, types.TransportHTTP, got.Transport)
	require.JSONEq(t, string(record("a", 1).Payload), string(got.Payload))
	require.True(t, record("a", 1).Submitted.Equal(got.Submitted))

	_, err = r.Get("b", 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRequestRepo_DuplicateInSession(t *testing.T) {
	r := setupRequestRepo("duplicate", t)

	require.NoError(t, r.Save(record("a", 1)))
	require.Error(t, r.Save(record("a", 1)))
	require.NoError(t, r.Save(record("b", 1)))
}

func TestRequestRepo_HasDelete(t *testing.T) {
	r := setupRequestRepo("has_delete", t)
	require.NoError(t, r.Save(record("a", 1)))
	require.NoError(t, r.Save(record("a", 2)))

	has, err := r.Has("a", 1)
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, r.Delete("a", 1))
	has, err = r.Has("a", 1)
	require.NoError(t, err)
	require.False(t, has)

	// deleting a missing row is not an error
	require.NoError(t, r.Delete("a", 1))

	has, err = r.Has("a", 2)
	require.NoError(t, err)
	require.True(t, has)
}

func TestRequestRepo_Stale(t *testing.T) {
	r := setupRequestRepo("stale", t)
	require.NoError(t, r.Save(record("old", 3)))
	require.NoError(t, r.Save(record("old", 1)))
	require.NoError(t, r.Save(record("older", 2)))
	require.NoError(t, r.Save(record("cur", 4)))

	cur, err := r.List("cur")
	require.NoError(t, err)
	require.Len(t, cur, 1)

	stale, err := r.ListStale("cur")
	require.NoError(t, err)
	require.Len(t, stale, 3)
	require.Equal(t, types.RequestID(1), stale[0].ID)
	require.Equal(t, types.RequestID(3), stale[2].ID)

	n, err := r.DeleteStale("cur")
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	stale, err = r.ListStale("cur")
	require.NoError(t, err)
	require.Empty(t, stale)

	cur, err = r.List("cur")
	require.NoError(t, err)
	require.Len(t, cur, 1)
}
