package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medivault/internal/record"
	id "medivault/pkg/domain"
	"medivault/pkg/platform/sentinel"
	"medivault/pkg/testutil"
)

func newRecord(createdAt time.Time, deadline *time.Time) record.Record {
	return record.Record{
		ID: id.NewRecordID(),
		Fields: map[string]record.Field{
			"name": {Category: id.CategoryIdentity, Tag: id.TagPlain, Value: "Jane Smith"},
		},
		RetentionDeadline: deadline,
		CreatedAt:         createdAt,
		ModifiedAt:        createdAt,
	}
}

func TestSaveAndFind(t *testing.T) {
	store := New()
	ctx := context.Background()
	rec := newRecord(testutil.FixedDate, nil)

	require.NoError(t, store.Save(ctx, rec))

	found, err := store.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, found.ID)
	assert.Equal(t, "Jane Smith", found.Fields["name"].Value)
}

func TestFindUnknownRecord(t *testing.T) {
	store := New()
	_, err := store.FindByID(context.Background(), id.NewRecordID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestStoreNeverAliasesFieldMaps(t *testing.T) {
	store := New()
	ctx := context.Background()
	rec := newRecord(testutil.FixedDate, nil)
	require.NoError(t, store.Save(ctx, rec))

	// Mutating what the store handed out must not reach the stored copy.
	found, err := store.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	field := found.Fields["name"]
	field.Value = "tampered"
	found.Fields["name"] = field

	again, err := store.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", again.Fields["name"].Value)
}

func TestListOrdersByCreation(t *testing.T) {
	store := New()
	ctx := context.Background()

	second := newRecord(testutil.FixedDate.Add(time.Hour), nil)
	first := newRecord(testutil.FixedDate, nil)
	require.NoError(t, store.Save(ctx, second))
	require.NoError(t, store.Save(ctx, first))

	recs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, first.ID, recs[0].ID)
	assert.Equal(t, second.ID, recs[1].ID)
}

func TestScanByRetention(t *testing.T) {
	store := New()
	ctx := context.Background()

	later := testutil.FixedDate.AddDate(0, 0, 60)
	sooner := testutil.FixedDate.AddDate(0, 0, 5)
	withLater := newRecord(testutil.FixedDate, &later)
	withSooner := newRecord(testutil.FixedDate, &sooner)
	unmanaged := newRecord(testutil.FixedDate, nil)

	require.NoError(t, store.Save(ctx, withLater))
	require.NoError(t, store.Save(ctx, withSooner))
	require.NoError(t, store.Save(ctx, unmanaged))

	recs, err := store.ScanByRetention(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// Nearest deadline first; unmanaged records are excluded.
	assert.Equal(t, withSooner.ID, recs[0].ID)
	assert.Equal(t, withLater.ID, recs[1].ID)
}
