package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverzler/functions/internal/domain"
	apperrors "github.com/deliverzler/functions/pkg/errors"
)

// newEmulatorClient connects to the Firestore emulator, skipping the test
// when FIRESTORE_EMULATOR_HOST is unset.
func newEmulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "deliverzler-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestReviewFromData_NonNumericRating(t *testing.T) {
	now := time.Now().UTC()
	r := reviewFromData("r1", map[string]any{
		"storeId":   "s1",
		"rating":    "five",
		"createdAt": now,
	})
	assert.Equal(t, "s1", r.StoreID)
	assert.Nil(t, r.Rating)
	assert.Equal(t, now, r.CreatedAt)

	r = reviewFromData("r2", map[string]any{"storeId": "s1", "rating": int64(4)})
	require.NotNil(t, r.Rating)
	assert.Equal(t, 4.0, *r.Rating)
}

func TestUserFromData(t *testing.T) {
	u := userFromData("u1", map[string]any{"name": "Sara", "role": "superAdmin", "email": 42})
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, domain.RoleSuperAdmin, u.Role)
	assert.Empty(t, u.Email)
}

func TestEmulator_RatingRoundTrip(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	storeID := "store-" + uuid.NewString()

	_, err := client.Collection(CollectionStores).Doc(storeID).Set(ctx, map[string]any{"name": "Test"})
	require.NoError(t, err)
	for i, v := range []any{4, 5, "bad", 3} {
		_, err := client.Collection(CollectionStoreReviews).Doc(storeID+"-"+string(rune('a'+i))).Set(ctx, map[string]any{
			"storeId": storeID,
			"rating":  v,
		})
		require.NoError(t, err)
	}

	reviews, err := NewReviewRepository(client).ListByStore(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, reviews, 4)

	summary := domain.AggregateRatings(reviews)
	assert.Equal(t, domain.RatingSummary{Average: 4, Count: 3}, summary)

	stores := NewStoreRepository(client)
	require.NoError(t, stores.UpdateRating(ctx, storeID, summary))

	doc, err := client.Collection(CollectionStores).Doc(storeID).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, doc.Data()["rating"])
	assert.Equal(t, int64(3), doc.Data()["totalRatings"])
	assert.IsType(t, time.Time{}, doc.Data()["updatedAt"])

	err = stores.UpdateRating(ctx, "missing-"+storeID, summary)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEmulator_UserLifecycle(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	repo := NewUserRepository(client)
	id := "user-" + uuid.NewString()

	require.NoError(t, repo.Set(ctx, &domain.User{ID: id, Name: "Omar", Email: "o@example.com", Role: domain.RoleAdmin}))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.False(t, got.CreatedAt.IsZero())

	admins, err := repo.ListByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, admins)

	require.NoError(t, repo.Delete(ctx, id))
	require.NoError(t, repo.Delete(ctx, id))

	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEmulator_BootstrapMarker(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	repo := NewBootstrapMarkerRepository(client)
	_ = repo.Release(ctx)

	ok, err := repo.Claim(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Claim(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	m, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "u1", m.ClaimedBy)

	require.NoError(t, repo.Release(ctx))
	m, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.NoError(t, Ping(ctx, client))
}

func TestEmulator_AdminNotification(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	adminID := "admin-" + uuid.NewString()

	n := domain.NewDriverRequestNotification(&domain.DriverRequest{ID: "d1", FirstName: "A", LastName: "B"})
	require.NoError(t, NewAdminNotificationRepository(client).Create(ctx, adminID, &n))
	require.NotEmpty(t, n.ID)

	doc, err := client.Collection(CollectionAdminNotifications).Doc(adminID).
		Collection(SubcollectionNotifications).Doc(n.ID).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "driver", doc.Data()["type"])
	assert.Equal(t, false, doc.Data()["isRead"])
	assert.Equal(t, "d1", doc.Data()["relatedId"])
}
