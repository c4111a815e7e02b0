package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/deliverzler/functions/internal/domain"
	apperrors "github.com/deliverzler/functions/pkg/errors"
)

// UserRepository implements repository.UserRepository on Firestore.
type UserRepository struct {
	client *firestore.Client
}

// NewUserRepository creates a Firestore-backed user repository.
func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

// Get reads users/{id}.
func (r *UserRepository) Get(ctx context.Context, id string) (_ *domain.User, err error) {
	ctx, end := trace(ctx, "GetUser", CollectionUsers+"/"+id)
	defer func() { end(err) }()

	doc, err := r.client.Collection(CollectionUsers).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u := userFromData(doc.Ref.ID, doc.Data())
	return &u, nil
}

// Set writes users/{id}, preserving createdAt of an existing document.
func (r *UserRepository) Set(ctx context.Context, u *domain.User) (err error) {
	ctx, end := trace(ctx, "SetUser", CollectionUsers+"/"+u.ID)
	defer func() { end(err) }()

	ref := r.client.Collection(CollectionUsers).Doc(u.ID)
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		data := map[string]any{
			"name":      u.Name,
			"email":     u.Email,
			"role":      string(u.Role),
			"createdBy": u.CreatedBy,
			"updatedAt": firestore.ServerTimestamp,
		}
		if _, err := tx.Get(ref); err != nil {
			if !isNotFound(err) {
				return err
			}
			data["createdAt"] = firestore.ServerTimestamp
		}
		return tx.Set(ref, data, firestore.MergeAll)
	})
	if err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	return nil
}

// Delete removes users/{id}. Firestore deletes of missing documents succeed.
func (r *UserRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := trace(ctx, "DeleteUser", CollectionUsers+"/"+id)
	defer func() { end(err) }()

	if _, err = r.client.Collection(CollectionUsers).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ListByRole queries users by role.
func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) (_ []domain.User, err error) {
	ctx, end := trace(ctx, "ListUsersByRole", CollectionUsers)
	defer func() { end(err) }()

	iter := r.client.Collection(CollectionUsers).Where("role", "==", string(role)).Documents(ctx)
	defer iter.Stop()

	users := make([]domain.User, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list users by role: %w", err)
		}
		users = append(users, userFromData(doc.Ref.ID, doc.Data()))
	}
	return users, nil
}

func userFromData(id string, data map[string]any) domain.User {
	return domain.User{
		ID:        id,
		Name:      stringField(data, "name"),
		Email:     stringField(data, "email"),
		Role:      domain.ParseRole(stringField(data, "role")),
		CreatedBy: stringField(data, "createdBy"),
		CreatedAt: timeField(data, "createdAt"),
		UpdatedAt: timeField(data, "updatedAt"),
	}
}
