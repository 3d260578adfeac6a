package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/crm-obras-2n/crm-obras-backend/internal/proyectos/domain"
)

// maxBatchWrites is Firestore's per-batch write limit.
const maxBatchWrites = 500

// FirestoreRepository stores projects as documents of a single collection.
type FirestoreRepository struct {
	client     *firestore.Client
	collection string
	loc        *time.Location
}

// NewFirestoreRepository creates a project repository over the given collection.
// Dates are interpreted as calendar days in loc.
func NewFirestoreRepository(client *firestore.Client, collection string, loc *time.Location) *FirestoreRepository {
	if loc == nil {
		loc = time.Local
	}
	return &FirestoreRepository{client: client, collection: collection, loc: loc}
}

func (r *FirestoreRepository) col() *firestore.CollectionRef {
	return r.client.Collection(r.collection)
}

// List returns every project, unordered. OrderBy would skip documents
// without the phase field.
func (r *FirestoreRepository) List(ctx context.Context) ([]domain.Project, error) {
	iter := r.col().Documents(ctx)
	defer iter.Stop()

	var out []domain.Project
	for {
		d, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		out = append(out, fromDocument(d.Ref.ID, d.Data(), r.loc))
	}
	return out, nil
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	p := fromDocument(doc.Ref.ID, doc.Data(), r.loc)
	return &p, nil
}

// Create adds a new document stamped with the server time.
func (r *FirestoreRepository) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	data := toDocument(p)
	data[FieldCreatedAt] = firestore.ServerTimestamp

	ref, _, err := r.col().Add(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return r.Get(ctx, ref.ID)
}

// Update overwrites only the fields present in the patch.
func (r *FirestoreRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}

	fields := patchUpdates(patch)
	if len(fields) == 0 {
		return r.Get(ctx, id)
	}

	updates := make([]firestore.Update, 0, len(fields))
	for _, f := range fields {
		updates = append(updates, firestore.Update{Path: f.Path, Value: f.Value})
	}

	if _, err := r.col().Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	return r.Get(ctx, id)
}

// DeleteMany removes the documents in write batches. Each batch is atomic;
// more than maxBatchWrites ids span several batches.
func (r *FirestoreRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return domain.ErrNoIDs
	}

	for start := 0; start < len(ids); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(ids) {
			end = len(ids)
		}

		batch := r.client.Batch()
		for _, id := range ids[start:end] {
			batch.Delete(r.col().Doc(id))
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("delete projects: %w", err)
		}
	}
	return nil
}
