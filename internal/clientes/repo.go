package clientes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

const autoCreatedNote = "Creado automáticamente desde importación/proyecto."

type Repository interface {
	List(ctx context.Context) ([]Client, error)
	Create(ctx context.Context, c Client) (*Client, error)
	// EnsureBasic creates a minimal client for company unless one already exists.
	// created reports whether a document was written.
	EnsureBasic(ctx context.Context, company, clientType string) (created bool, err error)
}

// FirestoreRepo stores clients in their own collection.
type FirestoreRepo struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreRepo(client *firestore.Client, collection string) *FirestoreRepo {
	return &FirestoreRepo{client: client, collection: collection}
}

func (r *FirestoreRepo) List(ctx context.Context) ([]Client, error) {
	docs, err := r.client.Collection(r.collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	out := make([]Client, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d.Ref.ID, d.Data()))
	}
	sortClients(out)
	return out, nil
}

func (r *FirestoreRepo) Create(ctx context.Context, c Client) (*Client, error) {
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	data := c.toDocument()
	if c.CreatedAt != nil {
		data["fecha_alta"] = *c.CreatedAt
	} else {
		data["fecha_alta"] = firestore.ServerTimestamp
	}

	ref, _, err := r.client.Collection(r.collection).Add(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	c.ID = ref.ID
	if c.CreatedAt == nil {
		now := time.Now()
		c.CreatedAt = &now
	}
	return &c, nil
}

func (r *FirestoreRepo) EnsureBasic(ctx context.Context, company, clientType string) (bool, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return false, nil
	}

	docs, err := r.client.Collection(r.collection).Where("empresa", "==", company).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("lookup client %q: %w", company, err)
	}
	if len(docs) > 0 {
		return false, nil
	}

	if _, err := r.Create(ctx, basicClient(company, clientType)); err != nil {
		return false, err
	}
	return true, nil
}

// MemoryRepo is the in-process counterpart of FirestoreRepo.
type MemoryRepo struct {
	mu    sync.Mutex
	items []Client
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) List(_ context.Context) ([]Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]Client(nil), r.items...)
	sortClients(out)
	return out, nil
}

func (r *MemoryRepo) Create(_ context.Context, c Client) (*Client, error) {
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = uuid.New().String()
	if c.CreatedAt == nil {
		now := time.Now()
		c.CreatedAt = &now
	}
	r.items = append(r.items, c)
	return &c, nil
}

func (r *MemoryRepo) EnsureBasic(ctx context.Context, company, clientType string) (bool, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return false, nil
	}

	r.mu.Lock()
	for _, c := range r.items {
		if c.Company == company {
			r.mu.Unlock()
			return false, nil
		}
	}
	r.mu.Unlock()

	if _, err := r.Create(ctx, basicClient(company, clientType)); err != nil {
		return false, err
	}
	return true, nil
}

func basicClient(company, clientType string) Client {
	return Client{
		Company:    company,
		ClientType: clientType,
		Notes:      autoCreatedNote,
	}
}

func sortClients(items []Client) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Company+items[i].Name) < strings.ToLower(items[j].Company+items[j].Name)
	})
}
