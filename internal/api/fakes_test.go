package api

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/models"
	"github.com/lookprice/lookprice/internal/repository"
)

// In-memory repository implementations for handler tests. They mirror the
// SQL semantics the postgres stores rely on: not-found is (nil, nil), upsert
// is keyed on (store, barcode), deleting a product drops its scan logs.

type memUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (m *memUserRepo) Create(_ context.Context, storeID uuid.UUID, email, passwordHash string, role models.Role) (*models.User, error) {
	u := &models.User{
		ID:           uuid.New(),
		StoreID:      storeID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Get(_ context.Context, userID uuid.UUID) (*models.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *memUserRepo) GetByID(_ context.Context, storeID, userID uuid.UUID) (*models.User, error) {
	u, ok := m.users[userID]
	// uuid.Nil stands in for SQL NULL, and NULL = anything is never true —
	// a superadmin row is invisible to store-scoped lookups.
	if !ok || u.StoreID == uuid.Nil || u.StoreID != storeID {
		return nil, nil
	}
	return u, nil
}

func (m *memUserRepo) ListByStore(_ context.Context, storeID uuid.UUID) ([]models.User, error) {
	out := make([]models.User, 0)
	for _, u := range m.users {
		if u.StoreID == storeID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memUserRepo) Delete(_ context.Context, storeID, userID uuid.UUID) (bool, error) {
	u, ok := m.users[userID]
	if !ok || u.StoreID == uuid.Nil || u.StoreID != storeID {
		return false, nil
	}
	delete(m.users, userID)
	return true, nil
}

type memStoreRepo struct {
	stores map[uuid.UUID]*models.Store
	users  *memUserRepo
	now    func() time.Time
}

func newMemStoreRepo(users *memUserRepo) *memStoreRepo {
	return &memStoreRepo{
		stores: map[uuid.UUID]*models.Store{},
		users:  users,
		now:    time.Now,
	}
}

func (m *memStoreRepo) add(params repository.StoreParams) *models.Store {
	s := &models.Store{
		ID:              uuid.New(),
		Name:            params.Name,
		Slug:            params.Slug,
		Address:         params.Address,
		ContactPerson:   params.ContactPerson,
		Phone:           params.Phone,
		Email:           params.Email,
		SubscriptionEnd: params.SubscriptionEnd,
		LogoURL:         params.LogoURL,
		PrimaryColor:    params.PrimaryColor,
		BackgroundURL:   params.BackgroundURL,
		Currency:        params.Currency,
		CreatedAt:       time.Now(),
	}
	m.stores[s.ID] = s
	return s
}

func (m *memStoreRepo) CreateWithOwner(ctx context.Context, params repository.StoreParams, ownerEmail, ownerPasswordHash string) (*models.Store, *models.User, error) {
	s := m.add(params)
	owner, err := m.users.Create(ctx, s.ID, ownerEmail, ownerPasswordHash, models.RoleStoreAdmin)
	if err != nil {
		return nil, nil, err
	}
	return s, owner, nil
}

func (m *memStoreRepo) GetByID(_ context.Context, storeID uuid.UUID) (*models.Store, error) {
	s, ok := m.stores[storeID]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (m *memStoreRepo) GetBySlug(_ context.Context, slug string) (*models.Store, error) {
	for _, s := range m.stores {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStoreRepo) List(_ context.Context) ([]repository.StoreSummary, error) {
	out := make([]repository.StoreSummary, 0)
	for _, s := range m.stores {
		out = append(out, repository.StoreSummary{Store: *s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStoreRepo) Update(_ context.Context, storeID uuid.UUID, params repository.StoreParams) (*models.Store, error) {
	s, ok := m.stores[storeID]
	if !ok {
		return nil, nil
	}
	s.Name = params.Name
	s.Slug = params.Slug
	s.Address = params.Address
	s.ContactPerson = params.ContactPerson
	s.Phone = params.Phone
	s.Email = params.Email
	s.SubscriptionEnd = params.SubscriptionEnd
	s.LogoURL = params.LogoURL
	s.PrimaryColor = params.PrimaryColor
	s.BackgroundURL = params.BackgroundURL
	s.Currency = params.Currency
	return s, nil
}

func (m *memStoreRepo) UpdateBranding(_ context.Context, storeID uuid.UUID, b models.Branding) (*models.Store, error) {
	s, ok := m.stores[storeID]
	if !ok {
		return nil, nil
	}
	s.LogoURL = b.LogoURL
	s.PrimaryColor = b.PrimaryColor
	s.BackgroundURL = b.BackgroundURL
	s.Currency = b.Currency
	return s, nil
}

func (m *memStoreRepo) ExtendSubscriptions(_ context.Context, storeIDs []uuid.UUID, days int) (int64, error) {
	today := m.now().UTC().Truncate(24 * time.Hour)
	var updated int64
	for _, id := range storeIDs {
		s, ok := m.stores[id]
		if !ok {
			continue
		}
		base := today
		if s.SubscriptionEnd != nil && s.SubscriptionEnd.After(today) {
			base = *s.SubscriptionEnd
		}
		end := base.AddDate(0, 0, days)
		s.SubscriptionEnd = &end
		updated++
	}
	return updated, nil
}

func (m *memStoreRepo) Stats(_ context.Context) (*repository.SystemStats, error) {
	return &repository.SystemStats{
		Stores: int64(len(m.stores)),
		Users:  int64(len(m.users.users)),
	}, nil
}

type memProductRepo struct {
	products map[uuid.UUID]*models.Product
	scans    *memScanRepo
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[uuid.UUID]*models.Product{}}
}

func (m *memProductRepo) Upsert(_ context.Context, storeID uuid.UUID, params repository.ProductParams) (*models.Product, error) {
	for _, p := range m.products {
		if p.StoreID == storeID && p.Barcode == params.Barcode {
			p.Name = params.Name
			p.Price = params.Price
			p.Currency = params.Currency
			p.Description = params.Description
			return p, nil
		}
	}
	p := &models.Product{
		ID:          uuid.New(),
		StoreID:     storeID,
		Barcode:     params.Barcode,
		Name:        params.Name,
		Price:       params.Price,
		Currency:    params.Currency,
		Description: params.Description,
		CreatedAt:   time.Now(),
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *memProductRepo) GetByID(_ context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	p, ok := m.products[productID]
	if !ok || p.StoreID != storeID {
		return nil, nil
	}
	return p, nil
}

func (m *memProductRepo) GetByBarcode(_ context.Context, storeID uuid.UUID, barcode string) (*models.Product, error) {
	for _, p := range m.products {
		if p.StoreID == storeID && p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memProductRepo) ListByStore(_ context.Context, storeID uuid.UUID) ([]models.Product, error) {
	out := make([]models.Product, 0)
	for _, p := range m.products {
		if p.StoreID == storeID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memProductRepo) Update(_ context.Context, storeID, productID uuid.UUID, params repository.ProductParams) (*models.Product, error) {
	p, ok := m.products[productID]
	if !ok || p.StoreID != storeID {
		return nil, nil
	}
	p.Barcode = params.Barcode
	p.Name = params.Name
	p.Price = params.Price
	p.Currency = params.Currency
	p.Description = params.Description
	return p, nil
}

func (m *memProductRepo) Delete(_ context.Context, storeID, productID uuid.UUID) (bool, error) {
	p, ok := m.products[productID]
	if !ok || p.StoreID != storeID {
		return false, nil
	}
	delete(m.products, productID)
	if m.scans != nil {
		m.scans.dropProduct(productID)
	}
	return true, nil
}

func (m *memProductRepo) DeleteAll(_ context.Context, storeID uuid.UUID) (int64, error) {
	var removed int64
	for id, p := range m.products {
		if p.StoreID == storeID {
			delete(m.products, id)
			if m.scans != nil {
				m.scans.dropProduct(id)
			}
			removed++
		}
	}
	return removed, nil
}

type memScanRepo struct {
	events   []models.ScanEvent
	products *memProductRepo
	nextID   int64
}

func newMemScanRepo(products *memProductRepo) *memScanRepo {
	s := &memScanRepo{products: products, nextID: 1}
	products.scans = s
	return s
}

func (m *memScanRepo) dropProduct(productID uuid.UUID) {
	kept := m.events[:0]
	for _, ev := range m.events {
		if ev.ProductID != productID {
			kept = append(kept, ev)
		}
	}
	m.events = kept
}

func (m *memScanRepo) Append(_ context.Context, storeID, productID uuid.UUID) (*models.ScanEvent, error) {
	ev := models.ScanEvent{
		ID:        m.nextID,
		StoreID:   storeID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.events = append(m.events, ev)
	return &ev, nil
}

func (m *memScanRepo) TotalByStore(_ context.Context, storeID uuid.UUID) (int64, error) {
	var total int64
	for _, ev := range m.events {
		if ev.StoreID == storeID {
			total++
		}
	}
	return total, nil
}

func (m *memScanRepo) DailyCounts(_ context.Context, storeID uuid.UUID, since time.Time) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, ev := range m.events {
		if ev.StoreID == storeID && !ev.CreatedAt.Before(since) {
			counts[ev.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}
	return counts, nil
}

func (m *memScanRepo) TopProducts(_ context.Context, storeID uuid.UUID, limit int) ([]repository.ProductScanCount, error) {
	byProduct := map[uuid.UUID]int64{}
	for _, ev := range m.events {
		if ev.StoreID == storeID {
			byProduct[ev.ProductID]++
		}
	}
	top := make([]repository.ProductScanCount, 0)
	for id, count := range byProduct {
		p := m.products.products[id]
		if p == nil {
			continue
		}
		top = append(top, repository.ProductScanCount{
			ProductID: id,
			Name:      p.Name,
			Barcode:   p.Barcode,
			Count:     count,
		})
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (m *memScanRepo) Recent(_ context.Context, storeID uuid.UUID, limit int) ([]repository.RecentScan, error) {
	recent := make([]repository.RecentScan, 0)
	for i := len(m.events) - 1; i >= 0 && len(recent) < limit; i-- {
		ev := m.events[i]
		if ev.StoreID != storeID {
			continue
		}
		p := m.products.products[ev.ProductID]
		if p == nil {
			continue
		}
		recent = append(recent, repository.RecentScan{
			ProductID: ev.ProductID,
			Name:      p.Name,
			Barcode:   p.Barcode,
			ScannedAt: ev.CreatedAt,
		})
	}
	return recent, nil
}

// memBrandingCache records what the handlers cache and invalidate, so tests
// can assert stale entries get dropped.
type memBrandingCache struct {
	entries     map[string]models.Branding
	invalidated []string
}

func newMemBrandingCache() *memBrandingCache {
	return &memBrandingCache{entries: map[string]models.Branding{}}
}

func (m *memBrandingCache) Get(_ context.Context, slug string) (*models.Branding, bool) {
	b, ok := m.entries[slug]
	if !ok {
		return nil, false
	}
	return &b, true
}

func (m *memBrandingCache) Set(_ context.Context, slug string, b models.Branding) {
	m.entries[slug] = b
}

func (m *memBrandingCache) Invalidate(_ context.Context, slug string) {
	delete(m.entries, slug)
	m.invalidated = append(m.invalidated, slug)
}

var (
	_ repository.UserRepository    = (*memUserRepo)(nil)
	_ repository.StoreRepository   = (*memStoreRepo)(nil)
	_ repository.ProductRepository = (*memProductRepo)(nil)
	_ repository.ScanRepository    = (*memScanRepo)(nil)
	_ BrandingCache                = (*memBrandingCache)(nil)
)
