package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"profitlens/internal/domain"
	"profitlens/internal/seed"
	"profitlens/internal/xid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrPersist      = errors.New("persist state")

	// errNoChange aborts an update without flushing or notifying.
	errNoChange = errors.New("no change")
)

// Backend persists the store as opaque values keyed by collection.
type Backend interface {
	Load(ctx context.Context) (map[string][]byte, error)
	Save(ctx context.Context, values map[string][]byte) error
	Close() error
}

type Options struct {
	Now      func() time.Time
	IDs      *xid.Generator
	Logger   *zap.Logger
	SeedRand *rand.Rand
}

// Snapshot is a copy of every persisted collection.
type Snapshot struct {
	Outlets          []domain.Outlet          `json:"outlets"`
	CurrentOutletID  string                   `json:"current_outlet_id"`
	User             domain.User              `json:"user"`
	Ingredients      []domain.Ingredient      `json:"ingredients"`
	MenuItems        []domain.MenuItem        `json:"menu_items"`
	SalesHistory     []domain.SalesRecord     `json:"sales_history"`
	OperationalCosts []domain.OperationalCost `json:"operational_costs"`
	WasteHistory     []domain.WasteRecord     `json:"waste_history"`
	Suppliers        []domain.Supplier        `json:"suppliers"`
	SupplierPrices   []domain.SupplierPrice   `json:"supplier_prices"`
	PendingOrders    []domain.PendingOrder    `json:"pending_orders"`
	ActiveCampaign   *domain.ActiveCampaign   `json:"active_campaign"`
}

// OutletView is one outlet's partition plus the shared collections, read
// under a single lock.
type OutletView struct {
	Outlet           domain.Outlet
	Ingredients      []domain.Ingredient
	AllIngredients   []domain.Ingredient
	MenuItems        []domain.MenuItem
	SalesHistory     []domain.SalesRecord
	AllSalesHistory  []domain.SalesRecord
	OperationalCosts []domain.OperationalCost
	WasteHistory     []domain.WasteRecord
	PendingOrders    []domain.PendingOrder
	Suppliers        []domain.Supplier
	SupplierPrices   []domain.SupplierPrice
	ActiveCampaign   *domain.ActiveCampaign
}

// Store owns all ProfitLens state. Every mutation rewrites the whole state to
// the backend before subscribers are notified.
type Store struct {
	mu      sync.RWMutex
	st      Snapshot
	backend Backend
	log     *zap.Logger
	now     func() time.Time
	ids     *xid.Generator

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// Open loads state from backend, falling back to the seed dataset, and
// writes it straight back.
func Open(ctx context.Context, backend Backend, opts Options) (*Store, error) {
	if backend == nil {
		return nil, errors.New("store backend is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IDs == nil {
		opts.IDs = xid.NewGenerator(opts.Now().UnixMilli())
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Store{
		backend: backend,
		log:     opts.Logger,
		now:     opts.Now,
		ids:     opts.IDs,
		subs:    make(map[int]func()),
	}

	values, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	st, err := decodeState(values, func() (Snapshot, error) {
		return seedState(opts.Now(), opts.SeedRand)
	})
	switch {
	case errors.Is(err, errIncomplete):
		s.log.Info("no saved state, loading seed dataset")
		st, err = seedState(opts.Now(), opts.SeedRand)
	case err != nil:
		s.log.Warn("saved state unreadable, loading seed dataset", zap.Error(err))
		st, err = seedState(opts.Now(), opts.SeedRand)
	}
	if err != nil {
		return nil, err
	}
	if !hasOutlet(st.Outlets, st.CurrentOutletID) {
		st.CurrentOutletID = ""
		if len(st.Outlets) > 0 {
			st.CurrentOutletID = st.Outlets[0].ID
		}
	}
	s.st = st

	s.mu.Lock()
	err = s.flushLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func seedState(now time.Time, rng *rand.Rand) (Snapshot, error) {
	ds, err := seed.Load(now, rng)
	if err != nil {
		return Snapshot{}, err
	}
	st := Snapshot{
		Outlets:          ds.Outlets,
		User:             ds.User,
		Ingredients:      ds.Ingredients,
		MenuItems:        ds.MenuItems,
		SalesHistory:     ds.SalesHistory,
		OperationalCosts: ds.OperationalCosts,
		Suppliers:        ds.Suppliers,
		SupplierPrices:   ds.SupplierPrices,
	}
	normalize(&st)
	return st, nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// Subscribe registers fn to run after every committed mutation. The returned
// func removes it.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// update runs fn under the write lock, then flushes and notifies. fn returning
// errNoChange skips both. A failed flush is reported as ErrPersist but the
// mutation stays applied in memory; it is not a rollback, and the next
// successful flush writes it out.
func (s *Store) update(ctx context.Context, fn func(st *Snapshot) error) error {
	s.mu.Lock()
	if err := fn(&s.st); err != nil {
		s.mu.Unlock()
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	err := s.flushLocked(ctx)
	s.mu.Unlock()

	s.notify()
	return err
}

func (s *Store) flushLocked(ctx context.Context) error {
	values, err := encodeState(s.st)
	if err != nil {
		s.log.Error("encode state failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.backend.Save(ctx, values); err != nil {
		s.log.Error("save state failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.st)
}

// MarshalSnapshot renders the persisted collections as JSON.
func (s *Store) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func (s *Store) CurrentOutletID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.CurrentOutletID
}

func (s *Store) Outlets() []domain.Outlet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.Outlets)
}

func (s *Store) Outlet(id string) (domain.Outlet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.st.Outlets {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Outlet{}, ErrNotFound
}

func (s *Store) User() domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.User
}

func (s *Store) Ingredients(outletID string) []domain.Ingredient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterOutlet(s.st.Ingredients, outletID, func(i domain.Ingredient) string { return i.OutletID }, cloneIngredient)
}

func (s *Store) Ingredient(id string) (domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ing := range s.st.Ingredients {
		if ing.ID == id {
			return cloneIngredient(ing), nil
		}
	}
	return domain.Ingredient{}, ErrNotFound
}

func (s *Store) MenuItems() []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEach(s.st.MenuItems, cloneMenuItem)
}

func (s *Store) MenuItem(id string) (domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.st.MenuItems {
		if item.ID == id {
			return cloneMenuItem(item), nil
		}
	}
	return domain.MenuItem{}, ErrNotFound
}

func (s *Store) SalesHistory(outletID string) []domain.SalesRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterOutlet(s.st.SalesHistory, outletID, func(r domain.SalesRecord) string { return r.OutletID }, identity[domain.SalesRecord])
}

func (s *Store) OperationalCosts(outletID string) []domain.OperationalCost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterOutlet(s.st.OperationalCosts, outletID, func(c domain.OperationalCost) string { return c.OutletID }, identity[domain.OperationalCost])
}

func (s *Store) WasteHistory(outletID string) []domain.WasteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterOutlet(s.st.WasteHistory, outletID, func(w domain.WasteRecord) string { return w.OutletID }, identity[domain.WasteRecord])
}

func (s *Store) Suppliers() []domain.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.Suppliers)
}

func (s *Store) SupplierPrices() []domain.SupplierPrice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.SupplierPrices)
}

func (s *Store) PendingOrders(outletID string) []domain.PendingOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterOutlet(s.st.PendingOrders, outletID, func(p domain.PendingOrder) string { return p.OutletID }, clonePendingOrder)
}

func (s *Store) ActiveCampaign() *domain.ActiveCampaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCampaign(s.st.ActiveCampaign)
}

// View returns the partition of outletID. An empty outletID selects the
// current outlet.
func (s *Store) View(outletID string) (OutletView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if outletID == "" {
		outletID = s.st.CurrentOutletID
	}
	var outlet domain.Outlet
	found := false
	for _, o := range s.st.Outlets {
		if o.ID == outletID {
			outlet, found = o, true
			break
		}
	}
	if !found {
		return OutletView{}, ErrNotFound
	}

	st := cloneSnapshot(s.st)
	return OutletView{
		Outlet:           outlet,
		Ingredients:      filterOutlet(st.Ingredients, outletID, func(i domain.Ingredient) string { return i.OutletID }, identity[domain.Ingredient]),
		AllIngredients:   st.Ingredients,
		MenuItems:        st.MenuItems,
		SalesHistory:     filterOutlet(st.SalesHistory, outletID, func(r domain.SalesRecord) string { return r.OutletID }, identity[domain.SalesRecord]),
		AllSalesHistory:  st.SalesHistory,
		OperationalCosts: filterOutlet(st.OperationalCosts, outletID, func(c domain.OperationalCost) string { return c.OutletID }, identity[domain.OperationalCost]),
		WasteHistory:     filterOutlet(st.WasteHistory, outletID, func(w domain.WasteRecord) string { return w.OutletID }, identity[domain.WasteRecord]),
		PendingOrders:    filterOutlet(st.PendingOrders, outletID, func(p domain.PendingOrder) string { return p.OutletID }, identity[domain.PendingOrder]),
		Suppliers:        st.Suppliers,
		SupplierPrices:   st.SupplierPrices,
		ActiveCampaign:   st.ActiveCampaign,
	}, nil
}

func filterOutlet[T any](items []T, outletID string, outletOf func(T) string, clone func(T) T) []T {
	out := make([]T, 0)
	for _, item := range items {
		if outletOf(item) == outletID {
			out = append(out, clone(item))
		}
	}
	return out
}

func hasOutlet(outlets []domain.Outlet, id string) bool {
	for _, o := range outlets {
		if o.ID == id {
			return true
		}
	}
	return false
}
