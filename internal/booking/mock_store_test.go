package booking

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ── in-memory store ──
//
// Every repository call is atomic under mu.  Writes made inside InTx record
// an undo step that runs if fn fails.  Lock and LockRow hold a per-table
// mutex until the transaction ends, a coarse stand-in for SELECT ... FOR UPDATE.

type mockStore struct {
	mu           sync.Mutex
	nextID       uint64
	locations    map[uint64]model.Location
	categories   map[uint64]model.TableCategory
	rows         map[uint64]*model.Availability
	closures     map[uint64]model.Closure
	reservations map[uint64]*model.Reservation
	recordLocks  map[string]*sync.Mutex

	// failSetCode makes SetBookingCode fail once, to exercise rollback.
	failSetCode error
	// mutations counts successful ledger writes.
	mutations int
	// conflictOnce makes the next InTx throw away its first attempt and run
	// fn again, the way Store.InTx retries a deadlock victim.
	// betweenAttempts runs after the discarded attempt.
	conflictOnce    bool
	betweenAttempts func()
}

func newMockStore() *mockStore {
	return &mockStore{
		nextID:       1,
		locations:    map[uint64]model.Location{},
		categories:   map[uint64]model.TableCategory{},
		rows:         map[uint64]*model.Availability{},
		closures:     map[uint64]model.Closure{},
		reservations: map[uint64]*model.Reservation{},
		recordLocks:  map[string]*sync.Mutex{},
	}
}

func (s *mockStore) id() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *mockStore) addLocation(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.locations[id] = model.Location{ID: id, Name: name, IsActive: true}
	return id
}

func (s *mockStore) addCategory(pax int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.categories[id] = model.TableCategory{ID: id, PaxSize: pax, IsActive: true}
	return id
}

func (s *mockStore) addRow(locationID uint64, date model.Date, slot string, categoryID uint64, total int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.rows[id] = &model.Availability{
		ID: id, LocationID: locationID, Date: date, TimeSlot: slot,
		TableCategoryID: categoryID, TotalTables: total, AvailableTables: total, IsActive: true,
	}
	return id
}

func (s *mockStore) row(id uint64) model.Availability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.rows[id]
}

func (s *mockStore) reservation(id uint64) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.reservations[id]
}

func (s *mockStore) ledgerMutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

func (s *mockStore) Repos() Repositories {
	return (&mockTx{s: s}).repos()
}

func (s *mockStore) InTx(ctx context.Context, fn func(r Repositories) error) error {
	s.mu.Lock()
	conflict, between := s.conflictOnce, s.betweenAttempts
	s.conflictOnce, s.betweenAttempts = false, nil
	s.mu.Unlock()
	if conflict {
		first := &mockTx{s: s, inTx: true}
		_ = fn(first.repos())
		first.rollback()
		first.unlock()
		if between != nil {
			between()
		}
	}

	t := &mockTx{s: s, inTx: true}
	defer t.unlock()
	if err := fn(t.repos()); err != nil {
		t.rollback()
		return err
	}
	return nil
}

type mockTx struct {
	s    *mockStore
	inTx bool
	undo []func()
	held []*sync.Mutex
}

func (t *mockTx) repos() Repositories {
	return Repositories{
		Locations:    mockLocations{t},
		Categories:   mockCategories{t},
		Ledger:       mockLedger{t},
		Closures:     mockClosures{t},
		Reservations: mockReservations{t},
	}
}

// record must be called with s.mu held.
func (t *mockTx) record(fn func()) {
	if t.inTx {
		t.undo = append(t.undo, fn)
	}
}

func (t *mockTx) rollback() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *mockTx) lock(key string) {
	if !t.inTx {
		return
	}
	t.s.mu.Lock()
	m, ok := t.s.recordLocks[key]
	if !ok {
		m = &sync.Mutex{}
		t.s.recordLocks[key] = m
	}
	t.s.mu.Unlock()
	m.Lock()
	t.held = append(t.held, m)
}

func (t *mockTx) unlock() {
	for _, m := range t.held {
		m.Unlock()
	}
	t.held = nil
}

// ── locations / categories ──

type mockLocations struct{ *mockTx }

func (m mockLocations) GetLocation(_ context.Context, id uint64) (*model.Location, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	l, ok := m.s.locations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

type mockCategories struct{ *mockTx }

func (m mockCategories) GetCategory(_ context.Context, id uint64) (*model.TableCategory, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m mockCategories) ActiveCategoriesForPax(_ context.Context, pax int) ([]model.TableCategory, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.TableCategory
	for _, c := range m.s.categories {
		if c.IsActive && c.PaxSize >= pax {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaxSize < out[j].PaxSize })
	return out, nil
}

// ── ledger ──

type mockLedger struct{ *mockTx }

func (m mockLedger) findLocked(key model.LedgerKey) *model.Availability {
	for _, r := range m.s.rows {
		k := r.Key()
		if k.LocationID == key.LocationID && k.Date.Equal(key.Date) &&
			k.TimeSlot == key.TimeSlot && k.TableCategoryID == key.TableCategoryID {
			return r
		}
	}
	return nil
}

func (m mockLedger) FindRow(_ context.Context, key model.LedgerKey) (*model.Availability, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r := m.findLocked(key)
	if r == nil {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m mockLedger) GetRow(_ context.Context, id uint64) (*model.Availability, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m mockLedger) LockRow(ctx context.Context, id uint64) (*model.Availability, error) {
	m.lock("row")
	return m.GetRow(ctx, id)
}

func (m mockLedger) TryDecrement(_ context.Context, id uint64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.rows[id]
	if !ok || !r.IsActive || r.AvailableTables <= 0 {
		return false, nil
	}
	r.AvailableTables--
	m.s.mutations++
	m.record(func() { r.AvailableTables++ })
	return true, nil
}

func (m mockLedger) Adjust(_ context.Context, id uint64, delta int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.rows[id]
	if !ok {
		return ErrNotFound
	}
	next := r.AvailableTables + delta
	if next < 0 || next > r.TotalTables {
		return ErrCapacityViolation
	}
	r.AvailableTables = next
	m.s.mutations++
	m.record(func() { r.AvailableTables -= delta })
	return nil
}

func (m mockLedger) Upsert(_ context.Context, row *model.Availability) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.mutations++
	if r := m.findLocked(row.Key()); r != nil {
		prev := *r
		r.TotalTables, r.AvailableTables, r.IsActive = row.TotalTables, row.AvailableTables, row.IsActive
		row.ID = r.ID
		m.record(func() { *r = prev })
		return nil
	}
	cp := *row
	cp.ID = m.s.id()
	row.ID = cp.ID
	m.s.rows[cp.ID] = &cp
	m.record(func() { delete(m.s.rows, cp.ID) })
	return nil
}

func (m mockLedger) SetCapacity(_ context.Context, id uint64, total, available int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.rows[id]
	if !ok {
		return ErrNotFound
	}
	prev := *r
	r.TotalTables, r.AvailableTables = total, available
	m.s.mutations++
	m.record(func() { *r = prev })
	return nil
}

func (m mockLedger) SetActive(_ context.Context, id uint64, active bool) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.rows[id]
	if !ok {
		return ErrNotFound
	}
	prev := r.IsActive
	r.IsActive = active
	m.record(func() { r.IsActive = prev })
	return nil
}

func (m mockLedger) Delete(_ context.Context, id uint64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.rows[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.s.rows, id)
	m.record(func() { m.s.rows[id] = r })
	return nil
}

func (m mockLedger) List(_ context.Context, f LedgerFilter) ([]model.Availability, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Availability
	for _, r := range m.s.rows {
		if f.LocationID != 0 && r.LocationID != f.LocationID {
			continue
		}
		if f.Date != nil && !r.Date.Equal(*f.Date) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m mockLedger) OpenRows(_ context.Context, locationID uint64, date model.Date, pax int) ([]model.OpenSlot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.OpenSlot
	for _, r := range m.s.rows {
		c := m.s.categories[r.TableCategoryID]
		if r.LocationID != locationID || !r.Date.Equal(date) || !r.IsActive || r.AvailableTables <= 0 {
			continue
		}
		if !c.IsActive || c.PaxSize < pax {
			continue
		}
		out = append(out, model.OpenSlot{
			TimeSlot: r.TimeSlot, TableCategoryID: c.ID, PaxSize: c.PaxSize,
			AvailabilityID: r.ID, AvailableTables: r.AvailableTables,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeSlot != out[j].TimeSlot {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return out[i].PaxSize < out[j].PaxSize
	})
	return out, nil
}

// ── closures ──

type mockClosures struct{ *mockTx }

func (m mockClosures) FindClosure(_ context.Context, locationID uint64, date model.Date) (*model.Closure, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.closures {
		if c.Covers(locationID, date) {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m mockClosures) ListClosures(_ context.Context) ([]model.Closure, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]model.Closure, 0, len(m.s.closures))
	for _, c := range m.s.closures {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m mockClosures) CreateClosure(_ context.Context, c *model.Closure) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c.ID = m.s.id()
	m.s.closures[c.ID] = *c
	return nil
}

func (m mockClosures) DeleteClosure(_ context.Context, id uint64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.closures, id)
	return nil
}

// ── reservations ──

type mockReservations struct{ *mockTx }

var errDuplicateCode = errors.New("duplicate booking code")

func (m mockReservations) codeTakenLocked(code string, except uint64) bool {
	for _, r := range m.s.reservations {
		if r.ID != except && r.BookingCode == code {
			return true
		}
	}
	return false
}

func (m mockReservations) Create(_ context.Context, r *model.Reservation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.codeTakenLocked(r.BookingCode, 0) {
		return errDuplicateCode
	}
	r.ID = m.s.id()
	cp := *r
	m.s.reservations[r.ID] = &cp
	m.record(func() { delete(m.s.reservations, cp.ID) })
	return nil
}

func (m mockReservations) SetBookingCode(_ context.Context, id uint64, code string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.failSetCode; err != nil {
		m.s.failSetCode = nil
		return err
	}
	r, ok := m.s.reservations[id]
	if !ok {
		return ErrNotFound
	}
	if m.codeTakenLocked(code, id) {
		return errDuplicateCode
	}
	prev := r.BookingCode
	r.BookingCode = code
	m.record(func() { r.BookingCode = prev })
	return nil
}

func (m mockReservations) Get(_ context.Context, id uint64) (*model.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m mockReservations) GetByCode(_ context.Context, code string) (*model.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range m.s.reservations {
		if r.BookingCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m mockReservations) Lock(ctx context.Context, id uint64) (*model.Reservation, error) {
	m.lock("reservation")
	return m.Get(ctx, id)
}

func (m mockReservations) LockByCode(ctx context.Context, code string) (*model.Reservation, error) {
	m.lock("reservation")
	return m.GetByCode(ctx, code)
}

func (m mockReservations) SaveState(_ context.Context, r *model.Reservation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cur, ok := m.s.reservations[r.ID]
	if !ok {
		return ErrNotFound
	}
	prev := *cur
	cur.Status = r.Status
	cur.PaymentStatus = r.PaymentStatus
	cur.PaymentReference = r.PaymentReference
	cur.AvailabilityID = r.AvailabilityID
	cur.NeedsReconciliation = r.NeedsReconciliation
	cur.UpdatedAt = r.UpdatedAt
	m.record(func() { *cur = prev })
	return nil
}

func (m mockReservations) CountLive(_ context.Context, availabilityID uint64) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for _, r := range m.s.reservations {
		if r.AvailabilityID != nil && *r.AvailabilityID == availabilityID && r.Live() {
			n++
		}
	}
	return n, nil
}

func (m mockReservations) Delete(_ context.Context, id uint64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.reservations[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.s.reservations, id)
	m.record(func() { m.s.reservations[id] = r })
	return nil
}

func (m mockReservations) List(_ context.Context, f ReservationFilter) ([]model.Reservation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.s.reservations {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.LocationID != 0 && r.LocationID != f.LocationID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ── notifier ──

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.StatusEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev model.StatusEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) snapshot() []model.StatusEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.StatusEvent(nil), n.events...)
}
