package stats

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/dedup"
)

const DefaultTopItems = 5

type TopItem struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Tries     int64  `json:"tries"`
}

// Overview is the admin dashboard for one day.
type Overview struct {
	Day            string    `json:"day"`
	DailyUsers     int64     `json:"dailyUsers"`
	ItemsTried     int64     `json:"itemsTried"`
	Checkouts      int64     `json:"checkouts"`
	CartConversion float64   `json:"cartConversion"`
	Revenue        int64     `json:"revenue"`
	TopItems       []TopItem `json:"topItems"`
}

// Writer records kiosk activity for a day.
type Writer interface {
	SessionStarted(ctx context.Context, day time.Time) error
	ItemTried(ctx context.Context, day time.Time, productID int, name string) error
	Checkout(ctx context.Context, day time.Time, amount int) error
}

// Store reads overviews and applies writes atomically together with a
// consumer checkpoint.
type Store interface {
	Overview(ctx context.Context, day time.Time, topN int) (Overview, error)
	Atomically(ctx context.Context, fn func(ctx context.Context, w Writer, cp dedup.Checkpointer) error) error
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// conversion is checkouts per session as a percentage with one decimal.
func conversion(checkouts, sessions int64) float64 {
	if sessions == 0 {
		return 0
	}
	return math.Round(float64(checkouts)*1000/float64(sessions)) / 10
}

type daily struct {
	sessions, itemsTried, checkouts, revenue int64
	items                                    map[int]*TopItem
}

// Memory keeps stats in process memory.
type Memory struct {
	unit sync.Mutex

	mu   sync.Mutex
	days map[time.Time]*daily
	cp   *dedup.Memory
}

func NewMemory() *Memory {
	return &Memory{days: make(map[time.Time]*daily), cp: dedup.NewMemory()}
}

func (m *Memory) Atomically(ctx context.Context, fn func(ctx context.Context, w Writer, cp dedup.Checkpointer) error) error {
	m.unit.Lock()
	defer m.unit.Unlock()
	return fn(ctx, memoryWriter{m}, m.cp)
}

func (m *Memory) day(t time.Time) *daily {
	k := Day(t)
	d, ok := m.days[k]
	if !ok {
		d = &daily{items: make(map[int]*TopItem)}
		m.days[k] = d
	}
	return d
}

type memoryWriter struct{ m *Memory }

func (w memoryWriter) SessionStarted(_ context.Context, day time.Time) error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.day(day).sessions++
	return nil
}

func (w memoryWriter) ItemTried(_ context.Context, day time.Time, productID int, name string) error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	d := w.m.day(day)
	d.itemsTried++
	it, ok := d.items[productID]
	if !ok {
		it = &TopItem{ProductID: productID, Name: name}
		d.items[productID] = it
	}
	it.Tries++
	return nil
}

func (w memoryWriter) Checkout(_ context.Context, day time.Time, amount int) error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	d := w.m.day(day)
	d.checkouts++
	d.revenue += int64(amount)
	return nil
}

func (m *Memory) Overview(_ context.Context, day time.Time, topN int) (Overview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := Day(day)
	o := Overview{Day: k.Format(time.DateOnly), TopItems: []TopItem{}}
	d, ok := m.days[k]
	if !ok {
		return o, nil
	}
	o.DailyUsers = d.sessions
	o.ItemsTried = d.itemsTried
	o.Checkouts = d.checkouts
	o.Revenue = d.revenue
	o.CartConversion = conversion(d.checkouts, d.sessions)

	for _, it := range d.items {
		o.TopItems = append(o.TopItems, *it)
	}
	sort.Slice(o.TopItems, func(i, j int) bool {
		a, b := o.TopItems[i], o.TopItems[j]
		if a.Tries != b.Tries {
			return a.Tries > b.Tries
		}
		return a.ProductID < b.ProductID
	})
	if topN > 0 && len(o.TopItems) > topN {
		o.TopItems = o.TopItems[:topN]
	}
	return o, nil
}
