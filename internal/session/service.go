package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/outfit"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/profile"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/scan"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/schedule"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidStep     = errors.New("invalid trial step")
	ErrInvalidStage    = errors.New("invalid stage")
)

const (
	DefaultRedirectDelay = 5 * time.Second

	// background work (scan completion, auto-reset) gets its own deadline
	backgroundTimeout = 5 * time.Second
)

type Options struct {
	Catalog       *catalog.Catalog
	Store         Store
	Notifier      Notifier
	Logger        *log.Logger
	Scan          scan.Config
	RedirectDelay time.Duration

	Now         func() time.Time
	NewID       func() string
	OrderNumber func() int
}

// Service applies kiosk operations to stored sessions. Each operation is a
// load, mutate, save cycle serialized per session id.
type Service struct {
	catalog       *catalog.Catalog
	engine        *outfit.Engine
	store         Store
	notifier      Notifier
	logger        *log.Logger
	scanCfg       scan.Config
	redirectDelay time.Duration
	now           func() time.Time
	newID         func() string
	orderNumber   func() int

	locks  *keyedMutex
	timers *schedule.Scheduler

	scansMu sync.Mutex
	scans   map[string]*scan.Machine
}

func NewService(opts Options) *Service {
	s := &Service{
		catalog:       opts.Catalog,
		store:         opts.Store,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
		scanCfg:       opts.Scan,
		redirectDelay: opts.RedirectDelay,
		now:           opts.Now,
		newID:         opts.NewID,
		orderNumber:   opts.OrderNumber,
		locks:         newKeyedMutex(),
		timers:        schedule.New(),
		scans:         make(map[string]*scan.Machine),
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.store == nil {
		s.store = NewMemoryStore(30 * time.Minute)
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	if s.scanCfg == (scan.Config{}) {
		s.scanCfg = scan.DefaultConfig()
	}
	if s.redirectDelay <= 0 {
		s.redirectDelay = DefaultRedirectDelay
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.orderNumber == nil {
		s.orderNumber = func() int { return rand.Intn(10000) }
	}
	s.engine = outfit.NewEngine(s.catalog)
	return s
}

// update loads the session, applies fn and saves the result under the
// session lock. Nothing is saved when fn fails.
func (s *Service) update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.overlayScan(sess)
	return sess, nil
}

// Start opens a new session at the profile step.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	now := s.now().UTC()
	sess := &Session{
		ID:          s.newID(),
		Version:     SnapshotVersion,
		Stage:       StageProfile,
		AddedToCart: []int{},
		StartedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Printf("session %s started", sess.ID)

	if err := s.notifier.SessionStarted(ctx, sess); err != nil {
		s.logger.Printf("notify session started %s: %v", sess.ID, err)
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.overlayScan(sess)
	return sess, nil
}

// overlayScan copies live scan progress into sess. Progress is not persisted
// on every tick.
func (s *Service) overlayScan(sess *Session) {
	s.scansMu.Lock()
	m := s.scans[sess.ID]
	s.scansMu.Unlock()

	if m == nil || sess.TrialStep != StepScanning {
		return
	}
	st := m.Status()
	sess.IsScanning = st.Phase == scan.Scanning
	sess.ScanProgress = st.Progress
}

// UpdateProfile passes the profile gate. Measurements from an earlier scan
// are kept.
func (s *Service) UpdateProfile(ctx context.Context, id string, in profile.Input) (*Session, error) {
	p, err := in.Validate()
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(sess *Session) error {
		p.Measurements = sess.Profile.Measurements
		sess.Profile = p
		s.leave(sess)
		sess.Stage = StageSelection
		return nil
	})
}

func (s *Service) ToggleAccessibility(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		sess.AccessibilityMode = !sess.AccessibilityMode
		return nil
	})
}

// SetStage records kiosk navigation. Leaving a page drops its pending
// auto-reset and any running scan.
func (s *Service) SetStage(ctx context.Context, id string, stage Stage) (*Session, error) {
	if !navigable[stage] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}
	return s.update(ctx, id, func(sess *Session) error {
		s.leave(sess)
		sess.Stage = stage
		if stage == StageTrial {
			s.enterTrial(sess)
		}
		return nil
	})
}

// leave cancels timers bound to the current page. A scan in progress falls
// back to the ready step.
func (s *Service) leave(sess *Session) {
	if s.timers.Cancel(sess.ID) {
		s.logger.Printf("session %s: auto-reset cancelled", sess.ID)
	}
	if s.cancelScan(sess.ID) || sess.TrialStep == StepScanning {
		sess.TrialStep = StepReady
		sess.IsScanning = false
		sess.ScanProgress = 0
	}
}

// enterTrial makes sure the trial page has something to show.
func (s *Service) enterTrial(sess *Session) {
	if sess.TrialStep == "" {
		sess.TrialStep = StepConsent
	}
	if !sess.Outfit.Empty() {
		return
	}
	if item, ok := s.initialItem(sess); ok {
		sess.State = outfit.State{}.Try(item)
	}
}

// initialItem is the selected product when there is one, otherwise the first
// dress for the female assortment or the first top for the others. An
// assortment without tops starts on its first product.
func (s *Service) initialItem(sess *Session) (catalog.Product, bool) {
	if sess.SelectedProduct != nil {
		if p, ok := s.catalog.ByName(sess.SelectedProduct.Name); ok {
			return p, true
		}
	}
	g := sess.Profile.CatalogGender()
	if g == catalog.Female {
		if p, ok := s.catalog.FirstOfType(g, catalog.Dress); ok {
			return p, true
		}
	}
	if p, ok := s.catalog.FirstOfType(g, catalog.Top); ok {
		return p, true
	}
	pool := s.catalog.ForGender(g)
	if len(pool) == 0 {
		return catalog.Product{}, false
	}
	return pool[0], true
}

func (s *Service) Products(ctx context.Context, id string) ([]catalog.Product, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.catalog.ForGender(sess.Profile.CatalogGender()), nil
}

func (s *Service) product(id int) (catalog.Product, error) {
	p, ok := s.catalog.ByID(id)
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return p, nil
}

// SelectProduct hands the chosen product over to the trial page.
func (s *Service) SelectProduct(ctx context.Context, id string, productID int) (*Session, error) {
	p, err := s.product(productID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(sess *Session) error {
		s.leave(sess)
		sess.SelectedProduct = &p
		sess.Stage = StageTrial
		sess.TrialStep = StepConsent
		sess.State = outfit.State{}
		s.enterTrial(sess)
		return nil
	})
}

func (s *Service) Consent(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if err := requireStep(sess, StepConsent); err != nil {
			return err
		}
		sess.TrialStep = StepReady
		return nil
	})
}

func requireStep(sess *Session, want TrialStep) error {
	if sess.Stage != StageTrial || sess.TrialStep != want {
		return fmt.Errorf("%w: at %s/%s, want %s", ErrInvalidStep, sess.Stage, sess.TrialStep, want)
	}
	return nil
}

// StartScan begins the simulated body scan. Completion is applied in the
// background once the scan settles.
func (s *Service) StartScan(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if err := requireStep(sess, StepReady); err != nil {
			return err
		}

		var m *scan.Machine
		m = scan.NewMachine(s.scanCfg, func() { s.finishScan(id, m) })

		s.cancelScan(id)
		s.scansMu.Lock()
		s.scans[id] = m
		s.scansMu.Unlock()

		if err := m.Start(); err != nil {
			return err
		}
		sess.TrialStep = StepScanning
		sess.IsScanning = true
		sess.ScanProgress = 0
		return nil
	})
}

func (s *Service) cancelScan(id string) bool {
	s.scansMu.Lock()
	m := s.scans[id]
	delete(s.scans, id)
	s.scansMu.Unlock()

	if m == nil {
		return false
	}
	return m.Cancel()
}

// finishScan runs on the scan goroutine. A machine that was cancelled or
// replaced in the meantime is ignored.
func (s *Service) finishScan(id string, m *scan.Machine) {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.scansMu.Lock()
	current := s.scans[id] == m
	if current {
		delete(s.scans, id)
	}
	s.scansMu.Unlock()
	if !current {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
	defer cancel()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.Printf("finish scan %s: %v", id, err)
		return
	}
	if sess.TrialStep != StepScanning {
		return
	}

	measured := profile.MockMeasurements()
	sess.Profile.Measurements = &measured
	sess.IsScanning = false
	sess.ScanProgress = 100
	sess.TrialStep = StepTrial
	sess.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Printf("finish scan %s: save: %v", id, err)
		return
	}
	s.logger.Printf("session %s: scan complete", id)
}

// TryItem puts a product on the avatar and focuses it.
func (s *Service) TryItem(ctx context.Context, id string, productID int) (*Session, error) {
	p, err := s.product(productID)
	if err != nil {
		return nil, err
	}
	sess, err := s.update(ctx, id, func(sess *Session) error {
		if err := requireStep(sess, StepTrial); err != nil {
			return err
		}
		sess.State = sess.State.Try(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.ItemTried(ctx, sess, p); err != nil {
		s.logger.Printf("notify item tried %s/%d: %v", id, p.ID, err)
	}
	return sess, nil
}

// Trial builds the trial page view, including matching suggestions for the
// focused item.
func (s *Service) Trial(ctx context.Context, id string) (TrialView, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return TrialView{}, err
	}

	v := TrialView{
		Step:         sess.TrialStep,
		ScanProgress: sess.ScanProgress,
		Avatar:       sess.Profile.Avatar(),
		Measurements: sess.Profile.Measurements,
		Outfit:       sess.Outfit,
		Worn:         sess.Outfit.Items(),
		Focused:      sess.Focused,
		Suggestions:  []catalog.Product{},
	}
	if v.Worn == nil {
		v.Worn = []catalog.Product{}
	}
	if sess.Focused != nil {
		v.FocusedInCart = sess.InCart(sess.Focused.ID)
		if sg := s.engine.Suggest(sess.Outfit, *sess.Focused, sess.Profile.CatalogGender()); sg != nil {
			v.Suggestions = sg
		}
	}
	return v, nil
}

func (s *Service) AddToCart(ctx context.Context, id string, productID int) (*Session, error) {
	p, err := s.product(productID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(sess *Session) error {
		sess.Cart = sess.Cart.Add(p)
		sess.markAdded(p.ID)
		return nil
	})
}

// RemoveFromCart drops every cart entry with the product id.
func (s *Service) RemoveFromCart(ctx context.Context, id string, productID int) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		sess.Cart = sess.Cart.Remove(productID)
		sess.unmarkAdded(productID)
		return nil
	})
}

func (s *Service) Cart(ctx context.Context, id string) (CartView, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return CartView{}, err
	}
	items := []catalog.Product(sess.Cart)
	if items == nil {
		items = []catalog.Product{}
	}
	return CartView{Items: items, Count: sess.Cart.Len(), Total: sess.Cart.Total()}, nil
}

// Checkout places the simulated order for the current cart and schedules
// the return to the attract screen.
func (s *Service) Checkout(ctx context.Context, id string, in CheckoutInput) (*Session, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var order Order
	sess, err := s.update(ctx, id, func(sess *Session) error {
		if sess.Cart.Len() == 0 {
			return ErrEmptyCart
		}
		s.leave(sess)

		order = newOrder(s.orderNumber(), sess.Cart, in, s.now().UTC())
		sess.Order = &order
		sess.Stage = StageCheckout
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.timers.After(id, s.redirectDelay, func() { s.autoReset(id) })
	s.logger.Printf("session %s: order %s placed, %d items, total %d", id, order.ID, order.Items, order.TotalAmount)

	if err := s.notifier.CheckoutCompleted(ctx, sess, order); err != nil {
		s.logger.Printf("notify checkout %s/%s: %v", id, order.ID, err)
	}
	return sess, nil
}

// autoReset ends a session that is still on the checkout page.
func (s *Service) autoReset(id string) {
	unlock := s.locks.Lock(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
	defer cancel()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Printf("auto-reset %s: %v", id, err)
		}
		return
	}
	if sess.Stage != StageCheckout {
		return
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Printf("auto-reset %s: %v", id, err)
		return
	}
	s.logger.Printf("session %s: auto-reset after checkout", id)
}

// Reset ends the session and drops its pending work.
func (s *Service) Reset(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	s.timers.Cancel(id)
	s.cancelScan(id)

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Printf("session %s reset", id)
	return nil
}

// Close cancels every scan and pending auto-reset and waits for their
// goroutines to finish.
func (s *Service) Close() {
	s.timers.Stop()

	s.scansMu.Lock()
	machines := make([]*scan.Machine, 0, len(s.scans))
	for id, m := range s.scans {
		machines = append(machines, m)
		delete(s.scans, id)
	}
	s.scansMu.Unlock()

	for _, m := range machines {
		m.Cancel()
		<-m.Done()
	}
}
