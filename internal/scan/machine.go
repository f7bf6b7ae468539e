package scan

import (
	"errors"
	"sync"
	"time"
)

var ErrAlreadyStarted = errors.New("scan already in progress")

type Phase string

const (
	Idle     Phase = "idle"
	Scanning Phase = "scanning"
	Done     Phase = "done"
)

type Status struct {
	Phase    Phase `json:"phase"`
	Progress int   `json:"progress"`
}

// Config drives the simulated scan: Progress grows by Step every Tick until it
// reaches 100, then the machine waits Settle before completing.
type Config struct {
	Tick   time.Duration
	Step   int
	Settle time.Duration
}

func DefaultConfig() Config {
	return Config{Tick: 50 * time.Millisecond, Step: 5, Settle: 500 * time.Millisecond}
}

// Machine runs one simulated scan at a time. Only one transition is ever
// scheduled; Cancel drops it.
type Machine struct {
	cfg    Config
	onDone func()

	mu       sync.Mutex
	phase    Phase
	progress int
	stop     chan struct{}
	done     chan struct{}
}

// NewMachine returns an idle machine. onDone runs on the scan goroutine once
// the scan completes and is never called for a cancelled scan.
func NewMachine(cfg Config, onDone func()) *Machine {
	if cfg.Step <= 0 {
		cfg.Step = DefaultConfig().Step
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultConfig().Tick
	}
	closed := make(chan struct{})
	close(closed)
	return &Machine{cfg: cfg, onDone: onDone, phase: Idle, done: closed}
}

func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == Scanning {
		return ErrAlreadyStarted
	}
	m.phase = Scanning
	m.progress = 0
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	go m.run(m.stop, m.done)
	return nil
}

// Cancel stops a running scan and returns the machine to idle. It reports
// whether a scan was running.
func (m *Machine) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != Scanning {
		return false
	}
	close(m.stop)
	m.phase = Idle
	m.progress = 0
	return true
}

func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{Phase: m.phase, Progress: m.progress}
}

// Done is closed when the goroutine of the latest scan has exited.
func (m *Machine) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

func (m *Machine) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.Tick)
	defer ticker.Stop()

	for full := false; !full; {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			if m.stop != stop {
				m.mu.Unlock()
				return
			}
			m.progress += m.cfg.Step
			if m.progress >= 100 {
				m.progress = 100
				full = true
			}
			m.mu.Unlock()
		}
	}
	ticker.Stop()

	settle := time.NewTimer(m.cfg.Settle)
	defer settle.Stop()

	select {
	case <-stop:
		return
	case <-settle.C:
	}

	m.mu.Lock()
	if m.stop != stop || m.phase != Scanning {
		m.mu.Unlock()
		return
	}
	m.phase = Done
	m.mu.Unlock()

	if m.onDone != nil {
		m.onDone()
	}
}
