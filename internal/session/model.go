package session

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/outfit"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/profile"
)

// SnapshotVersion is the layout version written with every saved session.
// Snapshots with a different major version are treated as ended sessions.
const SnapshotVersion = "1.0.0"

type Stage string

const (
	StageIdle      Stage = "idle"
	StageProfile   Stage = "profile"
	StageSelection Stage = "selection"
	StageTrial     Stage = "trial"
	StageCart      Stage = "cart"
	StageCheckout  Stage = "checkout"
)

// navigable lists the stages a kiosk may jump to directly.
var navigable = map[Stage]bool{
	StageProfile:   true,
	StageSelection: true,
	StageTrial:     true,
	StageCart:      true,
}

type TrialStep string

const (
	StepConsent  TrialStep = "consent"
	StepReady    TrialStep = "ready"
	StepScanning TrialStep = "scanning"
	StepTrial    TrialStep = "trial"
)

// Session is one kiosk visit. It is stored as a JSON snapshot.
type Session struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	Stage     Stage     `json:"stage"`
	TrialStep TrialStep `json:"trialStep,omitempty"`

	Profile         profile.Profile  `json:"profile"`
	SelectedProduct *catalog.Product `json:"selectedProduct,omitempty"`
	outfit.State

	Cart        cart.Cart `json:"cart"`
	AddedToCart []int     `json:"addedToCart"`

	AccessibilityMode bool `json:"accessibilityMode"`
	IsScanning        bool `json:"isScanning"`
	ScanProgress      int  `json:"scanProgress"`

	Order *Order `json:"order,omitempty"`

	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InCart reports whether the kiosk should show the product as already added.
func (s *Session) InCart(id int) bool {
	for _, added := range s.AddedToCart {
		if added == id {
			return true
		}
	}
	return s.Cart.Contains(id)
}

func (s *Session) markAdded(id int) {
	for _, added := range s.AddedToCart {
		if added == id {
			return
		}
	}
	s.AddedToCart = append(s.AddedToCart, id)
}

func (s *Session) unmarkAdded(id int) {
	out := s.AddedToCart[:0]
	for _, added := range s.AddedToCart {
		if added != id {
			out = append(out, added)
		}
	}
	s.AddedToCart = out
}

// TrialView is what the trial page renders.
type TrialView struct {
	Step          TrialStep             `json:"step"`
	ScanProgress  int                   `json:"scanProgress"`
	Avatar        string                `json:"avatar"`
	Measurements  *profile.Measurements `json:"measurements,omitempty"`
	Outfit        outfit.Outfit         `json:"outfit"`
	Worn          []catalog.Product     `json:"worn"`
	Focused       *catalog.Product      `json:"focused,omitempty"`
	FocusedInCart bool                  `json:"focusedInCart"`
	Suggestions   []catalog.Product     `json:"suggestions"`
}

type CartView struct {
	Items []catalog.Product `json:"items"`
	Count int               `json:"count"`
	Total int               `json:"total"`
}
