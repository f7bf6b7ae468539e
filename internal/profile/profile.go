package profile

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
)

var (
	ErrProfileIncomplete = errors.New("profile incomplete")
	ErrInvalidOption     = errors.New("invalid profile option")
)

type Gender string

const (
	Male      Gender = "male"
	Female    Gender = "female"
	NonBinary Gender = "non-binary"
)

var (
	Genders   = []string{"Male", "Female", "Neutral"}
	AgeRanges = []string{"Child", "Teen", "Adult", "Senior"}
	BodyTypes = []string{"Slim", "Regular", "Plus", "Athletic"}
	SkinTones = []string{"Fair", "Medium", "Olive", "Dark"}
)

// fold builds a fresh Caser per call; Casers are stateful.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

var genderByFolded = map[string]Gender{
	"male":       Male,
	"female":     Female,
	"neutral":    NonBinary,
	"non-binary": NonBinary,
}

// Measurements are body measurements in inches.
type Measurements struct {
	Shoulder float64 `json:"shoulder"`
	Waist    float64 `json:"waist"`
	Hip      float64 `json:"hip"`
}

// MockMeasurements stands in for a real body scan.
func MockMeasurements() Measurements {
	return Measurements{Shoulder: 42.5, Waist: 30, Hip: 36}
}

type Profile struct {
	Gender       Gender        `json:"gender,omitempty"`
	AgeRange     string        `json:"ageRange,omitempty"`
	BodyType     string        `json:"bodyType,omitempty"`
	SkinTone     string        `json:"skinTone,omitempty"`
	Measurements *Measurements `json:"measurements,omitempty"`
}

// Input is the profile step form. All four fields are required.
type Input struct {
	Gender   string `json:"gender"`
	AgeRange string `json:"ageRange"`
	BodyType string `json:"bodyType"`
	SkinTone string `json:"skinTone"`
}

// Validate checks the form and returns the normalized profile.
func (in Input) Validate() (Profile, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"gender", in.Gender},
		{"ageRange", in.AgeRange},
		{"bodyType", in.BodyType},
		{"skinTone", in.SkinTone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Profile{}, fmt.Errorf("%w: missing %s", ErrProfileIncomplete, strings.Join(missing, ", "))
	}

	g, err := ParseGender(in.Gender)
	if err != nil {
		return Profile{}, err
	}
	age, err := pick("ageRange", in.AgeRange, AgeRanges)
	if err != nil {
		return Profile{}, err
	}
	body, err := pick("bodyType", in.BodyType, BodyTypes)
	if err != nil {
		return Profile{}, err
	}
	skin, err := pick("skinTone", in.SkinTone, SkinTones)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Gender: g, AgeRange: age, BodyType: body, SkinTone: skin}, nil
}

// ParseGender accepts the kiosk labels case-insensitively.
func ParseGender(s string) (Gender, error) {
	g, ok := genderByFolded[fold(s)]
	if !ok {
		return "", fmt.Errorf("%w: gender %q", ErrInvalidOption, s)
	}
	return g, nil
}

func pick(field, value string, options []string) (string, error) {
	v := fold(value)
	for _, o := range options {
		if fold(o) == v {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q", ErrInvalidOption, field, value)
}

// CatalogGender picks the assortment to browse. Non-binary shoppers see only
// unisex products; an unset gender browses the male assortment.
func (p Profile) CatalogGender() catalog.Gender {
	switch p.Gender {
	case Female:
		return catalog.Female
	case NonBinary:
		return catalog.Unisex
	default:
		return catalog.Male
	}
}

func (p Profile) Avatar() string {
	switch p.Gender {
	case Female:
		return "👩"
	case Male:
		return "👨"
	default:
		return "🧑"
	}
}

// Complete reports whether the profile step has been passed.
func (p Profile) Complete() bool {
	return p.Gender != "" && p.AgeRange != "" && p.BodyType != "" && p.SkinTone != ""
}
