package recommend

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"menu-recommender/internal/models"
)

// Energy per gram in kcal.
const (
	ProteinKcalPerGram = 4.0
	CarbsKcalPerGram   = 4.0
	FatKcalPerGram     = 9.0
)

// RatioTolerance is how far a ratio triple may drift from 1.
const RatioTolerance = 1e-6

// Ratios is a macro distribution; components sum to 1.
type Ratios struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// DefaultRatios is 25% protein, 50% carbs, 25% fat.
var DefaultRatios = Ratios{Protein: 0.25, Carbs: 0.5, Fat: 0.25}

func (r Ratios) slice() []float64 {
	return []float64{r.Protein, r.Carbs, r.Fat}
}

// Validate checks the triple is non-negative and sums to 1.
func (r Ratios) Validate() error {
	for _, v := range r.slice() {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: negative ratio in %+v", ErrInvalidTargetProfile, r)
		}
	}
	sum := r.Protein + r.Carbs + r.Fat
	if math.Abs(sum-1) > RatioTolerance {
		return fmt.Errorf("%w: ratios sum to %.6f, want 1", ErrInvalidTargetProfile, sum)
	}
	return nil
}

// ParseRatios reads "protein,carbs,fat", e.g. "0.3,0.4,0.3".
func ParseRatios(s string) (Ratios, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Ratios{}, fmt.Errorf("%w: expected protein,carbs,fat, got %q", ErrInvalidTargetProfile, s)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Ratios{}, fmt.Errorf("%w: %q is not a number", ErrInvalidTargetProfile, p)
		}
		vals[i] = v
	}
	r := Ratios{Protein: vals[0], Carbs: vals[1], Fat: vals[2]}
	if err := r.Validate(); err != nil {
		return Ratios{}, err
	}
	return r, nil
}

// Mode selects how candidates are compared with the target.
type Mode int

const (
	// RatioMode compares the normalized macro distribution with Ratios.
	RatioMode Mode = iota
	// AbsoluteMode compares grams directly.
	AbsoluteMode
)

func (m Mode) String() string {
	switch m {
	case RatioMode:
		return "ratio"
	case AbsoluteMode:
		return "absolute"
	}
	return "unknown"
}

// TargetProfile is what a recommendation moves the consumer toward. Build it
// with NewRatioTarget, NewCalorieTarget or NewAbsoluteTarget.
type TargetProfile struct {
	mode   Mode
	ratios Ratios
	grams  models.MacroVector
}

func NewRatioTarget(r Ratios) (TargetProfile, error) {
	if err := r.Validate(); err != nil {
		return TargetProfile{}, err
	}
	return TargetProfile{mode: RatioMode, ratios: r}, nil
}

// NewCalorieTarget converts a daily calorie target into grams per macro.
func NewCalorieTarget(calories float64, r Ratios) (TargetProfile, error) {
	if calories < 0 || math.IsNaN(calories) {
		return TargetProfile{}, fmt.Errorf("%w: negative calorie target %.1f", ErrInvalidTargetProfile, calories)
	}
	if err := r.Validate(); err != nil {
		return TargetProfile{}, err
	}
	return TargetProfile{
		mode:   AbsoluteMode,
		ratios: r,
		grams: models.MacroVector{
			Protein: calories * r.Protein / ProteinKcalPerGram,
			Carbs:   calories * r.Carbs / CarbsKcalPerGram,
			Fat:     calories * r.Fat / FatKcalPerGram,
		},
	}, nil
}

func NewAbsoluteTarget(grams models.MacroVector) TargetProfile {
	return TargetProfile{mode: AbsoluteMode, grams: grams}
}

func (t TargetProfile) Mode() Mode { return t.mode }

// Ratios is the distribution the target was built from. Zero for targets
// built with NewAbsoluteTarget.
func (t TargetProfile) Ratios() Ratios { return t.ratios }

// Grams is the absolute target; zero in ratio mode.
func (t TargetProfile) Grams() models.MacroVector { return t.grams }

// reference is the vector candidates are scored against.
func (t TargetProfile) reference() []float64 {
	if t.mode == RatioMode {
		return t.ratios.slice()
	}
	return t.grams.Slice()
}
