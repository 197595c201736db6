package optimizer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidParams is returned when run parameters fail validation.
var ErrInvalidParams = errors.New("invalid optimizer parameters")

// Penalties are the soft-constraint weights applied by the evaluator.
type Penalties struct {
	// NightStartHour and NightEndHour bound the [start,end) window in which
	// every active hour adds NightPenalty to discomfort.
	NightStartHour int     `json:"night_start_hour" validate:"gte=0,lte=24"`
	NightEndHour   int     `json:"night_end_hour" validate:"gte=0,lte=24,gtefield=NightStartHour"`
	NightPenalty   float64 `json:"night_penalty" validate:"gte=0"`
	// CapacityKW is the hourly load above which the overload penalty applies.
	CapacityKW         float64 `json:"capacity_kw" validate:"gt=0"`
	OverloadCost       float64 `json:"overload_cost" validate:"gte=0"`
	OverloadDiscomfort float64 `json:"overload_discomfort" validate:"gte=0"`
	// SequencingPenalty applies when the dryer starts before the washer ends.
	SequencingPenalty float64 `json:"sequencing_penalty" validate:"gte=0"`
}

// DefaultPenalties returns the reference household constraints.
func DefaultPenalties() Penalties {
	return Penalties{
		NightStartHour:     0,
		NightEndHour:       6,
		NightPenalty:       0.5,
		CapacityKW:         9.0,
		OverloadCost:       10000,
		OverloadDiscomfort: 1000,
		SequencingPenalty:  50,
	}
}

// Params configures one optimization run. A Params value is copied into the
// engine and never shared between runs.
type Params struct {
	PopulationSize int     `json:"population_size" validate:"gt=0"`
	Generations    int     `json:"generations" validate:"gte=0"`
	CrossoverRate  float64 `json:"crossover_rate" validate:"gte=0,lte=1"`
	MutationRate   float64 `json:"mutation_rate" validate:"gte=0,lte=1"`
	// Seed makes a run reproducible when set.
	Seed      *int64    `json:"seed,omitempty"`
	Penalties Penalties `json:"penalties"`
}

// DefaultParams returns population 50, 100 generations, crossover 0.9 and
// mutation 0.05 with the default penalties.
func DefaultParams() Params {
	return Params{
		PopulationSize: 50,
		Generations:    100,
		CrossoverRate:  0.9,
		MutationRate:   0.05,
		Penalties:      DefaultPenalties(),
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func paramsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate rejects parameters that cannot drive a run.
func (p Params) Validate() error {
	if err := paramsValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %s=%s (got %v)", ErrInvalidParams, fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
