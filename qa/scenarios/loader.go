// Package scenarios runs optimizer regression cases described in YAML files.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/core/optimizer"
	"github.com/kilianp07/homeopt/core/scenario"
)

type ParamsDef struct {
	Population   int     `yaml:"population"`
	Generations  int     `yaml:"generations"`
	Crossover    float64 `yaml:"crossover"`
	MutationRate float64 `yaml:"mutation"`
	Seed         int64   `yaml:"seed"`
}

// ToParams overlays the case values on the default parameters.
func (p ParamsDef) ToParams() optimizer.Params {
	out := optimizer.DefaultParams()
	if p.Population > 0 {
		out.PopulationSize = p.Population
	}
	if p.Generations > 0 {
		out.Generations = p.Generations
	}
	if p.Crossover > 0 {
		out.CrossoverRate = p.Crossover
	}
	if p.MutationRate > 0 {
		out.MutationRate = p.MutationRate
	}
	seed := p.Seed
	out.Seed = &seed
	return out
}

type Expected struct {
	MaxBestCost       *float64 `yaml:"max_best_cost,omitempty"`
	MaxBestDiscomfort *float64 `yaml:"max_best_discomfort,omitempty"`
	MinFrontSize      int      `yaml:"min_front_size"`
	// FrontContains lists genomes that must be on the final front.
	FrontContains [][]int `yaml:"front_contains,omitempty"`
}

type Case struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Household is the scenario under test. No appliances means the
	// reference household.
	Household scenario.File `yaml:"household"`
	Params    ParamsDef     `yaml:"params"`
	Expected  Expected      `yaml:"expected"`
}

// Scenario builds the model scenario of the case.
func (c *Case) Scenario() (*model.Scenario, error) {
	if len(c.Household.Appliances) == 0 {
		return scenario.Default(), nil
	}
	return c.Household.Scenario()
}

func Load(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Name == "" {
		return nil, fmt.Errorf("%s: name is required", path)
	}
	return &c, nil
}
