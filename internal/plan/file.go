package plan

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/config"
)

// Group is an ordered run of operations inside a plan. Groups execute one
// after another.
type Group struct {
	Name       string          `json:"name,omitempty" mapstructure:"name"`
	Operations []OperationSpec `json:"operations" mapstructure:"operations"`
}

// Plan is a batch described in a YAML, JSON or TOML file.
//
// Example:
//
//	name: launch-day
//	pacing: 250ms
//	max_attempts: 3
//	retry_interval: 1s
//	groups:
//	  - name: greetings
//	    operations:
//	      - kind: post_message
//	        name: Alice
//	        message: gm
//	  - operations:
//	      - kind: create_todo
//	        title: Ship it
//	        description: Deploy to mainnet
//	        value: "0.00001"
type Plan struct {
	Name          string        `json:"name" mapstructure:"name"`
	Pacing        time.Duration `json:"pacing" mapstructure:"pacing"`
	MaxAttempts   int           `json:"max_attempts" mapstructure:"max_attempts"`
	RetryInterval time.Duration `json:"retry_interval" mapstructure:"retry_interval"`
	Groups        []Group       `json:"groups" mapstructure:"groups"`
}

// Load reads a plan file. The format follows the file extension. Missing
// timing fields take the engine defaults.
func Load(path string) (*Plan, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("pacing", config.DefaultPacingDelay)
	v.SetDefault("max_attempts", config.DefaultMaxAttempts)
	v.SetDefault("retry_interval", config.DefaultRetryInterval)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read plan %s: %w", path, err)
	}

	var p Plan
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("failed to decode plan %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return &p, nil
}

// Validate checks timing fields and every operation, reporting all problems.
func (p *Plan) Validate() error {
	var result *multierror.Error

	if err := p.EngineConfig().Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	count := 0
	for gi, g := range p.Groups {
		for oi, s := range g.Operations {
			count++
			if err := s.Validate(); err != nil {
				result = multierror.Append(result, fmt.Errorf("group %d operation %d: %w", gi+1, oi+1, err))
			}
		}
	}
	if count == 0 {
		result = multierror.Append(result, fmt.Errorf("plan contains no operations"))
	}

	return result.ErrorOrNil()
}

// EngineConfig returns the plan's retry and pacing policy.
func (p *Plan) EngineConfig() *batching.Config {
	return &batching.Config{
		PacingDelay:   p.Pacing,
		MaxAttempts:   p.MaxAttempts,
		RetryInterval: p.RetryInterval,
	}
}

// OperationGroups converts every group to operations.
func (p *Plan) OperationGroups() ([][]batching.Operation, error) {
	groups := make([][]batching.Operation, 0, len(p.Groups))
	for i, g := range p.Groups {
		ops, err := ToOperations(g.Operations)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i+1, err)
		}
		groups = append(groups, ops)
	}
	return groups, nil
}

// Size returns the number of operations across groups.
func (p *Plan) Size() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Operations)
	}
	return n
}
