package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concave-dev/guestbook/cmd/guestctl/config"
	"github.com/concave-dev/guestbook/cmd/guestctl/utils"
	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/chain"
	internalconfig "github.com/concave-dev/guestbook/internal/config"
	"github.com/concave-dev/guestbook/internal/plan"
)

// HandleRun handles the run command: build the batch from flags or a plan
// file, submit it and print the report.
func HandleRun(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	groups, cfg, name, err := BuildRun(cmd)
	if err != nil {
		return err
	}
	if countOperations(groups) == 0 {
		return fmt.Errorf("nothing to submit: message and todo counts are both zero")
	}

	return executeBatch(groups, cfg, name, config.Run.Wait)
}

// BuildRun resolves the run flags into operation groups, the engine policy
// and a batch name. A plan file supplies its own timing, which explicitly
// set flags override.
func BuildRun(cmd *cobra.Command) ([][]batching.Operation, *batching.Config, string, error) {
	cfg := &batching.Config{
		PacingDelay:   utils.Millis(config.Run.DelayMs),
		MaxAttempts:   config.Run.MaxAttempts,
		RetryInterval: config.Run.RetryInterval,
	}

	if config.Run.File != "" {
		p, err := plan.Load(config.Run.File)
		if err != nil {
			return nil, nil, "", err
		}
		groups, err := p.OperationGroups()
		if err != nil {
			return nil, nil, "", err
		}

		planCfg := p.EngineConfig()
		if cmd.Flags().Changed("delay") {
			planCfg.PacingDelay = cfg.PacingDelay
		}
		if cmd.Flags().Changed("max-attempts") {
			planCfg.MaxAttempts = cfg.MaxAttempts
		}
		if cmd.Flags().Changed("retry-interval") {
			planCfg.RetryInterval = cfg.RetryInterval
		}

		name := p.Name
		if config.Run.BatchName != "" {
			name = config.Run.BatchName
		}
		return groups, planCfg, name, nil
	}

	fee, err := chain.ParseEther(config.Run.TodoFee)
	if err != nil {
		return nil, nil, "", err
	}

	// Custom content replaces generated content
	if config.Run.Name != "" || config.Run.Title != "" {
		var groups [][]batching.Operation
		if config.Run.Name != "" {
			groups = append(groups, []batching.Operation{
				batching.NewPostMessage(config.Run.Name, config.Run.Message, internalconfig.DefaultMessageGasLimit),
			})
		}
		if config.Run.Title != "" {
			groups = append(groups, []batching.Operation{
				batching.NewCreateTodo(config.Run.Title, config.Run.Description, fee, internalconfig.DefaultTodoGasLimit),
			})
		}
		return groups, cfg, config.Run.BatchName, nil
	}

	groups, err := plan.Composite(config.Run.Operation, config.Run.Messages, config.Run.Todos, fee)
	if err != nil {
		return nil, nil, "", err
	}
	return groups, cfg, config.Run.BatchName, nil
}
