package commands

import (
	"time"

	"github.com/spf13/cobra"
)

// Run command (submit messages and todos)
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Post messages and create todos in one batch",
	Long: `Submit a batch of guestbook transactions and print a report.

Operations run strictly one after another with a pause between them. Transient
failures (timeouts, rate limits, nonce races) are retried; permanent ones
(reverts, insufficient funds) are recorded and the batch moves on.

The batch is built from generated content (-o, -m, -t), from a single custom
message (--name/--message) or todo (--title/--description), or from a plan
file (--file). Press Ctrl-C to stop; the report covers what was done.`,
	Example: `  # Post 10 messages
  guestctl run -o messages -m 10

  # Create 5 todos
  guestctl run -o todos -t 5

  # Post 3 messages and create 2 todos
  guestctl run -o both -m 3 -t 2

  # Single custom todo
  guestctl run --title "My Todo" --description "Do something important"

  # Slow down transactions (1 second delay)
  guestctl run -m 5 -d 1000

  # Submit through the daemon without waiting for the result
  guestctl --api=127.0.0.1:8088 run --file plan.yaml --wait=false`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetRunCommand returns the run command for handler assignment
func GetRunCommand() *cobra.Command {
	return runCmd
}

// SetupRunFlags configures flags for the run command
func SetupRunFlags(cmd *cobra.Command, operation *string, messages, todos, delayMs *int,
	name, message, title, description, todoFee *string, maxAttempts *int,
	retryInterval *time.Duration, file, batchName *string, wait *bool,
	defaultOperation string, defaultMessages, defaultTodos, defaultDelayMs int,
	defaultTodoFee string, defaultMaxAttempts int, defaultRetryInterval time.Duration) {
	cmd.Flags().StringVarP(operation, "operation", "o", defaultOperation,
		"Operation type: messages, todos or both")
	cmd.Flags().IntVarP(messages, "messages", "m", defaultMessages, "Number of messages to post")
	cmd.Flags().IntVarP(todos, "todos", "t", defaultTodos, "Number of todos to create")
	cmd.Flags().IntVarP(delayMs, "delay", "d", defaultDelayMs, "Delay between transactions in milliseconds")
	cmd.Flags().StringVar(name, "name", "", "Post a single custom message with this name")
	cmd.Flags().StringVar(message, "message", "", "Post a single custom message with this text")
	cmd.Flags().StringVar(title, "title", "", "Create a single custom todo with this title")
	cmd.Flags().StringVar(description, "description", "", "Create a single custom todo with this description")
	cmd.Flags().StringVar(todoFee, "todo-fee", defaultTodoFee, "Ether attached to each todo")
	cmd.Flags().IntVar(maxAttempts, "max-attempts", defaultMaxAttempts, "Attempts per operation")
	cmd.Flags().DurationVar(retryInterval, "retry-interval", defaultRetryInterval, "Pause between attempts")
	cmd.Flags().StringVarP(file, "file", "f", "", "Plan file (YAML, JSON or TOML)")
	cmd.Flags().StringVar(batchName, "batch-name", "", "Batch name recorded by guestbookd")
	cmd.Flags().BoolVar(wait, "wait", true, "With --api, wait for the batch to finish")
}
