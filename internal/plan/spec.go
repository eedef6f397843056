package plan

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/chain"
	"github.com/concave-dev/guestbook/internal/config"
	"github.com/concave-dev/guestbook/internal/validate"
)

// OperationSpec is the serialized form of an operation used by plan files
// and the daemon API. Amounts are decimal ether strings.
type OperationSpec struct {
	Kind        string `json:"kind" mapstructure:"kind" validate:"required,oneof=post_message create_todo send_payment"`
	Name        string `json:"name,omitempty" mapstructure:"name" validate:"required_if=Kind post_message"`
	Message     string `json:"message,omitempty" mapstructure:"message" validate:"required_if=Kind post_message"`
	Title       string `json:"title,omitempty" mapstructure:"title" validate:"required_if=Kind create_todo"`
	Description string `json:"description,omitempty" mapstructure:"description" validate:"required_if=Kind create_todo"`
	Recipient   string `json:"recipient,omitempty" mapstructure:"recipient" validate:"required_if=Kind send_payment"`
	Amount      string `json:"amount,omitempty" mapstructure:"amount" validate:"required_if=Kind send_payment"`
	Note        string `json:"note,omitempty" mapstructure:"note"`
	Value       string `json:"value,omitempty" mapstructure:"value"`
	GasLimit    uint64 `json:"gas_limit,omitempty" mapstructure:"gas_limit"`
}

// FromOperation converts an operation back to its serialized form.
func FromOperation(op batching.Operation) OperationSpec {
	spec := OperationSpec{Kind: string(op.Kind()), GasLimit: op.GasLimit}
	switch p := op.Payload.(type) {
	case batching.PostMessage:
		spec.Name, spec.Message = p.Name, p.Body
	case batching.CreateTodo:
		spec.Title, spec.Description = p.Title, p.Description
	case batching.SendPayment:
		spec.Recipient, spec.Note = p.Recipient, p.Note
		spec.Amount = chain.FormatEther(p.Amount)
		return spec
	}
	if op.Value != nil {
		spec.Value = chain.FormatEther(op.Value)
	}
	return spec
}

// Validate checks the spec's fields without converting it.
func (s OperationSpec) Validate() error {
	if err := validate.ValidateStruct(s); err != nil {
		return fmt.Errorf("%s", strings.Join(validate.FieldErrors(err), "; "))
	}
	if s.Recipient != "" {
		if err := validate.EthAddress(s.Recipient, "recipient"); err != nil {
			return err
		}
	}
	if s.Amount != "" {
		if err := validate.EtherAmount(s.Amount, "amount"); err != nil {
			return err
		}
	}
	if s.Value != "" {
		if err := validate.EtherAmount(s.Value, "value"); err != nil {
			return err
		}
	}
	return nil
}

// ToOperation converts the spec to an operation, applying the default gas
// limit for its kind when none is given.
func (s OperationSpec) ToOperation() (batching.Operation, error) {
	if err := s.Validate(); err != nil {
		return batching.Operation{}, err
	}

	value, err := parseOptionalEther(s.Value)
	if err != nil {
		return batching.Operation{}, err
	}

	var op batching.Operation
	switch batching.Kind(s.Kind) {
	case batching.KindPostMessage:
		op = batching.NewPostMessage(s.Name, s.Message, gasOr(s.GasLimit, config.DefaultMessageGasLimit))
		op.Value = value
	case batching.KindCreateTodo:
		op = batching.NewCreateTodo(s.Title, s.Description, value, gasOr(s.GasLimit, config.DefaultTodoGasLimit))
	case batching.KindSendPayment:
		amount, err := chain.ParseEther(s.Amount)
		if err != nil {
			return batching.Operation{}, err
		}
		op = batching.NewSendPayment(s.Recipient, amount, s.Note, gasOr(s.GasLimit, config.DefaultPaymentGasLimit))
	}

	if err := op.Validate(); err != nil {
		return batching.Operation{}, err
	}
	return op, nil
}

// ValidateSpecs checks every spec and reports all problems at once.
func ValidateSpecs(specs []OperationSpec) error {
	var result *multierror.Error
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("operation %d: %w", i+1, err))
		}
	}
	return result.ErrorOrNil()
}

// ToOperations converts specs in order. All invalid specs are reported.
func ToOperations(specs []OperationSpec) ([]batching.Operation, error) {
	ops := make([]batching.Operation, 0, len(specs))
	var result *multierror.Error

	for i, s := range specs {
		op, err := s.ToOperation()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("operation %d: %w", i+1, err))
			continue
		}
		ops = append(ops, op)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return ops, nil
}

func parseOptionalEther(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	return chain.ParseEther(s)
}

func gasOr(limit, fallback uint64) uint64 {
	if limit == 0 {
		return fallback
	}
	return limit
}
