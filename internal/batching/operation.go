package batching

import (
	"fmt"
	"math/big"

	"github.com/concave-dev/guestbook/internal/validate"
)

// Kind names an operation variant. Values are stable and appear in reports,
// metrics labels and plan files.
type Kind string

const (
	KindPostMessage Kind = "post_message"
	KindCreateTodo  Kind = "create_todo"
	KindSendPayment Kind = "send_payment"
)

// Kinds lists every operation kind in display order.
var Kinds = []Kind{KindPostMessage, KindCreateTodo, KindSendPayment}

// Payload is the kind-specific part of an Operation. The set of payloads is
// closed; submitters dispatch on the concrete type.
type Payload interface {
	Kind() Kind
	Label() string
	check() error
}

// PostMessage writes a guestbook entry.
type PostMessage struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

func (PostMessage) Kind() Kind { return KindPostMessage }

// Label returns a short description for logs and report rows.
func (p PostMessage) Label() string { return p.Name }

func (p PostMessage) check() error {
	if err := validate.ValidateRequiredString(p.Name, "message name"); err != nil {
		return err
	}
	return validate.ValidateRequiredString(p.Body, "message body")
}

// CreateTodo creates a todo item on the guestbook contract. The contract
// charges a creation fee that travels as the operation's attached value.
type CreateTodo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (CreateTodo) Kind() Kind { return KindCreateTodo }

// Label returns a short description for logs and report rows.
func (c CreateTodo) Label() string { return c.Title }

func (c CreateTodo) check() error {
	if err := validate.ValidateRequiredString(c.Title, "todo title"); err != nil {
		return err
	}
	return validate.ValidateRequiredString(c.Description, "todo description")
}

// SendPayment transfers Amount wei to Recipient with a note attached.
type SendPayment struct {
	Recipient string   `json:"recipient"`
	Amount    *big.Int `json:"amount"`
	Note      string   `json:"note"`
}

func (SendPayment) Kind() Kind { return KindSendPayment }

// Label returns a short description for logs and report rows.
func (s SendPayment) Label() string { return s.Recipient }

func (s SendPayment) check() error {
	if err := validate.EthAddress(s.Recipient, "payment recipient"); err != nil {
		return err
	}
	if s.Amount == nil || s.Amount.Sign() <= 0 {
		return fmt.Errorf("payment amount must be positive")
	}
	return nil
}

// Operation is one logical request to mutate chain state. Operations are
// treated as immutable once handed to the engine.
type Operation struct {
	Payload  Payload
	Value    *big.Int // attached native currency in wei, nil for none
	GasLimit uint64
}

// NewPostMessage builds a message operation.
func NewPostMessage(name, body string, gasLimit uint64) Operation {
	return Operation{Payload: PostMessage{Name: name, Body: body}, GasLimit: gasLimit}
}

// NewCreateTodo builds a todo operation paying fee wei.
func NewCreateTodo(title, description string, fee *big.Int, gasLimit uint64) Operation {
	return Operation{
		Payload:  CreateTodo{Title: title, Description: description},
		Value:    fee,
		GasLimit: gasLimit,
	}
}

// NewSendPayment builds a payment operation. The payment amount is also the
// attached value.
func NewSendPayment(recipient string, amount *big.Int, note string, gasLimit uint64) Operation {
	return Operation{
		Payload:  SendPayment{Recipient: recipient, Amount: amount, Note: note},
		Value:    amount,
		GasLimit: gasLimit,
	}
}

// Kind returns the payload kind, or "" for an operation without payload.
func (o Operation) Kind() Kind {
	if o.Payload == nil {
		return ""
	}
	return o.Payload.Kind()
}

// Label returns the payload label.
func (o Operation) Label() string {
	if o.Payload == nil {
		return ""
	}
	return o.Payload.Label()
}

// AttachedValue returns the wei sent with the operation. A payment without an
// explicit Value carries its Amount.
func (o Operation) AttachedValue() *big.Int {
	if o.Value != nil {
		return o.Value
	}
	if p, ok := o.Payload.(SendPayment); ok {
		return p.Amount
	}
	return nil
}

// Validate checks the operation's fields before any submission.
func (o Operation) Validate() error {
	if o.Payload == nil {
		return fmt.Errorf("operation has no payload")
	}
	if err := o.Payload.check(); err != nil {
		return err
	}
	if o.GasLimit == 0 {
		return fmt.Errorf("%s: gas limit must be positive", o.Kind())
	}
	if o.Value != nil && o.Value.Sign() < 0 {
		return fmt.Errorf("%s: attached value cannot be negative", o.Kind())
	}
	if p, ok := o.Payload.(SendPayment); ok && o.Value != nil && o.Value.Cmp(p.Amount) != 0 {
		return fmt.Errorf("send_payment: attached value %s does not match amount %s", o.Value, p.Amount)
	}
	return nil
}
