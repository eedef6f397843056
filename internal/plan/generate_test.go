package plan

import (
	"math/big"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/config"
)

// TestMessages tests templated guestbook entries
func TestMessages(t *testing.T) {
	ops := Messages(22)
	if len(ops) != 22 {
		t.Fatalf("Expected 22 operations, got %d", len(ops))
	}

	first := ops[0].Payload.(batching.PostMessage)
	want := batching.PostMessage{Name: "Alice #1", Body: "Hello from the blockchain! (Message #1)"}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("First message mismatch (-want +got):\n%s", diff)
	}

	// names wrap after 20 entries, greetings after 15
	wrapped := ops[20].Payload.(batching.PostMessage)
	if wrapped.Name != "Alice #21" || !strings.HasPrefix(wrapped.Body, "Greetings from the Base network!") {
		t.Errorf("Unexpected wrapped message %+v", wrapped)
	}

	for _, op := range ops {
		if op.GasLimit != config.DefaultMessageGasLimit || op.Value != nil {
			t.Errorf("Expected default gas and no value, got %d / %v", op.GasLimit, op.Value)
		}
	}
}

// TestTodos tests templated todos carry the fee
func TestTodos(t *testing.T) {
	fee := big.NewInt(10_000_000_000_000)
	ops := Todos(3, fee)

	todo := ops[2].Payload.(batching.CreateTodo)
	if todo.Title != "Deploy to mainnet #3" {
		t.Errorf("Expected third title 'Deploy to mainnet #3', got %q", todo.Title)
	}
	for _, op := range ops {
		if op.Value.Cmp(fee) != 0 || op.GasLimit != config.DefaultTodoGasLimit {
			t.Errorf("Expected fee %s and todo gas limit, got %v / %d", fee, op.Value, op.GasLimit)
		}
	}
}

// TestPayments tests recipient cycling and note composition
func TestPayments(t *testing.T) {
	amount := big.NewInt(1696137472)
	ops := Payments(5, nil, amount)

	for i, op := range ops {
		p := op.Payload.(batching.SendPayment)
		if p.Recipient != DefaultRecipients[i%len(DefaultRecipients)] {
			t.Errorf("Operation %d: expected recipient %s, got %s", i+1, DefaultRecipients[i%4], p.Recipient)
		}
		if err := op.Validate(); err != nil {
			t.Errorf("Operation %d invalid: %v", i+1, err)
		}
	}

	note := ops[0].Payload.(batching.SendPayment).Note
	if !strings.HasPrefix(note, "Hey dev!") || !strings.HasSuffix(note, "(Message #1)") {
		t.Errorf("Unexpected note %q", note)
	}

	custom := Payments(3, []string{DefaultRecipients[1]}, amount)
	for _, op := range custom {
		if op.Payload.(batching.SendPayment).Recipient != DefaultRecipients[1] {
			t.Error("Expected single custom recipient for every payment")
		}
	}
}

// TestComposite tests run mode grouping
func TestComposite(t *testing.T) {
	fee := big.NewInt(1)

	tests := []struct {
		mode      string
		wantKinds []batching.Kind
		wantErr   bool
	}{
		{ModeMessages, []batching.Kind{batching.KindPostMessage}, false},
		{ModeTodos, []batching.Kind{batching.KindCreateTodo}, false},
		{ModeBoth, []batching.Kind{batching.KindPostMessage, batching.KindCreateTodo}, false},
		{"payments", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			groups, err := Composite(tt.mode, 2, 1, fee)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error for unknown mode")
				}
				return
			}
			if err != nil {
				t.Fatalf("Composite() error = %v", err)
			}

			var kinds []batching.Kind
			for _, g := range groups {
				kinds = append(kinds, g[0].Kind())
			}
			if diff := cmp.Diff(tt.wantKinds, kinds); diff != "" {
				t.Errorf("Group kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
