package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/config"
)

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// TestLoadYAML tests a full plan file with two groups
func TestLoadYAML(t *testing.T) {
	path := writePlan(t, "plan.yaml", `
name: launch-day
pacing: 250ms
max_attempts: 5
retry_interval: 2s
groups:
  - name: greetings
    operations:
      - kind: post_message
        name: Alice
        message: gm
      - kind: post_message
        name: Bob
        message: gn
  - name: chores
    operations:
      - kind: create_todo
        title: Ship it
        description: Deploy to mainnet
        value: "0.00001"
        gas_limit: 350000
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.Name != "launch-day" || p.Pacing != 250*time.Millisecond || p.MaxAttempts != 5 || p.RetryInterval != 2*time.Second {
		t.Errorf("Unexpected plan header %+v", p)
	}
	if p.Size() != 3 {
		t.Errorf("Expected 3 operations, got %d", p.Size())
	}

	groups, err := p.OperationGroups()
	if err != nil {
		t.Fatalf("OperationGroups() error = %v", err)
	}
	if len(groups) != 2 || groups[1][0].Kind() != batching.KindCreateTodo || groups[1][0].GasLimit != 350000 {
		t.Errorf("Unexpected groups %+v", groups)
	}
}

// TestLoadJSONDefaults tests that timing defaults apply
func TestLoadJSONDefaults(t *testing.T) {
	path := writePlan(t, "plan.json", `{
  "groups": [{"operations": [{"kind": "post_message", "name": "Eve", "message": "hi"}]}]
}`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := p.EngineConfig()
	if cfg.PacingDelay != config.DefaultPacingDelay || cfg.MaxAttempts != config.DefaultMaxAttempts || cfg.RetryInterval != config.DefaultRetryInterval {
		t.Errorf("Expected default policy, got %s", cfg)
	}
}

// TestLoadInvalid tests aggregated plan errors
func TestLoadInvalid(t *testing.T) {
	path := writePlan(t, "bad.yaml", `
max_attempts: 0
groups:
  - operations:
      - kind: post_message
        name: ""
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for invalid plan")
	}
	for _, want := range []string{"max attempts", "group 1 operation 1"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %q", want, err.Error())
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	empty := writePlan(t, "empty.yaml", "name: nothing\n")
	if _, err := Load(empty); err == nil || !strings.Contains(err.Error(), "no operations") {
		t.Errorf("Expected no operations error, got %v", err)
	}
}
