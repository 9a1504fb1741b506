package tasks

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/pantry/internal/models"
	"github.com/desertthunder/pantry/internal/registry"
	"github.com/desertthunder/pantry/internal/shared"
	th "github.com/desertthunder/pantry/internal/testing"
)

func newRegistry(t *testing.T) (*registry.Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipients.dat")
	r := registry.New(registry.NewFileStore(path))
	for _, rec := range []*models.Recipient{models.NewRecipient(101, "Food Bank"), models.NewRecipient(102, "Shelter")} {
		if err := r.AddRecipient(rec); err != nil {
			t.Fatalf("failed to add recipient: %v", err)
		}
	}
	return r, path
}

func TestSessionRun(t *testing.T) {
	t.Run("distribution scenario", func(t *testing.T) {
		reg, path := newRegistry(t)
		var out bytes.Buffer
		s := NewSession(reg, &out, nil)

		script := strings.Join([]string{
			"# queue two requests",
			"request 101 5",
			"urgent 101 9",
			"",
			"pending 101",
			"distribute 101",
			"distribute 101",
			"distribute 101",
			"total",
		}, "\n")

		result, err := s.Run(context.Background(), nil, strings.NewReader(script))
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Executed != 7 || result.Failed != 0 {
			t.Fatalf("expected 7 ok and 0 failed, got %+v", result)
		}

		if result.Lines[0].Line != 2 {
			t.Errorf("expected line numbers to skip comments, got %d", result.Lines[0].Line)
		}
		if !strings.Contains(result.Lines[2].Output, "1. 9 kg\n2. 5 kg") {
			t.Errorf("expected urgent request first, got %q", result.Lines[2].Output)
		}
		if !strings.Contains(result.Lines[3].Output, "Distributed 9 kg") {
			t.Errorf("unexpected first distribution %q", result.Lines[3].Output)
		}
		if !strings.Contains(result.Lines[4].Output, "Distributed 5 kg") {
			t.Errorf("unexpected second distribution %q", result.Lines[4].Output)
		}
		if !strings.Contains(result.Lines[5].Output, "No pending requests") {
			t.Errorf("unexpected third distribution %q", result.Lines[5].Output)
		}
		if !strings.Contains(out.String(), "Total food distributed: 14.00 kg") {
			t.Errorf("expected total in output, got:\n%s", out.String())
		}

		reloaded, err := registry.Load(registry.NewFileStore(path))
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if rec, _ := reloaded.FindByID(101); rec.TotalKg() != 14 {
			t.Errorf("expected distributions to be persisted, got %v", rec.TotalKg())
		}
	})

	t.Run("failing lines do not stop the script", func(t *testing.T) {
		reg, _ := newRegistry(t)
		s := NewSession(reg, nil, nil)

		script := "request 999 5\nrequest 101 zero\nfly 101\nrequest 101\nrequest 102 3\n"
		result, err := s.Run(context.Background(), nil, strings.NewReader(script))
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Executed != 1 || result.Failed != 4 {
			t.Fatalf("expected 1 ok and 4 failed, got %d/%d", result.Executed, result.Failed)
		}

		wants := []error{shared.ErrRecipientNotFound, shared.ErrInvalidQuantity, shared.ErrInvalidArgument, shared.ErrMissingArgument}
		for i, want := range wants {
			if !errors.Is(result.Lines[i].Err, want) {
				t.Errorf("line %d: expected %v, got %v", i+1, want, result.Lines[i].Err)
			}
		}

		rec, _ := reg.FindByID(102)
		if rec.PendingRequests() != 1 {
			t.Errorf("expected the valid request to be queued")
		}
	})

	t.Run("autosave toggling and save", func(t *testing.T) {
		reg, _ := newRegistry(t)
		s := NewSession(reg, nil, nil)

		result, err := s.Run(context.Background(), nil, strings.NewReader("autosave off\nautosave maybe\nsave\nautosave on\n"))
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Failed != 1 || !errors.Is(result.Lines[1].Err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid autosave argument, got %+v", result.Lines[1])
		}
		if !reg.AutoSave() {
			t.Error("expected auto-save back on")
		}
		if !strings.Contains(result.Lines[2].Output, "Saved 2 recipients") {
			t.Errorf("unexpected save output %q", result.Lines[2].Output)
		}
	})

	t.Run("progress updates", func(t *testing.T) {
		reg, _ := newRegistry(t)
		s := NewSession(reg, nil, nil)
		progress := make(chan ProgressUpdate, 10)

		if _, err := s.Run(context.Background(), progress, strings.NewReader("list\nbogus\n")); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		want := []Phase{ReadScript, ExecuteCommand, CommandFailed, Completed}
		if len(phases) != len(want) {
			t.Fatalf("expected %v, got %v", want, phases)
		}
		for i := range want {
			if phases[i] != want[i] {
				t.Errorf("update %d: expected %s, got %s", i, want[i], phases[i])
			}
		}
	})

	t.Run("full progress channel does not block", func(t *testing.T) {
		reg, _ := newRegistry(t)
		s := NewSession(reg, nil, nil)
		progress := make(chan ProgressUpdate)

		if _, err := s.Run(context.Background(), progress, strings.NewReader("total\ntotal\n")); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		reg, _ := newRegistry(t)
		s := NewSession(reg, nil, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := s.Run(ctx, nil, strings.NewReader("request 101 1\n"))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.Executed != 0 {
			t.Errorf("expected empty partial result, got %+v", result)
		}
	})

	t.Run("unreadable script", func(t *testing.T) {
		reg, _ := newRegistry(t)
		s := NewSession(reg, nil, nil)
		if _, err := s.Run(context.Background(), nil, &th.FReader{}); !errors.Is(err, th.ErrInjected) {
			t.Errorf("expected injected error, got %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tc := map[Phase]string{
		ReadScript:     "read_script",
		ExecuteCommand: "execute_command",
		CommandFailed:  "command_failed",
		Completed:      "completed",
		Phase(99):      "",
	}
	for p, want := range tc {
		if p.String() != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), p.String(), want)
		}
	}
}
