package tasks

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pantry/internal/formatter"
	"github.com/desertthunder/pantry/internal/registry"
	"github.com/desertthunder/pantry/internal/shared"
)

// LineResult is the outcome of one script command.
type LineResult struct {
	Line    int    // 1-based line number in the script
	Command string // command text as written
	Output  string // text produced by the command
	Err     error  // nil when the command succeeded
}

// SessionResult summarizes a script run.
type SessionResult struct {
	Executed int          // commands that succeeded
	Failed   int          // commands that returned an error
	Lines    []LineResult // per-command outcomes in script order
}

// Session executes commands against a registry.
type Session struct {
	registry *registry.Registry
	out      io.Writer
	logger   *log.Logger
}

// NewSession creates a [Session]. Command output is echoed to out when it is non-nil.
func NewSession(reg *registry.Registry, out io.Writer, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Session{registry: reg, out: out, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (s *Session) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

type scriptLine struct {
	number int
	text   string
}

func readScript(script io.Reader) ([]scriptLine, error) {
	var lines []scriptLine
	scanner := bufio.NewScanner(script)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, scriptLine{number: n, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return lines, nil
}

// Run executes every command in script. Blank lines and lines starting with # are ignored.
//
// A failing command is recorded and execution continues with the next line. Run
// returns an error only when the script cannot be read or ctx is cancelled; the
// partial result is returned in the latter case.
func (s *Session) Run(ctx context.Context, progress chan<- ProgressUpdate, script io.Reader) (*SessionResult, error) {
	lines, err := readScript(script)
	if err != nil {
		return nil, err
	}

	total := len(lines)
	s.sendProgress(progress, readScriptUpdate(total))

	result := &SessionResult{Lines: make([]LineResult, 0, total)}
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		output, err := s.Exec(line.text)
		res := LineResult{Line: line.number, Command: line.text, Output: output, Err: err}
		result.Lines = append(result.Lines, res)

		if err != nil {
			result.Failed++
			s.logger.Warn("session command failed", "line", line.number, "command", line.text, "error", err)
			s.echo(fmt.Sprintf("line %d: %v\n", line.number, err))
			s.sendProgress(progress, failedUpdate(i+1, total, res))
			continue
		}

		result.Executed++
		s.echo(output)
		s.sendProgress(progress, executedUpdate(i+1, total, res))
	}

	s.sendProgress(progress, completedUpdate(result))
	return result, nil
}

func (s *Session) echo(text string) {
	if s.out == nil || text == "" {
		return
	}
	fmt.Fprint(s.out, text)
}

// Exec runs a single command and returns its output.
//
// Commands:
//
//	request <id> <kg>      queue a normal request
//	urgent <id> <kg>       queue an urgent request
//	distribute <id>        serve the front request
//	pending <id>           list queued requests in service order
//	list                   show every recipient
//	total                  total kg received across recipients
//	save                   write the registry now
//	autosave on|off        toggle auto-save
func (s *Session) Exec(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty command", shared.ErrMissingArgument)
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "request", "urgent":
		if len(args) != 2 {
			return "", fmt.Errorf("%w: usage: %s <id> <kg>", shared.ErrMissingArgument, cmd)
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil || qty <= 0 {
			return "", fmt.Errorf("%w: %q", shared.ErrInvalidQuantity, args[1])
		}
		urgent := cmd == "urgent"
		if err := s.registry.RequestFood(id, qty, urgent); err != nil {
			return "", err
		}
		if urgent {
			return fmt.Sprintf("Urgent request for %d kg added to the front of %d's queue.\n", qty, id), nil
		}
		return fmt.Sprintf("Food request for %d kg added to %d's queue.\n", qty, id), nil

	case "distribute":
		if len(args) != 1 {
			return "", fmt.Errorf("%w: usage: distribute <id>", shared.ErrMissingArgument)
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		e, served, err := s.registry.DistributeFood(id)
		if err != nil {
			return "", err
		}
		if !served {
			return fmt.Sprintf("No pending requests for %d.\n", id), nil
		}
		return fmt.Sprintf("Distributed %d kg to %d.\n", e.Quantity, id), nil

	case "pending":
		if len(args) != 1 {
			return "", fmt.Errorf("%w: usage: pending <id>", shared.ErrMissingArgument)
		}
		id, err := parseID(args[0])
		if err != nil {
			return "", err
		}
		rec, ok := s.registry.FindByID(id)
		if !ok {
			return "", fmt.Errorf("%w: id %d", shared.ErrRecipientNotFound, id)
		}
		return string(formatter.PendingRequests(rec)), nil

	case "list":
		var buf bytes.Buffer
		if err := s.registry.DisplayAll(&buf); err != nil {
			return "", err
		}
		return buf.String(), nil

	case "total":
		return fmt.Sprintf("Total food distributed: %.2f kg\n", s.registry.TotalDistributed()), nil

	case "save":
		if err := s.registry.ForceSave(); err != nil {
			return "", err
		}
		return fmt.Sprintf("Saved %d recipients.\n", s.registry.Size()), nil

	case "autosave":
		if len(args) != 1 {
			return "", fmt.Errorf("%w: usage: autosave on|off", shared.ErrMissingArgument)
		}
		switch strings.ToLower(args[0]) {
		case "on":
			s.registry.SetAutoSave(true)
		case "off":
			s.registry.SetAutoSave(false)
		default:
			return "", fmt.Errorf("%w: autosave %q", shared.ErrInvalidArgument, args[0])
		}
		return fmt.Sprintf("Auto-save %s.\n", strings.ToLower(args[0])), nil

	default:
		return "", fmt.Errorf("%w: unknown command %q", shared.ErrInvalidArgument, fields[0])
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: recipient id %q", shared.ErrInvalidArgument, s)
	}
	return id, nil
}
