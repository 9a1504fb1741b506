package tasks

import "fmt"

// ProgressUpdate represents a progress event while a session script runs.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current command number
	Total   int    // Total commands in the script
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, a [LineResult] for executed commands
}

// Operation phase enumeration
type Phase int

const (
	ReadScript Phase = iota
	ExecuteCommand
	CommandFailed
	Completed
)

func (p Phase) String() string {
	switch p {
	case ReadScript:
		return "read_script"
	case ExecuteCommand:
		return "execute_command"
	case CommandFailed:
		return "command_failed"
	case Completed:
		return "completed"
	default:
		return ""
	}
}

func readScriptUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadScript,
		Total:   total,
		Message: fmt.Sprintf("Loaded %d commands", total),
	}
}

func executedUpdate(step, total int, res LineResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExecuteCommand,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Command),
		Data:    res,
	}
}

func failedUpdate(step, total int, res LineResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CommandFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ line %d %s: %v", step, total, res.Line, res.Command, res.Err),
		Data:    res,
	}
}

func completedUpdate(result *SessionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Completed,
		Step:    result.Executed + result.Failed,
		Total:   result.Executed + result.Failed,
		Message: fmt.Sprintf("Session finished: %d ok, %d failed", result.Executed, result.Failed),
		Data:    result,
	}
}
