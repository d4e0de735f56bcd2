package game

// Stage is a phase of the session lifecycle
type Stage int

const (
	StagePending Stage = iota
	StageNegotiating
	StageQueueing
	StageDealing
	StagePlaying
	StageClosed
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageNegotiating:
		return "negotiating"
	case StageQueueing:
		return "queueing"
	case StageDealing:
		return "dealing"
	case StagePlaying:
		return "playing"
	case StageClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CloseReason explains why a session ended
type CloseReason string

const (
	ReasonCancelled        CloseReason = "cancelled"
	ReasonEnded            CloseReason = "ended_by_host"
	ReasonNotEnoughPlayers CloseReason = "not_enough_players"
	ReasonShutdown         CloseReason = "shutdown"
	ReasonFailed           CloseReason = "failed"
)

// Message returns the status line posted when a session closes
func (r CloseReason) Message() string {
	switch r {
	case ReasonCancelled:
		return "The host cancelled this game."
	case ReasonEnded:
		return "The host ended this game."
	case ReasonNotEnoughPlayers:
		return "Not enough players joined, so this game was cancelled."
	case ReasonShutdown:
		return "This game was stopped because the bot is shutting down."
	case ReasonFailed:
		return "This game stopped because of an unexpected error."
	default:
		return "This game has ended."
	}
}

// Signal is published when a terminal interaction ends a stage. Abort means
// the session is abandoned rather than moved forward.
type Signal struct {
	Stage  Stage
	Abort  bool
	Reason CloseReason
}
