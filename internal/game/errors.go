package game

import (
	"errors"
	"fmt"
)

// Rejection is a non-fatal refusal of an interaction. It is reported to the
// acting participant only and never accompanies a state change.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

// Is matches rejections by code so formatted variants still satisfy
// errors.Is against the sentinel values below.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Code == r.Code
}

var (
	ErrNotHost          = &Rejection{Code: "not_host", Message: "You are not the host of this game."}
	ErrAlreadyJoined    = &Rejection{Code: "already_joined", Message: "You are already in this game."}
	ErrNotJoined        = &Rejection{Code: "not_joined", Message: "You are not in this game."}
	ErrHostCannotLeave  = &Rejection{Code: "host_cannot_leave", Message: "You cannot leave this game as you are the host."}
	ErrNotEnoughPlayers = &Rejection{Code: "not_enough_players", Message: "There are not enough players to start this game."}
	ErrSessionFull      = &Rejection{Code: "session_full", Message: "This game is full."}
	ErrWrongStage       = &Rejection{Code: "wrong_stage", Message: "That action is not available right now."}
	ErrNotInGame        = &Rejection{Code: "not_in_game", Message: "You are not in this game!"}
	ErrNotYourTurn      = &Rejection{Code: "not_your_turn", Message: "It isn't your turn!"}
)

// ErrNotDealt is returned when turn state is read before dealing completes
var ErrNotDealt = errors.New("hands have not been dealt")

func notEnoughPlayers(minPlayers int) *Rejection {
	return &Rejection{
		Code:    ErrNotEnoughPlayers.Code,
		Message: fmt.Sprintf("There must be at least %d players in order to start this game.", minPlayers),
	}
}

func notHost(action string) *Rejection {
	return &Rejection{
		Code:    ErrNotHost.Code,
		Message: fmt.Sprintf("Only the host can %s this game.", action),
	}
}

// IsRejection reports whether err is a participant-facing rejection
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

// AsRejection extracts the rejection from err, if any
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
