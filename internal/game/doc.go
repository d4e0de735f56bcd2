// Package game implements the UNO session lifecycle for a single chat channel.
//
// The main type is Session, which owns the host, the negotiated RuleSet, the
// player set, the deck, the hands in turn order and the discard pile. A
// session moves strictly forward through its stages:
//
//	StagePending -> StageNegotiating -> StageQueueing -> StageDealing -> StagePlaying -> StageClosed
//
// Any stage may jump to StageClosed when the host cancels or the driving loop
// abandons the session.
//
// # Interactions
//
// Participants drive the session through Interaction values routed by a
// transport. Each handler checks its authorization gate (host only or
// membership) under the session lock before mutating anything, and returns a
// *Rejection describing why the action was refused:
//
//	err := s.Join(player)
//	if game.IsRejection(err) {
//	    // reply to the actor only
//	}
//
// Terminal actions (continue, start, cancel, end) publish a Signal on
// Session.Signals so the driving loop can move the session to its next stage.
//
// # Deterministic Testing
//
// Sessions take an explicit *rand.Rand for the deck and turn-order shuffles:
//
//	s := game.NewSession("id", "channel", host, game.DefaultConfig(), randutil.New(42))
//
// # Scope
//
// The play loop is a scaffold: dealing completes, CurrentHand/CurrentPlayer
// resolve the turn, and the RuleSet is frozen for a future play engine.
package game
