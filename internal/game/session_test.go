package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/scythe504/drawguess-backend/internal"
	"github.com/scythe504/drawguess-backend/internal/common/clock"
)

type SessionTestSuite struct {
	suite.Suite

	clock     *clock.Fake
	transport *recordingTransport
	archiver  *recordingArchiver
	registry  *Registry
}

func (s *SessionTestSuite) SetupTest() {
	s.clock = clock.NewFake(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.transport = &recordingTransport{}
	s.archiver = &recordingArchiver{}
	s.registry = s.newRegistry(5)
}

func (s *SessionTestSuite) newRegistry(maxRounds int) *Registry {
	return s.newRegistryWith(s.transport, maxRounds, "gato")
}

func (s *SessionTestSuite) newRegistryWith(transport Transport, maxRounds int, words ...string) *Registry {
	selector, err := NewWordSelector(words, 1)
	s.Require().NoError(err)

	reg, err := NewRegistry(&Config{
		Transport:            transport,
		Words:                selector,
		Clock:                s.clock,
		Archiver:             s.archiver,
		RoundDurationSeconds: 60,
		MaxRounds:            maxRounds,
		Seed:                 1,
	})
	s.Require().NoError(err)
	return reg
}

// join adds players to room r1 in order and returns its session.
func (s *SessionTestSuite) join(ids ...string) *Session {
	var sess *Session
	for _, id := range ids {
		var err error
		sess, _, err = s.registry.GetOrCreate("r1", id, "name-"+id)
		s.Require().NoError(err)
	}
	return sess
}

func (s *SessionTestSuite) roundStarts() []internal.RoundStartedData {
	var out []internal.RoundStartedData
	for _, e := range s.transport.named(internal.EventRoundStarted) {
		out = append(out, e.Payload.(internal.RoundStartedData))
	}
	return out
}

func (s *SessionTestSuite) roundEnds() []internal.RoundEndedData {
	var out []internal.RoundEndedData
	for _, e := range s.transport.named(internal.EventRoundEnded) {
		out = append(out, e.Payload.(internal.RoundEndedData))
	}
	return out
}

func (s *SessionTestSuite) score(sess *Session, playerID string) int {
	for _, p := range sess.Snapshot("").Players {
		if p.ID == playerID {
			return p.Score
		}
	}
	s.FailNow("player not found", playerID)
	return 0
}

func (s *SessionTestSuite) TestCorrectGuessScoresAndAutoAdvances() {
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())

	starts := s.roundStarts()
	s.Require().Len(starts, 1)
	s.Equal("A", starts[0].Drawer)
	s.Equal(1, starts[0].RoundNumber)
	s.Equal("_ _ _ _", starts[0].HiddenWord)
	s.Len(s.transport.namedTo("A", internal.EventYourWord), 1)
	s.Empty(s.transport.namedTo("B", internal.EventYourWord))

	res, err := sess.SubmitGuess("B", "gato")
	s.Require().NoError(err)
	s.Equal(GuessResult{Correct: true, Points: 150}, res)
	s.Equal(150, s.score(sess, "B"))
	s.Equal(25, s.score(sess, "A"))

	ends := s.roundEnds()
	s.Require().Len(ends, 1)
	s.Equal(internal.ReasonAllGuessed, ends[0].Reason)
	s.Equal("gato", ends[0].Word)
	s.Equal(internal.PhaseRevealing, sess.Phase())

	s.clock.Advance(2 * time.Second)
	s.Len(s.roundStarts(), 1)

	s.clock.Advance(time.Second)
	starts = s.roundStarts()
	s.Require().Len(starts, 2)
	s.Equal("B", starts[1].Drawer)
	s.Equal(2, starts[1].RoundNumber)
	s.Equal(internal.PhaseDrawing, sess.Phase())
	s.Equal(1, s.clock.Pending())
}

func (s *SessionTestSuite) TestGuessMatchingIgnoresCaseAndWhitespace() {
	sess := s.join("A", "B", "C")
	s.Require().NoError(sess.StartGame())

	res, err := sess.SubmitGuess("B", "  GATO ")
	s.Require().NoError(err)
	s.True(res.Correct)
}

func (s *SessionTestSuite) TestWrongGuessRelayedAsChat() {
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())

	res, err := sess.SubmitGuess("B", "perro")
	s.Require().NoError(err)
	s.Equal(GuessResult{}, res)

	chats := s.transport.named(internal.EventChatMessage)
	s.Require().Len(chats, 1)
	s.Equal("perro", chats[0].Payload.(internal.ChatMessageData).Text)
	s.Equal(0, s.score(sess, "B"))
}

func (s *SessionTestSuite) TestDrawerCannotScoreOrLeakWord() {
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())

	res, err := sess.SubmitGuess("A", "gato")
	s.Require().NoError(err)
	s.False(res.Correct)
	s.Empty(s.transport.named(internal.EventChatMessage))
	s.Equal(0, s.score(sess, "A"))
}

func (s *SessionTestSuite) TestSecondCorrectGuessRejected() {
	sess := s.join("A", "B", "C")
	s.Require().NoError(sess.StartGame())

	_, err := sess.SubmitGuess("B", "gato")
	s.Require().NoError(err)

	res, err := sess.SubmitGuess("B", "gato")
	s.ErrorIs(err, ErrAlreadyGuessedCorrectly)
	s.False(res.Correct)
	s.Equal(150, s.score(sess, "B"))
	s.Empty(s.transport.named(internal.EventChatMessage))
	s.Empty(s.roundEnds())
}

func (s *SessionTestSuite) TestGuessWithoutRoundIsChat() {
	sess := s.join("A", "B")

	res, err := sess.SubmitGuess("B", "hola")
	s.Require().NoError(err)
	s.False(res.Correct)
	s.Len(s.transport.named(internal.EventChatMessage), 1)
}

func (s *SessionTestSuite) TestTimeExpiryEndsRoundOnce() {
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())

	s.clock.Advance(60 * time.Second)

	ends := s.roundEnds()
	s.Require().Len(ends, 1)
	s.Equal(internal.ReasonTimeExpired, ends[0].Reason)
	s.Equal("gato", ends[0].Word)
	s.Len(s.transport.named(internal.EventTimerTick), 60)

	// Late guess after expiry must not score or end the round again.
	res, err := sess.SubmitGuess("B", "gato")
	s.Require().NoError(err)
	s.False(res.Correct)
	s.Len(s.roundEnds(), 1)
	s.Equal(1, s.clock.Pending())

	s.clock.Advance(3 * time.Second)
	s.Len(s.roundStarts(), 2)
	s.Len(s.roundEnds(), 1)
}

func (s *SessionTestSuite) TestHintsRevealedTwiceToGuessersOnly() {
	sess := s.join("A", "B", "C")
	s.Require().NoError(sess.StartGame())

	s.clock.Advance(29 * time.Second)
	s.Empty(s.transport.named(internal.EventLetterHint))

	s.clock.Advance(time.Second)
	s.Len(s.transport.namedTo("B", internal.EventLetterHint), 1)

	s.clock.Advance(30 * time.Second)

	for _, id := range []string{"B", "C"} {
		hints := s.transport.namedTo(id, internal.EventLetterHint)
		s.Require().Len(hints, 2)
		first := hints[0].Payload.(internal.LetterHintData)
		second := hints[1].Payload.(internal.LetterHintData)
		s.NotEqual(first.Index, second.Index)
		s.Equal(string([]rune("gato")[first.Index]), first.Letter)
	}
	s.Empty(s.transport.namedTo("A", internal.EventLetterHint))
	s.Len(s.transport.named(internal.EventLetterHint), 4)
}

func (s *SessionTestSuite) TestHintStopsOnceWordFullyRevealed() {
	s.registry = s.newRegistryWith(s.transport, 5, "y")
	sess := s.join("A", "B", "C")
	s.Require().NoError(sess.StartGame())

	s.clock.Advance(30 * time.Second)
	s.Len(s.transport.named(internal.EventLetterHint), 2)

	// The second offset finds nothing left to reveal.
	s.clock.Advance(29 * time.Second)
	for _, id := range []string{"B", "C"} {
		hints := s.transport.namedTo(id, internal.EventLetterHint)
		s.Require().Len(hints, 1)
		s.Equal(internal.LetterHintData{Index: 0, Letter: "y"}, hints[0].Payload)
	}
	s.Len(s.transport.named(internal.EventLetterHint), 2)

	sess.mu.Lock()
	revealed := len(sess.room.RevealedIndices)
	sess.mu.Unlock()
	s.Equal(1, revealed)
	s.Equal("y", sess.Snapshot("B").HiddenWord)
	s.Empty(s.roundEnds())
}

func (s *SessionTestSuite) TestPanicDuringExpiryStillAdvances() {
	flaky := &flakyTransport{recordingTransport: s.transport, event: internal.EventRoundEnded}
	s.registry = s.newRegistryWith(flaky, 5, "gato")
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())

	s.clock.Advance(60 * time.Second)

	// round_ended was lost, but the room still reveals and moves on.
	s.Empty(s.roundEnds())
	s.Equal(internal.PhaseRevealing, sess.Phase())
	s.Equal(1, s.clock.Pending())

	s.clock.Advance(3 * time.Second)
	s.Len(s.roundStarts(), 2)
	s.Equal(internal.PhaseDrawing, sess.Phase())
	s.Equal("B", s.roundStarts()[1].Drawer)
}

func (s *SessionTestSuite) TestHiddenWordShowsRevealedLetters() {
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())

	s.clock.Advance(30 * time.Second)

	guesser := sess.Snapshot("B")
	s.Empty(guesser.Word)
	s.Equal(4, guesser.WordLength)
	s.Equal(7, len(guesser.HiddenWord))
	s.Contains(guesser.HiddenWord, "_")

	drawer := sess.Snapshot("A")
	s.Equal("gato", drawer.Word)
	s.Empty(drawer.HiddenWord)
}

func (s *SessionTestSuite) TestStartWhileActiveRejectedWithoutSideEffects() {
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())
	s.Equal(1, s.clock.Pending())

	s.ErrorIs(sess.StartGame(), ErrRoundAlreadyActive)
	s.Equal(1, s.clock.Pending())
	s.Len(s.roundStarts(), 1)
	s.Equal(1, sess.Snapshot("").RoundNumber)
}

func (s *SessionTestSuite) TestStartNeedsTwoPlayers() {
	sess := s.join("A")

	s.ErrorIs(sess.StartGame(), ErrInsufficientPlayers)
	s.Equal(0, s.clock.Pending())
	s.Equal(internal.PhaseLobby, sess.Phase())
}

func (s *SessionTestSuite) TestDrawerRotationFollowsJoinOrder() {
	s.registry = s.newRegistry(6)
	sess := s.join("A", "B", "C")
	s.Require().NoError(sess.StartGame())

	for range 5 {
		s.clock.Advance(63 * time.Second)
	}

	var drawers []string
	for _, st := range s.roundStarts() {
		drawers = append(drawers, st.Drawer)
	}
	s.Equal([]string{"A", "B", "C", "A", "B", "C"}, drawers)
}

func (s *SessionTestSuite) TestDrawerDisconnectForceAdvances() {
	sess := s.join("A", "B", "C")
	s.Require().NoError(sess.StartGame())
	s.clock.Advance(10 * time.Second)

	remaining, err := s.registry.Leave("r1", "A")
	s.Require().NoError(err)
	s.Equal(2, remaining)

	ends := s.roundEnds()
	s.Require().Len(ends, 1)
	s.Equal(internal.ReasonPlayerLeft, ends[0].Reason)
	s.Empty(ends[0].Word)

	starts := s.roundStarts()
	s.Require().Len(starts, 2)
	s.Contains([]string{"B", "C"}, starts[1].Drawer)
	s.Equal(internal.PhaseDrawing, sess.Phase())
	s.Equal(1, s.clock.Pending())

	left := s.transport.named(internal.EventPlayerLeft)
	s.Require().Len(left, 1)
	s.Equal(internal.PlayerLeftData{PlayerID: "A", Username: "name-A", RemainingCount: 2}, left[0].Payload)

	// The old timer must stay silent.
	s.clock.Advance(60 * time.Second)
	s.Len(s.roundEnds(), 2)
}

func (s *SessionTestSuite) TestLastGuesserLeavingEndsRound() {
	sess := s.join("A", "B", "C")
	s.Require().NoError(sess.StartGame())

	_, err := sess.SubmitGuess("B", "gato")
	s.Require().NoError(err)

	_, err = s.registry.Leave("r1", "C")
	s.Require().NoError(err)

	ends := s.roundEnds()
	s.Require().Len(ends, 1)
	s.Equal(internal.ReasonAllGuessed, ends[0].Reason)
	s.Equal(internal.PhaseRevealing, sess.Phase())
}

func (s *SessionTestSuite) TestDroppingBelowTwoPlayersEndsGame() {
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())

	_, err := s.registry.Leave("r1", "B")
	s.Require().NoError(err)

	s.Len(s.roundEnds(), 1)
	s.Len(s.transport.named(internal.EventGameEnded), 1)
	s.Equal(internal.PhaseEnded, sess.Phase())
	s.Equal(0, s.clock.Pending())
}

func (s *SessionTestSuite) TestGameEndsAfterMaxRoundsAndResets() {
	s.registry = s.newRegistry(2)
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())

	_, err := sess.SubmitGuess("B", "gato")
	s.Require().NoError(err)
	s.clock.Advance(3 * time.Second)
	s.clock.Advance(63 * time.Second)

	ended := s.transport.named(internal.EventGameEnded)
	s.Require().Len(ended, 1)
	data := ended[0].Payload.(internal.GameEndedData)
	s.Require().Len(data.RoundHistory, 2)
	s.Equal(internal.RoundRecord{RoundNumber: 1, Word: "gato", Canvas: []internal.DrawEvent{}, DrawerName: "name-A", WasGuessed: true}, data.RoundHistory[0])
	s.False(data.RoundHistory[1].WasGuessed)
	s.Equal("name-B", data.RoundHistory[1].DrawerName)
	s.Equal("B", data.FinalScores[0].PlayerID)
	s.Equal(1, data.FinalScores[0].Position)

	s.Equal(internal.PhaseEnded, sess.Phase())
	s.Equal(0, s.clock.Pending())
	s.Eventually(func() bool { return s.archiver.count() == 1 }, time.Second, 10*time.Millisecond)

	s.ErrorIs(sess.StartGame(), ErrInvalidPhase)

	s.Require().NoError(sess.ResetForNewGame())
	snap := sess.Snapshot("")
	s.Equal(internal.PhaseLobby, snap.Phase)
	s.Equal(0, snap.RoundNumber)
	for _, p := range snap.Players {
		s.Zero(p.Score)
	}

	s.Require().NoError(sess.StartGame())
	s.Equal(1, sess.Snapshot("").RoundNumber)
}

func (s *SessionTestSuite) TestResetRejectedMidRound() {
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())

	s.ErrorIs(sess.ResetForNewGame(), ErrInvalidPhase)
}

func (s *SessionTestSuite) TestDrawingRestrictedToDrawer() {
	sess := s.join("A", "B")
	stroke := internal.DrawEvent(`{"x":1,"y":2}`)

	s.ErrorIs(sess.RecordDrawingEvent("A", stroke), ErrNotAuthorizedDrawer)

	s.Require().NoError(sess.StartGame())
	s.ErrorIs(sess.RecordDrawingEvent("B", stroke), ErrNotAuthorizedDrawer)
	s.ErrorIs(sess.ClearCanvas("B"), ErrNotAuthorizedDrawer)

	s.Require().NoError(sess.RecordDrawingEvent("A", stroke))
	relayed := s.transport.named(internal.EventDrawEvent)
	s.Require().Len(relayed, 1)
	s.Equal("A", relayed[0].Except)
	s.JSONEq(`{"x":1,"y":2}`, string(relayed[0].Payload.(internal.DrawEvent)))

	// Late joiners see the canvas so far.
	late, _, err := s.registry.GetOrCreate("r1", "C", "name-C")
	s.Require().NoError(err)
	canvas := late.Snapshot("C").Canvas
	s.Require().Len(canvas, 1)
	s.JSONEq(`{"x":1,"y":2}`, string(canvas[0]))

	s.Require().NoError(sess.ClearCanvas("A"))
	s.Empty(sess.Snapshot("C").Canvas)
	s.Len(s.transport.named(internal.EventCanvasCleared), 1)
}

func (s *SessionTestSuite) TestCanvasCapturedInHistory() {
	s.registry = s.newRegistry(1)
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())
	s.Require().NoError(sess.RecordDrawingEvent("A", json.RawMessage(`[1,2]`)))

	s.clock.Advance(63 * time.Second)

	ended := s.transport.named(internal.EventGameEnded)
	s.Require().Len(ended, 1)
	history := ended[0].Payload.(internal.GameEndedData).RoundHistory
	s.Require().Len(history, 1)
	s.Require().Len(history[0].Canvas, 1)
	s.JSONEq(`[1,2]`, string(history[0].Canvas[0]))
}

func (s *SessionTestSuite) TestWordPoolUpdateAppliesNextRound() {
	sess := s.join("A", "B")

	s.Require().NoError(sess.UpdateWordPool("B", []string{" sol ", "Sol", "", "luna"}))
	pool := s.transport.namedTo("B", internal.EventWordPool)
	s.Require().Len(pool, 1)
	s.Equal(internal.WordPoolData{Words: []string{"sol", "luna"}, Custom: true}, pool[0].Payload)
	s.Empty(s.transport.namedTo("A", internal.EventWordPool))
	s.True(sess.Snapshot("A").HasCustomWords)

	s.Require().NoError(sess.StartGame())
	word := s.transport.namedTo("A", internal.EventYourWord)[0].Payload.(internal.YourWordData).Word
	s.Contains([]string{"sol", "luna"}, word)

	s.Require().NoError(sess.UpdateWordPool("A", nil))
	s.Require().NoError(sess.RequestWordPool("A"))
	last := s.transport.namedTo("A", internal.EventWordPool)
	s.Equal(internal.WordPoolData{Words: []string{"gato"}, Custom: false}, last[len(last)-1].Payload)

	s.ErrorIs(sess.RequestWordPool("nobody"), ErrPlayerNotFound)
}

func (s *SessionTestSuite) TestJoinDuringRoundDoesNotInterrupt() {
	sess := s.join("A", "B")
	s.Require().NoError(sess.StartGame())
	s.transport.reset()

	_, created, err := s.registry.GetOrCreate("r1", "C", "name-C")
	s.Require().NoError(err)
	s.False(created)

	s.Empty(s.roundEnds())
	s.Equal(internal.PhaseDrawing, sess.Phase())
	s.Len(s.transport.namedTo("C", internal.EventRoomState), 1)
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
