package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mikkelsonm/bitboxing/internal/dependencies/mocks"
	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/protocol"
	"github.com/mikkelsonm/bitboxing/internal/services/auth"
	"github.com/mikkelsonm/bitboxing/internal/services/game"
	"github.com/mikkelsonm/bitboxing/internal/services/ranking"
	"github.com/mikkelsonm/bitboxing/internal/storage/memory"
	"github.com/mikkelsonm/bitboxing/internal/testutil"
)

type DispatcherSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	dispatcher *Dispatcher
	ctx        context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()

	authService := auth.New(s.storage, s.clock, logger)
	gameService := game.New(s.storage, s.clock, logger)
	rankingService := ranking.New(s.storage)
	s.dispatcher = New(authService, gameService, rankingService, logger)
	s.ctx = context.Background()

	s.Require().NoError(gameService.SeedCatalog(s.ctx, map[model.CacheCode]model.Puzzle{
		"3": {Question: "What is the 8th Fibonacci number?", Answer: "13", Hint: "0, 1, 1, 2..."},
	}))
}

// send builds a request for sender "A" at the supported version and
// returns the decoded response.
func (s *DispatcherSuite) send(method string, args ...string) protocol.Response {
	return s.sendAs("A", method, args...)
}

func (s *DispatcherSuite) sendAs(sender, method string, args ...string) protocol.Response {
	raw := protocol.EncodeRequest(sender, protocol.Version, method, args, "")
	return protocol.DecodeResponse(s.dispatcher.Handle(s.ctx, raw))
}

func (s *DispatcherSuite) register(sender string) {
	resp := s.sendAs(sender, protocol.MethodRegister, "pw")
	s.Require().Equal(protocol.StatusOK, resp.Status)
}

// Validation pipeline tests

func (s *DispatcherSuite) TestMalformedHeaderIsBadRequest() {
	resp := protocol.DecodeResponse(s.dispatcher.Handle(s.ctx, "garbage\r\nFIND|3\r\n"))
	s.Equal(protocol.StatusBadRequest, resp.Status)
}

func (s *DispatcherSuite) TestMissingMethodIsBadRequest() {
	resp := protocol.DecodeResponse(s.dispatcher.Handle(s.ctx, "A|0.1\r\n\r\n"))
	s.Equal(protocol.StatusBadRequest, resp.Status)
}

func (s *DispatcherSuite) TestWrongVersion() {
	raw := protocol.EncodeRequest("A", "9.9", protocol.MethodFind, []string{"3"}, "")
	resp := protocol.DecodeResponse(s.dispatcher.Handle(s.ctx, raw))
	s.Equal(protocol.StatusVersionNotSupport, resp.Status)
}

func (s *DispatcherSuite) TestUnregisteredSenderIsUnauthenticated() {
	for _, method := range []string{
		protocol.MethodLogin, protocol.MethodFind, protocol.MethodHint,
		protocol.MethodSolve, protocol.MethodScore,
		protocol.MethodLeaderboard, protocol.MethodCacheLeaderboard,
	} {
		resp := s.sendAs("ghost", method)
		s.Equal(protocol.StatusUnauthenticated, resp.Status, "method %s", method)
	}
}

func (s *DispatcherSuite) TestRegisterIsExemptFromAuth() {
	resp := s.sendAs("newcomer", protocol.MethodRegister, "pw")
	s.Equal(protocol.StatusOK, resp.Status)
}

func (s *DispatcherSuite) TestAuthCheckedBeforeMethodValidity() {
	resp := s.sendAs("ghost", "STATS", "x")
	s.Equal(protocol.StatusUnauthenticated, resp.Status)
}

func (s *DispatcherSuite) TestUnrecognizedMethod() {
	s.register("A")
	resp := s.send("STATS", "A")
	s.Equal(protocol.StatusUnrecognized, resp.Status)
}

func (s *DispatcherSuite) TestWrongArity() {
	s.register("A")

	s.Equal(protocol.StatusWrongNumOfParams, s.send(protocol.MethodFind).Status)
	s.Equal(protocol.StatusWrongNumOfParams, s.send(protocol.MethodFind, "3", "extra").Status)
	s.Equal(protocol.StatusWrongNumOfParams, s.send(protocol.MethodSolve, "3").Status)
	s.Equal(protocol.StatusWrongNumOfParams, s.send(protocol.MethodLeaderboard, "1", "2").Status)
}

// Register / login tests

func (s *DispatcherSuite) TestRegisterTwiceIsOutOfOrder() {
	s.Equal(protocol.StatusOK, s.sendAs("A", protocol.MethodRegister, "pw1").Status)
	s.Equal(protocol.StatusOutOfOrder, s.sendAs("A", protocol.MethodRegister, "pw2").Status)

	s.Equal(protocol.StatusOK, s.sendAs("A", protocol.MethodLogin, "pw1").Status)
	s.Equal(protocol.StatusIncorrect, s.sendAs("A", protocol.MethodLogin, "wrong").Status)
}

// Find / hint / solve tests

func (s *DispatcherSuite) TestFindScenario() {
	s.register("A")

	resp := s.send(protocol.MethodFind, "3")
	s.Equal(protocol.StatusOK, resp.Status)
	s.Equal("What is the 8th Fibonacci number?", resp.Body)

	resp = s.send(protocol.MethodFind, "3")
	s.Equal(protocol.StatusWithoutChange, resp.Status)
	s.Equal("What is the 8th Fibonacci number?", resp.Body)
}

func (s *DispatcherSuite) TestFindUnknownCache() {
	s.register("A")
	resp := s.send(protocol.MethodFind, "nonexistent")
	s.Equal(protocol.StatusNotFound, resp.Status)

	// Store unchanged: no record created.
	_, err := s.storage.GetFind(s.ctx, "A", "nonexistent")
	s.ErrorIs(err, model.ErrFindNotFound)
}

func (s *DispatcherSuite) TestHintFlow() {
	s.register("A")

	s.Equal(protocol.StatusOutOfOrder, s.send(protocol.MethodHint, "3").Status)

	s.send(protocol.MethodFind, "3")
	resp := s.send(protocol.MethodHint, "3")
	s.Equal(protocol.StatusOK, resp.Status)
	s.Equal("0, 1, 1, 2...", resp.Body)
}

func (s *DispatcherSuite) TestSolveScenario() {
	s.register("A")
	s.send(protocol.MethodFind, "3")

	s.Equal(protocol.StatusIncorrect, s.send(protocol.MethodSolve, "3", "hello").Status)

	rec, err := s.storage.GetFind(s.ctx, "A", "3")
	s.Require().NoError(err)
	s.Equal(1, rec.Attempts)

	s.Equal(protocol.StatusOK, s.send(protocol.MethodSolve, "3", "13").Status)

	rec, err = s.storage.GetFind(s.ctx, "A", "3")
	s.Require().NoError(err)
	s.Equal(2, rec.Attempts)
	s.NotNil(rec.TimeSolved)

	s.Equal(protocol.StatusOutOfOrder, s.send(protocol.MethodSolve, "3", "13").Status)
}

func (s *DispatcherSuite) TestSolveBeforeFind() {
	s.register("A")
	s.Equal(protocol.StatusOutOfOrder, s.send(protocol.MethodSolve, "3", "13").Status)
}

// Query tests

func (s *DispatcherSuite) TestScoreBody() {
	s.register("A")
	s.send(protocol.MethodFind, "3")
	s.send(protocol.MethodSolve, "3", "13")

	resp := s.send(protocol.MethodScore, "A")
	s.Require().Equal(protocol.StatusOK, resp.Status)

	var score model.PlayerScore
	s.Require().NoError(json.Unmarshal([]byte(resp.Body), &score))
	s.Equal(model.PlayerScore{Player: "A", Finds: 1, Solves: 1}, score)
}

func (s *DispatcherSuite) TestLeaderboard() {
	s.register("A")
	s.register("B")
	s.send(protocol.MethodFind, "3")
	s.send(protocol.MethodSolve, "3", "13")
	s.sendAs("B", protocol.MethodFind, "3")

	resp := s.send(protocol.MethodLeaderboard)
	s.Require().Equal(protocol.StatusOK, resp.Status)

	var scores []model.PlayerScore
	s.Require().NoError(json.Unmarshal([]byte(resp.Body), &scores))
	s.Require().Len(scores, 2)
	s.Equal("A", scores[0].Player)
	s.Equal("B", scores[1].Player)
}

func (s *DispatcherSuite) TestLeaderboardNegativeCountUsesDefault() {
	s.register("A")
	resp := s.send(protocol.MethodLeaderboard, "-1")
	s.Equal(protocol.StatusOK, resp.Status)
}

func (s *DispatcherSuite) TestLeaderboardBadCountIsException() {
	s.register("A")
	resp := s.send(protocol.MethodLeaderboard, "ten")
	s.Equal(protocol.StatusException, resp.Status)
	s.NotEmpty(resp.Body)
}

// Faster solve ranks first even with more attempts.
func (s *DispatcherSuite) TestCacheLeaderboardOrdersByElapsed() {
	s.register("A")
	s.register("B")

	s.sendAs("B", protocol.MethodFind, "3")
	s.clock.Advance(30 * time.Minute)
	s.sendAs("B", protocol.MethodSolve, "3", "13")

	s.sendAs("A", protocol.MethodFind, "3")
	s.clock.Advance(5 * time.Minute)
	s.sendAs("A", protocol.MethodSolve, "3", "wrong")
	s.sendAs("A", protocol.MethodSolve, "3", "13")

	resp := s.send(protocol.MethodCacheLeaderboard, "3")
	s.Require().Equal(protocol.StatusOK, resp.Status)

	var standings []model.CacheStanding
	s.Require().NoError(json.Unmarshal([]byte(resp.Body), &standings))
	s.Require().Len(standings, 2)
	s.Equal("A", standings[0].Player)
	s.Equal("B", standings[1].Player)
}

func (s *DispatcherSuite) TestCacheLeaderboardUnknownCache() {
	s.register("A")
	resp := s.send(protocol.MethodCacheLeaderboard, "nonexistent")
	s.Equal(protocol.StatusNotFound, resp.Status)
}
