package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mikkelsonm/bitboxing/internal/client"
	"github.com/mikkelsonm/bitboxing/internal/dependencies/mocks"
	"github.com/mikkelsonm/bitboxing/internal/dispatch"
	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/protocol"
	"github.com/mikkelsonm/bitboxing/internal/services/auth"
	"github.com/mikkelsonm/bitboxing/internal/services/game"
	"github.com/mikkelsonm/bitboxing/internal/services/ranking"
	"github.com/mikkelsonm/bitboxing/internal/storage/memory"
	"github.com/mikkelsonm/bitboxing/internal/testutil"
)

type ServerSuite struct {
	suite.Suite
	server *Server
	ctx    context.Context
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.ctx = context.Background()

	storage := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()

	gameService := game.New(storage, clk, logger)
	s.Require().NoError(gameService.SeedCatalog(s.ctx, map[model.CacheCode]model.Puzzle{
		"3": {Question: "What is the 8th Fibonacci number?", Answer: "13", Hint: "0, 1, 1, 2..."},
	}))

	dispatcher := dispatch.New(
		auth.New(storage, clk, logger),
		gameService,
		ranking.New(storage),
		logger,
	)

	config := DefaultConfig()
	config.Addr = "127.0.0.1:0"
	s.server = New(dispatcher, config, logger)

	s.Require().NoError(s.server.Listen())
	go func() { _ = s.server.Serve() }()
}

func (s *ServerSuite) TearDownTest() {
	s.Require().NoError(s.server.Shutdown(s.ctx))
}

func (s *ServerSuite) TestRoundTrip() {
	c := client.New(s.server.Addr(), "A")

	s.Require().NoError(c.Register(s.ctx, "pw"))

	question, repeat, err := c.Find(s.ctx, "3")
	s.Require().NoError(err)
	s.False(repeat)
	s.Equal("What is the 8th Fibonacci number?", question)

	_, repeat, err = c.Find(s.ctx, "3")
	s.Require().NoError(err)
	s.True(repeat)

	correct, err := c.Solve(s.ctx, "3", "hello")
	s.Require().NoError(err)
	s.False(correct)

	correct, err = c.Solve(s.ctx, "3", "13")
	s.Require().NoError(err)
	s.True(correct)

	score, err := c.Score(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal(model.PlayerScore{Player: "A", Finds: 1, Solves: 1}, score)
}

func (s *ServerSuite) TestStatusErrors() {
	c := client.New(s.server.Addr(), "ghost")

	_, _, err := c.Find(s.ctx, "3")
	var statusErr *client.StatusError
	s.Require().ErrorAs(err, &statusErr)
	s.Equal(protocol.StatusUnauthenticated, statusErr.Status)

	s.Require().NoError(c.Register(s.ctx, "pw"))
	_, _, err = c.Find(s.ctx, "nonexistent")
	s.Require().ErrorAs(err, &statusErr)
	s.Equal(protocol.StatusNotFound, statusErr.Status)
}

func (s *ServerSuite) TestLeaderboards() {
	c := client.New(s.server.Addr(), "A")
	s.Require().NoError(c.Register(s.ctx, "pw"))
	_, _, err := c.Find(s.ctx, "3")
	s.Require().NoError(err)

	scores, err := c.Leaderboard(s.ctx, -1)
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal("A", scores[0].Player)

	standings, err := c.CacheLeaderboard(s.ctx, "3", -1)
	s.Require().NoError(err)
	s.Require().Len(standings, 1)
	s.Equal("A", standings[0].Player)
}

// A raw connection exercises the wire format without the client's
// conveniences.
func (s *ServerSuite) TestRawExchange() {
	conn, err := net.Dial("tcp", s.server.Addr())
	s.Require().NoError(err)
	defer func() { _ = conn.Close() }()

	_, err = conn.Write([]byte("A|0.1\r\nREGISTER|pw\r\n"))
	s.Require().NoError(err)

	buf := make([]byte, protocol.MaxMessageSize)
	n, err := conn.Read(buf)
	s.Require().NoError(err)
	s.Equal("OK\r\n", string(buf[:n]))
}

func (s *ServerSuite) TestMalformedRequestGetsBadRequest() {
	conn, err := net.Dial("tcp", s.server.Addr())
	s.Require().NoError(err)
	defer func() { _ = conn.Close() }()

	_, err = conn.Write([]byte("garbage"))
	s.Require().NoError(err)

	buf := make([]byte, protocol.MaxMessageSize)
	n, err := conn.Read(buf)
	s.Require().NoError(err)
	s.Equal("Bad Request\r\n", string(buf[:n]))
}

func (s *ServerSuite) TestShutdownStopsAccepting() {
	addr := s.server.Addr()
	s.Require().NoError(s.server.Shutdown(s.ctx))

	_, err := net.DialTimeout("tcp", addr, time.Second)
	s.Error(err)

	// Replace the server so TearDownTest's shutdown is a no-op on a
	// fresh instance.
	s.server = New(nil, DefaultConfig(), testutil.NopLogger())
}
