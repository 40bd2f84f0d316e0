// Package dispatch validates decoded requests and routes them to the
// game services. It is the error boundary of the server: every domain
// and protocol failure becomes a terminal status line here, and a panic
// in a handler becomes an Exception response instead of taking down the
// connection loop.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/protocol"
	"github.com/mikkelsonm/bitboxing/internal/services/auth"
	"github.com/mikkelsonm/bitboxing/internal/services/game"
	"github.com/mikkelsonm/bitboxing/internal/services/ranking"
)

// DefaultLeaderboardSize is used when a leaderboard request asks for a
// negative count or omits it.
const DefaultLeaderboardSize = 10

// Dispatcher routes requests to handlers
type Dispatcher struct {
	auth    *auth.Service
	game    *game.Service
	ranking *ranking.Service
	logger  *slog.Logger
}

// New creates a new Dispatcher
func New(auth *auth.Service, game *game.Service, ranking *ranking.Service, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		auth:    auth,
		game:    game,
		ranking: ranking,
		logger:  logger,
	}
}

// Handle processes one raw request and returns the raw response. The
// validation pipeline short-circuits at the first failure; nothing past
// a failed step runs.
func (d *Dispatcher) Handle(ctx context.Context, raw string) (resp string) {
	req := protocol.DecodeRequest(raw)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic",
				slog.String("sender", req.Sender),
				slog.String("method", req.Method),
				slog.Any("panic", r),
			)
			resp = protocol.EncodeResponse(protocol.StatusException, fmt.Sprintf("%v", r))
		}
	}()

	if req.Sender == "" || req.Version == "" || req.Method == "" {
		return d.reject(req, protocol.StatusBadRequest)
	}

	if req.Version != protocol.Version {
		return d.reject(req, protocol.StatusVersionNotSupport)
	}

	if req.Method != protocol.MethodRegister {
		registered, err := d.auth.IsRegistered(ctx, req.Sender)
		if err != nil {
			return d.fail(req, err)
		}
		if !registered {
			return d.reject(req, protocol.StatusUnauthenticated)
		}
	}

	arity, ok := protocol.MethodArity(req.Method)
	if !ok {
		return d.reject(req, protocol.StatusUnrecognized)
	}

	if !arity.Accepts(len(req.Args)) {
		return d.reject(req, protocol.StatusWrongNumOfParams)
	}

	status, body, err := d.dispatch(ctx, req)
	if err != nil {
		return d.fail(req, err)
	}
	return protocol.EncodeResponse(status, body)
}

// dispatch invokes the handler for an already-validated request.
func (d *Dispatcher) dispatch(ctx context.Context, req protocol.Request) (status, body string, err error) {
	switch req.Method {
	case protocol.MethodRegister:
		return d.handleRegister(ctx, req.Sender, req.Args[0])
	case protocol.MethodLogin:
		return d.handleLogin(ctx, req.Sender, req.Args[0])
	case protocol.MethodFind:
		return d.handleFind(ctx, req.Sender, model.CacheCode(req.Args[0]))
	case protocol.MethodHint:
		return d.handleHint(ctx, req.Sender, model.CacheCode(req.Args[0]))
	case protocol.MethodSolve:
		return d.handleSolve(ctx, req.Sender, model.CacheCode(req.Args[0]), req.Args[1])
	case protocol.MethodScore:
		return d.handleScore(ctx, req.Args[0])
	case protocol.MethodLeaderboard:
		return d.handleLeaderboard(ctx, req.Args)
	case protocol.MethodCacheLeaderboard:
		return d.handleCacheLeaderboard(ctx, model.CacheCode(req.Args[0]), req.Args[1:])
	default:
		// Unreachable: the arity lookup already filtered unknown methods.
		return "", "", fmt.Errorf("no handler for method %q", req.Method)
	}
}

func (d *Dispatcher) handleRegister(ctx context.Context, sender, password string) (string, string, error) {
	err := d.auth.Register(ctx, sender, password)
	if errors.Is(err, model.ErrUserExists) {
		return protocol.StatusOutOfOrder, "", nil
	}
	if err != nil {
		return "", "", err
	}
	return protocol.StatusOK, "", nil
}

func (d *Dispatcher) handleLogin(ctx context.Context, sender, password string) (string, string, error) {
	err := d.auth.Login(ctx, sender, password)
	if errors.Is(err, model.ErrWrongPassword) {
		return protocol.StatusIncorrect, "", nil
	}
	if err != nil {
		return "", "", err
	}
	return protocol.StatusOK, "", nil
}

func (d *Dispatcher) handleFind(ctx context.Context, sender string, cache model.CacheCode) (string, string, error) {
	question, already, err := d.game.Find(ctx, sender, cache)
	if errors.Is(err, model.ErrCacheNotFound) {
		return protocol.StatusNotFound, "", nil
	}
	if err != nil {
		return "", "", err
	}
	if already {
		return protocol.StatusWithoutChange, question, nil
	}
	return protocol.StatusOK, question, nil
}

func (d *Dispatcher) handleHint(ctx context.Context, sender string, cache model.CacheCode) (string, string, error) {
	hint, err := d.game.Hint(ctx, sender, cache)
	if errors.Is(err, model.ErrCacheNotFound) {
		return protocol.StatusNotFound, "", nil
	}
	if errors.Is(err, model.ErrOutOfOrder) {
		return protocol.StatusOutOfOrder, "", nil
	}
	if err != nil {
		return "", "", err
	}
	return protocol.StatusOK, hint, nil
}

func (d *Dispatcher) handleSolve(ctx context.Context, sender string, cache model.CacheCode, guess string) (string, string, error) {
	correct, err := d.game.Solve(ctx, sender, cache, guess)
	if errors.Is(err, model.ErrCacheNotFound) {
		return protocol.StatusNotFound, "", nil
	}
	if errors.Is(err, model.ErrOutOfOrder) {
		return protocol.StatusOutOfOrder, "", nil
	}
	if err != nil {
		return "", "", err
	}
	if !correct {
		return protocol.StatusIncorrect, "", nil
	}
	return protocol.StatusOK, "", nil
}

func (d *Dispatcher) handleScore(ctx context.Context, player string) (string, string, error) {
	score, err := d.ranking.Score(ctx, player)
	if err != nil {
		return "", "", err
	}
	body, err := json.Marshal(score)
	if err != nil {
		return "", "", err
	}
	return protocol.StatusOK, string(body), nil
}

func (d *Dispatcher) handleLeaderboard(ctx context.Context, args []string) (string, string, error) {
	count, err := parseCount(args)
	if err != nil {
		return "", "", err
	}

	scores, err := d.ranking.Top(ctx, count)
	if err != nil {
		return "", "", err
	}
	body, err := json.Marshal(scores)
	if err != nil {
		return "", "", err
	}
	return protocol.StatusOK, string(body), nil
}

func (d *Dispatcher) handleCacheLeaderboard(ctx context.Context, cache model.CacheCode, args []string) (string, string, error) {
	count, err := parseCount(args)
	if err != nil {
		return "", "", err
	}

	standings, err := d.ranking.CacheTop(ctx, cache, count)
	if errors.Is(err, model.ErrCacheNotFound) {
		return protocol.StatusNotFound, "", nil
	}
	if err != nil {
		return "", "", err
	}
	body, err := json.Marshal(standings)
	if err != nil {
		return "", "", err
	}
	return protocol.StatusOK, string(body), nil
}

// parseCount resolves an optional count argument. A missing or negative
// count means the server default. A non-integer count is a caller bug
// surfaced as an Exception, matching the protocol's contract.
func parseCount(args []string) (int, error) {
	if len(args) == 0 {
		return DefaultLeaderboardSize, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", args[0], err)
	}
	if n < 0 {
		return DefaultLeaderboardSize, nil
	}
	return n, nil
}

// reject logs and encodes a terminal validation status.
func (d *Dispatcher) reject(req protocol.Request, status string) string {
	d.logger.Warn("request rejected",
		slog.String("sender", req.Sender),
		slog.String("method", req.Method),
		slog.String("status", status),
	)
	return protocol.EncodeResponse(status, "")
}

// fail converts an internal fault to an Exception response with the
// diagnostic in the body.
func (d *Dispatcher) fail(req protocol.Request, err error) string {
	d.logger.Error("request failed",
		slog.String("sender", req.Sender),
		slog.String("method", req.Method),
		slog.String("error", err.Error()),
	)
	return protocol.EncodeResponse(protocol.StatusException, err.Error())
}
