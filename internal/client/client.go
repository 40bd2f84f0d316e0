// Package client is a small wire client. It opens one connection per
// request, mirroring the server's one-exchange-per-connection model.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/mikkelsonm/bitboxing/internal/model"
	"github.com/mikkelsonm/bitboxing/internal/protocol"
)

// Client talks to a server on behalf of one sender
type Client struct {
	addr    string
	sender  string
	timeout time.Duration
}

// New creates a new client
func New(addr, sender string) *Client {
	return &Client{
		addr:    addr,
		sender:  sender,
		timeout: 30 * time.Second,
	}
}

// StatusError is a non-OK terminal status from the server
type StatusError struct {
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Body)
	}
	return e.Status
}

// Do performs one request/response exchange
func (c *Client) Do(ctx context.Context, method string, args ...string) (protocol.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return protocol.Response{}, fmt.Errorf("set deadline: %w", err)
		}
	}

	raw := protocol.EncodeRequest(c.sender, protocol.Version, method, args, "")
	if len(raw) > protocol.MaxMessageSize {
		return protocol.Response{}, fmt.Errorf("request exceeds %d bytes", protocol.MaxMessageSize)
	}
	if _, err := conn.Write([]byte(raw)); err != nil {
		return protocol.Response{}, fmt.Errorf("write failed: %w", err)
	}

	// The server closes the connection after its single write, so read
	// to EOF, capped at the message limit.
	data, err := io.ReadAll(io.LimitReader(conn, protocol.MaxMessageSize))
	if err != nil && !errors.Is(err, io.EOF) {
		return protocol.Response{}, fmt.Errorf("read failed: %w", err)
	}
	if len(data) == 0 {
		return protocol.Response{}, errors.New("empty response")
	}

	return protocol.DecodeResponse(string(data)), nil
}

// do runs a request and converts non-OK statuses to errors, except
// statuses listed in tolerate.
func (c *Client) do(ctx context.Context, method string, tolerate []string, args ...string) (protocol.Response, error) {
	resp, err := c.Do(ctx, method, args...)
	if err != nil {
		return protocol.Response{}, err
	}
	if resp.Status == protocol.StatusOK {
		return resp, nil
	}
	for _, s := range tolerate {
		if resp.Status == s {
			return resp, nil
		}
	}
	return resp, &StatusError{Status: resp.Status, Body: resp.Body}
}

// Register registers the client's sender
func (c *Client) Register(ctx context.Context, password string) error {
	_, err := c.do(ctx, protocol.MethodRegister, nil, password)
	return err
}

// Login verifies the sender's password
func (c *Client) Login(ctx context.Context, password string) error {
	_, err := c.do(ctx, protocol.MethodLogin, nil, password)
	return err
}

// Find reports a cache as found and returns its question. The repeat
// result is true when the cache had already been found.
func (c *Client) Find(ctx context.Context, cache model.CacheCode) (question string, repeat bool, err error) {
	resp, err := c.do(ctx, protocol.MethodFind, []string{protocol.StatusWithoutChange}, string(cache))
	if err != nil {
		return "", false, err
	}
	return resp.Body, resp.Status == protocol.StatusWithoutChange, nil
}

// Hint returns the hint for a found cache
func (c *Client) Hint(ctx context.Context, cache model.CacheCode) (string, error) {
	resp, err := c.do(ctx, protocol.MethodHint, nil, string(cache))
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

// Solve submits an answer. It returns false without error when the
// answer is wrong.
func (c *Client) Solve(ctx context.Context, cache model.CacheCode, answer string) (bool, error) {
	resp, err := c.do(ctx, protocol.MethodSolve, []string{protocol.StatusIncorrect}, string(cache), answer)
	if err != nil {
		return false, err
	}
	return resp.Status == protocol.StatusOK, nil
}

// Score returns a player's game-wide totals
func (c *Client) Score(ctx context.Context, player string) (model.PlayerScore, error) {
	resp, err := c.do(ctx, protocol.MethodScore, nil, player)
	if err != nil {
		return model.PlayerScore{}, err
	}
	var score model.PlayerScore
	if err := json.Unmarshal([]byte(resp.Body), &score); err != nil {
		return model.PlayerScore{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return score, nil
}

// Leaderboard returns the top players. A negative count requests the
// server default.
func (c *Client) Leaderboard(ctx context.Context, count int) ([]model.PlayerScore, error) {
	var args []string
	if count >= 0 {
		args = append(args, fmt.Sprintf("%d", count))
	}
	resp, err := c.do(ctx, protocol.MethodLeaderboard, nil, args...)
	if err != nil {
		return nil, err
	}
	var scores []model.PlayerScore
	if err := json.Unmarshal([]byte(resp.Body), &scores); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return scores, nil
}

// CacheLeaderboard returns the standings for one cache
func (c *Client) CacheLeaderboard(ctx context.Context, cache model.CacheCode, count int) ([]model.CacheStanding, error) {
	args := []string{string(cache)}
	if count >= 0 {
		args = append(args, fmt.Sprintf("%d", count))
	}
	resp, err := c.do(ctx, protocol.MethodCacheLeaderboard, nil, args...)
	if err != nil {
		return nil, err
	}
	var standings []model.CacheStanding
	if err := json.Unmarshal([]byte(resp.Body), &standings); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return standings, nil
}
