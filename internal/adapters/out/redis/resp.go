// Package redis implements the rate limiter's distributed backend over a
// minimal hand-written RESP wire client. Only the small command surface the
// limiter needs is supported; each command runs on a fresh connection that
// is authenticated and bound to the configured database before use.
package redis

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"dronedelivery/internal/pkg/errs"
)

const serviceName = "redis"

// MaxDialTimeout caps how long a command waits for a connection.
const MaxDialTimeout = time.Second

// CommandError is an error reply from the server ("-" type). It is a normal
// protocol outcome, distinct from transport and framing failures.
type CommandError struct {
	Message string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return e.Message
}

// HasPrefix reports whether the error reply starts with the given code,
// e.g. "NOSCRIPT" or "WRONGTYPE".
func (e *CommandError) HasPrefix(code string) bool {
	return strings.HasPrefix(e.Message, code)
}

// Client is a minimal RESP client. It holds no connection state: every Do
// dials, optionally authenticates and selects a database, executes one
// command and closes the connection.
type Client struct {
	addr        string
	password    string
	db          int
	dialTimeout time.Duration
}

// NewClient creates a client for the given host:port address. A dialTimeout
// of zero or above MaxDialTimeout is clamped to MaxDialTimeout.
func NewClient(addr string, password string, db int, dialTimeout time.Duration) (*Client, error) {
	if addr == "" {
		return nil, errs.NewInvalidInputError("redis address is required")
	}
	if dialTimeout <= 0 || dialTimeout > MaxDialTimeout {
		dialTimeout = MaxDialTimeout
	}

	return &Client{
		addr:        addr,
		password:    password,
		db:          db,
		dialTimeout: dialTimeout,
	}, nil
}

// Do executes one command and returns the decoded reply:
//
//	simple string -> string
//	integer       -> int64
//	bulk string   -> string, nil bulk -> nil
//	array         -> []any (recursively decoded), nil array -> nil
//
// An error reply is returned as *CommandError. Transport failures surface as
// Unavailable errors, malformed frames as protocol errors.
func (c *Client) Do(ctx context.Context, args ...string) (any, error) {
	if len(args) == 0 {
		return nil, errs.NewInvalidInputError("redis command must not be empty")
	}

	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, errs.NewUnavailableErrorWithCause(serviceName, "cannot connect", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(c.dialTimeout))
	}

	reader := bufio.NewReader(conn)

	if c.password != "" {
		if err := c.roundTrip(conn, reader, "AUTH", c.password); err != nil {
			return nil, err
		}
	}
	if c.db != 0 {
		if err := c.roundTrip(conn, reader, "SELECT", strconv.Itoa(c.db)); err != nil {
			return nil, err
		}
	}

	if _, err := conn.Write(encodeCommand(args...)); err != nil {
		return nil, errs.NewUnavailableErrorWithCause(serviceName, "write failed", err)
	}
	return readReply(reader)
}

// roundTrip sends a setup command and fails on any non-OK outcome, including
// error replies, since a half-initialized connection must not be used.
func (c *Client) roundTrip(conn net.Conn, reader *bufio.Reader, args ...string) error {
	if _, err := conn.Write(encodeCommand(args...)); err != nil {
		return errs.NewUnavailableErrorWithCause(serviceName, "write failed", err)
	}
	reply, err := readReply(reader)
	if err != nil {
		return err
	}
	if cmdErr, ok := reply.(*CommandError); ok {
		return errs.NewUnavailableErrorWithCause(
			serviceName, fmt.Sprintf("%s rejected", args[0]), cmdErr)
	}
	return nil
}

// encodeCommand frames the arguments as a RESP array of bulk strings:
// *N\r\n followed by $len\r\n<arg>\r\n per argument.
func encodeCommand(args ...string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "*%d\r\n", len(args))
	for _, arg := range args {
		fmt.Fprintf(&b, "$%d\r\n%s\r\n", len(arg), arg)
	}
	return []byte(b.String())
}

func readReply(reader *bufio.Reader) (any, error) {
	prefix, err := reader.ReadByte()
	if err != nil {
		return nil, errs.NewUnavailableErrorWithCause(serviceName, "connection closed", err)
	}

	switch prefix {
	case '+':
		return readLine(reader)

	case '-':
		message, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		return &CommandError{Message: message}, nil

	case ':':
		line, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, errs.NewProtocolErrorWithCause(
				fmt.Sprintf("malformed integer reply %q", line), err)
		}
		return n, nil

	case '$':
		return readBulk(reader)

	case '*':
		return readArray(reader)

	default:
		return nil, errs.NewProtocolError(
			fmt.Sprintf("unsupported reply type %q", string(prefix)))
	}
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", errs.NewUnavailableErrorWithCause(serviceName, "connection closed", err)
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return "", errs.NewProtocolError("reply line missing CRLF terminator")
	}
	return line[:len(line)-2], nil
}

func readBulk(reader *bufio.Reader) (any, error) {
	line, err := readLine(reader)
	if err != nil {
		return nil, err
	}
	size, err := strconv.Atoi(line)
	if err != nil {
		return nil, errs.NewProtocolErrorWithCause(
			fmt.Sprintf("malformed bulk length %q", line), err)
	}
	if size == -1 {
		return nil, nil
	}
	if size < 0 {
		return nil, errs.NewProtocolError(fmt.Sprintf("negative bulk length %d", size))
	}

	buf := make([]byte, size+2)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, errs.NewUnavailableErrorWithCause(serviceName, "bulk reply truncated", err)
	}
	if buf[size] != '\r' || buf[size+1] != '\n' {
		return nil, errs.NewProtocolError("bulk reply missing CRLF terminator")
	}
	return string(buf[:size]), nil
}

func readArray(reader *bufio.Reader) (any, error) {
	line, err := readLine(reader)
	if err != nil {
		return nil, err
	}
	length, err := strconv.Atoi(line)
	if err != nil {
		return nil, errs.NewProtocolErrorWithCause(
			fmt.Sprintf("malformed array length %q", line), err)
	}
	if length == -1 {
		return nil, nil
	}
	if length < 0 {
		return nil, errs.NewProtocolError(fmt.Sprintf("negative array length %d", length))
	}

	items := make([]any, 0, length)
	for i := 0; i < length; i++ {
		item, err := readReply(reader)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
