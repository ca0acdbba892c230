// Package client implements the wire side of the browsing client: raw
// command sends, framed response receives and response decoding.
package client

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/fsbrowse/fsbrowse/internal/listing"
	"github.com/fsbrowse/fsbrowse/internal/protocol"
)

// Client is one established connection to a browsing server. Requests are
// strictly sequential: one command in flight at a time, synchronous
// request-reply.
type Client struct {
	conn net.Conn
}

// New returns a pointer to a new [Client] on an established connection.
func New(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Dial connects to the server at host:port.
func Dial(host string, port int) (*Client, error) {
	conn, err := net.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("(client) failed to connect: %w", err)
	}

	return New(conn), nil
}

// RequestListing asks the server for the subtree at rel (empty for the
// current root) and decodes the response. The raw response size is returned
// alongside, also when decoding fails.
func (c *Client) RequestListing(rel string) (*listing.Listing, int, error) {
	if err := c.send("ls " + rel); err != nil {
		return nil, 0, err
	}

	payload, err := protocol.ReadMessage(c.conn)
	if err != nil {
		return nil, 0, fmt.Errorf("(client) failed to receive listing: %w", err)
	}

	result := &listing.Listing{}
	if err := json.Unmarshal([]byte(payload), result); err != nil {
		return nil, len(payload), fmt.Errorf("(client) undecodable listing: %w", err)
	}

	return result, len(payload), nil
}

// ChangeRoot asks the server to change its current root and returns the
// server's literal response message.
func (c *Client) ChangeRoot(target string) (string, error) {
	if err := c.send("cd " + target); err != nil {
		return "", err
	}

	response, err := protocol.ReadMessage(c.conn)
	if err != nil {
		return "", fmt.Errorf("(client) failed to receive response: %w", err)
	}

	return response, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("(client) failed to close: %w", err)
	}

	return nil
}

// send writes one command as raw unframed UTF-8, per the wire contract.
func (c *Client) send(command string) error {
	if _, err := c.conn.Write([]byte(command)); err != nil {
		return fmt.Errorf("(client) failed to send command: %w", err)
	}

	return nil
}
