package signal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/teemow/inboxdigest/internal/delivery"
)

// runner executes signal-cli and returns stdout and stderr.
type runner func(ctx context.Context, args ...string) (string, string, error)

func execRunner(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "signal-cli", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String(), stderr.String(), err
}

// Client sends messages as one registered Signal account.
type Client struct {
	userID  string // The phone number registered with signal-cli (e.g., "+15551234567")
	target  Target
	run     runner
	groupID string
}

// NewClient creates a client sending as userID to target.
// The phone number must be already registered with signal-cli.
func NewClient(userID string, target Target) (*Client, error) {
	if err := validate(userID, target); err != nil {
		return nil, err
	}

	// Verify signal-cli is installed by checking if the command exists
	if _, err := exec.LookPath("signal-cli"); err != nil {
		return nil, &SignalError{
			Op:     "initialize",
			UserID: userID,
			Err:    fmt.Errorf("signal-cli not found in PATH. Please install signal-cli: https://github.com/AsamK/signal-cli"),
		}
	}

	return &Client{userID: userID, target: target, run: execRunner}, nil
}

func validate(userID string, target Target) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}
	// signal-cli requires the leading +
	if !strings.HasPrefix(userID, "+") {
		return fmt.Errorf("userID must be a phone number starting with + (e.g., +15551234567)")
	}
	if (target.Group == "") == (target.Recipient == "") {
		return fmt.Errorf("exactly one of group or recipient must be set")
	}
	if target.Recipient != "" && !strings.HasPrefix(target.Recipient, "+") {
		return fmt.Errorf("recipient must be a phone number starting with + (e.g., +15551234567)")
	}
	return nil
}

// UserID returns the phone number associated with this client
func (c *Client) UserID() string {
	return c.userID
}

// Check resolves the target group. Direct recipients need no lookup.
func (c *Client) Check(ctx context.Context) error {
	if c.target.Group == "" {
		return nil
	}
	id, err := c.groupIDByName(ctx, c.target.Group)
	if err != nil {
		return err
	}
	c.groupID = id
	return nil
}

// Send posts text to the target.
func (c *Client) Send(ctx context.Context, text string) error {
	if c.target.Group != "" {
		return c.sendGroup(ctx, text)
	}
	return c.sendDirect(ctx, c.target.Recipient, text)
}

// Close is a no-op; signal-cli runs per message.
func (c *Client) Close() error {
	return nil
}

func (c *Client) sendDirect(ctx context.Context, recipient, message string) error {
	if message == "" {
		return &SignalError{Op: "send", UserID: c.userID, Err: fmt.Errorf("message cannot be empty")}
	}

	// signal-cli -u USER_ID send RECIPIENT -m MESSAGE
	_, stderr, err := c.run(ctx, "-u", c.userID, "send", recipient, "-m", message)
	if err != nil {
		return &SignalError{
			Op:     "send",
			UserID: c.userID,
			Err:    fmt.Errorf("failed to send message: %w (stderr: %s)", err, stderr),
		}
	}
	return nil
}

func (c *Client) sendGroup(ctx context.Context, message string) error {
	if message == "" {
		return &SignalError{Op: "sendGroup", UserID: c.userID, Err: fmt.Errorf("message cannot be empty")}
	}

	if c.groupID == "" {
		if err := c.Check(ctx); err != nil {
			return err
		}
	}

	// signal-cli -u USER_ID send -g GROUP_ID -m MESSAGE
	_, stderr, err := c.run(ctx, "-u", c.userID, "send", "-g", c.groupID, "-m", message)
	if err != nil {
		return &SignalError{
			Op:     "sendGroup",
			UserID: c.userID,
			Err:    fmt.Errorf("failed to send group message: %w (stderr: %s)", err, stderr),
		}
	}
	return nil
}

// groupIDByName looks up a group ID by its exact name.
func (c *Client) groupIDByName(ctx context.Context, name string) (string, error) {
	groups, err := c.ListGroups(ctx)
	if err != nil {
		return "", err
	}
	for _, g := range groups {
		if g.Name == name {
			return g.ID, nil
		}
	}
	return "", &SignalError{
		Op:     "sendGroup",
		UserID: c.userID,
		Err:    fmt.Errorf("group %q: %w", name, delivery.ErrNotFound),
	}
}

// ListGroups returns a list of all groups the user is a member of
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	// signal-cli -u USER_ID listGroups
	stdout, stderr, err := c.run(ctx, "-u", c.userID, "listGroups")
	if err != nil {
		return nil, &SignalError{
			Op:     "listGroups",
			UserID: c.userID,
			Err:    fmt.Errorf("failed to list groups: %w (stderr: %s)", err, stderr),
		}
	}
	return parseGroups(stdout), nil
}

// parseGroups reads listGroups output. signal-cli prints either one
// "Id: ... Name: ..." line per group or the fields on separate lines.
func parseGroups(output string) []Group {
	groups := []Group{}
	var current *Group

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "Id: ") {
			if current != nil {
				groups = append(groups, *current)
			}
			rest := strings.TrimPrefix(line, "Id: ")
			current = &Group{ID: rest}
			if id, tail, ok := strings.Cut(rest, " Name: "); ok {
				current.ID = id
				current.Name = nameField(tail)
			}
			continue
		}
		if strings.HasPrefix(line, "Name: ") && current != nil {
			current.Name = nameField(strings.TrimPrefix(line, "Name: "))
		}
	}

	if current != nil {
		groups = append(groups, *current)
	}
	return groups
}

// nameField trims the trailing fields signal-cli prints after a group name.
func nameField(s string) string {
	name, _, _ := strings.Cut(s, " Active: ")
	return strings.TrimSpace(name)
}
