package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Placeholders recognized in command templates.
const (
	PlaceholderArtifact   = "{artifact}"
	PlaceholderInput      = "{input}"
	PlaceholderOutput     = "{output}"
	PlaceholderNamespaces = "{namespaces}"
)

// ErrEmptyCommand is returned for a blank command template.
var ErrEmptyCommand = errors.New("empty command template")

// stderrLimit bounds how much tool output is quoted in errors.
const stderrLimit = 2048

// Command runs an external tool from a whitespace-separated template such
// as "java -jar stitch.jar proposeFieldNames {artifact} {input} {output}".
// Arguments are not shell-expanded and cannot contain spaces.
type Command struct {
	args   []string
	logger *slog.Logger
}

// NewCommand parses a command template.
func NewCommand(template string, logger *slog.Logger) (*Command, error) {
	args := strings.Fields(template)
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Command{args: args, logger: logger}, nil
}

// Propose implements Proposer.
func (c *Command) Propose(ctx context.Context, artifactPath, inPath, outPath string) error {
	return c.run(ctx, map[string][]string{
		PlaceholderArtifact: {artifactPath},
		PlaceholderInput:    {inPath},
		PlaceholderOutput:   {outPath},
	})
}

// Reorder implements Reorderer. The {namespaces} placeholder expands to one
// argument per namespace.
func (c *Command) Reorder(ctx context.Context, inPath, outPath string, namespaces []string) error {
	return c.run(ctx, map[string][]string{
		PlaceholderInput:      {inPath},
		PlaceholderOutput:     {outPath},
		PlaceholderNamespaces: namespaces,
	})
}

// Expand returns the argument list with placeholders substituted.
func (c *Command) Expand(values map[string][]string) []string {
	out := make([]string, 0, len(c.args))

	for _, arg := range c.args {
		if vals, ok := values[arg]; ok {
			out = append(out, vals...)

			continue
		}

		for ph, vals := range values {
			if len(vals) == 1 {
				arg = strings.ReplaceAll(arg, ph, vals[0])
			}
		}

		out = append(out, arg)
	}

	return out
}

func (c *Command) run(ctx context.Context, values map[string][]string) error {
	args := c.Expand(values)

	c.logger.DebugContext(ctx, "external: running tool", "args", args)

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > stderrLimit {
			msg = msg[len(msg)-stderrLimit:]
		}

		if msg != "" {
			return fmt.Errorf("running %s: %w: %s", args[0], err, msg)
		}

		return fmt.Errorf("running %s: %w", args[0], err)
	}

	return nil
}
