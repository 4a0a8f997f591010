package fits

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"sync"

	"formatrisk/internal/services"
)

// missingMainClass is what the FITS launcher prints when its Java classpath
// cannot be resolved, typically because FITS, the accession, and the working
// directory are on different drives.
const missingMainClass = "Could not find or load main class edu.harvard.hul.ois.fits.Fits"

// errStart marks failures to launch the binary at all.
var errStart = errors.New("start command")

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps FITS command-line interactions.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a FITS client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "fits", "init", "fits binary required", nil)
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured FITS launcher.
func (c *Client) Binary() string {
	return c.binary
}

// IdentifyTree runs FITS recursively over root, writing one XML artifact per
// file into outDir.
func (c *Client) IdentifyTree(ctx context.Context, root, outDir string) error {
	return c.run(ctx, "identify tree", []string{"-r", "-i", root, "-o", outDir})
}

// IdentifyFile runs FITS on a single file, writing its XML artifact to outPath.
func (c *Client) IdentifyFile(ctx context.Context, path, outPath string) error {
	return c.run(ctx, "identify file", []string{"-i", path, "-o", outPath})
}

func (c *Client) run(ctx context.Context, operation string, args []string) error {
	var output outputTail
	err := c.exec.Run(ctx, c.binary, args, output.add)
	if output.missingMainClass {
		return services.Wrap(services.ErrToolUnavailable, "fits", operation,
			"unable to generate FITS XML; keep FITS, the accession, and the working directory on the same drive", nil)
	}
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if toolUnavailable(err) {
		return services.Wrap(services.ErrToolUnavailable, "fits", operation, fmt.Sprintf("cannot run %s", c.binary), err)
	}
	return services.Wrap(services.ErrExternalTool, "fits", operation, output.summary(), err)
}

func toolUnavailable(err error) bool {
	return errors.Is(err, errStart) || errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
}

// outputTail keeps the last few output lines for error messages.
type outputTail struct {
	mu               sync.Mutex
	lines            []string
	missingMainClass bool
}

const tailLines = 5

func (o *outputTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if strings.Contains(line, missingMainClass) {
		o.missingMainClass = true
	}
	o.lines = append(o.lines, line)
	if len(o.lines) > tailLines {
		o.lines = o.lines[len(o.lines)-tailLines:]
	}
}

func (o *outputTail) summary() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.lines) == 0 {
		return "fits exited with an error"
	}
	return strings.Join(o.lines, " | ")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", errStart, err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput != nil {
				onOutput(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
