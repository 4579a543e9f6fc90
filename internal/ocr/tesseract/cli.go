package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/atlasocr/wasl/internal/ocr"
)

const defaultTimeout = 30 * time.Second

// CLI recognizes by running the tesseract binary per call: the crop is fed
// as PNG on stdin and word-level TSV is read back on stdout. It holds no
// state between calls, so a single instance is safe for concurrent workers.
type CLI struct {
	binary   string
	tessdata string
	timeout  time.Duration
}

// NewCLI builds the subprocess backend.
func NewCLI(opts Options) *CLI {
	c := &CLI{
		binary:   opts.Binary,
		tessdata: opts.Tessdata,
		timeout:  opts.Timeout,
	}
	if c.binary == "" {
		c.binary = "tesseract"
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	return c
}

func (c *CLI) Name() string { return "tesseract-cli" }

// Available reports whether the tesseract binary resolves on PATH.
func (c *CLI) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// Recognize implements ocr.Backend.
func (c *CLI) Recognize(ctx context.Context, img image.Image, req ocr.Request) ([]ocr.Token, error) {
	var input bytes.Buffer
	if err := png.Encode(&input, img); err != nil {
		return nil, &ocr.BackendError{Backend: c.Name(), Err: fmt.Errorf("encode crop: %w", err)}
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.binary, buildArgs(req)...) //nolint:gosec // G204: binary path comes from configuration
	cmd.Stdin = &input

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Region workers already run in parallel; keep each subprocess
	// single-threaded.
	cmd.Env = append(os.Environ(), "OMP_THREAD_LIMIT=1")
	if c.tessdata != "" {
		cmd.Env = append(cmd.Env, "TESSDATA_PREFIX="+c.tessdata)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ocr.BackendError{
			Backend: c.Name(),
			Err:     fmt.Errorf("%w (stderr: %s)", err, strings.TrimSpace(stderr.String())),
		}
	}
	return parseTSV(stdout.String()), nil
}

func (c *CLI) Close() error { return nil }

// buildArgs assembles the tesseract invocation: image from stdin, TSV to
// stdout, language and request settings in between.
func buildArgs(req ocr.Request) []string {
	args := []string{"stdin", "stdout"}
	if req.Language != "" {
		args = append(args, "-l", req.Language)
	}
	args = append(args, req.Args()...)
	return append(args, "tsv")
}
