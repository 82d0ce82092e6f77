package pdfcolumns

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Converter turns a PDF document into layout preserving plain text.
type Converter interface {
	Convert(ctx context.Context, pdf []byte) (string, error)
}

// Pdftotext runs poppler's pdftotext with -layout.
type Pdftotext struct {
	// defaults to "pdftotext" on PATH
	Path string
}

func (p Pdftotext) Convert(ctx context.Context, pdf []byte) (string, error) {
	bin := p.Path
	if bin == "" {
		bin = "pdftotext"
	}

	in, err := os.CreateTemp("", "legiscrape-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(in.Name())
	_, err = in.Write(pdf)
	if closeErr := in.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-layout", in.Name(), "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w (%s)", bin, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.String(), nil
}

// Text is a Converter that ignores its input and returns fixed text, used
// when the roster is already available as text.
type Text string

func (t Text) Convert(ctx context.Context, pdf []byte) (string, error) {
	return string(t), nil
}
