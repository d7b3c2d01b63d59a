/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package docimport turns local files into markdown for ClickUp docs.
// Files must live under a configured import directory.
package docimport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tenebris-tech/x2md/convert"

	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/logging"
)

// DefaultMaxBytes caps the size of a file accepted for import
const DefaultMaxBytes = 10 << 20

// ErrDisabled is returned when no import directory is configured
var ErrDisabled = errors.New("file import is disabled: set import_dir in the configuration")

// Document is the markdown produced from a local file
type Document struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	Content   string `json:"-"`
	Converted bool   `json:"converted"`
	Bytes     int    `json:"bytes"`
}

// Importer loads files from a single base directory
type Importer struct {
	baseDir  string
	maxBytes int64
	logger   *logging.Logger
}

// Option configures an Importer
type Option func(*Importer)

// WithMaxBytes overrides DefaultMaxBytes
func WithMaxBytes(n int64) Option {
	return func(i *Importer) {
		if n > 0 {
			i.maxBytes = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(i *Importer) {
		i.logger = l
	}
}

// New creates an Importer rooted at baseDir. An empty baseDir disables imports.
func New(baseDir string, opts ...Option) *Importer {
	i := &Importer{
		baseDir:  baseDir,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Enabled reports whether an import directory is configured
func (i *Importer) Enabled() bool {
	return i != nil && i.baseDir != ""
}

// BaseDir returns the import directory
func (i *Importer) BaseDir() string {
	return i.baseDir
}

// Load reads path (relative to the import directory, or absolute inside it)
// and returns its markdown. Markdown and text files are read as-is; other
// formats are converted with x2md.
func (i *Importer) Load(path string) (*Document, error) {
	if !i.Enabled() {
		return nil, ErrDisabled
	}
	if !global.DirExists(i.baseDir) {
		return nil, fmt.Errorf("import directory %s does not exist", i.baseDir)
	}

	fullPath, err := global.ResolveWithinDir(i.baseDir, path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > i.maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, larger than the %d byte limit", path, info.Size(), i.maxBytes)
	}

	base := filepath.Base(fullPath)
	doc := &Document{
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
		Source: fullPath,
	}

	switch strings.ToLower(filepath.Ext(fullPath)) {
	case ".md", ".markdown", ".txt":
		if err := global.IsValidUTF8File(fullPath); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		doc.Content = string(data)
	default:
		content, err := i.convert(fullPath)
		if err != nil {
			return nil, err
		}
		doc.Content = content
		doc.Converted = true
	}

	doc.Bytes = len(doc.Content)
	i.logger.Infof("Loaded %s for import (%d bytes, converted=%t)", fullPath, doc.Bytes, doc.Converted)
	return doc, nil
}

// convert runs x2md on a copy of the file in a scratch directory so the
// import directory is never written to
func (i *Importer) convert(fullPath string) (string, error) {
	scratch, err := os.MkdirTemp("", "clickup-mcp-import-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			i.logger.Warnf("Failed to remove scratch directory %s: %v", scratch, err)
		}
	}()

	copyPath := filepath.Join(scratch, filepath.Base(fullPath))
	if err := copyFile(fullPath, copyPath); err != nil {
		return "", err
	}

	converter := convert.New(
		convert.WithRecursion(false),
		convert.WithSkipExisting(true),
	)
	result, err := converter.Convert(scratch)
	if err != nil {
		return "", fmt.Errorf("conversion failed: %w", err)
	}
	i.logger.Debugf("x2md on %s: converted=%d skipped=%d failed=%d", fullPath, result.Converted, result.Skipped, result.Failed)
	if result.Converted == 0 {
		return "", fmt.Errorf("unsupported or unreadable file format: %s", filepath.Ext(fullPath))
	}

	matches, err := filepath.Glob(filepath.Join(scratch, "*.md"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("conversion produced no markdown for %s", filepath.Base(fullPath))
	}

	if err := global.IsValidUTF8File(matches[0]); err != nil {
		return "", fmt.Errorf("converted output: %w", err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		return "", fmt.Errorf("failed to read converted output: %w", err)
	}
	return string(data), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
