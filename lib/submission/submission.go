// Copyright 2026 The Courseware Authors
// SPDX-License-Identifier: Apache-2.0

// Package submission assembles grading archives. A packaging call
// layers a working tree from the canonical exercise (a stub archive
// or the course clone), overlays the student's submitted work, adds
// optional sandbox parameters, and serializes the result for the
// grading server along with the sandbox image it should run under.
//
// Every call builds its tree in a private uniquely-named temporary
// directory, so independent packaging calls may run concurrently
// without coordination.
package submission

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/courseware-foundation/courseware/lib/archive"
	"github.com/courseware-foundation/courseware/lib/pack"
	"github.com/courseware-foundation/courseware/lib/projecttype"
	"github.com/courseware-foundation/courseware/lib/unpack"
)

// osLitter names platform artifacts that never belong in a grading
// archive. An entry whose path contains any of these segments is
// dropped from every layer.
var osLitter = map[string]bool{
	".DS_Store":   true,
	"Thumbs.db":   true,
	"desktop.ini": true,
	".directory":  true,
	"__MACOSX":    true,
}

// ideOverlay names IDE metadata entries carried over from the
// student's submission even though no student file policy selects
// them, so the grader sees the project the way the student's IDE
// configured it.
var ideOverlay = map[string]bool{
	"nbproject":  true,
	".classpath": true,
	".project":   true,
	".settings":  true,
	".idea":      true,
}

// Packager builds grading archives from student submissions.
type Packager struct {
	logger       *slog.Logger
	materializer *unpack.Materializer
	compressor   *pack.Compressor
}

// New returns a packager. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Packager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packager{
		logger:       logger,
		materializer: unpack.New(logger),
		compressor:   pack.New(logger),
	}
}

// Input describes one packaging request.
type Input struct {
	// Submission holds the student's uploaded archive.
	Submission       []byte
	SubmissionFormat archive.Format

	// NaiveExtract overlays every submission entry instead of only
	// the paths the exercise's student file policy selects.
	NaiveExtract bool

	// OutputPath is where the finished archive is written. Parent
	// directories are created as needed.
	OutputPath   string
	OutputFormat archive.Format

	// NoPrefix suppresses the course/exercise entry path prefix.
	NoPrefix bool

	// Params, when non-nil and non-empty, are rendered into the
	// params file at the working tree root.
	Params *Params

	// ClonePath is the canonical exercise checkout. It is the base
	// layer when Stub is nil, and its trailing path segments name
	// the course and exercise for the archive prefix.
	ClonePath string

	// Stub, when non-nil, replaces the clone as the base layer.
	Stub       []byte
	StubFormat archive.Format
}

// Result reports where the archive landed and how to run it.
type Result struct {
	// OutputPath echoes Input.OutputPath.
	OutputPath string

	// SandboxImage identifies the execution environment for the
	// submission's tests: the project configuration override when
	// set, else the project family's default.
	SandboxImage string
}

// PrepareSubmission builds the grading archive for one submission.
func (p *Packager) PrepareSubmission(input Input) (*Result, error) {
	workDir, err := os.MkdirTemp("", "courseware-submission-")
	if err != nil {
		return nil, fmt.Errorf("creating working directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	if input.Stub != nil {
		if err := extractAll(input.Stub, input.StubFormat, workDir); err != nil {
			return nil, fmt.Errorf("extracting stub archive: %w", err)
		}
	} else {
		if err := copyTree(input.ClonePath, workDir); err != nil {
			return nil, fmt.Errorf("copying exercise clone: %w", err)
		}
	}

	if err := p.overlaySubmission(input, workDir); err != nil {
		return nil, err
	}

	if input.Params != nil && !input.Params.Empty() {
		paramsPath := filepath.Join(workDir, ParamsFileName)
		if err := os.WriteFile(paramsPath, input.Params.Render(), 0o644); err != nil {
			return nil, fmt.Errorf("writing params file: %w", err)
		}
	}

	options := pack.Options{Format: input.OutputFormat, Deterministic: true}
	if !input.NoPrefix {
		options.Prefix = submissionPrefix(input.ClonePath)
	}
	packed, err := p.compressor.Compress(workDir, options)
	if err != nil {
		return nil, fmt.Errorf("serializing working tree: %w", err)
	}

	if dir := filepath.Dir(input.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(input.OutputPath, packed.Data, 0o644); err != nil {
		return nil, fmt.Errorf("writing output archive: %w", err)
	}

	image, err := projecttype.SandboxImageFor(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolving sandbox image: %w", err)
	}

	p.logger.Info("submission packaged",
		"output", input.OutputPath,
		"format", input.OutputFormat.String(),
		"sandbox_image", image)
	return &Result{OutputPath: input.OutputPath, SandboxImage: image}, nil
}

// overlaySubmission writes the student's work on top of the base
// layer. Naive mode takes every entry; policy mode takes only
// student-owned paths plus the IDE metadata overlay.
func (p *Packager) overlaySubmission(input Input, workDir string) error {
	if input.NaiveExtract {
		if err := extractAll(input.Submission, input.SubmissionFormat, workDir); err != nil {
			return fmt.Errorf("extracting submission: %w", err)
		}
		return nil
	}

	step := archive.RootStep(archive.DefaultRootStep)
	if family, ok := projecttype.Detect(workDir); ok {
		step = family.RootStep()
	}
	filePolicy, err := projecttype.PolicyFor(workDir)
	if err != nil {
		return fmt.Errorf("resolving student file policy: %w", err)
	}

	// The root is located once, tolerantly: a submission without the
	// family's marker file (a learner zipping only their src tree)
	// overlays from its top level instead of failing.
	root, err := findRoot(input.Submission, input.SubmissionFormat, step)
	if err != nil {
		return fmt.Errorf("locating submission root: %w", err)
	}

	if err := p.materializer.ExtractStudentFiles(input.Submission, input.SubmissionFormat, workDir, filePolicy, rootAt(root)); err != nil {
		return fmt.Errorf("extracting student files: %w", err)
	}
	if err := overlayIDEFiles(input.Submission, input.SubmissionFormat, workDir, root); err != nil {
		return fmt.Errorf("overlaying IDE files: %w", err)
	}
	return nil
}

// rootAt pins a root scan to an already-located root.
func rootAt(root string) archive.RootStep {
	return func(*archive.Entry) (string, bool) {
		return root, true
	}
}

// overlayIDEFiles extracts submission entries whose first path
// segment under the project root is IDE metadata.
func overlayIDEFiles(data []byte, format archive.Format, workDir, root string) error {
	opened, err := archive.Open(data, format)
	if err != nil {
		return err
	}
	for {
		entry, err := opened.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		relPath, under := underRoot(entry.Path, root)
		if !under || isLitter(relPath) {
			continue
		}
		first, _, _ := strings.Cut(relPath, "/")
		if !ideOverlay[first] {
			continue
		}
		if err := writeEntry(entry, filepath.Join(workDir, filepath.FromSlash(relPath))); err != nil {
			return err
		}
	}
}

// extractAll writes every archive entry relative to the archive root,
// minus OS litter, overwriting existing files.
func extractAll(data []byte, format archive.Format, target string) error {
	opened, err := archive.Open(data, format)
	if err != nil {
		return err
	}
	for {
		entry, err := opened.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if isLitter(entry.Path) {
			continue
		}
		if err := writeEntry(entry, filepath.Join(target, filepath.FromSlash(entry.Path))); err != nil {
			return err
		}
	}
}

func writeEntry(entry *archive.Entry, destination string) error {
	if entry.IsDir {
		if err := os.MkdirAll(destination, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", entry.Path, err)
		}
		return nil
	}
	content, err := io.ReadAll(entry.Reader)
	if err != nil {
		return fmt.Errorf("reading archive entry %s: %w", entry.Path, err)
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", entry.Path, err)
	}
	if err := os.WriteFile(destination, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", entry.Path, err)
	}
	return nil
}

// copyTree copies source into target, skipping OS litter.
func copyTree(source, target string) error {
	return filepath.WalkDir(source, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if osLitter[entry.Name()] {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		relPath, err := filepath.Rel(source, current)
		if err != nil {
			return err
		}
		destination := filepath.Join(target, relPath)
		if entry.IsDir() {
			return os.MkdirAll(destination, 0o755)
		}
		content, err := os.ReadFile(current)
		if err != nil {
			return err
		}
		return os.WriteFile(destination, content, 0o644)
	})
}

// findRoot locates the project root on a throwaway handle. A missing
// root maps to the archive root so flat submissions still overlay.
func findRoot(data []byte, format archive.Format, step archive.RootStep) (string, error) {
	opened, err := archive.Open(data, format)
	if err != nil {
		return "", err
	}
	root, err := archive.FindProjectRoot(opened, step)
	if errors.Is(err, archive.ErrNoProjectRoot) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return root, nil
}

// underRoot strips the project root prefix from an entry path.
func underRoot(entryPath, root string) (string, bool) {
	if root == "" {
		return entryPath, entryPath != ""
	}
	if strings.HasPrefix(entryPath, root+"/") {
		return entryPath[len(root)+1:], true
	}
	return "", false
}

// isLitter reports whether any path segment is an OS artifact.
func isLitter(relPath string) bool {
	for _, segment := range strings.Split(relPath, "/") {
		if osLitter[segment] {
			return true
		}
	}
	return false
}

// submissionPrefix derives "<course>/<exercise>" from the clone
// path's trailing segments.
func submissionPrefix(clonePath string) string {
	cleaned := path.Clean(filepath.ToSlash(clonePath))
	exercise := path.Base(cleaned)
	course := path.Base(path.Dir(cleaned))
	if course == "/" || course == "." {
		return exercise
	}
	return course + "/" + exercise
}
