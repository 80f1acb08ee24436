package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/tailor/config"
)

// scriptStep is a single action in a script.
type scriptStep struct {
	Action     string                   `yaml:"action"`
	Group      string                   `yaml:"group,omitempty"`
	Texture    string                   `yaml:"texture,omitempty"`
	Label      string                   `yaml:"label,omitempty"`
	Frames     int                      `yaml:"frames,omitempty"`
	Transition config.TransitionOptions `yaml:"transition,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `yaml:"steps"`
}

var scriptActions = []string{"draw", "erase", "base", "wait", "screenshot"}

// Script sequences preview operations and screenshots across frames for
// automated visual checks. Call Step once per frame, before the painter
// ticks. A draw, erase or base step blocks the script until its transition
// completes.
type Script struct {
	// ScreenshotDir is where screenshot steps write. Empty means the
	// working directory.
	ScreenshotDir string

	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool

	running chan error
	errs    []error
}

// LoadScript parses a YAML or JSON script of the form
//
//	steps:
//	  - {action: draw, group: shirt, texture: denim}
//	  - {action: wait, frames: 30}
//	  - {action: screenshot, label: denim}
//	  - {action: erase, group: shirt}
func LoadScript(data []byte) (*Script, error) {
	var f scriptFile
	d := yaml.NewDecoder(bytes.NewReader(data))
	d.KnownFields(true)
	if err := d.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, errors.New("parse script: no steps")
	}
	for i, st := range f.Steps {
		if !slices.Contains(scriptActions, st.Action) {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
		if (st.Action == "draw" || st.Action == "erase") && st.Group == "" {
			return nil, fmt.Errorf("parse script: step %d: %s needs a group", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Done reports whether every step has run to completion.
func (s *Script) Done() bool { return s.done }

// Err returns the failures of all steps so far, joined.
func (s *Script) Err() error { return errors.Join(s.errs...) }

// Step advances the script by one frame.
func (s *Script) Step(ctx context.Context, p *Preview) {
	if s.done {
		return
	}
	if s.running != nil {
		select {
		case err := <-s.running:
			s.running = nil
			if err != nil {
				s.errs = append(s.errs, err)
			}
		default:
			return
		}
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "draw":
		s.start(ctx, func(ctx context.Context) error {
			return p.DrawGroup(ctx, st.Group, st.Texture, st.Transition)
		})
	case "erase":
		s.start(ctx, func(ctx context.Context) error { return p.EraseGroup(ctx, st.Group) })
	case "base":
		s.start(ctx, func(ctx context.Context) error { return p.DrawBase(ctx, st.Transition) })
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "screenshot":
		painter := p.Painter()
		if painter == nil {
			s.errs = append(s.errs, fmt.Errorf("screenshot %q: %w", st.Label, ErrNotInitialized))
			break
		}
		if _, err := painter.Screenshot(s.ScreenshotDir, st.Label); err != nil {
			s.errs = append(s.errs, err)
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && s.running == nil {
		s.done = true
	}
}

func (s *Script) start(ctx context.Context, fn func(context.Context) error) {
	done := make(chan error, 1)
	s.running = done
	go func() { done <- fn(ctx) }()
}
