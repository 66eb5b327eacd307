// Package session persists and restores the state of a set of pipelines as a
// JSON document. Each data source is saved as its dataset provenance plus an
// ordered step list: builtin transforms as a name with their decoded
// arguments, script operators as their {label, script} fragment. Compiled
// modules and declared slots are derived state, rebuilt when the script is
// set again on load.
package session

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/psavery/tomviz/internal/gridfile"
	"github.com/psavery/tomviz/internal/operator"
)

// Version identifies the document layout.
const Version = "1.0"

// Document is a saved session.
type Document struct {
	Version string   `json:"version"`
	Sources []Source `json:"sources"`
}

// Source is one data source's persistent state.
type Source struct {
	Name    string           `json:"name"`
	Dataset gridfile.Dataset `json:"dataset"`
	Steps   []Step           `json:"steps"`
}

// Step is one persisted pipeline step. Exactly one of Builtin or Script is
// set; a builtin step also carries its label and arguments, a script step's
// label lives inside the fragment.
type Step struct {
	Label   string             `json:"label,omitempty"`
	Builtin string             `json:"builtin,omitempty"`
	Args    json.RawMessage    `json:"args,omitempty"`
	Script  *operator.Fragment `json:"script,omitempty"`
}

// Validate checks that the step names exactly one transform source.
func (s *Step) Validate() error {
	switch {
	case s.Builtin != "" && s.Script != nil:
		return fmt.Errorf("step declares both builtin %q and a script", s.Builtin)
	case s.Builtin == "" && s.Script == nil:
		return fmt.Errorf("step declares neither a builtin nor a script")
	}
	return nil
}

// BuiltinStep captures a builtin transform with its decoded arguments.
func BuiltinStep(label, name string, input any) (Step, error) {
	s := Step{Label: label, Builtin: name}
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			return s, fmt.Errorf("encode arguments for builtin %q: %w", name, err)
		}
		s.Args = raw
	}
	return s, nil
}

// ScriptStep captures a script operator's persistent identity.
func ScriptStep(op *operator.Operator) Step {
	frag := op.Serialize()
	return Step{Script: &frag}
}

// Write stores a document as indented JSON.
func Write(w io.Writer, doc *Document) error {
	doc.Version = Version
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Read loads a document and checks its version.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("unsupported session version %q", doc.Version)
	}
	return &doc, nil
}
