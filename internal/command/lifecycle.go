package command

import "github.com/mark3labs/specforge/internal/spec"

const (
	KindSave        Kind = "SAVE"
	KindUndo        Kind = "UNDO"
	KindResetSpec   Kind = "RESET_SPEC"
	KindReplaceSpec Kind = "REPLACE_SPEC"
)

// Save records the live document as the snapshot.
type Save struct{}

func (Save) Kind() Kind { return KindSave }

func (Save) applyState(s State) State {
	s.Snapshot = s.Document.Clone()
	return s
}

// Undo restores a snapshot. An explicit Snapshot, typically read back from
// persistent storage, wins over the one held in State. With neither the
// command does nothing.
type Undo struct {
	Snapshot *spec.Document `json:"snapshot,omitempty"`
}

func (Undo) Kind() Kind { return KindUndo }

func (c Undo) applyState(s State) State {
	snap := c.Snapshot
	if snap == nil {
		snap = s.Snapshot
	}
	if snap == nil {
		return s
	}
	s.Document = spec.PreProcess(snap.Clone())
	return s
}

// ResetSpec discards the document in favour of the built-in default. The
// snapshot survives.
type ResetSpec struct{}

func (ResetSpec) Kind() Kind { return KindResetSpec }

func (ResetSpec) applyState(s State) State {
	s.Document = spec.NewDefaultDocument()
	return s
}

// ReplaceSpec installs an imported document.
type ReplaceSpec struct {
	Document *spec.Document `json:"document"`
}

func (ReplaceSpec) Kind() Kind { return KindReplaceSpec }

func (c ReplaceSpec) applyState(s State) State {
	if c.Document == nil {
		return s
	}
	s.Document = spec.PreProcess(c.Document.Clone())
	return s
}
