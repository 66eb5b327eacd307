package operator

import "context"

// Fragment is the persisted form of an operator inside a session document:
// just the label and the script text. The compiled module and the declared
// slots are derived state and are rebuilt on restore.
type Fragment struct {
	Label  string `json:"label"`
	Script string `json:"script"`
}

// Serialize captures the operator's persistent identity.
func (o *Operator) Serialize() Fragment {
	return Fragment{Label: o.label, Script: o.script}
}

// Deserialize restores the operator from a fragment. Setting the script
// re-triggers compilation as a side effect, so a restored operator behaves
// identically to the one that was saved.
func (o *Operator) Deserialize(ctx context.Context, f Fragment) error {
	o.SetLabel(f.Label)
	return o.SetScript(ctx, f.Script)
}
