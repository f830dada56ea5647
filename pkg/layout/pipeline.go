package layout

// Pipeline tracks whether the render-object tree needs layout and reports
// which render objects changed size during a flush.
//
// Structural edits (create, reparent, remove) and in-place updates call
// MarkNeedsLayout. FlushLayout then lays out every render root from the top;
// a flush with nothing scheduled does no work.
type Pipeline struct {
	needsLayout bool
	root        Constraints
	sizes       map[RenderObjectID]Size
}

// NewPipeline creates a pipeline that lays out roots with constraints.
func NewPipeline(constraints Constraints) *Pipeline {
	return &Pipeline{root: constraints}
}

// RootConstraints returns the constraints given to every render root.
func (p *Pipeline) RootConstraints() Constraints {
	return p.root
}

// SetRootConstraints changes the root constraints and schedules layout if
// they differ.
func (p *Pipeline) SetRootConstraints(c Constraints) {
	if p.root == c {
		return
	}
	p.root = c
	p.needsLayout = true
}

// MarkNeedsLayout schedules a layout pass.
func (p *Pipeline) MarkNeedsLayout() {
	p.needsLayout = true
}

// NeedsLayout reports whether a layout pass is scheduled.
func (p *Pipeline) NeedsLayout() bool {
	return p.needsLayout
}

// FlushLayout lays out every root of t if a pass is scheduled. It returns
// the render objects whose size differs from the previous flush, in
// pre-order. Render objects laid out for the first time count as changed.
func (p *Pipeline) FlushLayout(t *Tree) []RenderObjectID {
	if !p.needsLayout {
		return nil
	}
	p.needsLayout = false

	for root := range t.Roots() {
		Layout(t, root, p.root)
	}

	var changed []RenderObjectID
	sizes := make(map[RenderObjectID]Size, t.Len())
	for root := range t.Roots() {
		for id := range t.Subtree(root) {
			node, ok := t.Get(id)
			if !ok {
				continue
			}
			sizes[id] = node.Size
			if prev, seen := p.sizes[id]; !seen || prev != node.Size {
				changed = append(changed, id)
			}
		}
	}
	p.sizes = sizes
	return changed
}
