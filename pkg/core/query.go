package core

// QueryByType returns the elements whose widget has type W, in tree order.
func QueryByType[W Widget](e *Engine) []ElementID {
	if e.root == 0 {
		return nil
	}
	var out []ElementID
	for id := range e.elements.Subtree(e.root) {
		el, ok := e.elements.Get(id)
		if !ok {
			continue
		}
		if _, ok := el.Widget().(W); ok {
			out = append(out, id)
		}
	}
	return out
}

// WidgetOf returns the widget of element id as a W.
func WidgetOf[W Widget](e *Engine, id ElementID) (W, bool) {
	var zero W
	el, ok := e.elements.Get(id)
	if !ok {
		return zero, false
	}
	w, ok := el.Widget().(W)
	return w, ok
}

// StateOf returns the state of stateful element id as an S.
func StateOf[S State](e *Engine, id ElementID) (S, bool) {
	var zero S
	el, ok := e.elements.Get(id)
	if !ok {
		return zero, false
	}
	stateful, ok := el.(*StatefulElement)
	if !ok {
		return zero, false
	}
	s, ok := stateful.state.(S)
	return s, ok
}
