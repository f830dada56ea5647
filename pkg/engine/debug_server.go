package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/layout"
	"github.com/go-drift/retained/pkg/logging"
)

// DebugServer serves the element tree, render tree and frame timeline of a
// [Runner] over HTTP.
type DebugServer struct {
	runner *Runner

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewDebugServer creates a debug server for r. It does not listen until
// [DebugServer.Start] is called.
func NewDebugServer(r *Runner) *DebugServer {
	return &DebugServer{runner: r}
}

// RenderTreeNode represents a node in the serialized render tree.
// Uses SafeFloat for dimensions that may contain Inf/NaN from layout issues.
type RenderTreeNode struct {
	ID       uint64           `json:"id"`
	Type     string           `json:"type"`
	Owner    string           `json:"owner,omitempty"`
	Size     SafeSize         `json:"size"`
	Offset   SafeOffset       `json:"offset"`
	Depth    int              `json:"depth"`
	Children []RenderTreeNode `json:"children,omitempty"`
}

// SafeFloat wraps a float64 to handle Inf/NaN in JSON encoding.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// SafeSize is a JSON-safe version of layout.Size.
type SafeSize struct {
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

// SafeOffset is a JSON-safe version of layout.Offset.
type SafeOffset struct {
	X SafeFloat `json:"x"`
	Y SafeFloat `json:"y"`
}

// WidgetTreeNode represents a node in the serialized element tree.
type WidgetTreeNode struct {
	ID           string           `json:"id"`
	WidgetType   string           `json:"widgetType"`
	ElementType  string           `json:"elementType"`
	Key          any              `json:"key,omitempty"`
	Depth        int              `json:"depth"`
	Lifecycle    string           `json:"lifecycle"`
	NeedsBuild   bool             `json:"needsBuild"`
	HasState     bool             `json:"hasState,omitempty"`
	RenderObject uint64           `json:"renderObject,omitempty"`
	Children     []WidgetTreeNode `json:"children,omitempty"`
}

// Handler returns the debug endpoints without binding a listener.
func (d *DebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/render-tree", d.handleRenderTree)
	mux.HandleFunc("/widget-tree", d.handleWidgetTree)
	mux.HandleFunc("/frames", d.handleFrameTimeline)
	mux.HandleFunc("/runtime", d.handleRuntime)
	mux.HandleFunc("/health", handleHealth)
	return mux
}

// Start binds addr and serves in the background. It returns the bound
// address, which differs from addr when an ephemeral port was requested.
func (d *DebugServer) Start(addr string) (net.Addr, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.server != nil {
		// Already running
		return d.listener.Addr(), nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("debug server listen: %w", err)
	}

	server := &http.Server{Handler: d.Handler(), ReadHeaderTimeout: 5 * time.Second}
	d.server = server
	d.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			// Server failed - clear state so it can be restarted
			d.mu.Lock()
			d.server = nil
			d.listener = nil
			d.mu.Unlock()
			logging.Logger().Error("debug server failed", "error", err)
		}
	}()

	logging.Logger().Info("debug server listening", "addr", listener.Addr().String())
	return listener.Addr(), nil
}

// Stop gracefully shuts down the debug server.
func (d *DebugServer) Stop(ctx context.Context) error {
	d.mu.Lock()
	server := d.server
	d.server = nil
	d.listener = nil
	d.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Serve runs the server until ctx is cancelled.
func (d *DebugServer) Serve(ctx context.Context, addr string) error {
	if _, err := d.Start(addr); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return d.Stop(shutdownCtx)
}

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// handleRenderTree returns the render roots as JSON.
//
// The trees are serialized while holding the runner's frame lock; encoding
// happens after it is released.
func (d *DebugServer) handleRenderTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Recover from panics during serialization
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	var roots []RenderTreeNode
	d.runner.View(func(e *core.Engine) {
		owners := renderOwners(e)
		objects := e.RenderObjects()
		for _, id := range objects.Roots() {
			roots = append(roots, serializeRenderTree(objects, owners, id, 0))
		}
	})
	if len(roots) == 0 {
		http.Error(w, "no render tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, roots)
}

// handleHealth returns a simple health check response.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleWidgetTree returns the element tree as JSON.
func (d *DebugServer) handleWidgetTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Recover from panics during serialization
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	var (
		tree WidgetTreeNode
		ok   bool
	)
	d.runner.View(func(e *core.Engine) {
		var root core.ElementID
		root, ok = e.Root()
		if ok {
			tree = serializeWidgetTree(e, root, 0)
		}
	})
	if !ok {
		http.Error(w, "no widget tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, tree)
}

// handleFrameTimeline returns recent frame samples as JSON.
func (d *DebugServer) handleFrameTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := d.runner.Snapshot()
	applyFrameFilters(r, &resp)
	writeJSON(w, resp)
}

// handleRuntime returns recent runtime/GC samples as JSON.
func (d *DebugServer) handleRuntime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	buffer := d.runner.RuntimeSamples()
	if buffer == nil {
		http.Error(w, "runtime sampling disabled", http.StatusServiceUnavailable)
		return
	}

	resp := struct {
		Samples []RuntimeSample `json:"samples"`
	}{
		Samples: applyRuntimeFilters(r, buffer.Snapshot()),
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func applyFrameFilters(r *http.Request, resp *FrameTimeline) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var filters []func(FrameSample) bool

	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.FrameMs >= v })
	}
	if v := parseFloatQuery(r, "dispatch_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.Phases.DispatchMs >= v })
	}
	if v := parseFloatQuery(r, "update_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.Phases.UpdateMs >= v })
	}
	if value := r.URL.Query().Get("min_builds"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			filters = append(filters, func(s FrameSample) bool { return s.Counts.Builds >= parsed })
		}
	}

	if len(filters) > 0 {
		filtered := make([]FrameSample, 0, len(resp.Samples))
	outer:
		for _, sample := range resp.Samples {
			for _, f := range filters {
				if !f(sample) {
					continue outer
				}
			}
			filtered = append(filtered, sample)
		}
		resp.Samples = filtered
	}

	if limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

func applyRuntimeFilters(r *http.Request, samples []RuntimeSample) []RuntimeSample {
	windowSeconds := parseFloatQuery(r, "window")
	if windowSeconds > 0 {
		cutoff := time.Now().Add(-time.Duration(windowSeconds * float64(time.Second))).UnixMilli()
		filtered := make([]RuntimeSample, 0, len(samples))
		for _, sample := range samples {
			if sample.Timestamp >= cutoff {
				filtered = append(filtered, sample)
			}
		}
		samples = filtered
	}

	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	return samples
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// renderOwners maps each render object to the element that owns it.
func renderOwners(e *core.Engine) map[layout.RenderObjectID]core.ElementID {
	root, ok := e.Root()
	if !ok {
		return nil
	}
	elements := e.Elements()
	owners := make(map[layout.RenderObjectID]core.ElementID)
	for id := range elements.Subtree(root) {
		if el, ok := elements.Get(id); ok {
			if ro := el.RenderObjectID(); ro != 0 {
				owners[ro] = id
			}
		}
	}
	return owners
}

func serializeRenderTree(objects core.RenderObjects, owners map[layout.RenderObjectID]core.ElementID, id layout.RenderObjectID, depth int) RenderTreeNode {
	node, _ := objects.Get(id)
	result := RenderTreeNode{
		ID:    uint64(id),
		Type:  typeName(node.Object),
		Size:  SafeSize{Width: SafeFloat(node.Size.Width), Height: SafeFloat(node.Size.Height)},
		Depth: depth,
		Offset: SafeOffset{
			X: SafeFloat(node.Offset.X),
			Y: SafeFloat(node.Offset.Y),
		},
	}
	if owner, ok := owners[id]; ok {
		result.Owner = owner.String()
	}
	if depth >= maxTreeDepth {
		return result
	}
	for _, child := range objects.Children(id) {
		result.Children = append(result.Children, serializeRenderTree(objects, owners, child, depth+1))
	}
	return result
}

func serializeWidgetTree(e *core.Engine, id core.ElementID, depth int) WidgetTreeNode {
	elements := e.Elements()
	el, ok := elements.Get(id)
	if !ok {
		return WidgetTreeNode{ID: id.String(), Depth: depth}
	}
	widget := el.Widget()
	result := WidgetTreeNode{
		ID:           id.String(),
		WidgetType:   typeName(widget),
		ElementType:  typeName(el),
		Depth:        depth,
		Lifecycle:    el.Lifecycle().String(),
		NeedsBuild:   e.DirtySet().Contains(id),
		RenderObject: uint64(el.RenderObjectID()),
	}
	if widget != nil {
		result.Key = jsonKey(widget.Key())
	}
	if _, ok := el.(*core.StatefulElement); ok {
		result.HasState = true
	}
	if depth >= maxTreeDepth {
		return result
	}
	for _, child := range elements.Children(id) {
		result.Children = append(result.Children, serializeWidgetTree(e, child, depth+1))
	}
	return result
}

// jsonKey keeps keys that encode cleanly and stringifies the rest.
func jsonKey(key any) any {
	switch k := key.(type) {
	case nil:
		return nil
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return k
	default:
		return fmt.Sprintf("%v", k)
	}
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
