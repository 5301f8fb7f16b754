package viewer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/starford/archview/internal/apperr"
	"github.com/starford/archview/internal/catalog"
	"github.com/starford/archview/internal/graph"
	"github.com/starford/archview/internal/metrics"
	"github.com/starford/archview/internal/models"
	"github.com/starford/archview/internal/storage"
	"github.com/starford/archview/internal/testutil"
)

type recordedEvent struct {
	session string
	node    string
	closed  bool
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) PublishSelection(session, nodeID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{session: session, node: nodeID})
}

func (p *fakePublisher) PublishSessionClosed(session string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{session: session, closed: true})
}

func (p *fakePublisher) all() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

type env struct {
	svc   *Service
	store storage.Provider
	db    *catalog.DB
	pub   *fakePublisher
	reg   *metrics.Registry
}

func newEnv(t *testing.T) env {
	t.Helper()
	_, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	testutil.WriteDiagrams(t, store, map[string]string{"shop.arch": testutil.ShopDiagram})
	if err := catalog.Sync(db, store, slog.Default()); err != nil {
		t.Fatal(err)
	}
	pub := &fakePublisher{}
	reg := metrics.NewRegistry()
	svc := NewService(store, db, WithPublisher(pub), WithMetrics(reg))
	return env{svc: svc, store: store, db: db, pub: pub, reg: reg}
}

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestOpenSessionAndView(t *testing.T) {
	e := newEnv(t)
	sess, diags, err := e.svc.OpenSession(context.Background(), "shop.arch")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v", diags)
	}
	v := sess.View()
	if v.Session != sess.ID || v.Title != "shop" {
		t.Errorf("view header = %q %q", v.Session, v.Title)
	}
	if len(v.Nodes) != 5 || len(v.Edges) != 4 {
		t.Fatalf("view has %d nodes %d edges", len(v.Nodes), len(v.Edges))
	}
	if v.Nodes[0].ID != "web" || v.Nodes[0].Style.Category != graph.CategoryFrontends {
		t.Errorf("first node = %+v", v.Nodes[0])
	}
	for _, n := range v.Nodes {
		if !n.Visible || n.Emphasis != graph.EmphasisFull {
			t.Errorf("node %s visible=%v emphasis=%s", n.ID, n.Visible, n.Emphasis)
		}
	}
	if !strings.HasPrefix(v.Edges[0].Path, "M ") {
		t.Errorf("edge path = %q", v.Edges[0].Path)
	}
	if !v.Edges[3].Route.Style.Dashed {
		t.Error("async edge should be dashed")
	}
	if got := counterValue(t, e.reg.SessionsOpen); got != 1 {
		t.Errorf("sessions gauge = %v, want 1", got)
	}
}

func TestOpenSession_Missing(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.svc.OpenSession(context.Background(), "nope.arch")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSelectionPublishesAndFocuses(t *testing.T) {
	e := newEnv(t)
	sess, _, _ := e.svc.OpenSession(context.Background(), "shop.arch")

	if err := sess.Select("orders"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := sess.Select("orders"); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if err := sess.Select("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown select err = %v", err)
	}
	if err := sess.Select(""); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got := e.pub.all()
	want := []recordedEvent{{session: sess.ID, node: "orders"}, {session: sess.ID, node: ""}}
	if len(got) != len(want) {
		t.Fatalf("events = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	_ = sess.Select("orders")
	v := sess.View()
	emph := map[string]graph.Emphasis{}
	for _, n := range v.Nodes {
		emph[n.ID] = n.Emphasis
	}
	for _, id := range []string{"api", "orders", "db", "mq"} {
		if emph[id] != graph.EmphasisFull {
			t.Errorf("%s emphasis = %s, want full", id, emph[id])
		}
	}
	if emph["web"] != graph.EmphasisDimmed {
		t.Errorf("web emphasis = %s, want dimmed", emph["web"])
	}
}

func TestFilterHidesEdges(t *testing.T) {
	e := newEnv(t)
	sess, _, _ := e.svc.OpenSession(context.Background(), "shop.arch")
	if err := sess.SetFilter(graph.CategoryDatabases, false); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	if err := sess.SetFilter("bogus", false); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bogus category err = %v", err)
	}
	v := sess.View()
	if v.Filters[graph.CategoryDatabases] {
		t.Error("databases filter still on")
	}
	for _, ed := range v.Edges {
		wantVisible := ed.ID != "e3"
		if ed.Visible != wantVisible {
			t.Errorf("edge %s visible = %v", ed.ID, ed.Visible)
		}
	}
	if !strings.Contains(sess.Export(), "node db \"Orders DB\" database") {
		t.Error("export must ignore filters")
	}
}

func TestDragThroughPointer(t *testing.T) {
	e := newEnv(t)
	sess, _, _ := e.svc.OpenSession(context.Background(), "shop.arch")
	_, _ = sess.Zoom(1) // scale 2

	before, _ := sess.Node("api")
	if err := sess.PointerDown("api", models.Position{X: 10, Y: 10}); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	if err := sess.PointerDown("", models.Position{}); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("second gesture err = %v, want ErrConflict", err)
	}
	sess.PointerMove(models.Position{X: 110, Y: 50})
	sess.PointerUp(models.Position{X: 110, Y: 50})

	after, _ := sess.Node("api")
	want := before.Node.Position.Add(models.Position{X: 50, Y: 20})
	if after.Node.Position != want {
		t.Errorf("position = %+v, want %+v", after.Node.Position, want)
	}
	if sess.View().Gesture != graph.GestureNone {
		t.Error("gesture still active after pointer up")
	}
	if got := counterValue(t, e.reg.GesturesTotal.WithLabelValues(string(graph.GestureDrag))); got != 1 {
		t.Errorf("drag gestures = %v, want 1", got)
	}
}

func TestPanAndZoomDiagnostics(t *testing.T) {
	e := newEnv(t)
	sess, _, _ := e.svc.OpenSession(context.Background(), "shop.arch")

	tr := sess.Pan(30, -10)
	if tr.PanX != 30 || tr.PanY != -10 {
		t.Errorf("pan = %+v", tr)
	}
	tr, diags := sess.Zoom(5)
	if tr.Scale != graph.MaxScale || diags.Count(graph.InvalidZoomDelta) != 1 {
		t.Errorf("zoom = %+v diags=%v", tr, diags)
	}
	if got := counterValue(t, e.reg.DiagnosticsTotal.WithLabelValues(string(graph.InvalidZoomDelta))); got != 1 {
		t.Errorf("diagnostic counter = %v, want 1", got)
	}
	if tr := sess.ResetViewport(); tr != graph.IdentityTransform {
		t.Errorf("reset = %+v", tr)
	}
}

func TestNodeDetail(t *testing.T) {
	e := newEnv(t)
	sess, _, _ := e.svc.OpenSession(context.Background(), "shop.arch")
	d, err := sess.Node("orders")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if len(d.Incoming) != 1 || d.Incoming[0].Source != "api" {
		t.Errorf("incoming = %+v", d.Incoming)
	}
	if len(d.Outgoing) != 2 {
		t.Errorf("outgoing = %+v", d.Outgoing)
	}
	if d.HealthColor == "" || d.Style.Icon == "" {
		t.Errorf("style not populated: %+v", d)
	}
	if _, err := sess.Node("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("ghost err = %v", err)
	}
}

func TestCloseSession(t *testing.T) {
	e := newEnv(t)
	sess, _, _ := e.svc.OpenSession(context.Background(), "shop.arch")
	if len(e.svc.Sessions()) != 1 {
		t.Fatal("session not listed")
	}
	if err := e.svc.CloseSession(sess.ID); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}
	if _, err := e.svc.Session(sess.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("closed session lookup err = %v", err)
	}
	if err := e.svc.CloseSession(sess.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double close err = %v", err)
	}
	// Closed sessions no longer publish selection changes.
	_ = sess.Select("api")
	for _, ev := range e.pub.all() {
		if ev.node == "api" {
			t.Error("selection published after close")
		}
	}
	if got := counterValue(t, e.reg.SessionsOpen); got != 0 {
		t.Errorf("sessions gauge = %v, want 0", got)
	}
}

func TestSessionsIsolated(t *testing.T) {
	e := newEnv(t)
	a, _, _ := e.svc.OpenSession(context.Background(), "shop.arch")
	b, _, _ := e.svc.OpenSession(context.Background(), "shop.arch")
	_ = a.Select("db")
	a.Pan(100, 0)
	if b.View().Selection != "" || b.View().Viewport.PanX != 0 {
		t.Error("session state leaked between sessions")
	}
}

func TestSaveSessionPersistsPositions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess, _, _ := e.svc.OpenSession(ctx, "shop.arch")
	_ = sess.PointerDown("web", models.Position{})
	sess.PointerMove(models.Position{X: 7, Y: 9})
	sess.PointerUp(models.Position{X: 7, Y: 9})

	if _, err := sess.Save(ctx, "shop.json"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	m, _, _, err := e.svc.LoadModel(ctx, "shop.json")
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	orig, _ := sess.Node("web")
	saved, _ := m.Node("web")
	if saved.Position != orig.Node.Position {
		t.Errorf("saved position = %+v, want %+v", saved.Position, orig.Node.Position)
	}
	if row, err := e.db.GetDiagram("shop.json"); err != nil || row.NodeCount != 5 {
		t.Errorf("saved diagram not catalogued: %+v %v", row, err)
	}

	text, _ := e.svc.OpenText(ctx, "node a \"A\" service\n")
	if _, err := text.Save(ctx, ""); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("unsaved text session err = %v, want ErrInvalid", err)
	}
}

func TestLibraryOperations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.CreateDiagram(ctx, "shop.arch", []byte("x")); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate create err = %v", err)
	}
	if _, err := e.svc.CreateDiagram(ctx, "bad.json", []byte("{")); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("undecodable create err = %v", err)
	}
	if _, err := e.store.Read("bad.json"); err == nil {
		t.Error("undecodable content was written")
	}

	d, err := e.svc.CreateDiagram(ctx, "ops.arch", []byte("node cron \"Cron\" worker\n"))
	if err != nil {
		t.Fatalf("CreateDiagram: %v", err)
	}
	if _, err := e.svc.UpdateDiagram(ctx, "ops.arch", []byte("node cron \"Cron2\" worker\n"), "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale update err = %v", err)
	}
	if _, err := e.svc.UpdateDiagram(ctx, "ops.arch", []byte("node cron \"Cron2\" worker\n"), d.Checksum); err != nil {
		t.Errorf("update: %v", err)
	}

	rows, total, err := e.svc.ListDiagrams(ctx, 10, 0, "path")
	if err != nil || total != 2 || rows[0].Path != "ops.arch" {
		t.Errorf("list = %+v total=%d err=%v", rows, total, err)
	}
	hits, err := e.svc.SearchNodes(ctx, "cron2", "", 10)
	if err != nil || len(hits) != 1 {
		t.Errorf("search = %+v err=%v", hits, err)
	}
	if _, err := e.svc.SearchNodes(ctx, "x", "mainframe", 10); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad type err = %v", err)
	}

	if err := e.svc.DeleteDiagram(ctx, "ops.arch"); err != nil {
		t.Fatalf("DeleteDiagram: %v", err)
	}
	if _, total, _ := e.svc.ListDiagrams(ctx, 10, 0, ""); total != 1 {
		t.Errorf("total after delete = %d", total)
	}
}

func TestImportAndExport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.Import(ctx, "", "node a \"A\" service\nedge a --> b\n")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Snapshot.Nodes) != 1 || res.Diagnostics.Count(graph.DanglingEdgeReference) != 1 {
		t.Errorf("import = %+v", res)
	}

	if _, err := e.svc.Import(ctx, "x.json", "node a \"A\" service\n"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("json import target err = %v", err)
	}
	res, err = e.svc.Import(ctx, "imported.arch", "node a \"A\" service\n")
	if err != nil || res.Path != "imported.arch" {
		t.Fatalf("stored import = %+v, %v", res, err)
	}

	text, err := e.svc.ExportDiagram(ctx, "imported.arch")
	if err != nil {
		t.Fatalf("ExportDiagram: %v", err)
	}
	if text != "node a \"A\" service\n" {
		t.Errorf("export = %q", text)
	}
	if got := counterValue(t, e.reg.ExportsTotal); got != 1 {
		t.Errorf("exports = %v, want 1", got)
	}
}

type fakeCatalog struct {
	upserts []catalog.DiagramRow
	deleted []string
	rows    []catalog.DiagramRow
}

func (f *fakeCatalog) UpsertDiagram(d catalog.DiagramRow, _ []catalog.NodeRow) error {
	f.upserts = append(f.upserts, d)
	return nil
}

func (f *fakeCatalog) DeleteDiagram(path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeCatalog) GetChecksum(string) (string, error) { return "", apperr.ErrNotFound }

func (f *fakeCatalog) GetDiagram(string) (*catalog.DiagramRow, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeCatalog) ListDiagrams(int, int, string) ([]catalog.DiagramRow, int, error) {
	return f.rows, len(f.rows), nil
}

func (f *fakeCatalog) SearchNodes(string, string, int) ([]catalog.NodeHit, error) {
	return nil, nil
}

func (f *fakeCatalog) AllChecksums() (map[string]string, error) { return map[string]string{}, nil }

func (f *fakeCatalog) Close() error { return nil }

func TestServiceWithCatalogFake(t *testing.T) {
	_, store := testutil.TestLibrary(t)
	fake := &fakeCatalog{rows: []catalog.DiagramRow{{Path: "listed.arch"}}}
	svc := NewService(store, fake)
	ctx := context.Background()

	if _, err := svc.CreateDiagram(ctx, "ops.arch", []byte("node cron \"Cron\" worker\n")); err != nil {
		t.Fatalf("CreateDiagram: %v", err)
	}
	if len(fake.upserts) != 1 || fake.upserts[0].Path != "ops.arch" || fake.upserts[0].NodeCount != 1 {
		t.Errorf("upserts = %+v", fake.upserts)
	}

	rows, total, err := svc.ListDiagrams(ctx, 10, 0, "")
	if err != nil || total != 1 || rows[0].Path != "listed.arch" {
		t.Errorf("list = %+v total=%d err=%v", rows, total, err)
	}

	if err := svc.DeleteDiagram(ctx, "ops.arch"); err != nil {
		t.Fatalf("DeleteDiagram: %v", err)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "ops.arch" {
		t.Errorf("deleted = %v", fake.deleted)
	}
}

func TestSessionTitle(t *testing.T) {
	e := newEnv(t)
	sess, _, err := e.svc.OpenSession(context.Background(), "shop.arch")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if sess.Title() != "shop" {
		t.Errorf("Title = %q", sess.Title())
	}
	text, _ := e.svc.OpenText(context.Background(), "# untitled\nnode a \"A\" service\n")
	if text.Title() != "" {
		t.Errorf("text session Title = %q", text.Title())
	}
}
