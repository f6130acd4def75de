package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscreach/internal/config"
	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/reach"
	"github.com/san-kum/oscreach/internal/sets"
)

func testRun(t *testing.T) Run {
	t.Helper()
	a := mat.NewDense(2, 2, []float64{0, 1, -1, 0})
	ivp, err := reach.NewLinearIVP(a, sets.NewSingleton(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	fp, err := reach.Solve(context.Background(), ivp, reach.TimeSpan{End: 0.1}, reach.Algorithm{
		Model: reach.ModelForward, StepSize: 0.01,
	})
	if err != nil {
		t.Fatal(err)
	}
	return Run{
		Config:   *config.DefaultConfig(),
		Omega:    1,
		Flowpipe: fp,
		Analytic: &dynamo.Trajectory{
			Times:  []float64{0, 0.05, 0.1},
			States: []dynamo.State{{1, 0}, {0.99875, -0.04998}, {0.995, -0.0998}},
		},
		Metrics: map[string]float64{"segments": 10},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run := testRun(t)
	runID, err := st.Save(run)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Period != 0.5 {
		t.Errorf("expected period 0.5, got %f", meta.Period)
	}
	if meta.Model != "forward" {
		t.Errorf("expected model forward, got %s", meta.Model)
	}
	if meta.Segments != 10 {
		t.Errorf("expected 10 segments, got %d", meta.Segments)
	}
	if meta.Metrics["segments"] != 10 {
		t.Errorf("expected metric segments=10, got %v", meta.Metrics["segments"])
	}
	if meta.Initial.Pos != 1 {
		t.Errorf("expected initial pos 1, got %f", meta.Initial.Pos)
	}

	boxes, err := st.LoadFlowpipe(runID)
	if err != nil {
		t.Fatalf("load flowpipe failed: %v", err)
	}
	want := run.Flowpipe.Boxes()
	if len(boxes) != len(want) {
		t.Fatalf("expected %d boxes, got %d", len(want), len(boxes))
	}
	for i := range boxes {
		if boxes[i].Span != want[i].Span {
			t.Errorf("box %d span %v, want %v", i, boxes[i].Span, want[i].Span)
		}
		for d := range want[i].Lo {
			if boxes[i].Lo[d] != want[i].Lo[d] || boxes[i].Hi[d] != want[i].Hi[d] {
				t.Errorf("box %d dim %d differs after round trip", i, d)
			}
		}
	}

	tr, err := st.LoadAnalytic(runID)
	if err != nil {
		t.Fatalf("load analytic failed: %v", err)
	}
	if tr == nil || tr.Len() != 3 {
		t.Fatalf("expected 3 analytic samples, got %v", tr)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(testRun(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(testRun(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("expected newest run first")
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run := testRun(t)
	run.Analytic = nil
	runID, err := st.Save(run)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{metadataFile, flowpipeFile} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
	if _, err := os.Stat(filepath.Join(runDir, analyticFile)); !os.IsNotExist(err) {
		t.Error("analytic.csv should not exist for runs without a closed form")
	}

	tr, err := st.LoadAnalytic(runID)
	if err != nil || tr != nil {
		t.Errorf("LoadAnalytic on region run = %v, %v; want nil, nil", tr, err)
	}
}
