package workspace

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatepad/gatepad/internal/backend"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance() { c.t = c.t.Add(time.Minute) }

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	n := 0
	s := New(WithClock(clock.now), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	return s, clock
}

// requireSelectionValid checks that the selection never points at a
// missing project or file and that the editor shows the active file.
func requireSelectionValid(t *testing.T, s *Store) {
	t.Helper()
	sel := s.Selection()
	if sel.ProjectID == "" {
		require.Empty(t, sel.FileID)
		return
	}
	p, ok := s.Project(sel.ProjectID)
	require.True(t, ok, "active project %s missing", sel.ProjectID)
	if sel.FileID == "" {
		return
	}
	f, ok := p.File(sel.FileID)
	require.True(t, ok, "active file %s missing from %s", sel.FileID, sel.ProjectID)
	require.Equal(t, f.Content, s.Text())
}

func withResults(s *Store) {
	s.SetAnalysis(&backend.Analysis{Success: true})
	s.SetWaveform(&backend.Waveform{Success: true})
}

func TestNewStoreIsEmpty(t *testing.T) {
	s := New()
	require.Empty(t, s.Projects())
	require.Equal(t, Selection{}, s.Selection())
	require.False(t, s.Unsaved())
	require.Empty(t, s.Text())
}

func TestCreateProject(t *testing.T) {
	s, clock := newTestStore(t)
	withResults(s)

	p, ok := s.CreateProject("  Adders ")
	require.True(t, ok)
	require.Equal(t, "Adders", p.Name)
	require.Empty(t, p.Files)
	require.Equal(t, clock.t, p.CreatedAt)
	require.Equal(t, Selection{ProjectID: p.ID}, s.Selection())
	require.True(t, s.Unsaved())
	require.Equal(t, Results{}, s.Results())
	requireSelectionValid(t, s)
}

func TestCreateProject_BlankNameIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.CreateProject("Existing")

	for _, name := range []string{"", "   ", "\t\n"} {
		_, ok := s.CreateProject(name)
		require.False(t, ok)
	}
	require.Len(t, s.Projects(), 1)
	require.Equal(t, Selection{ProjectID: p.ID}, s.Selection())
}

func TestUlidIDsAreUnique(t *testing.T) {
	s := New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p, ok := s.CreateProject(fmt.Sprintf("p%d", i))
		require.True(t, ok)
		require.Len(t, p.ID, 26)
		require.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestCreateFile(t *testing.T) {
	s, clock := newTestStore(t)
	p, _ := s.CreateProject("Foo")
	withResults(s)
	s.MarkSaved()
	clock.advance()

	f, ok := s.CreateFile(p.ID, "a.v")
	require.True(t, ok)
	require.Equal(t, "", f.Content)
	require.Equal(t, Selection{ProjectID: p.ID, FileID: f.ID}, s.Selection())
	require.Equal(t, "", s.Text())
	require.True(t, s.Unsaved())
	require.Equal(t, Results{}, s.Results())

	got, _ := s.Project(p.ID)
	require.Equal(t, clock.t, got.UpdatedAt)
	require.Equal(t, []File{f}, got.Files)
}

func TestCreateFile_Rejected(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.CreateProject("Foo")

	_, ok := s.CreateFile(p.ID, " ")
	require.False(t, ok)
	_, ok = s.CreateFile("missing", "a.v")
	require.False(t, ok)

	got, _ := s.Project(p.ID)
	require.Empty(t, got.Files)
	require.Equal(t, Selection{ProjectID: p.ID}, s.Selection())
}

func TestUpdateThenSelectRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.CreateProject("Foo")
	f, _ := s.CreateFile(p.ID, "a.v")
	s.MarkSaved()

	require.True(t, s.UpdateFileContent(p.ID, f.ID, "module x; endmodule"))
	require.True(t, s.Unsaved())

	other, _ := s.CreateFile(p.ID, "b.v")
	require.Equal(t, "", s.Text())
	require.True(t, s.SelectFile(p.ID, f.ID))
	require.Equal(t, "module x; endmodule", s.Text())

	got, _ := s.Project(p.ID)
	bf, _ := got.File(other.ID)
	require.Equal(t, "", bf.Content)

	s.MarkSaved()
	require.False(t, s.Unsaved())
}

func TestUpdateFileContent_TouchesOnlyTarget(t *testing.T) {
	s, clock := newTestStore(t)
	p1, _ := s.CreateProject("One")
	f1, _ := s.CreateFile(p1.ID, "a.v")
	p2, _ := s.CreateProject("Two")
	f2, _ := s.CreateFile(p2.ID, "b.v")
	before, _ := s.Project(p1.ID)
	clock.advance()

	require.True(t, s.UpdateFileContent(p2.ID, f2.ID, "assign y = a & b;"))

	after, _ := s.Project(p1.ID)
	require.Equal(t, before, after)
	got, _ := s.Project(p2.ID)
	require.Equal(t, clock.t, got.UpdatedAt)

	// Updating an inactive file leaves the editor alone.
	s.SelectFile(p1.ID, f1.ID)
	require.True(t, s.UpdateFileContent(p2.ID, f2.ID, "changed"))
	require.Equal(t, "", s.Text())

	require.False(t, s.UpdateFileContent(p2.ID, "missing", "x"))
	require.False(t, s.UpdateFileContent("missing", f2.ID, "x"))
}

func TestSelectFile_NotFoundIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.CreateProject("Foo")
	f, _ := s.CreateFile(p.ID, "a.v")
	s.SetText("module a; endmodule")
	q, _ := s.CreateProject("Bar")

	require.False(t, s.SelectFile(p.ID, "nope"))
	require.False(t, s.SelectFile("nope", f.ID))
	require.False(t, s.SelectFile(q.ID, f.ID))
	require.Equal(t, Selection{ProjectID: q.ID}, s.Selection())
}

func TestSelectProject(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.CreateProject("Foo")
	a, _ := s.CreateFile(p.ID, "a.v")
	s.SetText("A")
	b, _ := s.CreateFile(p.ID, "b.v")
	s.SetText("B")
	q, _ := s.CreateProject("Bar")

	t.Run("falls back to first file", func(t *testing.T) {
		require.True(t, s.SelectProject(p.ID))
		require.Equal(t, Selection{ProjectID: p.ID, FileID: a.ID}, s.Selection())
		require.Equal(t, "A", s.Text())
	})

	t.Run("keeps active file of same project", func(t *testing.T) {
		s.SelectFile(p.ID, b.ID)
		require.True(t, s.SelectProject(p.ID))
		require.Equal(t, Selection{ProjectID: p.ID, FileID: b.ID}, s.Selection())
		require.Equal(t, "B", s.Text())
	})

	t.Run("empty project has no file", func(t *testing.T) {
		require.True(t, s.SelectProject(q.ID))
		require.Equal(t, Selection{ProjectID: q.ID}, s.Selection())
		require.Equal(t, "", s.Text())
	})

	t.Run("unknown project is noop", func(t *testing.T) {
		require.False(t, s.SelectProject("missing"))
		require.Equal(t, Selection{ProjectID: q.ID}, s.Selection())
	})
}

func TestDeleteFile_ActiveMovesToFirstRemaining(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.CreateProject("P")
	f1, _ := s.CreateFile(p.ID, "f1.v")
	s.SetText("one")
	f2, _ := s.CreateFile(p.ID, "f2.v")
	s.SetText("two")
	s.SelectFile(p.ID, f1.ID)
	withResults(s)

	require.True(t, s.DeleteFile(p.ID, f1.ID))
	require.Equal(t, Selection{ProjectID: p.ID, FileID: f2.ID}, s.Selection())
	require.Equal(t, "two", s.Text())
	require.Equal(t, Results{}, s.Results())
	requireSelectionValid(t, s)

	require.True(t, s.DeleteFile(p.ID, f2.ID))
	require.Equal(t, Selection{ProjectID: p.ID}, s.Selection())
	require.Equal(t, "", s.Text())
	requireSelectionValid(t, s)
}

func TestDeleteFile_InactiveKeepsSelection(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.CreateProject("P")
	f1, _ := s.CreateFile(p.ID, "f1.v")
	f2, _ := s.CreateFile(p.ID, "f2.v")
	s.SetText("two")
	withResults(s)
	s.MarkSaved()

	require.True(t, s.DeleteFile(p.ID, f1.ID))
	require.Equal(t, Selection{ProjectID: p.ID, FileID: f2.ID}, s.Selection())
	require.Equal(t, "two", s.Text())
	require.NotNil(t, s.Results().Analysis)
	require.True(t, s.Unsaved())

	require.False(t, s.DeleteFile(p.ID, f1.ID))
}

func TestDeleteProject(t *testing.T) {
	s, _ := newTestStore(t)
	p1, _ := s.CreateProject("One")
	f1, _ := s.CreateFile(p1.ID, "a.v")
	s.SetText("first")
	p2, _ := s.CreateProject("Two")
	withResults(s)

	t.Run("inactive project keeps selection", func(t *testing.T) {
		extra, _ := s.CreateProject("Extra")
		s.SelectProject(p2.ID)
		withResults(s)
		require.True(t, s.DeleteProject(extra.ID))
		require.Equal(t, Selection{ProjectID: p2.ID}, s.Selection())
		require.NotNil(t, s.Results().Waveform)
	})

	t.Run("active project moves to first remaining", func(t *testing.T) {
		require.True(t, s.DeleteProject(p2.ID))
		require.Equal(t, Selection{ProjectID: p1.ID, FileID: f1.ID}, s.Selection())
		require.Equal(t, "first", s.Text())
		require.Equal(t, Results{}, s.Results())
	})

	t.Run("last project clears selection", func(t *testing.T) {
		require.True(t, s.DeleteProject(p1.ID))
		require.Equal(t, Selection{}, s.Selection())
		require.Equal(t, "", s.Text())
		require.Empty(t, s.Projects())
	})

	t.Run("unknown project is noop", func(t *testing.T) {
		s.MarkSaved()
		require.False(t, s.DeleteProject("missing"))
		require.False(t, s.Unsaved())
	})
}

func TestSetText(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetText("scratch")
	require.Equal(t, "scratch", s.Text())
	require.False(t, s.Unsaved())

	p, _ := s.CreateProject("P")
	f, _ := s.CreateFile(p.ID, "a.v")
	s.MarkSaved()
	s.SetText("module a; endmodule")

	got, _ := s.Project(p.ID)
	stored, _ := got.File(f.ID)
	require.Equal(t, "module a; endmodule", stored.Content)
	require.True(t, s.Unsaved())
}

func TestApplyTemplateAndLoadSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.CreateProject("P")
	f, _ := s.CreateFile(p.ID, "a.v")
	withResults(s)

	s.ApplyTemplate("module and_gate; endmodule", "module tb; endmodule")
	require.Equal(t, "module and_gate; endmodule", s.Text())
	require.Equal(t, "module tb; endmodule", s.Testbench())
	require.Equal(t, Results{}, s.Results())

	withResults(s)
	s.LoadSnapshot("module old; endmodule")
	require.Equal(t, Results{}, s.Results())
	got, _ := s.Project(p.ID)
	stored, _ := got.File(f.ID)
	require.Equal(t, "module old; endmodule", stored.Content)
}

func TestRestore(t *testing.T) {
	s, _ := newTestStore(t)
	s.CreateProject("Stale")

	projects := []Project{
		{ID: "p1", Name: "One", Files: []File{{ID: "f1", Name: "a.v", Content: "module a; endmodule"}, {ID: "f2", Name: "b.v"}}},
		{ID: "p2", Name: "Two"},
	}
	s.Restore(projects)

	require.Equal(t, Selection{ProjectID: "p1", FileID: "f1"}, s.Selection())
	require.Equal(t, "module a; endmodule", s.Text())
	require.False(t, s.Unsaved())
	require.Len(t, s.Projects(), 2)
	p2, _ := s.Project("p2")
	require.NotNil(t, p2.Files)

	// The store owns its copy.
	projects[0].Files[0].Content = "mutated"
	f, _ := s.ActiveFile()
	require.Equal(t, "module a; endmodule", f.Content)

	s.Restore(nil)
	require.Equal(t, Selection{}, s.Selection())
	require.Equal(t, "", s.Text())
}

func TestProjectsReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	p, _ := s.CreateProject("P")
	s.CreateFile(p.ID, "a.v")

	list := s.Projects()
	list[0].Files[0].Name = "renamed.v"
	list[0].Name = "renamed"

	got, _ := s.Project(p.ID)
	require.Equal(t, "P", got.Name)
	require.Equal(t, "a.v", got.Files[0].Name)
}

func TestSubscribe(t *testing.T) {
	s, _ := newTestStore(t)
	var seen []string
	unsubscribe := s.Subscribe(func(text string) { seen = append(seen, text) })

	p, _ := s.CreateProject("P")
	f, _ := s.CreateFile(p.ID, "a.v")
	s.SetText("assign y = a & b;")
	s.SetText("assign y = a & b;")
	s.CreateFile(p.ID, "b.v")
	s.SelectFile(p.ID, f.ID)

	// Only actual changes of the editor text are reported.
	require.Equal(t, []string{"assign y = a & b;", "", "assign y = a & b;"}, seen)

	unsubscribe()
	s.SetText("changed")
	require.Len(t, seen, 3)
}

func TestSelectionInvariantAcrossSequence(t *testing.T) {
	s, _ := newTestStore(t)
	p1, _ := s.CreateProject("A")
	a1, _ := s.CreateFile(p1.ID, "a1.v")
	a2, _ := s.CreateFile(p1.ID, "a2.v")
	p2, _ := s.CreateProject("B")
	b1, _ := s.CreateFile(p2.ID, "b1.v")

	steps := []func(){
		func() { s.SelectFile(p1.ID, a2.ID) },
		func() { s.DeleteFile(p1.ID, a2.ID) },
		func() { s.SelectProject(p2.ID) },
		func() { s.DeleteFile(p2.ID, b1.ID) },
		func() { s.DeleteProject(p2.ID) },
		func() { s.DeleteFile(p1.ID, a1.ID) },
		func() { s.DeleteProject(p1.ID) },
	}
	for _, step := range steps {
		step()
		requireSelectionValid(t, s)
	}
	require.Equal(t, Selection{}, s.Selection())
}
