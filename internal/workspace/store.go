// Package workspace holds one session's projects, the active selection, the
// editor text and the unsaved flag.
package workspace

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gatepad/gatepad/internal/backend"
)

// Results are views derived from the editor text by the backend. Any
// operation that swaps the text for unrelated content clears them.
type Results struct {
	Analysis *backend.Analysis `json:"analysis,omitempty"`
	Waveform *backend.Waveform `json:"waveform,omitempty"`
}

// Store is the in-memory workspace. Invalid operations are no-ops that
// report false; the selection is repaired by every operation that could
// leave it dangling.
//
// A Store is not safe for concurrent use. Callers serialize access.
type Store struct {
	projects  []Project
	sel       Selection
	text      string
	testbench string
	unsaved   bool
	results   Results

	now   func() time.Time
	newID func() string

	subs    []subscription
	nextSub int
}

type subscription struct {
	id int
	fn func(text string)
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces ULID generation for project and file ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New returns an empty workspace with no selection.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.newID == nil {
		entropy := ulid.Monotonic(rand.Reader, 0)
		s.newID = func() string {
			return ulid.MustNew(ulid.Timestamp(s.now()), entropy).String()
		}
	}
	return s
}

// Subscribe registers fn to run after every change of the editor text.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(text string)) (unsubscribe func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) setText(text string) {
	if text == s.text {
		return
	}
	s.text = text
	for _, sub := range append([]subscription(nil), s.subs...) {
		sub.fn(text)
	}
}

// Projects returns a copy of every project in order.
func (s *Store) Projects() []Project {
	out := make([]Project, len(s.projects))
	for i := range s.projects {
		out[i] = s.projects[i].clone()
	}
	return out
}

// Project returns a copy of the project with id.
func (s *Store) Project(id string) (Project, bool) {
	if i := s.projectIndex(id); i >= 0 {
		return s.projects[i].clone(), true
	}
	return Project{}, false
}

// ActiveProject returns the selected project.
func (s *Store) ActiveProject() (Project, bool) {
	if s.sel.ProjectID == "" {
		return Project{}, false
	}
	return s.Project(s.sel.ProjectID)
}

// ActiveFile returns the selected file.
func (s *Store) ActiveFile() (File, bool) {
	i := s.projectIndex(s.sel.ProjectID)
	if i < 0 || s.sel.FileID == "" {
		return File{}, false
	}
	return s.projects[i].File(s.sel.FileID)
}

func (s *Store) Selection() Selection { return s.sel }
func (s *Store) Text() string { return s.text }
func (s *Store) Testbench() string { return s.testbench }
func (s *Store) Unsaved() bool { return s.unsaved }
func (s *Store) Results() Results { return s.results }

// CreateProject adds an empty project and makes it active with no file.
// Blank names are rejected.
func (s *Store) CreateProject(name string) (Project, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, false
	}

	now := s.now()
	p := Project{ID: s.newID(), Name: name, Files: []File{}, CreatedAt: now, UpdatedAt: now}
	s.projects = append(s.projects, p)

	s.sel = Selection{ProjectID: p.ID}
	s.setText("")
	s.results = Results{}
	s.unsaved = true
	return p.clone(), true
}

// SelectProject activates a project, keeping the active file if it belongs
// to that project and otherwise falling back to its first file.
func (s *Store) SelectProject(id string) bool {
	i := s.projectIndex(id)
	if i < 0 {
		return false
	}
	p := &s.projects[i]
	if f, ok := p.File(s.sel.FileID); ok {
		s.activate(p.ID, &f)
		return true
	}
	s.activateFirst(p)
	return true
}

// CreateFile appends an empty file to a project and makes it active.
func (s *Store) CreateFile(projectID, name string) (File, bool) {
	name = strings.TrimSpace(name)
	i := s.projectIndex(projectID)
	if name == "" || i < 0 {
		return File{}, false
	}

	p := &s.projects[i]
	f := File{ID: s.newID(), Name: name}
	p.Files = append(p.Files, f)
	p.UpdatedAt = s.now()

	s.activate(p.ID, &f)
	s.results = Results{}
	s.unsaved = true
	return f, true
}

// SelectFile activates a file and loads its content into the editor.
func (s *Store) SelectFile(projectID, fileID string) bool {
	i := s.projectIndex(projectID)
	if i < 0 {
		return false
	}
	f, ok := s.projects[i].File(fileID)
	if !ok {
		return false
	}
	s.activate(projectID, &f)
	return true
}

// UpdateFileContent replaces the content of exactly one file. Updating the
// active file also updates the editor text.
func (s *Store) UpdateFileContent(projectID, fileID, text string) bool {
	i := s.projectIndex(projectID)
	if i < 0 {
		return false
	}
	p := &s.projects[i]
	j := p.fileIndex(fileID)
	if j < 0 {
		return false
	}

	p.Files[j].Content = text
	p.UpdatedAt = s.now()
	s.unsaved = true

	if s.sel.ProjectID == projectID && s.sel.FileID == fileID {
		s.setText(text)
	}
	return true
}

// DeleteProject removes a project. Deleting the active project selects the
// first remaining project and its first file, or clears the selection.
func (s *Store) DeleteProject(id string) bool {
	i := s.projectIndex(id)
	if i < 0 {
		return false
	}
	s.projects = append(s.projects[:i], s.projects[i+1:]...)

	if s.sel.ProjectID == id {
		if len(s.projects) > 0 {
			s.activateFirst(&s.projects[0])
		} else {
			s.activate("", nil)
		}
		s.results = Results{}
	}
	s.unsaved = true
	return true
}

// DeleteFile removes a file from its project. Deleting the active file
// selects the project's first remaining file, or no file.
func (s *Store) DeleteFile(projectID, fileID string) bool {
	i := s.projectIndex(projectID)
	if i < 0 {
		return false
	}
	p := &s.projects[i]
	j := p.fileIndex(fileID)
	if j < 0 {
		return false
	}
	p.Files = append(p.Files[:j], p.Files[j+1:]...)
	p.UpdatedAt = s.now()

	if s.sel.ProjectID == projectID && s.sel.FileID == fileID {
		s.activateFirst(p)
		s.results = Results{}
	}
	s.unsaved = true
	return true
}

// SetText is an editor keystroke: the text is written through to the
// active file, if any. Without an active file it is a scratch buffer.
func (s *Store) SetText(text string) {
	if s.sel.FileID != "" {
		s.UpdateFileContent(s.sel.ProjectID, s.sel.FileID, text)
		return
	}
	s.setText(text)
}

// ApplyTemplate loads a starter circuit into the editor and remembers its
// testbench for later simulation.
func (s *Store) ApplyTemplate(code, testbench string) {
	s.SetText(code)
	s.testbench = testbench
	s.results = Results{}
}

// LoadSnapshot loads saved history code into the editor.
func (s *Store) LoadSnapshot(code string) {
	s.SetText(code)
	s.results = Results{}
}

// SetAnalysis records the latest analysis result.
func (s *Store) SetAnalysis(a *backend.Analysis) { s.results.Analysis = a }

// SetWaveform records the latest simulation result.
func (s *Store) SetWaveform(w *backend.Waveform) { s.results.Waveform = w }

// ClearResults drops both derived results.
func (s *Store) ClearResults() { s.results = Results{} }

// Restore replaces every project with projects, as loaded from storage.
// The first project and its first file become active and the unsaved flag
// is cleared.
func (s *Store) Restore(projects []Project) {
	s.projects = make([]Project, len(projects))
	for i := range projects {
		s.projects[i] = projects[i].clone()
	}
	if len(s.projects) > 0 {
		s.activateFirst(&s.projects[0])
	} else {
		s.activate("", nil)
	}
	s.results = Results{}
	s.unsaved = false
}

// MarkSaved clears the unsaved flag after a successful write to storage.
func (s *Store) MarkSaved() { s.unsaved = false }

func (s *Store) activate(projectID string, f *File) {
	if f == nil {
		s.sel = Selection{ProjectID: projectID}
		s.setText("")
		return
	}
	s.sel = Selection{ProjectID: projectID, FileID: f.ID}
	s.setText(f.Content)
}

func (s *Store) activateFirst(p *Project) {
	if len(p.Files) == 0 {
		s.activate(p.ID, nil)
		return
	}
	f := p.Files[0]
	s.activate(p.ID, &f)
}

func (s *Store) projectIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}
