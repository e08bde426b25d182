package workspace

import "time"

// File is one Verilog source owned by exactly one Project.
type File struct {
	// ID is a ULID assigned at creation; never changes.
	ID string `json:"id"`

	// Name is the display name (e.g. "adder.v").
	Name string `json:"name"`

	// Content is the editable source text.
	Content string `json:"content"`
}

// Project is an ordered collection of files.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Files     []File    `json:"files"`
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is refreshed by any change to the project or its files.
	UpdatedAt time.Time `json:"updatedAt"`
}

// File returns the file with id, if present.
func (p *Project) File(id string) (File, bool) {
	if i := p.fileIndex(id); i >= 0 {
		return p.Files[i], true
	}
	return File{}, false
}

func (p *Project) fileIndex(id string) int {
	for i := range p.Files {
		if p.Files[i].ID == id {
			return i
		}
	}
	return -1
}

func (p Project) clone() Project {
	p.Files = append([]File(nil), p.Files...)
	if p.Files == nil {
		p.Files = []File{}
	}
	return p
}

// Selection points at the active project and file. FileID is only set when
// ProjectID is, and always names a file of that project.
type Selection struct {
	ProjectID string `json:"active_project_id,omitempty"`
	FileID    string `json:"active_file_id,omitempty"`
}
