package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/taskdesk/taskdesk/internal/model"
)

// CreateProject inserts a new project. A blank name is rejected with
// ErrEmptyName; name uniqueness is advisory and not enforced here. Colors
// outside the palette coerce to gray.
func (r *Repository) CreateProject(in model.ProjectInput) (*model.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	p := model.Project{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Color:       model.NormalizeColor(in.Color),
		IsDefault:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.projects = append(r.projects, p)

	out := p
	if err := r.persistProjectsLocked(); err != nil {
		return &out, err
	}
	return &out, nil
}

// UpdateProject merges the set fields of patch into the project and
// refreshes UpdatedAt. The IsDefault flag is not patchable.
func (r *Repository) UpdateProject(id string, patch model.ProjectPatch) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findProjectLocked(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	p := &r.projects[idx]

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, ErrEmptyName
		}
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Color != nil {
		p.Color = model.NormalizeColor(*patch.Color)
	}
	p.UpdatedAt = r.now()

	out := *p
	if err := r.persistProjectsLocked(); err != nil {
		return &out, err
	}
	return &out, nil
}

// DeleteProject removes a project after reassigning every task that
// references it to the default project. The default project itself is never
// deletable (ErrDefaultProject). The reassignment is persisted first: if it
// fails, the project collection is left untouched.
func (r *Repository) DeleteProject(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findProjectLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	if r.projects[idx].IsDefault {
		return ErrDefaultProject
	}

	def := r.defaultProjectLocked()
	now := r.now()
	reassigned := false
	for i := range r.tasks {
		if r.tasks[i].ProjectID == id {
			r.tasks[i].ProjectID = def.ID
			r.tasks[i].UpdatedAt = now
			reassigned = true
		}
	}
	if reassigned {
		if err := r.persistTasksLocked(); err != nil {
			return fmt.Errorf("reassigning tasks of project %s: %w", id, err)
		}
	}

	r.projects = append(r.projects[:idx], r.projects[idx+1:]...)
	return r.persistProjectsLocked()
}

// ResolveProject validates a project reference. It returns the id unchanged
// when it refers to an existing project; otherwise it returns the default
// project's id with corrected=true, so callers can observe that the
// fallback fired.
func (r *Repository) ResolveProject(id string) (resolved string, corrected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveProjectLocked(id)
}

func (r *Repository) resolveProjectLocked(id string) (string, bool) {
	if id != "" && r.findProjectLocked(id) >= 0 {
		return id, false
	}
	return r.defaultProjectLocked().ID, true
}

// Project returns a copy of the project with the given id.
func (r *Repository) Project(id string) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findProjectLocked(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	out := r.projects[idx]
	return &out, nil
}

// Projects returns a read-only snapshot of the project collection.
func (r *Repository) Projects() []model.Project {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// DefaultProject returns a copy of the default project.
func (r *Repository) DefaultProject() model.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.defaultProjectLocked()
}

func (r *Repository) findProjectLocked(id string) int {
	for i := range r.projects {
		if r.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) defaultProjectLocked() *model.Project {
	for i := range r.projects {
		if r.projects[i].IsDefault {
			return &r.projects[i]
		}
	}
	// ensureDefaultLocked keeps this unreachable for non-empty collections.
	r.ensureDefaultLocked()
	return &r.projects[0]
}

// ensureDefaultLocked restores the exactly-one-default invariant: an empty
// collection gets a freshly created default project (persisted immediately),
// and a collection with zero or multiple defaults is repaired in place.
func (r *Repository) ensureDefaultLocked() {
	if len(r.projects) == 0 {
		now := r.now()
		r.projects = []model.Project{{
			ID:        uuid.New().String(),
			Name:      r.defaultName,
			Color:     model.ColorGray,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}}
		_ = r.persistProjectsLocked()
		return
	}

	seen := false
	changed := false
	for i := range r.projects {
		if r.projects[i].IsDefault {
			if seen {
				r.projects[i].IsDefault = false
				changed = true
			}
			seen = true
		}
	}
	if !seen {
		r.projects[0].IsDefault = true
		changed = true
	}
	if changed {
		_ = r.persistProjectsLocked()
	}
}
