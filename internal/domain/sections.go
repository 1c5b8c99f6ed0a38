package domain

import "fmt"

// SectionKind names a repeated section of the Record
type SectionKind string

const (
	SectionEducations     SectionKind = "educations"
	SectionJobExperiences SectionKind = "jobExperiences"
	SectionSkills         SectionKind = "skills"
	SectionCertifications SectionKind = "certifications"
	SectionLanguages      SectionKind = "languages"
	SectionProjects       SectionKind = "projects"
	SectionReferences     SectionKind = "references"
)

// SectionKinds lists all repeated sections in wizard order
var SectionKinds = []SectionKind{
	SectionEducations,
	SectionJobExperiences,
	SectionSkills,
	SectionCertifications,
	SectionLanguages,
	SectionProjects,
	SectionReferences,
}

// ParseSectionKind validates a section name
func ParseSectionKind(name string) (SectionKind, error) {
	for _, k := range SectionKinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// RemovalPolicy decides which removals a section accepts.
//
// The sections do not agree: skills and languages only keep the last entry,
// every other section also pins its first entry.
type RemovalPolicy int

const (
	// KeepOne rejects removing the only remaining entry
	KeepOne RemovalPolicy = iota
	// PinFirst additionally rejects removing index 0
	PinFirst
)

func (p RemovalPolicy) String() string {
	if p == PinFirst {
		return "pin-first"
	}
	return "keep-one"
}

// Policy returns the removal policy of a section
func (k SectionKind) Policy() RemovalPolicy {
	switch k {
	case SectionSkills, SectionLanguages:
		return KeepOne
	default:
		return PinFirst
	}
}

// Label is the human readable section name
func (k SectionKind) Label() string {
	switch k {
	case SectionEducations:
		return "Education"
	case SectionJobExperiences:
		return "Experience"
	case SectionSkills:
		return "Skills"
	case SectionCertifications:
		return "Certifications"
	case SectionLanguages:
		return "Languages"
	case SectionProjects:
		return "Projects"
	case SectionReferences:
		return "References"
	}
	return string(k)
}

// SectionEditor is the ordered-collection view over one repeated section.
// It enforces the removal policy so callers never re-check bounds.
type SectionEditor interface {
	Kind() SectionKind
	Len() int
	Entry(index int) (Entry, error)
	Append(id string) Entry
	Remove(index int) error
	CanRemove(index int) error
}

type collection[T any, PT interface {
	*T
	Entry
}] struct {
	kind  SectionKind
	items *[]T
	blank func(id string) T
}

func (c *collection[T, PT]) Kind() SectionKind { return c.kind }

func (c *collection[T, PT]) Len() int { return len(*c.items) }

func (c *collection[T, PT]) Entry(index int) (Entry, error) {
	if index < 0 || index >= len(*c.items) {
		return nil, fmt.Errorf("%w: %s[%d] (len %d)", ErrIndexOutOfRange, c.kind, index, len(*c.items))
	}
	return PT(&(*c.items)[index]), nil
}

func (c *collection[T, PT]) Append(id string) Entry {
	*c.items = append(*c.items, c.blank(id))
	return PT(&(*c.items)[len(*c.items)-1])
}

func (c *collection[T, PT]) CanRemove(index int) error {
	n := len(*c.items)
	if index < 0 || index >= n {
		return fmt.Errorf("%w: %s[%d] (len %d)", ErrIndexOutOfRange, c.kind, index, n)
	}
	if n <= 1 {
		return fmt.Errorf("%w: %s", ErrLastEntry, c.kind)
	}
	if c.kind.Policy() == PinFirst && index == 0 {
		return fmt.Errorf("%w: %s", ErrPinnedEntry, c.kind)
	}
	return nil
}

func (c *collection[T, PT]) Remove(index int) error {
	if err := c.CanRemove(index); err != nil {
		return err
	}
	items := *c.items
	*c.items = append(items[:index:index], items[index+1:]...)
	return nil
}

// Section returns the editor for a repeated section. It panics on an unknown
// kind; use ParseSectionKind on untrusted input.
func (r *Record) Section(kind SectionKind) SectionEditor {
	switch kind {
	case SectionEducations:
		return &collection[Education, *Education]{kind: kind, items: &r.Educations, blank: func(id string) Education {
			return Education{ID: id}
		}}
	case SectionJobExperiences:
		return &collection[JobExperience, *JobExperience]{kind: kind, items: &r.JobExperiences, blank: func(id string) JobExperience {
			return JobExperience{ID: id}
		}}
	case SectionSkills:
		return &collection[Skill, *Skill]{kind: kind, items: &r.Skills, blank: func(id string) Skill {
			return Skill{ID: id, Category: DefaultSkillCategory}
		}}
	case SectionCertifications:
		return &collection[Certification, *Certification]{kind: kind, items: &r.Certifications, blank: func(id string) Certification {
			return Certification{ID: id}
		}}
	case SectionLanguages:
		return &collection[Language, *Language]{kind: kind, items: &r.Languages, blank: func(id string) Language {
			return Language{ID: id}
		}}
	case SectionProjects:
		return &collection[Project, *Project]{kind: kind, items: &r.Projects, blank: func(id string) Project {
			return Project{ID: id}
		}}
	case SectionReferences:
		return &collection[Reference, *Reference]{kind: kind, items: &r.References, blank: func(id string) Reference {
			return Reference{ID: id}
		}}
	}
	panic(fmt.Sprintf("domain: unknown section %q", kind))
}
