package domain

// Project is a mined software project.
type Project struct {
	ID   string
	Name string
}

// VCSSystem is the version control system of a project.
type VCSSystem struct {
	ID        string
	ProjectID string
	URL       string
}

// Commit is a single revision in a VCS system, together with the manual
// validation labels attached by the dataset authors.
type Commit struct {
	ID              string
	VCSSystemID     string
	RevisionHash    string
	ValidatedBugfix bool
	Parents         []string
}

// EligibleBugfix reports whether the commit qualifies for export: it must
// be a validated bugfix and have exactly one parent, so there is no
// ambiguity about which parent the lines were labelled against.
func (c Commit) EligibleBugfix() bool {
	return c.ValidatedBugfix && len(c.Parents) == 1
}

// FileAction records how a commit touched one file.
type FileAction struct {
	ID        string
	CommitID  string
	FileID    string
	OldFileID string
	Mode      string
}

// File is a path in the repository at some point of its history.
type File struct {
	ID   string
	Path string
}
