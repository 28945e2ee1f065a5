package domain

// FileChangeType classifies a file change in the working tree or index
type FileChangeType string

const (
	ChangeAdded     FileChangeType = "added"
	ChangeModified  FileChangeType = "modified"
	ChangeDeleted   FileChangeType = "deleted"
	ChangeRenamed   FileChangeType = "renamed"
	ChangeCopied    FileChangeType = "copied"
	ChangeUntracked FileChangeType = "untracked"
)

// FileStatus is the status of a single file
type FileStatus struct {
	OldPath string         `json:"oldPath,omitempty"` // original path for renames
	Path    string         `json:"path"`
	Status  FileChangeType `json:"status"`
}

// GitStatus is a snapshot of a repository working tree
type GitStatus struct {
	Ahead     int          `json:"ahead"`
	Behind    int          `json:"behind"`
	Branch    string       `json:"branch"`
	Staged    []FileStatus `json:"staged"`
	Unstaged  []FileStatus `json:"unstaged"`
	Untracked []string     `json:"untracked"`
}

// Commit is one entry of a repository log
type Commit struct {
	Author    string `json:"author"`
	Email     string `json:"email"`
	ID        string `json:"id"`
	Message   string `json:"message"`
	ShortID   string `json:"shortId"`
	Timestamp string `json:"timestamp"`
}

// Branch is a local or remote branch
type Branch struct {
	IsCurrent bool   `json:"isCurrent"`
	IsRemote  bool   `json:"isRemote"`
	Name      string `json:"name"`
	Upstream  string `json:"upstream,omitempty"`
}

// FileDelta is per-file line change statistics for uncommitted changes
type FileDelta struct {
	Added   int    `json:"added"`
	Path    string `json:"path"`
	Removed int    `json:"removed"`
}

// CommandOutput is the result of a git write command
type CommandOutput struct {
	Stderr  string `json:"stderr"`
	Stdout  string `json:"stdout"`
	Success bool   `json:"success"`
}
