package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Thomsch/export-lltc4j/internal/domain"
)

// Store reads LLTC4J snapshots from a SQLite database. A snapshot holds
// the SmartSHARK collections needed for the export: projects, VCS
// systems, commits, file actions, files, and hunks. The variable-shaped
// fields of the upstream documents (commit parents, verified line
// offsets) are stored as JSON text.
//
// The insert methods exist to build snapshots from upstream dumps and to
// seed test fixtures; the export pipeline only reads.
type Store struct {
	db *sql.DB
}

// NewStore opens (and initializes) a snapshot database at the given
// path. Use ":memory:" for an in-memory database in tests.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS vcs_systems (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		url TEXT NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS commits (
		id TEXT PRIMARY KEY,
		vcs_system_id TEXT NOT NULL,
		revision_hash TEXT NOT NULL,
		validated_bugfix INTEGER NOT NULL DEFAULT 0,
		parents TEXT NOT NULL DEFAULT '[]',
		FOREIGN KEY (vcs_system_id) REFERENCES vcs_systems(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS file_actions (
		id TEXT PRIMARY KEY,
		commit_id TEXT NOT NULL,
		file_id TEXT,
		old_file_id TEXT,
		mode TEXT,
		FOREIGN KEY (commit_id) REFERENCES commits(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS hunks (
		id TEXT PRIMARY KEY,
		file_action_id TEXT NOT NULL,
		old_start INTEGER NOT NULL,
		old_lines INTEGER NOT NULL,
		new_start INTEGER NOT NULL,
		new_lines INTEGER NOT NULL,
		content TEXT NOT NULL,
		lines_verified TEXT NOT NULL DEFAULT '{}',
		FOREIGN KEY (file_action_id) REFERENCES file_actions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_vcs_systems_project ON vcs_systems(project_id);
	CREATE INDEX IF NOT EXISTS idx_commits_vcs ON commits(vcs_system_id);
	CREATE INDEX IF NOT EXISTS idx_commits_hash ON commits(revision_hash);
	CREATE INDEX IF NOT EXISTS idx_file_actions_commit ON file_actions(commit_id);
	CREATE INDEX IF NOT EXISTS idx_hunks_file_action ON hunks(file_action_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Projects returns the projects matching the given names in insertion
// order. An empty names slice returns every project.
func (s *Store) Projects(ctx context.Context, names []string) ([]domain.Project, error) {
	query := "SELECT id, name FROM projects"
	args := make([]interface{}, 0, len(names))
	if len(names) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
		query += " WHERE name IN (" + placeholders + ")"
		for _, name := range names {
			args = append(args, name)
		}
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// VCSSystem returns the VCS system of a project.
func (s *Store) VCSSystem(ctx context.Context, projectID string) (domain.VCSSystem, error) {
	var vcs domain.VCSSystem
	err := s.db.QueryRowContext(ctx,
		"SELECT id, project_id, url FROM vcs_systems WHERE project_id = ?", projectID,
	).Scan(&vcs.ID, &vcs.ProjectID, &vcs.URL)
	if err != nil {
		return domain.VCSSystem{}, fmt.Errorf("vcs system for project %s: %w", projectID, err)
	}
	return vcs, nil
}

// ForEachCommit streams the commits of a VCS system in insertion order.
// Iteration stops at the first error returned by fn, which is passed
// through unchanged so callers can use sentinel errors for early exit.
func (s *Store) ForEachCommit(ctx context.Context, vcsSystemID string, fn func(domain.Commit) error) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, vcs_system_id, revision_hash, validated_bugfix, parents FROM commits WHERE vcs_system_id = ? ORDER BY rowid",
		vcsSystemID,
	)
	if err != nil {
		return fmt.Errorf("query commits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		commit, err := scanCommit(rows)
		if err != nil {
			return err
		}
		if err := fn(commit); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CommitByHash returns the commit with the given revision hash.
func (s *Store) CommitByHash(ctx context.Context, revisionHash string) (domain.Commit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, vcs_system_id, revision_hash, validated_bugfix, parents FROM commits WHERE revision_hash = ?",
		revisionHash,
	)
	if err != nil {
		return domain.Commit{}, fmt.Errorf("query commit %s: %w", revisionHash, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Commit{}, err
		}
		return domain.Commit{}, fmt.Errorf("commit %s: %w", revisionHash, sql.ErrNoRows)
	}
	return scanCommit(rows)
}

func scanCommit(rows *sql.Rows) (domain.Commit, error) {
	var commit domain.Commit
	var validated int
	var parentsJSON string
	if err := rows.Scan(&commit.ID, &commit.VCSSystemID, &commit.RevisionHash, &validated, &parentsJSON); err != nil {
		return domain.Commit{}, fmt.Errorf("scan commit: %w", err)
	}
	commit.ValidatedBugfix = validated != 0
	if err := json.Unmarshal([]byte(parentsJSON), &commit.Parents); err != nil {
		return domain.Commit{}, fmt.Errorf("decode parents of %s: %w", commit.RevisionHash, err)
	}
	return commit, nil
}

// FileActions returns the file actions of a commit in insertion order.
func (s *Store) FileActions(ctx context.Context, commitID string) ([]domain.FileAction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, commit_id, COALESCE(file_id, ''), COALESCE(old_file_id, ''), COALESCE(mode, '') FROM file_actions WHERE commit_id = ? ORDER BY rowid",
		commitID,
	)
	if err != nil {
		return nil, fmt.Errorf("query file actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.FileAction
	for rows.Next() {
		var fa domain.FileAction
		if err := rows.Scan(&fa.ID, &fa.CommitID, &fa.FileID, &fa.OldFileID, &fa.Mode); err != nil {
			return nil, fmt.Errorf("scan file action: %w", err)
		}
		actions = append(actions, fa)
	}
	return actions, rows.Err()
}

// File returns a file by ID.
func (s *Store) File(ctx context.Context, fileID string) (domain.File, error) {
	var file domain.File
	err := s.db.QueryRowContext(ctx, "SELECT id, path FROM files WHERE id = ?", fileID).Scan(&file.ID, &file.Path)
	if err != nil {
		return domain.File{}, fmt.Errorf("file %s: %w", fileID, err)
	}
	return file, nil
}

// Hunks returns the hunks of a file action in insertion order.
func (s *Store) Hunks(ctx context.Context, fileActionID string) ([]domain.Hunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT old_start, old_lines, new_start, new_lines, content, lines_verified FROM hunks WHERE file_action_id = ? ORDER BY rowid",
		fileActionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query hunks: %w", err)
	}
	defer rows.Close()

	var hunks []domain.Hunk
	for rows.Next() {
		var hunk domain.Hunk
		var verifiedJSON string
		if err := rows.Scan(&hunk.OldStart, &hunk.OldLines, &hunk.NewStart, &hunk.NewLines, &hunk.Content, &verifiedJSON); err != nil {
			return nil, fmt.Errorf("scan hunk: %w", err)
		}
		if err := json.Unmarshal([]byte(verifiedJSON), &hunk.LinesVerified); err != nil {
			return nil, fmt.Errorf("decode lines_verified: %w", err)
		}
		hunks = append(hunks, hunk)
	}
	return hunks, rows.Err()
}

// InsertProject stores a project.
func (s *Store) InsertProject(ctx context.Context, project domain.Project) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO projects (id, name) VALUES (?, ?)", project.ID, project.Name)
	if err != nil {
		return fmt.Errorf("insert project %s: %w", project.Name, err)
	}
	return nil
}

// InsertVCSSystem stores a VCS system.
func (s *Store) InsertVCSSystem(ctx context.Context, vcs domain.VCSSystem) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO vcs_systems (id, project_id, url) VALUES (?, ?, ?)",
		vcs.ID, vcs.ProjectID, vcs.URL)
	if err != nil {
		return fmt.Errorf("insert vcs system %s: %w", vcs.ID, err)
	}
	return nil
}

// InsertCommit stores a commit.
func (s *Store) InsertCommit(ctx context.Context, commit domain.Commit) error {
	parents, err := json.Marshal(commit.Parents)
	if err != nil {
		return fmt.Errorf("encode parents of %s: %w", commit.RevisionHash, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO commits (id, vcs_system_id, revision_hash, validated_bugfix, parents) VALUES (?, ?, ?, ?, ?)",
		commit.ID, commit.VCSSystemID, commit.RevisionHash, boolToInt(commit.ValidatedBugfix), string(parents))
	if err != nil {
		return fmt.Errorf("insert commit %s: %w", commit.RevisionHash, err)
	}
	return nil
}

// InsertFile stores a file.
func (s *Store) InsertFile(ctx context.Context, file domain.File) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO files (id, path) VALUES (?, ?)", file.ID, file.Path)
	if err != nil {
		return fmt.Errorf("insert file %s: %w", file.Path, err)
	}
	return nil
}

// InsertFileAction stores a file action.
func (s *Store) InsertFileAction(ctx context.Context, action domain.FileAction) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO file_actions (id, commit_id, file_id, old_file_id, mode) VALUES (?, ?, ?, ?, ?)",
		action.ID, action.CommitID, nullable(action.FileID), nullable(action.OldFileID), nullable(action.Mode))
	if err != nil {
		return fmt.Errorf("insert file action %s: %w", action.ID, err)
	}
	return nil
}

// InsertHunk stores a hunk.
func (s *Store) InsertHunk(ctx context.Context, id, fileActionID string, hunk domain.Hunk) error {
	verified := hunk.LinesVerified
	if verified == nil {
		verified = map[string][]int{}
	}
	encoded, err := json.Marshal(verified)
	if err != nil {
		return fmt.Errorf("encode lines_verified of %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO hunks (id, file_action_id, old_start, old_lines, new_start, new_lines, content, lines_verified) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, fileActionID, hunk.OldStart, hunk.OldLines, hunk.NewStart, hunk.NewLines, hunk.Content, string(encoded))
	if err != nil {
		return fmt.Errorf("insert hunk %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
