package admin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dawnlightpress/pages/internal/feat/content"
	"github.com/dawnlightpress/pages/internal/feat/site"
	"github.com/dawnlightpress/pages/pkg/dp/config"
	"github.com/dawnlightpress/pages/pkg/dp/git"
	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidSlug       = errors.New("invalid slug")
)

// Service implements the CMS operations: entry CRUD over the content
// tree, previews, builds, publishing, and schedules.
type Service struct {
	cfg       *config.Config
	store     *Store
	content   content.Store
	gen       *site.Generator
	gitClient git.Client
	log       logger.Logger
}

func NewService(cfg *config.Config, store *Store, contentStore content.Store, gen *site.Generator, gitClient git.Client, log logger.Logger) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		content:   contentStore,
		gen:       gen,
		gitClient: gitClient,
		log:       log,
	}
}

// --- Entries ---

func (s *Service) ListEntries(ctx context.Context, collection string) ([]content.Record, error) {
	if _, ok := collectionBodyField(collection); !ok {
		return nil, ErrUnknownCollection
	}
	return s.content.All(ctx, collection)
}

func (s *Service) GetEntry(ctx context.Context, collection, slug string) (map[string]any, error) {
	if _, ok := collectionBodyField(collection); !ok {
		return nil, ErrUnknownCollection
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	entry, err := s.content.Read(ctx, collection, slug)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

// SaveEntry writes an entry back as a frontmatter+body file and, when
// commit-on-save is enabled, commits the content tree.
func (s *Service) SaveEntry(ctx context.Context, collection, slug string, frontmatter map[string]any, body string) error {
	bodyField, ok := collectionBodyField(collection)
	if !ok {
		return ErrUnknownCollection
	}
	if err := validateSlug(slug); err != nil {
		return err
	}

	// the body field travels separately; never duplicate it in the header
	delete(frontmatter, bodyField)

	yamlBytes, err := yaml.Marshal(frontmatter)
	if err != nil {
		return fmt.Errorf("cannot marshal frontmatter: %w", err)
	}
	fileContent := fmt.Sprintf("---\n%s---\n\n%s", string(yamlBytes), body)

	path := filepath.Join(s.cfg.Content.Root, collection, slug+".mdoc")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create collection directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(fileContent), 0644); err != nil {
		return fmt.Errorf("cannot write entry: %w", err)
	}

	return s.commitOnSave(ctx, fmt.Sprintf("content: update %s/%s", collection, slug))
}

func (s *Service) DeleteEntry(ctx context.Context, collection, slug string) error {
	if _, ok := collectionBodyField(collection); !ok {
		return ErrUnknownCollection
	}
	if err := validateSlug(slug); err != nil {
		return err
	}

	deleted := false
	for _, ext := range []string{".mdoc", ".yaml", ".yml"} {
		path := filepath.Join(s.cfg.Content.Root, collection, slug+ext)
		err := os.Remove(path)
		if err == nil {
			deleted = true
			continue
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot delete entry: %w", err)
		}
	}
	if !deleted {
		return ErrNotFound
	}

	return s.commitOnSave(ctx, fmt.Sprintf("content: delete %s/%s", collection, slug))
}

// --- Singletons ---

func (s *Service) GetSingleton(ctx context.Context, name string) (map[string]any, error) {
	entry, err := s.content.ReadSingleton(ctx, name)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

// SaveSingleton writes a singleton as a plain YAML document.
func (s *Service) SaveSingleton(ctx context.Context, name string, data map[string]any) error {
	if err := validateSlug(name); err != nil {
		return err
	}

	yamlBytes, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("cannot marshal singleton: %w", err)
	}

	path := filepath.Join(s.cfg.Content.Root, name+".yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create content root: %w", err)
	}
	if err := os.WriteFile(path, yamlBytes, 0644); err != nil {
		return fmt.Errorf("cannot write singleton: %w", err)
	}

	return s.commitOnSave(ctx, fmt.Sprintf("content: update %s", name))
}

// --- Preview ---

// Preview parses in-memory file contents without touching the content
// tree, so the editor can render unsaved changes. files maps content-root
// relative paths to raw contents.
func (s *Service) Preview(ctx context.Context, files map[string]string, collection, slug string) (map[string]any, error) {
	snapshot := content.NewSnapshotStore(files, s.log)
	svc := content.NewService(snapshot, s.log)

	if slug == "" {
		return snapshot.ReadSingleton(ctx, collection)
	}

	switch collection {
	case content.ColBooks:
		return svc.GetBookWithAuthors(ctx, slug)
	case content.ColNews:
		return svc.GetNewsBySlug(ctx, slug)
	case content.ColAuthors:
		return svc.GetAuthorWithBooks(ctx, slug)
	default:
		return snapshot.Read(ctx, collection, slug)
	}
}

// --- Builds ---

// TriggerBuild runs a generation pass and records it in build history.
func (s *Service) TriggerBuild(ctx context.Context, triggeredBy string) (*BuildRun, error) {
	run := &BuildRun{
		ID:          uuid.New(),
		TriggeredBy: triggeredBy,
		Status:      BuildRunning,
		StartedAt:   time.Now().UTC(),
	}
	run.ShortID = newShortID(run.ID)

	if err := s.store.CreateBuildRun(ctx, run); err != nil {
		return nil, err
	}

	result, err := s.gen.Generate(ctx)
	if err != nil {
		run.Status = BuildFailed
		run.Errors = []string{err.Error()}
	} else {
		run.Status = BuildSucceeded
		run.TotalRoutes = result.TotalRoutes
		run.PagesGenerated = result.PagesGenerated
		run.Errors = result.Errors
	}

	if storeErr := s.store.FinishBuildRun(ctx, run); storeErr != nil {
		s.log.Error("Cannot record build result", "run", run.ShortID, "error", storeErr)
	}
	if err != nil {
		return run, fmt.Errorf("build failed: %w", err)
	}
	return run, nil
}

func (s *Service) ListBuildRuns(ctx context.Context, limit int) ([]*BuildRun, error) {
	return s.store.ListBuildRuns(ctx, limit)
}

// --- Publishing ---

// Publish pushes the generated output to the configured site repository:
// clone, replace everything except .git, commit, push. Returns the commit
// hash, or "" when the output matched what was already published.
func (s *Service) Publish(ctx context.Context, message string) (string, error) {
	if s.cfg.Publish.RepoURL == "" {
		return "", errors.New("publish.repo_url is not configured")
	}
	if message == "" {
		message = "publish: site update"
	}

	auth := git.Auth{Method: git.AuthNone}
	if s.cfg.Publish.AuthToken != "" {
		auth = git.Auth{Method: git.AuthToken, Token: s.cfg.Publish.AuthToken}
	}

	workDir, err := os.MkdirTemp("", "pages-publish-")
	if err != nil {
		return "", fmt.Errorf("cannot create publish workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	repoDir := filepath.Join(workDir, "site")
	if err := s.gitClient.Clone(ctx, s.cfg.Publish.RepoURL, repoDir, auth); err != nil {
		return "", err
	}
	if s.cfg.Publish.Branch != "" {
		if err := s.gitClient.Checkout(ctx, repoDir, s.cfg.Publish.Branch, false); err != nil {
			// branch may not exist yet on a fresh repository
			if err := s.gitClient.Checkout(ctx, repoDir, s.cfg.Publish.Branch, true); err != nil {
				return "", err
			}
		}
	}

	if err := replaceDirContents(repoDir, s.cfg.Site.OutputDir); err != nil {
		return "", err
	}

	if err := s.gitClient.AddAll(ctx, repoDir); err != nil {
		return "", err
	}
	if status, err := s.gitClient.Status(ctx, repoDir); err == nil && strings.TrimSpace(status) != "" {
		s.log.Debug("Publishing changes", "status", status)
	}
	hash, err := s.gitClient.Commit(ctx, repoDir, git.Commit{
		UserName:  s.cfg.Publish.CommitName,
		UserEmail: s.cfg.Publish.CommitEmail,
		Message:   message,
	})
	if err != nil {
		return "", err
	}
	if hash == "" {
		s.log.Info("Publish skipped, output unchanged")
		return "", nil
	}

	if err := s.gitClient.Push(ctx, repoDir, auth, "origin", s.cfg.Publish.Branch); err != nil {
		return "", err
	}

	s.log.Info("Published site", "commit", hash)
	return hash, nil
}

func (s *Service) commitOnSave(ctx context.Context, message string) error {
	if !s.cfg.Publish.CommitOnSave {
		return nil
	}

	if err := s.gitClient.AddAll(ctx, s.cfg.Content.Root); err != nil {
		s.log.Warn("Cannot stage content changes", "error", err)
		return nil
	}
	if _, err := s.gitClient.Commit(ctx, s.cfg.Content.Root, git.Commit{
		UserName:  s.cfg.Publish.CommitName,
		UserEmail: s.cfg.Publish.CommitEmail,
		Message:   message,
	}); err != nil {
		s.log.Warn("Cannot commit content changes", "error", err)
	}
	return nil
}

// --- Schedules ---

func (s *Service) CreateSchedule(ctx context.Context, publishAt time.Time, message string) (*PublishSchedule, error) {
	if publishAt.Before(time.Now()) {
		return nil, errors.New("publish time is in the past")
	}

	schedule := &PublishSchedule{
		ID:            uuid.New(),
		PublishAt:     publishAt.UTC(),
		CommitMessage: message,
		Status:        SchedulePending,
	}
	schedule.ShortID = newShortID(schedule.ID)

	if err := s.store.CreateSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *Service) ListSchedules(ctx context.Context) ([]*PublishSchedule, error) {
	return s.store.ListSchedules(ctx)
}

func (s *Service) CancelSchedule(ctx context.Context, id uuid.UUID) error {
	return s.store.UpdateScheduleStatus(ctx, id, ScheduleCancelled, "")
}

// --- helpers ---

func collectionBodyField(collection string) (string, bool) {
	for _, spec := range content.CollectionSpecs() {
		if spec.Name == collection {
			return spec.BodyField, true
		}
	}
	return "", false
}

// validateSlug rejects anything that could escape the content tree.
func validateSlug(slug string) error {
	if slug == "" || strings.Contains(slug, "/") || strings.Contains(slug, "\\") || strings.Contains(slug, "..") {
		return ErrInvalidSlug
	}
	return nil
}

// replaceDirContents clears dst (keeping .git) and copies src into it.
func replaceDirContents(dst, src string) error {
	entries, err := os.ReadDir(dst)
	if err != nil {
		return fmt.Errorf("cannot read publish repo: %w", err)
	}
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dst, entry.Name())); err != nil {
			return fmt.Errorf("cannot clear publish repo: %w", err)
		}
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, raw, 0644)
	})
}
