package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *recordingNotifier) all() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (r *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = raw
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(r.entries, key)
		}
	}
	return nil
}

type pipelineFixture struct {
	store     *repository.MemoryStore
	notifier  *recordingNotifier
	metrics   *MetricsService
	cache     *CacheService
	templates *TemplateService
	jobs      *JobService
	students  *StudentService
	rounds    *RoundService
	selection *SelectionService
}

type fixtureOptions struct {
	strict   bool
	seed     bool
	cache    CacheRepository
	exporter *ExportService
}

func newPipelineFixture(t *testing.T, opts fixtureOptions) *pipelineFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	notifier := &recordingNotifier{}
	metrics := NewMetricsService()
	cache := NewCacheService(opts.cache, metrics, time.Minute, nil, opts.cache != nil)
	templates := NewTemplateService(notifier, nil, nil)

	f := &pipelineFixture{
		store:     store,
		notifier:  notifier,
		metrics:   metrics,
		cache:     cache,
		templates: templates,
		jobs:      NewJobService(store.Jobs(), templates, metrics, nil, nil),
		students:  NewStudentService(store.Students(), nil, nil),
		rounds: NewRoundService(store.Rounds(), store.Enrollments(), store.Students(), templates, cache, metrics,
			RoundServiceConfig{StrictTransitions: opts.strict}, nil, nil),
		selection: NewSelectionService(store.Rounds(), store.Students(), cache, templates, opts.exporter, nil),
	}
	if opts.seed {
		require.NoError(t, SeedSampleData(context.Background(), SeedRepositories{
			Jobs:        store.Jobs(),
			Students:    store.Students(),
			Rounds:      store.Rounds(),
			Enrollments: store.Enrollments(),
		}, nil))
	}
	return f
}

func (f *pipelineFixture) addStudent(t *testing.T, name, pkg string) *models.Student {
	t.Helper()
	student, err := f.students.Create(context.Background(), CreateStudentRequest{
		Name:       name,
		Email:      name + "@example.com",
		Department: "Computer Science",
		CGPA:       8.5,
		Package:    pkg,
		Position:   "Engineer",
	})
	require.NoError(t, err)
	return student
}

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
