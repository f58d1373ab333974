package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/repository"
)

// Store is an in-memory backing for every repository. One mutex guards all
// tables, so each multi-step write is atomic to readers.
type Store struct {
	mu sync.Mutex

	artworks   map[int64]*models.Artwork
	images     map[int64][]models.ArtworkImage
	logs       []*models.ModerationLogEntry
	flags      map[int64]*models.Flag
	users      map[int64]*models.User
	taxonomies map[models.TaxonomyKind][]models.TaxonomyEntry

	nextArtworkID int64
	nextImageID   int64
	nextLogID     int64
	nextFlagID    int64
	nextUserID    int64

	// LogAppendError fails the log append of Insert and Transition; the write is rolled back
	LogAppendError error
	// RollbackFails keeps the record write when the log append fails
	RollbackFails bool
	// ListError fails artwork listing
	ListError error
	// TaxonomyCalls counts taxonomy reads
	TaxonomyCalls int
	// BeforeUpdate runs at the start of Update, before the store lock is taken
	BeforeUpdate func(id int64)
}

// NewStore creates an empty store seeded with the default taxonomies
func NewStore() *Store {
	return &Store{
		artworks:   make(map[int64]*models.Artwork),
		images:     make(map[int64][]models.ArtworkImage),
		flags:      make(map[int64]*models.Flag),
		users:      make(map[int64]*models.User),
		taxonomies: DefaultTaxonomies(),
	}
}

// NewRepositories wires every repository interface to one store
func NewRepositories(store *Store) *repository.Repositories {
	return &repository.Repositories{
		Artwork:       &MockArtworkRepository{store},
		ModerationLog: &MockModerationLogRepository{store},
		Flag:          &MockFlagRepository{store},
		User:          &MockUserRepository{store},
		Taxonomy:      &MockTaxonomyRepository{store},
	}
}

// DefaultTaxonomies returns the seed classification tables
func DefaultTaxonomies() map[models.TaxonomyKind][]models.TaxonomyEntry {
	build := func(pairs ...string) []models.TaxonomyEntry {
		entries := make([]models.TaxonomyEntry, 0, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			entries = append(entries, models.TaxonomyEntry{ID: int64(i/2 + 1), Code: pairs[i], Name: pairs[i+1]})
		}
		return entries
	}
	return map[models.TaxonomyKind][]models.TaxonomyEntry{
		models.TaxonomyArtTypes: build(
			"cave-art", "Cave Art", "rock-art", "Rock Art", "mural", "Mural", "sculpture", "Sculpture",
			"textile", "Textile", "pottery", "Pottery", "carving", "Carving", "painting", "Painting",
			"installation", "Installation", "other", "Other",
		),
		models.TaxonomyPeriods: build(
			"ancient", "Ancient", "historical", "Historical", "modern", "Modern", "contemporary", "Contemporary",
		),
		models.TaxonomyRegions: build(
			"australia", "Australia", "north-america", "North America", "south-america", "South America",
			"africa", "Africa", "asia", "Asia", "europe", "Europe",
		),
	}
}

// AddUser stores a user and returns it with its id
func (s *Store) AddUser(username string, role models.Role, active bool) *models.User {
	u := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		FullName:  username,
		Role:      role,
		Active:    active,
		CreatedAt: time.Now().UTC(),
	}
	_ = (&MockUserRepository{s}).Create(context.Background(), u)
	return u
}

// LogEntries returns a copy of the whole log in append order
func (s *Store) LogEntries() []models.ModerationLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ModerationLogEntry, 0, len(s.logs))
	for _, e := range s.logs {
		out = append(out, *e)
	}
	return out
}

// decorate returns a copy of a stored artwork with joined display fields. Caller holds mu.
func (s *Store) decorate(art *models.Artwork) *models.Artwork {
	c := art.Clone()
	if u, ok := s.users[art.SubmittedBy]; ok {
		c.SubmitterUsername = u.Username
	}
	c.PrimaryImage = ""
	if imgs := s.sortedImages(art.ID); len(imgs) > 0 {
		c.PrimaryImage = imgs[0].ImagePath
	}
	return c
}

func (s *Store) sortedImages(artworkID int64) []models.ArtworkImage {
	imgs := append([]models.ArtworkImage(nil), s.images[artworkID]...)
	sort.SliceStable(imgs, func(i, j int) bool {
		if imgs[i].IsPrimary != imgs[j].IsPrimary {
			return imgs[i].IsPrimary
		}
		if imgs[i].DisplayOrder != imgs[j].DisplayOrder {
			return imgs[i].DisplayOrder < imgs[j].DisplayOrder
		}
		return imgs[i].ID < imgs[j].ID
	})
	return imgs
}

func (s *Store) lookupRef(kind models.TaxonomyKind, code string) *models.TaxonomyRef {
	if code == "" {
		return nil
	}
	for _, e := range s.taxonomies[kind] {
		if e.Code == code {
			return e.Ref()
		}
	}
	return nil
}

// appendLog appends an entry, honouring LogAppendError. Caller holds mu.
func (s *Store) appendLog(entry *models.ModerationLogEntry) error {
	if s.LogAppendError != nil {
		return s.LogAppendError
	}
	s.nextLogID++
	entry.ID = s.nextLogID
	stored := *entry
	s.logs = append(s.logs, &stored)
	return nil
}

// MockArtworkRepository is an in-memory ArtworkRepository
type MockArtworkRepository struct {
	*Store
}

var _ repository.ArtworkRepository = (*MockArtworkRepository)(nil)

func (m *MockArtworkRepository) Insert(ctx context.Context, art *models.Artwork, entry *models.ModerationLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[art.SubmittedBy]; !ok {
		return fmt.Errorf("failed to insert artwork: %w", models.ErrNotFound)
	}

	m.nextArtworkID++
	id := m.nextArtworkID
	stored := art.Clone()
	stored.ID = id
	stored.UpdatedAt = art.SubmittedAt
	stored.Images = nil
	m.artworks[id] = stored

	entry.ArtworkID = id
	if err := m.appendLog(entry); err != nil {
		if m.RollbackFails {
			art.ID = id
			return fmt.Errorf("%w: %v", models.ErrInconsistency, err)
		}
		delete(m.artworks, id)
		m.nextArtworkID--
		return fmt.Errorf("failed to append submission log entry: %w", err)
	}

	art.ID = id
	art.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MockArtworkRepository) GetByID(ctx context.Context, id int64) (*models.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	art, ok := m.artworks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m.decorate(art), nil
}

func (m *MockArtworkRepository) View(ctx context.Context, id int64) (*models.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	art, ok := m.artworks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	art.ViewCount++
	return m.decorate(art), nil
}

func (m *MockArtworkRepository) List(ctx context.Context, filter models.ArtworkFilter) ([]*models.Artwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	out := make([]*models.Artwork, 0)
	for _, art := range m.artworks {
		if repository.MatchArtwork(art, filter) {
			out = append(out, m.decorate(art))
		}
	}
	repository.SortArtworks(out, filter.Sort)
	return out, nil
}

func (m *MockArtworkRepository) Update(ctx context.Context, id int64, u models.ArtworkUpdate, expected *models.ArtworkStatus, at time.Time) (*models.Artwork, error) {
	if m.BeforeUpdate != nil {
		m.BeforeUpdate(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	art, ok := m.artworks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if expected != nil && art.Status != *expected {
		return nil, fmt.Errorf("%w: artwork %d is no longer %s", models.ErrForbidden, id, *expected)
	}

	if u.Title != nil {
		art.Title = *u.Title
	}
	if u.Description != nil {
		art.Description = *u.Description
	}
	if u.ArtistName != nil {
		art.ArtistName = emptyToNil(*u.ArtistName)
	}
	if u.Community != nil {
		art.Community = emptyToNil(*u.Community)
	}
	if u.CreationTechnique != nil {
		art.CreationTechnique = *u.CreationTechnique
	}
	if u.MaterialsUsed != nil {
		art.MaterialsUsed = *u.MaterialsUsed
	}
	if u.CulturalSignificance != nil {
		art.CulturalSignificance = *u.CulturalSignificance
	}
	if u.ArtType != nil {
		art.ArtType = m.lookupRef(models.TaxonomyArtTypes, *u.ArtType)
	}
	if u.Period != nil {
		art.Period = m.lookupRef(models.TaxonomyPeriods, *u.Period)
	}
	if u.Region != nil {
		art.Region = m.lookupRef(models.TaxonomyRegions, *u.Region)
	}
	if u.Latitude != nil {
		lat := *u.Latitude
		art.Location.Latitude = &lat
	}
	if u.Longitude != nil {
		lon := *u.Longitude
		art.Location.Longitude = &lon
	}
	if u.LocationName != nil {
		art.Location.Name = *u.LocationName
	}
	if u.Country != nil {
		art.Location.Country = *u.Country
	}
	if u.Sensitive != nil {
		art.Location.Sensitive = *u.Sensitive
	}
	art.UpdatedAt = at
	return m.decorate(art), nil
}

func (m *MockArtworkRepository) Transition(ctx context.Context, t models.Transition) (*models.Artwork, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	art, ok := m.artworks[t.ArtworkID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if art.Status != t.From {
		return nil, fmt.Errorf("%w: artwork %d is %s", models.ErrInvalidTransition, t.ArtworkID, art.Status)
	}

	before := art.Clone()
	at := t.At
	art.Status = t.To
	art.ModerationNotes = t.Notes
	art.UpdatedAt = at
	if t.To == models.StatusApproved {
		art.ApprovedAt = &at
	} else {
		notes := t.Notes
		art.RejectedAt = &at
		art.RejectionReason = &notes
	}

	entry := &models.ModerationLogEntry{
		ArtworkID:   t.ArtworkID,
		Action:      t.Action,
		PerformedBy: t.PerformedBy,
		Notes:       t.Notes,
		NewStatus:   t.To,
		CreatedAt:   t.At,
	}
	if err := m.appendLog(entry); err != nil {
		if m.RollbackFails {
			return nil, fmt.Errorf("%w: %v", models.ErrInconsistency, err)
		}
		m.artworks[t.ArtworkID] = before
		return nil, fmt.Errorf("failed to append moderation log entry: %w", err)
	}
	return m.decorate(art), nil
}

func (m *MockArtworkRepository) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.artworks[id]; !ok {
		return false, nil
	}
	delete(m.artworks, id)
	delete(m.images, id)
	for fid, f := range m.flags {
		if f.ArtworkID == id {
			delete(m.flags, fid)
		}
	}
	return true, nil
}

func (m *MockArtworkRepository) AddImage(ctx context.Context, img *models.ArtworkImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.artworks[img.ArtworkID]; !ok {
		return fmt.Errorf("failed to insert image: %w", models.ErrNotFound)
	}

	existing := m.images[img.ArtworkID]
	order := 0
	for i := range existing {
		if existing[i].DisplayOrder >= order {
			order = existing[i].DisplayOrder + 1
		}
		if img.IsPrimary {
			existing[i].IsPrimary = false
		}
	}

	m.nextImageID++
	img.ID = m.nextImageID
	img.DisplayOrder = order
	m.images[img.ArtworkID] = append(existing, *img)
	return nil
}

func (m *MockArtworkRepository) Images(ctx context.Context, artworkID int64) ([]models.ArtworkImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedImages(artworkID), nil
}

func (m *MockArtworkRepository) CountByStatus(ctx context.Context) (map[models.ArtworkStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.ArtworkStatus]int, len(models.ValidStatuses))
	for _, art := range m.artworks {
		counts[art.Status]++
	}
	return counts, nil
}

// MockModerationLogRepository is an in-memory ModerationLogRepository
type MockModerationLogRepository struct {
	*Store
}

var _ repository.ModerationLogRepository = (*MockModerationLogRepository)(nil)

func (m *MockModerationLogRepository) List(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error) {
	if limit <= 0 {
		limit = models.DefaultLogLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.ModerationLogEntry, 0, limit)
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.joinLog(m.logs[i]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MockModerationLogRepository) ListByArtwork(ctx context.Context, artworkID int64) ([]*models.ModerationLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ModerationLogEntry, 0)
	for _, e := range m.logs {
		if e.ArtworkID == artworkID {
			out = append(out, m.joinLog(e))
		}
	}
	return out, nil
}

func (m *MockModerationLogRepository) joinLog(e *models.ModerationLogEntry) *models.ModerationLogEntry {
	c := *e
	c.ArtworkTitle = nil
	if art, ok := m.artworks[e.ArtworkID]; ok {
		title := art.Title
		c.ArtworkTitle = &title
	}
	if u, ok := m.users[e.PerformedBy]; ok {
		c.PerformedByUsername = u.Username
	}
	return &c
}

// MockFlagRepository is an in-memory FlagRepository
type MockFlagRepository struct {
	*Store
}

var _ repository.FlagRepository = (*MockFlagRepository)(nil)

func (m *MockFlagRepository) Create(ctx context.Context, flag *models.Flag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.artworks[flag.ArtworkID]; !ok {
		return fmt.Errorf("failed to create flag: %w", models.ErrNotFound)
	}
	m.nextFlagID++
	flag.ID = m.nextFlagID
	stored := *flag
	m.flags[flag.ID] = &stored
	return nil
}

func (m *MockFlagRepository) GetByID(ctx context.Context, id int64) (*models.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flags[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m.joinFlag(f), nil
}

func (m *MockFlagRepository) Resolve(ctx context.Context, id, resolvedBy int64, at time.Time) (*models.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flags[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if f.Status == models.FlagStatusOpen {
		f.Status = models.FlagStatusResolved
		f.ResolvedAt = &at
		f.ResolvedBy = &resolvedBy
	}
	return m.joinFlag(f), nil
}

func (m *MockFlagRepository) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flags[id]; !ok {
		return false, nil
	}
	delete(m.flags, id)
	return true, nil
}

func (m *MockFlagRepository) List(ctx context.Context, status *models.FlagStatus) ([]*models.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Flag, 0)
	for _, f := range m.flags {
		if status == nil || f.Status == *status {
			out = append(out, m.joinFlag(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MockFlagRepository) CountOpen(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, f := range m.flags {
		if f.Status == models.FlagStatusOpen {
			n++
		}
	}
	return n, nil
}

func (m *MockFlagRepository) joinFlag(f *models.Flag) *models.Flag {
	c := *f
	c.ArtworkTitle = models.UnknownDisplayName
	if art, ok := m.artworks[f.ArtworkID]; ok {
		c.ArtworkTitle = art.Title
	}
	switch {
	case f.ReporterID == nil:
		c.ReporterName = models.AnonymousDisplayName
	case m.users[*f.ReporterID] != nil:
		c.ReporterName = m.users[*f.ReporterID].Username
	default:
		c.ReporterName = models.UnknownDisplayName
	}
	return &c
}

// MockUserRepository is an in-memory UserRepository
type MockUserRepository struct {
	*Store
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("failed to create user: duplicate username or email")
		}
	}
	m.nextUserID++
	user.ID = m.nextUserID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MockUserRepository) SetActive(ctx context.Context, id int64, active bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.Active = active
	c := *u
	return &c, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	for _, u := range m.users {
		if u.Active {
			active++
		}
	}
	return len(m.users), active, nil
}

// MockTaxonomyRepository is an in-memory TaxonomyRepository
type MockTaxonomyRepository struct {
	*Store
}

var _ repository.TaxonomyRepository = (*MockTaxonomyRepository)(nil)

func (m *MockTaxonomyRepository) List(ctx context.Context, kind models.TaxonomyKind) ([]models.TaxonomyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TaxonomyCalls++
	entries, ok := m.taxonomies[kind]
	if !ok {
		return nil, fmt.Errorf("unknown taxonomy %q", kind)
	}
	out := append([]models.TaxonomyEntry(nil), entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
