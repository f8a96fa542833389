package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/msomdec/memory-gallery/internal/domain"
	"github.com/msomdec/memory-gallery/internal/repository/collection"
)

// MemoriesKey is the storage key of the memory collection.
const MemoriesKey = "memory_gallery_memories"

// MemoryStore owns every memory record across all users.
type MemoryStore struct {
	memories     *collection.Collection[domain.Memory]
	users        domain.UserLookup
	maxImageSize int64
	now          func() time.Time
	newID        func() string
}

// NewMemoryStore creates a MemoryStore persisting into kv. When users is
// non-nil, Add rejects memories whose owner is not a registered user.
// maxImageSize <= 0 selects domain.DefaultMaxImageSize.
func NewMemoryStore(kv domain.KVStore, users domain.UserLookup, maxImageSize int64) *MemoryStore {
	if maxImageSize <= 0 {
		maxImageSize = domain.DefaultMaxImageSize
	}
	return &MemoryStore{
		memories:     collection.New[domain.Memory](kv, MemoriesKey),
		users:        users,
		maxImageSize: maxImageSize,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        newID,
	}
}

// memoryFields mirrors the mutable part of a memory for validation.
type memoryFields struct {
	Title    string   `validate:"required"`
	Location string   `validate:"required"`
	Date     string   `validate:"required,datetime=2006-01-02"`
	Tags     []string `validate:"dive,required"`
}

// MaxImageSize returns the largest image, in bytes, a memory may carry.
func (s *MemoryStore) MaxImageSize() int64 {
	return s.maxImageSize
}

// ListAll returns every memory in storage order.
func (s *MemoryStore) ListAll(ctx context.Context) ([]domain.Memory, error) {
	return s.memories.Load(ctx)
}

// ListForUser returns the memories owned by userID in storage order.
func (s *MemoryStore) ListForUser(ctx context.Context, userID string) ([]domain.Memory, error) {
	all, err := s.memories.Load(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]domain.Memory, 0, len(all))
	for _, m := range all {
		if m.UserID == userID {
			owned = append(owned, m)
		}
	}
	return owned, nil
}

// ListForUserSorted returns the memories owned by userID in the given order.
func (s *MemoryStore) ListForUserSorted(ctx context.Context, userID string, order domain.SortOrder) ([]domain.Memory, error) {
	owned, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return SortMemories(owned, order), nil
}

// Get returns the memory with the given id.
func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Memory, bool, error) {
	all, err := s.memories.Load(ctx)
	if err != nil {
		return domain.Memory{}, false, err
	}
	i := slices.IndexFunc(all, func(m domain.Memory) bool { return m.ID == id })
	if i < 0 {
		return domain.Memory{}, false, nil
	}
	return all[i], true, nil
}

// Add validates and stores a new memory, generating its id and creation time.
func (s *MemoryStore) Add(ctx context.Context, nm domain.NewMemory) (domain.Memory, error) {
	if nm.UserID == "" {
		return domain.Memory{}, fmt.Errorf("%w: userid is required", domain.ErrValidation)
	}
	m := domain.Memory{
		UserID:      nm.UserID,
		Title:       nm.Title,
		Description: nm.Description,
		Location:    nm.Location,
		Date:        nm.Date,
		ImageURL:    nm.ImageURL,
		Tags:        cloneTags(nm.Tags),
	}
	if err := s.validate(m); err != nil {
		return domain.Memory{}, err
	}

	if s.users != nil {
		ok, err := s.users.UserExists(ctx, nm.UserID)
		if err != nil {
			return domain.Memory{}, fmt.Errorf("check owner: %w", err)
		}
		if !ok {
			return domain.Memory{}, fmt.Errorf("%w: user %s does not exist", domain.ErrValidation, nm.UserID)
		}
	}

	m.ID = s.newID()
	m.CreatedAt = s.now()

	err := s.memories.Mutate(ctx, func(all []domain.Memory) ([]domain.Memory, error) {
		return append(all, m), nil
	})
	if err != nil {
		return domain.Memory{}, fmt.Errorf("add memory: %w", err)
	}
	return m, nil
}

// Update replaces the fields set in upd on the memory with the given id.
// ok is false if no such memory exists.
func (s *MemoryStore) Update(ctx context.Context, id string, upd domain.MemoryUpdate) (domain.Memory, bool, error) {
	return s.update(ctx, "", id, upd)
}

// UpdateForUser is Update restricted to memories owned by userID; a memory
// owned by someone else is reported as not found.
func (s *MemoryStore) UpdateForUser(ctx context.Context, userID, id string, upd domain.MemoryUpdate) (domain.Memory, bool, error) {
	if userID == "" {
		return domain.Memory{}, false, nil
	}
	return s.update(ctx, userID, id, upd)
}

func (s *MemoryStore) update(ctx context.Context, owner, id string, upd domain.MemoryUpdate) (domain.Memory, bool, error) {
	var (
		updated domain.Memory
		found   bool
	)
	err := s.memories.Mutate(ctx, func(all []domain.Memory) ([]domain.Memory, error) {
		found = false
		i := slices.IndexFunc(all, func(m domain.Memory) bool {
			return m.ID == id && (owner == "" || m.UserID == owner)
		})
		if i < 0 {
			return nil, errNoChange
		}
		found = true

		m := applyUpdate(all[i], upd)
		if err := s.validate(m); err != nil {
			return nil, err
		}
		updated = m

		next := slices.Clone(all)
		next[i] = m
		return next, nil
	})
	if errors.Is(err, errNoChange) {
		return domain.Memory{}, false, nil
	}
	if err != nil {
		return domain.Memory{}, found, fmt.Errorf("update memory: %w", err)
	}
	return updated, true, nil
}

// Remove deletes the memory with the given id and reports whether it existed.
func (s *MemoryStore) Remove(ctx context.Context, id string) (bool, error) {
	return s.remove(ctx, "", id)
}

// RemoveForUser is Remove restricted to memories owned by userID.
func (s *MemoryStore) RemoveForUser(ctx context.Context, userID, id string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.remove(ctx, userID, id)
}

func (s *MemoryStore) remove(ctx context.Context, owner, id string) (bool, error) {
	err := s.memories.Mutate(ctx, func(all []domain.Memory) ([]domain.Memory, error) {
		next := slices.DeleteFunc(slices.Clone(all), func(m domain.Memory) bool {
			return m.ID == id && (owner == "" || m.UserID == owner)
		})
		if len(next) == len(all) {
			return nil, errNoChange
		}
		return next, nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove memory: %w", err)
	}
	return true, nil
}

// errNoChange aborts a Mutate without writing when the target is missing.
var errNoChange = errors.New("no change")

func (s *MemoryStore) validate(m domain.Memory) error {
	if err := validateStruct(memoryFields{
		Title:    m.Title,
		Location: m.Location,
		Date:     m.Date,
		Tags:     m.Tags,
	}); err != nil {
		return err
	}
	// A base64 payload is 4/3 the raw size; leave room for the data URI header.
	limit := base64.StdEncoding.EncodedLen(int(s.maxImageSize)) + 128
	if len(m.ImageURL) > limit {
		return fmt.Errorf("%w: image exceeds %d byte limit", domain.ErrValidation, s.maxImageSize)
	}
	return nil
}

func applyUpdate(m domain.Memory, upd domain.MemoryUpdate) domain.Memory {
	if upd.Title != nil {
		m.Title = *upd.Title
	}
	if upd.Description != nil {
		m.Description = *upd.Description
	}
	if upd.Location != nil {
		m.Location = *upd.Location
	}
	if upd.Date != nil {
		m.Date = *upd.Date
	}
	if upd.ImageURL != nil {
		m.ImageURL = *upd.ImageURL
	}
	if upd.Tags != nil {
		m.Tags = cloneTags(*upd.Tags)
	}
	return m
}

// cloneTags copies tags so callers can't alias stored state; nil becomes empty
// so the JSON form is always an array.
func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}
