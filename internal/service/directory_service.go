package service

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"errors"
	"strings"
	"time"
)

// --- Service Interface ---

// DirectoryService is the bidirectional coach directory: display name to
// coach id and back. Lookups that find nothing return an empty string with
// a nil error; absence is not a failure.
type DirectoryService interface {
	UpsertEntry(ctx context.Context, coachID, displayName string) error
	ResolveIDByName(ctx context.Context, displayName string) (string, error)
	ResolveNameByID(ctx context.Context, coachID string) (string, error)
}

// --- Service Implementation ---

type directoryService struct {
	directoryRepo repository.DirectoryRepository
}

// NewDirectoryService creates a new instance of directoryService.
func NewDirectoryService(directoryRepo repository.DirectoryRepository) DirectoryService {
	return &directoryService{directoryRepo: directoryRepo}
}

// normalizeName is the directory's canonical key: trimmed and lower-cased.
func normalizeName(displayName string) string {
	return strings.ToLower(strings.TrimSpace(displayName))
}

// UpsertEntry claims a display name for a coach: the forward entry (keyed
// by the normalized name) and the reverse entry (keyed by coach id) are
// written in that order. The two writes are independent; if the reverse
// write fails after the forward write succeeded, the directory stays
// inconsistent until the next successful call. The caller's retry repairs
// both halves.
func (s *directoryService) UpsertEntry(ctx context.Context, coachID, displayName string) error {
	if coachID == "" {
		return invalidArg("coach ID is required")
	}
	nameKey := normalizeName(displayName)
	if nameKey == "" {
		return invalidArg("display name must not be blank")
	}

	entry := &domain.DirectoryEntry{
		CoachID:     coachID,
		DisplayName: strings.TrimSpace(displayName),
		NameKey:     nameKey,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.directoryRepo.UpsertForward(ctx, entry); err != nil {
		return storeErr("directory forward upsert", err)
	}
	if err := s.directoryRepo.UpsertReverse(ctx, entry); err != nil {
		return storeErr("directory reverse upsert", err)
	}
	return nil
}

// ResolveIDByName maps a display name to a coach id. A blank normalized
// name resolves to "" without touching the store.
func (s *directoryService) ResolveIDByName(ctx context.Context, displayName string) (string, error) {
	nameKey := normalizeName(displayName)
	if nameKey == "" {
		return "", nil
	}
	entry, err := s.directoryRepo.FindByNameKey(ctx, nameKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", storeErr("directory name lookup", err)
	}
	return entry.CoachID, nil
}

// ResolveNameByID maps a coach id back to its display name. A blank id
// resolves to "" without touching the store.
func (s *directoryService) ResolveNameByID(ctx context.Context, coachID string) (string, error) {
	if strings.TrimSpace(coachID) == "" {
		return "", nil
	}
	entry, err := s.directoryRepo.FindByCoachID(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", storeErr("directory id lookup", err)
	}
	return entry.DisplayName, nil
}
