package imagestore

import (
	"context"
	"sync"

	"github.com/Lalithx4/agroai/internal/domain/scan"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

type memoryObject struct {
	data     []byte
	mimeType string
}

// MemoryStore keeps scan images in process memory. It backs development
// setups and tests where an object store is not available.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemoryStore constructs an empty in-memory image store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Put(_ context.Context, ref string, data []byte, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[ref] = memoryObject{data: cp, mimeType: mimeType}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, ref string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[ref]
	if !ok {
		return nil, "", apperrors.Wrap(apperrors.CodeInvalidInput, "image not found", nil)
	}
	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, obj.mimeType, nil
}

func (s *MemoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, ref)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = make(map[string]memoryObject)
	return nil
}

var _ scan.ImageStore = (*MemoryStore)(nil)
