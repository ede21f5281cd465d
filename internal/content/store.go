package content

import (
	"sync/atomic"

	"git.home.luguber.info/inful/docsite/internal/icons"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

// Store publishes the current Index. Readers never block; a rebuild swaps in
// a fresh index while in-flight requests finish against the old one.
type Store struct {
	current atomic.Pointer[Index]
}

// NewStore returns a store holding idx.
func NewStore(idx *Index) *Store {
	s := &Store{}
	s.current.Store(idx)
	return s
}

// Swap publishes idx and returns the previous index.
func (s *Store) Swap(idx *Index) *Index {
	return s.current.Swap(idx)
}

// Current returns the published index, possibly nil.
func (s *Store) Current() *Index {
	return s.current.Load()
}

func (s *Store) GetPage(sl slug.Slug) (*Document, bool) {
	return s.Current().GetPage(sl)
}

func (s *Store) GenerateParams() []slug.Slug {
	return s.Current().GenerateParams()
}

func (s *Store) ResolveIcon(name string) (icons.Icon, bool) {
	return s.Current().ResolveIcon(name)
}

func (s *Store) Len() int {
	return s.Current().Len()
}
