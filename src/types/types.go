// Package types holds the medal dataset model shared by every other package:
// participation records, country entities and the immutable snapshot a load produces.
package types

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// ParticipationRecord is one country's presence at one edition of the games.
// Field tags follow the dataset wire shape (year / medalsCount / athleteCount);
// id and city are optional and only carried through for display.
type ParticipationRecord struct {
	ID           int    `json:"id,omitempty"`
	Edition      int    `json:"year"`
	City         string `json:"city,omitempty"`
	MedalCount   int    `json:"medalsCount"`
	AthleteCount int    `json:"athleteCount"`
}

// EntityRecord is a country and its ordered participations.
type EntityRecord struct {
	ID             int                   `json:"id,omitempty"`
	Name           string                `json:"country"`
	Participations []ParticipationRecord `json:"participations"`
}

// clone returns a copy that shares no backing array with e.
func (e EntityRecord) clone() EntityRecord {
	e.Participations = slices.Clone(e.Participations)
	return e
}

// DataSnapshot is one fetched copy of the full entity set. It is immutable after
// construction: accessors hand out copies, never the internal slices.
type DataSnapshot struct {
	entities  []EntityRecord
	index     map[string]int
	fetchedAt uint64
}

// NewSnapshot validates and deep-copies entities into a snapshot stamped with the
// given sequence number. Entity names must be unique and non-empty, counts non-negative.
func NewSnapshot(entities []EntityRecord, fetchedAt uint64) (*DataSnapshot, error) {
	s := &DataSnapshot{
		entities:  make([]EntityRecord, 0, len(entities)),
		index:     make(map[string]int, len(entities)),
		fetchedAt: fetchedAt,
	}
	for i, e := range entities {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entity %d has no country name", ErrInvalidRecord, i)
		}
		if _, dup := s.index[e.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEntity, e.Name)
		}
		for _, p := range e.Participations {
			if p.MedalCount < 0 || p.AthleteCount < 0 {
				return nil, fmt.Errorf("%w: %s %d has negative counts (medals=%d athletes=%d)",
					ErrInvalidRecord, e.Name, p.Edition, p.MedalCount, p.AthleteCount)
			}
		}
		s.index[e.Name] = len(s.entities)
		s.entities = append(s.entities, e.clone())
	}
	return s, nil
}

// DecodeSnapshot reads the JSON array wire shape and builds a snapshot from it.
func DecodeSnapshot(r io.Reader, fetchedAt uint64) (*DataSnapshot, error) {
	var entities []EntityRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entities); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return NewSnapshot(entities, fetchedAt)
}

// FetchedAt returns the monotonic sequence number assigned by the source.
func (s *DataSnapshot) FetchedAt() uint64 {
	if s == nil {
		return 0
	}
	return s.fetchedAt
}

// Len returns the number of entities.
func (s *DataSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entities)
}

// Entities returns a deep copy of the entities in source order.
func (s *DataSnapshot) Entities() []EntityRecord {
	if s == nil {
		return nil
	}
	out := make([]EntityRecord, len(s.entities))
	for i, e := range s.entities {
		out[i] = e.clone()
	}
	return out
}

// Entity looks up an entity by exact name.
func (s *DataSnapshot) Entity(name string) (EntityRecord, bool) {
	if s == nil {
		return EntityRecord{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return EntityRecord{}, false
	}
	return s.entities[i].clone(), true
}
