// Package datasource provides the DataSource implementations the loader fetches from:
// a JSON file on disk, an HTTP endpoint and a fixed in-memory dataset. Each source
// stamps the snapshots it produces with its own increasing sequence number.
package datasource

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"

	"github.com/Akima-zed/teleSport/src/logging"
	"github.com/Akima-zed/teleSport/src/types"
)

const maxLineBytes = 16 << 20

// StripJSONC reads filename and drops full-line // comments so annotated fixtures can be
// loaded as plain JSON. Inline // is kept (URLs).
func StripJSONC(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out, scanner.Err()
}

// FileSource fetches the dataset from a JSON (or JSONC) file.
type FileSource struct {
	Path string
	seq  atomic.Uint64
}

// NewFileSource returns a source reading path on every fetch.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// FetchAll reads and decodes the file. A missing or unreadable file is a *types.FetchError.
func (s *FileSource) FetchAll(ctx context.Context) (*types.DataSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.FetchError{Reason: "fetch aborted", Err: err}
	}
	b, err := StripJSONC(s.Path)
	if err != nil {
		reason := "cannot read " + s.Path
		if errors.Is(err, fs.ErrNotExist) {
			reason = s.Path + " does not exist"
		}
		return nil, &types.FetchError{Reason: reason, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &types.FetchError{Reason: "fetch aborted", Err: err}
	}
	snap, err := types.DecodeSnapshot(bytes.NewReader(b), s.seq.Add(1))
	if err != nil {
		return nil, err
	}
	logging.Debugf("[datasource] read %s: %d countries (%d bytes)", s.Path, snap.Len(), len(b))
	return snap, nil
}

// StaticSource serves a fixed list of entities, used for demos and tests.
type StaticSource struct {
	entities []types.EntityRecord
	seq      atomic.Uint64
}

// NewStaticSource copies entities into a new source.
func NewStaticSource(entities []types.EntityRecord) *StaticSource {
	cp := make([]types.EntityRecord, len(entities))
	copy(cp, entities)
	return &StaticSource{entities: cp}
}

func (s *StaticSource) FetchAll(ctx context.Context) (*types.DataSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.FetchError{Reason: "fetch aborted", Err: err}
	}
	return types.NewSnapshot(s.entities, s.seq.Add(1))
}
