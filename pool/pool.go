package pool

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Pool is the content-addressed store of AudioClips referenced by audio
// regions via PoolID (spec §4.2). Writes (Add/Duplicate) happen on
// non-realtime threads; once inserted, a Clip's Frames are never mutated,
// so real-time readers calling Get concurrently with a writer's Add never
// observe a half-written clip.
type Pool struct {
	mu     sync.RWMutex
	clips  map[ID]*Clip
	byHash map[string]ID
	nextID ID
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{clips: make(map[ID]*Clip), byHash: make(map[string]ID)}
}

// Decode parses raw clip bytes (WAV, or the supplemental mp3/oggvorbis
// formats — see SPEC_FULL.md §B) into a Clip not yet inserted into any
// pool. bpmAtCreation records the project tempo in effect when the clip
// was recorded/imported and is stored as the Clip's BPMAtCreation;
// nothing in this module reads it back.
func Decode(data []byte, bpmAtCreation float64) (*Clip, error) {
	d, err := decodeBytes(data)
	if err != nil {
		return nil, err
	}
	if d.channels <= 0 {
		return nil, fmt.Errorf("pool: decoded clip has no channels")
	}
	numFrames := int64(len(d.frames)) / int64(d.channels)
	sum := sha256.Sum256(data)
	return &Clip{
		Channels:      d.channels,
		NumFrames:     numFrames,
		SampleRate:    d.sampleRate,
		BitDepth:      d.bitDepth,
		Frames:        d.frames,
		BPMAtCreation: bpmAtCreation,
		FileHash:      hex.EncodeToString(sum[:]),
	}, nil
}

// Add inserts a clip, assigning it a PoolID. If a clip with the same
// FileHash is already present, the existing entry's ID is returned instead
// of inserting a duplicate (content addressing, spec §4.2).
func (p *Pool) Add(clip *Clip) ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if clip.FileHash != "" {
		if existing, ok := p.byHash[clip.FileHash]; ok {
			return existing
		}
	}
	p.nextID++
	id := p.nextID
	clip.PoolID = id
	p.clips[id] = clip
	if clip.FileHash != "" {
		p.byHash[clip.FileHash] = id
	}
	return id
}

// ErrNotFound is returned by Get/Duplicate for an unknown PoolID, feeding
// the spec §7 ClipNotFound policy at the region-playback layer.
var ErrNotFound = fmt.Errorf("pool: clip not found")

// Get returns the immutable clip for id.
func (p *Pool) Get(id ID) (*Clip, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.clips[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// Duplicate creates a new pool entry referencing a copy of clip id's
// frame data. write=true indicates the caller intends to mutate the copy
// (e.g. a destructive edit) — always returns an independent copy, since
// the original remains immutable for any other region still referencing
// it.
func (p *Pool) Duplicate(id ID, write bool) (ID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	src, ok := p.clips[id]
	if !ok {
		return 0, ErrNotFound
	}
	frames := make([]float32, len(src.Frames))
	copy(frames, src.Frames)
	dup := &Clip{
		Channels:      src.Channels,
		NumFrames:     src.NumFrames,
		SampleRate:    src.SampleRate,
		BitDepth:      src.BitDepth,
		Frames:        frames,
		BPMAtCreation: src.BPMAtCreation,
	}
	if !write {
		dup.FileHash = src.FileHash
	}
	p.nextID++
	newID := p.nextID
	dup.PoolID = newID
	p.clips[newID] = dup
	return newID, nil
}

// Remove drops a clip from the pool. Callers are responsible for ensuring
// no region still references id.
func (p *Pool) Remove(id ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clips[id]; ok {
		delete(p.byHash, c.FileHash)
		delete(p.clips, id)
	}
}

// Len returns the number of clips currently stored.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clips)
}
