package text

import "sync"

// coverageMemo remembers which runes a font maps to a real glyph.
// It stores two bits per rune (checked, present) in 256-rune blocks
// allocated on first use, so sparse lookups across Unicode stay small.
type coverageMemo struct {
	mu     sync.RWMutex
	blocks map[uint32]*coverageBlock
}

type coverageBlock struct {
	bits [8]uint64
}

func newCoverageMemo() *coverageMemo {
	return &coverageMemo{blocks: make(map[uint32]*coverageBlock)}
}

func coverageBit(r rune) (blk uint32, word uint32, shift uint32) {
	u := uint32(r)
	bit := (u & 0xFF) * 2
	return u >> 8, bit / 64, bit % 64
}

// get returns (present, checked).
func (m *coverageMemo) get(r rune) (present, checked bool) {
	blk, word, shift := coverageBit(r)
	m.mu.RLock()
	defer m.mu.RUnlock()
	b := m.blocks[blk]
	if b == nil {
		return false, false
	}
	w := b.bits[word]
	return w>>(shift+1)&1 != 0, w>>shift&1 != 0
}

func (m *coverageMemo) set(r rune, present bool) {
	blk, word, shift := coverageBit(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.blocks[blk]
	if b == nil {
		b = &coverageBlock{}
		m.blocks[blk] = b
	}
	b.bits[word] |= 1 << shift
	if present {
		b.bits[word] |= 1 << (shift + 1)
	}
}
