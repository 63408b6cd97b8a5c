// Package pack places rectangles into a square page with a shelf packer.
//
// Items are laid out left to right on horizontal shelves. A shelf is as
// tall as the tallest item placed on it; when an item does not fit on any
// open shelf a new shelf is opened below the last one. The packer never
// moves placed items: a caller that runs out of room resizes the page,
// resets the packer and places everything again.
package pack

// Rect is a placement inside the page, in pixels.
type Rect struct {
	X, Y, W, H int
}

type shelf struct {
	y      int
	height int
	x      int // next free column
}

// Shelf packs rectangles into a size×size page.
type Shelf struct {
	size    int
	padding int
	shelves []shelf
	used    int
}

// NewShelf returns a packer for a size×size page. padding pixels are kept
// to the right and below every item so sampled neighbours never bleed.
func NewShelf(size, padding int) *Shelf {
	if padding < 0 {
		padding = 0
	}
	return &Shelf{size: size, padding: padding, shelves: make([]shelf, 0, 8)}
}

// Reset forgets every placement and resizes the page.
func (s *Shelf) Reset(size int) {
	s.size = size
	s.shelves = s.shelves[:0]
	s.used = 0
}

// Utilization returns the fraction of the page covered by items.
func (s *Shelf) Utilization() float64 {
	if s.size <= 0 {
		return 0
	}
	return float64(s.used) / float64(s.size*s.size)
}

// Place finds room for a w×h item. Empty items are placed at the origin
// without consuming space.
func (s *Shelf) Place(w, h int) (Rect, bool) {
	if w <= 0 || h <= 0 {
		return Rect{}, true
	}
	pw := w + s.padding
	if w > s.size || h > s.size {
		return Rect{}, false
	}

	for i := range s.shelves {
		sh := &s.shelves[i]
		if sh.x+w > s.size {
			continue
		}
		if h > sh.height {
			// Only the last shelf may grow, and only into free rows.
			if i != len(s.shelves)-1 || sh.y+h > s.size {
				continue
			}
			sh.height = h
		}
		r := Rect{X: sh.x, Y: sh.y, W: w, H: h}
		sh.x += pw
		s.commit(w, h)
		return r, true
	}

	y := 0
	if n := len(s.shelves); n > 0 {
		last := s.shelves[n-1]
		y = last.y + last.height + s.padding
	}
	if y+h > s.size {
		return Rect{}, false
	}
	s.shelves = append(s.shelves, shelf{y: y, height: h, x: pw})
	s.commit(w, h)
	return Rect{X: 0, Y: y, W: w, H: h}, true
}

func (s *Shelf) commit(w, h int) {
	s.used += w * h
}

// SideFor returns the smallest power of two that can hold total pixels of
// items, never less than minSide. It is a lower bound: packing may still
// need a larger page.
func SideFor(total, minSide int) int {
	side := 1
	for side < minSide || side*side < total {
		side <<= 1
	}
	return side
}
