package text

import (
	"fmt"
	"sync"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// bundledData holds the font files compiled into the binary, indexed by
// slot and then by styleIndex.
var bundledData = [3][4][]byte{
	slotSans:  {goregular.TTF, goitalic.TTF, gobold.TTF, gobolditalic.TTF},
	slotMono:  {gomono.TTF, gomonoitalic.TTF, gomonobold.TTF, gomonobolditalic.TTF},
	slotSerif: {lmroman10regular.TTF, lmroman10italic.TTF, lmroman10bold.TTF, lmroman10bolditalic.TTF},
}

const (
	slotSans = iota
	slotMono
	slotSerif
)

func slotFor(f Family) int {
	switch f {
	case Monospace:
		return slotMono
	case Serif, Cursive:
		return slotSerif
	}
	return slotSans
}

func styleIndex(slant Slant, bold bool) int {
	i := 0
	if slant.Slanted() {
		i |= 1
	}
	if bold {
		i |= 2
	}
	return i
}

var (
	bundledOnce  sync.Once
	bundledFonts [3][4]*Font
)

func loadBundled() {
	for slot := range bundledData {
		for style, data := range bundledData[slot] {
			f, err := FromData(data, 0)
			if err != nil {
				// The data is compiled in; a parse failure is a build defect.
				panic(fmt.Sprintf("text: bundled font %d/%d: %v", slot, style, err))
			}
			bundledFonts[slot][style] = f
		}
	}
}

// Fallback returns the bundled font closest to the requested family and
// style: Go for sans-serif and fantasy, Go Mono for monospace and Latin
// Modern Roman for serif and cursive. Bundled fonts are parsed once, on
// first use.
func Fallback(family Family, slant Slant, bold bool) *Font {
	bundledOnce.Do(loadBundled)
	return bundledFonts[slotFor(family)][styleIndex(slant, bold)]
}

// Bundled returns every bundled font.
func Bundled() []*Font {
	bundledOnce.Do(loadBundled)
	out := make([]*Font, 0, 12)
	for slot := range bundledFonts {
		out = append(out, bundledFonts[slot][:]...)
	}
	return out
}
