package text

import (
	"os"
	"sync"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"

	"github.com/gogpu/quill/cache"
)

// SystemFonts is a FontService backed by the fonts installed on the
// machine. The font index is built by fontscan on first use and cached in
// a directory so later runs start quickly. Font files are read once and
// kept in memory.
type SystemFonts struct {
	cacheDir string

	once    sync.Once
	initErr error

	mu    sync.Mutex // guards fm: a FontMap is not safe for concurrent use
	fm    *fontscan.FontMap
	files *cache.Cache[fontscan.Location, *Font]
}

// NewSystemFonts returns a service that indexes system fonts into
// cacheDir. An empty cacheDir uses os.UserCacheDir.
func NewSystemFonts(cacheDir string) *SystemFonts {
	return &SystemFonts{
		cacheDir: cacheDir,
		files:    cache.New[fontscan.Location, *Font](16, nil),
	}
}

func (s *SystemFonts) init() {
	dir := s.cacheDir
	if dir == "" {
		var err error
		if dir, err = os.UserCacheDir(); err != nil {
			logger().Warn("text: no user cache directory, font index is not persisted", "err", err)
			dir = os.TempDir()
		}
	}
	s.fm = fontscan.NewFontMap(printfLogger{})
	if err := s.fm.UseSystemFonts(dir); err != nil {
		s.initErr = err
		logger().Warn("text: system fonts unavailable", "err", err)
		return
	}
	logger().Debug("text: system font index ready", "dir", dir)
}

// Err returns the error that prevented loading the system font index, if
// any. It triggers loading.
func (s *SystemFonts) Err() error {
	s.once.Do(s.init)
	return s.initErr
}

// Match implements FontService using fontscan's family substitution and
// style matching.
func (s *SystemFonts) Match(q FaceQuery) (*Font, bool) {
	if s.Err() != nil {
		return nil, false
	}

	s.mu.Lock()
	s.fm.SetQuery(fontscan.Query{
		Families: q.Families,
		Aspect:   aspectFor(q.Slant, q.Weight),
	})
	face := s.fm.ResolveFace(q.Rune)
	var loc fontscan.Location
	if face != nil {
		loc = s.fm.FontLocation(face.Font)
	}
	s.mu.Unlock()

	if face == nil || loc.File == "" {
		return nil, false
	}
	f, err := s.load(loc)
	if err != nil {
		logger().Warn("text: cannot load matched font", "file", loc.File, "err", err)
		return nil, false
	}
	return f, true
}

// load reads the font at loc, once per location.
func (s *SystemFonts) load(loc fontscan.Location) (*Font, error) {
	if f, ok := s.files.Get(loc); ok {
		return f, nil
	}
	f, err := LoadFile(loc.File, int(loc.Index))
	if err != nil {
		return nil, err
	}
	s.files.Set(loc, f)
	return f, nil
}

func aspectFor(slant Slant, weight int) font.Aspect {
	a := font.Aspect{Style: font.StyleNormal, Weight: font.Weight(weight), Stretch: font.StretchNormal}
	if slant.Slanted() {
		a.Style = font.StyleItalic
	}
	return a
}
