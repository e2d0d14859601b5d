package assets

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	assetNamePattern = regexp.MustCompile(`^qr_(\d+)_(\d+)\.[a-z]+$`)
	imageExtensions  = []string{".webp", ".png", ".jpg", ".jpeg"}
)

// nameGenerator issues strictly increasing (millis, seq) pairs. A repeated
// or earlier millisecond keeps the last one and bumps seq.
type nameGenerator struct {
	mu     sync.Mutex
	lastMs int64
	seq    int
}

func (g *nameGenerator) Next(now time.Time) (time.Time, int) {
	ms := now.UnixMilli()

	g.mu.Lock()
	defer g.mu.Unlock()
	if ms <= g.lastMs {
		ms = g.lastMs
		g.seq++
	} else {
		g.lastMs = ms
		g.seq = 0
	}
	return time.UnixMilli(ms), g.seq
}

func assetName(at time.Time, seq int, ext string) string {
	return fmt.Sprintf("qr_%013d_%03d%s", at.UnixMilli(), seq, ext)
}

// parseAssetName recovers the write instant and disambiguator from a name
// produced by assetName.
func parseAssetName(name string) (time.Time, int, bool) {
	m := assetNamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, 0, false
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, false
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, 0, false
	}
	return time.UnixMilli(ms), seq, true
}

func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
