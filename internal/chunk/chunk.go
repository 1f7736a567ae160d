// Package chunk splits long source text into overlapping line windows.
package chunk

import "strings"

// Defaults used when no options are given.
const (
	DefaultSize    = 1500
	DefaultOverlap = 150
)

// Chunker splits code into windows of Size lines. Every window after the
// first is prefixed with the Overlap lines that precede it in the source.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithSize sets the window size in lines. Values below 1 are treated as 1.
func WithSize(lines int) Option {
	return func(c *Chunker) {
		c.size = lines
	}
}

// WithOverlap sets how many preceding lines are repeated at the start of each
// window after the first. Negative values are treated as 0.
func WithOverlap(lines int) Option {
	return func(c *Chunker) {
		c.overlap = lines
	}
}

// New creates a Chunker with DefaultSize and DefaultOverlap unless overridden.
func New(opts ...Option) *Chunker {
	c := &Chunker{size: DefaultSize, overlap: DefaultOverlap}
	for _, opt := range opts {
		opt(c)
	}
	c.size = max(1, c.size)
	c.overlap = max(0, c.overlap)
	return c
}

// Size returns the window size in lines.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the overlap in lines.
func (c *Chunker) Overlap() int { return c.overlap }

// step is the distance between window starts. It stays positive even when
// overlap >= size so Split always terminates.
func (c *Chunker) step() int {
	return max(1, c.size-c.overlap)
}

// Split returns code unchanged as a single chunk when it has at most Size
// lines. Otherwise it returns consecutive windows, each overlap prefix read
// from the original lines rather than from the previous chunk.
func (c *Chunker) Split(code string) []string {
	lines := strings.Split(code, "\n")
	if len(lines) <= c.size {
		return []string{code}
	}

	step := c.step()
	chunks := make([]string, 0, (len(lines)+step-1)/step)
	for start := 0; start < len(lines); start += step {
		end := min(start+c.size, len(lines))

		from := start
		if start > 0 && c.overlap > 0 {
			from = max(0, start-c.overlap)
		}
		chunks = append(chunks, strings.Join(lines[from:end], "\n"))
	}
	return chunks
}

// Bounds describes the source lines covered by one chunk, 1-indexed and
// inclusive. OverlapStart equals Start for the first chunk.
type Bounds struct {
	OverlapStart int `json:"overlap_start"`
	Start        int `json:"start"`
	End          int `json:"end"`
}

// Boundaries reports the line ranges Split would produce for code.
func (c *Chunker) Boundaries(code string) []Bounds {
	lineCount := strings.Count(code, "\n") + 1
	if lineCount <= c.size {
		return []Bounds{{OverlapStart: 1, Start: 1, End: lineCount}}
	}

	step := c.step()
	var bounds []Bounds
	for start := 0; start < lineCount; start += step {
		from := start
		if start > 0 && c.overlap > 0 {
			from = max(0, start-c.overlap)
		}
		bounds = append(bounds, Bounds{
			OverlapStart: from + 1,
			Start:        start + 1,
			End:          min(start+c.size, lineCount),
		})
	}
	return bounds
}
