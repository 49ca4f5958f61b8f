package profile

// Accumulator incrementally reduces entry records into profile totals.
// It is not safe for concurrent use: parallel backends give each worker its
// own Accumulator and combine them with Merge at join time, which avoids
// per-entry synchronization on hot counters.
//
// Directory counting convention (uniform across all backends):
//   - the scan root contributes Depths[0] = 1 but is excluded from Folders;
//   - a directory counts as empty when its listing was read and contained
//     zero direct children; directories that were never listed (beyond the
//     depth cap, permission denied, cycle-skipped) are never counted empty;
//   - every recorded directory, listed or not, contributes to Folders and
//     to the depth histogram.
type Accumulator struct {
	Files        int64
	Folders      int64
	SizeBytes    int64
	MaxDepth     int
	EmptyFolders int64
	Extensions   map[string]int64
	Depths       map[int]int64
	Errors       []ScanError

	fastPath bool
}

// NewAccumulator returns an empty accumulator. When fastPath is true, size
// and timestamp data are not aggregated (discovery-only semantics).
func NewAccumulator(fastPath bool) *Accumulator {
	return &Accumulator{
		Extensions: make(map[string]int64),
		Depths:     make(map[int]int64),
		fastPath:   fastPath,
	}
}

// FastPath reports whether this accumulator skips size/timestamp data.
func (a *Accumulator) FastPath() bool {
	return a.fastPath
}

// AddFile records a non-directory entry.
func (a *Accumulator) AddFile(e Entry) {
	a.Files++
	a.Depths[e.Depth]++
	if e.Depth > a.MaxDepth {
		a.MaxDepth = e.Depth
	}
	if e.Ext != "" {
		a.Extensions[e.Ext]++
	}
	if !a.fastPath {
		a.SizeBytes += e.Size
	}
}

// AddDir records a directory whose listing was read. childCount is the number
// of direct children visible under the scan policy; zero marks the directory
// as empty. Depth 0 identifies the scan root, which is recorded in the depth
// histogram but excluded from the folder total.
func (a *Accumulator) AddDir(depth, childCount int) {
	if depth > 0 {
		a.Folders++
	}
	a.Depths[depth]++
	if depth > a.MaxDepth {
		a.MaxDepth = depth
	}
	if childCount == 0 {
		a.EmptyFolders++
	}
}

// AddDirUnlisted records a directory that was observed but whose listing was
// never read: beyond the depth cap, permission denied, or skipped to break a
// symlink cycle. Such directories count toward the folder total and the depth
// histogram but their emptiness is unknown, so they never count as empty.
func (a *Accumulator) AddDirUnlisted(depth int) {
	if depth > 0 {
		a.Folders++
	}
	a.Depths[depth]++
	if depth > a.MaxDepth {
		a.MaxDepth = depth
	}
}

// AddError records a per-path error. Errors never abort a scan.
func (a *Accumulator) AddError(e ScanError) {
	a.Errors = append(a.Errors, e)
}

// Merge folds another accumulator into this one. Merging is associative and
// commutative over disjoint entry sets, so partial accumulators produced by
// parallel workers can be combined in any order.
func (a *Accumulator) Merge(other *Accumulator) {
	a.Files += other.Files
	a.Folders += other.Folders
	a.SizeBytes += other.SizeBytes
	a.EmptyFolders += other.EmptyFolders
	if other.MaxDepth > a.MaxDepth {
		a.MaxDepth = other.MaxDepth
	}
	for ext, n := range other.Extensions {
		a.Extensions[ext] += n
	}
	for depth, n := range other.Depths {
		a.Depths[depth] += n
	}
	a.Errors = append(a.Errors, other.Errors...)
}
