package profile

import "time"

// ScanResult is the unified statistical profile of a directory subtree.
// Every backend produces the same schema; backend choice may only affect
// BackendUsed and Elapsed. The result is immutable once returned.
type ScanResult struct {
	ScanID      string        `json:"scan_id"`
	RootPath    string        `json:"root_path"`
	BackendUsed string        `json:"backend_used"`
	Elapsed     time.Duration `json:"elapsed_ns"`

	// Incomplete marks a partial result returned after a caller-requested
	// cancellation: counts reflect only the portion scanned before the abort.
	Incomplete bool `json:"incomplete,omitempty"`

	// FastPath marks a discovery-only scan: TotalSizeBytes is zero and no
	// timestamp-derived data was collected.
	FastPath bool `json:"fast_path,omitempty"`

	TotalFiles       int64 `json:"total_files"`
	TotalFolders     int64 `json:"total_folders"`
	TotalSizeBytes   int64 `json:"total_size_bytes"`
	MaxDepthSeen     int   `json:"max_depth_seen"`
	EmptyFolderCount int64 `json:"empty_folder_count"`

	ExtensionHistogram map[string]int64 `json:"extension_histogram"`
	DepthHistogram     map[int]int64    `json:"depth_histogram"`

	// Errors holds every per-path error that occurred, exactly once each.
	// Ordering is not guaranteed across backends.
	Errors []ScanError `json:"errors,omitempty"`
}

// NewScanResult finalizes an accumulator into an immutable result.
func NewScanResult(scanID, root, backend string, elapsed time.Duration, incomplete bool, acc *Accumulator) *ScanResult {
	return &ScanResult{
		ScanID:             scanID,
		RootPath:           root,
		BackendUsed:        backend,
		Elapsed:            elapsed,
		Incomplete:         incomplete,
		FastPath:           acc.FastPath(),
		TotalFiles:         acc.Files,
		TotalFolders:       acc.Folders,
		TotalSizeBytes:     acc.SizeBytes,
		MaxDepthSeen:       acc.MaxDepth,
		EmptyFolderCount:   acc.EmptyFolders,
		ExtensionHistogram: acc.Extensions,
		DepthHistogram:     acc.Depths,
		Errors:             acc.Errors,
	}
}
