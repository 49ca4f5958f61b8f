package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/filoma/filoma/internal/capability"
	"github.com/filoma/filoma/internal/profile"
)

// writeReport renders the human-readable profile.
func writeReport(out io.Writer, r *profile.ScanResult, topN int) {
	status := ""
	if r.Incomplete {
		status = " [INCOMPLETE - scan was cancelled]"
	}
	fmt.Fprintf(out, "Profile of %s%s\n", r.RootPath, status)
	fmt.Fprintf(out, "Backend: %s | Elapsed: %s | Scan ID: %s\n\n",
		r.BackendUsed, r.Elapsed.Round(1e6), r.ScanID)

	fmt.Fprintf(out, "Files:         %s\n", humanize.Comma(r.TotalFiles))
	fmt.Fprintf(out, "Folders:       %s\n", humanize.Comma(r.TotalFolders))
	if !r.FastPath {
		fmt.Fprintf(out, "Total size:    %s\n", humanize.IBytes(uint64(r.TotalSizeBytes)))
	}
	fmt.Fprintf(out, "Max depth:     %d\n", r.MaxDepthSeen)
	fmt.Fprintf(out, "Empty folders: %s\n", humanize.Comma(r.EmptyFolderCount))

	if len(r.ExtensionHistogram) > 0 {
		fmt.Fprintf(out, "\nTop extensions:\n")
		for _, e := range topExtensions(r.ExtensionHistogram, topN) {
			fmt.Fprintf(out, "  .%-10s %s\n", e.Key, humanize.Comma(e.Value))
		}
	}

	fmt.Fprintf(out, "\nDepth histogram:\n")
	for _, depth := range sortedDepths(r.DepthHistogram) {
		fmt.Fprintf(out, "  %2d: %s\n", depth, humanize.Comma(r.DepthHistogram[depth]))
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(out, "\nSkipped paths: %d\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(out, "  [%s] %s: %s\n", e.Kind, e.Path, e.Message)
		}
	}
}

// topExtensions returns the n most frequent extensions, ties broken
// alphabetically so output is stable.
func topExtensions(hist map[string]int64, n int) []lo.Entry[string, int64] {
	entries := lo.Entries(hist)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Key < entries[j].Key
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func sortedDepths(hist map[int]int64) []int {
	depths := lo.Keys(hist)
	sort.Ints(depths)
	return depths
}

// writeJSON emits the profile as indented JSON.
func writeJSON(out io.Writer, r *profile.ScanResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeBackends renders the capability listing for the backends subcommand.
func writeBackends(out io.Writer, caps capability.Set) {
	fmt.Fprintf(out, "%-12s %-12s %-9s %s\n", "BACKEND", "AVAILABLE", "PRIORITY", "DETAIL")
	for _, c := range caps.All() {
		avail := "no"
		if c.Available {
			avail = "yes"
		}
		fmt.Fprintf(out, "%-12s %-12s %-9d %s\n", c.Name, avail, c.Priority, c.Detail)
	}
}
