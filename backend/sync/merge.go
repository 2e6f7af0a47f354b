package sync

import (
	"time"

	"taskbridge/backend"
)

// MergePolicy resolves field-level conflicts between a local and a remote
// task. Merge mutates local in place; it is total, deterministic for a given
// pair, and idempotent: merge(merge(l,r), r) == merge(l,r).
type MergePolicy interface {
	Merge(local, remote *backend.TaskProxy)
}

// FieldMergePolicy is the default policy: last-writer-wins per field using
// the whole-record Modified timestamps, falling back to the remote side when
// equal or when either timestamp is missing. Completion and deletion prefer
// the true side, notes prefer the longer non-empty value when timestamps are
// unavailable, and tag sets union case-insensitively.
type FieldMergePolicy struct{}

// Merge implements MergePolicy
func (FieldMergePolicy) Merge(local, remote *backend.TaskProxy) {
	timestamped := local.Modified != nil && remote.Modified != nil
	localNewer := timestamped && local.Modified.After(*remote.Modified)

	if !localNewer {
		local.Name = remote.Name
		local.Importance = remote.Importance
		local.DueDate = cloneTime(remote.DueDate)
		if remote.Modified != nil {
			local.Modified = cloneTime(remote.Modified)
		}
	}

	switch {
	case timestamped:
		if !localNewer {
			local.Notes = remote.Notes
		}
	default:
		// No comparable timestamps: keep whichever note says more.
		if remote.Notes != "" && len(remote.Notes) >= len(local.Notes) {
			local.Notes = remote.Notes
		}
	}

	if remote.IsCompleted() && !local.IsCompleted() {
		local.Completed = cloneTime(remote.Completed)
	}
	local.IsDeleted = local.IsDeleted || remote.IsDeleted

	local.Tags = unionTags(local.Tags, remote.Tags)
}

// unionTags merges two tag name lists, deduplicating case-insensitively and
// keeping first-seen spelling and order.
func unionTags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			key := backend.NormalizeTagName(name)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
