package sync

import (
	"fmt"
	"sort"

	"taskbridge/backend"
)

// SyncData is the run-scoped snapshot the reconciler works against. It is
// built once at the start of a run and never shared across runs. The
// reconciler mutates the indices in place as work proceeds, which is why a
// run is strictly sequential.
type SyncData struct {
	Provider Provider

	// Mappings is every persisted mapping for the provider.
	Mappings []*backend.SyncMapping

	// ActiveTasks and AllTasks are identifier sets; active is a subset of
	// all, and ids in all but not active are completed. Ids absent from all
	// have been deleted locally.
	ActiveTasks map[backend.TaskID]struct{}
	AllTasks    map[backend.TaskID]struct{}

	// Indices derived from Mappings.
	RemoteIDToMapping map[string]*backend.SyncMapping
	LocalIDToMapping  map[backend.TaskID]*backend.SyncMapping

	// LocalChanges are mappings whose dirty flag is set; phase 3 pushes
	// them. Phase 1 appends rescued mappings, phase 2 drops deleted ones.
	LocalChanges []*backend.SyncMapping

	// MappedTasks is the set of local ids that have a mapping.
	MappedTasks map[backend.TaskID]struct{}

	// RemoteChangeMap holds, per local id, the remote proxy for tasks that
	// already have a mapping; phase 3 merges against these.
	RemoteChangeMap map[backend.TaskID]*backend.TaskProxy

	// NewRemoteTasks holds unmapped remote proxies keyed by name, for the
	// name-based rescue in phase 1.
	NewRemoteTasks map[string]*backend.TaskProxy

	// Tag catalogue; the lowercase index is authoritative within the run.
	Tags                map[backend.TagID]backend.Tag
	TagsByLowercaseName map[string]backend.Tag

	// Work sets, in stable ascending-id order.
	NewlyCreatedTasks []backend.TaskID
	DeletedTasks      []backend.TaskID

	// Remote state for phase 4, keyed by remote id with a stable iteration
	// order. Phase 3 swaps refetched proxies in here; phase 2 drops entries
	// whose local side was deleted.
	RemoteByID  map[string]*backend.TaskProxy
	RemoteOrder []string
}

// NewSyncData joins the local store with the mapping store and the fetched
// remote state into a coherent snapshot. Construction order is fixed:
// mappings, then indices, then the remote split, then work sets. Any read
// failure here is fatal for the run.
func NewSyncData(provider Provider, remoteTasks []*backend.TaskProxy, tasks TaskStore, tags TagStore, mappings MappingStore) (*SyncData, error) {
	d := &SyncData{
		Provider:            provider,
		RemoteIDToMapping:   make(map[string]*backend.SyncMapping),
		LocalIDToMapping:    make(map[backend.TaskID]*backend.SyncMapping),
		MappedTasks:         make(map[backend.TaskID]struct{}),
		RemoteChangeMap:     make(map[backend.TaskID]*backend.TaskProxy),
		NewRemoteTasks:      make(map[string]*backend.TaskProxy),
		TagsByLowercaseName: make(map[string]backend.Tag),
		RemoteByID:          make(map[string]*backend.TaskProxy),
	}

	ms, err := mappings.GetSyncMappings(provider.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync mappings: %w", err)
	}
	d.Mappings = ms
	for _, m := range ms {
		d.RemoteIDToMapping[m.RemoteID] = m
		d.LocalIDToMapping[m.TaskID] = m
		d.MappedTasks[m.TaskID] = struct{}{}
		if m.Updated {
			d.LocalChanges = append(d.LocalChanges, m)
		}
	}

	active, err := tasks.GetActiveTaskIdentifiers()
	if err != nil {
		return nil, fmt.Errorf("failed to load active task identifiers: %w", err)
	}
	all, err := tasks.GetAllTaskIdentifiers()
	if err != nil {
		return nil, fmt.Errorf("failed to load task identifiers: %w", err)
	}
	d.ActiveTasks = idSet(active)
	d.AllTasks = idSet(all)

	for _, proxy := range remoteTasks {
		if proxy == nil || proxy.RemoteID == "" {
			continue
		}
		if _, seen := d.RemoteByID[proxy.RemoteID]; !seen {
			d.RemoteOrder = append(d.RemoteOrder, proxy.RemoteID)
		}
		d.RemoteByID[proxy.RemoteID] = proxy
		if m := d.RemoteIDToMapping[proxy.RemoteID]; m != nil {
			d.RemoteChangeMap[m.TaskID] = proxy
		} else if proxy.Name != "" {
			d.NewRemoteTasks[proxy.Name] = proxy
		}
	}

	tagMap, err := tags.GetAllTagsAsMap()
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	d.Tags = tagMap
	for _, tag := range tagMap {
		d.TagsByLowercaseName[backend.NormalizeTagName(tag.Name)] = tag
	}

	for id := range d.ActiveTasks {
		if _, mapped := d.MappedTasks[id]; !mapped {
			d.NewlyCreatedTasks = append(d.NewlyCreatedTasks, id)
		}
	}
	for id := range d.MappedTasks {
		if _, alive := d.AllTasks[id]; !alive {
			d.DeletedTasks = append(d.DeletedTasks, id)
		}
	}
	sortIDs(d.NewlyCreatedTasks)
	sortIDs(d.DeletedTasks)

	return d, nil
}

// addMapping registers a mapping created mid-run in every index.
func (d *SyncData) addMapping(m *backend.SyncMapping) {
	d.Mappings = append(d.Mappings, m)
	d.RemoteIDToMapping[m.RemoteID] = m
	d.LocalIDToMapping[m.TaskID] = m
	d.MappedTasks[m.TaskID] = struct{}{}
}

// removeMapping drops a mapping from every index, including the pending
// local-change list and the remote change map.
func (d *SyncData) removeMapping(m *backend.SyncMapping) {
	delete(d.RemoteIDToMapping, m.RemoteID)
	delete(d.LocalIDToMapping, m.TaskID)
	delete(d.MappedTasks, m.TaskID)
	delete(d.RemoteChangeMap, m.TaskID)
	for i, c := range d.LocalChanges {
		if c == m {
			d.LocalChanges = append(d.LocalChanges[:i], d.LocalChanges[i+1:]...)
			break
		}
	}
}

// registerTag makes a tag visible to the rest of the run.
func (d *SyncData) registerTag(tag backend.Tag) {
	d.Tags[tag.ID] = tag
	d.TagsByLowercaseName[backend.NormalizeTagName(tag.Name)] = tag
}

func idSet(ids []backend.TaskID) map[backend.TaskID]struct{} {
	set := make(map[backend.TaskID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortIDs(ids []backend.TaskID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
