package sync

import (
	"context"
	"fmt"
	"time"

	"taskbridge/backend"
	"taskbridge/internal/utils"
)

// Reconciler executes the four-phase algorithm against one run's SyncData
// snapshot. Phases run strictly in order; reordering changes observable
// behavior. A failure on one task is logged and skipped, the phase continues.
type Reconciler struct {
	data     *SyncData
	adapter  RemoteAdapter
	tasks    TaskStore
	tags     TagStore
	mappings MappingStore
	reporter Reporter
	merge    MergePolicy
	prefs    Preferences
	alarms   Alarms
	logger   *utils.Logger

	stats  Stats
	runLog RunLog
}

func newReconciler(data *SyncData, adapter RemoteAdapter, tasks TaskStore, tags TagStore, mappings MappingStore,
	reporter Reporter, merge MergePolicy, prefs Preferences, alarms Alarms, logger *utils.Logger) *Reconciler {
	return &Reconciler{
		data:     data,
		adapter:  adapter,
		tasks:    tasks,
		tags:     tags,
		mappings: mappings,
		reporter: reporter,
		merge:    merge,
		prefs:    prefs,
		alarms:   alarms,
		logger:   logger,
	}
}

// run walks the four phases. Cancellation is honored between tasks, never
// mid-task, so partial progress stays durable.
func (r *Reconciler) run(ctx context.Context) error {
	phases := []func(context.Context) error{
		r.pushNewTasks,
		r.pushDeletedTasks,
		r.pushUpdatedTasks,
		r.applyRemoteTasks,
	}
	for _, phase := range phases {
		if err := phase(ctx); err != nil {
			return err
		}
	}
	return nil
}

// pushNewTasks is phase 1: local tasks without a mapping are created
// remotely, unless an unmapped remote task with the same name rescues them
// into a mapping instead.
func (r *Reconciler) pushNewTasks(ctx context.Context) error {
	d := r.data
	r.reporter.Label("sending new tasks")
	for i, localID := range d.NewlyCreatedTasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.reporter.Tick(i+1, len(d.NewlyCreatedTasks))

		task, err := r.tasks.FetchTaskForSync(localID)
		if err != nil {
			r.logger.Warn("skipping task %d: %v", localID, err)
			continue
		}
		if task == nil {
			continue
		}

		// Name-based rescue: an unmapped remote task with the same name is
		// the same task. Associate instead of creating a duplicate; phase 3
		// pushes and merges it.
		if remote, ok := d.NewRemoteTasks[task.Name]; ok && task.Name != "" {
			m := &backend.SyncMapping{
				TaskID:     localID,
				ProviderID: d.Provider.ID,
				RemoteID:   remote.RemoteID,
				Updated:    true,
			}
			if err := r.mappings.SaveSyncMapping(m); err != nil {
				r.logger.Warn("rescue mapping for %q failed: %v", task.Name, err)
				continue
			}
			d.addMapping(m)
			d.LocalChanges = append(d.LocalChanges, m)
			d.RemoteChangeMap[localID] = remote
			delete(d.NewRemoteTasks, task.Name)
			continue
		}

		proxy := backend.NewTaskProxy(d.Provider.ID, "", task, r.taskTags(localID))
		remoteID, err := r.adapter.CreateTask(ctx, proxy)
		if err != nil {
			r.logRemote(fmt.Sprintf("error sending '%s'", task.Name))
			r.logger.Warn("create %q failed: %v", task.Name, err)
			continue
		}
		proxy.RemoteID = remoteID

		m := &backend.SyncMapping{
			TaskID:     localID,
			ProviderID: d.Provider.ID,
			RemoteID:   remoteID,
		}
		if err := r.mappings.SaveSyncMapping(m); err != nil {
			// The remote record exists; next run's rescue re-associates it.
			r.logger.Warn("mapping for %q failed: %v", task.Name, err)
			continue
		}
		d.addMapping(m)

		if err := r.adapter.PushTask(ctx, proxy, nil, m); err != nil {
			r.logRemote(fmt.Sprintf("error sending '%s'", task.Name))
			r.logger.Warn("push %q failed: %v", task.Name, err)
			continue
		}

		r.stats.RemoteCreated++
		r.logRemote(fmt.Sprintf("added '%s'", task.Name))
	}
	return nil
}

// pushDeletedTasks is phase 2: mapped tasks that vanished locally are
// deleted remotely and their mappings retired everywhere, including the
// phase-4 work set.
func (r *Reconciler) pushDeletedTasks(ctx context.Context) error {
	d := r.data
	r.reporter.Label("sending deletions")
	for i, localID := range d.DeletedTasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.reporter.Tick(i+1, len(d.DeletedTasks))

		m := d.LocalIDToMapping[localID]
		if m == nil {
			continue
		}
		if err := r.adapter.DeleteTask(ctx, m); err != nil {
			r.logRemote(fmt.Sprintf("error deleting id #%d", localID))
			r.logger.Warn("remote delete of task %d failed: %v", localID, err)
			continue
		}
		if err := r.mappings.DeleteSyncMapping(m); err != nil {
			r.logger.Warn("mapping delete for task %d failed: %v", localID, err)
			continue
		}
		d.removeMapping(m)
		delete(d.RemoteByID, m.RemoteID)

		r.stats.RemoteDeleted++
		r.logRemote(fmt.Sprintf("deleted id #%d", localID))
	}
	return nil
}

// pushUpdatedTasks is phase 3: dirty mappings push local state, merging
// first when the remote side changed too. After a merged push the remote
// record is refetched and swapped into the phase-4 work set so the merge is
// not overwritten by a stale snapshot.
func (r *Reconciler) pushUpdatedTasks(ctx context.Context) error {
	d := r.data
	r.reporter.Label("sending changes")
	changes := append([]*backend.SyncMapping(nil), d.LocalChanges...)
	for i, m := range changes {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.reporter.Tick(i+1, len(changes))

		task, err := r.tasks.FetchTaskForSync(m.TaskID)
		if err != nil {
			r.logger.Warn("skipping task %d: %v", m.TaskID, err)
			continue
		}
		if task == nil {
			continue
		}

		local := backend.NewTaskProxy(d.Provider.ID, m.RemoteID, task, r.taskTags(m.TaskID))
		conflict := d.RemoteChangeMap[m.TaskID]
		if conflict != nil {
			r.merge.Merge(local, conflict)
			r.stats.Merged++
		}

		if err := r.adapter.PushTask(ctx, local, conflict, m); err != nil {
			r.logRemote(fmt.Sprintf("error sending '%s'", task.Name))
			r.logger.Warn("push %q failed: %v", task.Name, err)
			continue
		}

		if conflict != nil {
			refetched, err := r.adapter.RefetchTask(ctx, conflict)
			if err != nil {
				r.logger.Warn("refetch of %s failed: %v", conflict.RemoteID, err)
			} else if refetched != nil {
				d.RemoteByID[refetched.RemoteID] = refetched
				d.RemoteChangeMap[m.TaskID] = refetched
			}
		} else {
			r.stats.RemoteUpdated++
		}
	}
	return nil
}

// applyRemoteTasks is phase 4: remote state is written into the local store.
// Unmapped remote tasks are rescued onto a same-named local task or
// materialized fresh with preference defaults; mapped remote deletions
// propagate locally.
func (r *Reconciler) applyRemoteTasks(ctx context.Context) error {
	d := r.data
	r.reporter.Label("applying remote changes")
	for i, remoteID := range d.RemoteOrder {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.reporter.Tick(i+1, len(d.RemoteOrder))

		proxy, ok := d.RemoteByID[remoteID]
		if !ok {
			continue // retired in phase 2
		}

		m := d.RemoteIDToMapping[proxy.RemoteID]
		var task *backend.Task
		if m == nil {
			if proxy.IsDeleted {
				continue // new and already deleted: nothing to do
			}
			found, err := r.tasks.SearchForTaskForSync(proxy.Name)
			if err != nil {
				r.logger.Warn("search for %q failed: %v", proxy.Name, err)
				continue
			}
			if found != nil {
				if other := d.LocalIDToMapping[found.ID]; other != nil {
					// Already tied to a different remote record. Claiming it
					// would break mapping uniqueness; the remote duplicate
					// stays unmapped and is skipped on every run while the
					// local task keeps its mapping.
					r.logger.Debug("task %d already mapped to %s, skipping %s", found.ID, other.RemoteID, proxy.RemoteID)
					continue
				}
				task = found
			} else {
				task = &backend.Task{Name: proxy.Name}
				ApplyDefaults(r.prefs, task)
			}
		} else {
			if proxy.IsDeleted {
				if err := r.tasks.DeleteTask(m.TaskID); err != nil {
					r.logger.Warn("local delete of task %d failed: %v", m.TaskID, err)
					continue
				}
				if err := r.mappings.DeleteSyncMapping(m); err != nil {
					r.logger.Warn("mapping delete for task %d failed: %v", m.TaskID, err)
				}
				d.removeMapping(m)
				r.stats.LocalDeleted++
				r.logLocal(fmt.Sprintf("deleted %s", proxy.Name))
				continue
			}
			existing, err := r.tasks.FetchTaskForSync(m.TaskID)
			if err != nil {
				r.logger.Warn("skipping task %d: %v", m.TaskID, err)
				continue
			}
			if existing == nil {
				continue
			}
			task = existing
			// Unchanged remote state is a no-op; this keeps back-to-back
			// runs from counting phantom updates.
			if !r.remoteDiffers(proxy, task) {
				continue
			}
		}

		proxy.WriteToTask(task)
		if err := r.tasks.SaveTask(task); err != nil {
			r.logger.Warn("saving %q failed: %v", task.Name, err)
			continue
		}

		r.reconcileTags(task.ID, proxy.Tags)

		created := false
		if m == nil {
			m = &backend.SyncMapping{
				TaskID:     task.ID,
				ProviderID: d.Provider.ID,
				RemoteID:   proxy.RemoteID,
			}
			if err := r.mappings.SaveSyncMapping(m); err != nil {
				if backend.IsUniqueViolation(err) {
					// A concurrent create beat us to it; the next run's
					// name-based rescue merges the two.
					r.logger.Debug("mapping for %q already exists", proxy.RemoteID)
				} else {
					r.logger.Warn("mapping for %q failed: %v", proxy.RemoteID, err)
				}
			} else {
				d.addMapping(m)
				r.stats.LocalCreated++
				r.logLocal(fmt.Sprintf("added '%s'", task.Name))
				created = true
			}
		}
		if !created {
			r.stats.LocalUpdated++
		}

		r.alarms.Rearm(task)
	}
	return nil
}

// reconcileTags makes the task's local tag set equal the remote one, up to
// case. Missing tags are created through the store; creation may race with
// another writer, the run index stays authoritative.
func (r *Reconciler) reconcileTags(taskID backend.TaskID, remoteNames []string) {
	d := r.data

	remote := make(map[string]struct{}, len(remoteNames))
	for _, name := range remoteNames {
		key := backend.NormalizeTagName(name)
		if key == "" {
			continue
		}
		remote[key] = struct{}{}
		if _, ok := d.TagsByLowercaseName[key]; !ok {
			tag, err := r.tags.CreateTag(name)
			if err != nil {
				r.logger.Warn("creating tag %q failed: %v", name, err)
				continue
			}
			d.registerTag(tag)
		}
	}

	localTags, err := r.tags.GetTaskTags(taskID)
	if err != nil {
		r.logger.Warn("loading tags for task %d failed: %v", taskID, err)
		return
	}
	local := make(map[string]backend.Tag, len(localTags))
	for _, tag := range localTags {
		local[backend.NormalizeTagName(tag.Name)] = tag
	}

	// Removals first, then additions.
	for key, tag := range local {
		if _, keep := remote[key]; !keep {
			if err := r.tags.RemoveTag(taskID, tag.ID); err != nil {
				r.logger.Warn("removing tag %q from task %d failed: %v", tag.Name, taskID, err)
			}
		}
	}
	for key := range remote {
		if _, have := local[key]; have {
			continue
		}
		tag, ok := d.TagsByLowercaseName[key]
		if !ok {
			continue // creation failed above
		}
		if err := r.tags.AddTag(taskID, tag.ID); err != nil {
			r.logger.Warn("adding tag %q to task %d failed: %v", tag.Name, taskID, err)
		}
	}
}

// remoteDiffers reports whether applying the proxy would change the local
// task or its tags.
func (r *Reconciler) remoteDiffers(proxy *backend.TaskProxy, task *backend.Task) bool {
	if proxy.Name != task.Name ||
		proxy.Notes != task.Notes ||
		proxy.Importance != task.Importance ||
		!timesEqual(proxy.DueDate, task.DueDate) ||
		!timesEqual(proxy.Completed, task.Completed) {
		return true
	}

	remote := make(map[string]struct{}, len(proxy.Tags))
	for _, name := range proxy.Tags {
		if key := backend.NormalizeTagName(name); key != "" {
			remote[key] = struct{}{}
		}
	}
	localTags, err := r.tags.GetTaskTags(task.ID)
	if err != nil {
		return true
	}
	if len(localTags) != len(remote) {
		return true
	}
	for _, tag := range localTags {
		if _, ok := remote[backend.NormalizeTagName(tag.Name)]; !ok {
			return true
		}
	}
	return false
}

func (r *Reconciler) taskTags(taskID backend.TaskID) []backend.Tag {
	tags, err := r.tags.GetTaskTags(taskID)
	if err != nil {
		r.logger.Warn("loading tags for task %d failed: %v", taskID, err)
		return nil
	}
	return tags
}

func (r *Reconciler) logRemote(line string) {
	r.runLog.Remote = append(r.runLog.Remote, line)
	r.reporter.Log(line)
}

func (r *Reconciler) logLocal(line string) {
	r.runLog.Local = append(r.runLog.Local, line)
	r.reporter.Log(line)
}

func timesEqual(a, b *time.Time) bool {
	aSet := a != nil && !a.IsZero()
	bSet := b != nil && !b.IsZero()
	if aSet != bSet {
		return false
	}
	if !aSet {
		return true
	}
	return a.Unix() == b.Unix()
}
