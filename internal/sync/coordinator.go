package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"

	"github.com/AgileSoftDev-2025/storycanvas/internal/gateway"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
)

// Coordinator reconciles local store contents with the remote backend.
// It is an explicit context object: construct once, pass by reference.
type Coordinator struct {
	store   *store.Store
	client  *gateway.Client
	signOut func(reason string)

	mu       gosync.Mutex
	inflight map[string]bool
}

// New creates a coordinator over a store and a backend client. signOut
// is invoked when the backend answers 401 anywhere during sync; pass
// authstate.SignOut in production, a stub in tests. A nil signOut is a
// no-op.
func New(st *store.Store, client *gateway.Client, signOut func(reason string)) *Coordinator {
	if signOut == nil {
		signOut = func(string) {}
	}
	return &Coordinator{
		store:    st,
		client:   client,
		signOut:  signOut,
		inflight: make(map[string]bool),
	}
}

// authenticated reports whether the client carries a token.
func (c *Coordinator) authenticated() bool {
	return c.client != nil && c.client.Token != ""
}

// acquire takes the per-project in-flight guard. At most one sync
// operation may run per project id at a time.
func (c *Coordinator) acquire(projectID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[projectID] {
		return false
	}
	c.inflight[projectID] = true
	return true
}

func (c *Coordinator) releaseGuard(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, projectID)
}

// handleSyncErr classifies a gateway error: 401 forces sign-out, and
// everything network-shaped degrades to offline. The caller keeps
// serving from the local store either way.
func (c *Coordinator) handleSyncErr(err error) Mode {
	if errors.Is(err, gateway.ErrUnauthorized) {
		c.signOut(err.Error())
		return ModeOffline
	}
	return ModeOffline
}

// AutoSyncOnEntry runs when a page first needs a collection. It only
// ever pulls into an empty local collection; a populated local cache is
// never touched, whatever the remote says.
func (c *Coordinator) AutoSyncOnEntry(ctx context.Context, projectID string, col store.Collection) Outcome {
	projectID = store.NormalizeProjectID(projectID)

	if !c.authenticated() {
		return Outcome{Mode: ModeOffline, LocalCount: c.store.Count(col, projectID)}
	}
	if !c.acquire(projectID) {
		return Outcome{Mode: ModeError, Message: ErrSyncInFlight.Error(),
			LocalCount: c.store.Count(col, projectID)}
	}
	defer c.releaseGuard(projectID)

	ad, err := c.adapter(projectID, col)
	if err != nil {
		return Outcome{Mode: ModeError, Message: err.Error()}
	}

	remoteIDs, pull, err := ad.fetchRemote(ctx)
	if err != nil {
		mode := c.handleSyncErr(err)
		slog.Debug("auto-sync: fetch remote", "collection", col, "err", err)
		return Outcome{Mode: mode, Message: err.Error(),
			LocalCount: c.store.Count(col, projectID)}
	}

	localIDs := ad.localIDs()
	out := Outcome{
		LocalCount:  len(localIDs),
		RemoteCount: len(remoteIDs),
	}

	switch {
	case len(remoteIDs) > 0 && len(localIDs) == 0:
		// Pull: remote has data, local cache is cold
		for _, id := range remoteIDs {
			if err := pull(id, false); err != nil {
				slog.Debug("auto-sync: pull item", "id", id, "err", err)
				continue
			}
			out.Pulled++
		}
		out.Synced = true
		out.SyncedFromDB = true
		out.Mode = ModeSynced
		out.LocalCount = out.Pulled

	case len(localIDs) > 0 && len(remoteIDs) == 0:
		// Local work not yet uploaded; an empty remote never clears
		// a populated cache
		out.NeedsSync = true
		out.Mode = ModeNeedsSync

	case len(localIDs) == 0 && len(remoteIDs) == 0:
		out.Synced = true
		out.Mode = ModeSynced

	default:
		// Both populated: badge only, no automatic merge
		remoteSet := toSet(remoteIDs)
		localOnly, conflicts := 0, 0
		for _, id := range localIDs {
			if remoteSet[id] {
				conflicts++
			} else {
				localOnly++
			}
		}
		out.Conflicts = conflicts
		if localOnly == 0 && len(remoteIDs) == conflicts {
			out.Synced = true
			out.Mode = ModeSynced
		} else {
			out.NeedsSync = true
			out.Mode = ModeNeedsSync
		}
	}

	return out
}

// TwoWaySync is the explicit user-triggered reconciliation: pull remote
// entities missing locally, then push local entities missing remotely.
// Id presence is the sole conflict signal; an id on both sides is
// counted and left alone on both sides.
func (c *Coordinator) TwoWaySync(ctx context.Context, projectID string, col store.Collection) (TwoWayResult, error) {
	projectID = store.NormalizeProjectID(projectID)

	if !c.authenticated() {
		return TwoWayResult{Mode: ModeOffline}, nil
	}
	if !c.acquire(projectID) {
		return TwoWayResult{Mode: ModeError}, ErrSyncInFlight
	}
	defer c.releaseGuard(projectID)

	ad, err := c.adapter(projectID, col)
	if err != nil {
		return TwoWayResult{Mode: ModeError}, err
	}

	remoteIDs, pull, err := ad.fetchRemote(ctx)
	if err != nil {
		mode := c.handleSyncErr(err)
		return TwoWayResult{Mode: mode, Message: err.Error()}, nil
	}

	localSet := toSet(ad.localIDs())
	remoteSet := toSet(remoteIDs)

	var res TwoWayResult

	// Pull before push, so a stale local copy cannot shadow fresh
	// remote data it is about to be compared against
	for _, id := range remoteIDs {
		if localSet[id] {
			res.Conflicts++
			continue
		}
		if err := pull(id, false); err != nil {
			slog.Debug("two-way sync: pull item", "id", id, "err", err)
			res.Failed++
			continue
		}
		res.Pulled++
	}

	for _, id := range ad.localIDs() {
		if remoteSet[id] {
			continue // already known remote, or pulled this invocation
		}
		if err := ad.pushOne(ctx, id); err != nil {
			if errors.Is(err, gateway.ErrUnauthorized) {
				c.signOut(err.Error())
				res.Mode = ModeOffline
				res.Message = err.Error()
				return res, nil
			}
			slog.Debug("two-way sync: push item", "id", id, "err", err)
			res.Failed++
			continue
		}
		res.Pushed++
	}

	if res.Failed > 0 {
		res.Mode = ModeNeedsSync
	} else {
		res.Mode = ModeSynced
	}
	return res, nil
}

// PushLocalToRemote uploads every local entity the remote does not hold
// yet, continuing past individual failures. Ids the remote already
// knows are skipped, never re-sent.
func (c *Coordinator) PushLocalToRemote(ctx context.Context, projectID string, col store.Collection) PushResult {
	projectID = store.NormalizeProjectID(projectID)

	if !c.authenticated() {
		return PushResult{Message: "not signed in"}
	}
	if !c.acquire(projectID) {
		return PushResult{Message: ErrSyncInFlight.Error()}
	}
	defer c.releaseGuard(projectID)

	ad, err := c.adapter(projectID, col)
	if err != nil {
		return PushResult{Message: err.Error()}
	}

	remoteIDs, _, err := ad.fetchRemote(ctx)
	if err != nil {
		c.handleSyncErr(err)
		return PushResult{Message: fmt.Sprintf("fetch remote %s: %v", col, err)}
	}
	remoteSet := toSet(remoteIDs)

	var res PushResult
	for _, id := range ad.localIDs() {
		if remoteSet[id] {
			res.Skipped++
			continue
		}
		if err := ad.pushOne(ctx, id); err != nil {
			if errors.Is(err, gateway.ErrUnauthorized) {
				c.signOut(err.Error())
				res.Message = err.Error()
				return res
			}
			slog.Debug("push: item failed", "collection", col, "id", id, "err", err)
			res.Failed++
			continue
		}
		res.SyncedCount++
	}

	res.Success = res.Failed == 0
	res.Message = fmt.Sprintf("pushed %d, skipped %d, failed %d", res.SyncedCount, res.Skipped, res.Failed)
	return res
}

// PullRemoteToLocal merges the remote collection into the local store,
// applying remote-wins for ids present on both sides (the user asked
// for remote state). Local entities absent from the remote response are
// kept: the remote is additive only from the store's perspective.
func (c *Coordinator) PullRemoteToLocal(ctx context.Context, projectID string, col store.Collection) PullResult {
	projectID = store.NormalizeProjectID(projectID)

	if !c.authenticated() {
		return PullResult{Message: "not signed in"}
	}
	if !c.acquire(projectID) {
		return PullResult{Message: ErrSyncInFlight.Error()}
	}
	defer c.releaseGuard(projectID)

	ad, err := c.adapter(projectID, col)
	if err != nil {
		return PullResult{Message: err.Error()}
	}

	remoteIDs, pull, err := ad.fetchRemote(ctx)
	if err != nil {
		c.handleSyncErr(err)
		return PullResult{Message: fmt.Sprintf("fetch remote %s: %v", col, err)}
	}

	localSet := toSet(ad.localIDs())

	var res PullResult
	for _, id := range remoteIDs {
		existed := localSet[id]
		if err := pull(id, true); err != nil {
			slog.Debug("pull: item failed", "collection", col, "id", id, "err", err)
			continue
		}
		if existed {
			res.Overwritten++
		} else {
			res.Pulled++
		}
	}

	res.Success = true
	res.Message = fmt.Sprintf("pulled %d, overwrote %d", res.Pulled, res.Overwritten)
	return res
}

// EnsureRemoteProject uploads the local project record if the backend
// does not know it yet. Collections cannot be pushed under a project id
// the server has never seen.
func (c *Coordinator) EnsureRemoteProject(ctx context.Context, projectID string) error {
	projectID = store.NormalizeProjectID(projectID)

	if !c.authenticated() {
		return nil
	}
	_, err := c.client.GetProject(ctx, projectID)
	if err == nil {
		return nil
	}
	if errors.Is(err, gateway.ErrUnauthorized) {
		c.signOut(err.Error())
		return err
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		return err
	}

	local, ok := c.store.GetProject(projectID)
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, store.ErrNotFound)
	}
	if err := c.client.CreateProject(ctx, local); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.signOut(err.Error())
		}
		return fmt.Errorf("upload project %s: %w", projectID, err)
	}
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
