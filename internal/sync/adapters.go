package sync

import (
	"context"
	"fmt"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
)

// colAdapter gives the coordinator one uniform view over the three
// entity collections. Every closure preserves entity ids so that
// id-presence stays a valid conflict signal on both sides.
type colAdapter struct {
	name store.Collection

	// remoteIDs fetches the remote collection and returns its ids in
	// response order, alongside an index for pulls.
	fetchRemote func(ctx context.Context) (ids []string, pull func(id string, overwrite bool) error, err error)

	// localIDs lists the local collection's ids in insertion order.
	localIDs func() []string

	// pushOne uploads one local entity by id.
	pushOne func(ctx context.Context, id string) error
}

func (c *Coordinator) adapter(projectID string, col store.Collection) (*colAdapter, error) {
	switch col {
	case store.UserStories:
		return c.storyAdapter(projectID), nil
	case store.Wireframes:
		return c.wireframeAdapter(projectID), nil
	case store.Scenarios:
		return c.scenarioAdapter(projectID), nil
	}
	return nil, fmt.Errorf("collection %q is not syncable", col)
}

func (c *Coordinator) storyAdapter(projectID string) *colAdapter {
	return &colAdapter{
		name: store.UserStories,
		fetchRemote: func(ctx context.Context) ([]string, func(string, bool) error, error) {
			remote, err := c.client.ListUserStories(ctx, projectID)
			if err != nil {
				return nil, nil, err
			}
			byID := make(map[string]models.UserStory, len(remote))
			ids := make([]string, 0, len(remote))
			for _, u := range remote {
				byID[u.ID] = u
				ids = append(ids, u.ID)
			}
			pull := func(id string, overwrite bool) error {
				u := byID[id]
				if overwrite && c.store.Has(store.UserStories, id) {
					return c.store.UpdateUserStory(&u)
				}
				return c.store.CreateUserStory(&u)
			}
			return ids, pull, nil
		},
		localIDs: func() []string {
			stories := c.store.ListUserStories(projectID)
			ids := make([]string, len(stories))
			for i, u := range stories {
				ids[i] = u.ID
			}
			return ids
		},
		pushOne: func(ctx context.Context, id string) error {
			u, ok := c.store.GetUserStory(id)
			if !ok {
				return store.ErrNotFound
			}
			return c.client.CreateUserStory(ctx, u)
		},
	}
}

func (c *Coordinator) wireframeAdapter(projectID string) *colAdapter {
	return &colAdapter{
		name: store.Wireframes,
		fetchRemote: func(ctx context.Context) ([]string, func(string, bool) error, error) {
			remote, err := c.client.ListWireframes(ctx, projectID)
			if err != nil {
				return nil, nil, err
			}
			byID := make(map[string]models.Wireframe, len(remote))
			ids := make([]string, 0, len(remote))
			for _, w := range remote {
				byID[w.ID] = w
				ids = append(ids, w.ID)
			}
			pull := func(id string, overwrite bool) error {
				w := byID[id]
				if overwrite && c.store.Has(store.Wireframes, id) {
					// wireframes are read-only for the sync core; an id
					// present locally is left alone even on forced pull
					return nil
				}
				return c.store.CreateWireframe(&w)
			}
			return ids, pull, nil
		},
		localIDs: func() []string {
			frames := c.store.ListWireframes(projectID)
			ids := make([]string, len(frames))
			for i, w := range frames {
				ids[i] = w.ID
			}
			return ids
		},
		pushOne: func(ctx context.Context, id string) error {
			for _, w := range c.store.ListWireframes(projectID) {
				if w.ID == id {
					return c.client.CreateWireframe(ctx, &w)
				}
			}
			return store.ErrNotFound
		},
	}
}

func (c *Coordinator) scenarioAdapter(projectID string) *colAdapter {
	return &colAdapter{
		name: store.Scenarios,
		fetchRemote: func(ctx context.Context) ([]string, func(string, bool) error, error) {
			remote, err := c.client.ListScenarios(ctx, projectID)
			if err != nil {
				return nil, nil, err
			}
			byID := make(map[string]models.Scenario, len(remote))
			ids := make([]string, 0, len(remote))
			for _, sc := range remote {
				byID[sc.ID] = sc
				ids = append(ids, sc.ID)
			}
			pull := func(id string, overwrite bool) error {
				sc := byID[id]
				if overwrite && c.store.Has(store.Scenarios, id) {
					return c.store.UpdateScenario(&sc)
				}
				return c.store.CreateScenario(&sc)
			}
			return ids, pull, nil
		},
		localIDs: func() []string {
			scenarios := c.store.ListScenarios(projectID)
			ids := make([]string, len(scenarios))
			for i, sc := range scenarios {
				ids[i] = sc.ID
			}
			return ids
		},
		pushOne: func(ctx context.Context, id string) error {
			sc, ok := c.store.GetScenario(id)
			if !ok {
				return store.ErrNotFound
			}
			return c.client.CreateScenario(ctx, sc)
		},
	}
}
