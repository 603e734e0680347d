package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/carmensoftware/carmen-catalog/pkg/debug"
	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

// Service is the remote surface the UI talks to. *api.Client satisfies it;
// tests substitute a fake.
type Service interface {
	Refresh(ctx context.Context) (model.Collections, error)

	CreateCategory(ctx context.Context, p model.CategoryPayload) error
	UpdateCategory(ctx context.Context, p model.CategoryPayload) error
	DeleteCategory(ctx context.Context, id string) error

	CreateSubCategory(ctx context.Context, p model.SubCategoryPayload) error
	UpdateSubCategory(ctx context.Context, p model.SubCategoryPayload) error
	DeleteSubCategory(ctx context.Context, id string) error

	CreateItemGroup(ctx context.Context, p model.ItemGroupPayload) error
	UpdateItemGroup(ctx context.Context, p model.ItemGroupPayload) error
	DeleteItemGroup(ctx context.Context, id string) error
}

// Snapshot persists the last good fetch for offline startup. *cache.Store
// satisfies it.
type Snapshot interface {
	Save(cols model.Collections) error
	Load() (model.Collections, time.Time, error)
}

// RefreshResultMsg carries the outcome of a catalog fetch.
type RefreshResultMsg struct {
	Cols      model.Collections
	FetchedAt time.Time
	FromCache bool
	Err       error
}

// WriteAction identifies which mutation a WriteResultMsg reports on.
type WriteAction int

const (
	ActionCreate WriteAction = iota
	ActionUpdate
	ActionDelete
)

func (a WriteAction) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// WriteResultMsg carries the outcome of a create, update or delete.
type WriteResultMsg struct {
	Action WriteAction
	Kind   model.NodeKind
	Key    string // node key of the written entity, for reselection
	Label  string // display label for the status toast
	Err    error
}

// searchTickMsg fires when the search debounce window elapses. Gen guards
// against stale ticks after further typing.
type searchTickMsg struct {
	Gen int
}

// statusClearMsg expires a status toast.
type statusClearMsg struct {
	Gen int
}

func refreshCmd(svc Service, snap Snapshot) tea.Cmd {
	return func() tea.Msg {
		cols, err := svc.Refresh(context.Background())
		if err != nil {
			return RefreshResultMsg{Err: err}
		}
		if snap != nil {
			if serr := snap.Save(cols); serr != nil {
				debug.Error(serr, "snapshot save failed")
			}
		}
		return RefreshResultMsg{Cols: cols, FetchedAt: time.Now()}
	}
}

func loadSnapshotCmd(snap Snapshot) tea.Cmd {
	return func() tea.Msg {
		cols, fetchedAt, err := snap.Load()
		if err != nil {
			return RefreshResultMsg{Err: err, FromCache: true}
		}
		return RefreshResultMsg{Cols: cols, FetchedAt: fetchedAt, FromCache: true}
	}
}

// saveCmd dispatches a create or update for the assembled node. isEditType
// marks submissions whose recipe/sold flags changed and were confirmed.
func saveCmd(svc Service, n *model.Node, isCreate, isEditType bool) tea.Cmd {
	action := ActionUpdate
	if isCreate {
		action = ActionCreate
	}
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch n.Kind {
		case model.KindCategory:
			p := model.CategoryPayloadFrom(n, isEditType)
			if isCreate {
				err = svc.CreateCategory(ctx, p)
			} else {
				err = svc.UpdateCategory(ctx, p)
			}
		case model.KindSubCategory:
			p := model.SubCategoryPayloadFrom(n, isEditType)
			if isCreate {
				err = svc.CreateSubCategory(ctx, p)
			} else {
				err = svc.UpdateSubCategory(ctx, p)
			}
		case model.KindItemGroup:
			p := model.ItemGroupPayloadFrom(n, isEditType)
			if isCreate {
				err = svc.CreateItemGroup(ctx, p)
			} else {
				err = svc.UpdateItemGroup(ctx, p)
			}
		}
		return WriteResultMsg{
			Action: action,
			Kind:   n.Kind,
			Key:    n.Key(),
			Label:  n.DisplayLabel(),
			Err:    err,
		}
	}
}

func deleteCmd(svc Service, n *model.Node) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch n.Kind {
		case model.KindCategory:
			err = svc.DeleteCategory(ctx, n.ID)
		case model.KindSubCategory:
			err = svc.DeleteSubCategory(ctx, n.ID)
		case model.KindItemGroup:
			err = svc.DeleteItemGroup(ctx, n.ID)
		}
		return WriteResultMsg{
			Action: ActionDelete,
			Kind:   n.Kind,
			Key:    n.Key(),
			Label:  n.DisplayLabel(),
			Err:    err,
		}
	}
}

func searchTickCmd(gen int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return searchTickMsg{Gen: gen}
	})
}

func statusClearCmd(gen int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{Gen: gen}
	})
}
