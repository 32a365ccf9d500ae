// Package navigator tracks the currently selected room and view of one
// project session. Selection is reconciled against two session overlays
// layered on top of the read-only hierarchy: a tombstone set of deleted
// rooms and views uploaded at runtime, keyed by room id.
//
// A Navigator is single-goroutine: every transition runs to completion
// before the next event is processed, and independent instances share no
// state, so no locking is involved.
package navigator

import (
	"context"
	"errors"
	"fmt"

	"github.com/demointeriors/tour-service/internal/hierarchy"
	"github.com/demointeriors/tour-service/internal/models"
)

var (
	// ErrNotLoaded distinguishes "hierarchy still in flight" from "entity
	// absent from a loaded hierarchy". Callers must not conflate the two.
	ErrNotLoaded = errors.New("navigator: hierarchy not loaded")

	// ErrRoomNotFound is returned when a transition names a room that is
	// absent from (or deleted in) the current hierarchy.
	ErrRoomNotFound = errors.New("navigator: room not found")

	// ErrAssetUnresolved marks the pending state of an asset lookup: the
	// view's panorama has neither an upload overlay nor a fetch result
	// yet. It is not a failure.
	ErrAssetUnresolved = errors.New("navigator: asset not resolved yet")
)

// AssetResolver is the data-fetch collaborator used to resolve persisted
// panorama assets. Returning (nil, nil) means the asset is still pending.
type AssetResolver interface {
	ResolveAsset(ctx context.Context, assetID string) (*models.Asset, error)
}

// ReleaseFunc revokes one object URL created for an uploaded asset.
type ReleaseFunc func(url string)

// Navigator resolves "current scene" from a hierarchy snapshot plus the
// session overlays.
type Navigator struct {
	tree *hierarchy.ProjectHierarchy

	selectedRoomID string
	selectedViewID string

	deletedRoomIDs map[string]struct{}
	uploadedViews  map[string][]models.View
	uploadedAssets map[string]models.Asset

	objectURLs []string
	release    ReleaseFunc

	assets AssetResolver
}

// New returns a navigator with no hierarchy attached yet. assets may be
// nil when persisted asset resolution is not needed (tests, offline use);
// release may be nil when uploaded assets are not blob-backed.
func New(assets AssetResolver, release ReleaseFunc) *Navigator {
	return &Navigator{
		deletedRoomIDs: make(map[string]struct{}),
		uploadedViews:  make(map[string][]models.View),
		uploadedAssets: make(map[string]models.Asset),
		assets:         assets,
		release:        release,
	}
}

// Loaded reports whether a hierarchy snapshot is attached.
func (n *Navigator) Loaded() bool { return n.tree != nil }

// ProjectID returns the attached project's id, or "" while loading.
func (n *Navigator) ProjectID() string {
	if n.tree == nil {
		return ""
	}
	return n.tree.Project.ID
}

// SetHierarchy attaches a hierarchy snapshot. Switching to a different
// project clears both overlays and releases every tracked object URL.
// Selection is kept when it is still valid in the new snapshot, otherwise
// it falls back to the initial selection.
func (n *Navigator) SetHierarchy(tree *hierarchy.ProjectHierarchy) {
	if tree == nil {
		n.Reset()
		n.tree = nil
		return
	}
	if n.tree != nil && n.tree.Project.ID != tree.Project.ID {
		n.clearOverlays()
	}
	n.tree = tree
	if _, ok := n.visibleRoom(n.selectedRoomID); !ok {
		sel := tree.InitialSelection()
		n.selectedRoomID = sel.RoomID
		n.selectedViewID = sel.ViewID
	}
	n.reconcileView()
}

// Reset clears both overlays and selection and releases every tracked
// object URL. The hierarchy stays attached.
func (n *Navigator) Reset() {
	n.clearOverlays()
	n.selectedRoomID = ""
	n.selectedViewID = ""
	if n.tree != nil {
		sel := n.tree.InitialSelection()
		n.selectedRoomID = sel.RoomID
		n.selectedViewID = sel.ViewID
	}
}

// Close releases every tracked object URL. Deterministic teardown: each
// URL is released exactly once even if Close is called more than once.
func (n *Navigator) Close() {
	n.clearOverlays()
	n.tree = nil
	n.selectedRoomID = ""
	n.selectedViewID = ""
}

func (n *Navigator) clearOverlays() {
	if n.release != nil {
		for _, url := range n.objectURLs {
			n.release(url)
		}
	}
	n.objectURLs = nil
	n.deletedRoomIDs = make(map[string]struct{})
	n.uploadedViews = make(map[string][]models.View)
	n.uploadedAssets = make(map[string]models.Asset)
}

// VisibleRooms returns the hierarchy rooms with deleted rooms filtered
// out, in traversal order.
func (n *Navigator) VisibleRooms() []hierarchy.RoomNode {
	if n.tree == nil {
		return nil
	}
	var rooms []hierarchy.RoomNode
	for _, room := range n.tree.Rooms() {
		if _, deleted := n.deletedRoomIDs[room.ID]; !deleted {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

// EffectiveViews returns the room's persisted views concatenated with the
// session's uploaded views for that room id, in that order.
func (n *Navigator) EffectiveViews(room hierarchy.RoomNode) []models.View {
	views := make([]models.View, 0, len(room.Views)+len(n.uploadedViews[room.ID]))
	views = append(views, room.Views...)
	views = append(views, n.uploadedViews[room.ID]...)
	return views
}

// CurrentRoom resolves the visible room matching the selection, falling
// back to the first visible room. ok is false when nothing is selectable.
func (n *Navigator) CurrentRoom() (hierarchy.RoomNode, bool) {
	if room, ok := n.visibleRoom(n.selectedRoomID); ok {
		return room, true
	}
	rooms := n.VisibleRooms()
	if len(rooms) == 0 {
		return hierarchy.RoomNode{}, false
	}
	return rooms[0], true
}

// CurrentView resolves the selected view within the current room's
// effective views, falling back to the first.
func (n *Navigator) CurrentView() (models.View, bool) {
	room, ok := n.CurrentRoom()
	if !ok {
		return models.View{}, false
	}
	views := n.EffectiveViews(room)
	if len(views) == 0 {
		return models.View{}, false
	}
	for _, v := range views {
		if v.ID == n.selectedViewID {
			return v, true
		}
	}
	return views[0], true
}

// CurrentPins returns the pins drawn on the current view.
func (n *Navigator) CurrentPins() []models.Pin {
	room, ok := n.CurrentRoom()
	if !ok {
		return nil
	}
	view, ok := n.CurrentView()
	if !ok {
		return nil
	}
	var pins []models.Pin
	for _, pin := range room.Pins {
		if pin.FromViewID == view.ID {
			pins = append(pins, pin)
		}
	}
	return pins
}

// CurrentAssetURL resolves the current view's panorama URL: an upload
// overlay wins, otherwise the asset resolver is consulted. A pending
// lookup surfaces as ErrAssetUnresolved; resolver failures pass through.
func (n *Navigator) CurrentAssetURL(ctx context.Context) (string, error) {
	if n.tree == nil {
		return "", ErrNotLoaded
	}
	view, ok := n.CurrentView()
	if !ok {
		return "", fmt.Errorf("%w: no current view", ErrAssetUnresolved)
	}
	if asset, ok := n.uploadedAssets[view.PanoramaAssetID]; ok {
		return asset.URL, nil
	}
	if n.assets == nil {
		return "", ErrAssetUnresolved
	}
	asset, err := n.assets.ResolveAsset(ctx, view.PanoramaAssetID)
	if err != nil {
		return "", err
	}
	if asset == nil {
		return "", ErrAssetUnresolved
	}
	return asset.URL, nil
}

// SelectRoom makes roomID current and resets the view selection to that
// room's first effective view. Selecting an unknown or deleted room is
// rejected without touching the existing selection.
func (n *Navigator) SelectRoom(roomID string) error {
	if n.tree == nil {
		return ErrNotLoaded
	}
	room, ok := n.visibleRoom(roomID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	n.selectedRoomID = room.ID
	n.selectedViewID = ""
	if views := n.EffectiveViews(room); len(views) > 0 {
		n.selectedViewID = views[0].ID
	}
	return nil
}

// SelectView sets the view selection directly, with no cascading changes.
// The selection is reconciled so it never points at a view absent from
// the current room's effective view list.
func (n *Navigator) SelectView(viewID string) {
	n.selectedViewID = viewID
	n.reconcileView()
}

// NavigateViaPin selects the pin's target room and, when the pin names a
// target view, that view instead of the room default. An unresolvable
// target (cross-project pin, deleted room) is a no-op that leaves the
// existing selection untouched.
func (n *Navigator) NavigateViaPin(pin models.Pin) error {
	if err := n.SelectRoom(pin.TargetRoomID); err != nil {
		return err
	}
	if pin.TargetViewID != nil {
		n.SelectView(*pin.TargetViewID)
	}
	return nil
}

// DeleteRoom tombstones a room without mutating the hierarchy. If the
// room was current, selection cascades to the next remaining visible room
// in the same flat (scanning forward, then backward), mirroring
// SelectRoom's default-view behavior, or to none.
func (n *Navigator) DeleteRoom(roomID string) error {
	if n.tree == nil {
		return ErrNotLoaded
	}
	if _, ok := n.tree.FindRoom(roomID); !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	current, hadCurrent := n.CurrentRoom()
	n.deletedRoomIDs[roomID] = struct{}{}
	if !hadCurrent || current.ID != roomID {
		return nil
	}

	n.selectedRoomID = ""
	n.selectedViewID = ""
	if sibling, ok := n.nextVisibleSibling(roomID); ok {
		return n.SelectRoom(sibling)
	}
	return nil
}

// UndeleteRoom removes a tombstone. Selection is left untouched; the
// caller may re-select the restored room.
func (n *Navigator) UndeleteRoom(roomID string) {
	delete(n.deletedRoomIDs, roomID)
}

// UploadView appends a runtime-uploaded view to its room's overlay,
// stores the asset, and makes the new view current. The asset's URL is
// tracked for release at session teardown.
func (n *Navigator) UploadView(view models.View, asset models.Asset) error {
	if n.tree == nil {
		return ErrNotLoaded
	}
	if _, ok := n.visibleRoom(view.RoomID); !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, view.RoomID)
	}
	n.uploadedViews[view.RoomID] = append(n.uploadedViews[view.RoomID], view)
	n.uploadedAssets[asset.ID] = asset
	n.objectURLs = append(n.objectURLs, asset.URL)

	if err := n.SelectRoom(view.RoomID); err != nil {
		return err
	}
	n.SelectView(view.ID)
	return nil
}

// visibleRoom resolves roomID against the hierarchy and the tombstone set.
func (n *Navigator) visibleRoom(roomID string) (hierarchy.RoomNode, bool) {
	if n.tree == nil || roomID == "" {
		return hierarchy.RoomNode{}, false
	}
	if _, deleted := n.deletedRoomIDs[roomID]; deleted {
		return hierarchy.RoomNode{}, false
	}
	return n.tree.FindRoom(roomID)
}

// nextVisibleSibling finds the nearest visible room in the same flat,
// preferring rooms after the given one in flat order.
func (n *Navigator) nextVisibleSibling(roomID string) (string, bool) {
	flat, ok := n.tree.FlatOf(roomID)
	if !ok {
		return "", false
	}
	idx := -1
	for i, room := range flat.Rooms {
		if room.ID == roomID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}
	for i := idx + 1; i < len(flat.Rooms); i++ {
		if _, ok := n.visibleRoom(flat.Rooms[i].ID); ok {
			return flat.Rooms[i].ID, true
		}
	}
	for i := idx - 1; i >= 0; i-- {
		if _, ok := n.visibleRoom(flat.Rooms[i].ID); ok {
			return flat.Rooms[i].ID, true
		}
	}
	return "", false
}

// reconcileView enforces the invariant that a non-empty effective view
// list always has a matching selected view.
func (n *Navigator) reconcileView() {
	room, ok := n.CurrentRoom()
	if !ok {
		return
	}
	views := n.EffectiveViews(room)
	if len(views) == 0 {
		n.selectedViewID = ""
		return
	}
	for _, v := range views {
		if v.ID == n.selectedViewID {
			return
		}
	}
	n.selectedViewID = views[0].ID
}
