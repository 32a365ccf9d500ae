// Package hierarchy builds the denormalized project tree
// (project -> buildings -> flats -> rooms, rooms annotated with views and
// pins) from the flat collections supplied by the data layer.
//
// Building a tree is a pure projection: it has no side effects, holds no
// caches, and can be recomputed from the same collections at any time.
package hierarchy

import (
	"errors"
	"fmt"

	"github.com/demointeriors/tour-service/internal/models"
)

// ErrProjectNotFound is returned when the requested project id does not
// exist in the supplied collections.
var ErrProjectNotFound = errors.New("hierarchy: project not found")

// InconsistencyError reports a dangling owner reference discovered while
// building the tree. It indicates corrupted or partial upstream data and
// is not retried locally.
type InconsistencyError struct {
	Entity  string
	ID      string
	OwnerID string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("hierarchy: %s %q references missing owner %q", e.Entity, e.ID, e.OwnerID)
}

// Collections is a read-only snapshot of the flat entity lists for one or
// more projects. Entities keep their collection order; that order is the
// declared ordering used for initial selection.
type Collections struct {
	Projects  []models.Project
	Buildings []models.Building
	Flats     []models.Flat
	Rooms     []models.Room
	Views     []models.View
	Pins      []models.Pin
}

// RoomNode is a room annotated with its resolved views and the pins
// attached to any of those views.
type RoomNode struct {
	models.Room
	Views []models.View `json:"views"`
	Pins  []models.Pin  `json:"pins"`
}

// FlatNode is a flat with its resolved rooms.
type FlatNode struct {
	models.Flat
	Rooms []RoomNode `json:"rooms"`
}

// BuildingNode is a building with its resolved flats.
type BuildingNode struct {
	models.Building
	Flats []FlatNode `json:"flats"`
}

// ProjectHierarchy is the fully denormalized tree for one project.
type ProjectHierarchy struct {
	Project   models.Project `json:"project"`
	Buildings []BuildingNode `json:"buildings"`
}

// Selection identifies the deterministic first building/flat/room/view of
// a hierarchy. Empty fields mean the level (and everything below it) has
// no entries.
type Selection struct {
	BuildingID string `json:"building_id"`
	FlatID     string `json:"flat_id"`
	RoomID     string `json:"room_id"`
	ViewID     string `json:"view_id"`
}

// Build assembles the denormalized tree for projectID. Every owner
// reference in the snapshot must resolve; a dangling one yields an
// *InconsistencyError. A missing project yields ErrProjectNotFound.
func Build(projectID string, src Collections) (*ProjectHierarchy, error) {
	var project *models.Project
	for i := range src.Projects {
		if src.Projects[i].ID == projectID {
			project = &src.Projects[i]
			break
		}
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	projectIDs := make(map[string]struct{}, len(src.Projects))
	for _, p := range src.Projects {
		projectIDs[p.ID] = struct{}{}
	}
	buildingOwner := make(map[string]string, len(src.Buildings))
	for _, b := range src.Buildings {
		if _, ok := projectIDs[b.ProjectID]; !ok {
			return nil, &InconsistencyError{Entity: "building", ID: b.ID, OwnerID: b.ProjectID}
		}
		buildingOwner[b.ID] = b.ProjectID
	}
	flatOwner := make(map[string]string, len(src.Flats))
	for _, f := range src.Flats {
		if _, ok := buildingOwner[f.BuildingID]; !ok {
			return nil, &InconsistencyError{Entity: "flat", ID: f.ID, OwnerID: f.BuildingID}
		}
		flatOwner[f.ID] = f.BuildingID
	}
	roomOwner := make(map[string]string, len(src.Rooms))
	for _, r := range src.Rooms {
		if _, ok := flatOwner[r.FlatID]; !ok {
			return nil, &InconsistencyError{Entity: "room", ID: r.ID, OwnerID: r.FlatID}
		}
		roomOwner[r.ID] = r.FlatID
	}
	viewOwner := make(map[string]string, len(src.Views))
	for _, v := range src.Views {
		if _, ok := roomOwner[v.RoomID]; !ok {
			return nil, &InconsistencyError{Entity: "view", ID: v.ID, OwnerID: v.RoomID}
		}
		viewOwner[v.ID] = v.RoomID
	}
	for _, p := range src.Pins {
		if _, ok := viewOwner[p.FromViewID]; !ok {
			return nil, &InconsistencyError{Entity: "pin", ID: p.ID, OwnerID: p.FromViewID}
		}
		// Pin targets may point across rooms and buildings; unresolved
		// targets degrade to navigation no-ops instead of build errors.
	}

	tree := &ProjectHierarchy{Project: *project}
	for _, b := range src.Buildings {
		if b.ProjectID != projectID {
			continue
		}
		node := BuildingNode{Building: b, Flats: make([]FlatNode, 0)}
		for _, f := range src.Flats {
			if f.BuildingID != b.ID {
				continue
			}
			flatNode := FlatNode{Flat: f, Rooms: make([]RoomNode, 0)}
			for _, r := range src.Rooms {
				if r.FlatID != f.ID {
					continue
				}
				flatNode.Rooms = append(flatNode.Rooms, buildRoom(r, src))
			}
			node.Flats = append(node.Flats, flatNode)
		}
		tree.Buildings = append(tree.Buildings, node)
	}
	return tree, nil
}

func buildRoom(room models.Room, src Collections) RoomNode {
	node := RoomNode{Room: room, Views: make([]models.View, 0), Pins: make([]models.Pin, 0)}
	viewIDs := make(map[string]struct{})
	for _, v := range src.Views {
		if v.RoomID != room.ID {
			continue
		}
		node.Views = append(node.Views, v)
		viewIDs[v.ID] = struct{}{}
	}
	for _, p := range src.Pins {
		if _, ok := viewIDs[p.FromViewID]; ok {
			node.Pins = append(node.Pins, p)
		}
	}
	return node
}

// InitialSelection picks the first building, its first flat, that flat's
// first room and that room's first view in declared order. Any missing
// ancestor leaves it and all descendants empty.
func (h *ProjectHierarchy) InitialSelection() Selection {
	var sel Selection
	if len(h.Buildings) == 0 {
		return sel
	}
	building := h.Buildings[0]
	sel.BuildingID = building.ID
	if len(building.Flats) == 0 {
		return sel
	}
	flat := building.Flats[0]
	sel.FlatID = flat.ID
	if len(flat.Rooms) == 0 {
		return sel
	}
	room := flat.Rooms[0]
	sel.RoomID = room.ID
	if len(room.Views) > 0 {
		sel.ViewID = room.Views[0].ID
	}
	return sel
}

// Rooms returns every room of the tree in traversal order, independent of
// which building or flat owns it.
func (h *ProjectHierarchy) Rooms() []RoomNode {
	var rooms []RoomNode
	for _, b := range h.Buildings {
		for _, f := range b.Flats {
			rooms = append(rooms, f.Rooms...)
		}
	}
	return rooms
}

// FindRoom locates a room anywhere in the tree.
func (h *ProjectHierarchy) FindRoom(roomID string) (RoomNode, bool) {
	for _, b := range h.Buildings {
		for _, f := range b.Flats {
			for _, r := range f.Rooms {
				if r.ID == roomID {
					return r, true
				}
			}
		}
	}
	return RoomNode{}, false
}

// FlatOf returns the flat that owns roomID.
func (h *ProjectHierarchy) FlatOf(roomID string) (FlatNode, bool) {
	for _, b := range h.Buildings {
		for _, f := range b.Flats {
			for _, r := range f.Rooms {
				if r.ID == roomID {
					return f, true
				}
			}
		}
	}
	return FlatNode{}, false
}

// FindView locates a view and its owning room anywhere in the tree.
func (h *ProjectHierarchy) FindView(viewID string) (models.View, RoomNode, bool) {
	for _, b := range h.Buildings {
		for _, f := range b.Flats {
			for _, r := range f.Rooms {
				for _, v := range r.Views {
					if v.ID == viewID {
						return v, r, true
					}
				}
			}
		}
	}
	return models.View{}, RoomNode{}, false
}
