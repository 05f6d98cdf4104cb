package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/samirrijal/ridemycity/internal/adapters/mapview"
	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/usecases"
)

// SaveResponse is the outcome of saving a drawing plus the workspace after it.
type SaveResponse struct {
	usecases.SaveResult
	Workspace usecases.WorkspaceView `json:"workspace"`
}

type workspaceHandler func(c *fiber.Ctx, ws *usecases.Workspace) error

// withWorkspace resolves :id to a live workspace before calling fn.
func withWorkspace(deps *Dependencies, fn workspaceHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ws, ok := deps.Workspaces.Get(c.Params("id"))
		if !ok {
			return errNotFound(c, "workspace not found")
		}
		return fn(c, ws)
	}
}

// CreateWorkspaceHandler opens a workspace showing every saved shape.
func CreateWorkspaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ws, err := deps.Workspaces.Create(c.UserContext(), mapview.NewRecorder(deps.Map))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/workspaces/" + ws.ID)
		return c.Status(fiber.StatusCreated).JSON(ws.View())
	}
}

// GetWorkspaceHandler returns the drawing and selection state.
func GetWorkspaceHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		return c.JSON(ws.View())
	})
}

// DeleteWorkspaceHandler closes a workspace.
func DeleteWorkspaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !deps.Workspaces.Remove(c.Params("id")) {
			return errNotFound(c, "workspace not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// WorkspaceMapHandler returns every layer the workspace currently renders.
func WorkspaceMapHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		rec, ok := ws.Renderer().(*mapview.Recorder)
		if !ok {
			return errNotFound(c, "workspace has no map view")
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(rec.Snapshot())
	})
}

// DrawHandler enters a drawing mode. Mode "none" leaves drawing.
func DrawHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		var req drawRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		return c.JSON(ws.Start(domain.DrawingMode(req.Mode)))
	})
}

// AddPointHandler commits a clicked point.
func AddPointHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		var req pointRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		return c.JSON(ws.AddPoint(req.coordinate()))
	})
}

// MoveCursorHandler moves the provisional segment end of a ride.
func MoveCursorHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		var req pointRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		return c.JSON(ws.MoveCursor(req.coordinate()))
	})
}

// ClearCursorHandler drops the provisional segment.
func ClearCursorHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		return c.JSON(ws.ClearCursor())
	})
}

// UndoHandler removes the last committed point.
func UndoHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		return c.JSON(ws.Undo())
	})
}

// CancelHandler abandons the drawing.
func CancelHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		return c.JSON(ws.Cancel())
	})
}

// SaveHandler finishes the drawing. It answers 201 when a shape was stored
// and 200 when the drawing had too few points and was only cleared.
func SaveHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		res, err := ws.Save(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		status := fiber.StatusOK
		if res.Ride != nil || res.Zone != nil {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(SaveResponse{SaveResult: res, Workspace: ws.View()})
	})
}

// copyParam returns a route parameter that outlives the request. Workspace
// state keeps ids across requests, and fiber reuses the underlying buffer.
func copyParam(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

// SelectRideHandler toggles the highlight of a saved ride.
func SelectRideHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		return c.JSON(ws.SelectRide(copyParam(c, "rideID")))
	})
}

// SelectZoneHandler toggles the highlight of a saved avoid zone.
func SelectZoneHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		return c.JSON(ws.SelectZone(copyParam(c, "zoneID")))
	})
}

// WorkspaceDeleteRideHandler deletes a ride shown in the workspace,
// clearing its highlight first.
func WorkspaceDeleteRideHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		if err := ws.DeleteRide(c.UserContext(), copyParam(c, "rideID")); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(ws.View())
	})
}

// WorkspaceDeleteZoneHandler deletes an avoid zone shown in the workspace,
// clearing its highlight first.
func WorkspaceDeleteZoneHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		if err := ws.DeleteZone(c.UserContext(), copyParam(c, "zoneID")); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(ws.View())
	})
}

// SearchBoundaryHandler looks up a place and shows its outline and mask.
// A lookup overtaken by a newer one answers 409.
func SearchBoundaryHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		var req boundaryRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		b, err := ws.SearchBoundary(c.UserContext(), req.Query)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(newBoundaryResponse(b))
	})
}

// ClearBoundaryHandler hides the boundary and its mask.
func ClearBoundaryHandler(deps *Dependencies) fiber.Handler {
	return withWorkspace(deps, func(c *fiber.Ctx, ws *usecases.Workspace) error {
		ws.ClearBoundary()
		return c.JSON(ws.View())
	})
}
