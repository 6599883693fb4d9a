package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func postWorkspace(svc WorkspaceService, auth Authenticator, deduper Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			Title string `json:"title"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		rollback, duplicate := claimIdempotencyKey(c, deduper, userID)
		if duplicate {
			return respondDuplicate(c)
		}
		ws, err := svc.Create(c.Request().Context(), req.Title, userID)
		if err != nil {
			rollback()
			return respondError(c, err)
		}
		return respond(c, http.StatusCreated, ws)
	}
}

func getWorkspaces(svc WorkspaceService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := callerID(c, auth); err != nil {
			return respondUnauthenticated(c, err)
		}
		workspaces, err := svc.List(c.Request().Context())
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, workspaces)
	}
}

func getWorkspace(svc WorkspaceService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := callerID(c, auth); err != nil {
			return respondUnauthenticated(c, err)
		}
		ws, err := svc.Get(c.Request().Context(), c.Param("workspaceId"))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, ws)
	}
}

func renameWorkspace(svc WorkspaceService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			Title string `json:"title"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		ws, err := svc.Rename(c.Request().Context(), c.Param("workspaceId"), req.Title, userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, ws)
	}
}

func addWorkspaceMembers(svc WorkspaceService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			Members []string `json:"members"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		ws, err := svc.AddMembers(c.Request().Context(), c.Param("workspaceId"), req.Members, userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, ws)
	}
}

func removeWorkspaceMember(svc WorkspaceService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		err = svc.RemoveMember(c.Request().Context(), c.Param("workspaceId"), c.Param("member"), userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, nil)
	}
}

func transferWorkspaceOwner(svc WorkspaceService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			NewOwner string `json:"newOwner"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		err = svc.TransferOwner(c.Request().Context(), c.Param("workspaceId"), userID, req.NewOwner)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, nil)
	}
}

func deleteWorkspace(svc WorkspaceService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		deleted, err := svc.Delete(c.Request().Context(), c.Param("workspaceId"), userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, map[string]bool{"deleted": deleted})
	}
}
