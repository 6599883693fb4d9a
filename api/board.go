package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"boardhub-api/domain"
)

func postBoard(svc BoardService, auth Authenticator, deduper Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			Title       string `json:"title"`
			WorkspaceID string `json:"workspaceId"`
			Visibility  string `json:"visibility"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		rollback, duplicate := claimIdempotencyKey(c, deduper, userID)
		if duplicate {
			return respondDuplicate(c)
		}
		b, err := svc.Create(c.Request().Context(), req.Title, req.WorkspaceID, domain.Visibility(req.Visibility), userID)
		if err != nil {
			rollback()
			return respondError(c, err)
		}
		return respond(c, http.StatusCreated, b)
	}
}

func getBoards(svc BoardService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := callerID(c, auth); err != nil {
			return respondUnauthenticated(c, err)
		}
		boards, err := svc.ListByWorkspace(c.Request().Context(), c.QueryParam("workspaceId"))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, boards)
	}
}

func getBoard(svc BoardService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := callerID(c, auth); err != nil {
			return respondUnauthenticated(c, err)
		}
		b, err := svc.Get(c.Request().Context(), c.Param("boardId"), c.QueryParam("workspaceId"))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, b)
	}
}

func renameBoard(svc BoardService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			WorkspaceID string `json:"workspaceId"`
			Title       string `json:"title"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		b, err := svc.Rename(c.Request().Context(), c.Param("boardId"), req.WorkspaceID, userID, req.Title)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, b)
	}
}

func setBoardVisibility(svc BoardService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			WorkspaceID string `json:"workspaceId"`
			Visibility  string `json:"visibility"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		b, err := svc.SetVisibility(c.Request().Context(), c.Param("boardId"), req.WorkspaceID, userID, domain.Visibility(req.Visibility))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, b)
	}
}

func deleteBoard(svc BoardService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		deleted, err := svc.Delete(c.Request().Context(), c.Param("boardId"), c.QueryParam("workspaceId"), userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, map[string]bool{"deleted": deleted})
	}
}
