package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func postBoardList(svc BoardListService, auth Authenticator, deduper Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			Title       string `json:"title"`
			BoardID     string `json:"boardId"`
			WorkspaceID string `json:"workspaceId"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		rollback, duplicate := claimIdempotencyKey(c, deduper, userID)
		if duplicate {
			return respondDuplicate(c)
		}
		l, err := svc.Create(c.Request().Context(), req.Title, req.BoardID, req.WorkspaceID, userID)
		if err != nil {
			rollback()
			return respondError(c, err)
		}
		return respond(c, http.StatusCreated, l)
	}
}

func getBoardLists(svc BoardListService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := callerID(c, auth); err != nil {
			return respondUnauthenticated(c, err)
		}
		lists, err := svc.ListByBoard(c.Request().Context(), c.QueryParam("workspaceId"), c.QueryParam("boardId"))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, lists)
	}
}

func renameBoardList(svc BoardListService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			WorkspaceID string `json:"workspaceId"`
			BoardID     string `json:"boardId"`
			Title       string `json:"title"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		l, err := svc.Rename(c.Request().Context(), c.Param("boardListId"), req.WorkspaceID, req.BoardID, req.Title, userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, l)
	}
}

func deleteBoardList(svc BoardListService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		deleted, err := svc.Delete(c.Request().Context(), c.Param("boardListId"), c.QueryParam("workspaceId"), c.QueryParam("boardId"), userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, map[string]bool{"deleted": deleted})
	}
}
