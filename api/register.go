package api

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const requestBodyMaxSize = 64 * 1024 // 64 KiB

const idempotencyKeyHeader = "Idempotency-Key"

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, services Services, auth Authenticator, deduper Deduper, logger *log.Logger) {
	e.POST("/api/workspaces", postWorkspace(services.Workspaces, auth, deduper))
	e.GET("/api/workspaces", getWorkspaces(services.Workspaces, auth))
	e.GET("/api/workspaces/:workspaceId", getWorkspace(services.Workspaces, auth))
	e.PATCH("/api/workspaces/:workspaceId/rename", renameWorkspace(services.Workspaces, auth))
	e.POST("/api/workspaces/:workspaceId/members", addWorkspaceMembers(services.Workspaces, auth))
	e.DELETE("/api/workspaces/:workspaceId/members/:member", removeWorkspaceMember(services.Workspaces, auth))
	e.PATCH("/api/workspaces/:workspaceId/owner", transferWorkspaceOwner(services.Workspaces, auth))
	e.DELETE("/api/workspaces/:workspaceId", deleteWorkspace(services.Workspaces, auth))

	e.POST("/api/boards", postBoard(services.Boards, auth, deduper))
	e.GET("/api/boards", getBoards(services.Boards, auth))
	e.GET("/api/boards/:boardId", getBoard(services.Boards, auth))
	e.PATCH("/api/boards/:boardId/rename", renameBoard(services.Boards, auth))
	e.PATCH("/api/boards/:boardId/visibility", setBoardVisibility(services.Boards, auth))
	e.DELETE("/api/boards/:boardId", deleteBoard(services.Boards, auth))

	e.POST("/api/lists", postBoardList(services.BoardLists, auth, deduper))
	e.GET("/api/lists", getBoardLists(services.BoardLists, auth))
	e.PATCH("/api/lists/:boardListId/rename", renameBoardList(services.BoardLists, auth))
	e.DELETE("/api/lists/:boardListId", deleteBoardList(services.BoardLists, auth))

	e.POST("/api/tasks", postTask(services.Tasks, auth, deduper))
	e.GET("/api/tasks", getTasks(services.Tasks, auth, logger))
	e.GET("/api/tasks/:taskId", getTask(services.Tasks, auth))
	e.DELETE("/api/tasks/:taskId", deleteTask(services.Tasks, auth))
	e.PATCH("/api/tasks/:taskId/rename", renameTask(services.Tasks, auth))
	e.PATCH("/api/tasks/:taskId/description", updateTaskDescription(services.Tasks, auth))
	e.PATCH("/api/tasks/:taskId/members", addTaskMembers(services.Tasks, auth))
	e.PATCH("/api/tasks/:taskId/labels", addTaskLabels(services.Tasks, auth))
	e.PATCH("/api/tasks/:taskId/move", moveTask(services.Tasks, auth))

	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func callerID(c echo.Context, auth Authenticator) (string, error) {
	return auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
}

func respondUnauthenticated(c echo.Context, err error) error {
	return c.JSON(http.StatusUnauthorized, envelope{
		Success: false,
		Data:    errorData{Message: err.Error(), Kind: "unauthorized"},
	})
}

func respondBadBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Data:    errorData{Message: "invalid body", Kind: "invalid_input"},
	})
}

func respondDuplicate(c echo.Context) error {
	return c.JSON(http.StatusConflict, envelope{
		Success: false,
		Data:    errorData{Message: "duplicate request", Kind: "conflict"},
	})
}

var noopRollback = func() {}

// claimIdempotencyKey reserves the request's Idempotency-Key for the caller.
// duplicate means the key was already seen. The rollback releases the key so
// the client may retry after a downstream failure. Deduper errors degrade to
// processing the request without protection.
func claimIdempotencyKey(c echo.Context, deduper Deduper, userID string) (rollback func(), duplicate bool) {
	key := c.Request().Header.Get(idempotencyKeyHeader)
	if key == "" || deduper == nil {
		return noopRollback, false
	}
	ctx := c.Request().Context()
	added, err := deduper.Add(ctx, userID, key)
	if err != nil {
		c.Logger().Errorf("idempotency claim failed: %v", err)
		return noopRollback, false
	}
	if !added {
		return noopRollback, true
	}
	return func() {
		if err := deduper.Remove(ctx, userID, key); err != nil {
			c.Logger().Errorf("idempotency rollback failed: %v", err)
		}
	}, false
}
