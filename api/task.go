package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"boardhub-api/domain"
)

func postTask(svc TaskService, auth Authenticator, deduper Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			Members     []string `json:"members"`
			Labels      []string `json:"labels"`
			BoardID     string   `json:"boardId"`
			BoardListID string   `json:"boardListId"`
			WorkspaceID string   `json:"workspaceId"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		rollback, duplicate := claimIdempotencyKey(c, deduper, userID)
		if duplicate {
			return respondDuplicate(c)
		}
		t, err := svc.Create(c.Request().Context(), domain.CreateTaskInput{
			Title:       req.Title,
			Description: req.Description,
			Members:     req.Members,
			Labels:      req.Labels,
			BoardID:     req.BoardID,
			BoardListID: req.BoardListID,
			WorkspaceID: req.WorkspaceID,
			CreatedBy:   userID,
		})
		if err != nil {
			rollback()
			return respondError(c, err)
		}
		return respond(c, http.StatusCreated, t)
	}
}

func getTasks(svc TaskService, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger)
		if spanCtx != nil {
			req := c.Request().WithContext(spanCtx)
			c.SetRequest(req)
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		_, authErr := callerID(c, auth)
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = respondUnauthenticated(c, authErr)
			return err
		}

		workspaceID := c.QueryParam("workspaceId")
		boardID := c.QueryParam("boardId")
		metrics.SetScope(workspaceID, boardID)

		fetchStart := time.Now()
		tasks, fetchErr := svc.ListByBoard(ctx, workspaceID, boardID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			if domain.KindOf(fetchErr) == domain.KindInvalidInput {
				metrics.SetErrorStage("invalid_scope")
			} else {
				metrics.SetErrorStage("storage")
			}
			err = respondError(c, fetchErr)
			return err
		}
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = respond(c, http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getTask(svc TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := callerID(c, auth); err != nil {
			return respondUnauthenticated(c, err)
		}
		t, err := svc.Get(c.Request().Context(), c.Param("taskId"))
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, t)
	}
}

func deleteTask(svc TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		deleted, err := svc.Delete(c.Request().Context(), c.Param("taskId"), c.QueryParam("workspaceId"), userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, map[string]bool{"deleted": deleted})
	}
}

// taskScopeRequest carries the identifier tuple every task mutation is
// conditioned on.
type taskScopeRequest struct {
	WorkspaceID string `json:"workspaceId"`
	BoardID     string `json:"boardId"`
	BoardListID string `json:"boardListId"`
}

func (r taskScopeRequest) scope(taskID string) domain.TaskScope {
	return domain.TaskScope{
		TaskID:      taskID,
		WorkspaceID: r.WorkspaceID,
		BoardID:     r.BoardID,
		BoardListID: r.BoardListID,
	}
}

func renameTask(svc TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			taskScopeRequest
			Title string `json:"title"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		t, err := svc.Rename(c.Request().Context(), req.scope(c.Param("taskId")), req.Title, userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, t)
	}
}

func updateTaskDescription(svc TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			taskScopeRequest
			Description string `json:"description"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		t, err := svc.UpdateDescription(c.Request().Context(), req.scope(c.Param("taskId")), req.Description, userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, t)
	}
}

func addTaskMembers(svc TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			taskScopeRequest
			Members []string `json:"members"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		t, err := svc.AddMembers(c.Request().Context(), req.scope(c.Param("taskId")), req.Members, userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, t)
	}
}

func addTaskLabels(svc TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			taskScopeRequest
			Labels []string `json:"labels"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		t, err := svc.AddLabels(c.Request().Context(), req.scope(c.Param("taskId")), req.Labels, userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, t)
	}
}

func moveTask(svc TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return respondUnauthenticated(c, err)
		}
		var req struct {
			WorkspaceID string `json:"workspaceId"`
			BoardID     string `json:"boardId"`
			NewListID   string `json:"newListId"`
		}
		if err := decodeBody(c, &req); err != nil {
			return respondBadBody(c)
		}
		t, err := svc.Move(c.Request().Context(), c.Param("taskId"), req.WorkspaceID, req.BoardID, req.NewListID, userID)
		if err != nil {
			return respondError(c, err)
		}
		return respond(c, http.StatusOK, t)
	}
}
