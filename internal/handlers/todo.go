package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	dom "todoapi/internal/domain"
	"todoapi/internal/dto"
	"todoapi/internal/logger"
	"todoapi/internal/middleware"
	"todoapi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TodoHandler struct {
	svc *service.TodoService
	log logrus.FieldLogger
}

func NewTodoHandler(svc *service.TodoService, log logrus.FieldLogger) *TodoHandler {
	return &TodoHandler{svc: svc, log: log}
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTodoRequest  true  "Todo body"
// @Success      201   {object}  dto.TodoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	req, err := dto.ParseCreateTodo(readBody(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), req.Title, req.Completed)
	if err != nil {
		h.fail(c, err)
		return
	}
	logger.WithRequestID(h.log, middleware.GetRequestID(c)).WithField("todo_id", t.ID).Info("todo created")
	c.JSON(http.StatusCreated, dto.TodoToResponse(t))
}

// List godoc
// @Summary      List all todos, newest first
// @Tags         todos
// @Produce      json
// @Success      200  {array}   dto.TodoResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TodosToResponses(list))
}

// GetByID godoc
// @Summary      Get a todo by ID
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TodoToResponse(t))
}

// Update godoc
// @Summary      Update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      int  true  "Todo ID"
// @Param        body  body      dto.UpdateTodoRequest  true  "Partial update"
// @Success      200   {object}  dto.TodoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos/{id} [patch]
func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, err := dto.ParseUpdateTodo(readBody(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, req.Patch())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TodoToResponse(t))
}

// Delete godoc
// @Summary      Delete a todo
// @Tags         todos
// @Param        id   path  int  true  "Todo ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	logger.WithRequestID(h.log, middleware.GetRequestID(c)).WithField("todo_id", id).Info("todo deleted")
	c.Status(http.StatusNoContent)
}

// fail maps service errors to status codes. Unexpected errors are attached
// to the context for the logging middleware and hidden from the client.
func (h *TodoHandler) fail(c *gin.Context, err error) {
	if ve, ok := dom.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: ve.Msg})
		return
	}
	if errors.Is(err, dom.ErrNotFound) {
		notFound(c)
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}

// readBody never fails: an unreadable body is treated like an empty one.
func readBody(c *gin.Context) []byte {
	b, err := c.GetRawData()
	if err != nil {
		return nil
	}
	return b
}

// parseID answers 404 for ids that are not plain decimal digits, as an
// unmatched route would. Signs are rejected too.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		notFound(c)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		notFound(c)
		return 0, false
	}
	return id, true
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
}
