package handlers

import (
	"errors"
	"net/http"
	"strconv"

	dom "Todo/internal/domain"
	"Todo/internal/dto"
	"Todo/internal/middleware"
	"Todo/internal/service"
	"Todo/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

const msgTodoNotFound = "Todo not found"

type TodoHandler struct {
	svc *service.TodoService
	log *log.Logger
}

func NewTodoHandler(svc *service.TodoService, logger *log.Logger) *TodoHandler {
	return &TodoHandler{svc: svc, log: logger}
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTodoRequest  true  "Todo body"
// @Success      201   {object}  dto.TodoResponse
// @Failure      400   {object}  map[string][]string
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.internalError(c, err)
		return
	}
	req, err := dto.DecodeCreateTodo(body)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	t, err := h.svc.Create(c.Request.Context(), req.Todo())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTodoResponse(t))
}

// List godoc
// @Summary      List todos
// @Description  completed=true keeps only completed todos. window=N keeps only todos whose deadline is within N days of now.
// @Tags         todos
// @Produce      json
// @Param        completed  query     bool  false  "Only completed todos"
// @Param        window     query     int   false  "Deadline window in days"
// @Success      200        {array}   dto.TodoResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), parseListFilter(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponses(list))
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
		if errors.Is(err, service.ErrNotFound) {
			notFound(c)
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponse(t))
}

// Update godoc
// @Summary      Update a todo
// @Description  Only the supplied fields change. deadline_at: null clears the deadline.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Todo ID"
// @Param        body  body      dto.UpdateTodoRequest  true  "Partial update"
// @Success      200   {object}  dto.TodoResponse
// @Failure      400   {object}  map[string][]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		h.internalError(c, err)
		return
	}
	req, err := dto.DecodeUpdateTodo(body)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	t, err := h.svc.Update(c.Request.Context(), id, req.Patch())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			notFound(c)
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponse(t))
}

// Delete godoc
// @Summary      Delete a todo
// @Description  Deleting a missing todo succeeds with an empty object.
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, found, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, dto.NewTodoResponse(t))
}

// parseID accepts unsigned base-10 ids only. Anything else cannot name a
// todo and is answered like a missing one.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 63)
	if err != nil {
		notFound(c)
		return 0, false
	}
	return int64(id), true
}

// parseListFilter ignores malformed filters rather than failing the list.
func parseListFilter(c *gin.Context) dom.ListFilter {
	var f dom.ListFilter
	if raw, ok := c.GetQuery("completed"); ok {
		f.Completed, _ = strconv.ParseBool(raw)
	}
	if raw, ok := c.GetQuery("window"); ok {
		if days, valid := utils.ParseNonNegativeInt(raw); valid {
			f.Window = &days
		}
	}
	return f
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: msgTodoNotFound})
}

func (h *TodoHandler) badRequest(c *gin.Context, err error) {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, verr.Fields)
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}

func (h *TodoHandler) internalError(c *gin.Context, err error) {
	h.log.Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", middleware.RequestIDFromContext(c),
		"err", err,
	)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}
