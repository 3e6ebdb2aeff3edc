package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-notes/internal/domain"
	"todo-notes/internal/notes"
	"todo-notes/internal/service"
)

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteResponse struct {
	domain.Note
	TitleSegments   []notes.Segment `json:"titleSegments,omitempty"`
	ContentSegments []notes.Segment `json:"contentSegments,omitempty"`
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark"`
}

func (h *Handler) listNotes(c *gin.Context) {
	query := c.Query("q")
	filter, ok := domain.ParseNoteFilter(c.Query("filter"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filter must be all, completed or uncompleted"})
		return
	}

	found := h.notes.Query(c.Request.Context(), query, filter)
	out := make([]noteResponse, 0, len(found))
	for _, n := range found {
		resp := noteResponse{Note: n}
		if query != "" {
			resp.TitleSegments = notes.Highlight(n.Title, query)
			resp.ContentSegments = notes.Highlight(n.Content, query)
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"notes": out, "count": len(out)})
}

func (h *Handler) createNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	note, err := h.notes.Add(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		h.writeNoteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *Handler) getNote(c *gin.Context) {
	id, ok := noteID(c)
	if !ok {
		return
	}
	note, err := h.notes.Get(c.Request.Context(), id)
	if err != nil {
		h.writeNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *Handler) updateNote(c *gin.Context) {
	id, ok := noteID(c)
	if !ok {
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	note, err := h.notes.Edit(c.Request.Context(), id, req.Title, req.Content)
	if err != nil {
		h.writeNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *Handler) toggleNote(c *gin.Context) {
	id, ok := noteID(c)
	if !ok {
		return
	}
	note, err := h.notes.Toggle(c.Request.Context(), id)
	if err != nil {
		h.writeNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *Handler) deleteNote(c *gin.Context) {
	id, ok := noteID(c)
	if !ok {
		return
	}
	if err := h.notes.Delete(c.Request.Context(), id); err != nil {
		h.writeNoteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.themes.Theme(c.Request.Context())})
}

func (h *Handler) setTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.themes.SetTheme(c.Request.Context(), domain.Theme(req.Theme)); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

func (h *Handler) toggleTheme(c *gin.Context) {
	theme, err := h.themes.Toggle(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

func noteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeNoteError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logger.WithError(err).Error("note operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
