package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/Domenick1991/expertbooking/internal/service/experts"
	"github.com/gin-gonic/gin"
)

type ExpertHandler struct {
	service experts.ExpertUseCase
	errs    *ErrorWriter
}

func NewExpertHandler(service experts.ExpertUseCase, errs *ErrorWriter) *ExpertHandler {
	return &ExpertHandler{service: service, errs: errs}
}

func (h *ExpertHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

// queryInt returns 0 for a missing or non-numeric value.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func (h *ExpertHandler) list(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), experts.ListQuery{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	data := page.Experts
	if data == nil {
		data = []domain.Expert{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(data),
		"total":      page.Total,
		"page":       page.Page,
		"totalPages": page.TotalPages(),
		"data":       data,
	})
}

func (h *ExpertHandler) get(c *gin.Context) {
	expert, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": expert})
}
