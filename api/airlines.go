package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/airlines"
	"github.com/gin-gonic/gin"
)

type AirlineHandler struct {
	service airlines.AirlineUseCase
}

type registerAirlineRequest struct {
	Name      string `json:"name"`
	Address   string `json:"address" binding:"required"`
	Requester string `json:"requester" binding:"required"`
}

type fundAirlineRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

type airlineResponse struct {
	Address   string `json:"address"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Funds     int64  `json:"funds"`
	Votes     int    `json:"votes"`
	UpdatedAt string `json:"updated_at"`
}

func NewAirlineHandler(service airlines.AirlineUseCase) *AirlineHandler {
	return &AirlineHandler{service: service}
}

func (h *AirlineHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.register)
	router.GET("/:address", h.get)
	router.POST("/:address/funding", h.fund)
}

func (h *AirlineHandler) register(c *gin.Context) {
	var req registerAirlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.RegisterAirline(c.Request.Context(), airlines.RegisterAirlineInput{
		Name:      req.Name,
		Address:   req.Address,
		Requester: req.Requester,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	code := http.StatusAccepted
	if result.Registered {
		code = http.StatusCreated
	}
	c.JSON(code, result)
}

func (h *AirlineHandler) fund(c *gin.Context) {
	var req fundAirlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	airline, err := h.service.SubmitFunding(c.Request.Context(), c.Param("address"), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAirlineResponse(airline))
}

func (h *AirlineHandler) get(c *gin.Context) {
	airline, err := h.service.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAirlineResponse(airline))
}

func (h *AirlineHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]airlineResponse, 0, len(list))
	for i := range list {
		out = append(out, toAirlineResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func toAirlineResponse(a *domain.Airline) airlineResponse {
	return airlineResponse{
		Address:   a.Address,
		Name:      a.Name,
		Status:    string(a.Status),
		Funds:     a.Funds,
		Votes:     len(a.Votes),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}
