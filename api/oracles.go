package api

import (
	"net/http"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/oracles"
	"github.com/gin-gonic/gin"
)

type OracleHandler struct {
	service oracles.OracleUseCase
}

type registerOracleRequest struct {
	Address string `json:"address" binding:"required"`
	Fee     int64  `json:"fee"`
}

type requestStatusRequest struct {
	Airline   string `json:"airline" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Timestamp int64  `json:"timestamp" binding:"required"`
	Requester string `json:"requester"`
}

// status has no required binding: 0 (unknown) is a legitimate report.
type submitResponseRequest struct {
	Index     uint8  `json:"index"`
	Airline   string `json:"airline" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Timestamp int64  `json:"timestamp" binding:"required"`
	Status    uint8  `json:"status"`
	Oracle    string `json:"oracle" binding:"required"`
}

type requestQuery struct {
	flightQuery
	Index uint8 `form:"index"`
}

func NewOracleHandler(service oracles.OracleUseCase) *OracleHandler {
	return &OracleHandler{service: service}
}

// Register mounts oracle registration under oracles and the status request
// flow under requests.
func (h *OracleHandler) Register(oraclesGroup, requests *gin.RouterGroup) {
	oraclesGroup.POST("/", h.registerOracle)
	oraclesGroup.GET("/:address", h.getOracle)

	requests.POST("/", h.requestStatus)
	requests.GET("/", h.getRequest)
	requests.POST("/responses", h.submitResponse)
}

func (h *OracleHandler) registerOracle(c *gin.Context) {
	var req registerOracleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.service.RegisterOracle(c.Request.Context(), req.Address, req.Fee)
	if err != nil {
		writeError(c, err)
		return
	}
	code := http.StatusCreated
	if reg.AlreadyRegistered {
		code = http.StatusOK
	}
	c.JSON(code, reg)
}

func (h *OracleHandler) getOracle(c *gin.Context) {
	oracle, err := h.service.GetOracle(c.Request.Context(), c.Param("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, oracles.OracleRegistration{Address: oracle.Address, Indexes: oracle.Indexes, AlreadyRegistered: true})
}

func (h *OracleHandler) requestStatus(c *gin.Context) {
	var req requestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.RequestFlightStatus(c.Request.Context(), oracles.RequestStatusInput{
		Airline:   req.Airline,
		Code:      req.Code,
		Timestamp: req.Timestamp,
		Requester: req.Requester,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, view)
}

func (h *OracleHandler) getRequest(c *gin.Context) {
	var q requestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.service.GetRequest(c.Request.Context(), domain.RequestKey{Index: q.Index, Flight: q.key()})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *OracleHandler) submitResponse(c *gin.Context) {
	var req submitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.SubmitOracleResponse(c.Request.Context(), oracles.SubmitResponseInput{
		Index:     req.Index,
		Airline:   req.Airline,
		Code:      req.Code,
		Timestamp: req.Timestamp,
		Status:    req.Status,
		Oracle:    req.Oracle,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
