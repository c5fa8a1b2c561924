package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxi/internal/domain"
	"taxi/internal/service"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrderRequest is the HTTP request body for creating an order.
type CreateOrderRequest struct {
	PassengerID    string  `json:"passenger_id"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLon      float64 `json:"pickup_lon"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLon float64 `json:"destination_lon"`
	Tariff         string  `json:"tariff,omitempty"` // economy (default), comfort, business
}

// CreateOrderResponse is the HTTP response for creating an order.
type CreateOrderResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// AcceptOrderRequest is the HTTP request body for accepting an order.
type AcceptOrderRequest struct {
	DriverID string `json:"driver_id"`
}

// CompleteOrderRequest is the HTTP request body for completing an order.
type CompleteOrderRequest struct {
	Price float64 `json:"price,omitempty"` // 0 falls back to the default price
}

// Coordinates is a lat/lon pair in order responses.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PassengerResponse is the passenger block in an order view.
type PassengerResponse struct {
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Rating float64 `json:"rating"`
}

// DriverResponse is the driver block in an order view.
type DriverResponse struct {
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Rating float64 `json:"rating"`
	Car    string  `json:"car"`
	Color  string  `json:"color"`
	Plate  string  `json:"plate"`
}

// OrderResponse is the HTTP representation of an order view.
type OrderResponse struct {
	ID          string             `json:"id"`
	Pickup      Coordinates        `json:"pickup"`
	Destination Coordinates        `json:"destination"`
	Tariff      string             `json:"tariff"`
	Status      string             `json:"status"`
	Price       float64            `json:"price,omitempty"`
	CreatedAt   string             `json:"created_at"`
	AcceptedAt  string             `json:"accepted_at,omitempty"`
	StartedAt   string             `json:"started_at,omitempty"`
	CompletedAt string             `json:"completed_at,omitempty"`
	Passenger   *PassengerResponse `json:"passenger,omitempty"`
	Driver      *DriverResponse    `json:"driver,omitempty"`
}

// Create handles POST /v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orders.Create(c.Request.Context(), service.CreateOrderRequest{
		PassengerID:    req.PassengerID,
		PickupLat:      req.PickupLat,
		PickupLon:      req.PickupLon,
		DestinationLat: req.DestinationLat,
		DestinationLon: req.DestinationLon,
		Tariff:         domain.Tariff(req.Tariff),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateOrderResponse{
		ID:        order.ID,
		Status:    string(order.Status),
		CreatedAt: formatTime(order.CreatedAt),
	})
}

// List handles GET /v1/orders?user_id=&role=
func (h *OrderHandler) List(c *gin.Context) {
	viewerID := c.Query("user_id")
	role := c.Query("role")

	views, err := h.orders.List(c.Request.Context(), viewerID, domain.Role(role))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]OrderResponse, 0, len(views))
	for _, v := range views {
		response = append(response, toOrderResponse(v))
	}

	respondJSON(c, http.StatusOK, response)
}

// Get handles GET /v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(service.OrderView{Order: order}))
}

// Accept handles POST /v1/orders/:id/accept
func (h *OrderHandler) Accept(c *gin.Context) {
	var req AcceptOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if _, err := h.orders.Accept(c.Request.Context(), c.Param("id"), req.DriverID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SuccessResponse{Success: true})
}

// Arrive handles POST /v1/orders/:id/arrive
func (h *OrderHandler) Arrive(c *gin.Context) {
	if _, err := h.orders.Arrive(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SuccessResponse{Success: true})
}

// Start handles POST /v1/orders/:id/start
func (h *OrderHandler) Start(c *gin.Context) {
	if _, err := h.orders.Start(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SuccessResponse{Success: true})
}

// Complete handles POST /v1/orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	var req CompleteOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	if _, err := h.orders.Complete(c.Request.Context(), c.Param("id"), req.Price); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SuccessResponse{Success: true})
}

func toOrderResponse(v service.OrderView) OrderResponse {
	order := v.Order
	resp := OrderResponse{
		ID:          order.ID,
		Pickup:      Coordinates{Lat: order.PickupLat, Lon: order.PickupLon},
		Destination: Coordinates{Lat: order.DestinationLat, Lon: order.DestinationLon},
		Tariff:      string(order.Tariff),
		Status:      string(order.Status),
		Price:       order.Price,
		CreatedAt:   formatTime(order.CreatedAt),
	}

	if !order.AcceptedAt.IsZero() {
		resp.AcceptedAt = formatTime(order.AcceptedAt)
	}
	if !order.StartedAt.IsZero() {
		resp.StartedAt = formatTime(order.StartedAt)
	}
	if !order.CompletedAt.IsZero() {
		resp.CompletedAt = formatTime(order.CompletedAt)
	}

	if v.Passenger != nil {
		resp.Passenger = &PassengerResponse{
			Name:   v.Passenger.Name,
			Phone:  v.Passenger.Phone,
			Rating: v.Passenger.Rating,
		}
	}

	if v.Driver != nil {
		resp.Driver = &DriverResponse{
			Name:   v.Driver.Name,
			Phone:  v.Driver.Phone,
			Rating: v.Driver.Rating,
			Car:    v.Driver.CarBrand + " " + v.Driver.CarModel,
			Color:  v.Driver.CarColor,
			Plate:  v.Driver.LicensePlate,
		}
	}

	return resp
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
