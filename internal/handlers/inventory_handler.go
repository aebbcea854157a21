package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/database"
)

// InventoryHandler serves the browse/search endpoints for bookable listings
type InventoryHandler struct {
	inventory *database.InventoryRepository
	logger    *logrus.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory *database.InventoryRepository, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		logger:    logger,
	}
}

// ListHotels lists active hotels
// @Summary List hotels
// @Tags Inventory
// @Produce json
// @Param city query string false "Filter by city"
// @Success 200 {object} map[string]interface{}
// @Router /hotels [get]
func (h *InventoryHandler) ListHotels(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	hotels, err := h.inventory.ListHotels(c.Query("city"), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list hotels")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list hotels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotels": hotels, "count": len(hotels)})
}

// GetHotel returns one hotel listing
func (h *InventoryHandler) GetHotel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hotel id"})
		return
	}

	hotel, err := h.inventory.GetHotelByID(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get hotel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load hotel"})
		return
	}
	if hotel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "hotel not found"})
		return
	}

	c.JSON(http.StatusOK, hotel)
}

// ListFlights lists active flights
// @Summary List flights
// @Tags Inventory
// @Produce json
// @Param origin query string false "Origin airport/city"
// @Param destination query string false "Destination airport/city"
// @Success 200 {object} map[string]interface{}
// @Router /flights [get]
func (h *InventoryHandler) ListFlights(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	flights, err := h.inventory.ListFlights(c.Query("origin"), c.Query("destination"), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list flights")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list flights"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"flights": flights, "count": len(flights)})
}

// GetFlight returns one flight listing
func (h *InventoryHandler) GetFlight(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}

	flight, err := h.inventory.GetFlightByID(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get flight")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load flight"})
		return
	}
	if flight == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
		return
	}

	c.JSON(http.StatusOK, flight)
}
