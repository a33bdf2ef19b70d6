package handler

import (
	"net/http"
	"time"

	"gameo/backend/internal/database"
	"gameo/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BudgetEntryInput defines the structure for recording a purchase.
type BudgetEntryInput struct {
	Title    string    `json:"title" binding:"required"`
	Amount   float64   `json:"amount" binding:"required"`
	Category string    `json:"category"`
	SpentAt  time.Time `json:"spent_at"`
}

// BudgetEntryResponse defines the structure for a budget entry.
type BudgetEntryResponse struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	SpentAt  time.Time `json:"spent_at"`
}

// BudgetSummaryResponse aggregates spend per category.
type BudgetSummaryResponse struct {
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"by_category"`
}

func newBudgetEntryResponse(entry models.BudgetEntry) BudgetEntryResponse {
	return BudgetEntryResponse{
		ID:       entry.ID,
		Title:    entry.Title,
		Amount:   entry.Amount,
		Category: entry.Category,
		SpentAt:  entry.SpentAt,
	}
}

// CreateBudgetEntry godoc
// @Summary      Record a purchase
// @Tags         budget
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body BudgetEntryInput true "Purchase info"
// @Success      201 {object} BudgetEntryResponse
// @Failure      400 {object} ErrorResponse
// @Router       /budget [post]
func CreateBudgetEntry(c *gin.Context) {
	var input BudgetEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := models.BudgetEntry{
		UserID:   currentUserID(c),
		Title:    input.Title,
		Amount:   input.Amount,
		Category: input.Category,
		SpentAt:  input.SpentAt,
	}
	if entry.Category == "" {
		entry.Category = "games"
	}
	if entry.SpentAt.IsZero() {
		entry.SpentAt = time.Now()
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create budget entry"})
		return
	}

	c.JSON(http.StatusCreated, newBudgetEntryResponse(entry))
}

// GetBudgetEntries godoc
// @Summary      List purchases
// @Tags         budget
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(20)
// @Success      200 {object} PaginatedResponse[BudgetEntryResponse]
// @Router       /budget [get]
func GetBudgetEntries(c *gin.Context) {
	page, limit, offset := pageParams(c)

	query := database.DB.Model(&models.BudgetEntry{}).Where("user_id = ?", currentUserID(c))

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count budget entries"})
		return
	}

	var entries []models.BudgetEntry
	if err := query.Order("spent_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget entries"})
		return
	}

	response := make([]BudgetEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, newBudgetEntryResponse(entry))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// GetBudgetSummary godoc
// @Summary      Summarize spend per category
// @Tags         budget
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} BudgetSummaryResponse
// @Router       /budget/summary [get]
func GetBudgetSummary(c *gin.Context) {
	var rows []struct {
		Category string
		Total    float64
	}
	err := database.DB.Model(&models.BudgetEntry{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ?", currentUserID(c)).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize budget"})
		return
	}

	summary := BudgetSummaryResponse{ByCategory: make(map[string]float64, len(rows))}
	for _, row := range rows {
		summary.ByCategory[row.Category] = row.Total
		summary.Total += row.Total
	}
	c.JSON(http.StatusOK, summary)
}

// UpdateBudgetEntry godoc
// @Summary      Update a purchase
// @Tags         budget
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string           true "Entry ID"
// @Param        input body BudgetEntryInput true "New values"
// @Success      200 {object} BudgetEntryResponse
// @Failure      404 {object} ErrorResponse "Entry not found"
// @Router       /budget/{id} [put]
func UpdateBudgetEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return
	}

	var entry models.BudgetEntry
	if err := database.DB.First(&entry, "id = ? AND user_id = ?", id, currentUserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	var input BudgetEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry.Title = input.Title
	entry.Amount = input.Amount
	if input.Category != "" {
		entry.Category = input.Category
	}
	if !input.SpentAt.IsZero() {
		entry.SpentAt = input.SpentAt
	}

	if err := database.DB.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update budget entry"})
		return
	}

	c.JSON(http.StatusOK, newBudgetEntryResponse(entry))
}

// DeleteBudgetEntry godoc
// @Summary      Delete a purchase
// @Tags         budget
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Entry ID"
// @Success      200 {object} map[string]string "{"message": "Entry deleted"}"
// @Failure      404 {object} ErrorResponse "Entry not found"
// @Router       /budget/{id} [delete]
func DeleteBudgetEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return
	}

	result := database.DB.Where("id = ? AND user_id = ?", id, currentUserID(c)).Delete(&models.BudgetEntry{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete budget entry"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}
