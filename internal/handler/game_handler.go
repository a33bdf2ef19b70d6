package handler

import (
	"errors"
	"net/http"
	"time"

	"gameo/backend/internal/database"
	"gameo/backend/internal/library"
	"gameo/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GameInput defines the structure for adding a game to the library.
type GameInput struct {
	Name        string  `json:"name" binding:"required"`
	SteamAppID  string  `json:"steam_app_id"`
	PSNID       string  `json:"psn_id"`
	Platform    string  `json:"platform"`
	Studio      string  `json:"studio"`
	ReleaseDate string  `json:"release_date"`
	Price       float64 `json:"price"`

	// Enrich requests a best-effort publisher/release-date lookup for the
	// new record.
	Enrich bool `json:"enrich"`
}

// GameUpdateInput defines the user-editable fields of a library entry.
// Identity and platform data is only changed by sync merges.
type GameUpdateInput struct {
	Studio      *string    `json:"studio"`
	ReleaseDate *string    `json:"release_date"`
	DateStarted *time.Time `json:"date_started"`
	DateBought  *time.Time `json:"date_bought"`
	Price       *float64   `json:"price"`
	TimePlayed  *int       `json:"time_played"`
	LastPlayed  *time.Time `json:"last_played"`
}

// GameResponse defines the structure for a library entry.
type GameResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	SteamAppID  *string    `json:"steam_app_id,omitempty"`
	PSNID       *string    `json:"psn_id,omitempty"`
	Platforms   string     `json:"platforms"`
	Studio      string     `json:"studio"`
	ReleaseDate string     `json:"release_date"`
	DateStarted *time.Time `json:"date_started,omitempty"`
	DateBought  *time.Time `json:"date_bought,omitempty"`
	Price       float64    `json:"price"`
	TimePlayed  int        `json:"time_played"`
	LastPlayed  *time.Time `json:"last_played,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newGameResponse(game models.Game) GameResponse {
	return GameResponse{
		ID:          game.ID,
		Name:        game.Name,
		SteamAppID:  game.SteamAppID,
		PSNID:       game.PSNID,
		Platforms:   game.Platforms,
		Studio:      game.Studio,
		ReleaseDate: game.ReleaseDate,
		DateStarted: game.DateStarted,
		DateBought:  game.DateBought,
		Price:       game.Price,
		TimePlayed:  game.TimePlayed,
		LastPlayed:  game.LastPlayed,
		CreatedAt:   game.CreatedAt,
		UpdatedAt:   game.UpdatedAt,
	}
}

// AddGameResponse pairs the stored record with the reconciliation outcome.
type AddGameResponse struct {
	Game    GameResponse `json:"game"`
	Outcome string       `json:"outcome" example:"created"`
}

// GetGames godoc
// @Summary      List the user's game library
// @Description  Retrieves a paginated list of the user's games, optionally filtered by name.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for game name"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(20)
// @Success      200 {object} PaginatedResponse[GameResponse]
// @Router       /games [get]
func GetGames(c *gin.Context) {
	page, limit, offset := pageParams(c)

	query := database.DB.Model(&models.Game{}).Where("owner_id = ?", currentUserID(c))
	if q := c.Query("q"); q != "" {
		query = query.Where("name ILIKE ?", "%"+q+"%")
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count games"})
		return
	}

	var games []models.Game
	if err := query.Order("name").Offset(offset).Limit(limit).Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	response := make([]GameResponse, 0, len(games))
	for _, game := range games {
		response = append(response, newGameResponse(game))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// GetGameByID godoc
// @Summary      Get a single game by ID
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      200 {object} GameResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGameByID(c *gin.Context) {
	game, ok := ownedGame(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newGameResponse(*game))
}

// AddGame godoc
// @Summary      Add a game to the library
// @Description  Reconciles the game against the library: creates a record, merges into an existing one, or reports a duplicate.
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  AddGameResponse
// @Success      200  {object}  AddGameResponse "Merged or duplicate"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Ambiguous name match"
// @Router       /games [post]
func AddGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	cand := library.Candidate{
		Name:        input.Name,
		SteamAppID:  input.SteamAppID,
		PSNID:       input.PSNID,
		Platform:    input.Platform,
		Studio:      input.Studio,
		ReleaseDate: input.ReleaseDate,
		Price:       input.Price,
	}
	opts := library.AddOptions{
		Enrich:   input.Enrich,
		Country:  user.Country,
		Language: user.Language,
		AgeGroup: user.AgeGroup,
	}

	game, outcome, err := Library.AddOrMerge(c.Request.Context(), userID, cand, opts)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Game name is required"})
		case errors.Is(err, library.ErrAmbiguousMatch):
			c.JSON(http.StatusConflict, gin.H{"error": "Game name matches multiple library entries"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add game"})
		}
		return
	}

	status := http.StatusOK
	if outcome == library.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, AddGameResponse{Game: newGameResponse(*game), Outcome: string(outcome)})
}

// UpdateGame godoc
// @Summary      Update a game's user-editable fields
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Game ID"
// @Param        input body      GameUpdateInput true  "Fields to update"
// @Success      200   {object}  GameResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /games/{id} [put]
func UpdateGame(c *gin.Context) {
	game, ok := ownedGame(c)
	if !ok {
		return
	}

	var input GameUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Studio != nil {
		game.Studio = *input.Studio
	}
	if input.ReleaseDate != nil {
		game.ReleaseDate = *input.ReleaseDate
	}
	if input.DateStarted != nil {
		game.DateStarted = input.DateStarted
	}
	if input.DateBought != nil {
		game.DateBought = input.DateBought
	}
	if input.Price != nil {
		game.Price = *input.Price
	}
	if input.TimePlayed != nil {
		game.TimePlayed = *input.TimePlayed
	}
	if input.LastPlayed != nil {
		game.LastPlayed = input.LastPlayed
	}

	if err := database.DB.Save(game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update game"})
		return
	}

	c.JSON(http.StatusOK, newGameResponse(*game))
}

// DeleteGame godoc
// @Summary      Delete a game from the library
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game deleted"}"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [delete]
func DeleteGame(c *gin.Context) {
	game, ok := ownedGame(c)
	if !ok {
		return
	}

	if err := database.DB.Delete(game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete game"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

// EnrichGame godoc
// @Summary      Look up game metadata
// @Description  Best-effort publisher/release-date lookup; fields are null when the provider has nothing.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        name query string true "Game name"
// @Success      200 {object} enrichment.Result
// @Failure      400 {object} ErrorResponse
// @Router       /games/enrich [get]
func EnrichGame(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	result := Enricher.Enrich(c.Request.Context(), name, user.Country, user.Language, user.AgeGroup)
	c.JSON(http.StatusOK, result)
}

// ownedGame loads the :id game and checks it belongs to the caller. On
// failure it writes the error response and returns ok=false.
func ownedGame(c *gin.Context) (*models.Game, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return nil, false
	}

	var game models.Game
	if err := database.DB.First(&game, "id = ? AND owner_id = ?", id, currentUserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return nil, false
	}
	return &game, true
}
