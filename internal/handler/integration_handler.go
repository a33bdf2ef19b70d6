package handler

import (
	"net/http"
	"strconv"
	"time"

	"gameo/backend/internal/database"
	"gameo/backend/internal/library"
	"gameo/backend/internal/models"
	"gameo/backend/internal/steam"

	"github.com/gin-gonic/gin"
)

// LinkAccountInput defines the structure for linking a third-party account.
type LinkAccountInput struct {
	ExternalID  string `json:"external_id" binding:"required"`
	DisplayName string `json:"display_name"`
}

// LinkedAccountResponse defines the structure for a linked account.
type LinkedAccountResponse struct {
	Provider     string     `json:"provider"`
	ExternalID   string     `json:"external_id"`
	DisplayName  string     `json:"display_name,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// SyncResponse reports the per-game outcomes of a library sync.
type SyncResponse struct {
	Added   int      `json:"added"`
	Merged  int      `json:"merged"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`

	// Warning surfaces partial provider failures (e.g. some Steam detail
	// fetches failed) without failing the sync.
	Warning string `json:"warning,omitempty"`
}

func newSyncResponse(report library.ImportReport) SyncResponse {
	return SyncResponse{
		Added:   report.Added,
		Merged:  report.Merged,
		Skipped: report.Skipped,
		Errors:  report.Errors,
	}
}

func newLinkedAccountResponse(acct models.LinkedAccount) LinkedAccountResponse {
	return LinkedAccountResponse{
		Provider:     acct.Provider,
		ExternalID:   acct.ExternalID,
		DisplayName:  acct.DisplayName,
		LastSyncedAt: acct.LastSyncedAt,
	}
}

// GetLinkedAccounts godoc
// @Summary      List linked third-party accounts
// @Tags         integrations
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} LinkedAccountResponse
// @Router       /integrations [get]
func GetLinkedAccounts(c *gin.Context) {
	var accounts []models.LinkedAccount
	if err := database.DB.Where("user_id = ?", currentUserID(c)).Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve linked accounts"})
		return
	}

	response := make([]LinkedAccountResponse, 0, len(accounts))
	for _, acct := range accounts {
		response = append(response, newLinkedAccountResponse(acct))
	}
	c.JSON(http.StatusOK, response)
}

// LinkAccount godoc
// @Summary      Link a Steam or PSN account
// @Tags         integrations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        provider path string           true "Provider" Enums(steam, psn)
// @Param        input    body LinkAccountInput true "Account info"
// @Success      201 {object} LinkedAccountResponse
// @Failure      400 {object} ErrorResponse
// @Router       /integrations/{provider} [post]
func LinkAccount(c *gin.Context) {
	provider := c.Param("provider")
	if provider != models.ProviderSteam && provider != models.ProviderPSN {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider"})
		return
	}

	var input LinkAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)

	var acct models.LinkedAccount
	err := database.DB.Where("user_id = ? AND provider = ?", userID, provider).First(&acct).Error
	if err == nil {
		acct.ExternalID = input.ExternalID
		acct.DisplayName = input.DisplayName
		if err := database.DB.Save(&acct).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update linked account"})
			return
		}
		c.JSON(http.StatusOK, newLinkedAccountResponse(acct))
		return
	}

	acct = models.LinkedAccount{
		UserID:      userID,
		Provider:    provider,
		ExternalID:  input.ExternalID,
		DisplayName: input.DisplayName,
	}
	if err := database.DB.Create(&acct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link account"})
		return
	}
	c.JSON(http.StatusCreated, newLinkedAccountResponse(acct))
}

// UnlinkAccount godoc
// @Summary      Unlink a third-party account
// @Tags         integrations
// @Produce      json
// @Security     BearerAuth
// @Param        provider path string true "Provider" Enums(steam, psn)
// @Success      200 {object} map[string]string "{"message": "Account unlinked"}"
// @Failure      404 {object} ErrorResponse "No linked account"
// @Router       /integrations/{provider} [delete]
func UnlinkAccount(c *gin.Context) {
	result := database.DB.
		Where("user_id = ? AND provider = ?", currentUserID(c), c.Param("provider")).
		Delete(&models.LinkedAccount{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlink account"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No linked account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account unlinked"})
}

// SyncLibrary godoc
// @Summary      Import the linked provider's library
// @Description  Fetches the provider's game list and reconciles each entry into the library. One game's failure never aborts the sync; it is counted and listed in the report.
// @Tags         integrations
// @Produce      json
// @Security     BearerAuth
// @Param        provider path string true "Provider" Enums(steam, psn)
// @Success      200 {object} SyncResponse
// @Failure      404 {object} ErrorResponse "No linked account"
// @Failure      502 {object} ErrorResponse "Provider unavailable"
// @Router       /integrations/{provider}/sync [post]
func SyncLibrary(c *gin.Context) {
	provider := c.Param("provider")

	var acct models.LinkedAccount
	err := database.DB.
		Where("user_id = ? AND provider = ?", currentUserID(c), provider).
		First(&acct).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No linked account"})
		return
	}

	switch provider {
	case models.ProviderSteam:
		syncSteam(c, acct)
	case models.ProviderPSN:
		syncPSN(c, acct)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown provider"})
	}
}

// syncSteam fetches owned games from Steam, enriches them with store
// details, and reconciles each into the library. Games whose detail fetch
// failed are still imported with what the library listing provides.
func syncSteam(c *gin.Context, acct models.LinkedAccount) {
	userID := currentUserID(c)
	ctx := c.Request.Context()

	owned, err := Steam.OwnedGames(ctx, acct.ExternalID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch Steam library"})
		return
	}

	appIDs := make([]int, 0, len(owned))
	for _, g := range owned {
		appIDs = append(appIDs, g.AppID)
	}
	details, detailErr := Steam.AppDetails(ctx, appIDs)

	candidates := steamCandidates(owned, details)
	report := Library.ImportAll(ctx, userID, candidates, library.AddOptions{})

	finishSync(&acct)

	response := newSyncResponse(report)
	if detailErr != nil {
		response.Warning = detailErr.Error()
	}
	c.JSON(http.StatusOK, response)
}

// syncPSN fetches the trophy-title list and reconciles each title into the
// library, enriching missing publisher/release-date metadata.
func syncPSN(c *gin.Context, acct models.LinkedAccount) {
	userID := currentUserID(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	ctx := c.Request.Context()

	titles, err := PSN.UserTitles(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch PSN library"})
		return
	}

	candidates := make([]library.Candidate, 0, len(titles))
	for _, title := range titles {
		candidates = append(candidates, library.Candidate{
			Name:     title.TrophyTitleName,
			PSNID:    title.NPCommunicationID,
			Platform: title.TrophyTitlePlatform,
		})
	}

	report := Library.ImportAll(ctx, userID, candidates, library.AddOptions{
		Enrich:   true,
		Country:  user.Country,
		Language: user.Language,
		AgeGroup: user.AgeGroup,
	})

	finishSync(&acct)

	c.JSON(http.StatusOK, newSyncResponse(report))
}

// steamCandidates turns a Steam library listing plus any store details that
// could be fetched into reconciliation candidates.
func steamCandidates(owned []steam.OwnedGame, details map[int]steam.AppDetail) []library.Candidate {
	candidates := make([]library.Candidate, 0, len(owned))
	for _, g := range owned {
		cand := library.Candidate{
			Name:       g.Name,
			SteamAppID: strconv.Itoa(g.AppID),
			Platform:   "PC",
			TimePlayed: g.PlaytimeForever,
		}
		if detail, ok := details[g.AppID]; ok {
			if len(detail.Developers) > 0 {
				cand.Studio = detail.Developers[0]
			}
			if !detail.ReleaseDate.ComingSoon {
				cand.ReleaseDate = detail.ReleaseDate.Date
			}
			if detail.Price != nil {
				cand.Price = float64(detail.Price.Final) / 100
			}
		}
		candidates = append(candidates, cand)
	}
	return candidates
}

func finishSync(acct *models.LinkedAccount) {
	now := time.Now()
	acct.LastSyncedAt = &now
	database.DB.Save(acct)
}
