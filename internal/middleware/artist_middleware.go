package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ropeth/songchart/internal/repository"
)

// ArtistMiddleware runs after JWTMiddleware and only lets artists through.
// It resolves the caller's artist profile and stores its id in the context so
// handlers don't repeat the lookup.
func ArtistMiddleware(artistRepo repository.ArtistRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "User not authenticated",
			})
			c.Abort()
			return
		}

		artist, err := artistRepo.FindArtistByUserID(userID)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "Artist account required",
			})
			c.Abort()
			return
		}

		c.Set("artist_id", artist.ID)
		c.Next()
	}
}
