package gameapi

import (
	"context"
	"net/http"
	"time"

	identityapi "github.com/beka-birhanu/tilt-maze/api/identity"
	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/gin-gonic/gin"
)

const sessionInfoTimeout = 100 * time.Millisecond

// LobbyController puts players into worlds and tells them where to connect.
type LobbyController struct {
	gameSessionManager i.GameSessionManager
	lobby              i.Lobby
}

// NewLobbyController initializes a LobbyController.
func NewLobbyController(gsm i.GameSessionManager, lobby i.Lobby) *LobbyController {
	return &LobbyController{
		gameSessionManager: gsm,
		lobby:              lobby,
	}
}

// RegisterPublic registers public routes.
func (lc *LobbyController) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers protected routes.
func (lc *LobbyController) RegisterProtected(route *gin.RouterGroup) {
	lobby := route.Group("/lobby")
	{
		lobby.POST("/", lc.enqueue)
		lobby.DELETE("/", lc.leave)
		lobby.GET("/session", lc.sessionInfo)
	}
}

// enqueue queues the caller for the next world.
func (lc *LobbyController) enqueue(ctx *gin.Context) {
	id, ok := identityapi.UserID(ctx)
	if !ok {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if err := lc.lobby.Enqueue(ctx.Request.Context(), id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while queueing player"})
		return
	}

	ctx.Status(http.StatusAccepted)
}

// leave takes the caller out of the queue.
func (lc *LobbyController) leave(ctx *gin.Context) {
	id, ok := identityapi.UserID(ctx)
	if !ok {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if err := lc.lobby.Leave(ctx.Request.Context(), id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while leaving the lobby"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// sessionInfo returns the caller's world, 404 while they are still waiting.
func (lc *LobbyController) sessionInfo(ctx *gin.Context) {
	id, ok := identityapi.UserID(ctx)
	if !ok {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx.Request.Context(), sessionInfoTimeout)
	defer cancel()
	info, err := lc.gameSessionManager.SessionInfo(timeoutCtx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "No Session"})
		return
	}

	ctx.JSON(http.StatusOK, &SessionInfoResponse{
		SessionID: info.SessionID.String(),
		WSPath:    info.WSPath,
		UDPAddr:   info.UDPAddr,
	})
}
