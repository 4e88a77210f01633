package handler

import (
	"errors"
	"net/http"
	"time"

	"campuslink/backend/internal/apperrors"
	"campuslink/backend/internal/metrics"
	"campuslink/backend/internal/models"
	"campuslink/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ConnectionHandler serves the social graph: requests, responses, blocks,
// listings, mutual connections and suggestions.
type ConnectionHandler struct {
	connections *service.ConnectionService
	users       *service.UserService
}

func NewConnectionHandler(connections *service.ConnectionService, users *service.UserService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, users: users}
}

// region --- DTOs ---

// ConnectionResponse is the wire shape of a connection row.
type ConnectionResponse struct {
	ID          uint                    `json:"id"`
	RequesterID uint                    `json:"requester_id"`
	AddresseeID uint                    `json:"addressee_id"`
	Status      models.ConnectionStatus `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
	RespondedAt *time.Time              `json:"responded_at,omitempty"`
	Requester   *ProfilePublic          `json:"requester,omitempty"`
	Addressee   *ProfilePublic          `json:"addressee,omitempty"`
}

// ConnectionStatusResponse reports the relationship with a specific user.
type ConnectionStatusResponse struct {
	UserID         uint                     `json:"user_id"`
	Status         *models.ConnectionStatus `json:"status"`
	ConnectionID   *uint                    `json:"connection_id,omitempty"`
	ConnectedSince *time.Time               `json:"connected_since,omitempty"`
}

// SuggestionResponse is one ranked connection candidate.
type SuggestionResponse struct {
	User                   ProfilePublic `json:"user"`
	MutualConnectionsCount int           `json:"mutual_connections_count"`
	CommonUniversity       bool          `json:"common_university"`
	CommonMajor            bool          `json:"common_major"`
	CommonInterests        []string      `json:"common_interests"`
	SuggestionScore        float64       `json:"suggestion_score"`
}

func buildConnectionResponse(conn models.Connection) ConnectionResponse {
	resp := ConnectionResponse{
		ID:          conn.ID,
		RequesterID: conn.RequesterID,
		AddresseeID: conn.AddresseeID,
		Status:      conn.Status,
		CreatedAt:   conn.CreatedAt,
		RespondedAt: conn.RespondedAt,
	}
	if conn.Requester.ID != 0 {
		p := buildProfilePublic(conn.Requester)
		resp.Requester = &p
	}
	if conn.Addressee.ID != 0 {
		p := buildProfilePublic(conn.Addressee)
		resp.Addressee = &p
	}
	return resp
}

func (h *ConnectionHandler) listResponse(c *gin.Context, conns []models.Connection, total int64, limit, offset int) {
	data := make([]ConnectionResponse, len(conns))
	for i, conn := range conns {
		data[i] = buildConnectionResponse(conn)
	}
	c.JSON(http.StatusOK, ListResponse[ConnectionResponse]{
		Data: data, Total: total, Limit: limit, Offset: offset,
	})
}

// endregion

// Request godoc
// @Summary      Send connection request
// @Description  Sends a connection request to another user.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Addressee User ID"
// @Success      201  {object}  ConnectionResponse
// @Failure      400  {object}  ErrorResponse "Self request"
// @Failure      403  {object}  ErrorResponse "Pair is blocked"
// @Failure      404  {object}  ErrorResponse "Addressee not found or inactive"
// @Failure      409  {object}  ErrorResponse "Already pending, accepted or rejected"
// @Router       /connections/request/{id} [post]
func (h *ConnectionHandler) Request(c *gin.Context) {
	addresseeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	conn, err := h.connections.Request(c.Request.Context(), currentUserID(c), addresseeID)
	metrics.RecordGraphOperation("request", err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildConnectionResponse(*conn))
}

// Accept godoc
// @Summary      Accept connection request
// @Description  Accepts a pending request. Only the addressee may accept.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Connection ID"
// @Success      200  {object}  ConnectionResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /connections/accept/{id} [post]
func (h *ConnectionHandler) Accept(c *gin.Context) {
	h.respond(c, models.StatusAccepted)
}

// Reject godoc
// @Summary      Reject connection request
// @Description  Rejects a pending request. Only the addressee may reject.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Connection ID"
// @Success      200  {object}  ConnectionResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /connections/reject/{id} [post]
func (h *ConnectionHandler) Reject(c *gin.Context) {
	h.respond(c, models.StatusRejected)
}

func (h *ConnectionHandler) respond(c *gin.Context, decision models.ConnectionStatus) {
	connectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	conn, err := h.connections.Respond(c.Request.Context(), connectionID, currentUserID(c), decision)
	metrics.RecordGraphOperation(string(decision), err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildConnectionResponse(*conn))
}

// Cancel godoc
// @Summary      Cancel connection request
// @Description  Deletes a pending request you sent.
// @Tags         connections
// @Security     BearerAuth
// @Param        id   path      int  true  "Connection ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse "Not the requester"
// @Failure      404  {object}  ErrorResponse
// @Router       /connections/cancel/{id} [delete]
func (h *ConnectionHandler) Cancel(c *gin.Context) {
	connectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	err := h.connections.Cancel(c.Request.Context(), connectionID, currentUserID(c))
	metrics.RecordGraphOperation("cancel", err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove godoc
// @Summary      Remove connection
// @Description  Deletes the connection with another user (unfriend).
// @Tags         connections
// @Security     BearerAuth
// @Param        id   path      int  true  "Other User ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /connections/remove/{id} [delete]
func (h *ConnectionHandler) Remove(c *gin.Context) {
	otherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	err := h.connections.Remove(c.Request.Context(), currentUserID(c), otherID)
	metrics.RecordGraphOperation("remove", err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Block godoc
// @Summary      Block user
// @Description  Blocks a user, overwriting any existing relationship.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID to block"
// @Success      200  {object}  ConnectionResponse
// @Failure      400  {object}  ErrorResponse "Self block"
// @Failure      404  {object}  ErrorResponse
// @Router       /connections/block/{id} [post]
func (h *ConnectionHandler) Block(c *gin.Context) {
	blockedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	conn, err := h.connections.Block(c.Request.Context(), currentUserID(c), blockedID)
	metrics.RecordGraphOperation("block", err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildConnectionResponse(*conn))
}

// Unblock godoc
// @Summary      Unblock user
// @Description  Deletes the blocked row; the relationship resets to none.
// @Tags         connections
// @Security     BearerAuth
// @Param        id   path      int  true  "Blocked User ID"
// @Success      204  "No Content"
// @Failure      404  {object}  ErrorResponse "User is not blocked"
// @Router       /connections/unblock/{id} [delete]
func (h *ConnectionHandler) Unblock(c *gin.Context) {
	blockedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	err := h.connections.Unblock(c.Request.Context(), currentUserID(c), blockedID)
	metrics.RecordGraphOperation("unblock", err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MyConnections godoc
// @Summary      List own connections
// @Description  Lists the authenticated user's accepted connections.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[ConnectionResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /connections/my-connections [get]
func (h *ConnectionHandler) MyConnections(c *gin.Context) {
	limit, offset := limitOffset(c)
	conns, total, err := h.connections.ListConnections(currentUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	h.listResponse(c, conns, total, limit, offset)
}

// UserConnections godoc
// @Summary      List a user's connections
// @Description  Lists the public profiles connected to the given user. No authentication required.
// @Tags         connections
// @Produce      json
// @Param        id     path   int  true   "User ID"
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[ProfilePublic]
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "User not found or inactive"
// @Router       /connections/user/{id} [get]
func (h *ConnectionHandler) UserConnections(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.users.GetActive(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	limit, offset := limitOffset(c)
	conns, total, err := h.connections.ListConnections(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	// Each row exposes the party other than the listed user.
	profiles := make([]ProfilePublic, len(conns))
	for i, conn := range conns {
		other := conn.Addressee
		if conn.AddresseeID == userID {
			other = conn.Requester
		}
		profiles[i] = buildProfilePublic(other)
	}
	c.JSON(http.StatusOK, ListResponse[ProfilePublic]{
		Data: profiles, Total: total, Limit: limit, Offset: offset,
	})
}

// RequestsReceived godoc
// @Summary      List pending requests received
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[ConnectionResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /connections/requests/received [get]
func (h *ConnectionHandler) RequestsReceived(c *gin.Context) {
	limit, offset := limitOffset(c)
	conns, total, err := h.connections.PendingReceived(currentUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	h.listResponse(c, conns, total, limit, offset)
}

// RequestsSent godoc
// @Summary      List pending requests sent
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[ConnectionResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /connections/requests/sent [get]
func (h *ConnectionHandler) RequestsSent(c *gin.Context) {
	limit, offset := limitOffset(c)
	conns, total, err := h.connections.PendingSent(currentUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	h.listResponse(c, conns, total, limit, offset)
}

// Status godoc
// @Summary      Get connection status with a user
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Other User ID"
// @Success      200  {object}  ConnectionStatusResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /connections/status/{id} [get]
func (h *ConnectionHandler) Status(c *gin.Context) {
	otherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	conn, err := h.connections.Between(currentUserID(c), otherID)
	if err != nil {
		if errorsIsNotFound(err) {
			c.JSON(http.StatusOK, ConnectionStatusResponse{UserID: otherID})
			return
		}
		respondError(c, err)
		return
	}

	resp := ConnectionStatusResponse{
		UserID:       otherID,
		Status:       &conn.Status,
		ConnectionID: &conn.ID,
	}
	if conn.Status == models.StatusAccepted {
		resp.ConnectedSince = &conn.CreatedAt
	}
	c.JSON(http.StatusOK, resp)
}

// Mutual godoc
// @Summary      List mutual connections
// @Description  Lists users connected to both you and the given user, ordered by id for stable pagination.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id     path   int  true   "Other User ID"
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[ProfilePublic]
// @Failure      404  {object}  ErrorResponse
// @Router       /connections/mutual/{id} [get]
func (h *ConnectionHandler) Mutual(c *gin.Context) {
	otherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.users.GetActive(c.Request.Context(), otherID); err != nil {
		respondError(c, err)
		return
	}

	limit, offset := limitOffset(c)
	users, total, err := h.connections.MutualConnections(currentUserID(c), otherID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	profiles := make([]ProfilePublic, len(users))
	for i, u := range users {
		profiles[i] = buildProfilePublic(u)
	}
	c.JSON(http.StatusOK, ListResponse[ProfilePublic]{
		Data: profiles, Total: int64(total), Limit: limit, Offset: offset,
	})
}

// Suggestions godoc
// @Summary      Get connection suggestions
// @Description  Ranks candidates by mutual connections, shared university, major and interests. The whole eligible pool is scored before pagination.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Page size" default(20)
// @Param        offset query  int  false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[SuggestionResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /connections/suggestions [get]
func (h *ConnectionHandler) Suggestions(c *gin.Context) {
	limit, offset := limitOffset(c)
	suggestions, total, err := h.connections.Suggestions(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]SuggestionResponse, len(suggestions))
	for i, s := range suggestions {
		data[i] = SuggestionResponse{
			User:                   buildProfilePublic(s.User),
			MutualConnectionsCount: s.MutualConnectionsCount,
			CommonUniversity:       s.CommonUniversity,
			CommonMajor:            s.CommonMajor,
			CommonInterests:        s.CommonInterests,
			SuggestionScore:        s.Score,
		}
	}
	c.JSON(http.StatusOK, ListResponse[SuggestionResponse]{
		Data: data, Total: int64(total), Limit: limit, Offset: offset,
	})
}

// Stats godoc
// @Summary      Get connection statistics
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.ConnectionStats
// @Failure      401  {object}  ErrorResponse
// @Router       /connections/stats [get]
func (h *ConnectionHandler) Stats(c *gin.Context) {
	stats, err := h.connections.Stats(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
