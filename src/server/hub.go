package server

import (
	"encoding/json"
	"net/http"

	"spot-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// subscription narrows the sources a client receives updates for.
type subscription struct {
	client  *Client
	sources map[models.MSourceID]struct{}
}

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. It is the only goroutine that touches
// s.clients or closes a client's send channel.
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.setConnections(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.setConnections(len(s.clients))
			s.sendTo(client, s.initialState(nil))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.setConnections(len(s.clients))
			}

		case sub := <-s.subscribe:
			if _, ok := s.clients[sub.client]; !ok {
				continue
			}
			sub.client.sources = sub.sources
			s.sendTo(sub.client, s.initialState(sub.sources))

		case message := <-s.broadcast:
			for client := range s.clients {
				if !client.wants(message) {
					continue
				}
				s.sendTo(client, message)
			}
		}
	}
}

// sendTo queues a message for one client, dropping the client when its buffer
// is full.
func (s *APIServer) sendTo(client *Client, message *models.MLatestData) {
	select {
	case client.send <- message:
	default:
		s.Logger.Warning("Dropping slow websocket client")
		delete(s.clients, client)
		close(client.send)
		s.setConnections(len(s.clients))
	}
}

func (s *APIServer) setConnections(n int) {
	s.stateMutex.Lock()
	s.connections = n
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// OnPublish merges the new snapshot's summary into the server state and queues
// an UPDATE for websocket clients. It never blocks the refreshing goroutine.
func (s *APIServer) OnPublish(snap *models.MSnapshot) {
	if snap == nil {
		return
	}
	sum := models.Summarize(snap)
	if store, err := s.Dashboard.Registry.Store(snap.Source); err == nil {
		sum.NextEligibleAt = store.NextEligibleAt().Unix()
	}

	s.stateMutex.Lock()
	if s.latestState.Sources == nil {
		s.latestState.Sources = make(map[models.MSourceID]models.MSnapshotSummary)
	}
	s.latestState.Sources[snap.Source] = sum
	s.latestState.Timestamp = sum.RetrievedAt
	s.latestState.Type = "UPDATE"
	s.stateMutex.Unlock()

	// No clients can exist before the hub runs; they get the merged state.
	if !s.hubRunning.Load() {
		return
	}
	update := &models.MLatestData{
		Type:      "UPDATE",
		Sources:   map[models.MSourceID]models.MSnapshotSummary{snap.Source: sum},
		Timestamp: sum.RetrievedAt,
	}
	select {
	case s.broadcast <- update:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update for %s", snap.Source)
	}
}

// -----------------------------------------------------------------------------

// initialState copies the merged state, keeping only the given sources when
// the filter is non-empty.
func (s *APIServer) initialState(filter map[models.MSourceID]struct{}) *models.MLatestData {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	out := &models.MLatestData{
		Type:      "INITIAL",
		Sources:   make(map[models.MSourceID]models.MSnapshotSummary, len(s.latestState.Sources)),
		Timestamp: s.latestState.Timestamp,
	}
	for id, sum := range s.latestState.Sources {
		if len(filter) > 0 {
			if _, ok := filter[id]; !ok {
				continue
			}
		}
		out.Sources[id] = sum
	}
	return out
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	s.startHub()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan *models.MLatestData, 256),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage processes a subscribe command. The reply is an INITIAL
// message restricted to the requested sources.
func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	sources := make(map[models.MSourceID]struct{}, len(cmd.Sources))
	for _, name := range cmd.Sources {
		id, err := models.ParseSourceID(name)
		if err != nil {
			s.Logger.Debug("Ignoring subscription to %q", name)
			continue
		}
		sources[id] = struct{}{}
	}

	select {
	case s.subscribe <- subscription{client: client, sources: sources}:
	case <-s.quit:
	}
}
