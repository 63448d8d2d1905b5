package ws

import (
	"encoding/json"
	"log"
)

const (
	EventJoin           = "join"
	EventUpdateUser     = "updateUser"
	EventReceiveMessage = "receiveMessage"
	EventUserUpdated    = "userUpdated"
)

// Event is the envelope of every frame sent to a client.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type subscription struct {
	client *Client
	room   string
}

type emission struct {
	room    string
	payload []byte
}

type roomQuery struct {
	room  string
	reply chan int
}

// Hub keeps the room registry. Rooms are user ids or usernames; membership lives
// only in memory and is owned by the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Clients subscribed to each room.
	rooms map[string]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Room subscriptions from the clients.
	join chan subscription

	// Payloads to deliver to a room.
	emit chan emission

	sizes chan roomQuery
	done  chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan subscription),
		emit:       make(chan emission),
		sizes:      make(chan roomQuery),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			h.remove(client)
		case sub := <-h.join:
			if !h.clients[sub.client] {
				continue
			}
			members, ok := h.rooms[sub.room]
			if !ok {
				members = make(map[*Client]bool)
				h.rooms[sub.room] = members
			}
			members[sub.client] = true
			sub.client.rooms[sub.room] = true
		case e := <-h.emit:
			for client := range h.rooms[e.room] {
				select {
				case client.send <- e.payload:
				default:
					// Too slow to keep up; nothing is queued for it.
					h.remove(client)
				}
			}
		case q := <-h.sizes:
			q.reply <- len(h.rooms[q.room])
		case <-h.done:
			return
		}
	}
}

// Stop ends Run. Pending and later calls on the hub return without effect.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for room := range client.rooms {
		delete(h.rooms[room], client)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	close(client.send)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Join(client *Client, room string) {
	select {
	case h.join <- subscription{client: client, room: room}:
	case <-h.done:
	}
}

// Emit delivers event to every client currently in room. Delivery is best effort.
func (h *Hub) Emit(room, event string, payload interface{}) {
	msg, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		log.Printf("Error encoding %s event: %v", event, err)
		return
	}
	h.emitRaw(room, msg)
}

func (h *Hub) emitRaw(room string, msg []byte) {
	select {
	case h.emit <- emission{room: room, payload: msg}:
	case <-h.done:
	}
}

// RoomSize returns the number of clients subscribed to room.
func (h *Hub) RoomSize(room string) int {
	reply := make(chan int, 1)
	select {
	case h.sizes <- roomQuery{room: room, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}
