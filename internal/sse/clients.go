// Package sse keeps the Server-Sent Events subscribers of editor sessions.
package sse

import (
	"sync"
)

type Client struct {
	Msg       chan string
	SessionID string
}

func NewClient(sessionID string) *Client {
	return &Client{
		Msg:       make(chan string, 8),
		SessionID: sessionID,
	}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

// Broadcast sends msg to every subscriber of the session. Subscribers whose
// buffer is full miss the message.
func (s *SSEClients) Broadcast(sessionID string, msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.SessionID == sessionID {
			select {
			case client.Msg <- msg:
			default:
			}
		}
	}
}

// Count returns the number of subscribers of the session.
func (s *SSEClients) Count(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for client := range s.clients {
		if client.SessionID == sessionID {
			n++
		}
	}
	return n
}
