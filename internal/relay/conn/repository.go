package conn

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	ErrConnNotFound      = errors.New("connection not found")
	ErrConnAlreadyExists = errors.New("connection already exists")
)

// repo tracks the live websocket connection of every room member.
type repo struct {
	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

func NewRepo() *repo {
	return &repo{
		conns: make(map[string]*websocket.Conn),
	}
}

func (r *repo) Add(memberID string, conn *websocket.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[memberID]; ok {
		return ErrConnAlreadyExists
	}
	r.conns[memberID] = conn

	return nil
}

func (r *repo) Get(memberID string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[memberID]
	if !ok {
		return nil, ErrConnNotFound
	}

	return conn, nil
}

func (r *repo) Remove(memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[memberID]; !ok {
		return ErrConnNotFound
	}
	delete(r.conns, memberID)

	return nil
}
