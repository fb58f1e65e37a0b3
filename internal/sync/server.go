package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Accept failures other than a closed listener are retried with an
// exponential delay between these bounds.
const (
	acceptRetryMin = 5 * time.Millisecond
	acceptRetryMax = time.Second
)

// Server streams hub events to raw TCP clients as JSON lines.
type Server struct {
	Addr string
	Hub  *Hub

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.Hub.logger.Info().Str("addr", ln.Addr().String()).Msg("tcp sync listening")
	return nil
}

// ListenAddr returns the bound address, or nil before Listen.
func (s *Server) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts clients until Close. It returns nil after Close.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("tcp sync server is not listening")
	}

	delay := acceptBackoff()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			wait := delay.NextBackOff()
			s.Hub.logger.Debug().Err(err).Dur("retry_in", wait).Msg("tcp accept failed")
			time.Sleep(wait)
			continue
		}
		delay.Reset()
		if err := s.Hub.Add(conn); err != nil {
			_ = conn.Close()
			continue
		}
		s.Hub.logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("tcp client connected")

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				s.Hub.logger.Info().Str("remote", c.RemoteAddr().String()).Msg("tcp client disconnected")
			}()
			sc := bufio.NewScanner(c)
			for sc.Scan() {
				// ignore incoming lines
			}
		}(conn)
	}
}

func (s *Server) Run() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func acceptBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = acceptRetryMin
	b.MaxInterval = acceptRetryMax
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
