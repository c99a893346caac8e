package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"pipdock/pkg/logger"
)

const (
	CmdStart   = "start"
	CmdStop    = "stop"
	CmdStatus  = "status"
	CmdTrigger = "trigger"
)

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Running bool   `json:"running"`
}

// Controller is what a running instance exposes over the socket.
type Controller interface {
	Start() error
	Stop()
	Running() bool
	// Trigger runs a single detection pass now and describes its outcome.
	Trigger(ctx context.Context) (string, error)
}

// SocketPath returns the per-user socket location.
func SocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pipdock.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("pipdock-%d.sock", os.Getuid()))
}

type Server struct {
	path string
	ctrl Controller
	log  *logger.Logger
}

func NewServer(path string, ctrl Controller, log *logger.Logger) *Server {
	return &Server{path: path, ctrl: ctrl, log: log}
}

// Serve accepts connections until ctx is done. The socket file is removed on
// return.
func (s *Server) Serve(ctx context.Context) error {
	// Remove the socket file if it already exists
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket file: %w", err)
	}

	// Create the directory for the socket file
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	// Listen on the Unix domain socket
	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	defer os.Remove(s.path)

	s.log.Info("Socket server started", "path", s.path)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Info("Socket server stopped")
				return nil
			}
			s.log.Error("Failed to accept connection", err)
			continue
		}

		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(30 * time.Second))

	var req Request
	decoder := json.NewDecoder(conn)
	if err := decoder.Decode(&req); err != nil {
		s.log.Error("Failed to decode request", err)
		return
	}

	s.log.Info("Received request", "command", req.Command)

	resp := s.handle(ctx, req)

	encoder := json.NewEncoder(conn)
	if err := encoder.Encode(resp); err != nil {
		s.log.Error("Failed to encode response", err)
	} else {
		s.log.Debug("Response sent successfully", "status", resp.Status)
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	var resp Response
	switch req.Command {
	case CmdStart:
		if err := s.ctrl.Start(); err != nil {
			resp = Response{Status: "error", Message: err.Error()}
		} else {
			resp = Response{Status: "success", Message: "Monitoring started"}
		}
	case CmdStop:
		s.ctrl.Stop()
		resp = Response{Status: "success", Message: "Monitoring stopped"}
	case CmdStatus:
		msg := "Monitoring stopped"
		if s.ctrl.Running() {
			msg = "Monitoring active"
		}
		resp = Response{Status: "success", Message: msg}
	case CmdTrigger:
		if msg, err := s.ctrl.Trigger(ctx); err != nil {
			s.log.Error("Trigger failed", err)
			resp = Response{Status: "error", Message: err.Error()}
		} else {
			resp = Response{Status: "success", Message: msg}
		}
	default:
		s.log.Error("Unknown command received", fmt.Errorf("command: %s", req.Command))
		resp = Response{Status: "error", Message: "Unknown command"}
	}
	resp.Running = s.ctrl.Running()
	return resp
}
