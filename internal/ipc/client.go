package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"pipdock/pkg/logger"
)

// SendCommand sends one request to the instance listening on path.
func SendCommand(path, command string, log *logger.Logger) (Response, error) {
	log.Debug("Attempting to connect to socket server", "path", path)

	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return Response{}, fmt.Errorf("is pipdock running? %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(30 * time.Second))

	req := Request{Command: command}
	encoder := json.NewEncoder(conn)
	if err := encoder.Encode(req); err != nil {
		return Response{}, fmt.Errorf("failed to encode request: %w", err)
	}

	log.Debug("Request sent successfully", "command", command)

	var resp Response
	decoder := json.NewDecoder(conn)
	if err := decoder.Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}

	log.Debug("Response received", "status", resp.Status, "message", resp.Message)
	return resp, nil
}
