// runtime_ipc.go - Unix socket for appending to a running instance's log

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/FrameLog
License: GPLv3 or later
*/

package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const ipcMaxRequestSize = 4096

type ipcRequest struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
}

type ipcResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// IPCServer listens on a Unix socket and feeds requests into a log.
type IPCServer struct {
	listener net.Listener
	log      *FrameLog
	surfaces *panicRegistry
	done     chan struct{}
	sockPath string
}

func resolveSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "framelog.sock")
	}
	return "/tmp/framelog.sock"
}

// NewIPCServer creates and binds the IPC Unix socket at the default path.
func NewIPCServer(log *FrameLog, surfaces *panicRegistry) (*IPCServer, error) {
	return newIPCServerAt(resolveSocketPath(), log, surfaces)
}

func newIPCServerAt(sockPath string, log *FrameLog, surfaces *panicRegistry) (*IPCServer, error) {
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		// Stale socket: if nobody answers, remove it and bind again.
		conn, dialErr := net.DialTimeout("unix", sockPath, 2*time.Second)
		if dialErr != nil {
			os.Remove(sockPath)
			ln, err = net.Listen("unix", sockPath)
			if err != nil {
				return nil, fmt.Errorf("ipc bind failed: %w", err)
			}
		} else {
			conn.Close()
			return nil, fmt.Errorf("another instance is already listening on %s", sockPath)
		}
	}
	return &IPCServer{listener: ln, log: log, surfaces: surfaces, done: make(chan struct{}), sockPath: sockPath}, nil
}

// Start begins accepting IPC connections in a goroutine.
func (s *IPCServer) Start() {
	go s.acceptLoop()
}

// Stop closes the listener and waits for the accept loop to exit.
func (s *IPCServer) Stop() {
	s.listener.Close()
	<-s.done
	os.Remove(s.sockPath)
}

func (s *IPCServer) acceptLoop() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *IPCServer) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	buf := make([]byte, ipcMaxRequestSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}

	var req ipcRequest
	if err := json.Unmarshal(buf[:n], &req); err != nil {
		s.writeResponse(conn, ipcResponse{Status: "err", Message: "invalid json"})
		return
	}
	s.writeResponse(conn, s.dispatch(req))
}

func (s *IPCServer) dispatch(req ipcRequest) ipcResponse {
	switch req.Cmd {
	case "log":
		if req.Text == "" {
			return ipcResponse{Status: "err", Message: "empty text"}
		}
		s.log.WriteString(req.Text, false)
	case "crash":
		text := req.Text
		if text == "" {
			text = "remote crash request"
		}
		reportSimulatedCrash(s.log, s.surfaces, text, nil)
	case "status":
		var b strings.Builder
		s.log.Status().print(&b)
		return ipcResponse{Status: "ok", Message: b.String()}
	default:
		return ipcResponse{Status: "err", Message: "unknown command"}
	}
	return ipcResponse{Status: "ok"}
}

func (s *IPCServer) writeResponse(conn net.Conn, resp ipcResponse) {
	data, _ := json.Marshal(resp)
	conn.Write(data)
}

// SendIPC sends one request to a running instance at the default socket.
func SendIPC(cmd, text string) (string, error) {
	return sendIPCAt(resolveSocketPath(), cmd, text)
}

func sendIPCAt(sockPath, cmd, text string) (string, error) {
	conn, err := net.DialTimeout("unix", sockPath, 10*time.Second)
	if err != nil {
		return "", fmt.Errorf("cannot connect to running instance: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	data, _ := json.Marshal(ipcRequest{Cmd: cmd, Text: text})
	if len(data) > ipcMaxRequestSize {
		return "", fmt.Errorf("request of %d bytes exceeds %d", len(data), ipcMaxRequestSize)
	}
	if _, err := conn.Write(data); err != nil {
		return "", fmt.Errorf("send failed: %w", err)
	}

	buf := make([]byte, ipcMaxRequestSize)
	n, err := conn.Read(buf)
	if err != nil {
		return "", fmt.Errorf("read response failed: %w", err)
	}

	var resp ipcResponse
	if err := json.Unmarshal(buf[:n], &resp); err != nil {
		return "", fmt.Errorf("invalid response: %w", err)
	}
	if resp.Status != "ok" {
		return "", fmt.Errorf("remote error: %s", resp.Message)
	}
	return resp.Message, nil
}
