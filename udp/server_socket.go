/*
Package udp streams simulation snapshots to external viewer processes over a
lightweight UDP record protocol.

A viewer subscribes with a Hello record and is handed a viewer ID in the
Welcome reply. The server then broadcasts every published snapshot to all
registered viewers and drops those whose heartbeat expires. A viewer may send
a Quit record to request that the whole run terminates; the wired quit
handler propagates the signal. The feed is strictly best-effort: a lost
datagram loses one frame, never simulation progress.
*/
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guilhemriera/Parallel-Ants-Project/logger"
)

// QuitHandler is called when a registered viewer requests run termination.
type QuitHandler func(uuid.UUID)

type ServerOption func(*ServerSocketManager)

// Custom error types
var (
	ErrInvalidPayloadBodySize  = errors.New("invalid payload body size")
	ErrMaximumPayloadSizeLimit = errors.New("maximum payload size limit")
	ErrViewerAddressUnknown    = errors.New("viewer address is not registered")
)

// Record types of the viewer protocol.
const (
	HelloRecordType byte = 1 << iota
	WelcomeRecordType
	PingRecordType
	PongRecordType
	SnapshotRecordType
	QuitRecordType

	defaultReadBufferSize int = 2048
)

// record is a parsed incoming datagram.
type record struct {
	Type byte
	Body []byte
}

// rawRecord is sent to the rawRecords channel when a new payload is received.
type rawRecord struct {
	payload []byte
	addr    *net.UDPAddr
}

// Viewer represents a registered snapshot consumer.
type Viewer struct {
	ID uuid.UUID

	addr          *net.UDPAddr
	lastHeartbeat time.Time

	sync.Mutex
}

// ServerSocketManager is the UDP socket manager for the snapshot feed. It
// registers viewers, garbage-collects silent ones, and broadcasts snapshots.
type ServerSocketManager struct {
	readBufferSize          int
	heartbeatExpiration     time.Duration
	conn                    *net.UDPConn
	onQuit                  QuitHandler
	viewers                 map[uuid.UUID]*Viewer
	viewersLock             sync.RWMutex
	garbageCollectionTicker *time.Ticker
	garbageCollectionStop   chan bool
	rawRecords              chan rawRecord
	logger                  logger.Logger
	stop                    chan bool
	wg                      *sync.WaitGroup
}

// ServerConfig is used to pass the required parameters to initialize a new socket manager.
type ServerConfig struct {
	ListenAddr *net.UDPAddr // UDP address to listen on.
}

// NewServerSocketManager initializes a socket manager with the given configuration and options.
func NewServerSocketManager(c ServerConfig, options ...ServerOption) (*ServerSocketManager, error) {
	conn, err := net.ListenUDP("udp", c.ListenAddr)
	if err != nil {
		return nil, err
	}

	s := &ServerSocketManager{
		conn: conn,

		viewers:     make(map[uuid.UUID]*Viewer),
		viewersLock: sync.RWMutex{},

		garbageCollectionStop: make(chan bool, 1),
		stop:                  make(chan bool, 1),

		rawRecords: make(chan rawRecord),

		wg: &sync.WaitGroup{},
	}

	// Run optional configurations
	for _, opt := range options {
		opt(s)
	}

	if s.readBufferSize == 0 {
		s.readBufferSize = defaultReadBufferSize
	}

	if s.logger == nil {
		discard, _ := logger.New("UDP", "", nopWriter{})
		s.logger = discard
	}

	return s, nil
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Serve starts listening to the UDP port for incoming records.
func (s *ServerSocketManager) Serve() {
	if s.heartbeatExpiration > 0 {
		s.garbageCollectionTicker = time.NewTicker(s.heartbeatExpiration)
		go s.viewerGarbageCollection()
	}

	go s.handleRawRecords()

	if err := s.conn.SetReadDeadline(time.Time{}); err != nil {
		s.logger.Error(fmt.Sprintf("resetting connection deadline: %v", err))
	}
	s.logger.Info(fmt.Sprintf("snapshot feed listening on udp address: %v", s.conn.LocalAddr().String()))
	for {
		select {
		case <-s.stop:
			return
		default:
			buf := make([]byte, s.readBufferSize+1) // Intentionally create more space than allowed for checking
			n, addr, err := s.conn.ReadFromUDP(buf)
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					continue
				}

				s.logger.Error(fmt.Sprintf("reading from udp: %v", err))
				continue
			} else if n > s.readBufferSize {
				s.logger.Error(fmt.Sprintf("reading from udp: %v", ErrMaximumPayloadSizeLimit))
				continue
			}
			s.rawRecords <- rawRecord{
				payload: buf[0:n],
				addr:    addr,
			}
		}
	}
}

// Stop shuts the feed down gracefully.
func (s *ServerSocketManager) Stop() {
	s.logger.Info("snapshot feed stopping gracefully...")
	defer s.logger.Info("snapshot feed stopped")

	_ = s.conn.SetReadDeadline(time.Unix(0, 1))
	s.stop <- true
	if s.garbageCollectionTicker != nil {
		s.garbageCollectionStop <- true
		s.garbageCollectionTicker.Stop()
	}
	close(s.rawRecords)
	s.wg.Wait()
}

// viewerGarbageCollection removes viewers whose last heartbeat exceeds the
// heartbeat expiration duration.
func (s *ServerSocketManager) viewerGarbageCollection() {
	for {
		select {
		case <-s.garbageCollectionStop:
			return
		case <-s.garbageCollectionTicker.C:
			s.viewersLock.Lock()
			for _, v := range s.viewers {
				if time.Now().After(v.lastHeartbeat.Add(s.heartbeatExpiration)) {
					delete(s.viewers, v.ID)
				}
			}
			s.viewersLock.Unlock()
		}
	}
}

func (s *ServerSocketManager) handleRawRecords() {
	for r := range s.rawRecords {
		s.handleRawRecord(r.payload, r.addr)
	}
}

func (s *ServerSocketManager) handleRawRecord(payload []byte, addr *net.UDPAddr) {
	record, err := parseRecord(payload)
	if err != nil {
		s.logger.Error(fmt.Sprintf("parsing record: %v", err))
		return
	}

	switch record.Type {
	case HelloRecordType:
		s.handleHelloRecord(addr)
	case PingRecordType:
		s.handlePingRecord(record, addr)
	case QuitRecordType:
		s.handleQuitRecord(addr)
	default:
		s.logger.Error(fmt.Sprintf("handling record: unknown record type %d", record.Type))
	}
}

// handleHelloRecord registers a viewer and replies Welcome with its ID.
func (s *ServerSocketManager) handleHelloRecord(addr *net.UDPAddr) {
	viewer := s.registerViewer(addr)

	welcome := append([]byte{WelcomeRecordType}, viewer.ID[:]...)
	if err := s.sendToAddr(addr, welcome); err != nil {
		s.logger.Error(fmt.Sprintf("sending Welcome record to the viewer: %v", err))
		return
	}

	s.logger.Info(fmt.Sprintf("registered viewer: %s", viewer.ID))
}

// handlePingRecord refreshes the viewer heartbeat and echoes a Pong.
func (s *ServerSocketManager) handlePingRecord(r *record, addr *net.UDPAddr) {
	v, err := s.findViewerWithAddr(addr)
	if err != nil {
		s.logger.Error(fmt.Sprintf("authenticating ping record: %v", err))
		return
	}

	pong := append([]byte{PongRecordType}, r.Body...)
	if err := s.sendToAddr(addr, pong); err != nil {
		s.logger.Error(fmt.Sprintf("sending pong record: %v", err))
		return
	}

	v.Lock()
	v.lastHeartbeat = time.Now()
	v.Unlock()
}

// handleQuitRecord propagates a viewer's termination request.
func (s *ServerSocketManager) handleQuitRecord(addr *net.UDPAddr) {
	v, err := s.findViewerWithAddr(addr)
	if err != nil {
		s.logger.Error(fmt.Sprintf("authenticating quit record: %v", err))
		return
	}

	s.logger.Info(fmt.Sprintf("viewer %s requested quit", v.ID))
	if s.onQuit != nil {
		s.onQuit(v.ID)
	}
}

// registerViewer registers an address as a snapshot consumer.
func (s *ServerSocketManager) registerViewer(addr *net.UDPAddr) *Viewer {
	v := &Viewer{
		ID:            uuid.New(),
		addr:          addr,
		lastHeartbeat: time.Now(),
	}

	s.viewersLock.Lock()
	s.viewers[v.ID] = v
	s.viewersLock.Unlock()
	return v
}

// findViewerWithAddr finds a registered viewer with the given addr.
func (s *ServerSocketManager) findViewerWithAddr(a *net.UDPAddr) (*Viewer, error) {
	s.viewersLock.RLock()
	defer s.viewersLock.RUnlock()

	for _, v := range s.viewers {
		if net.IP.Equal(v.addr.IP, a.IP) && v.addr.Port == a.Port {
			return v, nil
		}
	}

	return nil, ErrViewerAddressUnknown
}

// Publish broadcasts an encoded snapshot to all registered viewers. It
// implements the simulation's snapshot sink.
func (s *ServerSocketManager) Publish(_ context.Context, payload []byte) error {
	message := append([]byte{SnapshotRecordType}, payload...)

	s.viewersLock.RLock()
	defer s.viewersLock.RUnlock()
	for _, v := range s.viewers {
		s.wg.Add(1)
		go func(v *Viewer) {
			defer s.wg.Done()
			if err := s.sendToAddr(v.addr, message); err != nil {
				s.logger.Error(fmt.Sprintf("writing to viewer %s: %v", v.ID, err))
			}
		}(v)
	}
	return nil
}

// sendToAddr sends a message byte array to the address given.
func (s *ServerSocketManager) sendToAddr(addr *net.UDPAddr, message []byte) error {
	_, err := s.conn.WriteToUDP(message, addr)
	return err
}

// parseRecord parses a byte slice into a record struct: [type, body].
func parseRecord(r []byte) (*record, error) {
	if len(r) < 1 {
		return nil, ErrInvalidPayloadBodySize
	}

	return &record{
		Type: r[0],
		Body: r[1:],
	}, nil
}

// ServerWithQuitHandler sets a callback for viewer termination requests.
func ServerWithQuitHandler(f QuitHandler) ServerOption {
	return func(s *ServerSocketManager) {
		s.onQuit = f
	}
}

// ServerWithHeartbeatExpiration sets the viewer heartbeat expiration option.
func ServerWithHeartbeatExpiration(t time.Duration) ServerOption {
	return func(s *ServerSocketManager) {
		s.heartbeatExpiration = t
	}
}

// ServerWithReadBufferSize sets the read buffer size option.
func ServerWithReadBufferSize(i int) ServerOption {
	return func(s *ServerSocketManager) {
		s.readBufferSize = i
	}
}

// ServerWithLogger sets the logger.
func ServerWithLogger(l logger.Logger) ServerOption {
	return func(s *ServerSocketManager) {
		s.logger = l
	}
}
