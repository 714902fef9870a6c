package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"gridhive.ai/internal/protocol"
	"gridhive.ai/internal/sim/world"
)

// Server bridges planner clients to the world loop. One connection drives
// one worker: HELLO joins, PROGRAM assigns a behavior graph, CONTROL stops
// it or flags backend completion, and OBS streams back every tick.
type Server struct {
	world *world.World
	log   *log.Logger

	// Optional: inbound PROGRAM docs are validated here, at the boundary;
	// the sim core accepts whatever it is handed.
	programSchema *jsonschema.Schema

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger, programSchema *jsonschema.Schema) *Server {
	return &Server{
		world:         w,
		log:           logger,
		programSchema: programSchema,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		workerID, out := s.handshake(conn)
		if workerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.sendError(out, protocol.ErrProtoBadRequest, "unparseable message")
				continue
			}
			switch base.Type {
			case protocol.TypeProgram:
				s.handleProgram(workerID, out, msg)
			case protocol.TypeControl:
				s.handleControl(workerID, out, msg)
			}
		}

		// Cleanup.
		s.world.Leave() <- workerID
	}
}

func (s *Server) handleProgram(workerID string, out chan []byte, msg []byte) {
	if s.programSchema != nil {
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			s.sendError(out, protocol.ErrProtoBadRequest, "unparseable PROGRAM")
			return
		}
		if err := s.programSchema.Validate(v); err != nil {
			s.log.Printf("reject PROGRAM for %s: %v", workerID, err)
			s.sendError(out, protocol.ErrProtoBadRequest, "PROGRAM failed schema validation")
			return
		}
	}
	var pm protocol.ProgramMsg
	if err := json.Unmarshal(msg, &pm); err != nil {
		s.sendError(out, protocol.ErrProtoBadRequest, "unparseable PROGRAM")
		return
	}
	if pm.ProtocolVersion != protocol.Version {
		s.sendError(out, protocol.ErrProtoBadRequest, "unsupported protocol_version")
		return
	}
	target := pm.WorkerID
	if target == "" {
		target = workerID
	}
	s.world.Assign() <- world.AssignRequest{WorkerID: target, Doc: pm.Program}
}

func (s *Server) handleControl(workerID string, out chan []byte, msg []byte) {
	var cm protocol.ControlMsg
	if err := json.Unmarshal(msg, &cm); err != nil {
		s.sendError(out, protocol.ErrProtoBadRequest, "unparseable CONTROL")
		return
	}
	if cm.ProtocolVersion != protocol.Version {
		s.sendError(out, protocol.ErrProtoBadRequest, "unsupported protocol_version")
		return
	}
	target := cm.WorkerID
	if target == "" {
		target = workerID
	}
	s.world.Control() <- world.ControlRequest{WorkerID: target, Op: cm.Op}
}

// sendError queues an ERROR reply on the connection's write channel. The
// writer goroutine owns the conn, so replies go through the same channel
// as OBS frames; a full channel drops the reply rather than blocking.
func (s *Server) sendError(out chan []byte, code, message string) {
	b, err := json.Marshal(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func (s *Server) handshake(conn *websocket.Conn) (workerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}
	if hello.PlannerName == "" {
		hello.PlannerName = "planner"
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}
	out = make(chan []byte, maxQ)

	respCh := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{
		Name: hello.PlannerName,
		Out:  out,
		Resp: respCh,
	}
	resp := <-respCh
	if resp.Welcome.WorkerID == "" {
		return "", nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		return "", nil
	}
	return resp.Welcome.WorkerID, out
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
