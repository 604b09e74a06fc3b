package server

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"grid-tactics/internal/battle"
	"grid-tactics/internal/database"
	"grid-tactics/internal/protocol"
	"grid-tactics/pkg/maps"

	"github.com/google/uuid"
)

// Session runs one client's battle. Every command is handled on the
// session's own goroutine, so the battle is never touched concurrently.
type Session struct {
	server *Server
	client *Client

	cmds chan *protocol.Message

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	wg     sync.WaitGroup

	// Owned by the session goroutine
	battle   *battle.Battle
	mapID    string
	recorder *database.Recorder
}

func newSession(server *Server, client *Client) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		server: server,
		client: client,
		cmds:   make(chan *protocol.Message, 64),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the session goroutine.
func (s *Session) Start() {
	s.wg.Add(1)
	go s.run()
}

// Enqueue queues a command. Commands arriving while the queue is full are
// rejected.
func (s *Session) Enqueue(msg *protocol.Message) {
	select {
	case <-s.ctx.Done():
	case s.cmds <- msg:
	default:
		s.client.SendPayload(protocol.TypeError, msg.ID, protocol.ErrorPayload{
			Code:    protocol.ErrCodeInvalidAction,
			Message: "too many pending commands",
		})
	}
}

// Close stops the session and abandons its battle. It waits for a running
// command to notice the cancellation.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

func (s *Session) run() {
	defer s.wg.Done()
	defer s.endBattle()

	h := &Handlers{server: s.server, session: s}
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.cmds:
			h.Handle(msg)
		}
	}
}

// startBattle replaces the current battle with a new one on the given map.
func (s *Session) startBattle(p protocol.StartBattlePayload) error {
	s.endBattle()

	sc := s.server.scenario
	mapID := p.MapID
	if mapID == "" {
		mapID = sc.Map
	}
	m := maps.Get(mapID)
	if m == nil {
		return errMapNotFound
	}

	seed := p.Seed
	if seed == 0 {
		seed = sc.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := battle.Options{
		ID:          uuid.New().String(),
		ContextID:   p.ContextID,
		DefendBonus: sc.DefendBonus,
		Rand:        rand.New(rand.NewSource(seed)),
	}

	rec, err := s.server.db.NewRecorder(opts.ID, p.ContextID, s.client.Commander.ID, mapID, seed)
	if err != nil {
		return err
	}

	opts.Events = battle.MultiSink{rec, battle.EventFunc(s.forwardEvent)}
	opts.Results = battle.ResultFunc(func(r battle.Result) {
		rec.OnBattleResult(r)
		s.client.SendPayload(protocol.TypeBattleResult, "", resultPayload(r))
	})
	if p.Animate {
		a := sc.Animator()
		a.OnFrame = func(u *battle.Unit) {
			s.client.SendPayload(protocol.TypeUnitFrame, "", protocol.UnitFramePayload{
				UnitID: u.ID,
				X:      u.Position.X,
				Y:      u.Position.Y,
			})
		}
		opts.Animator = a
	}

	b := battle.New(m.BuildGrid(), opts)
	if mapID == sc.Map {
		err = sc.Deploy(b)
	} else {
		err = sc.DeployInZones(b)
	}
	if err == nil {
		err = b.Start()
	}
	if err != nil {
		b.Close()
		rec.Abandon()
		return err
	}

	s.battle = b
	s.mapID = mapID
	s.recorder = rec
	log.Printf("[Session] Client %s started battle %s on %s (seed %d)", s.client.ID, b.ID, mapID, seed)
	return nil
}

// endBattle closes the current battle, marking it abandoned if unresolved.
func (s *Session) endBattle() {
	if s.battle == nil {
		return
	}
	if !s.battle.Turns().Resolved() {
		s.recorder.Abandon()
		log.Printf("[Session] Battle %s abandoned", s.battle.ID)
	}
	s.battle.Close()
	s.battle = nil
	s.recorder = nil
	s.mapID = ""
}

func (s *Session) forwardEvent(ev battle.Event) {
	s.client.SendPayload(protocol.TypeBattleEvent, "", eventPayload(ev))
}
