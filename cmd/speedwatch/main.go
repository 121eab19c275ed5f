package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// speedwatch connects to the stridebridge state feed and prints state events
// as they arrive. Useful for debugging the engine without a UI.

type envelope struct {
	Type string          `json:"type"`
	Ts   *time.Time      `json:"ts,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type snapshotData struct {
	TargetSpeed   float64 `json:"target_speed"`
	CurrentSpeed  float64 `json:"current_speed"`
	Multiplier    float64 `json:"multiplier"`
	OverrideIndex int     `json:"override_index"`
	NudgeOffset   float64 `json:"nudge_offset"`
	FinalSpeed    float64 `json:"final_speed"`

	AvatarSpeed      float64 `json:"avatar_speed"`
	AvatarSpeedKnown bool    `json:"avatar_speed_known"`
}

type speedChangedData struct {
	Speed float64 `json:"speed"`
}

type controlsChangedData struct {
	TargetSpeed   float64 `json:"target_speed"`
	Multiplier    float64 `json:"multiplier"`
	OverrideIndex int     `json:"override_index"`
	NudgeOffset   float64 `json:"nudge_offset"`
}

func main() {
	var (
		wsURL = flag.String("ws", "ws://127.0.0.1:7780/ws/state", "stridebridge state feed URL")
	)
	flag.Parse()

	u, err := url.Parse(*wsURL)
	if err != nil {
		log.Fatalf("invalid websocket URL: %v", err)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	d := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	log.Printf("connecting to %s...", u.String())
	conn, _, err := d.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("connected! (press Ctrl+C to exit)")

	// Mutex to protect concurrent writes to the websocket
	var writeMu sync.Mutex

	// Keepalive: answer server pings implicitly, send our own periodically.
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	go func() {
		for range pingTicker.C {
			writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				log.Printf("ping failed: %v", err)
				return
			}
		}
	}()

	// Message reading loop
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
					log.Printf("websocket error: %v", err)
				}
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			handleTextMessage(message)
		}
	}()

	select {
	case <-sigc:
		log.Printf("shutting down...")
		writeMu.Lock()
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		writeMu.Unlock()
		if err != nil {
			log.Printf("error closing connection: %v", err)
		}
	case <-done:
		log.Printf("connection closed")
	}
}

// handleTextMessage decodes a state feed envelope and prints it.
func handleTextMessage(message []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		fmt.Printf("[TEXT] %s\n", string(message))
		return
	}

	switch env.Type {
	case "state_init":
		var snap snapshotData
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			fmt.Printf("[STATE_INIT] %s\n", string(env.Data))
			return
		}
		fmt.Printf("[STATE] target=%.2f current=%.2f mult=%.2f override=%d nudge=%+.2f final=%.3f\n",
			snap.TargetSpeed, snap.CurrentSpeed, snap.Multiplier, snap.OverrideIndex, snap.NudgeOffset, snap.FinalSpeed)
		if snap.AvatarSpeedKnown {
			fmt.Printf("[AVATAR] speed=%.3f\n", snap.AvatarSpeed)
		}

	case "speed_changed":
		var sc speedChangedData
		if err := json.Unmarshal(env.Data, &sc); err != nil {
			return
		}
		fmt.Printf("[SPEED] %.3f\n", sc.Speed)

	case "controls_changed":
		var cc controlsChangedData
		if err := json.Unmarshal(env.Data, &cc); err != nil {
			return
		}
		override := "off"
		if cc.OverrideIndex >= 0 {
			override = fmt.Sprintf("#%d", cc.OverrideIndex)
		}
		fmt.Printf("[CONTROLS] target=%.2f mult=%.2f override=%s nudge=%+.2f\n",
			cc.TargetSpeed, cc.Multiplier, override, cc.NudgeOffset)

	default:
		prettyJSON, _ := json.MarshalIndent(env, "", "  ")
		fmt.Printf("[EVENT]\n%s\n\n", string(prettyJSON))
	}
}
