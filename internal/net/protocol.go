package net

// Client → Server events

const (
	EventRegisterPlayer = "register_player"
	EventShoot          = "shoot"
	EventReload         = "reload"
)

// Server → Client events. Connect, Disconnect and ConnectError never travel
// on the wire; the client raises them itself when the transport changes state.

const (
	EventConnect          = "connect"
	EventDisconnect       = "disconnect"
	EventConnectError     = "connect_error"
	EventPlayerData       = "player_data"
	EventAmmoUpdate       = "ammo_update"
	EventPlayerCount      = "player_count"
	EventOutOfAmmo        = "out_of_ammo"
	EventPlayerShot       = "player_shot"
	EventHitConfirmed     = "hit_confirmed"
	EventYouWereHit       = "you_were_hit"
	EventHitEvent         = "hit_event"
	EventPlayerEliminated = "player_eliminated"
)

// Outbound and Inbound list both alphabets. They are disjoint.
var (
	Outbound = []string{EventRegisterPlayer, EventShoot, EventReload}
	Inbound  = []string{
		EventConnect, EventDisconnect, EventConnectError,
		EventPlayerData, EventAmmoUpdate, EventPlayerCount, EventOutOfAmmo,
		EventPlayerShot, EventHitConfirmed, EventYouWereHit, EventHitEvent,
		EventPlayerEliminated,
	}
)

type RegisterPlayerMessage struct {
	Name string `json:"name"`
}

// ShootMessage carries an optional camera frame as a JPEG data URL. Position
// is reserved for location-based detection and left empty for now.
type ShootMessage struct {
	Timestamp   int64  `json:"timestamp"`
	CameraFrame string `json:"camera_frame,omitempty"`
	Position    string `json:"position,omitempty"`
}

type ReloadMessage struct{}

type PlayerDataMessage struct {
	Name       string `json:"name"`
	Ammo       int    `json:"ammo"`
	Health     int    `json:"health"`
	Hits       int    `json:"hits"`
	ShotsFired int    `json:"shots_fired"`
}

type AmmoUpdateMessage struct {
	Ammo       int  `json:"ammo"`
	ShotsFired *int `json:"shots_fired,omitempty"`
}

type PlayerCountMessage struct {
	Count int `json:"count"`
}

type OutOfAmmoMessage struct {
	Message string `json:"message,omitempty"`
}

type PlayerShotMessage struct {
	Shooter string `json:"shooter"`
}

type HitConfirmedMessage struct {
	Target   string `json:"target"`
	YourHits int    `json:"your_hits"`
}

type YouWereHitMessage struct {
	Shooter    string `json:"shooter"`
	YourHealth int    `json:"your_health"`
}

type HitEventMessage struct {
	Shooter string `json:"shooter"`
	Target  string `json:"target"`
}

type PlayerEliminatedMessage struct {
	Name         string `json:"name"`
	EliminatedBy string `json:"eliminated_by"`
}

type ConnectErrorMessage struct {
	Message string `json:"message"`
}
