// Package save implements JSON serialization and deserialization of dungeons.
package save

import (
	"encoding/json"
	"errors"

	"github.com/nathoo/dungeoncore/engine/dungeon"
)

// FormatVersion is written into every save file.
const FormatVersion = "1"

// ErrNoDungeon is returned when a document holds neither a save nor a bare
// snapshot.
var ErrNoDungeon = errors.New("no dungeon in save data")

// SaveData is the JSON-serializable save format. The dungeon itself is the
// portable snapshot; the rest lets a session resume where it stopped.
type SaveData struct {
	Version     string           `json:"version"`
	SubDungeon  int              `json:"sub_dungeon"`
	Dungeon     dungeon.Snapshot `json:"dungeon"`
	RNGSeed     int64            `json:"rng_seed"`
	RNGPosition int64            `json:"rng_position"`
	CommandLog  []string         `json:"command_log"`

	// HasSession is set when the data was a full save rather than a bare
	// snapshot, so a zero seed and position are real values.
	HasSession bool `json:"-"`
}

// Session is what a save captures besides the dungeon.
type Session struct {
	RNGSeed     int64
	RNGPosition int64
	CommandLog  []string
}

// Save serializes a dungeon and its session to JSON bytes.
func Save(d *dungeon.Dungeon, sess Session) ([]byte, error) {
	data := SaveData{
		Version:     FormatVersion,
		SubDungeon:  d.ID,
		Dungeon:     d.Snapshot(),
		RNGSeed:     sess.RNGSeed,
		RNGPosition: sess.RNGPosition,
		CommandLog:  sess.CommandLog,
	}
	if data.CommandLog == nil {
		data.CommandLog = []string{}
	}
	return json.MarshalIndent(data, "", "  ")
}

// Export serializes only the snapshot, in the format other editors share.
func Export(d *dungeon.Dungeon) ([]byte, error) {
	return json.MarshalIndent(d.Snapshot(), "", "  ")
}

// Load deserializes JSON bytes into SaveData. A bare snapshot, as written
// by Export, is accepted too and wrapped in a save with no session.
func Load(data []byte) (*SaveData, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, err
	}

	sd := SaveData{SubDungeon: -1}
	switch {
	case keys["dungeon"] != nil:
		if err := json.Unmarshal(data, &sd); err != nil {
			return nil, err
		}
		sd.HasSession = true
	case keys["floors"] != nil || keys["title"] != nil:
		if err := json.Unmarshal(data, &sd.Dungeon); err != nil {
			return nil, err
		}
		sd.Version = FormatVersion
	default:
		return nil, ErrNoDungeon
	}

	// Ensure slices are never nil after load.
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// ApplySave loads the saved snapshot into d and returns the session.
func ApplySave(d *dungeon.Dungeon, sd *SaveData) Session {
	d.LoadSnapshot(sd.Dungeon)
	d.ID = sd.SubDungeon
	return Session{
		RNGSeed:     sd.RNGSeed,
		RNGPosition: sd.RNGPosition,
		CommandLog:  sd.CommandLog,
	}
}
