package gallery

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fakeartist/backend/internal/engine"
)

// Round is one archived round: the finished drawing plus how the vote
// went. Strokes and winners are stored as JSON columns; the drawing is
// only ever read back whole.
type Round struct {
	ID           uint   `gorm:"primaryKey"`
	RoomCode     string `gorm:"index"`
	Subject      string
	Strokes      datatypes.JSON
	FakeArtistID string
	FakeWins     bool
	Winners      datatypes.JSON
	CreatedAt    time.Time
}

// Store archives finished rounds in postgres. Best effort: the room fires
// and forgets, so a down database costs gallery history, not gameplay.
type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Round{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveRound(roomCode string, art engine.PreviousArt, fakeArtistID string, results engine.Results) error {
	strokes, err := json.Marshal(art.Strokes)
	if err != nil {
		return err
	}
	winners, err := json.Marshal(results.Winners)
	if err != nil {
		return err
	}
	round := Round{
		RoomCode:     roomCode,
		Subject:      art.Subject,
		Strokes:      datatypes.JSON(strokes),
		FakeArtistID: fakeArtistID,
		FakeWins:     results.FakeWins,
		Winners:      datatypes.JSON(winners),
	}
	return s.db.Create(&round).Error
}

// Rounds returns a room's archive, most recent first.
func (s *Store) Rounds(roomCode string, limit int) ([]Round, error) {
	var rounds []Round
	err := s.db.
		Where("room_code = ?", roomCode).
		Order("created_at desc").
		Limit(limit).
		Find(&rounds).Error
	return rounds, err
}
