package store

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/botc-tools/overlay-ebs/internal/grimoire"
)

type casterKey struct {
	ChannelID string `gorm:"primaryKey"`
	SecretKey string `gorm:"uniqueIndex"`
}

type channelState struct {
	ChannelID string `gorm:"primaryKey"`
	Snapshot  []byte
	Session   string
	PlayerID  string
	IsActive  bool
}

// Postgres backs the store with gorm over the pgx driver.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&casterKey{}, &channelState{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) PutSecretKey(ctx context.Context, channelID, key string) error {
	row := casterKey{ChannelID: channelID, SecretKey: key}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"secret_key"}),
	}).Create(&row).Error
}

func (p *Postgres) SecretKey(ctx context.Context, channelID string) (string, bool, error) {
	var row casterKey
	err := p.db.WithContext(ctx).First(&row, "channel_id = ?", channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.SecretKey, true, nil
}

func (p *Postgres) ChannelForKey(ctx context.Context, key string) (string, bool, error) {
	var row casterKey
	err := p.db.WithContext(ctx).First(&row, "secret_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.ChannelID, true, nil
}

func (p *Postgres) PutGrimoire(ctx context.Context, channelID string, snapshot json.RawMessage) error {
	row := channelState{ChannelID: channelID, Snapshot: snapshot}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot"}),
	}).Create(&row).Error
}

func (p *Postgres) Grimoire(ctx context.Context, channelID string) (json.RawMessage, bool, error) {
	var row channelState
	err := p.db.WithContext(ctx).First(&row, "channel_id = ?", channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(row.Snapshot) == 0 {
		return nil, false, nil
	}
	return row.Snapshot, true, nil
}

func (p *Postgres) PutSession(ctx context.Context, channelID string, sess grimoire.Session) error {
	row := channelState{
		ChannelID: channelID,
		Session:   sess.Session,
		PlayerID:  sess.PlayerID,
		IsActive:  sess.IsActive,
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"session", "player_id", "is_active"}),
	}).Create(&row).Error
}

func (p *Postgres) Session(ctx context.Context, channelID string) (grimoire.Session, bool, error) {
	var row channelState
	err := p.db.WithContext(ctx).First(&row, "channel_id = ?", channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return grimoire.Session{}, false, nil
	}
	if err != nil {
		return grimoire.Session{}, false, err
	}
	return grimoire.Session{
		Session:  row.Session,
		PlayerID: row.PlayerID,
		IsActive: row.IsActive,
	}, true, nil
}
