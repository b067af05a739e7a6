// Package store caches the web client state in a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sardine-ai/go-webclient/model"
	_ "modernc.org/sqlite"
)

// Store provides database operations.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the SQLite database and runs migrations.
func New(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite single-writer
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &Store{db: db, dbPath: dbPath}, nil
}

// DBPath returns the database file path.
func (s *Store) DBPath() string { return s.dbPath }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadProfile returns the stored profile. ok is false when none is stored.
func (s *Store) LoadProfile(ctx context.Context) (profile model.Profile, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT identity, public_nickname, public_key, avatar FROM profile WHERE id = 1`)
	err = row.Scan(&profile.Identity, &profile.PublicNickname, &profile.PublicKey, &profile.Avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, false, nil
	}
	if err != nil {
		return model.Profile{}, false, err
	}
	return profile, true, nil
}

// SaveProfile replaces the stored profile.
func (s *Store) SaveProfile(ctx context.Context, profile model.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (id, identity, public_nickname, public_key, avatar) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			identity = excluded.identity,
			public_nickname = excluded.public_nickname,
			public_key = excluded.public_key,
			avatar = excluded.avatar`,
		profile.Identity, profile.PublicNickname, profile.PublicKey, profile.Avatar)
	return err
}

// SaveContact inserts or replaces a contact.
func (s *Store) SaveContact(ctx context.Context, c *model.ContactReceiver) error {
	access, err := json.Marshal(c.Access)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO contact_receivers
			(id, type, display_name, public_nickname, first_name, last_name, avatar, is_blocked, access)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.ReceiverType()), c.DisplayName, c.PublicNickname, c.FirstName, c.LastName,
		c.Avatar, boolToInt(c.IsBlocked), string(access))
	return err
}

// DeleteContact removes a contact.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM contact_receivers WHERE id = ?`, id)
	return err
}

// Contacts returns all stored contacts ordered by id.
func (s *Store) Contacts(ctx context.Context) ([]*model.ContactReceiver, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, display_name, public_nickname, first_name, last_name, avatar, is_blocked, access
		FROM contact_receivers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*model.ContactReceiver
	for rows.Next() {
		var (
			c       model.ContactReceiver
			typ     string
			blocked int
			access  string
		)
		if err := rows.Scan(&c.ID, &typ, &c.DisplayName, &c.PublicNickname, &c.FirstName, &c.LastName,
			&c.Avatar, &blocked, &access); err != nil {
			return nil, err
		}
		c.Type = model.ReceiverType(typ)
		c.IsBlocked = blocked != 0
		if err := json.Unmarshal([]byte(access), &c.Access); err != nil {
			return nil, fmt.Errorf("contact %s access: %w", c.ID, err)
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

// SaveGroup inserts or replaces a group.
func (s *Store) SaveGroup(ctx context.Context, g *model.GroupReceiver) error {
	members, err := json.Marshal(g.Members)
	if err != nil {
		return err
	}
	access, err := json.Marshal(g.Access)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO group_receivers (id, name, members, administrator, avatar, disabled, access)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, string(members), g.Administrator, g.Avatar, boolToInt(g.Disabled), string(access))
	return err
}

// DeleteGroup removes a group.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM group_receivers WHERE id = ?`, id)
	return err
}

// Groups returns all stored groups ordered by id.
func (s *Store) Groups(ctx context.Context) ([]*model.GroupReceiver, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, members, administrator, avatar, disabled, access
		FROM group_receivers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*model.GroupReceiver
	for rows.Next() {
		var (
			g        model.GroupReceiver
			members  string
			disabled int
			access   string
		)
		if err := rows.Scan(&g.ID, &g.Name, &members, &g.Administrator, &g.Avatar, &disabled, &access); err != nil {
			return nil, err
		}
		g.Disabled = disabled != 0
		if err := json.Unmarshal([]byte(members), &g.Members); err != nil {
			return nil, fmt.Errorf("group %s members: %w", g.ID, err)
		}
		if err := json.Unmarshal([]byte(access), &g.Access); err != nil {
			return nil, fmt.Errorf("group %s access: %w", g.ID, err)
		}
		result = append(result, &g)
	}
	return result, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
