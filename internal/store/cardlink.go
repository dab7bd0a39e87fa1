package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mintkit/hub/internal/model"
)

type CardLinkStore struct {
	db *sql.DB
}

func NewCardLinkStore(db *sql.DB) *CardLinkStore {
	return &CardLinkStore{db: db}
}

func scanCardLink(scanner interface{ Scan(...any) error }) (*model.CardLink, error) {
	var cl model.CardLink
	err := scanner.Scan(&cl.ID, &cl.Token, &cl.NFTID, &cl.OpenURL, &cl.ImageURL, &cl.RecipientEmail, &cl.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

const cardLinkCols = `id, token, nft_id, open_url, image_url, recipient_email, created_at`

// Create inserts a card link with a fresh UUID token.
func (s *CardLinkStore) Create(nftID, openURL, imageURL, recipientEmail string) (*model.CardLink, error) {
	token := uuid.New().String()
	result, err := s.db.Exec(
		`INSERT INTO card_links (token, nft_id, open_url, image_url, recipient_email) VALUES (?, ?, ?, ?, ?)`,
		token, nftID, openURL, imageURL, recipientEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("insert card link: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+cardLinkCols+` FROM card_links WHERE id = ?`, id)
	return scanCardLink(row)
}

// GetByToken returns the card link for the token, or nil. Malformed tokens
// are treated as not found rather than an error.
func (s *CardLinkStore) GetByToken(token string) (*model.CardLink, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, nil
	}
	row := s.db.QueryRow(`SELECT `+cardLinkCols+` FROM card_links WHERE token = ?`, token)
	cl, err := scanCardLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card link by token: %w", err)
	}
	return cl, nil
}

func (s *CardLinkStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM card_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete card link: %w", err)
	}
	return nil
}
