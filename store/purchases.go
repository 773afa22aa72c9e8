package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sturner103/letter-to-you/models"
)

// ErrAlreadyUsed is returned when purchase consumption loses the race: the
// row exists but used was already true. Callers treat this as a silent no-op
// for the end user.
var ErrAlreadyUsed = errors.New("purchase already used")

const purchaseColumns = `id, user_id, letter_mode, mode_name, amount, currency,
	stripe_session_id, status, used, used_at, letter_id, created_at`

// InsertPurchase records a completed checkout. Driven by the payment
// webhook; duplicate webhook deliveries for one checkout session are
// ignored via the unique session id.
func (s *Store) InsertPurchase(p *models.Purchase) error {
	_, err := s.Conn.Exec(`INSERT INTO purchases
		(id, user_id, letter_mode, mode_name, amount, currency,
		 stripe_session_id, status, used, used_at, letter_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, NULL, ?)
		ON CONFLICT(stripe_session_id) DO NOTHING`,
		p.ID, p.UserID, p.LetterMode, p.ModeName, p.Amount, p.Currency,
		p.StripeSessionID, p.Status, encodeTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

// GetPurchaseBySession finds the completed, unused purchase for a checkout
// session id scoped to its owner.
func (s *Store) GetPurchaseBySession(sessionID, userID string) (*models.Purchase, error) {
	row := s.Conn.QueryRow(`SELECT `+purchaseColumns+` FROM purchases
		WHERE stripe_session_id = ? AND user_id = ? AND status = ? AND used = 0`,
		sessionID, userID, models.PurchaseCompleted)
	return scanPurchase(row)
}

// GetUnusedPurchaseForMode finds any completed, unused purchase for the
// exact (user, mode) pair, newest first.
func (s *Store) GetUnusedPurchaseForMode(userID, mode string) (*models.Purchase, error) {
	row := s.Conn.QueryRow(`SELECT `+purchaseColumns+` FROM purchases
		WHERE user_id = ? AND letter_mode = ? AND status = ? AND used = 0
		ORDER BY created_at DESC LIMIT 1`,
		userID, mode, models.PurchaseCompleted)
	return scanPurchase(row)
}

// ListUnusedPurchases returns the user's completed, unused purchases,
// newest first.
func (s *Store) ListUnusedPurchases(userID string) ([]*models.Purchase, error) {
	rows, err := s.Conn.Query(`SELECT `+purchaseColumns+` FROM purchases
		WHERE user_id = ? AND status = ? AND used = 0
		ORDER BY created_at DESC`, userID, models.PurchaseCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// MarkPurchaseUsed consumes a purchase exactly once. The update is
// conditional on used=0 at the data layer, so two near-simultaneous
// completions cannot both succeed: the loser gets ErrAlreadyUsed (or
// ErrNotFound if the purchase never existed for this owner).
func (s *Store) MarkPurchaseUsed(purchaseID, userID, letterID string) (*models.Purchase, error) {
	now := time.Now().UTC()
	res, err := s.Conn.Exec(`UPDATE purchases
		SET used = 1, used_at = ?, letter_id = ?
		WHERE id = ? AND user_id = ? AND used = 0`,
		encodeTime(now), letterID, purchaseID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark purchase used: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		row := s.Conn.QueryRow(`SELECT `+purchaseColumns+` FROM purchases
			WHERE id = ? AND user_id = ?`, purchaseID, userID)
		if _, scanErr := scanPurchase(row); scanErr != nil {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyUsed
	}

	row := s.Conn.QueryRow(`SELECT `+purchaseColumns+` FROM purchases
		WHERE id = ?`, purchaseID)
	return scanPurchase(row)
}

func scanPurchase(row rowScanner) (*models.Purchase, error) {
	var p models.Purchase
	var used int
	var usedAt sql.NullString
	var letterID sql.NullString
	var createdAt string
	err := row.Scan(&p.ID, &p.UserID, &p.LetterMode, &p.ModeName, &p.Amount,
		&p.Currency, &p.StripeSessionID, &p.Status, &used, &usedAt,
		&letterID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan purchase: %w", err)
	}
	p.Used = used != 0
	p.UsedAt = decodeTimePtr(usedAt)
	p.LetterID = letterID.String
	p.CreatedAt = decodeTime(createdAt)
	return &p, nil
}
