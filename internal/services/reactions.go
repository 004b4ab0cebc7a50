package services

import (
	"errors"

	"quill/internal/models"

	"gorm.io/gorm"
)

// Outcome reports what a ledger operation did.
type Outcome int

const (
	ReactionAdded Outcome = iota + 1
	// ReactionSwitched means the opposite reaction was replaced.
	ReactionSwitched
	AlreadyReacted
	ReactionRemoved
	AlreadyRemoved
	NothingToRemove
)

// Mutated reports whether the ledger changed.
func (o Outcome) Mutated() bool {
	return o == ReactionAdded || o == ReactionSwitched || o == ReactionRemoved
}

// Tally holds the derived ledger sizes of one target.
type Tally struct {
	Likes    int64
	Dislikes int64
}

// Ledger operates on the like/dislike sets of one kind of target.
type Ledger struct {
	target models.TargetType
}

var (
	postLedger    = Ledger{target: models.TargetPost}
	commentLedger = Ledger{target: models.TargetComment}
)

// Add puts userID into the kind ledger of targetID, dropping it from the
// opposite ledger in the same statement. Must run inside a transaction.
func (l Ledger) Add(tx *gorm.DB, targetID, userID string, kind models.ReactionKind) (Outcome, error) {
	var existing models.Reaction
	err := forUpdate(tx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, l.target, targetID).
		Take(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		r := models.Reaction{
			UserID:     userID,
			TargetType: l.target,
			TargetID:   targetID,
			Kind:       kind,
		}
		if err := tx.Create(&r).Error; err != nil {
			return 0, err
		}
		return ReactionAdded, nil
	case err != nil:
		return 0, err
	case existing.Kind == kind:
		return AlreadyReacted, nil
	}

	if err := tx.Model(&existing).Update("kind", kind).Error; err != nil {
		return 0, err
	}
	return ReactionSwitched, nil
}

// Remove takes userID out of the kind ledger of targetID.
func (l Ledger) Remove(tx *gorm.DB, targetID, userID string, kind models.ReactionKind) (Outcome, error) {
	var total int64
	if err := tx.Model(&models.Reaction{}).
		Where("target_type = ? AND target_id = ? AND kind = ?", l.target, targetID, kind).
		Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return NothingToRemove, nil
	}

	res := tx.Where("user_id = ? AND target_type = ? AND target_id = ? AND kind = ?", userID, l.target, targetID, kind).
		Delete(&models.Reaction{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return AlreadyRemoved, nil
	}
	return ReactionRemoved, nil
}

// Tallies counts likes and dislikes for every id in one query.
func (l Ledger) Tallies(db *gorm.DB, ids []string) (map[string]Tally, error) {
	out := make(map[string]Tally, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	type countRow struct {
		TargetID string
		Kind     models.ReactionKind
		Count    int64
	}
	var rows []countRow
	err := db.Model(&models.Reaction{}).
		Select("target_id, kind, COUNT(*) AS count").
		Where("target_type = ? AND target_id IN ?", l.target, ids).
		Group("target_id, kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		t := out[r.TargetID]
		if r.Kind == models.ReactionLike {
			t.Likes = r.Count
		} else {
			t.Dislikes = r.Count
		}
		out[r.TargetID] = t
	}
	return out, nil
}

// ReactedBy narrows q to targets userID holds a kind reaction on.
func (l Ledger) ReactedBy(q *gorm.DB, table, userID string, kind models.ReactionKind) *gorm.DB {
	return q.Joins("JOIN reactions ON reactions.target_id = "+table+".id AND reactions.target_type = ? AND reactions.kind = ? AND reactions.user_id = ?",
		l.target, kind, userID)
}

// deleteAll drops both ledgers of targetID.
func (l Ledger) deleteAll(tx *gorm.DB, targetID string) error {
	return tx.Where("target_type = ? AND target_id = ?", l.target, targetID).Delete(&models.Reaction{}).Error
}
