package notification

import (
	"context"
	"fmt"

	"github.com/juniorleague/api-server/db"

	"gorm.io/gorm"
)

const (
	StatusUnseen = "unseen"
	StatusSeen   = "seen"
)

type NotificationService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *NotificationService {
	return &NotificationService{
		DB: db,
	}
}

// NotifyTx records a notification for a team inside an open transaction.
func (ns *NotificationService) NotifyTx(tx *gorm.DB, teamID, bidID uint, description string) error {
	n := db.Notification{
		TeamID:      teamID,
		BidID:       bidID,
		Description: description,
		Status:      StatusUnseen,
	}
	if err := tx.Create(&n).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// List returns a team's notifications, newest first.
func (ns *NotificationService) List(ctx context.Context, teamID uint) ([]db.Notification, error) {
	notifications := make([]db.Notification, 0)
	err := ns.DB.WithContext(ctx).Where("team_id = ?", teamID).Order("id DESC").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (ns *NotificationService) MarkSeen(ctx context.Context, teamID uint) error {
	err := ns.DB.WithContext(ctx).Model(&db.Notification{}).
		Where("team_id = ? AND status = ?", teamID, StatusUnseen).
		Update("status", StatusSeen).Error
	if err != nil {
		return fmt.Errorf("not able to update status of notifications with err: %w", err)
	}
	return nil
}
