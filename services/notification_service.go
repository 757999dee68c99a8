package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/academic-system/records-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService handles user notifications
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	UserID   uint
	Type     model.NotificationType
	Category model.NotificationCategory
	Title    string
	Message  string
	Metadata *model.NotificationMetadata
}

// ListNotificationsOptions represents options for listing notifications
type ListNotificationsOptions struct {
	UserID     uint
	UnreadOnly bool
	Category   string
	Limit      int
	Offset     int
}

// CreateNotification creates a new notification for a user
func (s *NotificationService) CreateNotification(ctx context.Context, req CreateNotificationRequest) (*model.UserNotification, error) {
	notification := &model.UserNotification{
		UserID:   req.UserID,
		Type:     req.Type,
		Category: req.Category,
		Title:    req.Title,
		Message:  req.Message,
		Read:     false,
	}

	if req.Metadata != nil {
		metadataJSON, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		notification.Metadata = datatypes.JSON(metadataJSON)
	}

	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification, nil
}

// NotifyEnrollment records an enrollment change notification for the
// student's account. Failures are logged, not propagated: the
// enrollment itself already succeeded.
func (s *NotificationService) NotifyEnrollment(ctx context.Context, student *model.Student, sectionID uint, action string) {
	var section model.Section
	if err := s.db.WithContext(ctx).Preload("Course").First(&section, sectionID).Error; err != nil {
		log.Printf("notification: failed to load section %d: %v", sectionID, err)
		return
	}

	title := fmt.Sprintf("Enrolled in %s", section.Course.CourseCode)
	notificationType := model.NotificationTypeSuccess
	if action == "dropped" {
		title = fmt.Sprintf("Dropped %s", section.Course.CourseCode)
		notificationType = model.NotificationTypeInfo
	}

	_, err := s.CreateNotification(ctx, CreateNotificationRequest{
		UserID:   student.UserID,
		Type:     notificationType,
		Category: model.NotificationCategoryEnrollment,
		Title:    title,
		Message:  fmt.Sprintf("%s %s, section %s", section.Course.CourseCode, section.Course.Name, section.SectionCode),
		Metadata: &model.NotificationMetadata{
			SectionID:   section.ID,
			SectionCode: section.SectionCode,
			CourseCode:  section.Course.CourseCode,
			CourseName:  section.Course.Name,
		},
	})
	if err != nil {
		log.Printf("notification: failed to record enrollment change: %v", err)
	}
}

// NotifyGrade records a grade-posted notification for the student
// behind the enrollment.
func (s *NotificationService) NotifyGrade(ctx context.Context, enrollment *model.Enrollment, letter string) {
	var section model.Section
	if err := s.db.WithContext(ctx).Preload("Course").First(&section, enrollment.SectionID).Error; err != nil {
		log.Printf("notification: failed to load section %d: %v", enrollment.SectionID, err)
		return
	}

	_, err := s.CreateNotification(ctx, CreateNotificationRequest{
		UserID:   enrollment.Student.UserID,
		Type:     model.NotificationTypeInfo,
		Category: model.NotificationCategoryGrade,
		Title:    fmt.Sprintf("Grade posted for %s", section.Course.CourseCode),
		Message:  fmt.Sprintf("Your grade for %s is %s", section.Course.Name, letter),
		Metadata: &model.NotificationMetadata{
			SectionID:   section.ID,
			SectionCode: section.SectionCode,
			CourseCode:  section.Course.CourseCode,
			CourseName:  section.Course.Name,
		},
	})
	if err != nil {
		log.Printf("notification: failed to record grade notification: %v", err)
	}
}

// ListNotifications returns a page of a user's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, opts ListNotificationsOptions) ([]model.UserNotification, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.UserNotification{}).Where("user_id = ?", opts.UserID)

	if opts.UnreadOnly {
		query = query.Where("read = ?", false)
	}
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	var notifications []model.UserNotification
	err := query.Order("created_at DESC").Limit(opts.Limit).Offset(opts.Offset).Find(&notifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	result := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}
