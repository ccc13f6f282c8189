package repository

import (
	"context"
	"errors"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, tx *gorm.DB, task *model.Task) error
	FindByID(ctx context.Context, taskID uint) (*model.Task, error)
	ListForAssignee(ctx context.Context, assigneeID string) ([]*model.Task, error)
	UpdateStatus(ctx context.Context, taskID uint, from, to model.TaskStatus) (bool, error)
}

type taskRepoImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepoImpl{
		db: db,
	}
}

func (r *taskRepoImpl) Create(ctx context.Context, tx *gorm.DB, task *model.Task) error {
	return tx.WithContext(ctx).Create(task).Error
}

func (r *taskRepoImpl) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, taskID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskRepoImpl) ListForAssignee(ctx context.Context, assigneeID string) ([]*model.Task, error) {
	var tasks []*model.Task
	err := r.db.WithContext(ctx).
		Where("assignee_id = ?", assigneeID).
		Order("created_at DESC").
		Find(&tasks).Error

	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepoImpl) UpdateStatus(ctx context.Context, taskID uint, from, to model.TaskStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND status = ?", taskID, from).
		Update("status", to)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
