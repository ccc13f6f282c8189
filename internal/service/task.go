package service

import (
	"context"

	"github.com/Deco-Team/efurniture-server/internal/apperror"
	"github.com/Deco-Team/efurniture-server/internal/model"
	"github.com/Deco-Team/efurniture-server/internal/repository"
)

type TaskService interface {
	ListForAssignee(ctx context.Context, assigneeID string) ([]*model.Task, error)
	Start(ctx context.Context, taskID uint) error
	Complete(ctx context.Context, taskID uint) error
}

type taskServiceImpl struct {
	taskRepo repository.TaskRepository
}

func NewTaskService(taskRepo repository.TaskRepository) TaskService {
	return &taskServiceImpl{
		taskRepo: taskRepo,
	}
}

func (s *taskServiceImpl) ListForAssignee(ctx context.Context, assigneeID string) ([]*model.Task, error) {
	return s.taskRepo.ListForAssignee(ctx, assigneeID)
}

func (s *taskServiceImpl) Start(ctx context.Context, taskID uint) error {
	ok, err := s.taskRepo.UpdateStatus(ctx, taskID, model.TaskPending, model.TaskInProgress)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrTaskNotFound
	}
	return nil
}

func (s *taskServiceImpl) Complete(ctx context.Context, taskID uint) error {
	ok, err := s.taskRepo.UpdateStatus(ctx, taskID, model.TaskInProgress, model.TaskCompleted)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrTaskNotFound
	}
	return nil
}
