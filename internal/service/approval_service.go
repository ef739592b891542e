package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expenseflow/internal/model"
	"expenseflow/internal/repository"
	"expenseflow/pkg/apperr"

	"gorm.io/gorm"
)

// ApprovalService transitions a request out of PENDING. Both operations are
// atomic across the request update and the approval log insert, and both
// refuse to touch a request that has already been decided.
type ApprovalService interface {
	Approve(ctx context.Context, requestID, approverID uint, comment string) error
	Reject(ctx context.Context, requestID, approverID uint, comment string) error
}

type approvalService struct {
	requests  repository.RequestRepository
	approvals repository.ApprovalRepository
	txManager repository.TransactionManager
	notifier  Notifier
}

func NewApprovalService(
	requests repository.RequestRepository,
	approvals repository.ApprovalRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) ApprovalService {
	return &approvalService{
		requests:  requests,
		approvals: approvals,
		txManager: txManager,
		notifier:  notifier,
	}
}

func (s *approvalService) Approve(ctx context.Context, requestID, approverID uint, comment string) error {
	if approverID == 0 {
		return fmt.Errorf("%w", apperr.ErrMissingApprover)
	}
	if err := s.decide(ctx, requestID, approverID, model.RequestStatusApproved, model.ApprovalActionApproved, comment); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyRequest(EventRequestApproved, requestID, model.RequestStatusApproved)
	}
	return nil
}

func (s *approvalService) Reject(ctx context.Context, requestID, approverID uint, comment string) error {
	// The one hard business rule distinguishing reject from approve:
	// a rejection must carry a comment.
	if strings.TrimSpace(comment) == "" {
		return fmt.Errorf("%w", apperr.ErrMissingComment)
	}
	if approverID == 0 {
		return fmt.Errorf("%w", apperr.ErrMissingApprover)
	}
	if err := s.decide(ctx, requestID, approverID, model.RequestStatusRejected, model.ApprovalActionRejected, comment); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyRequest(EventRequestRejected, requestID, model.RequestStatusRejected)
	}
	return nil
}

func (s *approvalService) decide(ctx context.Context, requestID, approverID uint, status, action, comment string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.requests.FindByID(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("request %d: %w", requestID, apperr.ErrNotFound)
			}
			return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
		}
		if request.Status != model.RequestStatusPending {
			return fmt.Errorf("request %d is already %s: %w", requestID, request.Status, apperr.ErrInvalidTransition)
		}

		now := time.Now()

		// Conditional on status so a concurrent decision loses cleanly
		// instead of overwriting.
		rows, err := s.requests.DecideIfPending(txCtx, requestID, status, approverID, comment, now)
		if err != nil {
			return fmt.Errorf("%w: failed to update request: %v", apperr.ErrPersistence, err)
		}
		if rows == 0 {
			return fmt.Errorf("request %d was decided concurrently: %w", requestID, apperr.ErrInvalidTransition)
		}

		approval := model.Approval{
			RequestID:  requestID,
			ApproverID: approverID,
			Action:     action,
			Comment:    comment,
			DecidedAt:  now,
		}
		if err := s.approvals.Create(txCtx, &approval); err != nil {
			return fmt.Errorf("%w: failed to write approval log: %v", apperr.ErrPersistence, err)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	// Keep taxonomy errors intact; anything else is a transaction failure.
	if errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrInvalidTransition) ||
		errors.Is(err, apperr.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
}
