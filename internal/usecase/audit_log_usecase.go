package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

// 空文字の項目は絞り込まない
type ListAuditLogsInput struct {
	Actor        string
	Action       string
	ResourceType string
	ResourceID   int64
	Limit        int
	Offset       int
}

// 新しい順
func (u *AuditLogUsecase) List(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if in.Limit < 0 || in.Limit > maxAuditLimit {
		return []model.AuditLog{}, WrapHTTPError(http.StatusBadRequest, "invalid limit", ErrValidation)
	}
	if in.Offset < 0 {
		return []model.AuditLog{}, WrapHTTPError(http.StatusBadRequest, "invalid offset", ErrValidation)
	}

	f := repo.AuditLogFilter{Limit: in.Limit, Offset: in.Offset}
	if f.Limit == 0 {
		f.Limit = defaultAuditLimit
	}
	if s := strings.TrimSpace(in.Actor); s != "" {
		f.Actor = &s
	}
	if s := strings.TrimSpace(in.Action); s != "" {
		a := model.AuditAction(strings.ToUpper(s))
		f.Action = &a
	}
	if s := strings.TrimSpace(in.ResourceType); s != "" {
		rt := model.AuditResourceType(strings.ToLower(s))
		f.ResourceType = &rt
	}
	if in.ResourceID > 0 {
		id := in.ResourceID
		f.ResourceID = &id
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
